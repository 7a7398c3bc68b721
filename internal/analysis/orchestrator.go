// Package analysis turns a selected Pokémon into ranked attacking types and
// counter suggestions, and owns the state a client renders.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ramonehamilton/PokeHelper/internal/events"
	"github.com/ramonehamilton/PokeHelper/internal/pokemon/gateway"
	"github.com/ramonehamilton/PokeHelper/internal/pokemon/pokeapi"
	"github.com/ramonehamilton/PokeHelper/internal/pokemon/typechart"
)

// ErrEmptyName is returned when a selection has no name.
var ErrEmptyName = errors.New("pokemon name is empty")

// User-facing messages for failed bulk loads.
const (
	namesLoadError    = "Could not load the Pokémon list. Check your connection and try again."
	versionsLoadError = "Could not load game versions. Check your connection and try again."
)

// Gateway is the data layer the orchestrator reads from.
// *gateway.Gateway satisfies it.
type Gateway interface {
	ListAllNames(ctx context.Context) ([]string, error)
	ListAllVersions(ctx context.Context) ([]string, error)
	TypesFor(ctx context.Context, name string) ([]typechart.Type, error)
	ExamplesFor(ctx context.Context, t typechart.Type, limit int) ([]string, error)
	VersionAllowedNames(ctx context.Context, version string) (gateway.NameSet, error)
}

var _ Gateway = (*gateway.Gateway)(nil)

// Config configures an Orchestrator.
type Config struct {
	Gateway    Gateway
	Dispatcher *events.EventDispatcher // optional
	Logger     *slog.Logger
	Options    Options
}

// Orchestrator runs the analysis pipeline and holds the UI state.
//
// Operations may run concurrently. Each selection takes a generation number;
// a selection that completes after a newer selection or filter change has
// started returns its result to the caller but leaves the shared state alone.
type Orchestrator struct {
	gw         Gateway
	dispatcher *events.EventDispatcher
	logger     *slog.Logger
	opts       Options

	mu        sync.Mutex
	state     UIState
	allowed   gateway.NameSet // nil when no version filter is active
	base      []string        // sorted names the filter searches
	pending   int             // operations in flight
	selectGen uint64
	filterGen uint64

	// Bulk loads that last failed. Their message stays in state.Error until
	// the same load succeeds.
	namesFailed    bool
	versionsFailed bool

	// publishSeq orders snapshots taken under mu; publishMu guards
	// lastPublished so an older snapshot is never delivered after a newer one.
	publishSeq    uint64
	publishMu     sync.Mutex
	lastPublished uint64
}

// New creates an Orchestrator. Zero Options are replaced by DefaultOptions.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	if cfg.Options == (Options{}) {
		cfg.Options = DefaultOptions()
	}
	if err := cfg.Options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Orchestrator{
		gw:         cfg.Gateway,
		dispatcher: cfg.Dispatcher,
		logger:     cfg.Logger.With("component", "analysis"),
		opts:       cfg.Options,
		state: UIState{
			Status:        StatusIdle,
			AllNames:      []string{},
			FilteredNames: []string{},
			Versions:      []string{},
		},
	}, nil
}

// Options returns the pipeline settings in use.
func (o *Orchestrator) Options() Options { return o.opts }

// State returns a snapshot of the current UI state.
func (o *Orchestrator) State() UIState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Warm loads the name and version lists concurrently. Both loads run to
// completion; the first error is returned.
func (o *Orchestrator) Warm(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		_, err := o.LoadAllNames(ctx)
		return err
	})
	g.Go(func() error {
		_, err := o.LoadVersions(ctx)
		return err
	})
	return g.Wait()
}

// LoadAllNames fetches the full name list. A failure is recorded in the
// state's Error and returned; nothing is retried.
func (o *Orchestrator) LoadAllNames(ctx context.Context) ([]string, error) {
	o.begin()

	names, err := o.gw.ListAllNames(ctx)

	o.mu.Lock()
	o.pending--
	o.namesFailed = err != nil
	o.settleLoadErrorLocked()
	if err != nil {
		o.logger.Error("Failed to load names", "error", err)
	} else {
		o.state.AllNames = names
		if o.allowed == nil {
			o.base = sortedCopy(names)
		}
		o.state.FilteredNames = o.filterLocked("")
	}
	o.publishLocked(events.StateUpdated, nil)

	if err != nil {
		return nil, err
	}
	return names, nil
}

// LoadVersions fetches the game version list and stores it sorted.
func (o *Orchestrator) LoadVersions(ctx context.Context) ([]string, error) {
	o.begin()

	versions, err := o.gw.ListAllVersions(ctx)

	o.mu.Lock()
	o.pending--
	o.versionsFailed = err != nil
	o.settleLoadErrorLocked()
	if err != nil {
		o.logger.Error("Failed to load versions", "error", err)
	} else {
		versions = sortedCopy(versions)
		o.state.Versions = versions
	}
	o.publishLocked(events.StateUpdated, nil)

	if err != nil {
		return nil, err
	}
	return versions, nil
}

// settleLoadErrorLocked shows the message of a bulk load that is still
// failing, names first. Once both succeed, a load message is cleared; other
// errors are left alone.
func (o *Orchestrator) settleLoadErrorLocked() {
	switch {
	case o.namesFailed:
		o.state.Error = namesLoadError
	case o.versionsFailed:
		o.state.Error = versionsLoadError
	case o.state.Error == namesLoadError || o.state.Error == versionsLoadError:
		o.state.Error = ""
	}
}

// SetVersionFilter restricts names and counters to one game version. A nil
// or blank version clears the filter. Any shown analysis is discarded and
// the filtered list is reset to the first page of the new base.
//
// If the version cannot be resolved the previous filter stays in effect
// and the error is recorded in the state.
func (o *Orchestrator) SetVersionFilter(ctx context.Context, version *string) error {
	o.mu.Lock()
	o.filterGen++
	o.selectGen++
	gen := o.filterGen
	o.mu.Unlock()

	if version == nil || strings.TrimSpace(*version) == "" {
		o.mu.Lock()
		o.applyFilterLocked(nil, nil)
		o.publishLocked(events.VersionChanged, events.VersionChangedEvent{})
		return nil
	}

	key := strings.ToLower(strings.TrimSpace(*version))
	o.begin()

	set, err := o.gw.VersionAllowedNames(ctx, key)

	o.mu.Lock()
	o.pending--
	if gen != o.filterGen {
		o.logger.Debug("Discarding superseded version filter", "version", key)
		o.publishLocked(events.StateUpdated, nil)
		return err
	}
	if err != nil {
		o.state.Error = fmt.Sprintf("Could not load version %s.", DisplayVersion(key))
		o.logger.Error("Failed to resolve version", "version", key, "error", err)
		o.publishLocked(events.StateUpdated, nil)
		return err
	}

	o.applyFilterLocked(&key, set)
	o.publishLocked(events.VersionChanged, events.VersionChangedEvent{
		Version:      &key,
		AllowedNames: len(set),
	})
	return nil
}

func (o *Orchestrator) applyFilterLocked(version *string, set gateway.NameSet) {
	o.allowed = set
	if set == nil {
		o.base = sortedCopy(o.state.AllNames)
	} else {
		o.base = set.Sorted()
	}
	o.state.SelectedVersion = version
	o.state.FilteredNames = o.filterLocked("")
	o.state.Analysis = nil
	o.state.Status = StatusIdle
	o.state.Error = ""
}

// FilterNames returns up to FilterLimit names from the allowed base that
// contain query, case-insensitively, in sorted order. A blank query returns
// the first names of the base. The result also becomes the state's
// FilteredNames.
func (o *Orchestrator) FilterNames(query string) []string {
	o.mu.Lock()
	filtered := o.filterLocked(query)
	o.state.FilteredNames = filtered
	o.publishLocked(events.StateUpdated, nil)
	return filtered
}

func (o *Orchestrator) filterLocked(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	limit := o.opts.FilterLimit

	out := make([]string, 0, min(limit, len(o.base)))
	for _, name := range o.base {
		if len(out) == limit {
			break
		}
		if q == "" || strings.Contains(name, q) {
			out = append(out, name)
		}
	}
	return out
}

// SelectPokemon analyses name: its types, the attacking types that beat
// them, and example counters from the leading types, intersected with the
// active version filter.
//
// A failure to load the types fails the analysis: the state moves to
// failed with a generic message and the error is returned. A failure to
// load examples for one type is logged and the analysis continues with
// fewer examples.
func (o *Orchestrator) SelectPokemon(ctx context.Context, name string) (*Result, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, ErrEmptyName
	}

	o.mu.Lock()
	o.selectGen++
	gen := o.selectGen
	o.pending++
	o.state.Status = StatusLoading
	o.state.Error = ""
	o.publishLocked(events.StateUpdated, nil)

	types, err := o.gw.TypesFor(ctx, key)
	if err != nil {
		o.mu.Lock()
		o.pending--
		if gen == o.selectGen {
			o.state.Status = StatusFailed
			o.state.Analysis = nil
			if pokeapi.IsNotFound(err) {
				o.state.Error = fmt.Sprintf("No Pokémon named %s.", DisplayName(key))
			} else {
				o.state.Error = fmt.Sprintf("Could not analyze %s. Please try again.", DisplayName(key))
			}
			o.logger.Error("Analysis failed", "pokemon", key, "error", err)
			o.publishLocked(events.AnalysisFailed, events.AnalysisFailedEvent{Target: key, Error: err.Error()})
		} else {
			o.publishLocked(events.StateUpdated, nil)
		}
		return nil, fmt.Errorf("analyze %s: %w", key, err)
	}

	best := typechart.SuperEffective(types, o.opts.TopTypes)
	candidates := o.collectExamples(ctx, key, best)

	o.mu.Lock()
	o.pending--
	result := &Result{
		TargetName:  DisplayName(key),
		TargetTypes: types,
		BestTypes:   best,
		Examples:    o.restrictLocked(candidates),
	}

	if gen != o.selectGen {
		o.logger.Debug("Discarding superseded analysis", "pokemon", key)
		o.publishLocked(events.StateUpdated, nil)
		return result, nil
	}

	o.state.Status = StatusReady
	o.state.Analysis = result
	o.logger.Info("Analysis ready",
		"pokemon", key, "types", len(types), "bestTypes", len(best), "examples", len(result.Examples))
	o.publishLocked(events.AnalysisReady, result)
	return result, nil
}

// collectExamples gathers counters for the leading types, deduplicated in
// first-seen order.
func (o *Orchestrator) collectExamples(ctx context.Context, target string, best []typechart.TypeMultiplier) []string {
	n := min(o.opts.CounterTypes, len(best))

	seen := make(map[string]struct{})
	var out []string
	for _, tm := range best[:n] {
		names, err := o.gw.ExamplesFor(ctx, tm.Type, o.opts.ExamplesPerType)
		if err != nil {
			o.logger.Warn("Could not load examples", "pokemon", target, "type", tm.Type, "error", err)
			continue
		}
		for _, name := range names {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// restrictLocked applies the version filter and the example cap.
func (o *Orchestrator) restrictLocked(candidates []string) []string {
	out := make([]string, 0, min(len(candidates), o.opts.MaxExamples))
	for _, name := range candidates {
		if len(out) == o.opts.MaxExamples {
			break
		}
		if o.allowed != nil && !o.allowed.Contains(name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

func (o *Orchestrator) begin() {
	o.mu.Lock()
	o.pending++
	o.publishLocked(events.StateUpdated, nil)
}

func (o *Orchestrator) snapshotLocked() UIState {
	s := o.state
	s.IsLoading = o.pending > 0
	return s
}

// publishLocked releases o.mu and dispatches a state update, preceded by
// an event of the given type when it is not StateUpdated.
func (o *Orchestrator) publishLocked(eventType string, data any) {
	state := o.snapshotLocked()
	o.publishSeq++
	seq := o.publishSeq
	o.mu.Unlock()

	o.deliver(seq, eventType, data, state)
}

// deliver dispatches one snapshot. A snapshot older than one already
// delivered is dropped, so the last state:updated observers see is always
// the newest.
func (o *Orchestrator) deliver(seq uint64, eventType string, data any, state UIState) {
	if o.dispatcher == nil {
		return
	}
	o.publishMu.Lock()
	defer o.publishMu.Unlock()

	ctx := context.Background()
	if eventType != events.StateUpdated {
		o.dispatcher.Dispatch(events.NewTypedEvent(ctx, eventType, data))
	}
	if seq < o.lastPublished {
		o.logger.Debug("Dropping stale state snapshot", "seq", seq, "last", o.lastPublished)
		return
	}
	o.lastPublished = seq
	o.dispatcher.Dispatch(events.NewTypedEvent(ctx, events.StateUpdated, state))
}

// DisplayName formats a canonical name for display ("mr-mime" -> "Mr-Mime").
func DisplayName(name string) string {
	return cases.Title(language.English).String(name)
}

// DisplayVersion formats a version key for display ("omega-ruby" -> "Omega Ruby").
func DisplayVersion(version string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(version, "-", " "))
}

func sortedCopy(names []string) []string {
	out := append([]string(nil), names...)
	sort.Strings(out)
	return out
}
