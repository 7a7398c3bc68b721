// Package gateway resolves Pokémon, type and version data from PokéAPI and
// memoises the lookups that are stable for the life of the process.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ramonehamilton/PokeHelper/internal/metrics"
	"github.com/ramonehamilton/PokeHelper/internal/pokemon/pokeapi"
	"github.com/ramonehamilton/PokeHelper/internal/pokemon/typechart"
)

// Source is the subset of the PokéAPI client the gateway calls.
// *pokeapi.Client satisfies it.
type Source interface {
	ListPokemon(ctx context.Context, limit, offset int) (*pokeapi.PokemonList, error)
	GetPokemon(ctx context.Context, name string) (*pokeapi.PokemonDetail, error)
	GetType(ctx context.Context, name string) (*pokeapi.TypeDetail, error)
	ListVersions(ctx context.Context, limit, offset int) (*pokeapi.VersionList, error)
	GetVersion(ctx context.Context, name string) (*pokeapi.VersionDetail, error)
	GetVersionGroup(ctx context.Context, name string) (*pokeapi.VersionGroupDetail, error)
	GetPokedex(ctx context.Context, name string) (*pokeapi.PokedexDetail, error)
}

var _ Source = (*pokeapi.Client)(nil)

// Config configures a Gateway.
type Config struct {
	Source  Source
	Cache   *Cache
	Metrics *metrics.GatewayMetrics
	Logger  *slog.Logger

	// PokedexConcurrency bounds parallel pokedex fetches per version (default: 4).
	PokedexConcurrency int
}

// Gateway is the remote data layer the orchestrator calls into.
type Gateway struct {
	source  Source
	cache   *Cache
	metrics *metrics.GatewayMetrics
	logger  *slog.Logger

	pokedexConcurrency int
	inflight           singleflight.Group
}

// New creates a Gateway. A nil Cache or Metrics gets a fresh one.
func New(cfg Config) (*Gateway, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("source is required")
	}
	if cfg.Cache == nil {
		cfg.Cache = NewCache()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewGatewayMetrics()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.PokedexConcurrency <= 0 {
		cfg.PokedexConcurrency = 4
	}

	return &Gateway{
		source:             cfg.Source,
		cache:              cfg.Cache,
		metrics:            cfg.Metrics,
		logger:             cfg.Logger.With("component", "gateway"),
		pokedexConcurrency: cfg.PokedexConcurrency,
	}, nil
}

// Cache exposes the gateway's cache.
func (g *Gateway) Cache() *Cache { return g.cache }

// Metrics exposes the gateway's collector.
func (g *Gateway) Metrics() *metrics.GatewayMetrics { return g.metrics }

// ListAllNames returns every Pokémon name in API order, fetched once.
func (g *Gateway) ListAllNames(ctx context.Context) ([]string, error) {
	if names, ok := g.cache.Names(); ok {
		g.metrics.CacheHit()
		return names, nil
	}
	g.metrics.CacheMiss()

	v, err, _ := g.inflight.Do("names", func() (interface{}, error) {
		start := time.Now()
		list, err := g.source.ListPokemon(ctx, pokeapi.FullPage, 0)
		g.metrics.ObserveFetch(time.Since(start), err)
		if err != nil {
			return nil, err
		}
		names := resourceNames(list.Results)
		g.cache.SetNames(names)
		g.logger.Info("Loaded pokemon names", "count", len(names))
		return names, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list pokemon names: %w", err)
	}
	return append([]string(nil), v.([]string)...), nil
}

// ListAllVersions returns every game version name, fetched once.
func (g *Gateway) ListAllVersions(ctx context.Context) ([]string, error) {
	if versions, ok := g.cache.Versions(); ok {
		g.metrics.CacheHit()
		return versions, nil
	}
	g.metrics.CacheMiss()

	v, err, _ := g.inflight.Do("versions", func() (interface{}, error) {
		start := time.Now()
		list, err := g.source.ListVersions(ctx, pokeapi.FullPage, 0)
		g.metrics.ObserveFetch(time.Since(start), err)
		if err != nil {
			return nil, err
		}
		versions := resourceNames(list.Results)
		g.cache.SetVersions(versions)
		g.logger.Info("Loaded game versions", "count", len(versions))
		return versions, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return append([]string(nil), v.([]string)...), nil
}

// TypesFor returns a Pokémon's types in slot order. Labels outside the
// 18-type enumeration are dropped, so the result may be shorter than the
// raw slot list.
func (g *Gateway) TypesFor(ctx context.Context, name string) ([]typechart.Type, error) {
	key := canonical(name)

	start := time.Now()
	detail, err := g.source.GetPokemon(ctx, key)
	g.metrics.ObserveFetch(time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("get types for %s: %w", key, err)
	}

	slots := append([]pokeapi.PokemonTypeSlot(nil), detail.Types...)
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Slot < slots[j].Slot })

	types := make([]typechart.Type, 0, len(slots))
	for _, s := range slots {
		t, ok := typechart.ParseType(s.Type.Name)
		if !ok {
			g.metrics.DroppedTypeLabel.Add(1)
			g.logger.Debug("Dropping unrecognised type label", "pokemon", key, "label", s.Type.Name)
			continue
		}
		types = append(types, t)
	}
	return types, nil
}

// ExamplesFor returns up to limit Pokémon of the given type, in API order.
// A non-positive limit returns them all.
func (g *Gateway) ExamplesFor(ctx context.Context, t typechart.Type, limit int) ([]string, error) {
	start := time.Now()
	detail, err := g.source.GetType(ctx, t.String())
	g.metrics.ObserveFetch(time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("get examples for %s: %w", t, err)
	}

	n := len(detail.Pokemon)
	if limit > 0 && n > limit {
		n = limit
	}
	names := make([]string, 0, n)
	for _, e := range detail.Pokemon[:n] {
		names = append(names, e.Pokemon.Name)
	}
	return names, nil
}

// VersionAllowedNames resolves version -> version group -> pokedexes and
// returns the union of their species. Failing to load the version or its
// group is an error; a failing pokedex is logged and skipped. Results are
// cached per version unless every pokedex failed.
func (g *Gateway) VersionAllowedNames(ctx context.Context, version string) (NameSet, error) {
	key := canonical(version)
	if key == "" {
		return nil, fmt.Errorf("version name is empty")
	}
	if set, ok := g.cache.VersionSet(key); ok {
		g.metrics.CacheHit()
		return set, nil
	}
	g.metrics.CacheMiss()

	v, err, _ := g.inflight.Do("version:"+key, func() (interface{}, error) {
		return g.resolveVersion(ctx, key)
	})
	if err != nil {
		return nil, fmt.Errorf("resolve version %s: %w", key, err)
	}
	return v.(NameSet), nil
}

func (g *Gateway) resolveVersion(ctx context.Context, version string) (NameSet, error) {
	start := time.Now()
	detail, err := g.source.GetVersion(ctx, version)
	g.metrics.ObserveFetch(time.Since(start), err)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	group, err := g.source.GetVersionGroup(ctx, detail.VersionGroup.Name)
	g.metrics.ObserveFetch(time.Since(start), err)
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		failed int
	)
	species := make(NameSet)

	eg := new(errgroup.Group)
	eg.SetLimit(g.pokedexConcurrency)
	for _, dex := range group.Pokedexes {
		eg.Go(func() error {
			start := time.Now()
			d, err := g.source.GetPokedex(ctx, dex.Name)
			g.metrics.ObserveFetch(time.Since(start), err)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				g.metrics.PokedexFailures.Add(1)
				g.logger.Warn("Could not load pokedex",
					"pokedex", dex.Name, "versionGroup", group.Name, "error", err)
				return nil
			}
			for _, e := range d.PokemonEntries {
				species[e.PokemonSpecies.Name] = struct{}{}
			}
			return nil
		})
	}
	_ = eg.Wait() // pokedex failures are swallowed above

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if failed > 0 && failed == len(group.Pokedexes) {
		g.logger.Warn("Every pokedex failed; not caching version",
			"version", version, "versionGroup", group.Name)
		return species, nil
	}

	g.cache.SetVersionSet(version, species)
	g.logger.Info("Resolved version",
		"version", version, "versionGroup", group.Name,
		"pokedexes", len(group.Pokedexes), "failed", failed, "species", len(species))
	return species, nil
}

func resourceNames(rs []pokeapi.NamedAPIResource) []string {
	names := make([]string, 0, len(rs))
	for _, r := range rs {
		names = append(names, r.Name)
	}
	return names
}

func canonical(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
