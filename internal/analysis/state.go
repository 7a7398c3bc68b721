package analysis

import "github.com/ramonehamilton/PokeHelper/internal/pokemon/typechart"

// Status is the phase of the current analysis cycle.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Result is the outcome of analysing one Pokémon.
type Result struct {
	// TargetName is the display form of the selected name.
	TargetName  string                     `json:"targetName"`
	TargetTypes []typechart.Type           `json:"targetTypes"`
	BestTypes   []typechart.TypeMultiplier `json:"bestTypes"`
	// Examples are canonical names of suggested counters, in the order the
	// remote source listed them.
	Examples []string `json:"examples"`
}

// UIState is everything a client needs to render the app.
//
// Slices in a UIState are never modified after the state is published, so a
// copy returned by State may be read without further locking.
type UIState struct {
	Status          Status   `json:"status"`
	IsLoading       bool     `json:"isLoading"`
	AllNames        []string `json:"allNames"`
	FilteredNames   []string `json:"filteredNames"`
	Analysis        *Result  `json:"analysis"`
	Versions        []string `json:"versions"`
	SelectedVersion *string  `json:"selectedVersion"`
	Error           string   `json:"error,omitempty"`
}
