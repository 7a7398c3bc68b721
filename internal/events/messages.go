package events

// Event types dispatched by the analysis orchestrator and the server.
const (
	// StateUpdated carries a full UI state snapshot after every change.
	StateUpdated = "state:updated"
	// AnalysisReady carries the AnalysisResult of a completed selection.
	AnalysisReady = "analysis:ready"
	// AnalysisFailed carries an AnalysisFailedEvent.
	AnalysisFailed = "analysis:failed"
	// VersionChanged carries a VersionChangedEvent.
	VersionChanged = "version:changed"
	// ConfigReloaded carries a ConfigReloadedEvent.
	ConfigReloaded = "config:reloaded"
)

// AnalysisFailedEvent is the payload for analysis:failed events.
type AnalysisFailedEvent struct {
	Target string `json:"target"`
	Error  string `json:"error"`
}

// VersionChangedEvent is the payload for version:changed events.
// Version is nil when the filter was cleared.
type VersionChangedEvent struct {
	Version      *string `json:"version"`
	AllowedNames int     `json:"allowedNames"` // 0 when cleared
}

// ConfigReloadedEvent is the payload for config:reloaded events.
type ConfigReloadedEvent struct {
	Path string `json:"path"`
}
