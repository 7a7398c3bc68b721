package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ramonehamilton/PokeHelper/internal/analysis"
	"github.com/ramonehamilton/PokeHelper/internal/api/response"
)

// VersionHandler handles game version requests.
type VersionHandler struct {
	orch *analysis.Orchestrator
}

// NewVersionHandler creates a new VersionHandler.
func NewVersionHandler(orch *analysis.Orchestrator) *VersionHandler {
	return &VersionHandler{orch: orch}
}

// GetVersions returns the sorted version list, loading it on first use.
func (h *VersionHandler) GetVersions(w http.ResponseWriter, r *http.Request) {
	versions := h.orch.State().Versions
	if len(versions) == 0 {
		loaded, err := h.orch.LoadVersions(r.Context())
		if err != nil {
			response.ServiceUnavailable(w, fmt.Errorf("load versions: %w", err))
			return
		}
		versions = loaded
	}

	response.Success(w, versions)
}

// SetVersionFilterRequest selects a version; a null version clears the filter.
type SetVersionFilterRequest struct {
	Version *string `json:"version"`
}

// SetVersionFilter applies or clears the version filter and returns the
// resulting state. A version that cannot be resolved leaves the previous
// filter in place and is reported in the state's error.
func (h *VersionHandler) SetVersionFilter(w http.ResponseWriter, r *http.Request) {
	var req SetVersionFilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	_ = h.orch.SetVersionFilter(r.Context(), req.Version)
	response.Success(w, h.orch.State())
}
