package handlers

import (
	"net/http"

	"github.com/ramonehamilton/PokeHelper/internal/analysis"
	"github.com/ramonehamilton/PokeHelper/internal/api/response"
	"github.com/ramonehamilton/PokeHelper/internal/metrics"
	"github.com/ramonehamilton/PokeHelper/internal/version"
)

// SystemHandler handles state, metrics and version requests.
type SystemHandler struct {
	orch    *analysis.Orchestrator
	metrics *metrics.GatewayMetrics
}

// NewSystemHandler creates a new SystemHandler. m may be nil.
func NewSystemHandler(orch *analysis.Orchestrator, m *metrics.GatewayMetrics) *SystemHandler {
	return &SystemHandler{orch: orch, metrics: m}
}

// GetState returns the current UI state.
func (h *SystemHandler) GetState(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, h.orch.State())
}

// GetMetrics returns the gateway metrics snapshot.
func (h *SystemHandler) GetMetrics(w http.ResponseWriter, _ *http.Request) {
	if h.metrics == nil {
		response.Success(w, metrics.NewGatewayMetrics().Snapshot())
		return
	}
	response.Success(w, h.metrics.Snapshot())
}

// GetVersion returns the application version.
func (h *SystemHandler) GetVersion(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"version": version.GetVersion(),
		"service": "pokehelper-api",
	})
}
