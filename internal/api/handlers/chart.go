package handlers

import (
	"errors"
	"net/http"

	"github.com/ramonehamilton/PokeHelper/internal/api/response"
	"github.com/ramonehamilton/PokeHelper/internal/pokemon/typechart"
)

// ChartHandler serves the static type chart. It needs no remote data.
type ChartHandler struct{}

// NewChartHandler creates a new ChartHandler.
func NewChartHandler() *ChartHandler {
	return &ChartHandler{}
}

// ChartResponse is the defensive profile of one or two types.
type ChartResponse struct {
	Defender   []typechart.Type           `json:"defender"`
	Weaknesses []typechart.Matchup        `json:"weaknesses"`
	Ranking    []typechart.TypeMultiplier `json:"ranking"`
}

// GetTypes returns the 18 types in canonical order.
func (h *ChartHandler) GetTypes(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, typechart.AllTypes())
}

// GetChart returns the profile for ?defender=rock,ground.
func (h *ChartHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	defender, err := typechart.ParseTypes(r.URL.Query().Get("defender"))
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	if len(defender) == 0 || len(defender) > 2 {
		response.BadRequest(w, errors.New("defender must name one or two types"))
		return
	}

	response.Success(w, ChartResponse{
		Defender:   defender,
		Weaknesses: typechart.Weaknesses(defender),
		Ranking:    typechart.Rank(defender),
	})
}
