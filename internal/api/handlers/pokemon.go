package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/PokeHelper/internal/analysis"
	"github.com/ramonehamilton/PokeHelper/internal/api/response"
)

// PokemonHandler handles name search, resolution and analysis requests.
type PokemonHandler struct {
	orch *analysis.Orchestrator
}

// NewPokemonHandler creates a new PokemonHandler.
func NewPokemonHandler(orch *analysis.Orchestrator) *PokemonHandler {
	return &PokemonHandler{orch: orch}
}

// SearchPokemon filters names by substring, or ranks them by similarity
// when fuzzy=true.
func (h *PokemonHandler) SearchPokemon(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	if raw := r.URL.Query().Get("fuzzy"); raw != "" {
		fuzzy, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(w, fmt.Errorf("invalid fuzzy flag %q", raw))
			return
		}
		if fuzzy {
			response.Success(w, h.orch.SuggestNames(query))
			return
		}
	}

	response.Success(w, h.orch.FilterNames(query))
}

// ResolvePokemon maps free text to a known name.
func (h *PokemonHandler) ResolvePokemon(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		response.BadRequest(w, errors.New("query parameter q is required"))
		return
	}

	res, err := h.orch.ResolveName(query)
	switch {
	case errors.Is(err, analysis.ErrNoMatch):
		response.NotFound(w, fmt.Errorf("no pokemon matches %q", query))
	case errors.Is(err, analysis.ErrNamesNotLoaded):
		response.ServiceUnavailable(w, err)
	case err != nil:
		response.InternalError(w, err)
	default:
		response.Success(w, res)
	}
}

// AnalysisResponse carries the result of this request's analysis and the
// shared state after it. Result is null when the analysis failed. When
// another client's request superseded this one, Result still belongs to
// this request while State shows the newer analysis.
type AnalysisResponse struct {
	Result *analysis.Result `json:"result"`
	State  analysis.UIState `json:"state"`
}

// AnalyzePokemon runs an analysis for the named Pokémon. Remote failures
// are reported in the state, not as an HTTP error.
func (h *PokemonHandler) AnalyzePokemon(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	result, err := h.orch.SelectPokemon(r.Context(), name)
	if errors.Is(err, analysis.ErrEmptyName) {
		response.BadRequest(w, err)
		return
	}

	response.Success(w, AnalysisResponse{Result: result, State: h.orch.State()})
}

// AnalyzeTextRequest is the body of an analysis started from free text.
type AnalyzeTextRequest struct {
	Text string `json:"text"`
}

// AnalyzeTextResponse adds the name resolution to an AnalysisResponse.
type AnalyzeTextResponse struct {
	Resolution analysis.Resolution `json:"resolution"`
	AnalysisResponse
}

// AnalyzeText resolves a transcription to a name and analyses it.
func (h *PokemonHandler) AnalyzeText(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		response.BadRequest(w, errors.New("text is required"))
		return
	}

	res, err := h.orch.ResolveName(req.Text)
	switch {
	case errors.Is(err, analysis.ErrNoMatch):
		response.NotFound(w, fmt.Errorf("no pokemon matches %q", req.Text))
		return
	case errors.Is(err, analysis.ErrNamesNotLoaded):
		response.ServiceUnavailable(w, err)
		return
	case err != nil:
		response.InternalError(w, err)
		return
	}

	result, _ := h.orch.SelectPokemon(r.Context(), res.Name)
	response.Success(w, AnalyzeTextResponse{
		Resolution:       res,
		AnalysisResponse: AnalysisResponse{Result: result, State: h.orch.State()},
	})
}
