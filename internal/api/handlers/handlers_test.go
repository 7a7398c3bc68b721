package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/PokeHelper/internal/analysis"
	"github.com/ramonehamilton/PokeHelper/internal/metrics"
	"github.com/ramonehamilton/PokeHelper/internal/pokemon/gateway"
	"github.com/ramonehamilton/PokeHelper/internal/pokemon/typechart"
)

type fakeGateway struct {
	names    []string
	versions []string
	types    map[string][]typechart.Type
	examples map[typechart.Type][]string
	allowed  map[string]gateway.NameSet
	block    map[string]chan struct{} // TypesFor waits on these
}

func (f *fakeGateway) ListAllNames(context.Context) ([]string, error) { return f.names, nil }

func (f *fakeGateway) ListAllVersions(context.Context) ([]string, error) { return f.versions, nil }

func (f *fakeGateway) TypesFor(_ context.Context, name string) ([]typechart.Type, error) {
	if gate := f.block[name]; gate != nil {
		<-gate
	}
	t, ok := f.types[name]
	if !ok {
		return nil, errors.New("not found")
	}
	return t, nil
}

func (f *fakeGateway) ExamplesFor(_ context.Context, t typechart.Type, limit int) ([]string, error) {
	ex := f.examples[t]
	if len(ex) > limit {
		ex = ex[:limit]
	}
	return ex, nil
}

func (f *fakeGateway) VersionAllowedNames(_ context.Context, v string) (gateway.NameSet, error) {
	s, ok := f.allowed[v]
	if !ok {
		return nil, errors.New("unknown version")
	}
	return s, nil
}

func newTestRouter(t *testing.T) (*chi.Mux, *analysis.Orchestrator) {
	t.Helper()
	return newTestRouterWithBlock(t, nil)
}

func newTestRouterWithBlock(t *testing.T, block map[string]chan struct{}) (*chi.Mux, *analysis.Orchestrator) {
	t.Helper()
	gw := &fakeGateway{
		block:    block,
		names:    []string{"pikachu", "raichu", "sandshrew", "mr-mime"},
		versions: []string{"red", "blue"},
		types: map[string][]typechart.Type{
			"pikachu": {typechart.Electric},
			"raichu":  {typechart.Electric},
		},
		examples: map[typechart.Type][]string{
			typechart.Ground: {"sandshrew", "diglett"},
		},
		allowed: map[string]gateway.NameSet{
			"red": gateway.NewNameSet("pikachu", "diglett"),
		},
	}
	orch, err := analysis.New(analysis.Config{Gateway: gw})
	require.NoError(t, err)
	require.NoError(t, orch.Warm(context.Background()))

	pokemon := NewPokemonHandler(orch)
	versions := NewVersionHandler(orch)
	chart := NewChartHandler()
	system := NewSystemHandler(orch, metrics.NewGatewayMetrics())

	r := chi.NewRouter()
	r.Get("/state", system.GetState)
	r.Get("/metrics", system.GetMetrics)
	r.Get("/version", system.GetVersion)
	r.Get("/pokemon", pokemon.SearchPokemon)
	r.Get("/pokemon/resolve", pokemon.ResolvePokemon)
	r.Post("/pokemon/{name}/analysis", pokemon.AnalyzePokemon)
	r.Post("/analysis", pokemon.AnalyzeText)
	r.Get("/versions", versions.GetVersions)
	r.Put("/versions/filter", versions.SetVersionFilter)
	r.Get("/types", chart.GetTypes)
	r.Get("/chart", chart.GetChart)
	return r, orch
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, json.RawMessage) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	}
	return w, envelope.Data
}

func TestSearchPokemon(t *testing.T) {
	r, _ := newTestRouter(t)

	w, data := do(t, r, http.MethodGet, "/pokemon?q=CHU", "")
	require.Equal(t, http.StatusOK, w.Code)
	var names []string
	require.NoError(t, json.Unmarshal(data, &names))
	assert.Equal(t, []string{"pikachu", "raichu"}, names)

	w, data = do(t, r, http.MethodGet, "/pokemon?q=pikachoo&fuzzy=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	var matches []struct {
		Name  string `json:"name"`
		Score int    `json:"score"`
	}
	require.NoError(t, json.Unmarshal(data, &matches))
	require.NotEmpty(t, matches)
	assert.Equal(t, "pikachu", matches[0].Name)

	w, _ = do(t, r, http.MethodGet, "/pokemon?fuzzy=maybe", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolvePokemon(t *testing.T) {
	r, _ := newTestRouter(t)

	w, data := do(t, r, http.MethodGet, "/pokemon/resolve?q=Mr.+Mime", "")
	require.Equal(t, http.StatusOK, w.Code)
	var res analysis.Resolution
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, "mr-mime", res.Name)

	w, _ = do(t, r, http.MethodGet, "/pokemon/resolve?q=zzzzzz", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodGet, "/pokemon/resolve", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzePokemon(t *testing.T) {
	r, _ := newTestRouter(t)

	w, data := do(t, r, http.MethodPost, "/pokemon/pikachu/analysis", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp AnalysisResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	require.NotNil(t, resp.Result)
	assert.Equal(t, "Pikachu", resp.Result.TargetName)
	assert.Equal(t, []string{"sandshrew", "diglett"}, resp.Result.Examples)
	require.Len(t, resp.Result.BestTypes, 1)
	assert.Equal(t, typechart.Ground, resp.Result.BestTypes[0].Type)

	assert.Equal(t, analysis.StatusReady, resp.State.Status)
	require.NotNil(t, resp.State.Analysis)
	assert.Equal(t, "Pikachu", resp.State.Analysis.TargetName)
}

func TestAnalyzePokemon_SupersededRequestKeepsItsResult(t *testing.T) {
	gate := make(chan struct{})
	r, orch := newTestRouterWithBlock(t, map[string]chan struct{}{"pikachu": gate})

	done := make(chan AnalysisResponse, 1)
	go func() {
		req := httptest.NewRequest(http.MethodPost, "/pokemon/pikachu/analysis", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		var envelope struct {
			Data AnalysisResponse `json:"data"`
		}
		_ = json.Unmarshal(w.Body.Bytes(), &envelope)
		done <- envelope.Data
	}()
	require.Eventually(t, func() bool { return orch.State().IsLoading }, time.Second, 5*time.Millisecond)

	w, data := do(t, r, http.MethodPost, "/pokemon/raichu/analysis", "")
	require.Equal(t, http.StatusOK, w.Code)
	var newer AnalysisResponse
	require.NoError(t, json.Unmarshal(data, &newer))
	require.NotNil(t, newer.Result)
	assert.Equal(t, "Raichu", newer.Result.TargetName)

	close(gate)
	older := <-done
	require.NotNil(t, older.Result)
	assert.Equal(t, "Pikachu", older.Result.TargetName)
	require.NotNil(t, older.State.Analysis)
	assert.Equal(t, "Raichu", older.State.Analysis.TargetName)
}

func TestAnalyzePokemon_FailureIsState(t *testing.T) {
	r, _ := newTestRouter(t)

	w, data := do(t, r, http.MethodPost, "/pokemon/missingno/analysis", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp AnalysisResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Nil(t, resp.Result)
	assert.Equal(t, analysis.StatusFailed, resp.State.Status)
	assert.Nil(t, resp.State.Analysis)
	assert.NotEmpty(t, resp.State.Error)
}

func TestAnalyzeText(t *testing.T) {
	r, _ := newTestRouter(t)

	w, data := do(t, r, http.MethodPost, "/analysis", `{"text":"Pikachu"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp AnalyzeTextResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, "pikachu", resp.Resolution.Name)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "Pikachu", resp.Result.TargetName)
	assert.Equal(t, analysis.StatusReady, resp.State.Status)

	w, _ = do(t, r, http.MethodPost, "/analysis", `{"text":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPost, "/analysis", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVersions(t *testing.T) {
	r, orch := newTestRouter(t)

	w, data := do(t, r, http.MethodGet, "/versions", "")
	require.Equal(t, http.StatusOK, w.Code)
	var versions []string
	require.NoError(t, json.Unmarshal(data, &versions))
	assert.Equal(t, []string{"blue", "red"}, versions)

	w, data = do(t, r, http.MethodPut, "/versions/filter", `{"version":"red"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var state analysis.UIState
	require.NoError(t, json.Unmarshal(data, &state))
	require.NotNil(t, state.SelectedVersion)
	assert.Equal(t, "red", *state.SelectedVersion)
	assert.Equal(t, []string{"diglett", "pikachu"}, state.FilteredNames)

	w, data = do(t, r, http.MethodPut, "/versions/filter", `{"version":null}`)
	require.Equal(t, http.StatusOK, w.Code)
	state = analysis.UIState{}
	require.NoError(t, json.Unmarshal(data, &state))
	assert.Nil(t, state.SelectedVersion)
	assert.Nil(t, orch.State().SelectedVersion)

	w, data = do(t, r, http.MethodPut, "/versions/filter", `{"version":"gold"}`)
	require.Equal(t, http.StatusOK, w.Code)
	state = analysis.UIState{}
	require.NoError(t, json.Unmarshal(data, &state))
	assert.NotEmpty(t, state.Error)

	w, _ = do(t, r, http.MethodPut, "/versions/filter", `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChart(t *testing.T) {
	r, _ := newTestRouter(t)

	w, data := do(t, r, http.MethodGet, "/types", "")
	require.Equal(t, http.StatusOK, w.Code)
	var types []typechart.Type
	require.NoError(t, json.Unmarshal(data, &types))
	assert.Len(t, types, 18)
	assert.Equal(t, typechart.Normal, types[0])

	w, data = do(t, r, http.MethodGet, "/chart?defender=rock,ground", "")
	require.Equal(t, http.StatusOK, w.Code)
	var chart ChartResponse
	require.NoError(t, json.Unmarshal(data, &chart))
	assert.Equal(t, []typechart.Type{typechart.Rock, typechart.Ground}, chart.Defender)
	require.NotEmpty(t, chart.Weaknesses)
	assert.Equal(t, 4.0, chart.Weaknesses[0].Multiplier)
	assert.Equal(t, []typechart.Type{typechart.Water, typechart.Grass}, chart.Weaknesses[0].Types)
	assert.Len(t, chart.Ranking, 18)

	for _, bad := range []string{"/chart", "/chart?defender=shadow", "/chart?defender=fire,water,grass", "/chart?defender=fire,fire"} {
		w, _ = do(t, r, http.MethodGet, bad, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
}

func TestSystem(t *testing.T) {
	r, _ := newTestRouter(t)

	w, data := do(t, r, http.MethodGet, "/state", "")
	require.Equal(t, http.StatusOK, w.Code)
	var state analysis.UIState
	require.NoError(t, json.Unmarshal(data, &state))
	assert.Equal(t, analysis.StatusIdle, state.Status)
	assert.Len(t, state.AllNames, 4)

	w, data = do(t, r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(data), "cache_hit_rate")

	w, data = do(t, r, http.MethodGet, "/version", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(data), "pokehelper-api")
}
