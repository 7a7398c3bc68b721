package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/PokeHelper/internal/api/handlers"
	"github.com/ramonehamilton/PokeHelper/internal/api/response"
	"github.com/ramonehamilton/PokeHelper/internal/version"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	// WebSocket endpoint (no JSON content-type requirement)
	s.router.Get("/ws", s.wsHub.ServeWs)

	s.router.Route("/api/v1", func(r chi.Router) {
		systemHandler := handlers.NewSystemHandler(s.orchestrator, s.metrics)
		r.Get("/state", systemHandler.GetState)
		r.Get("/metrics", systemHandler.GetMetrics)
		r.Get("/version", systemHandler.GetVersion)

		pokemonHandler := handlers.NewPokemonHandler(s.orchestrator)
		r.Route("/pokemon", func(r chi.Router) {
			r.Get("/", pokemonHandler.SearchPokemon)
			r.Get("/resolve", pokemonHandler.ResolvePokemon)
			r.Post("/{name}/analysis", pokemonHandler.AnalyzePokemon)
		})
		r.Post("/analysis", pokemonHandler.AnalyzeText)

		versionHandler := handlers.NewVersionHandler(s.orchestrator)
		r.Route("/versions", func(r chi.Router) {
			r.Get("/", versionHandler.GetVersions)
			r.Put("/filter", versionHandler.SetVersionFilter)
		})

		chartHandler := handlers.NewChartHandler()
		r.Get("/types", chartHandler.GetTypes)
		r.Get("/chart", chartHandler.GetChart)
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	state := s.orchestrator.State()
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"service":     "pokehelper-api",
		"version":     version.GetVersion(),
		"names_ready": len(state.AllNames) > 0,
		"clients":     s.wsHub.ClientCount(),
	})
}
