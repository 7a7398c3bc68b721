// Package api serves the orchestrator over REST and streams state changes
// over WebSocket to thin clients.
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ramonehamilton/PokeHelper/internal/analysis"
	"github.com/ramonehamilton/PokeHelper/internal/api/websocket"
	"github.com/ramonehamilton/PokeHelper/internal/events"
	"github.com/ramonehamilton/PokeHelper/internal/metrics"
)

// Server represents the REST API server.
type Server struct {
	router         *chi.Mux
	httpServer     *http.Server
	port           int
	allowedOrigins []string

	// WebSocket hub for state events
	wsHub *websocket.Hub

	orchestrator *analysis.Orchestrator
	metrics      *metrics.GatewayMetrics
}

// Config holds configuration for the API server.
type Config struct {
	Port           int
	AllowedOrigins []string // CORS and WebSocket origin patterns
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
	}
}

// NewServer creates a new API server backed by orch. m may be nil.
func NewServer(cfg *Config, orch *analysis.Orchestrator, m *metrics.GatewayMetrics) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	wsHub := websocket.NewHub(cfg.AllowedOrigins...)
	wsHub.SetSnapshot(func() websocket.Event {
		return websocket.Event{Type: events.StateUpdated, Data: orch.State()}
	})

	s := &Server{
		router:         chi.NewRouter(),
		port:           cfg.Port,
		allowedOrigins: cfg.AllowedOrigins,
		wsHub:          wsHub,
		orchestrator:   orch,
		metrics:        m,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	// Request ID for tracing
	s.router.Use(middleware.RequestID)

	// Real IP detection
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(middleware.Logger)

	// Panic recovery
	s.router.Use(middleware.Recoverer)

	// Request timeout; a cold version resolution can take several fetches
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Content-Type enforcement for POST/PUT/PATCH only (not GET/DELETE/OPTIONS)
	s.router.Use(s.jsonContentTypeMiddleware)
}

// jsonContentTypeMiddleware enforces application/json content-type for requests with bodies.
func (s *Server) jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType != "application/json" && !strings.HasPrefix(contentType, "application/json;") {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the WebSocket hub and the HTTP listener in goroutines.
func (s *Server) Start() error {
	go s.wsHub.Run()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      75 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("[API] Server starting on port %d", s.port)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[API] Server error: %v", err)
		}
	}()

	return nil
}

// Shutdown stops the hub and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsHub.Stop()

	if s.httpServer == nil {
		return nil
	}

	log.Println("[API] Shutting down server...")
	return s.httpServer.Shutdown(ctx)
}

// Port returns the port the server is configured to listen on.
func (s *Server) Port() int {
	return s.port
}

// NewWebSocketObserver creates an observer that forwards dispatched events
// to WebSocket clients. Config reloads stay server-side.
func (s *Server) NewWebSocketObserver() *websocket.WebSocketObserver {
	return websocket.NewWebSocketObserver(s.wsHub, events.ConfigReloaded)
}
