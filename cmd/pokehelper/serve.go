package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/PokeHelper/internal/api"
	"github.com/ramonehamilton/PokeHelper/internal/config"
	"github.com/ramonehamilton/PokeHelper/internal/events"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local REST and WebSocket API",
	Long: "Serve exposes search, analysis and the version filter over REST under /api/v1 " +
		"and pushes every state change to WebSocket clients on /ws. Edits to the config " +
		"file's default_version are applied without a restart.",
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "API server port (default: server.port from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	port := cfg.Server.Port
	if servePort != 0 {
		port = servePort
	}

	server := api.NewServer(&api.Config{
		Port:           port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, a.orchestrator, a.metrics)
	a.dispatcher.Register(server.NewWebSocketObserver())

	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	fmt.Printf("PokeHelper API running at http://localhost:%d\n", server.Port())
	fmt.Println("Press Ctrl+C to stop")

	go warm(ctx, a, cfg.Analysis.DefaultVersion)
	go watchConfig(ctx, a, cfg)

	<-ctx.Done()
	fmt.Println("\nShutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error during shutdown: %w", err)
	}
	fmt.Println("API server stopped.")
	return nil
}

// warm loads names and versions so the first client sees a populated state.
// The server keeps running if PokéAPI is unreachable; clients get the error
// in the state and can retry.
func warm(ctx context.Context, a *app, defaultVersion string) {
	if err := a.orchestrator.Warm(ctx); err != nil {
		slog.Warn("Initial load failed", "error", err)
		return
	}
	if err := a.applyVersion(ctx, defaultVersion); err != nil {
		slog.Warn("Could not apply default version", "version", defaultVersion, "error", err)
	}
}

func watchConfig(ctx context.Context, a *app, initial *config.Config) {
	current := initial
	err := config.Watch(ctx, configPath, slog.Default(), func(next *config.Config) {
		if next.Analysis.DefaultVersion != current.Analysis.DefaultVersion {
			v := next.Analysis.DefaultVersion
			if err := a.orchestrator.SetVersionFilter(ctx, &v); err != nil {
				slog.Warn("Could not apply default version", "version", v, "error", err)
			}
		}
		if next.AnalysisOptions() != current.AnalysisOptions() || next.API != current.API ||
			next.Server.Port != current.Server.Port {
			slog.Warn("Only default_version is applied live, restart to use the other changes")
		}
		current = next

		a.dispatcher.Dispatch(events.NewTypedEvent(ctx, events.ConfigReloaded, events.ConfigReloadedEvent{Path: configPath}))
	})
	if err != nil {
		slog.Warn("Config file will not be watched", "path", configPath, "error", err)
	}
}
