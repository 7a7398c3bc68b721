package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ramonehamilton/PokeHelper/internal/analysis"
	"github.com/ramonehamilton/PokeHelper/internal/config"
	"github.com/ramonehamilton/PokeHelper/internal/events"
	"github.com/ramonehamilton/PokeHelper/internal/metrics"
	"github.com/ramonehamilton/PokeHelper/internal/pokemon/gateway"
	"github.com/ramonehamilton/PokeHelper/internal/pokemon/pokeapi"
)

// app bundles the services every command builds from the config.
type app struct {
	gateway      *gateway.Gateway
	metrics      *metrics.GatewayMetrics
	dispatcher   *events.EventDispatcher
	orchestrator *analysis.Orchestrator
}

func newApp(c *config.Config) (*app, error) {
	clientCfg, err := c.ClientConfig()
	if err != nil {
		return nil, err
	}
	client, err := pokeapi.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create PokéAPI client: %w", err)
	}

	m := metrics.NewGatewayMetrics()
	gw, err := gateway.New(gateway.Config{Source: client, Metrics: m})
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway: %w", err)
	}

	dispatcher := events.NewEventDispatcher(nil)
	dispatcher.Register(events.NewLoggingObserver(slog.Default(), false))

	orch, err := analysis.New(analysis.Config{
		Gateway:    gw,
		Dispatcher: dispatcher,
		Options:    c.AnalysisOptions(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}

	return &app{gateway: gw, metrics: m, dispatcher: dispatcher, orchestrator: orch}, nil
}

// applyVersion sets the version filter when v is not blank.
func (a *app) applyVersion(ctx context.Context, v string) error {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	if err := a.orchestrator.SetVersionFilter(ctx, &v); err != nil {
		return fmt.Errorf("%s: %w", a.orchestrator.State().Error, err)
	}
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
