// Package main provides the pokehelper command line: a counter lookup for
// the terminal and a local API server for thin clients.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ramonehamilton/PokeHelper/internal/config"
	"github.com/ramonehamilton/PokeHelper/internal/version"
)

var (
	configPath string
	debugMode  bool
	jsonOutput bool
	noColor    bool

	// Loaded once by the root command before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "pokehelper",
	Short: "Find the attacking types and Pokémon that counter a Pokémon",
	Long: "PokeHelper looks up a Pokémon on PokéAPI, ranks the attacking types that are " +
		"super effective against it and suggests Pokémon of those types, optionally " +
		"limited to the Pokémon available in one game version.",
	Version:           version.GetVersion(),
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.pokehelper/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func loadConfig(_ *cobra.Command, _ []string) error {
	if configPath == "" {
		path, err := config.DefaultPath()
		if err != nil {
			return err
		}
		configPath = path
	}

	loaded, err := config.LoadOrCreate(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = loaded

	level := slog.LevelWarn
	if debugMode || cfg.App.DebugMode {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if noColor {
		color.NoColor = true
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
