package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/PokeHelper/internal/analysis"
	"github.com/ramonehamilton/PokeHelper/internal/pokemon/fuzzy"
)

var analyzeVersion string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <name>",
	Short: "Show the best attacking types and counters for a Pokémon",
	Long: "Analyze resolves the name (typos and spacing are forgiven), ranks the attacking " +
		"types that are super effective against it and lists Pokémon of the two best types.",
	Example: "  pokehelper analyze garchomp\n  pokehelper analyze \"mr mime\" --version red",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeVersion, "version", "", "Only suggest Pokémon available in this game version")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	orch := a.orchestrator

	if _, err := orch.LoadAllNames(ctx); err != nil {
		return fmt.Errorf("failed to load Pokémon names: %w", err)
	}

	v := analyzeVersion
	if v == "" {
		v = cfg.Analysis.DefaultVersion
	}
	if err := a.applyVersion(ctx, v); err != nil {
		return err
	}

	query := strings.Join(args, " ")
	res, err := orch.ResolveName(query)
	if errors.Is(err, analysis.ErrNoMatch) {
		return noMatchError(query, orch.SuggestNames(query))
	}
	if err != nil {
		return err
	}
	if res.Method != "exact" {
		fmt.Fprintf(os.Stderr, "Using %s for %q\n", res.Name, query)
	}

	result, err := orch.SelectPokemon(ctx, res.Name)
	if err != nil {
		return fmt.Errorf("%s (%w)", orch.State().Error, err)
	}

	if jsonOutput {
		return printJSON(result)
	}
	fmt.Print(formatAnalysis(result, orch.State().SelectedVersion))
	return nil
}

func noMatchError(query string, suggestions []fuzzy.Match) error {
	if len(suggestions) == 0 {
		return fmt.Errorf("no Pokémon matches %q", query)
	}
	names := make([]string, 0, 3)
	for _, m := range suggestions[:min(3, len(suggestions))] {
		names = append(names, m.Name)
	}
	return fmt.Errorf("no Pokémon matches %q, did you mean %s?", query, strings.Join(names, ", "))
}
