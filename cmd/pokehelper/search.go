package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	searchVersion string
	searchFuzzy   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "List Pokémon whose names contain the query",
	Example: "  pokehelper search chu\n" +
		"  pokehelper search --version gold\n" +
		"  pokehelper search --fuzzy pikachoo",
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchVersion, "version", "", "Only list Pokémon available in this game version")
	searchCmd.Flags().BoolVar(&searchFuzzy, "fuzzy", false, "Rank by similarity instead of substring match")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	orch := a.orchestrator

	if _, err := orch.LoadAllNames(ctx); err != nil {
		return fmt.Errorf("failed to load Pokémon names: %w", err)
	}
	if err := a.applyVersion(ctx, searchVersion); err != nil {
		return err
	}

	query := strings.Join(args, " ")
	if searchFuzzy {
		matches := orch.SuggestNames(query)
		if jsonOutput {
			return printJSON(matches)
		}
		fmt.Print(formatSuggestions(matches))
		return nil
	}

	names := orch.FilterNames(query)
	if jsonOutput {
		return printJSON(names)
	}
	fmt.Print(formatNames(names))
	return nil
}
