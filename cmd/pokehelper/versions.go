package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/PokeHelper/internal/analysis"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List the game versions accepted by --version",
	Args:  cobra.NoArgs,
	RunE:  runVersions,
}

func init() {
	rootCmd.AddCommand(versionsCmd)
}

func runVersions(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	versions, err := a.orchestrator.LoadVersions(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load versions: %w", err)
	}

	if jsonOutput {
		return printJSON(versions)
	}
	for _, v := range versions {
		fmt.Printf("%-28s %s\n", v, titleColor.Sprint(analysis.DisplayVersion(v)))
	}
	return nil
}
