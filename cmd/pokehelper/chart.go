package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/PokeHelper/internal/pokemon/typechart"
)

var chartCmd = &cobra.Command{
	Use:     "chart <type> [type]",
	Short:   "Show how every attacking type fares against a defending type pair",
	Example: "  pokehelper chart rock ground",
	Args:    cobra.RangeArgs(1, 2),
	RunE:    runChart,
}

func init() {
	rootCmd.AddCommand(chartCmd)
}

func runChart(_ *cobra.Command, args []string) error {
	defender, err := typechart.ParseTypes(strings.Join(args, ","))
	if err != nil {
		return err
	}
	profile := typechart.Weaknesses(defender)

	if jsonOutput {
		return printJSON(struct {
			Defender   []typechart.Type    `json:"defender"`
			Weaknesses []typechart.Matchup `json:"weaknesses"`
		}{defender, profile})
	}
	fmt.Print(formatWeaknesses(defender, profile))
	return nil
}
