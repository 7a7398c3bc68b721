package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/ramonehamilton/PokeHelper/internal/analysis"
	"github.com/ramonehamilton/PokeHelper/internal/pokemon/fuzzy"
	"github.com/ramonehamilton/PokeHelper/internal/pokemon/typechart"
)

var (
	titleColor  = color.New(color.FgCyan, color.Bold)
	quadColor   = color.New(color.FgRed, color.Bold)
	superColor  = color.New(color.FgYellow)
	resistColor = color.New(color.FgGreen)
	immuneColor = color.New(color.FgHiBlack)
)

// formatMultiplier renders 4 as "4x" and 0.25 as "0.25x", right-aligned to
// width and colored by how much damage it means for the defender. Padding
// is applied before coloring so escape codes do not skew the columns.
func formatMultiplier(m float64, width int) string {
	s := fmt.Sprintf("%*s", width, strconv.FormatFloat(m, 'g', -1, 64)+"x")
	switch {
	case m >= 4:
		return quadColor.Sprint(s)
	case m > 1:
		return superColor.Sprint(s)
	case m == 0:
		return immuneColor.Sprint(s)
	case m < 1:
		return resistColor.Sprint(s)
	default:
		return s
	}
}

func formatTypes(types []typechart.Type) string {
	labels := make([]string, len(types))
	for i, t := range types {
		labels[i] = analysis.DisplayName(t.String())
	}
	return strings.Join(labels, " / ")
}

func formatAnalysis(r *analysis.Result, version *string) string {
	var sb strings.Builder

	sb.WriteString(titleColor.Sprintf("%s (%s)\n", r.TargetName, formatTypes(r.TargetTypes)))
	sb.WriteString(strings.Repeat("─", 40) + "\n")

	if len(r.BestTypes) == 0 {
		sb.WriteString("No attacking type is super effective.\n")
	} else {
		sb.WriteString("Super effective types:\n")
		for _, tm := range r.BestTypes {
			fmt.Fprintf(&sb, "  %-10s %s\n", analysis.DisplayName(tm.Type.String()), formatMultiplier(tm.Multiplier, 0))
		}
	}

	sb.WriteString("\n")
	header := "Suggested counters"
	if version != nil {
		header += " in " + analysis.DisplayVersion(*version)
	}
	if len(r.Examples) == 0 {
		sb.WriteString(header + ": none found\n")
		return sb.String()
	}
	sb.WriteString(header + ":\n")
	for _, name := range r.Examples {
		fmt.Fprintf(&sb, "  %s\n", analysis.DisplayName(name))
	}
	return sb.String()
}

func formatWeaknesses(defender []typechart.Type, profile []typechart.Matchup) string {
	var sb strings.Builder

	sb.WriteString(titleColor.Sprintf("Defending %s\n", formatTypes(defender)))
	sb.WriteString(strings.Repeat("─", 40) + "\n")
	for _, m := range profile {
		fmt.Fprintf(&sb, "%s  %s\n", formatMultiplier(m.Multiplier, 5), formatTypes(m.Types))
	}
	return sb.String()
}

func formatNames(names []string) string {
	if len(names) == 0 {
		return "No Pokémon found\n"
	}
	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(name + "\n")
	}
	return sb.String()
}

func formatSuggestions(matches []fuzzy.Match) string {
	if len(matches) == 0 {
		return "No Pokémon found\n"
	}
	var sb strings.Builder
	for _, m := range matches {
		fmt.Fprintf(&sb, "%-20s %s\n", m.Name, color.HiBlackString("%d", m.Score))
	}
	return sb.String()
}
