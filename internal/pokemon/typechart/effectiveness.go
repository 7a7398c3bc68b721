package typechart

import "sort"

// TypeMultiplier pairs an attacking type with its combined multiplier
// against a defender.
type TypeMultiplier struct {
	Type       Type    `json:"type"`
	Multiplier float64 `json:"multiplier"`
}

// Matchup groups the attacking types that share a multiplier.
type Matchup struct {
	Multiplier float64 `json:"multiplier"`
	Types      []Type  `json:"types"`
}

// Effectiveness folds the defender's types through the chart, starting at 1x.
func Effectiveness(attacker Type, defenders []Type) float64 {
	acc := 1.0
	for _, d := range defenders {
		acc *= Lookup(attacker, d)
	}
	return acc
}

// Rank computes every attacking type against the defender and orders them by
// multiplier, highest first. Ties keep enumeration order.
func Rank(defenders []Type) []TypeMultiplier {
	ranked := make([]TypeMultiplier, 0, typeCount)
	for _, atk := range AllTypes() {
		ranked = append(ranked, TypeMultiplier{Type: atk, Multiplier: Effectiveness(atk, defenders)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Multiplier > ranked[j].Multiplier
	})
	return ranked
}

// SuperEffective returns the ranked attackers whose multiplier exceeds 1x,
// truncated to limit. A non-positive limit keeps them all.
func SuperEffective(defenders []Type, limit int) []TypeMultiplier {
	var out []TypeMultiplier
	for _, tm := range Rank(defenders) {
		if tm.Multiplier <= 1.0 {
			break
		}
		out = append(out, tm)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Weaknesses buckets all attacking types by multiplier for a defensive
// profile, highest multiplier first. Empty buckets are omitted.
func Weaknesses(defenders []Type) []Matchup {
	var profile []Matchup
	for _, tm := range Rank(defenders) {
		n := len(profile)
		if n > 0 && profile[n-1].Multiplier == tm.Multiplier {
			profile[n-1].Types = append(profile[n-1].Types, tm.Type)
			continue
		}
		profile = append(profile, Matchup{Multiplier: tm.Multiplier, Types: []Type{tm.Type}})
	}
	return profile
}
