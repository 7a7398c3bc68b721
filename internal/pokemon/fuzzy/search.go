// Package fuzzy ranks Pokémon names by similarity to a free-text query.
package fuzzy

import (
	"sort"
	"strings"
)

// Match is a scored candidate name.
type Match struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Index int    `json:"-"`
}

// Options configures Search.
type Options struct {
	// MaxResults limits the number of results returned (0 = unlimited)
	MaxResults int
	// MinScore sets minimum score threshold (0-100)
	MinScore int
}

// Search scores every name against query and returns the matches at or
// above opts.MinScore, best first. Ties keep the input order.
// Comparison is case-insensitive.
func Search(query string, names []string, opts Options) []Match {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	matches := make([]Match, 0, len(names))
	for i, name := range names {
		score := Score(query, strings.ToLower(name))
		if score >= opts.MinScore {
			matches = append(matches, Match{Name: name, Score: score, Index: i})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if opts.MaxResults > 0 && len(matches) > opts.MaxResults {
		matches = matches[:opts.MaxResults]
	}
	return matches
}

// Best returns the highest scoring name, if any reaches minScore.
func Best(query string, names []string, minScore int) (Match, bool) {
	matches := Search(query, names, Options{MaxResults: 1, MinScore: minScore})
	if len(matches) == 0 {
		return Match{}, false
	}
	return matches[0], true
}

// Score rates the similarity of query and target from 0 to 100.
// Both arguments are compared as given.
func Score(query, target string) int {
	if query == target {
		return 100
	}
	if query == "" || target == "" {
		return 0
	}

	q, t := []rune(query), []rune(target)

	if strings.HasPrefix(target, query) {
		return 85 + len(q)*10/len(t)
	}
	if strings.Contains(target, query) {
		return 70 + len(q)*20/len(t)
	}

	distance := levenshtein(q, t)
	return 100 - distance*100/max(len(q), len(t))
}

// levenshtein is the single-character edit distance between a and b.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
