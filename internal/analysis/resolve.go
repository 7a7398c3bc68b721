package analysis

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ramonehamilton/PokeHelper/internal/pokemon/fuzzy"
)

var (
	// ErrNoMatch is returned when free text does not resolve to a known name.
	ErrNoMatch = errors.New("no matching pokemon")
	// ErrNamesNotLoaded is returned by ResolveName before any names are known.
	ErrNamesNotLoaded = errors.New("pokemon names not loaded")
)

// Resolution is the outcome of ResolveName.
type Resolution struct {
	Query string `json:"query"`
	Name  string `json:"name"`
	// Method is one of "exact", "prefix" or "fuzzy".
	Method string `json:"method"`
	Score  int    `json:"score"`
}

// ResolveName maps free text, such as a voice transcription, to a known
// canonical name from the allowed base. Candidates are tried as an exact
// match, then a unique prefix, then the best fuzzy match scoring at least
// ResolveMinScore.
func (o *Orchestrator) ResolveName(query string) (Resolution, error) {
	o.mu.Lock()
	base := o.base
	o.mu.Unlock()

	if len(base) == 0 {
		return Resolution{}, ErrNamesNotLoaded
	}

	key := FoldName(query)
	if key == "" {
		return Resolution{}, ErrNoMatch
	}

	var prefixed []string
	for _, name := range base {
		if name == key {
			return Resolution{Query: query, Name: name, Method: "exact", Score: 100}, nil
		}
		if strings.HasPrefix(name, key) {
			prefixed = append(prefixed, name)
		}
	}
	if len(prefixed) == 1 {
		return Resolution{Query: query, Name: prefixed[0], Method: "prefix", Score: fuzzy.Score(key, prefixed[0])}, nil
	}

	match, ok := fuzzy.Best(key, base, o.opts.ResolveMinScore)
	if !ok {
		return Resolution{}, ErrNoMatch
	}
	return Resolution{Query: query, Name: match.Name, Method: "fuzzy", Score: match.Score}, nil
}

// SuggestNames ranks the allowed base by similarity to query, best first,
// capped at FilterLimit. It backs "did you mean" suggestions where
// FilterNames finds nothing.
func (o *Orchestrator) SuggestNames(query string) []fuzzy.Match {
	o.mu.Lock()
	base := o.base
	o.mu.Unlock()

	return fuzzy.Search(FoldName(query), base, fuzzy.Options{
		MaxResults: o.opts.FilterLimit,
		MinScore:   o.opts.ResolveMinScore,
	})
}

// FoldName converts display text to PokéAPI's key form: accents removed,
// lower case, words joined by hyphens, other punctuation dropped.
// "Mr. Mime" becomes "mr-mime" and "Flabébé" becomes "flabebe".
func FoldName(s string) string {
	// Chained transformers carry state, so each call builds its own.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	for _, word := range strings.FieldsFunc(folded, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_'
	}) {
		clean := strings.Map(func(r rune) rune {
			if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, word)
		if clean == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('-')
		}
		b.WriteString(clean)
	}
	return b.String()
}
