package analysis

import "fmt"

// Options holds the numeric knobs of the analysis pipeline.
type Options struct {
	TopTypes        int // super-effective types reported
	CounterTypes    int // leading types that contribute examples
	ExamplesPerType int
	MaxExamples     int
	FilterLimit     int
	// ResolveMinScore is the lowest fuzzy score ResolveName accepts (0-100).
	ResolveMinScore int
}

// DefaultOptions returns the standard pipeline settings.
func DefaultOptions() Options {
	return Options{
		TopTypes:        5,
		CounterTypes:    2,
		ExamplesPerType: 8,
		MaxExamples:     12,
		FilterLimit:     20,
		ResolveMinScore: 60,
	}
}

// Validate checks that every limit is usable.
func (o Options) Validate() error {
	checks := []struct {
		name  string
		value int
	}{
		{"top types", o.TopTypes},
		{"counter types", o.CounterTypes},
		{"examples per type", o.ExamplesPerType},
		{"max examples", o.MaxExamples},
		{"filter limit", o.FilterLimit},
	}
	for _, c := range checks {
		if c.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", c.name, c.value)
		}
	}
	if o.ResolveMinScore < 0 || o.ResolveMinScore > 100 {
		return fmt.Errorf("resolve min score must be between 0 and 100, got %d", o.ResolveMinScore)
	}
	return nil
}
