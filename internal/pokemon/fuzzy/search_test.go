package fuzzy

import "testing"

func TestScore(t *testing.T) {
	tests := []struct {
		query, target string
		min, max      int
	}{
		{"pikachu", "pikachu", 100, 100},
		{"pika", "pikachu", 85, 99},
		{"chu", "pikachu", 70, 84},
		{"pikachoo", "pikachu", 60, 80},
		{"", "pikachu", 0, 0},
		{"zzzz", "pikachu", 0, 10},
	}

	for _, tt := range tests {
		got := Score(tt.query, tt.target)
		if got < tt.min || got > tt.max {
			t.Errorf("Score(%q, %q) = %d, want in [%d, %d]", tt.query, tt.target, got, tt.min, tt.max)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"flabébé", "flabebe", 2},
		{"mew", "mew", 0},
	}

	for _, tt := range tests {
		if got := levenshtein([]rune(tt.a), []rune(tt.b)); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSearch_OrderAndLimit(t *testing.T) {
	names := []string{"charmander", "charmeleon", "charizard", "squirtle"}

	got := Search("Charm", names, Options{MinScore: 50})
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2: %+v", len(got), got)
	}
	if got[0].Name != "charmander" || got[1].Name != "charmeleon" {
		t.Errorf("unexpected order: %+v", got)
	}

	got = Search("charm", names, Options{MinScore: 50, MaxResults: 1})
	if len(got) != 1 {
		t.Errorf("MaxResults not applied: %+v", got)
	}

	if got := Search("   ", names, Options{MaxResults: 20, MinScore: 50}); got != nil {
		t.Errorf("blank query should match nothing, got %+v", got)
	}
}

func TestBest(t *testing.T) {
	names := []string{"bulbasaur", "ivysaur", "venusaur"}

	m, ok := Best("bulbasor", names, 60)
	if !ok || m.Name != "bulbasaur" {
		t.Errorf("Best(bulbasor) = %+v, %v", m, ok)
	}

	if _, ok := Best("xyz", names, 60); ok {
		t.Error("expected no match for xyz")
	}
}
