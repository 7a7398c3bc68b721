// Package typechart holds the elemental type enumeration and the Generation 9
// type effectiveness table.
package typechart

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Type is one of the 18 elemental types. The zero value is Normal.
type Type int

const (
	Normal Type = iota
	Fire
	Water
	Electric
	Grass
	Ice
	Fighting
	Poison
	Ground
	Flying
	Psychic
	Bug
	Rock
	Ghost
	Dragon
	Dark
	Steel
	Fairy

	typeCount
)

// labels are the lowercase names PokéAPI uses, indexed by Type.
var labels = [typeCount]string{
	"normal", "fire", "water", "electric", "grass", "ice",
	"fighting", "poison", "ground", "flying",
	"psychic", "bug", "rock", "ghost", "dragon",
	"dark", "steel", "fairy",
}

var byLabel = func() map[string]Type {
	m := make(map[string]Type, typeCount)
	for i, l := range labels {
		m[l] = Type(i)
	}
	return m
}()

// AllTypes returns every type in enumeration order.
func AllTypes() []Type {
	out := make([]Type, typeCount)
	for i := range out {
		out[i] = Type(i)
	}
	return out
}

// ParseType maps a label to its Type. Labels outside the enumeration
// ("unknown", "shadow", "stellar") report false.
func ParseType(label string) (Type, bool) {
	t, ok := byLabel[strings.ToLower(strings.TrimSpace(label))]
	return t, ok
}

// ParseTypes parses a comma-separated list such as "rock,ground".
// Unlike ParseType it rejects unknown and repeated labels, since it is used
// on user input.
func ParseTypes(list string) ([]Type, error) {
	var out []Type
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		t, ok := ParseType(part)
		if !ok {
			return nil, fmt.Errorf("unknown type %q", strings.TrimSpace(part))
		}
		if slices.Contains(out, t) {
			return nil, fmt.Errorf("type %q given more than once", t)
		}
		out = append(out, t)
	}
	return out, nil
}

// Valid reports whether t is inside the enumeration.
func (t Type) Valid() bool {
	return t >= 0 && t < typeCount
}

func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return labels[t]
}

// MarshalJSON encodes the type as its label.
func (t Type) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid type %d", int(t))
	}
	return json.Marshal(labels[t])
}

// UnmarshalJSON decodes a label.
func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseType(s)
	if !ok {
		return fmt.Errorf("unknown type %q", s)
	}
	*t = parsed
	return nil
}
