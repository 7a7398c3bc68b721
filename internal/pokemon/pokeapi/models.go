package pokeapi

import "fmt"

// NamedAPIResource is PokéAPI's {name, url} reference.
type NamedAPIResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// PokemonList is the paged response of /pokemon.
type PokemonList struct {
	Count   int                `json:"count"`
	Results []NamedAPIResource `json:"results"`
}

// PokemonTypeSlot is one entry of a Pokémon's type list.
type PokemonTypeSlot struct {
	Slot int              `json:"slot"`
	Type NamedAPIResource `json:"type"`
}

// PokemonDetail is the subset of /pokemon/{name} the helper needs.
type PokemonDetail struct {
	Name  string            `json:"name"`
	Types []PokemonTypeSlot `json:"types"`
}

// TypePokemonEntry references a Pokémon belonging to a type.
type TypePokemonEntry struct {
	Slot    int              `json:"slot"`
	Pokemon NamedAPIResource `json:"pokemon"`
}

// TypeDetail is the subset of /type/{name} the helper needs.
type TypeDetail struct {
	Name    string             `json:"name"`
	Pokemon []TypePokemonEntry `json:"pokemon"`
}

// VersionList is the paged response of /version.
type VersionList struct {
	Count   int                `json:"count"`
	Results []NamedAPIResource `json:"results"`
}

// VersionDetail is /version/{name}.
type VersionDetail struct {
	Name         string           `json:"name"`
	VersionGroup NamedAPIResource `json:"version_group"`
}

// VersionGroupDetail is /version-group/{name}.
type VersionGroupDetail struct {
	Name      string             `json:"name"`
	Pokedexes []NamedAPIResource `json:"pokedexes"`
}

// PokedexEntry is one species listed in a regional dex.
type PokedexEntry struct {
	EntryNumber    int              `json:"entry_number"`
	PokemonSpecies NamedAPIResource `json:"pokemon_species"`
}

// PokedexDetail is /pokedex/{name}.
type PokedexDetail struct {
	Name           string         `json:"name"`
	PokemonEntries []PokedexEntry `json:"pokemon_entries"`
}

// APIError is returned for non-2xx responses other than 404.
type APIError struct {
	Status int
	URL    string
	Body   string
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("PokéAPI error (HTTP %d) for %s: %s", e.Status, e.URL, e.Body)
	}
	return fmt.Sprintf("PokéAPI error (HTTP %d) for %s", e.Status, e.URL)
}

// NotFoundError represents a 404 from the API.
type NotFoundError struct {
	URL string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}
