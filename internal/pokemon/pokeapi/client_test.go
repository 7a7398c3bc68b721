package pokeapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{
		BaseURL:           server.URL + "/api/v2",
		RequestsPerSecond: 1000,
		MaxRetries:        2,
	})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	client.initialBackoff = time.Millisecond
	return client
}

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(ClientConfig{})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	if client.httpClient == nil {
		t.Error("httpClient is nil")
	}
	if client.rateLimiter == nil {
		t.Error("rateLimiter is nil")
	}
	if client.userAgent == "" {
		t.Error("userAgent is empty")
	}
	if got := client.baseURL.String(); got != DefaultBaseURL {
		t.Errorf("baseURL = %s, want %s", got, DefaultBaseURL)
	}
	if client.maxRetries != defaultMaxRetries {
		t.Errorf("maxRetries = %d, want %d", client.maxRetries, defaultMaxRetries)
	}
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	if _, err := NewClient(ClientConfig{BaseURL: "://bad"}); err == nil {
		t.Fatal("expected error for invalid base URL")
	}
}

func TestClient_ListPokemon(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/pokemon" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "2000" {
			t.Errorf("limit = %s, want 2000", got)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("User-Agent header missing")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count":2,"results":[
			{"name":"bulbasaur","url":"https://pokeapi.co/api/v2/pokemon/1/"},
			{"name":"ivysaur","url":"https://pokeapi.co/api/v2/pokemon/2/"}]}`))
	})

	list, err := client.ListPokemon(context.Background(), FullPage, 0)
	if err != nil {
		t.Fatalf("ListPokemon() error: %v", err)
	}
	if list.Count != 2 || len(list.Results) != 2 || list.Results[1].Name != "ivysaur" {
		t.Errorf("unexpected list: %+v", list)
	}
}

func TestClient_GetPokemon(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/pokemon/charizard" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"name":"charizard","types":[
			{"slot":2,"type":{"name":"flying","url":""}},
			{"slot":1,"type":{"name":"fire","url":""}}]}`))
	})

	detail, err := client.GetPokemon(context.Background(), "charizard")
	if err != nil {
		t.Fatalf("GetPokemon() error: %v", err)
	}
	if len(detail.Types) != 2 || detail.Types[1].Type.Name != "fire" || detail.Types[1].Slot != 1 {
		t.Errorf("unexpected detail: %+v", detail)
	}
}

func TestClient_VersionChain(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/version/scarlet":
			w.Write([]byte(`{"name":"scarlet","version_group":{"name":"scarlet-violet","url":""}}`))
		case "/api/v2/version-group/scarlet-violet":
			w.Write([]byte(`{"name":"scarlet-violet","pokedexes":[{"name":"paldea","url":""}]}`))
		case "/api/v2/pokedex/paldea":
			w.Write([]byte(`{"name":"paldea","pokemon_entries":[{"entry_number":1,"pokemon_species":{"name":"sprigatito","url":""}}]}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	v, err := client.GetVersion(ctx, "scarlet")
	if err != nil {
		t.Fatalf("GetVersion() error: %v", err)
	}
	g, err := client.GetVersionGroup(ctx, v.VersionGroup.Name)
	if err != nil {
		t.Fatalf("GetVersionGroup() error: %v", err)
	}
	d, err := client.GetPokedex(ctx, g.Pokedexes[0].Name)
	if err != nil {
		t.Fatalf("GetPokedex() error: %v", err)
	}
	if d.PokemonEntries[0].PokemonSpecies.Name != "sprigatito" {
		t.Errorf("unexpected pokedex: %+v", d)
	}
}

func TestClient_NotFoundError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Not Found"))
	})

	_, err := client.GetPokemon(context.Background(), "missingno")
	if err == nil {
		t.Fatal("expected error for 404, got nil")
	}
	if !IsNotFound(err) {
		t.Errorf("expected NotFoundError, got: %v", err)
	}
}

func TestClient_RateLimitRetry(t *testing.T) {
	var attempts atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 2 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"name":"ground","pokemon":[{"slot":1,"pokemon":{"name":"sandshrew","url":""}}]}`))
	})

	detail, err := client.GetType(context.Background(), "ground")
	if err != nil {
		t.Fatalf("expected success after retry, got error: %v", err)
	}
	if attempts.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts.Load())
	}
	if detail.Pokemon[0].Pokemon.Name != "sandshrew" {
		t.Errorf("unexpected type detail: %+v", detail)
	}
}

func TestClient_ServerErrorRetriesThenFails(t *testing.T) {
	var attempts atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	})

	_, err := client.ListVersions(context.Background(), FullPage, 0)
	if err == nil {
		t.Fatal("expected error after max retries, got nil")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadGateway {
		t.Errorf("expected APIError 502, got: %v", err)
	}
	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestClient_ClientErrorNotRetried(t *testing.T) {
	var attempts atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})

	if _, err := client.GetVersion(context.Background(), "x"); err == nil {
		t.Fatal("expected error, got nil")
	}
	if attempts.Load() != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts.Load())
	}
}

func TestClient_InvalidJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{invalid json}`))
	})

	if _, err := client.GetPokedex(context.Background(), "kanto"); err == nil {
		t.Fatal("expected JSON error, got nil")
	}
}

func TestClient_ContextCanceled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetPokemon(ctx, "pikachu")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
}
