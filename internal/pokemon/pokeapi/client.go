// Package pokeapi is a rate-limited client for the read-only PokéAPI v2.
package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ramonehamilton/PokeHelper/internal/version"
)

const (
	DefaultBaseURL = "https://pokeapi.co/api/v2/"

	// FullPage is large enough to dump every Pokémon or version in one call.
	FullPage = 2000

	defaultRequestsPerSecond = 10
	defaultTimeout           = 30 * time.Second
	defaultMaxRetries        = 3
	initialBackoff           = 1 * time.Second
	maxBackoff               = 16 * time.Second
	maxErrorBody             = 512
)

// ClientConfig configures a Client. Zero fields take defaults.
type ClientConfig struct {
	BaseURL           string
	UserAgent         string
	RequestsPerSecond float64
	Timeout           time.Duration
	MaxRetries        int

	// HTTPClient overrides the transport; Timeout is ignored when set.
	HTTPClient *http.Client
}

// DefaultClientConfig returns the production settings.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:           DefaultBaseURL,
		UserAgent:         version.UserAgent(),
		RequestsPerSecond: defaultRequestsPerSecond,
		Timeout:           defaultTimeout,
		MaxRetries:        defaultMaxRetries,
	}
}

// Client represents a PokéAPI client with rate limiting.
type Client struct {
	httpClient     *http.Client
	rateLimiter    *rate.Limiter
	baseURL        *url.URL
	userAgent      string
	maxRetries     int
	initialBackoff time.Duration
}

// NewClient creates a new PokéAPI client.
func NewClient(cfg ClientConfig) (*Client, error) {
	defaults := DefaultClientConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaults.RequestsPerSecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL %q: %w", cfg.BaseURL, err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		httpClient:     httpClient,
		rateLimiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		baseURL:        base,
		userAgent:      cfg.UserAgent,
		maxRetries:     cfg.MaxRetries,
		initialBackoff: initialBackoff,
	}, nil
}

// ListPokemon retrieves one page of Pokémon references.
func (c *Client) ListPokemon(ctx context.Context, limit, offset int) (*PokemonList, error) {
	var list PokemonList
	if err := c.doRequest(ctx, c.endpoint(pageQuery(limit, offset), "pokemon"), &list); err != nil {
		return nil, fmt.Errorf("failed to list pokemon: %w", err)
	}
	return &list, nil
}

// GetPokemon retrieves a Pokémon by name or id.
func (c *Client) GetPokemon(ctx context.Context, name string) (*PokemonDetail, error) {
	var detail PokemonDetail
	if err := c.doRequest(ctx, c.endpoint(nil, "pokemon", name), &detail); err != nil {
		return nil, fmt.Errorf("failed to get pokemon %s: %w", name, err)
	}
	return &detail, nil
}

// GetType retrieves a type and its member Pokémon.
func (c *Client) GetType(ctx context.Context, name string) (*TypeDetail, error) {
	var detail TypeDetail
	if err := c.doRequest(ctx, c.endpoint(nil, "type", name), &detail); err != nil {
		return nil, fmt.Errorf("failed to get type %s: %w", name, err)
	}
	return &detail, nil
}

// ListVersions retrieves one page of game versions.
func (c *Client) ListVersions(ctx context.Context, limit, offset int) (*VersionList, error) {
	var list VersionList
	if err := c.doRequest(ctx, c.endpoint(pageQuery(limit, offset), "version"), &list); err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	return &list, nil
}

// GetVersion retrieves a game version.
func (c *Client) GetVersion(ctx context.Context, name string) (*VersionDetail, error) {
	var detail VersionDetail
	if err := c.doRequest(ctx, c.endpoint(nil, "version", name), &detail); err != nil {
		return nil, fmt.Errorf("failed to get version %s: %w", name, err)
	}
	return &detail, nil
}

// GetVersionGroup retrieves a version group and its pokedexes.
func (c *Client) GetVersionGroup(ctx context.Context, name string) (*VersionGroupDetail, error) {
	var detail VersionGroupDetail
	if err := c.doRequest(ctx, c.endpoint(nil, "version-group", name), &detail); err != nil {
		return nil, fmt.Errorf("failed to get version group %s: %w", name, err)
	}
	return &detail, nil
}

// GetPokedex retrieves a pokedex and its species entries.
func (c *Client) GetPokedex(ctx context.Context, name string) (*PokedexDetail, error) {
	var detail PokedexDetail
	if err := c.doRequest(ctx, c.endpoint(nil, "pokedex", name), &detail); err != nil {
		return nil, fmt.Errorf("failed to get pokedex %s: %w", name, err)
	}
	return &detail, nil
}

func (c *Client) endpoint(query url.Values, segments ...string) string {
	u := c.baseURL.JoinPath(segments...)
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func pageQuery(limit, offset int) url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return q
}

// doRequest performs a GET with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, rawURL string, result interface{}) error {
	var lastErr error
	backoff := c.initialBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			if attempt < c.maxRetries {
				if err := sleep(ctx, backoff); err != nil {
					return err
				}
				backoff = min(backoff*2, maxBackoff)
				continue
			}
			return lastErr
		}

		wait, retry, err := c.handleResponse(resp, rawURL, result, backoff)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
		if attempt < c.maxRetries {
			if err := sleep(ctx, wait); err != nil {
				return err
			}
			backoff = min(backoff*2, maxBackoff)
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// handleResponse decodes a successful body or classifies the failure.
// It reports how long to wait before retrying and whether a retry is allowed.
func (c *Client) handleResponse(resp *http.Response, rawURL string, result interface{}, backoff time.Duration) (time.Duration, bool, error) {
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return 0, false, fmt.Errorf("failed to read response body: %w", err)
		}
		if err := json.Unmarshal(body, result); err != nil {
			return 0, false, fmt.Errorf("failed to parse JSON response: %w", err)
		}
		return 0, false, nil

	case resp.StatusCode == http.StatusNotFound:
		return 0, false, &NotFoundError{URL: rawURL}

	case resp.StatusCode == http.StatusTooManyRequests:
		wait := backoff
		if s := resp.Header.Get("Retry-After"); s != "" {
			if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
				wait = time.Duration(secs) * time.Second
			}
		}
		return wait, true, fmt.Errorf("rate limited (HTTP 429)")

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{Status: resp.StatusCode, URL: rawURL, Body: strings.TrimSpace(string(body))}
		return backoff, resp.StatusCode >= 500, apiErr
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
