package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/PokeHelper/internal/analysis"
	"github.com/ramonehamilton/PokeHelper/internal/pokemon/pokeapi"
	"github.com/ramonehamilton/PokeHelper/internal/version"
)

// Config represents the application configuration.
type Config struct {
	// PokéAPI client configuration
	API APIConfig `toml:"api"`

	// Analysis pipeline limits
	Analysis AnalysisConfig `toml:"analysis"`

	// Local API server configuration
	Server ServerConfig `toml:"server"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// APIConfig contains PokéAPI client settings.
type APIConfig struct {
	BaseURL           string  `toml:"base_url"`
	UserAgent         string  `toml:"user_agent"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Timeout           string  `toml:"timeout"` // Per-request timeout (e.g., "30s")
	MaxRetries        int     `toml:"max_retries"`
}

// AnalysisConfig contains the analysis pipeline limits.
type AnalysisConfig struct {
	TopTypes        int    `toml:"top_types"`         // Super-effective types reported
	CounterTypes    int    `toml:"counter_types"`     // Types that contribute examples
	ExamplesPerType int    `toml:"examples_per_type"` // Examples fetched per type
	MaxExamples     int    `toml:"max_examples"`      // Examples shown
	FilterLimit     int    `toml:"filter_limit"`      // Names returned by a search
	ResolveMinScore int    `toml:"resolve_min_score"` // Fuzzy threshold for free-text names (0-100)
	DefaultVersion  string `toml:"default_version"`   // Version filter applied at startup ("" = all)
}

// ServerConfig contains local API server settings.
type ServerConfig struct {
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"` // CORS origins, wildcards allowed
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	opts := analysis.DefaultOptions()
	return &Config{
		API: APIConfig{
			BaseURL:           pokeapi.DefaultBaseURL,
			UserAgent:         version.UserAgent(),
			RequestsPerSecond: 10,
			Timeout:           "30s",
			MaxRetries:        3,
		},
		Analysis: AnalysisConfig{
			TopTypes:        opts.TopTypes,
			CounterTypes:    opts.CounterTypes,
			ExamplesPerType: opts.ExamplesPerType,
			MaxExamples:     opts.MaxExamples,
			FilterLimit:     opts.FilterLimit,
			ResolveMinScore: opts.ResolveMinScore,
			DefaultVersion:  "",
		},
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// DefaultPath returns ~/.pokehelper/config.toml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".pokehelper", "config.toml"), nil
}

// Load reads the configuration at path (DefaultPath when empty). A missing
// file yields the default config. Keys absent from the file keep their
// default values.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// LoadOrCreate is Load, but a missing file is first written with the
// defaults so it can be edited and watched.
func LoadOrCreate(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := DefaultConfig().Save(path); err != nil {
			return nil, err
		}
	}
	return Load(path)
}

// Save writes the configuration to path (DefaultPath when empty), creating
// the directory if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API base URL %q", c.API.BaseURL)
	}

	if c.API.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be positive: %v", c.API.RequestsPerSecond)
	}

	if d, err := time.ParseDuration(c.API.Timeout); err != nil {
		return fmt.Errorf("invalid API timeout %q: %w", c.API.Timeout, err)
	} else if d <= 0 {
		return fmt.Errorf("API timeout must be positive: %s", c.API.Timeout)
	}

	if c.API.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative: %d", c.API.MaxRetries)
	}

	if err := c.AnalysisOptions().Validate(); err != nil {
		return err
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	return nil
}

// GetAPITimeout returns the per-request timeout as a duration.
func (c *Config) GetAPITimeout() (time.Duration, error) {
	return time.ParseDuration(c.API.Timeout)
}

// ClientConfig converts the [api] section into PokéAPI client settings.
func (c *Config) ClientConfig() (pokeapi.ClientConfig, error) {
	timeout, err := c.GetAPITimeout()
	if err != nil {
		return pokeapi.ClientConfig{}, fmt.Errorf("invalid API timeout %q: %w", c.API.Timeout, err)
	}
	return pokeapi.ClientConfig{
		BaseURL:           c.API.BaseURL,
		UserAgent:         c.API.UserAgent,
		RequestsPerSecond: c.API.RequestsPerSecond,
		Timeout:           timeout,
		MaxRetries:        c.API.MaxRetries,
	}, nil
}

// AnalysisOptions converts the [analysis] section into pipeline options.
func (c *Config) AnalysisOptions() analysis.Options {
	return analysis.Options{
		TopTypes:        c.Analysis.TopTypes,
		CounterTypes:    c.Analysis.CounterTypes,
		ExamplesPerType: c.Analysis.ExamplesPerType,
		MaxExamples:     c.Analysis.MaxExamples,
		FilterLimit:     c.Analysis.FilterLimit,
		ResolveMinScore: c.Analysis.ResolveMinScore,
	}
}
