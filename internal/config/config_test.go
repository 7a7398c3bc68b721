package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://pokeapi.co/api/v2/", cfg.API.BaseURL)
	assert.Equal(t, 5, cfg.Analysis.TopTypes)
	assert.Equal(t, 2, cfg.Analysis.CounterTypes)
	assert.Equal(t, 8, cfg.Analysis.ExamplesPerType)
	assert.Equal(t, 12, cfg.Analysis.MaxExamples)
	assert.Equal(t, 20, cfg.Analysis.FilterLimit)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOrCreate_WritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh", "config.toml")

	cfg, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, path)

	// An existing file is left as it is.
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 9191\n"), 0o644))
	cfg, err = LoadOrCreate(path)
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[analysis]
default_version = "scarlet"
max_examples = 6

[server]
port = 9090
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "scarlet", cfg.Analysis.DefaultVersion)
	assert.Equal(t, 6, cfg.Analysis.MaxExamples)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Analysis.ExamplesPerType)
	assert.Equal(t, "30s", cfg.API.Timeout)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[server\nport = "), 0o644))
	_, err := Load(bad)
	assert.ErrorContains(t, err, "parse config file")

	invalid := filepath.Join(dir, "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte("[server]\nport = 0\n"), 0o644))
	_, err = Load(invalid)
	assert.ErrorContains(t, err, "invalid server port")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Analysis.DefaultVersion = "red"
	cfg.App.DebugMode = true
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }},
		{"relative base url", func(c *Config) { c.API.BaseURL = "/api/v2" }},
		{"zero rate", func(c *Config) { c.API.RequestsPerSecond = 0 }},
		{"bad timeout", func(c *Config) { c.API.Timeout = "soon" }},
		{"negative timeout", func(c *Config) { c.API.Timeout = "-1s" }},
		{"negative retries", func(c *Config) { c.API.MaxRetries = -1 }},
		{"zero top types", func(c *Config) { c.Analysis.TopTypes = 0 }},
		{"zero filter limit", func(c *Config) { c.Analysis.FilterLimit = 0 }},
		{"score above 100", func(c *Config) { c.Analysis.ResolveMinScore = 101 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestClientConfigAndOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.Timeout = "5s"
	cfg.API.MaxRetries = 1

	cc, err := cfg.ClientConfig()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cc.Timeout)
	assert.Equal(t, 1, cc.MaxRetries)
	assert.Equal(t, cfg.API.BaseURL, cc.BaseURL)

	opts := cfg.AnalysisOptions()
	assert.Equal(t, cfg.Analysis.MaxExamples, opts.MaxExamples)
	assert.NoError(t, opts.Validate())
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, DefaultConfig().Save(path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	errc := make(chan error, 1)
	go func() {
		errc <- Watch(ctx, path, nil, func(c *Config) { changes <- c })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	updated := DefaultConfig()
	updated.Analysis.DefaultVersion = "blue"
	require.NoError(t, updated.Save(path))

	select {
	case c := <-changes:
		assert.Equal(t, "blue", c.Analysis.DefaultVersion)
	case <-time.After(3 * time.Second):
		t.Fatal("config change not observed")
	}

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
