// Package file loads application configuration from a TOML file.
// Configuration is read once at process start and passed into services
// explicitly; nothing reads it as ambient global state.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
)

// Default configuration values.
const (
	DefaultQueryModel     = "gemini-2.5-flash-lite"
	DefaultEmbeddingModel = "gemini-embedding-001"
	DefaultVisionModel    = "gemini-3-flash-preview"
	DefaultSyncWindowDays = 2
	DefaultSettleSeconds  = 5
)

// ModelsConfig selects the provider models per concern.
type ModelsConfig struct {
	// Query is the model answering retrieval-augmented queries.
	Query string `toml:"query"`

	// Embedding is the model used for token counting and indexing.
	Embedding string `toml:"embedding"`

	// Vision is the model describing embedded images.
	Vision string `toml:"vision"`
}

// SyncConfig tunes the sync orchestrator.
type SyncConfig struct {
	// WindowDays is the incremental sync lookback window in days.
	WindowDays int `toml:"window_days"`

	// SettleSeconds is the post-upload settle delay in seconds.
	SettleSeconds int `toml:"settle_sec"`
}

// RateConfig is a per-model pricing override, USD per 1M tokens.
type RateConfig struct {
	Input  float64 `toml:"input"`
	Output float64 `toml:"output"`
}

// Config is the application configuration.
type Config struct {
	Models  ModelsConfig          `toml:"models"`
	Sync    SyncConfig            `toml:"sync"`
	Pricing map[string]RateConfig `toml:"pricing"`

	path string
}

// Load reads dir/config.toml, applying defaults for anything unset.
// A missing file yields the defaults. If dir is empty, defaults to
// ~/.pagesync.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".pagesync")
	}

	cfg := &Config{path: filepath.Join(dir, "config.toml")}

	data, err := os.ReadFile(cfg.path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Path returns the configuration file path.
func (c *Config) Path() string {
	return c.path
}

// SyncWindow returns the lookback window as a duration.
func (c *Config) SyncWindow() time.Duration {
	return time.Duration(c.Sync.WindowDays) * 24 * time.Hour
}

// SettleDelay returns the post-upload settle delay as a duration.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Sync.SettleSeconds) * time.Second
}

// PriceTable returns the published rates overlaid with any configured
// overrides.
func (c *Config) PriceTable() domain.PriceTable {
	table := domain.DefaultPriceTable()
	for model, rate := range c.Pricing {
		table[model] = domain.ModelRate{Input: rate.Input, Output: rate.Output}
	}
	return table
}

func (c *Config) applyDefaults() {
	if c.Models.Query == "" {
		c.Models.Query = DefaultQueryModel
	}
	if c.Models.Embedding == "" {
		c.Models.Embedding = DefaultEmbeddingModel
	}
	if c.Models.Vision == "" {
		c.Models.Vision = DefaultVisionModel
	}
	if c.Sync.WindowDays <= 0 {
		c.Sync.WindowDays = DefaultSyncWindowDays
	}
	if c.Sync.SettleSeconds < 0 {
		c.Sync.SettleSeconds = 0
	} else if c.Sync.SettleSeconds == 0 {
		c.Sync.SettleSeconds = DefaultSettleSeconds
	}
}
