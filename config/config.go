// Package config loads the host-level application configuration: store
// location, metrics sinks, notifier transport and sweep cadence. Policy
// configuration lives inside the store itself and is resolved per operation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/evpark/evpark/core/metrics"
	"github.com/evpark/evpark/infra/notify"
)

type Config struct {
	Store    StoreConfig    `json:"store"`
	Metrics  metrics.Config `json:"metrics"`
	Notifier notify.Config  `json:"notifier"`
	Sweep    SweepConfig    `json:"sweep"`
}

// StoreConfig locates the JSON file store.
type StoreConfig struct {
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *StoreConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "data/store.json"
	}
}

// SweepConfig parameterizes the maintenance sweep and its retry budget.
type SweepConfig struct {
	// IntervalMinutes is the cadence of the --every loop mode.
	IntervalMinutes int `json:"interval_minutes"`
	// Attempts caps the transient-failure retries per sweep run.
	Attempts  int `json:"attempts"`
	BackoffMS int `json:"backoff_ms"`
	// RetryablePatterns overrides the transient-error allow-list.
	RetryablePatterns []string `json:"retryable_patterns"`
}

// SetDefaults applies sane defaults.
func (c *SweepConfig) SetDefaults() {
	if c.IntervalMinutes == 0 {
		c.IntervalMinutes = 5
	}
	if c.Attempts == 0 {
		c.Attempts = 3
	}
	if c.BackoffMS == 0 {
		c.BackoffMS = 500
	}
}

// Validate checks mandatory fields.
func (c SweepConfig) Validate() error {
	if c.IntervalMinutes < 1 {
		return fmt.Errorf("sweep: interval_minutes must be at least 1")
	}
	if c.Attempts < 1 {
		return fmt.Errorf("sweep: attempts must be at least 1")
	}
	return nil
}

// Load reads the configuration file and applies EVPARK_ environment
// overrides. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			ext := strings.ToLower(filepath.Ext(path))
			var parser koanf.Parser
			switch ext {
			case ".yaml", ".yml":
				parser = yaml.Parser()
			case ".json":
				parser = json.Parser()
			default:
				return nil, fmt.Errorf("unsupported config format: %s", ext)
			}
			if err := k.Load(file.Provider(path), parser); err != nil {
				return nil, err
			}
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("EVPARK_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "evpark_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Store.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Notifier.SetDefaults()
	cfg.Sweep.SetDefaults()
	if err := cfg.Notifier.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Sweep.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
