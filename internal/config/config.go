// Package config handles persistent user configuration for usagereport.
//
// Configuration is stored as JSON at ~/.config/usagereport/config.json (or
// the platform-equivalent path returned by os.UserConfigDir).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	appDir   = "usagereport"
	fileName = "config.json"
)

// Defaults applied when the corresponding config field is unset.
const (
	DefaultLowThreshold  = 30.0
	DefaultHighThreshold = 70.0
	DefaultConcurrency   = 4
)

// pathOverride, when non-empty, replaces the default config file path.
// Intended for testing. Use SetPath / ResetPath to manage.
var pathOverride string

// SetPath overrides the config file path. Intended for testing.
func SetPath(p string) { pathOverride = p }

// ResetPath clears the path override, reverting to the default. Intended for testing.
func ResetPath() { pathOverride = "" }

// Config holds user preferences that persist across invocations.
type Config struct {
	// DefaultProvider is the metric source used when --provider is not given.
	DefaultProvider string `json:"default_provider,omitempty"`

	// Entities is the fixed set of monitored entity identifiers.
	Entities []string `json:"entities,omitempty"`

	// LowThreshold and HighThreshold bound the medium utilization tier.
	// A mean below LowThreshold is low; at or above HighThreshold, high.
	LowThreshold  float64 `json:"low_threshold,omitempty"`
	HighThreshold float64 `json:"high_threshold,omitempty"`

	// Concurrency caps parallel per-entity metric fetches.
	Concurrency int `json:"concurrency,omitempty"`

	// WebhookURL, when set, receives pipeline status notifications.
	WebhookURL string `json:"webhook_url,omitempty"`
}

// Thresholds returns the configured tier thresholds, falling back to the
// defaults for unset or inverted values.
func (c *Config) Thresholds() (low, high float64) {
	low, high = c.LowThreshold, c.HighThreshold
	if low <= 0 {
		low = DefaultLowThreshold
	}
	if high <= 0 {
		high = DefaultHighThreshold
	}
	if high < low {
		return DefaultLowThreshold, DefaultHighThreshold
	}
	return low, high
}

// FetchConcurrency returns the configured fetch cap, or the default when unset.
func (c *Config) FetchConcurrency() int {
	if c.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return c.Concurrency
}

// Path returns the absolute path to the config file.
// If SetPath has been called, that value is returned instead.
// Otherwise it uses os.UserConfigDir which resolves to
// ~/Library/Application Support on macOS, ~/.config on Linux, and
// %AppData% on Windows.
func Path() (string, error) {
	if pathOverride != "" {
		return pathOverride, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: unable to determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Load reads the config file from disk and returns the parsed Config.
// If the file does not exist, a zero-value Config is returned (not an error).
func Load() (*Config, error) {
	return loadFrom("")
}

func loadFrom(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes the config to disk, creating the parent directory if needed.
func (c *Config) Save() error {
	return c.saveTo("")
}

func (c *Config) saveTo(path string) error {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}

	return nil
}

// LoadFrom reads the config from the given path. Intended for testing.
func LoadFrom(path string) (*Config, error) {
	return loadFrom(path)
}

// SaveTo writes the config to the given path. Intended for testing.
func (c *Config) SaveTo(path string) error {
	return c.saveTo(path)
}
