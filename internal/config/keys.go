package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/trevmt/usagereport/internal/util"
)

// KeySpec describes a single configuration key.
type KeySpec struct {
	// Name is the CLI-facing key name (e.g. "default-provider").
	Name string

	// Description is a short human-readable explanation shown in help text.
	Description string

	// Get returns the current value for this key from a loaded Config.
	Get func(cfg *Config) string

	// Set validates the value and applies it to the given Config (in memory
	// only; the caller is responsible for calling Save). An invalid value
	// returns an error and leaves the Config unchanged.
	Set func(cfg *Config, value string) error
}

// Keys is the authoritative list of all supported configuration keys.
// To add a new option: add a field to Config and append a KeySpec here.
var Keys = []KeySpec{
	{
		Name:        "default-provider",
		Description: "Metric source provider used when --provider is not specified",
		Get:         func(cfg *Config) string { return cfg.DefaultProvider },
		Set: func(cfg *Config, v string) error {
			cfg.DefaultProvider = v
			return nil
		},
	},
	{
		Name:        "entities",
		Description: "Comma-separated identifiers of the monitored entities",
		Get:         func(cfg *Config) string { return strings.Join(cfg.Entities, ",") },
		Set: func(cfg *Config, v string) error {
			var entities []string
			for _, id := range strings.Split(v, ",") {
				if id = strings.TrimSpace(id); id == "" {
					continue
				}
				if err := util.ValidateEntityID(id); err != nil {
					return err
				}
				entities = append(entities, id)
			}
			cfg.Entities = entities
			return nil
		},
	},
	{
		Name:        "low-threshold",
		Description: "Mean utilization (%) below which an entity is in the low tier",
		Get:         func(cfg *Config) string { return formatFloat(cfg.LowThreshold) },
		Set: func(cfg *Config, v string) error {
			f, err := parseThreshold(v)
			if err != nil {
				return err
			}
			cfg.LowThreshold = f
			return nil
		},
	},
	{
		Name:        "high-threshold",
		Description: "Mean utilization (%) at or above which an entity is in the high tier",
		Get:         func(cfg *Config) string { return formatFloat(cfg.HighThreshold) },
		Set: func(cfg *Config, v string) error {
			f, err := parseThreshold(v)
			if err != nil {
				return err
			}
			cfg.HighThreshold = f
			return nil
		},
	},
	{
		Name:        "concurrency",
		Description: "Maximum number of parallel per-entity metric fetches",
		Get: func(cfg *Config) string {
			if cfg.Concurrency == 0 {
				return ""
			}
			return strconv.Itoa(cfg.Concurrency)
		},
		Set: func(cfg *Config, v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil || n < 1 {
				return fmt.Errorf("concurrency must be a positive integer, got %q", v)
			}
			cfg.Concurrency = n
			return nil
		},
	},
	{
		Name:        "webhook-url",
		Description: "URL that receives pipeline status notifications",
		Get:         func(cfg *Config) string { return cfg.WebhookURL },
		Set: func(cfg *Config, v string) error {
			u, err := url.Parse(strings.TrimSpace(v))
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Errorf("webhook url must be an absolute http(s) URL, got %q", v)
			}
			cfg.WebhookURL = strings.TrimSpace(v)
			return nil
		},
	},
}

func parseThreshold(v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f < 0 || f > 100 {
		return 0, fmt.Errorf("threshold must be a number between 0 and 100, got %q", v)
	}
	return f, nil
}

func formatFloat(f float64) string {
	if f == 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Lookup returns the KeySpec for the given name, or nil if not found.
// The name is matched case-insensitively after trimming whitespace.
func Lookup(name string) *KeySpec {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for i := range Keys {
		if Keys[i].Name == normalized {
			return &Keys[i]
		}
	}
	return nil
}

// KeyNames returns the names of all registered keys.
func KeyNames() []string {
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = k.Name
	}
	return names
}

// KeysHelp builds a formatted block listing all available keys and their
// descriptions, suitable for inclusion in Cobra Long help text.
func KeysHelp() string {
	if len(Keys) == 0 {
		return ""
	}

	// Find the longest key name for alignment.
	maxLen := 0
	for _, k := range Keys {
		if len(k.Name) > maxLen {
			maxLen = len(k.Name)
		}
	}

	var b strings.Builder
	b.WriteString("Available keys:\n")
	for _, k := range Keys {
		fmt.Fprintf(&b, "  %-*s   %s\n", maxLen, k.Name, k.Description)
	}
	return b.String()
}
