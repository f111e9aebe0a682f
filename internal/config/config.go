// Package config holds the host-level knobs for embedding the Typed Object
// Core (spec §A.3): recursion limits, diagnostic rendering width, and which
// renderer plug-ins are registered — a plain JSON-tagged struct, a
// DefaultConfig constructor, and a Validate pass.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds evaluator-level settings for a host embedding the core.
type Config struct {
	Limits    LimitsConfig    `json:"limits"`
	Diagnostics DiagnosticsConfig `json:"diagnostics"`
	Renderers RenderersConfig `json:"renderers"`
}

// LimitsConfig bounds recursive evaluation (spec §9: arena/recursion
// discipline for cyclic parent/class/prototype graphs).
type LimitsConfig struct {
	// MaxMemberCacheDepth bounds how deep read_member may recurse through a
	// parent chain before the evaluator gives up and reports an internal
	// error instead of overflowing the host's call stack.
	MaxMemberCacheDepth int `json:"maxMemberCacheDepth"`
	// MaxTypeParameterDepth bounds type-alias instantiation recursion
	// (e.g. a type alias that refers to itself through a container type).
	MaxTypeParameterDepth int `json:"maxTypeParameterDepth"`
}

// DiagnosticsConfig controls diagnostic rendering (spec §7: "a truncating
// renderer bounded to 80 columns minus indent").
type DiagnosticsConfig struct {
	TruncateWidth int  `json:"truncateWidth"`
	VerboseUnions bool `json:"verboseUnions"`
}

// RenderersConfig lists which external renderer plug-ins (spec §6) a host
// should register by default.
type RenderersConfig struct {
	Enabled []string `json:"enabled"` // e.g. "json", "yaml"
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Limits: LimitsConfig{
			MaxMemberCacheDepth:   1000,
			MaxTypeParameterDepth: 64,
		},
		Diagnostics: DiagnosticsConfig{
			TruncateWidth: 80,
			VerboseUnions: true,
		},
		Renderers: RenderersConfig{
			Enabled: []string{"json", "yaml"},
		},
	}
}

// Discover returns the path of dir's pklcore.config.json, or "" if there is
// none.
func Discover(dir string) string {
	p := filepath.Join(dir, "pklcore.config.json")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

// Load reads and parses a config file, then applies the
// PKLCORE_TRUNCATE_WIDTH environment override (the only one recognized),
// after first loading a sibling .env file into the environment if present
// (spec §A.3).
func Load(path string) (*Config, error) {
	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env")) // optional; ignore absence

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %q: %w", path, err)
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PKLCORE_TRUNCATE_WIDTH"); v != "" {
		var width int
		if _, err := fmt.Sscanf(v, "%d", &width); err == nil && width > 0 {
			cfg.Diagnostics.TruncateWidth = width
		}
	}
}

// Validate checks the config for logical errors.
func (c *Config) Validate() error {
	if c.Limits.MaxMemberCacheDepth <= 0 {
		return fmt.Errorf("limits.maxMemberCacheDepth must be positive, got %d", c.Limits.MaxMemberCacheDepth)
	}
	if c.Limits.MaxTypeParameterDepth <= 0 {
		return fmt.Errorf("limits.maxTypeParameterDepth must be positive, got %d", c.Limits.MaxTypeParameterDepth)
	}
	if c.Diagnostics.TruncateWidth <= 0 {
		return fmt.Errorf("diagnostics.truncateWidth must be positive, got %d", c.Diagnostics.TruncateWidth)
	}
	for _, r := range c.Renderers.Enabled {
		switch r {
		case "json", "yaml":
		default:
			return fmt.Errorf("renderers.enabled: unknown renderer %q (expected \"json\" or \"yaml\")", r)
		}
	}
	return nil
}
