package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig() should be valid, got error: %v", err)
	}
}

func TestLoad_ReadsFileAndOverridesEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pklcore.config.json")

	body, err := json.Marshal(map[string]any{
		"limits": map[string]any{"maxMemberCacheDepth": 500, "maxTypeParameterDepth": 32},
	})
	if err != nil {
		t.Fatalf("marshal fixture config: %v", err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write fixture config: %v", err)
	}

	t.Setenv("PKLCORE_TRUNCATE_WIDTH", "40")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Limits.MaxMemberCacheDepth != 500 {
		t.Errorf("MaxMemberCacheDepth = %d, want 500", cfg.Limits.MaxMemberCacheDepth)
	}
	if cfg.Diagnostics.TruncateWidth != 40 {
		t.Errorf("TruncateWidth = %d, want 40 (from PKLCORE_TRUNCATE_WIDTH)", cfg.Diagnostics.TruncateWidth)
	}
	// Defaults survive for fields the fixture config didn't set.
	if len(cfg.Renderers.Enabled) == 0 {
		t.Error("expected default renderers to survive a partial config file")
	}
}

func TestLoad_RejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pklcore.config.json")
	body, _ := json.Marshal(map[string]any{"renderers": map[string]any{"enabled": []string{"msgpack"}}})
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write fixture config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected Load() to reject an unknown renderer kind")
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	if got := Discover(dir); got != "" {
		t.Errorf("Discover() on empty dir = %q, want empty", got)
	}

	path := filepath.Join(dir, "pklcore.config.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write fixture config: %v", err)
	}
	if got := Discover(dir); got != path {
		t.Errorf("Discover() = %q, want %q", got, path)
	}
}

func TestValidate_RejectsNonPositiveLimits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits.MaxMemberCacheDepth = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected Validate() to reject a zero MaxMemberCacheDepth")
	}
}

func TestValidate_RejectsUnknownRenderer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Renderers.Enabled = []string{"plist"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected Validate() to reject an unrecognized renderer kind")
	}
}
