package config

import "testing"

func TestValidateDetailed_WarnsOnHighCacheDepth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits.MaxMemberCacheDepth = 200000

	result := cfg.ValidateDetailed()
	if !result.IsValid() {
		t.Fatalf("expected a merely-suspicious config to remain valid, got errors: %v", result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning for an unusually high maxMemberCacheDepth")
	}
}

func TestValidateDetailed_WarnsOnNarrowTruncateWidth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Diagnostics.TruncateWidth = 10

	result := cfg.ValidateDetailed()
	if len(result.Warnings) == 0 {
		t.Error("expected a warning for a very narrow truncateWidth")
	}
}

func TestValidateDetailed_ErrorsPropagate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits.MaxTypeParameterDepth = -1

	result := cfg.ValidateDetailed()
	if result.IsValid() {
		t.Error("expected IsValid() = false for a negative maxTypeParameterDepth")
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected exactly 1 error, got %d", len(result.Errors))
	}
}

func TestValidateDetailed_WarnsOnEmptyRenderers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Renderers.Enabled = nil

	result := cfg.ValidateDetailed()
	if len(result.Warnings) == 0 {
		t.Error("expected a warning when no renderers are enabled")
	}
}
