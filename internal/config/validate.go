package config

import "fmt"

// ValidationResult holds detailed config validation results: hard errors
// plus softer suggestions.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// ValidateDetailed performs thorough config validation with suggestions,
// beyond the hard checks in Validate.
func (c *Config) ValidateDetailed() *ValidationResult {
	result := &ValidationResult{}

	if err := c.Validate(); err != nil {
		result.Errors = append(result.Errors, err.Error())
	}

	if c.Limits.MaxMemberCacheDepth > 100000 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("limits.maxMemberCacheDepth: %d is unusually high — deeply recursive member chains may exhaust the host stack before this limit triggers", c.Limits.MaxMemberCacheDepth))
	}

	if c.Diagnostics.TruncateWidth < 20 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("diagnostics.truncateWidth: %d is very narrow — mismatch messages may be unreadable", c.Diagnostics.TruncateWidth))
	}

	if len(c.Renderers.Enabled) == 0 {
		result.Warnings = append(result.Warnings, "renderers.enabled: empty — the default renderer set (json, yaml) will be registered")
	}

	return result
}

// IsValid returns true if there are no errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}
