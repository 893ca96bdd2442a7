package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapmetrics/pkg/validation"
)

var validOutputFormats = []string{"", "auto", "text", "markdown", "json"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("model is required")
	}

	valid := false
	for _, f := range validOutputFormats {
		if c.OutputFormat == f {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown output format %q (want auto, text, markdown or json)", c.OutputFormat)
	}

	if c.Validation.Parallelism < 0 {
		return fmt.Errorf("validation.parallelism must not be negative, got %d", c.Validation.Parallelism)
	}
	return nil
}

// ToValidationConfig converts the validation section to a validator config.
// Rule IDs are matched case-insensitively.
func (c *Config) ToValidationConfig() *validation.Config {
	vc := validation.NewConfig()
	for _, id := range c.Validation.Disabled {
		if id = NormalizeRuleID(id); id != "" {
			vc.Disable(id)
		}
	}
	for id, sev := range c.Validation.Severity {
		vc.SetSeverity(NormalizeRuleID(id), sev)
	}
	vc.Parallelism = c.Validation.Parallelism
	return vc
}

// NormalizeRuleID trims and upper-cases a rule ID.
func NormalizeRuleID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
