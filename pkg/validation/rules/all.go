// Package rules assembles the built-in validation rule set.
//
// Rules are declared as values in their group packages and listed here in a
// fixed order. There is no init-time registration: the order below is the
// order issues are reported in.
package rules

import (
	"github.com/leapstack-labs/leapmetrics/pkg/validation"
	"github.com/leapstack-labs/leapmetrics/pkg/validation/rules/materialization"
)

// Default returns the built-in rule set:
//   - MZ01: Metric Existence
//   - MZ02: Dimension Existence
//   - MZ03: Primary Time Dimension
//   - MZ04: Granularity Compatibility
func Default() *validation.RuleSet {
	return validation.MustRuleSet(materialization.Rules()...)
}
