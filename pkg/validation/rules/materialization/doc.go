// Package materialization provides rules that check materialization
// definitions against the model catalog.
//
//   - MZ01: Metric Existence - every referenced metric is defined
//   - MZ02: Dimension Existence - every referenced dimension is defined
//   - MZ03: Primary Time Dimension - the primary time dimension is included
//   - MZ04: Granularity Compatibility - requested granularities are supported
package materialization

import "github.com/leapstack-labs/leapmetrics/pkg/validation"

// Group is the rule group shared by all rules in this package.
const Group = "materialization"

// Rules returns the materialization rules in reporting order.
func Rules() []validation.RuleDef {
	return []validation.RuleDef{
		MetricExistence,
		DimensionExistence,
		PrimaryTimeDimension,
		GranularityCompatibility,
	}
}
