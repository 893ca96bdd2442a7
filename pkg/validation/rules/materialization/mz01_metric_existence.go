package materialization

import (
	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/leapstack-labs/leapmetrics/pkg/validation"
)

// MetricExistence flags metric names that are not defined in the model.
var MetricExistence = validation.RuleDef{
	ID:          "MZ01",
	Name:        "metric-existence",
	Group:       Group,
	Description: "Materialization references a metric that is not defined",
	Severity:    core.SeverityError,
	Check:       checkMetricExistence,
	Rationale:   "A materialization cannot be computed for a metric the model does not define.",
	BadExample:  "metrics: [invalid_bookings]",
	GoodExample: "metrics: [bookings]",
	Fix:         "Define the metric or correct the name in the materialization.",
}

func checkMetricExistence(ctx *validation.Context) []validation.Issue {
	var issues []validation.Issue
	m := ctx.Materialization()

	for _, name := range m.Metrics {
		if ctx.Catalog().HasMetric(name) {
			continue
		}
		issues = append(issues, ctx.NewIssue(validation.KindUnknownMetric, name,
			"materialization %q references unknown metric %q", m.Name, name))
	}

	return issues
}
