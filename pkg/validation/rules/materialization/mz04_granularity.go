package materialization

import (
	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/leapstack-labs/leapmetrics/pkg/validation"
)

// GranularityCompatibility checks explicit granularity qualifiers on time
// dimension references. Two bounds are checked independently and each
// violation is its own issue:
//
//   - the dimension's native granularity (can the data be rolled up this finely)
//   - the coarsest granularity required by any referenced metric
//
// A qualifier on an existing categorical dimension ("is_instant__day") is
// reported as KindGranularityOnNonTimeDimension. This check is an extension
// beyond the two bounds: such a materialization has issues even though every
// dimension it names exists.
var GranularityCompatibility = validation.RuleDef{
	ID:          "MZ04",
	Name:        "granularity-compatibility",
	Group:       Group,
	Description: "Requested time granularity is finer than the dimension or its metrics support",
	Severity:    core.SeverityError,
	Check:       checkGranularityCompatibility,
	Rationale:   "Data cannot be split below its native precision, and metrics defined at a coarser grain are not meaningful at a finer one.",
	BadExample:  "metrics: [revenue]\ndimensions: [ds__hour]",
	GoodExample: "metrics: [revenue]\ndimensions: [ds__day]",
	Fix:         "Request a granularity no finer than both the dimension's native granularity and the metrics' required granularity.",
}

func checkGranularityCompatibility(ctx *validation.Context) []validation.Issue {
	var issues []validation.Issue
	catalog := ctx.Catalog()
	m := ctx.Materialization()

	metricBound, boundMetric := metricGranularityBound(catalog, m.Metrics)

	for _, ref := range ctx.References() {
		if !ref.HasGranularity() {
			continue
		}

		// Nonexistent dimensions are reported by MZ02.
		dim, ok := catalog.Dimension(ref.Name)
		if !ok {
			continue
		}

		if !dim.IsTime() {
			issues = append(issues, ctx.NewIssue(validation.KindGranularityOnNonTimeDimension, ref.Raw,
				"dimension reference %q in materialization %q requests granularity %s, but %q is not a time dimension",
				ref.Raw, m.Name, ref.Granularity, dim.Name))
			continue
		}

		if ref.Granularity.IsFinerThan(dim.TimeGranularity) {
			issues = append(issues, ctx.NewIssue(validation.KindGranularityFinerThanNative, ref.Raw,
				"dimension reference %q in materialization %q requests granularity %s, finer than the native granularity %s of dimension %q",
				ref.Raw, m.Name, ref.Granularity, dim.TimeGranularity, dim.Name))
		}

		if boundMetric != "" && ref.Granularity.IsFinerThan(metricBound) {
			issues = append(issues, ctx.NewIssue(validation.KindGranularityFinerThanMetric, ref.Raw,
				"dimension reference %q in materialization %q requests granularity %s, finer than the granularity %s required by metric %q",
				ref.Raw, m.Name, ref.Granularity, metricBound, boundMetric))
		}
	}

	return issues
}

// metricGranularityBound returns the coarsest granularity required by the
// defined metrics in names, along with the first metric that requires it.
// Unknown metrics are ignored; MZ01 reports them.
func metricGranularityBound(catalog *core.Catalog, names []string) (core.TimeGranularity, string) {
	var bound core.TimeGranularity
	var metric string

	for _, name := range names {
		g, ok := catalog.RequiredGranularity(name)
		if !ok || g.IsZero() {
			continue
		}
		if bound.IsZero() || bound.IsFinerThan(g) {
			bound = g
			metric = name
		}
	}

	return bound, metric
}
