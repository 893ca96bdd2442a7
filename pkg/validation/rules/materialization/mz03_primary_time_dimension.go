package materialization

import (
	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/leapstack-labs/leapmetrics/pkg/validation"
)

// PrimaryTimeDimension flags materializations that omit the primary time dimension.
var PrimaryTimeDimension = validation.RuleDef{
	ID:          "MZ03",
	Name:        "primary-time-dimension",
	Group:       Group,
	Description: "Materialization does not include the primary time dimension",
	Severity:    core.SeverityError,
	Check:       checkPrimaryTimeDimension,
	Rationale:   "Materializations are time-bound and are partitioned on the primary time dimension.",
	BadExample:  "dimensions: [is_instant]",
	GoodExample: "dimensions: [ds, is_instant]",
	Fix:         "Add the primary time dimension, with or without a granularity suffix.",
}

func checkPrimaryTimeDimension(ctx *validation.Context) []validation.Issue {
	primary := ctx.Catalog().PrimaryTimeDimension()

	for _, ref := range ctx.References() {
		if ref.Name == primary.Name {
			return nil
		}
	}

	m := ctx.Materialization()
	return []validation.Issue{
		ctx.NewIssue(validation.KindMissingPrimaryTimeDimension, primary.Name,
			"materialization %q does not include the primary time dimension %q", m.Name, primary.Name),
	}
}
