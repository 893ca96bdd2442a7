package materialization

import (
	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/leapstack-labs/leapmetrics/pkg/validation"
)

// DimensionExistence flags dimension references whose base name is not defined.
var DimensionExistence = validation.RuleDef{
	ID:          "MZ02",
	Name:        "dimension-existence",
	Group:       Group,
	Description: "Materialization references a dimension that is not defined",
	Severity:    core.SeverityError,
	Check:       checkDimensionExistence,
	Rationale:   "Grouping by an undefined dimension cannot be translated into a query.",
	BadExample:  "dimensions: [ds, invalid_dimension_name]",
	GoodExample: "dimensions: [ds, listing]",
	Fix:         "Define the dimension or correct the reference. Granularity suffixes such as __day are allowed.",
}

func checkDimensionExistence(ctx *validation.Context) []validation.Issue {
	var issues []validation.Issue
	m := ctx.Materialization()

	for _, ref := range ctx.References() {
		if ctx.Catalog().HasDimension(ref.Name) {
			continue
		}
		issues = append(issues, ctx.NewIssue(validation.KindUnknownDimension, ref.Raw,
			"materialization %q references unknown dimension %q", m.Name, ref.Name))
	}

	return issues
}
