package validation

import (
	"fmt"

	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/leapstack-labs/leapmetrics/pkg/dimref"
)

// RuleDef is a materialization rule definition.
// Rules are stateless - all context comes via the Check function parameter.
type RuleDef struct {
	ID          string        // Unique identifier, e.g., "MZ01"
	Name        string        // Human-readable name, e.g., "metric-existence"
	Group       string        // Category, e.g., "materialization"
	Description string        // Human-readable description
	Severity    core.Severity // Default severity
	Check       Check         // The check function

	// Documentation fields
	Rationale   string
	BadExample  string
	GoodExample string
	Fix         string
}

// Info returns the rule metadata for documentation/tooling.
func (r RuleDef) Info() core.RuleInfo {
	return core.RuleInfo{
		ID:              r.ID,
		Name:            r.Name,
		Group:           r.Group,
		Description:     r.Description,
		DefaultSeverity: r.Severity,
		Rationale:       r.Rationale,
		BadExample:      r.BadExample,
		GoodExample:     r.GoodExample,
		Fix:             r.Fix,
	}
}

// Check is the function signature for materialization rule checks.
// A check must not mutate the context and must return issues in a
// deterministic order.
type Check func(ctx *Context) []Issue

// Context is everything a rule sees for one materialization.
type Context struct {
	catalog         *core.Catalog
	materialization *core.Materialization
	refs            []dimref.Reference
}

// NewContext parses the materialization's dimension references and bundles
// them with the catalog. It fails only on malformed reference syntax.
func NewContext(catalog *core.Catalog, m *core.Materialization) (*Context, error) {
	refs, err := dimref.ParseAll(m.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("materialization %q: %w", m.Name, err)
	}
	return &Context{
		catalog:         catalog,
		materialization: m,
		refs:            refs,
	}, nil
}

// Catalog returns the read-only model catalog.
func (c *Context) Catalog() *core.Catalog {
	return c.catalog
}

// Materialization returns the materialization under validation.
func (c *Context) Materialization() *core.Materialization {
	return c.materialization
}

// References returns the parsed dimension references in authored order.
func (c *Context) References() []dimref.Reference {
	return c.refs
}

// NewIssue builds an issue attributed to the current materialization.
// RuleID and Severity are stamped by the validator.
func (c *Context) NewIssue(kind IssueKind, reference, format string, args ...any) Issue {
	return Issue{
		Kind:            kind,
		Message:         fmt.Sprintf(format, args...),
		Materialization: c.materialization.Name,
		Reference:       reference,
	}
}
