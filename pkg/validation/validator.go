package validation

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"golang.org/x/sync/errgroup"
)

// ErrNoRules is returned when the validator was built without a rule set.
var ErrNoRules = errors.New("validator has no rule set")

// Validator runs a rule set against a model's materializations.
// A Validator holds no per-run state and may be shared between goroutines.
type Validator struct {
	rules  *RuleSet
	config *Config
	logger *slog.Logger
}

// New creates a validator. A nil config enables every rule with default
// severities; a nil logger discards output.
func New(rules *RuleSet, config *Config, logger *slog.Logger) *Validator {
	if config == nil {
		config = NewConfig()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Validator{
		rules:  rules,
		config: config,
		logger: logger,
	}
}

// ValidateModel indexes the model and validates every materialization it
// defines. A model without materializations yields no issues.
func (v *Validator) ValidateModel(model *core.Model) ([]Issue, error) {
	catalog, err := core.NewCatalog(model)
	if err != nil {
		return nil, fmt.Errorf("failed to index model: %w", err)
	}
	return v.ValidateCatalog(catalog)
}

// ValidateCatalog validates every materialization in catalog declaration order.
func (v *Validator) ValidateCatalog(catalog *core.Catalog) ([]Issue, error) {
	if v.rules == nil {
		return nil, ErrNoRules
	}

	mats := catalog.Materializations()

	// Build every context up front so malformed references surface
	// deterministically before any rule runs.
	contexts := make([]*Context, len(mats))
	for i := range mats {
		ctx, err := NewContext(catalog, &mats[i])
		if err != nil {
			return nil, err
		}
		contexts[i] = ctx
	}

	results := make([][]Issue, len(contexts))
	if v.config.Parallelism > 1 && len(contexts) > 1 {
		var g errgroup.Group
		g.SetLimit(v.config.Parallelism)
		for i, ctx := range contexts {
			g.Go(func() error {
				results[i] = v.run(ctx)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, ctx := range contexts {
			results[i] = v.run(ctx)
		}
	}

	var issues []Issue
	for _, r := range results {
		issues = append(issues, r...)
	}

	v.logger.Debug("validated model",
		slog.Int("materializations", len(mats)),
		slog.Int("rules", v.rules.Len()),
		slog.Int("issues", len(issues)))

	return issues, nil
}

// ValidateMaterialization validates a single materialization against the catalog.
func (v *Validator) ValidateMaterialization(catalog *core.Catalog, m *core.Materialization) ([]Issue, error) {
	if v.rules == nil {
		return nil, ErrNoRules
	}
	ctx, err := NewContext(catalog, m)
	if err != nil {
		return nil, err
	}
	return v.run(ctx), nil
}

// run applies every enabled rule in registration order.
func (v *Validator) run(ctx *Context) []Issue {
	var issues []Issue
	name := ctx.Materialization().Name

	for _, rule := range v.rules.rules {
		if v.config.IsDisabled(rule.ID) {
			continue
		}

		found := rule.Check(ctx)
		severity := v.config.GetSeverity(rule.ID, rule.Severity)
		for i := range found {
			if found[i].RuleID == "" {
				found[i].RuleID = rule.ID
			}
			found[i].Severity = severity
		}

		if len(found) > 0 {
			v.logger.Debug("rule reported issues",
				slog.String("materialization", name),
				slog.String("rule", rule.ID),
				slog.Int("count", len(found)))
		}
		issues = append(issues, found...)
	}

	return issues
}
