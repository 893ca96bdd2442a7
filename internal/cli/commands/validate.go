package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/leapmetrics/internal/cli/config"
	"github.com/leapstack-labs/leapmetrics/internal/cli/output"
	"github.com/leapstack-labs/leapmetrics/internal/loader"
	"github.com/leapstack-labs/leapmetrics/internal/state"
	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/leapstack-labs/leapmetrics/pkg/validation"
	"github.com/leapstack-labs/leapmetrics/pkg/validation/rules"
	"github.com/spf13/cobra"
)

// ErrIssuesFound is returned when a run reports issues at or above the
// failure severity. The process exits non-zero without printing it twice.
var ErrIssuesFound = errors.New("validation issues found")

// watchDebounce coalesces bursts of file events from editors.
const watchDebounce = 200 * time.Millisecond

// ValidateOptions holds options for the validate command.
type ValidateOptions struct {
	Format   string   // Output format override
	Disable  []string // Rule IDs to disable
	Severity []string // RULE=severity overrides
	FailOn   string   // Lowest severity that fails the run
	Parallel int      // Materializations validated concurrently
	Record   bool     // Store the run in the state database
	Watch    bool     // Re-validate when the model file changes
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	opts := &ValidateOptions{}
	cmd := &cobra.Command{
		Use:   "validate [model-file]",
		Short: "Validate materializations against the metrics model",
		Long: `Check every materialization in a metrics model against the built-in rules.

All issues are reported in one pass, ordered by materialization and then by
rule. The command fails when any issue is at or above --fail-on.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Validate the configured model (default: metrics.yaml)
  leapmetrics validate

  # Validate a specific file
  leapmetrics validate models/marketplace.yaml

  # Downgrade granularity findings and skip the primary time dimension rule
  leapmetrics validate --severity MZ04=warning --disable MZ03

  # Only fail on errors, record the run, output JSON
  leapmetrics validate --fail-on error --record --format json

  # Re-validate whenever the file changes
  leapmetrics validate --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Rule IDs to disable")
	cmd.Flags().StringSliceVar(&opts.Severity, "severity", nil, "Severity overrides as RULE=severity")
	cmd.Flags().StringVar(&opts.FailOn, "fail-on", "", "Fail when an issue is at least this severe: error, warning, info, hint")
	cmd.Flags().IntVarP(&opts.Parallel, "parallel", "p", 0, "Materializations to validate concurrently")
	cmd.Flags().BoolVar(&opts.Record, "record", false, "Record the run in the state database")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-validate when the model file changes")

	_ = cmd.RegisterFlagCompletionFunc("fail-on", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"error", "warning", "info", "hint"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runValidate(cmd *cobra.Command, args []string, opts *ValidateOptions) error {
	cmdCtx := NewCommandContext(cmd)

	r, err := cmdCtx.RendererFor(cmd, opts.Format)
	if err != nil {
		return err
	}

	ruleSet := rules.Default()
	vcfg, failOn, err := buildValidationConfig(cmdCtx.Cfg, opts, ruleSet, cmd.Flags().Changed("parallel"))
	if err != nil {
		return err
	}

	modelPath := cmdCtx.Cfg.ModelPath
	if len(args) > 0 {
		modelPath = args[0]
	}

	run := &validationRun{
		cmdCtx:    cmdCtx,
		renderer:  r,
		validator: validation.New(ruleSet, vcfg, cmdCtx.Logger),
		modelPath: modelPath,
		failOn:    failOn,
		record:    opts.Record,
	}

	ctx := cmd.Context()
	if opts.Watch {
		return run.watch(ctx)
	}
	return run.once(ctx)
}

// buildValidationConfig layers command flags over the configured validation section.
func buildValidationConfig(cfg *config.Config, opts *ValidateOptions, ruleSet *validation.RuleSet, parallelChanged bool) (*validation.Config, core.Severity, error) {
	// Apply project config first (lower precedence)
	vcfg := cfg.ToValidationConfig()
	for id := range vcfg.DisabledRules {
		if _, ok := ruleSet.Get(id); !ok {
			return nil, 0, fmt.Errorf("validation.disabled: unknown rule %q", id)
		}
	}
	for id := range vcfg.SeverityOverrides {
		if _, ok := ruleSet.Get(id); !ok {
			return nil, 0, fmt.Errorf("validation.severity: unknown rule %q", id)
		}
	}

	// Apply CLI overrides (higher precedence)
	for _, id := range opts.Disable {
		id = config.NormalizeRuleID(id)
		if _, ok := ruleSet.Get(id); !ok {
			return nil, 0, fmt.Errorf("--disable: unknown rule %q", id)
		}
		vcfg.Disable(id)
	}

	for _, entry := range opts.Severity {
		id, level, found := strings.Cut(entry, "=")
		if !found {
			return nil, 0, fmt.Errorf("--severity %q: want RULE=severity", entry)
		}
		id = config.NormalizeRuleID(id)
		if _, ok := ruleSet.Get(id); !ok {
			return nil, 0, fmt.Errorf("--severity: unknown rule %q", id)
		}
		sev, ok := core.ParseSeverity(level)
		if !ok {
			return nil, 0, fmt.Errorf("--severity %q: unknown severity %q", entry, level)
		}
		vcfg.SetSeverity(id, sev)
	}

	if parallelChanged {
		if opts.Parallel < 0 {
			return nil, 0, fmt.Errorf("--parallel must not be negative, got %d", opts.Parallel)
		}
		vcfg.Parallelism = opts.Parallel
	}

	failOn := cfg.Validation.FailOn
	if opts.FailOn != "" {
		sev, ok := core.ParseSeverity(opts.FailOn)
		if !ok {
			return nil, 0, fmt.Errorf("--fail-on: unknown severity %q", opts.FailOn)
		}
		failOn = sev
	}

	return vcfg, failOn, nil
}

// validationRun validates one model file, optionally recording the result.
type validationRun struct {
	cmdCtx    *CommandContext
	renderer  *output.Renderer
	validator *validation.Validator
	modelPath string
	failOn    core.Severity
	record    bool
}

// once loads, validates and renders the model. It returns ErrIssuesFound when
// an issue meets the failure threshold.
func (v *validationRun) once(ctx context.Context) error {
	logger := v.cmdCtx.Logger
	started := time.Now()

	model, err := loader.LoadFile(v.modelPath)
	if err != nil {
		return err
	}

	issues, err := v.validator.ValidateModel(model)
	if err != nil {
		return fmt.Errorf("%s: %w", displayPath(v.modelPath), err)
	}
	finished := time.Now()

	logger.Debug("validated model",
		"model", v.modelPath,
		"materializations", len(model.Materializations),
		"issues", len(issues),
		"duration", finished.Sub(started))

	doc := output.NewValidationOutput(displayPath(v.modelPath), len(model.Materializations), issues)

	if v.record {
		run, err := v.recordRun(ctx, state.RunRecord{
			ModelPath:        v.modelPath,
			Materializations: len(model.Materializations),
			StartedAt:        started,
			FinishedAt:       finished,
			Issues:           issues,
		})
		if err != nil {
			return err
		}
		doc.RunID = run.ID
	}

	if err := v.renderer.RenderValidation(doc); err != nil {
		return err
	}

	if validation.HasAtLeast(issues, v.failOn) {
		return ErrIssuesFound
	}
	return nil
}

func (v *validationRun) recordRun(ctx context.Context, rec state.RunRecord) (*state.Run, error) {
	store, err := v.cmdCtx.OpenStore()
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	run, err := store.RecordRun(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	v.cmdCtx.Logger.Debug("recorded run", "id", run.ID)
	return run, nil
}

// watch validates once, then again after every change to the model file,
// until ctx is cancelled. Failed runs are reported and watching continues.
func (v *validationRun) watch(ctx context.Context) error {
	v.report(v.once(ctx))
	v.renderer.Println(v.renderer.Styles().Muted.Render(
		fmt.Sprintf("Watching %s for changes. Press Ctrl+C to stop.", displayPath(v.modelPath))))

	return watchFile(ctx, v.modelPath, watchDebounce, v.cmdCtx.Logger, func() {
		v.renderer.Println("")
		v.report(v.once(ctx))
	})
}

func (v *validationRun) report(err error) {
	if err == nil || errors.Is(err, ErrIssuesFound) {
		return
	}
	v.renderer.Error(err.Error())
}
