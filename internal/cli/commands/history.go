package commands

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapmetrics/internal/state"
	"github.com/spf13/cobra"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit  int    // Number of runs to list
	Format string // Output format
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded validation runs",
		Long: `List validation runs recorded with 'validate --record', newest first.

Pass a run ID to show the issues that run reported.`,
		Example: `  # List the last 20 runs
  leapmetrics history

  # List the last 5 runs as JSON
  leapmetrics history -n 5 --format json

  # Show the issues of one run
  leapmetrics history 3f2c6a0e-9b1d-4c41-a7f5-0d2e8f9b6c11`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", state.DefaultListLimit, "Number of runs to list")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string, opts *HistoryOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r, err := cmdCtx.RendererFor(cmd, opts.Format)
	if err != nil {
		return err
	}

	store, err := cmdCtx.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()

	if len(args) == 0 {
		runs, err := store.ListRuns(ctx, opts.Limit)
		if err != nil {
			return err
		}
		return r.RenderRuns(runs)
	}

	run, err := store.GetRun(ctx, args[0])
	if errors.Is(err, state.ErrRunNotFound) {
		return fmt.Errorf("no recorded run with ID %q", args[0])
	}
	if err != nil {
		return err
	}
	issues, err := store.GetIssues(ctx, run.ID)
	if err != nil {
		return err
	}
	return r.RenderRun(run, issues)
}
