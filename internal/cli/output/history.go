package output

import (
	"fmt"
	"strconv"
	"time"

	"github.com/leapstack-labs/leapmetrics/internal/state"
	"github.com/leapstack-labs/leapmetrics/pkg/validation"
)

// HistoryOutput is the JSON document for a run listing.
type HistoryOutput struct {
	Runs []*state.Run `json:"runs"`
}

// RunOutput is the JSON document for a single run and its issues.
type RunOutput struct {
	Run    *state.Run         `json:"run"`
	Issues []validation.Issue `json:"issues"`
}

// RenderRuns prints recorded runs, newest first.
func (r *Renderer) RenderRuns(runs []*state.Run) error {
	if r.EffectiveMode() == ModeJSON {
		if runs == nil {
			runs = []*state.Run{}
		}
		return r.JSON(HistoryOutput{Runs: runs})
	}

	if len(runs) == 0 {
		r.Println(r.Styles().Muted.Render("No recorded runs"))
		return nil
	}

	if r.EffectiveMode() == ModeMarkdown {
		r.Println("# Validation History")
		r.Println("")
	}

	rows := make([][]string, len(runs))
	for i, run := range runs {
		rows[i] = []string{
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			run.ModelPath,
			strconv.Itoa(run.Materializations),
			strconv.Itoa(run.IssueCount),
			strconv.Itoa(run.ErrorCount),
			run.Duration().Round(time.Millisecond).String(),
		}
	}
	r.Table([]string{"Run", "Started", "Model", "Materializations", "Issues", "Errors", "Duration"}, rows)
	return nil
}

// RenderRun prints one recorded run with its issues.
func (r *Renderer) RenderRun(run *state.Run, issues []validation.Issue) error {
	if issues == nil {
		issues = []validation.Issue{}
	}
	if r.EffectiveMode() == ModeJSON {
		return r.JSON(RunOutput{Run: run, Issues: issues})
	}

	v := NewValidationOutput(run.ModelPath, run.Materializations, issues)
	v.RunID = run.ID

	if r.EffectiveMode() == ModeMarkdown {
		r.Printf("Run `%s` started %s\n\n", run.ID, run.StartedAt.Format(time.RFC3339))
	} else {
		r.Println(r.Styles().Muted.Render(fmt.Sprintf("run %s started %s", run.ID, run.StartedAt.Format(time.RFC3339))))
	}
	return r.RenderValidation(v)
}
