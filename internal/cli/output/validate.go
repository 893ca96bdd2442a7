package output

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapmetrics/pkg/validation"
)

// ValidationOutput is the JSON document for a validation run.
type ValidationOutput struct {
	Model            string             `json:"model"`
	RunID            string             `json:"run_id,omitempty"`
	Materializations int                `json:"materializations"`
	Summary          validation.Summary `json:"summary"`
	Issues           []validation.Issue `json:"issues"`
}

// NewValidationOutput builds the output document for a run.
func NewValidationOutput(model string, materializations int, issues []validation.Issue) ValidationOutput {
	if issues == nil {
		issues = []validation.Issue{}
	}
	return ValidationOutput{
		Model:            model,
		Materializations: materializations,
		Summary:          validation.Summarize(issues),
		Issues:           issues,
	}
}

// RenderValidation prints a validation run in the renderer's mode.
func (r *Renderer) RenderValidation(v ValidationOutput) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		return r.JSON(v)
	case ModeMarkdown:
		r.renderValidationMarkdown(v)
	default:
		r.renderValidationText(v)
	}
	return nil
}

func (r *Renderer) renderValidationText(v ValidationOutput) {
	styles := r.Styles()

	if len(v.Issues) == 0 {
		r.Success(fmt.Sprintf("%s: %d materializations, no issues", v.Model, v.Materializations))
		return
	}

	r.Println(styles.Path.Render(v.Model))
	current := ""
	for i, issue := range v.Issues {
		if i == 0 || issue.Materialization != current {
			current = issue.Materialization
			r.Println("  " + styles.Name.Render(current))
		}
		r.Printf("    %s  %s  %s\n",
			styles.Severity(issue.Severity).Render(fmt.Sprintf("%-7s", issue.Severity)),
			styles.Bold.Render(issue.RuleID),
			issue.Message,
		)
	}
	r.Println("")
	r.Println(styles.Bold.Render(SummaryLine(v.Summary)))
}

func (r *Renderer) renderValidationMarkdown(v ValidationOutput) {
	r.Printf("# Validation: %s\n\n", v.Model)

	if len(v.Issues) == 0 {
		r.Success(fmt.Sprintf("%d materializations, no issues", v.Materializations))
		return
	}

	rows := make([][]string, len(v.Issues))
	for i, issue := range v.Issues {
		rows[i] = []string{
			issue.Materialization,
			issue.RuleID,
			issue.Severity.String(),
			string(issue.Kind),
			issue.Message,
		}
	}
	r.Table([]string{"Materialization", "Rule", "Severity", "Kind", "Message"}, rows)
	r.Println("")
	r.Printf("**%s**\n", SummaryLine(v.Summary))
}

// SummaryLine formats issue counts, e.g. "3 issues (2 errors, 1 warning)".
func SummaryLine(s validation.Summary) string {
	var parts []string
	if s.Errors > 0 {
		parts = append(parts, plural(s.Errors, "error"))
	}
	if s.Warnings > 0 {
		parts = append(parts, plural(s.Warnings, "warning"))
	}
	if s.Info > 0 {
		parts = append(parts, fmt.Sprintf("%d info", s.Info))
	}
	if s.Hints > 0 {
		parts = append(parts, plural(s.Hints, "hint"))
	}

	line := plural(s.Total, "issue")
	if len(parts) > 0 {
		line += " (" + strings.Join(parts, ", ") + ")"
	}
	return line
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
