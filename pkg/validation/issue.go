package validation

import (
	"fmt"

	"github.com/leapstack-labs/leapmetrics/pkg/core"
)

// IssueKind identifies the category of a validation issue so callers can
// filter or group issues without parsing messages.
type IssueKind string

// Issue kinds reported by the built-in rules.
const (
	KindUnknownMetric                 IssueKind = "unknown_metric"
	KindUnknownDimension              IssueKind = "unknown_dimension"
	KindMissingPrimaryTimeDimension   IssueKind = "missing_primary_time_dimension"
	KindGranularityFinerThanNative    IssueKind = "granularity_finer_than_native"
	KindGranularityFinerThanMetric    IssueKind = "granularity_finer_than_metric"
	KindGranularityOnNonTimeDimension IssueKind = "granularity_on_non_time_dimension"
)

// Issue is a single validation finding. Issues are values; a validation run
// returns all of them rather than stopping at the first.
type Issue struct {
	RuleID          string        `json:"rule_id"`
	Kind            IssueKind     `json:"kind"`
	Severity        core.Severity `json:"severity"`
	Message         string        `json:"message"`
	Materialization string        `json:"materialization"`
	Reference       string        `json:"reference,omitempty"` // Offending metric or dimension reference
}

// String formats the issue for plain-text output.
func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s %s: %s", i.Severity, i.RuleID, i.Kind, i.Message)
}

// Summary counts issues per severity.
type Summary struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
	Hints    int `json:"hints"`
}

// Summarize counts issues by severity.
func Summarize(issues []Issue) Summary {
	s := Summary{Total: len(issues)}
	for _, issue := range issues {
		switch issue.Severity {
		case core.SeverityError:
			s.Errors++
		case core.SeverityWarning:
			s.Warnings++
		case core.SeverityInfo:
			s.Info++
		case core.SeverityHint:
			s.Hints++
		}
	}
	return s
}

// HasAtLeast reports whether any issue is at or above the given severity.
func HasAtLeast(issues []Issue, threshold core.Severity) bool {
	for _, issue := range issues {
		if issue.Severity.AtLeast(threshold) {
			return true
		}
	}
	return false
}

// FilterBySeverity returns issues at or above the threshold, preserving order.
func FilterBySeverity(issues []Issue, threshold core.Severity) []Issue {
	var filtered []Issue
	for _, issue := range issues {
		if issue.Severity.AtLeast(threshold) {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}

// ByKind returns the issues of the given kind, preserving order.
func ByKind(issues []Issue, kind IssueKind) []Issue {
	var filtered []Issue
	for _, issue := range issues {
		if issue.Kind == kind {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}
