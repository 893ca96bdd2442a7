// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapmetrics/internal/cli/output"
)

// ValidModel is a model whose materializations pass every rule.
const ValidModel = `primary_time_dimension: ds
metrics:
  - name: bookings
    dimensions: [ds, listing, is_instant]
  - name: revenue
    time_granularity: day
    dimensions: [ds]
dimensions:
  - name: ds
    type: time
    time_granularity: day
  - name: listing
    type: categorical
  - name: is_instant
    type: categorical
materializations:
  - name: bookings_by_listing
    metrics: [bookings]
    dimensions: [ds, listing]
  - name: daily_bookings
    metrics: [bookings]
    dimensions: [ds__day]
`

// InvalidModel has one materialization per failing rule:
// MZ01, MZ02, MZ03 and two MZ04 issues, in that order.
const InvalidModel = `primary_time_dimension: ds
metrics:
  - name: bookings
    dimensions: [ds, listing, is_instant]
  - name: revenue
    time_granularity: day
    dimensions: [ds]
dimensions:
  - name: ds
    type: time
    time_granularity: day
  - name: listing
    type: categorical
  - name: is_instant
    type: categorical
materializations:
  - name: unknown_metric
    metrics: [invalid_bookings]
    dimensions: [ds]
  - name: unknown_dimension
    metrics: [bookings]
    dimensions: [ds, invalid_dimension_name]
  - name: no_time_dimension
    metrics: [bookings]
    dimensions: [is_instant]
  - name: hourly_revenue
    metrics: [revenue]
    dimensions: [ds__hour]
`

// SetupTestProject creates a temporary project containing a leapmetrics.yaml
// and a metrics.yaml with the given model content. It returns the project
// directory.
func SetupTestProject(t *testing.T, model string) string {
	t.Helper()

	tmpDir := t.TempDir()

	WriteFile(t, filepath.Join(tmpDir, "metrics.yaml"), model)
	WriteFile(t, filepath.Join(tmpDir, "leapmetrics.yaml"), `model: metrics.yaml
state_path: .leapmetrics/state.db
`)

	return tmpDir
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset clears both output buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripANSI removes ANSI escape codes from s.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
