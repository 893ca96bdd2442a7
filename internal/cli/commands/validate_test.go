package commands

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapmetrics/internal/cli/config"
	"github.com/leapstack-labs/leapmetrics/internal/cli/testutil"
	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/leapstack-labs/leapmetrics/pkg/validation"
	"github.com/leapstack-labs/leapmetrics/pkg/validation/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hourlyOnlyModel = `primary_time_dimension: ds
metrics:
  - name: revenue
    time_granularity: day
    dimensions: [ds]
dimensions:
  - name: ds
    type: time
    time_granularity: day
materializations:
  - name: hourly_revenue
    metrics: [revenue]
    dimensions: [ds__hour]
`

func TestNewValidateCommand(t *testing.T) {
	cmd := NewValidateCommand()

	assert.Equal(t, "validate [model-file]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Example)

	for _, flag := range []string{"format", "disable", "severity", "fail-on", "parallel", "record", "watch"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestValidateCommand_ValidModel(t *testing.T) {
	setupProject(t, testutil.ValidModel)

	out, err := execute(t, NewValidateCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "# Validation: metrics.yaml")
	assert.Contains(t, out, "2 materializations, no issues")
	testutil.AssertNoANSI(t, out)
	testutil.AssertValidMarkdown(t, out)
}

func TestValidateCommand_InvalidModel(t *testing.T) {
	setupProject(t, testutil.InvalidModel)

	out, err := execute(t, NewValidateCommand())
	require.ErrorIs(t, err, ErrIssuesFound)

	for _, want := range []string{"unknown_metric", "unknown_dimension", "no_time_dimension", "hourly_revenue", "**5 issues (5 errors)**"} {
		assert.Contains(t, out, want)
	}
}

func TestValidateCommand_JSON(t *testing.T) {
	setupProject(t, testutil.InvalidModel)

	out, err := execute(t, NewValidateCommand(), "--format", "json")
	require.ErrorIs(t, err, ErrIssuesFound)

	doc := decodeValidation(t, out)
	assert.Equal(t, "metrics.yaml", doc.Model)
	assert.Equal(t, 4, doc.Materializations)
	assert.Empty(t, doc.RunID)
	assert.Equal(t, []string{"MZ01", "MZ02", "MZ03", "MZ04", "MZ04"}, ruleIDs(doc))
	assert.Equal(t, validation.KindGranularityFinerThanNative, doc.Issues[3].Kind)
	assert.Equal(t, validation.KindGranularityFinerThanMetric, doc.Issues[4].Kind)
	assert.Equal(t, 5, doc.Summary.Errors)
}

func TestValidateCommand_JSONIsSoleOutput(t *testing.T) {
	setupProject(t, testutil.InvalidModel)

	out, err := execute(t, NewValidateCommand(), "-f", "json")
	require.ErrorIs(t, err, ErrIssuesFound)
	assert.True(t, json.Valid([]byte(out)), "output: %s", out)
	assert.NotContains(t, out, "Usage:")
	assert.NotContains(t, out, "Error:")
}

func TestValidateCommand_Flags(t *testing.T) {
	tests := []struct {
		name       string
		model      string
		args       []string
		wantErr    bool
		wantIDs    []string
		wantSevLvl core.Severity
	}{
		{
			name:    "disable rules",
			model:   testutil.InvalidModel,
			args:    []string{"--disable", "mz04,MZ01"},
			wantErr: true,
			wantIDs: []string{"MZ02", "MZ03"},
		},
		{
			name:       "downgraded severity does not fail",
			model:      hourlyOnlyModel,
			args:       []string{"--severity", "MZ04=warning"},
			wantIDs:    []string{"MZ04", "MZ04"},
			wantSevLvl: core.SeverityWarning,
		},
		{
			name:       "fail on warning",
			model:      hourlyOnlyModel,
			args:       []string{"--severity", "MZ04=warning", "--fail-on", "warning"},
			wantErr:    true,
			wantIDs:    []string{"MZ04", "MZ04"},
			wantSevLvl: core.SeverityWarning,
		},
		{
			name:    "parallel keeps order",
			model:   testutil.InvalidModel,
			args:    []string{"--parallel", "4"},
			wantErr: true,
			wantIDs: []string{"MZ01", "MZ02", "MZ03", "MZ04", "MZ04"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupProject(t, tt.model)

			out, err := execute(t, NewValidateCommand(), append([]string{"-f", "json"}, tt.args...)...)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrIssuesFound)
			} else {
				require.NoError(t, err)
			}

			doc := decodeValidation(t, out)
			assert.Equal(t, tt.wantIDs, ruleIDs(doc))
			for _, issue := range doc.Issues {
				assert.Equal(t, tt.wantSevLvl, issue.Severity)
			}
		})
	}
}

func TestValidateCommand_ConfigFile(t *testing.T) {
	dir := setupProject(t, hourlyOnlyModel)
	testutil.WriteFile(t, filepath.Join(dir, "leapmetrics.yaml"), `model: metrics.yaml
validation:
  severity:
    mz04: info
  fail_on: warning
`)
	config.ResetConfig()
	_, err := config.LoadConfig("", nil)
	require.NoError(t, err)

	out, err := execute(t, NewValidateCommand(), "-f", "json")
	require.NoError(t, err, "info issues stay below the warning threshold")
	doc := decodeValidation(t, out)
	require.Len(t, doc.Issues, 2)
	assert.Equal(t, core.SeverityInfo, doc.Issues[0].Severity)
	assert.Equal(t, 2, doc.Summary.Info)
}

func TestValidateCommand_ModelArgument(t *testing.T) {
	dir := setupProject(t, testutil.ValidModel)
	other := filepath.Join(dir, "models", "hourly.yaml")
	testutil.WriteFile(t, other, hourlyOnlyModel)

	out, err := execute(t, NewValidateCommand(), "-f", "json", other)
	require.ErrorIs(t, err, ErrIssuesFound)
	doc := decodeValidation(t, out)
	assert.Equal(t, filepath.Join("models", "hourly.yaml"), doc.Model)
	assert.Len(t, doc.Issues, 2)
}

func TestValidateCommand_Errors(t *testing.T) {
	tests := []struct {
		name      string
		model     string
		args      []string
		errSubstr string
	}{
		{name: "missing model file", model: testutil.ValidModel, args: []string{"missing.yaml"}, errSubstr: "failed to read model file"},
		{name: "unknown rule disabled", model: testutil.ValidModel, args: []string{"--disable", "XX99"}, errSubstr: `unknown rule "XX99"`},
		{name: "severity without level", model: testutil.ValidModel, args: []string{"--severity", "MZ04"}, errSubstr: "want RULE=severity"},
		{name: "unknown severity level", model: testutil.ValidModel, args: []string{"--severity", "MZ04=fatal"}, errSubstr: `unknown severity "fatal"`},
		{name: "unknown fail-on", model: testutil.ValidModel, args: []string{"--fail-on", "never"}, errSubstr: "--fail-on"},
		{name: "negative parallel", model: testutil.ValidModel, args: []string{"--parallel=-2"}, errSubstr: "must not be negative"},
		{name: "unknown format", model: testutil.ValidModel, args: []string{"--format", "html"}, errSubstr: "unknown output format"},
		{
			name:      "corrupt model",
			model:     "primary_time_dimension: listing\ndimensions:\n  - name: listing\n    type: categorical\n",
			errSubstr: "listing",
		},
		{
			name: "malformed reference",
			model: `primary_time_dimension: ds
dimensions:
  - name: ds
    type: time
    time_granularity: day
materializations:
  - name: broken
    metrics: []
    dimensions: ["ds__"]
`,
			errSubstr: "ds__",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupProject(t, tt.model)

			_, err := execute(t, NewValidateCommand(), tt.args...)
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrIssuesFound)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestValidateCommand_Record(t *testing.T) {
	dir := setupProject(t, testutil.InvalidModel)

	out, err := execute(t, NewValidateCommand(), "--record", "-f", "json")
	require.ErrorIs(t, err, ErrIssuesFound)
	doc := decodeValidation(t, out)
	require.NotEmpty(t, doc.RunID)
	assert.FileExists(t, filepath.Join(dir, ".leapmetrics", "state.db"))

	out, err = execute(t, NewHistoryCommand(), "-f", "json")
	require.NoError(t, err)
	assert.Contains(t, out, doc.RunID)
	assert.Contains(t, out, `"issue_count": 5`)

	out, err = execute(t, NewHistoryCommand(), doc.RunID)
	require.NoError(t, err)
	assert.Contains(t, out, doc.RunID)
	assert.Contains(t, out, "| hourly_revenue | MZ04 |")
}

func TestValidateCommand_WatchStopsWithContext(t *testing.T) {
	setupProject(t, testutil.InvalidModel)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewValidateCommand()
	out, err := executeContext(t, ctx, cmd, "--watch")
	require.NoError(t, err, "issues in watch mode are reported, not returned")
	assert.Contains(t, out, "hourly_revenue")
	assert.Contains(t, out, "Watching metrics.yaml for changes")
}

func TestBuildValidationConfig(t *testing.T) {
	cfg := &config.Config{
		Validation: config.ValidationConfig{
			Disabled:    []string{"MZ01"},
			Severity:    map[string]core.Severity{"MZ02": core.SeverityHint},
			Parallelism: 2,
			FailOn:      core.SeverityWarning,
		},
	}
	ruleSet := rules.Default()

	vcfg, failOn, err := buildValidationConfig(cfg, &ValidateOptions{}, ruleSet, false)
	require.NoError(t, err)
	assert.True(t, vcfg.IsDisabled("MZ01"))
	assert.Equal(t, core.SeverityHint, vcfg.GetSeverity("MZ02", core.SeverityError))
	assert.Equal(t, 2, vcfg.Parallelism)
	assert.Equal(t, core.SeverityWarning, failOn)

	// Flags take precedence over the config file
	vcfg, failOn, err = buildValidationConfig(cfg, &ValidateOptions{
		Disable:  []string{"mz03"},
		Severity: []string{"MZ02=warning"},
		FailOn:   "error",
		Parallel: 0,
	}, ruleSet, true)
	require.NoError(t, err)
	assert.True(t, vcfg.IsDisabled("MZ01"))
	assert.True(t, vcfg.IsDisabled("MZ03"))
	assert.Equal(t, core.SeverityWarning, vcfg.GetSeverity("MZ02", core.SeverityError))
	assert.Equal(t, 0, vcfg.Parallelism)
	assert.Equal(t, core.SeverityError, failOn)

	// Unknown rule IDs in the config file are rejected
	cfg.Validation.Disabled = []string{"zz01"}
	_, _, err = buildValidationConfig(cfg, &ValidateOptions{}, ruleSet, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `validation.disabled: unknown rule "ZZ01"`)
}
