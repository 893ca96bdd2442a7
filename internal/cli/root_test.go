package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapmetrics/internal/cli/commands"
	"github.com/leapstack-labs/leapmetrics/internal/cli/config"
	"github.com/leapstack-labs/leapmetrics/internal/cli/output"
	"github.com/leapstack-labs/leapmetrics/internal/cli/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd := NewRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := run(cmd, errOut)
	return out.String(), errOut.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"version", "validate", "rules", "history", "completion"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}

	for _, flag := range []string{"config", "model", "state", "verbose", "output"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRootCommand_Help(t *testing.T) {
	out, _, err := execRoot(t, "--help")
	require.NoError(t, err)
	for _, want := range []string{"validate", "rules", "history"} {
		assert.Contains(t, out, want)
	}
}

func TestRootCommand_Version(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := execRoot(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "LeapMetrics v"+Version)
}

func TestRootCommand_ValidateIssuesNotPrintedTwice(t *testing.T) {
	t.Chdir(testutil.SetupTestProject(t, testutil.InvalidModel))

	out, errOut, err := execRoot(t, "validate", "-o", "json")
	require.ErrorIs(t, err, commands.ErrIssuesFound)
	assert.NotContains(t, errOut, "Error:")

	var doc output.ValidationOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Len(t, doc.Issues, 5)
}

func TestRootCommand_ModelFlag(t *testing.T) {
	dir := testutil.SetupTestProject(t, testutil.InvalidModel)
	valid := filepath.Join(dir, "valid.yaml")
	testutil.WriteFile(t, valid, testutil.ValidModel)
	t.Chdir(dir)

	out, _, err := execRoot(t, "--model", "valid.yaml", "validate", "-o", "json")
	require.NoError(t, err)

	var doc output.ValidationOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "valid.yaml", doc.Model)
	assert.Empty(t, doc.Issues)
}

func TestRootCommand_VerboseLogsToStderr(t *testing.T) {
	t.Chdir(testutil.SetupTestProject(t, testutil.ValidModel))

	out, errOut, err := execRoot(t, "-v", "validate", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, errOut, "loaded configuration")
	assert.NotContains(t, out, "loaded configuration")
}

func TestRootCommand_ConfigErrorPrinted(t *testing.T) {
	t.Chdir(t.TempDir())

	_, errOut, err := execRoot(t, "--config", "missing.yaml", "validate")
	require.Error(t, err)
	assert.Contains(t, errOut, "Error:")
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, _, err := execRoot(t, "completion", shell)
			require.NoError(t, err)
			assert.Contains(t, out, "leapmetrics")
		})
	}

	_, _, err := execRoot(t, "completion", "tcsh")
	assert.Error(t, err)
}
