package commands

import (
	"encoding/json"
	"testing"

	"github.com/leapstack-labs/leapmetrics/internal/cli/testutil"
	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/leapstack-labs/leapmetrics/pkg/validation/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRulesCommand(t *testing.T) {
	cmd := NewRulesCommand()

	assert.Equal(t, "rules [rule-id]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	for _, flag := range []string{"group", "verbose", "format"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRulesCommand_ListMarkdown(t *testing.T) {
	setupProject(t, testutil.ValidModel)

	out, err := execute(t, NewRulesCommand())
	require.NoError(t, err)

	assert.Contains(t, out, "# Validation Rules")
	assert.Contains(t, out, "## Materialization")
	for _, id := range []string{"MZ01", "MZ02", "MZ03", "MZ04"} {
		assert.Contains(t, out, "**"+id+"**")
	}
	assert.Contains(t, out, "- **MZ01** - metric-existence (`error`)")
	testutil.AssertValidMarkdown(t, out)
	testutil.AssertNoANSI(t, out)
}

func TestRulesCommand_ListJSON(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantCount int
	}{
		{name: "all rules", args: []string{"-f", "json"}, wantCount: 4},
		{name: "materialization group", args: []string{"-f", "json", "--group", "materialization"}, wantCount: 4},
		{name: "unknown group", args: []string{"-f", "json", "-g", "nonexistent"}, wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupProject(t, testutil.ValidModel)

			out, err := execute(t, NewRulesCommand(), tt.args...)
			require.NoError(t, err)

			var doc RulesJSONOutput
			require.NoError(t, json.Unmarshal([]byte(out), &doc))
			assert.Equal(t, tt.wantCount, doc.Count)
			assert.Len(t, doc.Rules, tt.wantCount)
			assert.NotNil(t, doc.Rules)
		})
	}
}

func TestRulesCommand_Show(t *testing.T) {
	tests := []struct {
		name   string
		ruleID string
	}{
		{name: "exact ID", ruleID: "MZ04"},
		{name: "lowercase ID", ruleID: "mz04"},
		{name: "padded ID", ruleID: " MZ04 "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupProject(t, testutil.ValidModel)

			out, err := execute(t, NewRulesCommand(), tt.ruleID)
			require.NoError(t, err)
			assert.Contains(t, out, "# MZ04 - ")
			assert.Contains(t, out, "**Group:** materialization")
			testutil.AssertValidMarkdown(t, out)
		})
	}
}

func TestRulesCommand_ShowJSON(t *testing.T) {
	setupProject(t, testutil.ValidModel)

	out, err := execute(t, NewRulesCommand(), "MZ03", "-f", "json")
	require.NoError(t, err)

	var info core.RuleInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "MZ03", info.ID)
	assert.Equal(t, "materialization", info.Group)
	assert.Equal(t, core.SeverityError, info.DefaultSeverity)
}

func TestRulesCommand_NotFound(t *testing.T) {
	setupProject(t, testutil.ValidModel)

	_, err := execute(t, NewRulesCommand(), "XX99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `rule "XX99" not found`)
}

func TestListRulesText(t *testing.T) {
	tr := testutil.NewTestRendererText()

	require.NoError(t, listRulesText(tr.Renderer, rules.Default().Info(), true))

	out := testutil.StripANSI(tr.Output())
	assert.Contains(t, out, "Validation Rules (4)")
	assert.Contains(t, out, "Materialization")
	assert.Contains(t, out, "MZ02  dimension-existence")
	assert.Contains(t, out, "Use 'leapmetrics rules <rule-id>' for detailed documentation")
	assert.Empty(t, tr.ErrorOutput())
}

func TestShowRuleText(t *testing.T) {
	tr := testutil.NewTestRendererText()
	def, ok := rules.Default().Get("MZ04")
	require.True(t, ok)
	info := def.Info()

	require.NoError(t, showRuleText(tr.Renderer, &info))

	out := testutil.StripANSI(tr.Output())
	assert.Contains(t, out, "MZ04 - "+info.Name)
	assert.Contains(t, out, "Group: materialization")
	assert.Contains(t, out, "Severity: error")
	assert.Contains(t, out, "Description")
}

func TestFilterRulesByGroup(t *testing.T) {
	infos := []core.RuleInfo{
		{ID: "A01", Group: "a"},
		{ID: "B01", Group: "b"},
		{ID: "A02", Group: "a"},
	}

	assert.Len(t, filterRulesByGroup(infos, ""), 3)
	filtered := filterRulesByGroup(infos, "a")
	require.Len(t, filtered, 2)
	assert.Equal(t, "A01", filtered[0].ID)
	assert.Equal(t, "A02", filtered[1].ID)
	assert.Nil(t, filterRulesByGroup(infos, "c"))
}

func TestTruncateOneLine(t *testing.T) {
	assert.Equal(t, "short", truncateOneLine("short", 10))
	assert.Equal(t, "line one line two", truncateOneLine("line one\nline two", 80))
	assert.Equal(t, "abcdefg...", truncateOneLine("abcdefghijklmnop", 10))
}

func TestCapitalizeFirst(t *testing.T) {
	assert.Equal(t, "", capitalizeFirst(""))
	assert.Equal(t, "Materialization", capitalizeFirst("materialization"))
}
