package rules

import (
	"testing"

	"github.com/leapstack-labs/leapmetrics/internal/testutil"
	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/leapstack-labs/leapmetrics/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validate(t *testing.T, mats ...core.Materialization) []validation.Issue {
	t.Helper()
	v := validation.New(Default(), nil, testutil.NewTestLogger(t))
	issues, err := v.ValidateModel(testutil.ModelWithMaterializations(mats...))
	require.NoError(t, err)
	return issues
}

func TestMaterializationValidation_SimpleModel(t *testing.T) {
	issues := validate(t)
	assert.Empty(t, issues)
}

func TestMaterializationValidation_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		mat       core.Materialization
		wantKinds []validation.IssueKind
	}{
		{
			name: "valid identifier dimension",
			mat:  core.Materialization{Name: "foobar", Metrics: []string{"bookings"}, Dimensions: []string{"ds", "listing"}},
		},
		{
			name:      "invalid metric name",
			mat:       core.Materialization{Name: "foobar", Metrics: []string{"invalid_bookings"}, Dimensions: []string{"ds"}},
			wantKinds: []validation.IssueKind{validation.KindUnknownMetric},
		},
		{
			name:      "invalid dimension name",
			mat:       core.Materialization{Name: "foobar", Metrics: []string{"bookings"}, Dimensions: []string{"ds", "invalid_dimension_name"}},
			wantKinds: []validation.IssueKind{validation.KindUnknownDimension},
		},
		{
			name:      "missing primary time dimension",
			mat:       core.Materialization{Name: "foobar", Metrics: []string{"bookings"}, Dimensions: []string{"is_instant"}},
			wantKinds: []validation.IssueKind{validation.KindMissingPrimaryTimeDimension},
		},
		{
			name: "valid time granularity",
			mat:  core.Materialization{Name: "materialization_test_case", Metrics: []string{"bookings"}, Dimensions: []string{"ds__day"}},
		},
		{
			name: "invalid time granularity",
			mat:  core.Materialization{Name: "materialization_test_case", Metrics: []string{"revenue"}, Dimensions: []string{"ds__hour"}},
			wantKinds: []validation.IssueKind{
				validation.KindGranularityFinerThanNative,
				validation.KindGranularityFinerThanMetric,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := validate(t, tt.mat)

			require.Len(t, issues, len(tt.wantKinds))
			for i, issue := range issues {
				assert.Equal(t, tt.wantKinds[i], issue.Kind)
				assert.Equal(t, tt.mat.Name, issue.Materialization)
				assert.Equal(t, core.SeverityError, issue.Severity)
			}
		})
	}
}

func TestMaterializationValidation_RulesDoNotShortCircuit(t *testing.T) {
	issues := validate(t, core.Materialization{
		Name:       "everything_wrong",
		Metrics:    []string{"invalid_bookings", "revenue"},
		Dimensions: []string{"invalid_dimension_name", "created_at__hour"},
	})

	var ruleIDs []string
	for _, issue := range issues {
		ruleIDs = append(ruleIDs, issue.RuleID)
	}
	assert.Equal(t, []string{"MZ01", "MZ02", "MZ03", "MZ04", "MZ04"}, ruleIDs)
}

func TestMaterializationValidation_IssueOrderFollowsDeclaration(t *testing.T) {
	issues := validate(t,
		core.Materialization{Name: "first", Metrics: []string{"invalid_bookings"}, Dimensions: []string{"ds"}},
		core.Materialization{Name: "second", Metrics: []string{"bookings"}, Dimensions: []string{"ds"}},
		core.Materialization{Name: "third", Metrics: []string{"bookings"}, Dimensions: []string{"is_instant"}},
	)

	require.Len(t, issues, 2)
	assert.Equal(t, "first", issues[0].Materialization)
	assert.Equal(t, "third", issues[1].Materialization)
}

func TestMaterializationValidation_Deterministic(t *testing.T) {
	model := testutil.ModelWithMaterializations(
		core.Materialization{Name: "a", Metrics: []string{"revenue", "nope"}, Dimensions: []string{"ds__hour", "zzz"}},
		core.Materialization{Name: "b", Metrics: []string{"bookings"}, Dimensions: []string{"listing"}},
		core.Materialization{Name: "c", Metrics: []string{"monthly_revenue"}, Dimensions: []string{"ds__week"}},
		core.Materialization{Name: "d", Metrics: []string{"bookings"}, Dimensions: []string{"ds"}},
	)

	sequential := validation.New(Default(), nil, nil)
	first, err := sequential.ValidateModel(model)
	require.NoError(t, err)
	second, err := sequential.ValidateModel(model)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	cfg := validation.NewConfig()
	cfg.Parallelism = 4
	parallel := validation.New(Default(), cfg, nil)
	for i := 0; i < 20; i++ {
		got, err := parallel.ValidateModel(model)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}

func TestMaterializationValidation_MalformedReference(t *testing.T) {
	v := validation.New(Default(), nil, nil)
	_, err := v.ValidateModel(testutil.ModelWithMaterializations(
		core.Materialization{Name: "broken", Metrics: []string{"bookings"}, Dimensions: []string{"ds", "__day"}},
	))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `materialization "broken"`)
}

func TestDefault_RuleSet(t *testing.T) {
	set := Default()
	require.Equal(t, 4, set.Len())

	rule, ok := set.Get("MZ04")
	require.True(t, ok)
	assert.Equal(t, "granularity-compatibility", rule.Name)
	assert.Len(t, set.GetByGroup("materialization"), 4)
}
