package testutil

import "github.com/leapstack-labs/leapmetrics/pkg/core"

// SimpleModel returns a small booking-marketplace model with no
// materializations. Each call returns a fresh copy.
//
// Metrics: bookings, revenue, listings, monthly_revenue (month grain).
// Dimensions: ds (primary, day), created_at (day), paid_month (month),
// listing, is_instant, country_latest.
func SimpleModel() *core.Model {
	return &core.Model{
		Metrics: []core.Metric{
			{Name: "bookings", Dimensions: []string{"ds", "listing", "is_instant"}},
			{Name: "revenue", Dimensions: []string{"ds"}, TimeGranularity: core.GranularityDay},
			{Name: "listings", Dimensions: []string{"created_at", "country_latest"}},
			{Name: "monthly_revenue", Dimensions: []string{"ds", "paid_month"}, TimeGranularity: core.GranularityMonth},
		},
		Dimensions: []core.Dimension{
			{Name: "ds", Type: core.DimensionTypeTime, TimeGranularity: core.GranularityDay},
			{Name: "created_at", Type: core.DimensionTypeTime, TimeGranularity: core.GranularityDay},
			{Name: "paid_month", Type: core.DimensionTypeTime, TimeGranularity: core.GranularityMonth},
			{Name: "listing", Type: core.DimensionTypeCategorical},
			{Name: "is_instant", Type: core.DimensionTypeCategorical},
			{Name: "country_latest", Type: core.DimensionTypeCategorical},
		},
		PrimaryTimeDimension: "ds",
	}
}

// ModelWithMaterializations returns SimpleModel with the given materializations.
func ModelWithMaterializations(mats ...core.Materialization) *core.Model {
	return SimpleModel().WithMaterializations(mats...)
}
