package core

import (
	"fmt"
	"strings"
)

// DimensionType tags a dimension as categorical or time-typed.
type DimensionType string

// Dimension type constants.
const (
	DimensionTypeCategorical DimensionType = "categorical"
	DimensionTypeTime        DimensionType = "time"
)

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *DimensionType) UnmarshalText(text []byte) error {
	switch DimensionType(strings.ToLower(strings.TrimSpace(string(text)))) {
	case DimensionTypeCategorical, "":
		*t = DimensionTypeCategorical
	case DimensionTypeTime:
		*t = DimensionTypeTime
	default:
		return fmt.Errorf("unknown dimension type %q", string(text))
	}
	return nil
}

// Metric is a named, aggregatable measure defined in the model.
type Metric struct {
	// Name uniquely identifies the metric
	Name string `yaml:"name" json:"name"`
	// Description is a human-readable description of the metric
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Dimensions lists the dimensions the metric can be grouped by
	Dimensions []string `yaml:"dimensions,omitempty" json:"dimensions,omitempty"`
	// TimeGranularity is the finest granularity the metric supports for
	// time-series rollups. Empty means it is derived from its time dimensions.
	TimeGranularity TimeGranularity `yaml:"time_granularity,omitempty" json:"time_granularity,omitempty"`
}

// Dimension is a named attribute results can be grouped by.
type Dimension struct {
	// Name uniquely identifies the dimension
	Name string `yaml:"name" json:"name"`
	// Type is categorical or time
	Type DimensionType `yaml:"type" json:"type"`
	// TimeGranularity is the native (finest) granularity of a time dimension
	TimeGranularity TimeGranularity `yaml:"time_granularity,omitempty" json:"time_granularity,omitempty"`
	// Description is a human-readable description of the dimension
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// IsTime reports whether the dimension is time-typed.
func (d *Dimension) IsTime() bool {
	return d.Type == DimensionTypeTime
}

// Materialization is a user-authored, precomputed combination of metrics and
// dimensions. Dimension references may carry a granularity suffix
// (e.g., "ds__day").
type Materialization struct {
	Name       string   `yaml:"name" json:"name"`
	Metrics    []string `yaml:"metrics" json:"metrics"`
	Dimensions []string `yaml:"dimensions" json:"dimensions"`
}

// Model is the declarative metrics model as produced by a loader.
// It is treated as read-only once handed to the validator.
type Model struct {
	Metrics              []Metric          `yaml:"metrics" json:"metrics"`
	Dimensions           []Dimension       `yaml:"dimensions" json:"dimensions"`
	PrimaryTimeDimension string            `yaml:"primary_time_dimension" json:"primary_time_dimension"`
	Materializations     []Materialization `yaml:"materializations,omitempty" json:"materializations,omitempty"`
}

// WithMaterializations returns a shallow copy of the model whose
// materializations are replaced by the given list. The receiver is unchanged.
func (m *Model) WithMaterializations(mats ...Materialization) *Model {
	out := *m
	out.Materializations = append([]Materialization(nil), mats...)
	return &out
}
