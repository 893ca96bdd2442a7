package core

import (
	"errors"
	"fmt"
)

// ErrNilModel is returned when a nil model is handed to NewCatalog.
var ErrNilModel = errors.New("model is nil")

// ModelError reports a structurally corrupt model: something a loader should
// never have produced. It is not a data-quality finding.
type ModelError struct {
	Object string // "metric", "dimension", "primary_time_dimension"
	Name   string
	Reason string
}

func (e *ModelError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("invalid model: %s: %s", e.Object, e.Reason)
	}
	return fmt.Sprintf("invalid model: %s %q: %s", e.Object, e.Name, e.Reason)
}

// Catalog provides read-only lookups over a model's metrics and dimensions.
// A Catalog is immutable after construction and safe for concurrent use.
type Catalog struct {
	model       *Model
	metrics     map[string]*Metric
	dimensions  map[string]*Dimension
	primaryTime *Dimension
}

// NewCatalog indexes the model. It fails only when the model is structurally
// corrupt: duplicate or empty names, a missing or non-time primary time
// dimension, or a time dimension without a valid native granularity.
func NewCatalog(model *Model) (*Catalog, error) {
	if model == nil {
		return nil, ErrNilModel
	}

	c := &Catalog{
		model:      model,
		metrics:    make(map[string]*Metric, len(model.Metrics)),
		dimensions: make(map[string]*Dimension, len(model.Dimensions)),
	}

	for i := range model.Metrics {
		m := &model.Metrics[i]
		if m.Name == "" {
			return nil, &ModelError{Object: "metric", Reason: fmt.Sprintf("metric at index %d has no name", i)}
		}
		if _, dup := c.metrics[m.Name]; dup {
			return nil, &ModelError{Object: "metric", Name: m.Name, Reason: "defined more than once"}
		}
		if !m.TimeGranularity.IsZero() && !m.TimeGranularity.IsValid() {
			return nil, &ModelError{Object: "metric", Name: m.Name, Reason: fmt.Sprintf("unknown time granularity %q", m.TimeGranularity)}
		}
		c.metrics[m.Name] = m
	}

	for i := range model.Dimensions {
		d := &model.Dimensions[i]
		if d.Name == "" {
			return nil, &ModelError{Object: "dimension", Reason: fmt.Sprintf("dimension at index %d has no name", i)}
		}
		if _, dup := c.dimensions[d.Name]; dup {
			return nil, &ModelError{Object: "dimension", Name: d.Name, Reason: "defined more than once"}
		}
		if d.IsTime() && !d.TimeGranularity.IsValid() {
			return nil, &ModelError{Object: "dimension", Name: d.Name, Reason: "time dimension requires a valid time_granularity"}
		}
		c.dimensions[d.Name] = d
	}

	if model.PrimaryTimeDimension == "" {
		return nil, &ModelError{Object: "primary_time_dimension", Reason: "not set"}
	}
	primary, ok := c.dimensions[model.PrimaryTimeDimension]
	if !ok {
		return nil, &ModelError{Object: "primary_time_dimension", Name: model.PrimaryTimeDimension, Reason: "is not a defined dimension"}
	}
	if !primary.IsTime() {
		return nil, &ModelError{Object: "primary_time_dimension", Name: model.PrimaryTimeDimension, Reason: "is not a time dimension"}
	}
	c.primaryTime = primary

	return c, nil
}

// Model returns the underlying model.
func (c *Catalog) Model() *Model {
	return c.model
}

// Materializations returns the model's materializations in declaration order.
func (c *Catalog) Materializations() []Materialization {
	return c.model.Materializations
}

// Metric returns a metric by name.
func (c *Catalog) Metric(name string) (*Metric, bool) {
	m, ok := c.metrics[name]
	return m, ok
}

// HasMetric checks if a metric with the given name is defined.
func (c *Catalog) HasMetric(name string) bool {
	_, ok := c.metrics[name]
	return ok
}

// Dimension returns a dimension by name.
func (c *Catalog) Dimension(name string) (*Dimension, bool) {
	d, ok := c.dimensions[name]
	return d, ok
}

// HasDimension checks if a dimension with the given name is defined.
func (c *Catalog) HasDimension(name string) bool {
	_, ok := c.dimensions[name]
	return ok
}

// PrimaryTimeDimension returns the model's designated primary time dimension.
func (c *Catalog) PrimaryTimeDimension() *Dimension {
	return c.primaryTime
}

// RequiredGranularity returns the finest granularity a metric can be queried at.
// Precedence:
//  1. The metric's explicit time_granularity
//  2. The coarsest native granularity among its declared time dimensions
//  3. The primary time dimension's native granularity
//
// Returns false if the metric is unknown.
func (c *Catalog) RequiredGranularity(metricName string) (TimeGranularity, bool) {
	m, ok := c.metrics[metricName]
	if !ok {
		return "", false
	}
	if !m.TimeGranularity.IsZero() {
		return m.TimeGranularity, true
	}

	var native []TimeGranularity
	for _, name := range m.Dimensions {
		if d, ok := c.dimensions[name]; ok && d.IsTime() {
			native = append(native, d.TimeGranularity)
		}
	}
	if g := Coarsest(native...); !g.IsZero() {
		return g, true
	}

	return c.primaryTime.TimeGranularity, true
}
