// Package core defines the shared language of the leapmetrics system.
//
// This package contains:
//   - Domain entities (Model, Metric, Dimension, Materialization)
//   - The time granularity catalog (TimeGranularity)
//   - The read-only model Catalog used by validation rules
//   - Shared enums and DTOs (Severity, RuleInfo)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
