// Package validation checks a metrics model for referential and semantic
// correctness before it is used to generate queries.
//
// Validation never fails fast. Every rule runs against every materialization
// and the resulting issues are concatenated in a fixed order:
//
//  1. Materializations in model declaration order
//  2. Rules in rule set registration order
//  3. Issues in the order each rule discovers them
//
// Data-quality findings (an unknown metric, a missing primary time dimension)
// are reported as Issue values. Only structural problems, such as a corrupt
// model or malformed dimension reference syntax, are returned as errors.
//
// # Usage
//
//	v := validation.New(rules.Default(), validation.NewConfig(), logger)
//	issues, err := v.ValidateModel(model)
package validation
