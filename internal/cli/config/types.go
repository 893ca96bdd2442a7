// Package config provides configuration management for the LeapMetrics CLI.
//
// Values are layered from defaults, a leapmetrics.yaml file, LEAPMETRICS_
// environment variables and explicitly set flags, in increasing priority.
package config

import (
	"github.com/leapstack-labs/leapmetrics/pkg/core"
)

// Config holds all CLI configuration options.
type Config struct {
	ModelPath    string           `koanf:"model"`
	StatePath    string           `koanf:"state_path"`
	Verbose      bool             `koanf:"verbose"`
	OutputFormat string           `koanf:"output"`
	Validation   ValidationConfig `koanf:"validation"`

	// ProjectRoot is the directory relative paths resolve against.
	// It is derived, never read from configuration.
	ProjectRoot string `koanf:"-"`
}

// ValidationConfig controls the rule set applied by validate.
type ValidationConfig struct {
	Disabled    []string                 `koanf:"disabled"`
	Severity    map[string]core.Severity `koanf:"severity"`
	Parallelism int                      `koanf:"parallelism"`
	FailOn      core.Severity            `koanf:"fail_on"`
}

// Default configuration values.
const (
	DefaultModelFile   = "metrics.yaml"
	DefaultStateFile   = ".leapmetrics/state.db"
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultFailOn      = "error"
	DefaultParallelism = 1
)

// configFileNames are searched in order.
var configFileNames = []string{"leapmetrics.yaml", "leapmetrics.yml"}
