package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/leapmetrics/internal/cli/config"
	"github.com/leapstack-labs/leapmetrics/internal/cli/output"
	"github.com/leapstack-labs/leapmetrics/internal/state"
	"github.com/leapstack-labs/leapmetrics/pkg/core"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// RendererFor returns the context renderer, or a new one when a command's
// --format flag overrides the global output mode.
func (c *CommandContext) RendererFor(cmd *cobra.Command, format string) (*output.Renderer, error) {
	if format == "" {
		return c.Renderer, nil
	}
	mode, err := output.ParseMode(format)
	if err != nil {
		return nil, err
	}
	return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode), nil
}

// OpenStore opens the run history database, creating its directory.
// The caller must close the store.
func (c *CommandContext) OpenStore() (*state.SQLiteStore, error) {
	if dir := filepath.Dir(c.Cfg.StatePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	store := state.NewSQLiteStore(state.WithLogger(c.Logger))
	if err := store.Open(c.Cfg.StatePath); err != nil {
		return nil, fmt.Errorf("failed to open state store %s: %w", c.Cfg.StatePath, err)
	}
	return store, nil
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to defaults.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	return &config.Config{
		ModelPath:    config.DefaultModelFile,
		StatePath:    config.DefaultStateFile,
		OutputFormat: config.DefaultOutput,
		Validation: config.ValidationConfig{
			Parallelism: config.DefaultParallelism,
			FailOn:      core.SeverityError,
		},
	}
}

// displayPath shortens path relative to the working directory when it lies below it.
func displayPath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
