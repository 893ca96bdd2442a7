// Package cli provides the command-line interface for LeapMetrics.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/leapstack-labs/leapmetrics/internal/cli/commands"
	"github.com/leapstack-labs/leapmetrics/internal/cli/config"
	"github.com/leapstack-labs/leapmetrics/internal/logger"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "leapmetrics",
		Short: "LeapMetrics - Metrics model validation",
		Long: `LeapMetrics checks the materializations declared in a metrics model
against the metrics and dimensions the model defines.

Every materialization is checked by every enabled rule, and all issues are
reported in one pass so a model can be fixed in a single edit.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			log := logger.New(cmd.ErrOrStderr(), cfg.Verbose)
			cmd.SetContext(config.WithLogger(cmd.Context(), log))

			log.Debug("loaded configuration",
				"config_file", config.GetConfigFileUsed(),
				"model", cfg.ModelPath,
				"state", cfg.StatePath)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{.Name}} {{.Version}}
commit %s, built %s
`, GitCommit, BuildDate))

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./leapmetrics.yaml, searched upward)")
	rootCmd.PersistentFlags().String("model", "", "Path to the metrics model file")
	rootCmd.PersistentFlags().String("state", "", "Path to state database")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|markdown|json)")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "markdown", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.MarkPersistentFlagFilename("model", "yaml", "yml")
	_ = rootCmd.MarkPersistentFlagFilename("config", "yaml", "yml")

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewRulesCommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command with the process arguments.
func Execute() error {
	return run(NewRootCmd(), os.Stderr)
}

// run executes cmd and prints its error to errOut. ErrIssuesFound is not
// printed: the issues were already rendered.
func run(cmd *cobra.Command, errOut io.Writer) error {
	defer config.ResetConfig()

	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, commands.ErrIssuesFound) {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		}
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for LeapMetrics.

To load completions:

Bash:
  $ source <(leapmetrics completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ leapmetrics completion bash > /etc/bash_completion.d/leapmetrics
  # macOS:
  $ leapmetrics completion bash > $(brew --prefix)/etc/bash_completion.d/leapmetrics

Zsh:
  $ leapmetrics completion zsh > "${fpath[1]}/_leapmetrics"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ leapmetrics completion fish > ~/.config/fish/completions/leapmetrics.fish

PowerShell:
  PS> leapmetrics completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
