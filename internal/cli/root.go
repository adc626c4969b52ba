// Package cli implements the pipebuilder command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/opencode-ai/pipebuilder/internal/config"
	"github.com/opencode-ai/pipebuilder/internal/logging"
)

var (
	cfgFile        string
	jsonOutput     bool
	jsonlOutput    bool
	logLevel       string
	nonInteractive bool
	noProgress     bool

	appConfig *config.Config
	version   = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "pipebuilder",
	Short: "Assemble data pipelines from catalog blocks",
	Long: `pipebuilder composes an ordered pipeline of reusable code blocks and
generates a runnable run.py job script from it.

Run "pipebuilder ui" for the interactive editor.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd == initCmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Close()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ~/.config/pipebuilder/config.yaml)")
	flags.BoolVar(&jsonOutput, "json", false, "output JSON")
	flags.BoolVar(&jsonlOutput, "jsonl", false, "output JSON lines")
	flags.StringVar(&logLevel, "log-level", "", "override log level (trace, debug, info, warn, error)")
	flags.BoolVar(&nonInteractive, "non-interactive", false, "never prompt; use defaults")
	flags.BoolVar(&noProgress, "no-progress", false, "disable progress output")
}

// SetVersion sets the version reported by the CLI and daemon.
func SetVersion(v string) {
	if strings.TrimSpace(v) != "" {
		version = v
	}
	rootCmd.Version = version
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		return 1
	}
	return 0
}

// initConfig loads config and logging. tolerateLoadErrors lets init recover
// from a missing or broken config file by starting from defaults.
func initConfig(tolerateLoadErrors bool) error {
	if jsonOutput && jsonlOutput {
		return &PreflightError{
			Message:  "--json and --jsonl are mutually exclusive",
			NextStep: "pick one output format",
		}
	}

	cfg, err := config.Load(cfgFile)
	if err != nil && tolerateLoadErrors {
		cfg, err = config.DefaultConfig(), nil
	}
	if err != nil {
		return &PreflightError{
			Message:  err.Error(),
			Hint:     "Check the config file syntax or regenerate it",
			NextStep: "pipebuilder init --force",
		}
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	}); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	appConfig = cfg
	log := logging.Component("cli")
	log.Debug().Str("config", cfgFile).Msg("config loaded")
	return nil
}

// GetConfig returns the loaded configuration, or defaults before loading.
func GetConfig() *config.Config {
	if appConfig == nil {
		return config.DefaultConfig()
	}
	return appConfig
}

func logger(component string) zerolog.Logger {
	return logging.Component(component)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
