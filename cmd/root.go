package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/samzong/gpush/internal/config"
	"github.com/samzong/gpush/internal/workflow"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	verbose   bool
	logLevel  string
	configErr error
	rootCmd   = &cobra.Command{
		Use:   "gpush",
		Short: "gpush - Git push assistant",
		Long: `gpush is a CLI tool that bootstraps a repository onto a new remote, ` +
			`and commits and pushes later changes with a commit message drafted by an LLM.`,
		Version:       fmt.Sprintf("%s (built at %s)", Version, BuildTime),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
)

func Execute() error {
	return rootCmd.Execute()
}

// SetContext sets the context handed to every subcommand.
func SetContext(ctx context.Context) {
	rootCmd.SetContext(ctx)
}

// RootCmd exposes the command tree for documentation generation.
func RootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Configuration file path (default is $XDG_CONFIG_HOME/gpush/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Show the git commands being run")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn or error (overrides log_level in the config file)")

	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	configErr = config.InitConfig(cfgFile)
}

func requireConfig() error {
	if configErr != nil {
		return fmt.Errorf("configuration error: %w", configErr)
	}
	return nil
}

// handleErrors records a failed workflow and swallows it so the process still exits 0.
// Each step already logged its own failure.
func handleErrors(logger *log.Logger, err error) error {
	if err == nil {
		return nil
	}
	logger.Debug("workflow stopped", "kind", workflow.ErrorKind(err), "err", err)
	return nil
}

// newLogger builds the stderr logger. The --log-level flag wins over the config value.
func newLogger(out io.Writer, configured string) (*log.Logger, error) {
	level := strings.TrimSpace(logLevel)
	if level == "" {
		level = configured
	}
	if level == "" {
		level = config.DefaultLogLevel
	}

	parsed, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return log.NewWithOptions(out, log.Options{
		Level:           parsed,
		ReportTimestamp: parsed == log.DebugLevel,
		TimeFormat:      "15:04:05",
	}), nil
}
