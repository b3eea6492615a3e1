package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samzong/gpush/internal/config"
	"github.com/samzong/gpush/internal/llm"
	"github.com/spf13/cobra"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage gpush configuration",
		Long:  `Show and change the LLM provider, model, API key and prompt settings.`,
	}

	configSetCmd = &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: "Set a configuration value. Keys: " + strings.Join(config.SettableKeys(), ", ") + ".\n" +
			"Suggested providers: " + strings.Join(config.GetSuggestedProviders(), ", ") + ".",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeConfigKeys,
		RunE: func(_ *cobra.Command, args []string) error {
			if err := requireConfig(); err != nil {
				return err
			}
			return setConfigValue(outWriter(), args[0], args[1])
		},
	}

	configGetCmd = &cobra.Command{
		Use:   "get",
		Short: "Show the current configuration",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := requireConfig(); err != nil {
				return err
			}
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			printConfig(outWriter(), cfg)
			return nil
		},
	}
)

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
}

func completeConfigKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.SettableKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	if args[0] == "provider" {
		return config.GetSuggestedProviders(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveDefault
}

func setConfigValue(out io.Writer, key, raw string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if !config.IsSettableKey(key) {
		return fmt.Errorf("unknown configuration key %q (valid keys: %s)", key, strings.Join(config.SettableKeys(), ", "))
	}

	value, err := parseConfigValue(key, raw)
	if err != nil {
		return err
	}

	config.SetConfigValue(key, value)
	if err := config.SaveConfig(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	if key == "api_key" {
		fmt.Fprintf(out, "Set %s to %s\n", key, maskAPIKey(raw))
	} else {
		fmt.Fprintf(out, "Set %s to %v\n", key, value)
	}
	return nil
}

func parseConfigValue(key, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch key {
	case "provider":
		if !config.IsValidProvider(raw) {
			return nil, fmt.Errorf("unsupported provider %q (supported: %s)",
				raw, strings.Join(config.GetSuggestedProviders(), ", "))
		}
		return strings.ToLower(raw), nil
	case "timeout", "max_diff_bytes":
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%s must be a non-negative integer, got %q", key, raw)
		}
		return n, nil
	default:
		return raw, nil
	}
}

func printConfig(out io.Writer, cfg *config.Config) {
	model := cfg.Model
	if model == "" {
		model = llm.DefaultModel(cfg.Provider) + " (default)"
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "Provider: %s\n", cfg.Provider)
	fmt.Fprintf(out, "Model: %s\n", model)
	fmt.Fprintf(out, "API Key: %s\n", maskAPIKey(cfg.APIKey))
	fmt.Fprintf(out, "API Base: %s\n", orUnset(cfg.APIBase))
	if cfg.Timeout > 0 {
		fmt.Fprintf(out, "Timeout: %ds\n", cfg.Timeout)
	} else {
		fmt.Fprintln(out, "Timeout: none")
	}
	fmt.Fprintf(out, "Max diff bytes: %d\n", cfg.MaxDiffBytes)
	fmt.Fprintf(out, "Prompt template: %s\n", orUnset(cfg.PromptTemplate))
	fmt.Fprintf(out, "Log level: %s\n", cfg.LogLevel)
}

func maskAPIKey(key string) string {
	if key == "" {
		return "<not set>"
	}
	if len(key) <= 8 {
		return "********"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func orUnset(s string) string {
	if s == "" {
		return "<not set>"
	}
	return s
}
