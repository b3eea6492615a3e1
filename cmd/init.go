package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samzong/gpush/internal/config"
	"github.com/samzong/gpush/internal/llm"
	"github.com/samzong/gpush/internal/ui"
	"github.com/spf13/cobra"
)

type wizardAnswers struct {
	Provider string
	APIKey   string
	Model    string
	APIBase  string
}

var (
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize gpush configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireConfig(); err != nil {
				return err
			}
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			if err := runInitWizard(cmd.Context(), inReader(), outWriter(), cfg); err != nil {
				return err
			}
			fmt.Fprintln(outWriter(), "Initialization complete.")
			return nil
		},
	}

	saveConfigValues = func(a wizardAnswers) error {
		config.SetConfigValue("provider", a.Provider)
		config.SetConfigValue("api_key", a.APIKey)
		config.SetConfigValue("model", a.Model)
		config.SetConfigValue("api_base", a.APIBase)
		return config.SaveConfig()
	}

	testLLMConnection = func(ctx context.Context, opts llm.Options) error {
		return ui.NewSpinner("Testing API connection...").While(func() error {
			return llm.NewClient(opts).TestConnection(ctx)
		})
	}
)

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInitWizard(ctx context.Context, in io.Reader, out io.Writer, current *config.Config) error {
	if current == nil {
		var err error
		if current, err = config.GetConfig(); err != nil {
			return err
		}
	}
	readLine := newTrimmedLineReader(in)
	fmt.Fprintln(out, "gpush init - configure your LLM settings")

	var (
		a   wizardAnswers
		err error
	)
	if a.Provider, err = promptProvider(out, current, readLine); err != nil {
		return err
	}
	if a.APIKey, err = promptAPIKey(out, current, a.Provider, readLine); err != nil {
		return err
	}
	if a.Model, err = promptModel(out, current, a.Provider, readLine); err != nil {
		return err
	}
	if a.APIBase, err = promptAPIBase(out, current, a.Provider, readLine); err != nil {
		return err
	}

	if err := saveConfigValues(a); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	opts := llmOptions(current)
	opts.Provider, opts.APIKey, opts.Model, opts.APIBase = a.Provider, a.APIKey, a.Model, a.APIBase
	if opts.APIKey == "" {
		opts.APIKey = config.EnvAPIKey(a.Provider)
	}
	return maybeTestConnection(ctx, out, opts, readLine)
}

func newTrimmedLineReader(in io.Reader) func() (string, error) {
	reader := bufio.NewReader(in)
	return func() (string, error) {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		if errors.Is(err, io.EOF) && line == "" {
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
}

func promptProvider(out io.Writer, cfg *config.Config, readLine func() (string, error)) (string, error) {
	current := cfg.Provider
	if current == "" {
		current = config.DefaultProvider
	}
	for {
		fmt.Fprintf(out, "Provider [%s] (default: %s): ",
			strings.Join(config.GetSuggestedProviders(), "/"), current)
		line, err := readLine()
		if err != nil {
			return "", err
		}
		if line == "" {
			return current, nil
		}
		if config.IsValidProvider(line) {
			return strings.ToLower(line), nil
		}
		fmt.Fprintf(out, "Unsupported provider %q.\n", line)
	}
}

func promptAPIKey(out io.Writer, cfg *config.Config, provider string, readLine func() (string, error)) (string, error) {
	// a stored key only carries over when the provider is unchanged; an env key is never stored
	stored := ""
	if provider == cfg.Provider && !cfg.APIKeyFromEnv {
		stored = cfg.APIKey
	}
	fromEnv := config.EnvAPIKey(provider) != ""
	for {
		switch {
		case stored != "":
			fmt.Fprintf(out, "API Key (leave blank to keep %s): ", maskAPIKey(stored))
		case fromEnv:
			fmt.Fprintf(out, "API Key (leave blank to use %s): ", config.APIKeyEnv(provider))
		default:
			fmt.Fprintf(out, "API Key (required, or set %s): ", config.APIKeyEnv(provider))
		}

		line, err := readLine()
		if err != nil {
			return "", err
		}
		if line != "" {
			return line, nil
		}
		if stored != "" || fromEnv {
			return stored, nil
		}
		fmt.Fprintln(out, "API key is required.")
	}
}

func promptModel(out io.Writer, cfg *config.Config, provider string, readLine func() (string, error)) (string, error) {
	modelDefault := cfg.Model
	if modelDefault == "" || provider != cfg.Provider {
		modelDefault = llm.DefaultModel(provider)
	}
	fmt.Fprintf(out, "Model (default: %s): ", modelDefault)

	line, err := readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return modelDefault, nil
	}
	return line, nil
}

func promptAPIBase(out io.Writer, cfg *config.Config, provider string, readLine func() (string, error)) (string, error) {
	baseDefault := ""
	if provider == cfg.Provider {
		baseDefault = cfg.APIBase
	}
	fmt.Fprintf(out, "API Base URL (default: %s): ", orUnset(baseDefault))

	line, err := readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return baseDefault, nil
	}
	return line, nil
}

func maybeTestConnection(ctx context.Context, out io.Writer, opts llm.Options, readLine func() (string, error)) error {
	for {
		fmt.Fprint(out, "Test API connection now? [Y/n]: ")
		answer, err := readLine()
		if err != nil {
			return err
		}
		switch strings.ToLower(answer) {
		case "", "y", "yes":
			if err := testLLMConnection(ctx, opts); err != nil {
				fmt.Fprintf(out, "Connection test failed: %v\n", err)
				fmt.Fprintln(out, "You can re-run `gpush init` or update config with `gpush config set`.")
			} else {
				fmt.Fprintln(out, "Connection test succeeded.")
			}
			return nil
		case "n", "no":
			return nil
		default:
			fmt.Fprintln(out, "Please enter y or n.")
		}
	}
}
