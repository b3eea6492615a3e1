package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samzong/gpush/internal/config"
	"github.com/samzong/gpush/internal/git"
	"github.com/samzong/gpush/internal/llm"
	"github.com/samzong/gpush/internal/workflow"
	"go.uber.org/dig"
)

// streams are the writers a command run talks to.
type streams struct {
	Out io.Writer
	Err io.Writer
}

// newContainer registers every collaborator of a command run. loadConfig supplies
// the *config.Config the other providers are built from.
func newContainer(s streams, loadConfig func() (*config.Config, error)) (*dig.Container, error) {
	container := dig.New()

	providers := []any{
		func() streams { return s },
		loadConfig,
		provideLogger,
		provideGitClient,
		provideLLMClient,
		provideBootstrapper,
		provideCommitter,
	}
	for _, p := range providers {
		if err := container.Provide(p); err != nil {
			return nil, err
		}
	}
	return container, nil
}

// fallbackConfig loads the configuration and degrades to the defaults when it is
// unusable. The returned error is the one that was ignored.
func fallbackConfig() (*config.Config, error) {
	if configErr != nil {
		return config.Defaults(), configErr
	}
	cfg, err := config.GetConfig()
	if err != nil {
		return config.Defaults(), err
	}
	if cfg.LogLevel != "" {
		if _, err := log.ParseLevel(strings.ToLower(cfg.LogLevel)); err != nil {
			return config.Defaults(), fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
	}
	return cfg, nil
}

func provideLogger(s streams, cfg *config.Config) (*log.Logger, error) {
	return newLogger(s.Err, cfg.LogLevel)
}

func provideGitClient(logger *log.Logger, s streams) *git.Client {
	return git.NewClient(git.Options{Verbose: verbose, Logger: logger, Progress: s.Err})
}

func provideLLMClient(cfg *config.Config) *llm.Client {
	return llm.NewClient(llmOptions(cfg))
}

func llmOptions(cfg *config.Config) llm.Options {
	return llm.Options{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
		APIBase:  cfg.APIBase,
		Timeout:  time.Duration(cfg.Timeout) * time.Second,
	}
}

func provideBootstrapper(g *git.Client, logger *log.Logger) *workflow.Bootstrapper {
	return workflow.NewBootstrapper(g, logger)
}

func provideCommitter(
	g *git.Client, gen *llm.Client, logger *log.Logger, cfg *config.Config, s streams,
) *workflow.Committer {
	return workflow.NewCommitter(g, gen, logger, workflow.CommitOptions{
		MaxDiffBytes:   cfg.MaxDiffBytes,
		PromptTemplate: cfg.PromptTemplate,
		OutWriter:      s.Out,
	})
}
