// Package llm wraps the language-model providers that draft commit messages.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

const systemInstruction = "You are a professional Git commit message generator. " +
	"You always answer with a single JSON object and no surrounding prose."

var (
	errMissingAPIKey = errors.New("API key not set, set GOOGLE_API_KEY / OPENAI_API_KEY or run: gpush config set api_key YOUR_API_KEY")
	errEmptyResponse = errors.New("LLM returned empty response")
)

type Options struct {
	Provider string
	Model    string
	APIKey   string
	APIBase  string
	// Timeout bounds a single request. Zero leaves the request unbounded.
	Timeout time.Duration
}

type backend interface {
	generate(ctx context.Context, prompt string) (string, error)
	close() error
}

// Client is the commit-message generator used by the push workflow.
type Client struct {
	opts       Options
	newBackend func(ctx context.Context, opts Options) (backend, error)
}

func NewClient(opts Options) *Client {
	if opts.Provider == "" {
		opts.Provider = ProviderGemini
	}
	if opts.Model == "" {
		opts.Model = DefaultModel(opts.Provider)
	}
	return &Client{opts: opts, newBackend: openBackend}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	if provider == ProviderOpenAI {
		return "gpt-4.1-mini"
	}
	return "gemini-pro"
}

func openBackend(ctx context.Context, opts Options) (backend, error) {
	switch strings.ToLower(opts.Provider) {
	case ProviderGemini:
		return newGeminiBackend(ctx, opts)
	case ProviderOpenAI:
		return newOpenAIBackend(opts), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q (supported: %s, %s)", opts.Provider, ProviderGemini, ProviderOpenAI)
	}
}

// GenerateContent sends prompt to the configured model and returns its text reply.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(c.opts.APIKey) == "" {
		return "", errMissingAPIKey
	}

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	b, err := c.newBackend(ctx, c.opts)
	if err != nil {
		return "", err
	}
	defer b.close()

	text, err := b.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to call LLM: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

// TestConnection sends a trivial prompt to verify credentials and model name.
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.GenerateContent(ctx, `Reply with {"subject":"ping","body":"pong"}.`)
	return err
}

func (c *Client) Provider() string {
	return c.opts.Provider
}

func (c *Client) Model() string {
	return c.opts.Model
}
