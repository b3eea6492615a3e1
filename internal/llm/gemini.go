package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type geminiBackend struct {
	client *genai.Client
	model  contentGenerator
}

func newGeminiBackend(ctx context.Context, opts Options) (*geminiBackend, error) {
	clientOpts := []option.ClientOption{option.WithAPIKey(opts.APIKey)}
	if opts.APIBase != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.APIBase))
	}
	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(opts.Model)
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemInstruction))
	return &geminiBackend{client: client, model: model}, nil
}

func (b *geminiBackend) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := b.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

func (b *geminiBackend) close() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errEmptyResponse
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return "", errEmptyResponse
	}

	var sb strings.Builder
	for _, part := range content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}
