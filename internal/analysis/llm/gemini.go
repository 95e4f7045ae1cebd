package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel applies to the gemini provider when no model is configured
const DefaultGeminiModel = "gemini-2.5-flash"

// gemini calls the Gemini API directly
type gemini struct {
	client *genai.Client
	model  string
}

func newGemini(ctx context.Context, cfg *Config) (*gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	return &gemini{client: client, model: model}, nil
}

func (g *gemini) name() string { return ProviderGemini }

func (g *gemini) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(user), &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelRequest, err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty candidate", ErrModelResponse)
	}
	return text, nil
}
