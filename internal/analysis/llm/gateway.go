package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// DefaultGatewayURL and DefaultGatewayModel apply when the config leaves them empty
const (
	DefaultGatewayURL   = "https://ai.gateway.lovable.dev/v1"
	DefaultGatewayModel = "google/gemini-2.5-flash"
)

// gateway talks to any OpenAI-compatible chat completions endpoint
type gateway struct {
	client openai.Client
	model  string
}

func newGateway(cfg *Config) (*gateway, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm api key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultGatewayURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultGatewayModel
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	)

	return &gateway{client: client, model: model}, nil
}

func (g *gateway) name() string { return ProviderGateway }

func (g *gateway) complete(ctx context.Context, system, user string) (string, error) {
	jsonObject := shared.NewResponseFormatJSONObjectParam()

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &jsonObject,
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%w: status %d", ErrModelRequest, apiErr.StatusCode)
		}
		return "", fmt.Errorf("%w: %v", ErrModelRequest, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrModelResponse)
	}
	return resp.Choices[0].Message.Content, nil
}
