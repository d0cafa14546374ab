package openai

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/consilium-health/consilium/internal/infrastructure/observability"
	"github.com/consilium-health/consilium/pkg/config"
	apperrors "github.com/consilium-health/consilium/pkg/errors"
)

// Client implements the text-generation provider on top of the OpenAI chat
// completion API. The caller is responsible for deciding what to do when a
// call fails; this client only reports the failure.
type Client struct {
	client  *openai.Client
	model   string
	metrics *observability.Metrics
}

// NewClient creates a new OpenAI-backed text generator. Metrics may be nil.
func NewClient(cfg *config.OpenAIConfig, metrics *observability.Metrics) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &Client{
		client:  openai.NewClient(cfg.APIKey),
		model:   model,
		metrics: metrics,
	}, nil
}

// Generate produces a completion for the given system and user prompts.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: temperature,
	})
	if c.metrics != nil {
		observability.RecordLLMMetric(ctx, c.metrics, c.model, time.Since(start), err)
	}
	if err != nil {
		return "", apperrors.NewExternalError("text generation failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.NewExternalError("text generation returned no choices", nil)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
