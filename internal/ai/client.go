package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// TextGenerator produces free text from a persona instruction and a user
// prompt. Implementations must honor the context deadline.
type TextGenerator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Client calls an OpenAI-compatible chat completions endpoint. We point it
// at OpenRouter in production; the base URL is configurable so tests and
// self-hosted gateways work too.
type Client struct {
	api     openai.Client
	model   string
	timeout time.Duration
}

// NewClient builds a text-generation client. timeout bounds every Generate
// call; generation is the only network suspension point in a submit, so the
// bound keeps request latency predictable.
func NewClient(apiKey, baseURL, model string, timeout time.Duration) *Client {
	return &Client{
		api: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
		),
		model:   model,
		timeout: timeout,
	}
}

// Generate runs one chat completion with a system persona and user prompt.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.model,
		MaxTokens:   openai.Int(1200),
		Temperature: openai.Float(0.7),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
