// Package anthropic adapts the Anthropic Messages API to the
// model.Generator contract.
package anthropic

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/arcsys-ai/arcsys/model"
)

const defaultMaxTokens = 4096

// Generator implements model.Generator using Anthropic's Messages API.
type Generator struct {
	modelName string
	client    messenger
}

// messenger is the narrow slice of the Anthropic SDK the adapter needs.
type messenger interface {
	message(ctx context.Context, prompt string, temperature float64) (string, error)
}

// New creates an Anthropic-backed Generator.
//
// An empty modelName selects "claude-sonnet-4-20250514".
func New(apiKey, modelName string) *Generator {
	if modelName == "" {
		modelName = "claude-sonnet-4-20250514"
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Generator{
		modelName: modelName,
		client:    &sdkClient{client: &client, modelName: modelName},
	}
}

// Generate implements the model.Generator interface.
func (g *Generator) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	text, err := g.client.message(ctx, prompt, temperature)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", mapError(err)
	}
	return text, nil
}

type sdkClient struct {
	client    *anthropic.Client
	modelName string
}

func (c *sdkClient) message(ctx context.Context, prompt string, temperature float64) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.modelName),
		MaxTokens:   defaultMaxTokens,
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", errors.New("empty response from API")
	}
	return text.String(), nil
}

func mapError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "rate limit") || strings.Contains(msg, "429") || strings.Contains(msg, "overloaded") {
		return &model.GenerationError{
			Provider: "anthropic",
			Message:  "rate limited: " + err.Error(),
			Cause:    errors.Join(model.ErrRateLimited, err),
		}
	}
	return &model.GenerationError{
		Provider: "anthropic",
		Message:  err.Error(),
		Cause:    err,
	}
}
