// Package openai adapts OpenAI-compatible chat completion APIs to the
// model.Generator contract.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/arcsys-ai/arcsys/model"
)

// Generator implements model.Generator using OpenAI's chat completion API.
//
// A custom base URL makes the same adapter work against any
// OpenAI-compatible endpoint (OpenRouter, local gateways).
//
// Transient failures (rate limits, 5xx, network) are retried with a short
// backoff before the error is surfaced to the stage.
//
// Example:
//
//	gen := openai.New(os.Getenv("ARCSYS_API_KEY"), "gpt-4o-mini", "")
//	text, err := gen.Generate(ctx, prompt, 0.2)
type Generator struct {
	modelName  string
	client     completer
	maxRetries int
	retryDelay time.Duration
}

// completer is the narrow slice of the OpenAI SDK the adapter needs.
// Indirection allows mocking in tests.
type completer interface {
	complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

// New creates an OpenAI-backed Generator.
//
// Parameters:
//   - apiKey: API key for the endpoint
//   - modelName: model identifier; empty selects "gpt-4o-mini"
//   - baseURL: optional OpenAI-compatible endpoint override (empty for api.openai.com)
func New(apiKey, modelName, baseURL string) *Generator {
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)

	return &Generator{
		modelName:  modelName,
		client:     &sdkClient{client: &client, modelName: modelName},
		maxRetries: 3,
		retryDelay: time.Second,
	}
}

// Generate implements the model.Generator interface.
func (g *Generator) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		text, err := g.client.complete(ctx, prompt, temperature)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		if !isTransient(err) || attempt >= g.maxRetries {
			break
		}

		delay := g.retryDelay
		if isRateLimited(err) {
			delay = g.retryDelay * time.Duration(attempt+1)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return "", mapError(lastErr)
}

// sdkClient is the live implementation of completer over the official SDK.
type sdkClient struct {
	client    *openai.Client
	modelName string
}

func (c *sdkClient) complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(prompt),
					},
				},
			},
		},
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", err
	}

	if len(completion.Choices) == 0 {
		return "", errors.New("empty completion from API")
	}
	return completion.Choices[0].Message.Content, nil
}

// isTransient reports whether an error is worth retrying.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if isRateLimited(err) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"timeout", "network", "connection", "temporary", "500", "502", "503"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "429") ||
		strings.Contains(msg, "too many requests")
}

// mapError converts an SDK error into the model error taxonomy.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if isRateLimited(err) {
		return &model.GenerationError{
			Provider: "openai",
			Message:  "rate limited: " + err.Error(),
			Cause:    fmt.Errorf("%w: %w", model.ErrRateLimited, err),
		}
	}
	return &model.GenerationError{
		Provider: "openai",
		Message:  err.Error(),
		Cause:    err,
	}
}
