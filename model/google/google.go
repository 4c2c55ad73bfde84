// Package google adapts the Gemini API to the model.Generator contract.
package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/arcsys-ai/arcsys/model"
)

// Generator implements model.Generator using Google's Gemini API.
//
// The underlying client holds a gRPC connection; call Close when done.
type Generator struct {
	client    *genai.Client
	modelName string
}

// New creates a Gemini-backed Generator.
//
// An empty modelName selects "gemini-2.0-flash". Client construction dials
// the API, so a context is required.
func New(ctx context.Context, apiKey, modelName string) (*Generator, error) {
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Generator{client: client, modelName: modelName}, nil
}

// Generate implements the model.Generator interface.
func (g *Generator) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	gm := g.client.GenerativeModel(g.modelName)
	gm.SetTemperature(float32(temperature))

	resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", mapError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &model.GenerationError{
			Provider: "google",
			Message:  "empty response from API",
		}
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	if text.Len() == 0 {
		return "", &model.GenerationError{
			Provider: "google",
			Message:  "no text parts in response",
		}
	}
	return text.String(), nil
}

// Close releases the underlying API client.
func (g *Generator) Close() error {
	return g.client.Close()
}

func mapError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "quota") || strings.Contains(msg, "429") || strings.Contains(msg, "resource exhausted") {
		return &model.GenerationError{
			Provider: "google",
			Message:  "rate limited: " + err.Error(),
			Cause:    errors.Join(model.ErrRateLimited, err),
		}
	}
	return &model.GenerationError{
		Provider: "google",
		Message:  err.Error(),
		Cause:    err,
	}
}
