// Package model provides LLM generation adapters for the pipeline stages.
package model

import (
	"context"
	"errors"
)

// Generator is the single capability a pipeline stage needs from an LLM
// provider: turn a prompt into text at a fixed sampling temperature.
//
// Implementations should:
//   - Handle provider-specific authentication and wire formats
//   - Respect context cancellation and deadlines
//   - Map provider rate limiting to ErrRateLimited
//
// Example:
//
//	gen := openai.New(apiKey, "gpt-4o-mini", "")
//	text, err := gen.Generate(ctx, "Summarize: ...", 0.2)
type Generator interface {
	// Generate sends the prompt to the provider and returns the raw response
	// text. Errors are *GenerationError values; rate limiting additionally
	// matches ErrRateLimited via errors.Is.
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
}

// ErrRateLimited marks a transient provider rate-limit rejection.
var ErrRateLimited = errors.New("generation rate limited")

// GenerationError wraps a failed generation call with its provider name.
type GenerationError struct {
	// Provider is the adapter that produced the error (openai, anthropic, ...).
	Provider string

	// Message describes the failure.
	Message string

	// Cause is the underlying provider error, if any.
	Cause error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	return e.Provider + ": " + e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}
