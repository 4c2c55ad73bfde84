package model

import (
	"context"
	"errors"
	"time"
)

// Limited wraps a Generator with the admission gate: at most maxInflight
// generation calls are in flight at once across all pipeline runs sharing
// this instance, and every call is bounded by callTimeout.
//
// The permit is released unconditionally when the call returns, success or
// failure. A call that times out is reported as a GenerationError so the
// owning stage records it and the run continues; the process is unaffected.
type Limited struct {
	inner       Generator
	permits     chan struct{}
	callTimeout time.Duration
}

// NewLimited creates the admission gate in front of a Generator.
//
// maxInflight values below 1 are treated as 1. A zero callTimeout disables
// the per-call deadline.
//
// Example:
//
//	gen := model.NewLimited(openai.New(key, "gpt-4o-mini", ""), 60, 300*time.Second)
func NewLimited(inner Generator, maxInflight int, callTimeout time.Duration) *Limited {
	if maxInflight < 1 {
		maxInflight = 1
	}
	return &Limited{
		inner:       inner,
		permits:     make(chan struct{}, maxInflight),
		callTimeout: callTimeout,
	}
}

// Generate acquires a permit, forwards the call under the configured
// deadline, and releases the permit when done.
func (l *Limited) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	select {
	case l.permits <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-l.permits }()

	callCtx := ctx
	if l.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, l.callTimeout)
		defer cancel()
	}

	text, err := l.inner.Generate(callCtx, prompt, temperature)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &GenerationError{
				Provider: "limiter",
				Message:  "generation call timed out after " + l.callTimeout.String(),
				Cause:    err,
			}
		}
		return "", err
	}
	return text, nil
}
