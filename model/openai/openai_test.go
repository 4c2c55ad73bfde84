package openai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arcsys-ai/arcsys/model"
)

type scriptedCompleter struct {
	results []func() (string, error)
	calls   int
}

func (s *scriptedCompleter) complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	i := s.calls
	s.calls++
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	return s.results[i]()
}

func newTestGenerator(c completer) *Generator {
	return &Generator{
		modelName:  "gpt-4o-mini",
		client:     c,
		maxRetries: 3,
		retryDelay: time.Millisecond,
	}
}

func TestGenerator_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("success passes text through", func(t *testing.T) {
		c := &scriptedCompleter{results: []func() (string, error){
			func() (string, error) { return "the answer", nil },
		}}
		g := newTestGenerator(c)

		got, err := g.Generate(ctx, "prompt", 0.2)
		if err != nil {
			t.Fatal(err)
		}
		if got != "the answer" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("transient error is retried", func(t *testing.T) {
		c := &scriptedCompleter{results: []func() (string, error){
			func() (string, error) { return "", errors.New("503 service unavailable") },
			func() (string, error) { return "", errors.New("connection reset") },
			func() (string, error) { return "recovered", nil },
		}}
		g := newTestGenerator(c)

		got, err := g.Generate(ctx, "prompt", 0.2)
		if err != nil {
			t.Fatal(err)
		}
		if got != "recovered" || c.calls != 3 {
			t.Errorf("got %q after %d calls", got, c.calls)
		}
	})

	t.Run("non-transient error fails immediately", func(t *testing.T) {
		c := &scriptedCompleter{results: []func() (string, error){
			func() (string, error) { return "", errors.New("invalid api key") },
		}}
		g := newTestGenerator(c)

		_, err := g.Generate(ctx, "prompt", 0.2)
		if err == nil {
			t.Fatal("expected error")
		}
		if c.calls != 1 {
			t.Errorf("calls = %d, want 1", c.calls)
		}

		var genErr *model.GenerationError
		if !errors.As(err, &genErr) || genErr.Provider != "openai" {
			t.Errorf("err = %v, want openai GenerationError", err)
		}
	})

	t.Run("persistent rate limit maps to ErrRateLimited", func(t *testing.T) {
		c := &scriptedCompleter{results: []func() (string, error){
			func() (string, error) { return "", errors.New("429 too many requests") },
		}}
		g := newTestGenerator(c)

		_, err := g.Generate(ctx, "prompt", 0.2)
		if !errors.Is(err, model.ErrRateLimited) {
			t.Errorf("err = %v, want ErrRateLimited in chain", err)
		}
		if c.calls != g.maxRetries+1 {
			t.Errorf("calls = %d, want %d", c.calls, g.maxRetries+1)
		}
	})

	t.Run("canceled context stops immediately", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		c := &scriptedCompleter{results: []func() (string, error){
			func() (string, error) { return "never", nil },
		}}
		g := newTestGenerator(c)

		if _, err := g.Generate(canceled, "prompt", 0.2); !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
		if c.calls != 0 {
			t.Errorf("calls = %d, want 0", c.calls)
		}
	})
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"dial tcp: connection refused", true},
		{"request timeout", true},
		{"502 bad gateway", true},
		{"rate limit exceeded", true},
		{"invalid api key", false},
		{"model not found", false},
	}
	for _, tt := range tests {
		if got := isTransient(errors.New(tt.msg)); got != tt.want {
			t.Errorf("isTransient(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}
