package model

import (
	"context"
	"errors"
	"testing"
)

func TestMock(t *testing.T) {
	ctx := context.Background()

	t.Run("responses in order, last repeats", func(t *testing.T) {
		mock := &Mock{Responses: []string{"first", "second"}}

		for i, want := range []string{"first", "second", "second"} {
			got, err := mock.Generate(ctx, "p", 0.1)
			if err != nil {
				t.Fatal(err)
			}
			if got != want {
				t.Errorf("call %d = %q, want %q", i, got, want)
			}
		}
		if mock.CallCount() != 3 {
			t.Errorf("CallCount = %d", mock.CallCount())
		}
	})

	t.Run("records prompts and temperatures", func(t *testing.T) {
		mock := &Mock{Responses: []string{"out"}}
		_, _ = mock.Generate(ctx, "the prompt", 0.4)

		if len(mock.Calls) != 1 {
			t.Fatalf("Calls = %v", mock.Calls)
		}
		if mock.Calls[0].Prompt != "the prompt" || mock.Calls[0].Temperature != 0.4 {
			t.Errorf("call = %+v", mock.Calls[0])
		}
	})

	t.Run("positional error injection", func(t *testing.T) {
		boom := errors.New("boom")
		mock := &Mock{
			Responses: []string{"ok", "unused", "ok again"},
			Errs:      map[int]error{1: boom},
		}

		if _, err := mock.Generate(ctx, "p", 0); err != nil {
			t.Fatal(err)
		}
		if _, err := mock.Generate(ctx, "p", 0); !errors.Is(err, boom) {
			t.Errorf("err = %v, want boom", err)
		}
		if out, err := mock.Generate(ctx, "p", 0); err != nil || out != "ok again" {
			t.Errorf("got %q, %v", out, err)
		}
	})

	t.Run("reset clears history", func(t *testing.T) {
		mock := &Mock{Responses: []string{"a", "b"}}
		_, _ = mock.Generate(ctx, "p", 0)
		mock.Reset()

		if mock.CallCount() != 0 {
			t.Errorf("CallCount after reset = %d", mock.CallCount())
		}
		out, _ := mock.Generate(ctx, "p", 0)
		if out != "a" {
			t.Errorf("cursor not reset, got %q", out)
		}
	})
}

func TestGenerationError(t *testing.T) {
	cause := errors.New("underlying")
	err := &GenerationError{Provider: "openai", Message: "call failed", Cause: cause}

	if err.Error() != "openai: call failed" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("Unwrap chain broken")
	}
}
