package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/arcsys-ai/arcsys/model"
)

func TestAgent_Preconditions(t *testing.T) {
	t.Run("missing required field fails before generation", func(t *testing.T) {
		mock := &model.Mock{Responses: []string{"should never be returned"}}
		researcher := NewResearcher(mock)

		res := researcher.Run(context.Background(), State{Input: "query"})

		if res.Err != nil {
			t.Fatalf("stage failure must not be fatal: %v", res.Err)
		}
		if mock.CallCount() != 0 {
			t.Errorf("generator called despite failed precondition")
		}
		if len(res.Delta.ErrorLog) != 1 {
			t.Fatalf("ErrorLog = %v, want one entry", res.Delta.ErrorLog)
		}
		if !strings.HasPrefix(res.Delta.ErrorLog[0], "researcher failed: ") {
			t.Errorf("error entry = %q", res.Delta.ErrorLog[0])
		}
		if res.Delta.Iterations != 1 {
			t.Errorf("failed attempt must still count: Iterations = %d", res.Delta.Iterations)
		}
	})

	t.Run("whitespace-only field is treated as missing", func(t *testing.T) {
		mock := &model.Mock{}
		planner := NewPlanner(mock)

		res := planner.Run(context.Background(), State{Input: "   \n\t "})

		if len(res.Delta.ErrorLog) != 1 {
			t.Fatalf("expected precondition failure, got %+v", res.Delta)
		}
		if mock.CallCount() != 0 {
			t.Error("generator called on blank input")
		}
	})

	t.Run("oversized field is rejected", func(t *testing.T) {
		mock := &model.Mock{}
		planner := NewPlanner(mock)

		res := planner.Run(context.Background(), State{Input: strings.Repeat("a", maxFieldLength+1)})

		if len(res.Delta.ErrorLog) != 1 {
			t.Fatalf("expected precondition failure, got %+v", res.Delta)
		}
		if !strings.Contains(res.Delta.ErrorLog[0], "maximum length") {
			t.Errorf("error entry = %q", res.Delta.ErrorLog[0])
		}
	})
}

func TestAgent_Run(t *testing.T) {
	t.Run("success produces trimmed output and one iteration", func(t *testing.T) {
		mock := &model.Mock{Responses: []string{"\n  structured requirements  \n"}}
		planner := NewPlanner(mock)

		res := planner.Run(context.Background(), State{Input: "build a thing"})

		if res.Err != nil {
			t.Fatalf("unexpected fatal error: %v", res.Err)
		}
		if res.Delta.Requirements != "structured requirements" {
			t.Errorf("Requirements = %q", res.Delta.Requirements)
		}
		if res.Delta.Iterations != 1 {
			t.Errorf("Iterations = %d, want 1", res.Delta.Iterations)
		}
		if len(res.Delta.ErrorLog) != 0 {
			t.Errorf("ErrorLog = %v", res.Delta.ErrorLog)
		}
	})

	t.Run("each stage uses its own temperature", func(t *testing.T) {
		mock := &model.Mock{Responses: []string{"out"}}

		state := State{
			Input:        "q",
			Requirements: "r",
			Research:     "res",
			Architecture: "arch",
		}

		stages := []struct {
			agent *Agent
			want  float64
		}{
			{NewPlanner(mock), 0.1},
			{NewResearcher(mock), 0.4},
			{NewArchitect(mock), 0.2},
			{NewVisualizer(mock), 0.1},
			{NewCritic(mock), 0.1},
			{NewMetaCritic(mock), 0.1},
		}

		for i, tt := range stages {
			tt.agent.Run(context.Background(), state)
			if got := mock.Calls[i].Temperature; got != tt.want {
				t.Errorf("%s temperature = %v, want %v", tt.agent.name, got, tt.want)
			}
		}
	})

	t.Run("generation failure is contained", func(t *testing.T) {
		mock := &model.Mock{Err: errors.New("provider exploded")}
		planner := NewPlanner(mock)

		res := planner.Run(context.Background(), State{Input: "query"})

		if res.Err != nil {
			t.Fatalf("generation failure must not be fatal: %v", res.Err)
		}
		if res.Delta.Requirements != "" {
			t.Errorf("failed stage produced output: %q", res.Delta.Requirements)
		}
		want := "planner failed: provider exploded"
		if len(res.Delta.ErrorLog) != 1 || res.Delta.ErrorLog[0] != want {
			t.Errorf("ErrorLog = %v, want [%q]", res.Delta.ErrorLog, want)
		}
	})

	t.Run("prompt interpolates state fields", func(t *testing.T) {
		mock := &model.Mock{Responses: []string{"design"}}
		architect := NewArchitect(mock)

		architect.Run(context.Background(), State{
			Input:        "q",
			Requirements: "REQS-MARKER",
			Research:     "RESEARCH-MARKER",
		})

		prompt := mock.Calls[0].Prompt
		if !strings.Contains(prompt, "REQS-MARKER") || !strings.Contains(prompt, "RESEARCH-MARKER") {
			t.Errorf("prompt missing state fields:\n%s", prompt)
		}
	})
}

func TestPreconditionError(t *testing.T) {
	err := &PreconditionError{Stage: "critic", Field: "architecture", Msg: "required field is missing or empty"}
	want := "required field 'architecture': required field is missing or empty"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
