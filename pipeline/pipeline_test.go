package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/arcsys-ai/arcsys/graph/store"
)

// stageGen answers prompts by the agent banner they contain, so every stage
// can receive a stage-appropriate response regardless of call order.
type stageGen struct {
	mu      sync.Mutex
	prompts []string
	respond func(prompt string) (string, error)
}

func (g *stageGen) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	return g.respond(prompt)
}

func (g *stageGen) countPrompts(banner string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, p := range g.prompts {
		if strings.Contains(p, banner) {
			n++
		}
	}
	return n
}

func happyResponses(criticJSON string) func(string) (string, error) {
	return func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "Planner Agent"):
			return "extracted requirements", nil
		case strings.Contains(prompt, "Researcher Agent"):
			return "research findings", nil
		case strings.Contains(prompt, "Architect Agent"):
			return "layered architecture", nil
		case strings.Contains(prompt, "Visualizer Agent"):
			return "mermaid diagrams", nil
		case strings.Contains(prompt, "Meta-Critic Agent"):
			return "0.1 - low risk", nil
		case strings.Contains(prompt, "Critic Agent"):
			return criticJSON, nil
		default:
			return "", nil
		}
	}
}

func newTestPipeline(t *testing.T, gen *stageGen, maxAttempts int) (*Pipeline, *store.MemStore[State]) {
	t.Helper()
	st := store.NewMemStore[State]()
	p, err := New(Params{
		Generator:   gen,
		Store:       st,
		MaxAttempts: maxAttempts,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p, st
}

func TestPipeline_Run(t *testing.T) {
	t.Run("clean run completes in one pass", func(t *testing.T) {
		gen := &stageGen{respond: happyResponses(`{"score": 8.0, "feedback": "meets the bar"}`)}
		p, st := newTestPipeline(t, gen, 0)

		final, err := p.Run(context.Background(), "run-e2e", "Design a simple REST API for user management")
		if err != nil {
			t.Fatalf("Run: %v", err)
		}

		if final.Iterations != 6 {
			t.Errorf("Iterations = %d, want 6", final.Iterations)
		}
		if len(final.ErrorLog) != 0 {
			t.Errorf("ErrorLog = %v, want empty", final.ErrorLog)
		}
		if final.Score != 8.0 {
			t.Errorf("Score = %v, want 8.0", final.Score)
		}
		if final.RiskScore != 0.1 {
			t.Errorf("RiskScore = %v, want 0.1", final.RiskScore)
		}
		if final.FinalOutput == "" {
			t.Fatal("FinalOutput is empty")
		}
		for _, h := range []string{"# Requirements", "# Research Notes", "# Architecture Design", "# Visualization", "# Evaluation"} {
			if !strings.Contains(final.FinalOutput, h) {
				t.Errorf("FinalOutput missing %q", h)
			}
		}

		if got := gen.countPrompts("Researcher Agent"); got != 1 {
			t.Errorf("researcher invoked %d times, want 1", got)
		}
		if len(gen.prompts) != 6 {
			t.Errorf("generation calls = %d, want 6", len(gen.prompts))
		}

		// One snapshot per step, finalize included.
		if got := len(st.History("run-e2e")); got != 7 {
			t.Errorf("persisted steps = %d, want 7", got)
		}
	})

	t.Run("default ceiling proceeds past a low score", func(t *testing.T) {
		gen := &stageGen{respond: happyResponses(`{"score": 2.0, "feedback": "weak"}`)}
		p, _ := newTestPipeline(t, gen, 0)

		final, err := p.Run(context.Background(), "run-ceiling", "query text long enough")
		if err != nil {
			t.Fatalf("Run: %v", err)
		}

		// Five attempts precede the first critic decision, so the default
		// ceiling of three is already spent and the loop never fires.
		if got := gen.countPrompts("Researcher Agent"); got != 1 {
			t.Errorf("researcher invoked %d times, want 1", got)
		}
		if final.Iterations != 6 {
			t.Errorf("Iterations = %d, want 6", final.Iterations)
		}
	})

	t.Run("retry loop is bounded by the ceiling", func(t *testing.T) {
		gen := &stageGen{respond: happyResponses(`{"score": 2.0, "feedback": "still weak"}`)}
		p, _ := newTestPipeline(t, gen, 10)

		final, err := p.Run(context.Background(), "run-retry", "query text long enough")
		if err != nil {
			t.Fatalf("Run: %v", err)
		}

		// Pass 1 decides at 5 iterations, pass 2 at 9, pass 3 at 13 which
		// is past the ceiling of 10.
		if got := gen.countPrompts("Researcher Agent"); got != 3 {
			t.Errorf("researcher invoked %d times, want 3", got)
		}
		if got := gen.countPrompts("Meta-Critic Agent"); got != 1 {
			t.Errorf("meta-critic invoked %d times, want 1", got)
		}
		if final.Iterations != 14 {
			t.Errorf("Iterations = %d, want 14", final.Iterations)
		}
		if final.FinalOutput == "" {
			t.Error("run did not reach the finalizer")
		}
	})

	t.Run("passing score on first pass never revisits research", func(t *testing.T) {
		gen := &stageGen{respond: happyResponses(`{"score": 9.0, "feedback": "strong"}`)}
		p, _ := newTestPipeline(t, gen, 10)

		_, err := p.Run(context.Background(), "run-first-pass", "query text long enough")
		if err != nil {
			t.Fatalf("Run: %v", err)
		}

		if got := gen.countPrompts("Researcher Agent"); got != 1 {
			t.Errorf("researcher invoked %d times, want 1", got)
		}
	})

	t.Run("mid-pipeline failure degrades but completes", func(t *testing.T) {
		happy := happyResponses(`{"score": 8.0, "feedback": "fine"}`)
		gen := &stageGen{respond: func(prompt string) (string, error) {
			if strings.Contains(prompt, "Architect Agent") {
				return "", &failErr{"model unavailable"}
			}
			return happy(prompt)
		}}
		p, _ := newTestPipeline(t, gen, 0)

		final, err := p.Run(context.Background(), "run-degraded", "query text long enough")
		if err != nil {
			t.Fatalf("degraded run must still complete: %v", err)
		}

		// Architect fails outright; visualizer, critic, and meta-critic all
		// short-circuit on their own missing-field preconditions.
		if len(final.ErrorLog) != 4 {
			t.Fatalf("ErrorLog = %v, want 4 entries", final.ErrorLog)
		}
		wantPrefixes := []string{"architect failed: ", "visualizer failed: ", "critic failed: ", "meta_critic failed: "}
		for i, prefix := range wantPrefixes {
			if !strings.HasPrefix(final.ErrorLog[i], prefix) {
				t.Errorf("ErrorLog[%d] = %q, want prefix %q", i, final.ErrorLog[i], prefix)
			}
		}

		if final.Iterations != 6 {
			t.Errorf("Iterations = %d, want 6", final.Iterations)
		}
		if !strings.Contains(final.FinalOutput, "# Requirements") || !strings.Contains(final.FinalOutput, "# Research Notes") {
			t.Errorf("surviving sections missing:\n%s", final.FinalOutput)
		}
		for _, h := range []string{"# Architecture Design", "# Visualization", "# Evaluation"} {
			if strings.Contains(final.FinalOutput, h) {
				t.Errorf("FinalOutput contains %q for a field that was never produced", h)
			}
		}
	})

	t.Run("total failure still reaches done", func(t *testing.T) {
		gen := &stageGen{respond: func(prompt string) (string, error) {
			return "", &failErr{"provider down"}
		}}
		p, _ := newTestPipeline(t, gen, 0)

		final, err := p.Run(context.Background(), "run-dark", "query text long enough")
		if err != nil {
			t.Fatalf("Run: %v", err)
		}

		if len(final.ErrorLog) != 6 {
			t.Errorf("ErrorLog = %v, want 6 entries", final.ErrorLog)
		}
		if final.Iterations != 6 {
			t.Errorf("Iterations = %d, want 6", final.Iterations)
		}
	})
}

type failErr struct{ msg string }

func (e *failErr) Error() string { return e.msg }
