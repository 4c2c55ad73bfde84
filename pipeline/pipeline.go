package pipeline

import (
	"context"
	"time"

	"github.com/arcsys-ai/arcsys/graph"
	"github.com/arcsys-ai/arcsys/graph/emit"
	"github.com/arcsys-ai/arcsys/graph/store"
	"github.com/arcsys-ai/arcsys/model"
)

// Defaults for the retry decision.
const (
	DefaultMaxAttempts = 3
	DefaultThreshold   = 7.0
)

// Params configures a Pipeline. Generator and Store are required; the rest
// default sensibly when zero.
type Params struct {
	// Generator is the shared generation collaborator for all stages.
	Generator model.Generator

	// Store persists per-step state snapshots.
	Store store.Store[State]

	// Emitter receives step events. Nil disables emission.
	Emitter emit.Emitter

	// MaxAttempts is the retry-loop iteration ceiling. Zero means 3.
	MaxAttempts int

	// Threshold is the minimum acceptable critic score. Zero means 7.0.
	Threshold float64

	// Metrics, when non-nil, receives engine step and run observations.
	Metrics *graph.Metrics

	// NodeTimeout bounds each stage execution. Zero disables the bound.
	NodeTimeout time.Duration
}

// Pipeline is the assembled analysis workflow: planner, researcher,
// architect, visualizer, critic, meta-critic, finalizer, with the single
// score-gated retry edge from critic back to researcher.
type Pipeline struct {
	engine *graph.Engine[State]
	router Router
}

// New builds the workflow graph.
//
// The conditional retry edge is connected before the unconditional
// critic-to-meta-critic edge, so a retry decision wins and anything else,
// including a panicking decision, falls through to proceed.
func New(p Params) (*Pipeline, error) {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.Threshold <= 0 {
		p.Threshold = DefaultThreshold
	}

	router := Router{MaxAttempts: p.MaxAttempts, Threshold: p.Threshold}

	// Fixed stages plus a full retry segment per allowed pass, with one
	// spare pass of headroom. The router ceiling terminates the loop well
	// before this backstop fires.
	maxSteps := 3 + 4*(p.MaxAttempts+1)

	engine := graph.New(Reduce, p.Store, p.Emitter,
		graph.WithMaxSteps(maxSteps),
		graph.WithDefaultNodeTimeout(p.NodeTimeout),
		graph.WithMetrics(p.Metrics),
	)

	nodes := map[string]graph.Node[State]{
		StagePlanner:    NewPlanner(p.Generator),
		StageResearcher: NewResearcher(p.Generator),
		StageArchitect:  NewArchitect(p.Generator),
		StageVisualizer: NewVisualizer(p.Generator),
		StageCritic:     NewCritic(p.Generator),
		StageMetaCritic: NewMetaCritic(p.Generator),
		StageFinalize:   NewFinalizer(),
	}
	for id, node := range nodes {
		if err := engine.Add(id, node); err != nil {
			return nil, err
		}
	}

	if err := engine.StartAt(StagePlanner); err != nil {
		return nil, err
	}

	retryEdge := func(s State) bool {
		if router.Decide(s) != Retry {
			return false
		}
		p.Metrics.ObserveRetry(StageCritic + "->" + StageResearcher)
		return true
	}

	edges := []struct {
		from, to string
		when     graph.Predicate[State]
	}{
		{StagePlanner, StageResearcher, nil},
		{StageResearcher, StageArchitect, nil},
		{StageArchitect, StageVisualizer, nil},
		{StageVisualizer, StageCritic, nil},
		{StageCritic, StageResearcher, retryEdge},
		{StageCritic, StageMetaCritic, nil},
		{StageMetaCritic, StageFinalize, nil},
	}
	for _, e := range edges {
		if err := engine.Connect(e.from, e.to, e.when); err != nil {
			return nil, err
		}
	}

	return &Pipeline{engine: engine, router: router}, nil
}

// Run executes one analysis over the query and returns the completed state.
// The returned state always has FinalOutput set on success; stage failures
// surface in its ErrorLog, not as an error here.
func (p *Pipeline) Run(ctx context.Context, runID, query string) (State, error) {
	return p.engine.Run(ctx, runID, State{Input: query})
}
