package graph

import (
	"context"
	"sync"
	"time"

	"github.com/arcsys-ai/arcsys/graph/emit"
	"github.com/arcsys-ai/arcsys/graph/store"
)

// Engine orchestrates stateful workflow execution.
//
// The Engine is the core runtime that:
//   - Manages workflow graph topology (nodes and edges)
//   - Executes nodes strictly sequentially
//   - Merges partial state updates via the reducer
//   - Persists state after every step via the store
//   - Emits observability events via the emitter
//   - Enforces the MaxSteps termination backstop
//
// A single run owns its state exclusively: no two nodes of the same run ever
// execute concurrently. Separate runs of the same Engine are independent and
// may execute in parallel.
//
// Type parameter S is the state type shared across the workflow.
//
// Example:
//
//	engine := New(reducer, store.NewMemStore[MyState](), emit.NewNullEmitter(),
//	    WithMaxSteps(50))
//	engine.Add("plan", planNode)
//	engine.StartAt("plan")
//	final, err := engine.Run(ctx, "run-001", MyState{Query: "hello"})
type Engine[S any] struct {
	mu sync.RWMutex

	// reducer merges partial state updates deterministically
	reducer Reducer[S]

	// nodes maps node IDs to Node implementations
	nodes map[string]Node[S]

	// edges defines conditional transitions between nodes
	edges []Edge[S]

	// startNode is the entry point for workflow execution
	startNode string

	// store persists workflow state snapshots
	store store.Store[S]

	// emitter receives observability events
	emitter emit.Emitter

	// opts contains execution configuration
	opts Options
}

// Options configures Engine execution behavior. Zero values are valid.
type Options struct {
	// MaxSteps limits workflow execution to prevent infinite loops.
	// If 0, no limit is enforced (use with caution).
	MaxSteps int

	// DefaultNodeTimeout bounds the execution time of every node that has no
	// tighter bound of its own. If 0, nodes run without a deadline.
	DefaultNodeTimeout time.Duration

	// Metrics, when non-nil, receives step latency and run outcome
	// observations.
	Metrics *Metrics
}

// New creates a new Engine with the given configuration.
//
// Parameters:
//   - reducer: merges partial state updates (required for Run)
//   - st: persistence backend for step snapshots (required for Run)
//   - emitter: observability event receiver (optional, may be nil)
//   - options: functional options (WithMaxSteps, WithDefaultNodeTimeout, ...)
//
// Configuration is validated when Run is called, not here.
func New[S any](reducer Reducer[S], st store.Store[S], emitter emit.Emitter, options ...Option) *Engine[S] {
	var cfg engineConfig
	for _, opt := range options {
		opt(&cfg)
	}

	return &Engine[S]{
		reducer: reducer,
		nodes:   make(map[string]Node[S]),
		edges:   make([]Edge[S], 0),
		store:   st,
		emitter: emitter,
		opts:    cfg.opts,
	}
}

// Add registers a node in the workflow graph. Node IDs must be unique.
func (e *Engine[S]) Add(nodeID string, node Node[S]) error {
	if nodeID == "" {
		return &EngineError{Message: "node ID cannot be empty"}
	}
	if node == nil {
		return &EngineError{Message: "node cannot be nil"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.nodes[nodeID]; exists {
		return &EngineError{
			Message: "duplicate node ID: " + nodeID,
			Code:    "DUPLICATE_NODE",
		}
	}

	e.nodes[nodeID] = node
	return nil
}

// StartAt sets the entry point for workflow execution. The node must have
// been registered via Add.
func (e *Engine[S]) StartAt(nodeID string) error {
	if nodeID == "" {
		return &EngineError{Message: "start node ID cannot be empty"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.nodes[nodeID]; !exists {
		return &EngineError{
			Message: "start node does not exist: " + nodeID,
			Code:    "NODE_NOT_FOUND",
		}
	}

	e.startNode = nodeID
	return nil
}

// Connect creates an edge between two nodes. A nil predicate makes the edge
// unconditional. Edges are evaluated in the order they were connected, so a
// conditional edge must be connected before its unconditional fallback.
//
// Node existence is not validated here to allow flexible construction order.
func (e *Engine[S]) Connect(from, to string, predicate Predicate[S]) error {
	if from == "" {
		return &EngineError{Message: "from node ID cannot be empty"}
	}
	if to == "" {
		return &EngineError{Message: "to node ID cannot be empty"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.edges = append(e.edges, Edge[S]{From: from, To: to, When: predicate})
	return nil
}

// Run executes the workflow from the start node to a terminal route.
//
// Each step: execute the current node, merge its delta via the reducer,
// persist the merged state, emit an event, then advance, following the
// node's explicit route if set, otherwise the first matching edge.
//
// Returns the final state, or an error if configuration is invalid, a node
// returns a fatal Err, routing dead-ends, or MaxSteps is exceeded.
func (e *Engine[S]) Run(ctx context.Context, runID string, initial S) (S, error) {
	var zero S

	if e.reducer == nil {
		return zero, &EngineError{
			Message: "reducer is required",
			Code:    "MISSING_REDUCER",
		}
	}
	if e.store == nil {
		return zero, &EngineError{
			Message: "store is required",
			Code:    "MISSING_STORE",
		}
	}
	if e.startNode == "" {
		return zero, &EngineError{
			Message: "start node not set (call StartAt before Run)",
			Code:    "NO_START_NODE",
		}
	}

	currentState := initial
	currentNode := e.startNode
	step := 0

	for {
		step++

		if e.opts.MaxSteps > 0 && step > e.opts.MaxSteps {
			e.observeRun(runID, "max_steps")
			return zero, &EngineError{
				Message: "workflow exceeded MaxSteps limit",
				Code:    "MAX_STEPS_EXCEEDED",
			}
		}

		select {
		case <-ctx.Done():
			e.observeRun(runID, "canceled")
			return zero, ctx.Err()
		default:
		}

		e.mu.RLock()
		nodeImpl, exists := e.nodes[currentNode]
		e.mu.RUnlock()

		if !exists {
			return zero, &EngineError{
				Message: "node not found during execution: " + currentNode,
				Code:    "NODE_NOT_FOUND",
			}
		}

		started := time.Now()
		result := runNodeWithTimeout(ctx, nodeImpl, currentState, e.opts.DefaultNodeTimeout)
		e.observeStep(currentNode, time.Since(started), result.Err == nil)

		// Fatal node error. Recoverable stage failures never take this
		// path; they arrive as error-log deltas instead.
		if result.Err != nil {
			e.observeRun(runID, "error")
			return zero, result.Err
		}

		currentState = e.reducer(currentState, result.Delta)

		if err := e.store.SaveStep(ctx, runID, step, currentNode, currentState); err != nil {
			e.observeRun(runID, "error")
			return zero, &EngineError{
				Message: "failed to save step: " + err.Error(),
				Code:    "STORE_ERROR",
			}
		}

		if e.emitter != nil {
			e.emitter.Emit(emit.Event{
				RunID:  runID,
				Step:   step,
				NodeID: currentNode,
				Msg:    "node completed",
			})
		}

		if result.Route.Terminal {
			e.observeRun(runID, "completed")
			return currentState, nil
		}

		if result.Route.To != "" {
			currentNode = result.Route.To
			continue
		}

		nextNode := e.evaluateEdges(currentNode, currentState)
		if nextNode == "" {
			e.observeRun(runID, "error")
			return zero, &EngineError{
				Message: "no valid route from node: " + currentNode,
				Code:    "NO_ROUTE",
			}
		}

		currentNode = nextNode
	}
}

// evaluateEdges finds the first matching edge from the given node.
//
// A panicking predicate is treated as non-matching, so control falls through
// to the next edge; declaring an unconditional fallback edge makes routing
// fail open toward termination.
func (e *Engine[S]) evaluateEdges(fromNode string, state S) string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, edge := range e.edges {
		if edge.From != fromNode {
			continue
		}

		if edge.When == nil {
			return edge.To
		}

		if safeEvaluate(edge.When, state) {
			return edge.To
		}
	}

	return ""
}

// safeEvaluate runs a predicate, converting a panic into "no match".
func safeEvaluate[S any](pred Predicate[S], state S) (matched bool) {
	defer func() {
		if r := recover(); r != nil {
			matched = false
		}
	}()
	return pred(state)
}

func (e *Engine[S]) observeStep(nodeID string, d time.Duration, ok bool) {
	if e.opts.Metrics != nil {
		e.opts.Metrics.ObserveStep(nodeID, d, ok)
	}
}

func (e *Engine[S]) observeRun(runID, outcome string) {
	if e.opts.Metrics != nil {
		e.opts.Metrics.ObserveRun(outcome)
	}
	if e.emitter != nil && outcome != "completed" {
		e.emitter.Emit(emit.Event{
			RunID: runID,
			Msg:   "run " + outcome,
		})
	}
}

// EngineError represents an error from Engine operations.
type EngineError struct {
	Message string
	Code    string
}

func (e *EngineError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}
