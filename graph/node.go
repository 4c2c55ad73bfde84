package graph

import "context"

// Node is a processing unit in the workflow graph. It receives the current
// state of type S, performs its work, and returns a NodeResult describing the
// partial state update and the next hop.
//
// Type parameter S is the state type shared across the workflow.
type Node[S any] interface {
	// Run executes the node's logic with the given context and state.
	Run(ctx context.Context, state S) NodeResult[S]
}

// NodeResult is the output of a single node execution.
type NodeResult[S any] struct {
	// Delta is the partial state update produced by this node. It is merged
	// into the current state by the engine's reducer.
	Delta S

	// Route specifies the next step. Use Stop() for terminal nodes or
	// Goto(id) for explicit routing. A zero Route defers to edge-based
	// routing.
	Route Next

	// Err is a fatal node error. Recoverable stage failures must be folded
	// into Delta instead; a non-nil Err aborts the run.
	Err error
}

// Next specifies the next step after a node completes: either an explicit
// node ID, terminal, or zero (defer to edges).
type Next struct {
	// To is the next node to execute. Mutually exclusive with Terminal.
	To string

	// Terminal stops workflow execution.
	Terminal bool
}

// Stop returns a Next that terminates workflow execution.
func Stop() Next {
	return Next{Terminal: true}
}

// Goto returns a Next that routes to the specified node.
func Goto(nodeID string) Next {
	return Next{To: nodeID}
}

// NodeFunc adapts a plain function to the Node interface.
//
// Example:
//
//	render := NodeFunc[MyState](func(ctx context.Context, s MyState) NodeResult[MyState] {
//	    return NodeResult[MyState]{
//	        Delta: MyState{Result: "done"},
//	        Route: Stop(),
//	    }
//	})
type NodeFunc[S any] func(ctx context.Context, state S) NodeResult[S]

// Run implements the Node interface for NodeFunc.
func (f NodeFunc[S]) Run(ctx context.Context, state S) NodeResult[S] {
	return f(ctx, state)
}

// NodeError is a structured error produced during node execution.
type NodeError struct {
	// Message is the human-readable error description.
	Message string

	// Code is a machine-readable error code.
	Code string

	// NodeID identifies which node produced this error.
	NodeID string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	if e.NodeID != "" {
		return "node " + e.NodeID + ": " + e.Message
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *NodeError) Unwrap() error {
	return e.Cause
}
