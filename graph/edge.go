// Package graph provides the core graph execution engine for ArcSys.
package graph

// Edge represents a connection between two nodes in the workflow graph.
//
// Edges define control flow between nodes. They can be:
// - Unconditional: always traverse (When = nil).
// - Conditional: only traverse if the predicate returns true (When != nil).
//
// Edges are declared during graph construction. At runtime the Engine
// evaluates predicates in declaration order to pick the next node; the first
// matching edge wins. Explicit routing via NodeResult.Route overrides edges.
//
// Type parameter S is the state type used for predicate evaluation.
type Edge[S any] struct {
	// From is the source node ID.
	From string

	// To is the destination node ID.
	To string

	// When is an optional traversal predicate. Nil means unconditional.
	When Predicate[S]
}

// Predicate evaluates state to decide whether an edge should be traversed.
//
// Predicates must be pure functions (deterministic, no side effects).
//
// Common patterns:
// - Threshold: state.Score < 7.0.
// - Presence: state.Result != "".
// - Bounded loop: state.Attempts < 3 && state.Score < threshold.
//
// Type parameter S is the state type to evaluate.
type Predicate[S any] func(state S) bool
