// Package store provides persistence backends for workflow run history.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested run ID does not exist.
var ErrNotFound = errors.New("not found")

// Store persists workflow state snapshots, one per executed step.
//
// The engine writes a snapshot after every node execution; the request
// boundary reads the latest snapshot back to expose run history.
//
// Implementations:
//   - Mem: in-memory (default, per-process)
//   - SQLite: single-file embedded database
//   - MySQL: shared relational database
//
// Type parameter S is the state type to persist (must be JSON-serializable
// for the SQL backends).
type Store[S any] interface {
	// SaveStep persists the state after a node execution step. Steps are
	// identified by runID + step number; step numbers start at 1.
	SaveStep(ctx context.Context, runID string, step int, nodeID string, state S) error

	// LoadLatest retrieves the most recent state for a run, along with its
	// step number. Returns ErrNotFound for an unknown runID.
	LoadLatest(ctx context.Context, runID string) (state S, step int, err error)

	// ListRuns returns the known run IDs, most recently written first,
	// capped at limit (0 means no cap).
	ListRuns(ctx context.Context, limit int) ([]string, error)
}

// StepRecord is a single execution step in a run's history. Used by Store
// implementations to track step-by-step progression.
type StepRecord[S any] struct {
	// Step is the sequential step number (1-indexed).
	Step int

	// NodeID identifies which node produced this state.
	NodeID string

	// State is the workflow state after this step completed.
	State S
}
