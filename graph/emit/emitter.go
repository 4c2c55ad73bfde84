// Package emit provides pluggable observability for workflow execution.
package emit

// Emitter receives observability events from workflow execution.
//
// Implementations should be:
//   - Non-blocking: never slow down workflow execution
//   - Thread-safe: may be called from concurrent runs
//   - Resilient: a failing backend must not crash the workflow
type Emitter interface {
	// Emit sends an event to the configured backend. Emit must not panic;
	// backend errors are handled internally.
	Emit(event Event)
}
