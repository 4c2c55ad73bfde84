package emit

// Event is a single observability event emitted during workflow execution.
//
// Events cover node completions, run outcomes, and stage-level annotations.
// They are consumed by an Emitter which can log them, convert them to spans,
// or drop them.
type Event struct {
	// RunID identifies the workflow execution that emitted this event.
	RunID string

	// Step is the sequential step number in the workflow (1-indexed).
	// Zero for run-level events.
	Step int

	// NodeID identifies which node this event concerns. Empty for run-level
	// events.
	NodeID string

	// Msg is a human-readable description of the event.
	Msg string

	// Meta carries additional structured data. Common keys: "duration_ms",
	// "error", "score", "retry".
	Meta map[string]interface{}
}
