package graph

// Reducer merges a partial state update (delta) into the previous state and
// returns the merged result.
//
// The reducer defines the merge contract for the whole workflow: which delta
// fields overwrite, which accumulate, and which are ignored when unset. It
// must be deterministic and total: every field a node can emit in a delta
// must be handled.
//
// Example:
//
//	reducer := func(prev, delta MyState) MyState {
//	    if delta.Result != "" {
//	        prev.Result = delta.Result
//	    }
//	    prev.Errors = append(prev.Errors, delta.Errors...)
//	    return prev
//	}
type Reducer[S any] func(prev, delta S) S
