package pipeline

import "math"

// Decision is the routing outcome at the critic node.
type Decision int

const (
	// Proceed exits the retry loop toward the meta-critic.
	Proceed Decision = iota

	// Retry loops back to the researcher for another pass.
	Retry
)

// String returns the decision name.
func (d Decision) String() string {
	if d == Retry {
		return "retry"
	}
	return "proceed"
}

// Router holds the bounded-retry decision evaluated once per critic pass.
//
// The iteration ceiling is checked before the score, so routing is always
// Proceed once the ceiling is hit regardless of how low the score is. That
// ceiling is the only guarantee of termination for the single cycle in the
// graph. Any condition the decision cannot evaluate resolves to Proceed,
// never toward another loop.
type Router struct {
	// MaxAttempts is the iteration ceiling for the retry loop.
	MaxAttempts int

	// Threshold is the minimum acceptable critic score.
	Threshold float64
}

// Decide maps the current state to a routing decision. Pure and stateless.
func (r Router) Decide(s State) Decision {
	if s.Iterations >= r.MaxAttempts {
		return Proceed
	}
	if math.IsNaN(s.Score) {
		return Proceed
	}
	if s.Score < r.Threshold {
		return Retry
	}
	return Proceed
}
