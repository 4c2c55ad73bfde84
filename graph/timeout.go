package graph

import (
	"context"
	"fmt"
	"time"
)

// runNodeWithTimeout executes a node under the engine-wide default timeout.
//
// With a zero timeout the node runs on the parent context. Otherwise the node
// receives a derived deadline context; if that deadline fires, the node's own
// result is discarded and a NODE_TIMEOUT error is returned in its place.
func runNodeWithTimeout[S any](
	ctx context.Context,
	node Node[S],
	state S,
	timeout time.Duration,
) NodeResult[S] {
	if timeout == 0 {
		return node.Run(ctx, state)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result := node.Run(timeoutCtx, state)

	if timeoutCtx.Err() == context.DeadlineExceeded && result.Err == nil {
		result.Err = &EngineError{
			Message: fmt.Sprintf("node exceeded timeout of %v", timeout),
			Code:    "NODE_TIMEOUT",
		}
	}

	return result
}
