package graph

import (
	"context"
	"errors"
	"testing"
)

func TestNext(t *testing.T) {
	if n := Stop(); !n.Terminal || n.To != "" {
		t.Errorf("Stop() = %+v", n)
	}
	if n := Goto("critic"); n.Terminal || n.To != "critic" {
		t.Errorf("Goto() = %+v", n)
	}
}

func TestNodeFunc(t *testing.T) {
	node := NodeFunc[TestState](func(ctx context.Context, s TestState) NodeResult[TestState] {
		return NodeResult[TestState]{Delta: TestState{Value: s.Value + "!"}}
	})

	res := node.Run(context.Background(), TestState{Value: "hello"})
	if res.Delta.Value != "hello!" {
		t.Errorf("Delta.Value = %q", res.Delta.Value)
	}
}

func TestNodeError(t *testing.T) {
	cause := errors.New("root cause")
	err := &NodeError{Message: "stage blew up", Code: "EXPLODED", NodeID: "critic", Cause: cause}

	if err.Error() != "node critic: stage blew up" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("Unwrap chain broken")
	}

	bare := &NodeError{Message: "no node"}
	if bare.Error() != "no node" {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestEngineError(t *testing.T) {
	withCode := &EngineError{Message: "too many steps", Code: "MAX_STEPS_EXCEEDED"}
	if withCode.Error() != "MAX_STEPS_EXCEEDED: too many steps" {
		t.Errorf("Error() = %q", withCode.Error())
	}

	bare := &EngineError{Message: "plain"}
	if bare.Error() != "plain" {
		t.Errorf("Error() = %q", bare.Error())
	}
}
