package pipeline

import (
	"context"
	"strings"

	"github.com/arcsys-ai/arcsys/graph"
	"github.com/arcsys-ai/arcsys/model"
)

// maxFieldLength bounds the size of any state field used as a prompt input.
const maxFieldLength = 50000

// Agent is a single generation stage: it validates its required state
// fields, makes exactly one call to the generation collaborator, and parses
// the raw response into a partial state update.
//
// Agent implements graph.Node[State]. Every failure mode (precondition,
// generation, parse) is contained: the stage returns an error-log delta and
// the run continues along its normal edge. NodeResult.Err is never set.
type Agent struct {
	name        string
	temperature float64
	required    []string
	prompt      func(s State) string
	parse       func(raw string) State

	gen model.Generator
}

// Run implements the graph.Node interface.
//
// Each attempt counts as one iteration whether it succeeds or fails; the
// iteration increment rides on the delta and the reducer accumulates it.
func (a *Agent) Run(ctx context.Context, s State) graph.NodeResult[State] {
	delta, err := a.invoke(ctx, s)
	if err != nil {
		return graph.NodeResult[State]{Delta: State{
			Iterations: 1,
			ErrorLog:   []string{a.name + " failed: " + err.Error()},
		}}
	}
	delta.Iterations = 1
	return graph.NodeResult[State]{Delta: delta}
}

func (a *Agent) invoke(ctx context.Context, s State) (State, error) {
	if err := a.checkPreconditions(s); err != nil {
		return State{}, err
	}

	raw, err := a.gen.Generate(ctx, a.prompt(s), a.temperature)
	if err != nil {
		return State{}, err
	}

	return a.parse(raw), nil
}

// checkPreconditions verifies every required field is present, non-blank,
// and within the length bound. Runs before any external work.
func (a *Agent) checkPreconditions(s State) error {
	for _, field := range a.required {
		value := fieldValue(s, field)
		if strings.TrimSpace(value) == "" {
			return &PreconditionError{
				Stage: a.name,
				Field: field,
				Msg:   "required field is missing or empty",
			}
		}
		if len(value) > maxFieldLength {
			return &PreconditionError{
				Stage: a.name,
				Field: field,
				Msg:   "field exceeds maximum length",
			}
		}
	}
	return nil
}

// fieldValue resolves a required-field name to its State value. Only fields
// an agent can declare as required are listed.
func fieldValue(s State, name string) string {
	switch name {
	case "input":
		return s.Input
	case "requirements":
		return s.Requirements
	case "research":
		return s.Research
	case "architecture":
		return s.Architecture
	case "visualization":
		return s.Visualization
	default:
		return ""
	}
}

// PreconditionError reports a missing or invalid required input to a stage.
// It is local to the stage: recorded in the error log, never fatal to the run.
type PreconditionError struct {
	Stage string
	Field string
	Msg   string
}

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	return "required field '" + e.Field + "': " + e.Msg
}
