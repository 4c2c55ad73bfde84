package pipeline

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/arcsys-ai/arcsys/graph"
)

const sectionDelimiter = "\n\n---\n\n"

// renderFallback is the artifact written when rendering itself fails.
const renderFallback = "Error generating final output"

// NewFinalizer creates the terminal rendering node.
//
// Rendering is pure and deterministic over the accumulated state; it makes
// no external calls and does not count as an iteration. A rendering panic is
// recovered into the fallback artifact plus an error-log entry, so
// FinalOutput is always set when the run completes.
func NewFinalizer() graph.NodeFunc[State] {
	return func(ctx context.Context, s State) graph.NodeResult[State] {
		return graph.NodeResult[State]{
			Delta: renderDelta(s),
			Route: graph.Stop(),
		}
	}
}

func renderDelta(s State) (delta State) {
	defer func() {
		if r := recover(); r != nil {
			delta = State{
				FinalOutput: renderFallback,
				ErrorLog:    []string{fmt.Sprintf("finalize failed: %v", r)},
			}
		}
	}()
	return State{FinalOutput: Render(s)}
}

// Render produces the final markdown document from the accumulated state.
//
// Sections appear in fixed order, each under its fixed heading, and only
// when the corresponding field was produced. An upstream failure therefore
// shows up as an absent section, not an error marker. A zero score or risk
// is treated as never written.
func Render(s State) string {
	var sections []string

	if s.Requirements != "" {
		sections = append(sections, "# Requirements\n"+s.Requirements)
	}
	if s.Research != "" {
		sections = append(sections, "# Research Notes\n"+s.Research)
	}
	if s.Architecture != "" {
		sections = append(sections, "# Architecture Design\n"+s.Architecture)
	}
	if s.Visualization != "" {
		sections = append(sections, "# Visualization\n"+s.Visualization)
	}

	var eval []string
	if s.Score != 0 {
		eval = append(eval, "**Score:** "+formatNumber(s.Score)+"/10")
	}
	if s.ScoreFeedback != "" {
		eval = append(eval, "**Feedback:** "+s.ScoreFeedback)
	}
	if s.RiskScore != 0 {
		eval = append(eval, "**Bias Risk:** "+formatNumber(s.RiskScore))
	}
	if len(eval) > 0 {
		sections = append(sections, "# Evaluation\n"+strings.Join(eval, "\n"))
	}

	return strings.Join(sections, sectionDelimiter)
}

// formatNumber renders a score with at least one decimal place, so an
// integral 8 reads as "8.0" rather than "8".
func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
