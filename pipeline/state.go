// Package pipeline implements the multi-stage analysis workflow: six
// generation stages over a shared state with one score-gated retry loop,
// driven by the graph engine.
package pipeline

// State is the working memory of a single analysis run. One instance per
// run, threaded through every stage; stages communicate only through it.
//
// Each stage output field is written by exactly one stage. The researcher
// overwrites its own prior output on retry; no stage touches another
// stage's field.
type State struct {
	// Input is the original user query. Immutable once set.
	Input string `json:"input"`

	// Requirements is the planner's structured requirements extraction.
	Requirements string `json:"requirements"`

	// Research is the researcher's technical analysis. Overwritten on retry.
	Research string `json:"research"`

	// Architecture is the architect's system design.
	Architecture string `json:"architecture"`

	// Visualization is the visualizer's diagram documentation.
	Visualization string `json:"visualization"`

	// Score is the critic's quality score in [0,10]. Zero until written.
	Score float64 `json:"score"`

	// ScoreFeedback is the critic's rationale, paired with Score.
	ScoreFeedback string `json:"score_feedback"`

	// RiskScore is the meta-critic's bias/hallucination risk in [0,1].
	RiskScore float64 `json:"risk_score"`

	// FinalOutput is the rendered artifact. Written only by the finalizer.
	FinalOutput string `json:"final_output"`

	// Iterations counts stage invocations attempted so far, successful or
	// not. Monotonic, never reset.
	Iterations int `json:"iteration_count"`

	// ErrorLog accumulates stage failure descriptions across the whole run.
	// Append-only, never truncated or reordered.
	ErrorLog []string `json:"error_log"`
}

// Reduce merges a partial update into the previous state.
//
// Merge is field-wise overwrite for present fields: an empty string or zero
// score in the delta means "not produced this step" and leaves the previous
// value untouched. Score travels with ScoreFeedback (the critic always
// produces feedback when it produces a score, including a 0.0 score), so
// feedback presence gates both. Iterations accumulate and ErrorLog appends.
func Reduce(prev, delta State) State {
	if delta.Input != "" {
		prev.Input = delta.Input
	}
	if delta.Requirements != "" {
		prev.Requirements = delta.Requirements
	}
	if delta.Research != "" {
		prev.Research = delta.Research
	}
	if delta.Architecture != "" {
		prev.Architecture = delta.Architecture
	}
	if delta.Visualization != "" {
		prev.Visualization = delta.Visualization
	}
	if delta.ScoreFeedback != "" {
		prev.Score = delta.Score
		prev.ScoreFeedback = delta.ScoreFeedback
	}
	if delta.RiskScore != 0 {
		prev.RiskScore = delta.RiskScore
	}
	if delta.FinalOutput != "" {
		prev.FinalOutput = delta.FinalOutput
	}

	prev.Iterations += delta.Iterations

	if len(delta.ErrorLog) > 0 {
		merged := make([]string, 0, len(prev.ErrorLog)+len(delta.ErrorLog))
		merged = append(merged, prev.ErrorLog...)
		merged = append(merged, delta.ErrorLog...)
		prev.ErrorLog = merged
	}

	return prev
}
