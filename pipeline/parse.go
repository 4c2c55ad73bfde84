package pipeline

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Critique is the parsed result of the critic stage's response.
type Critique struct {
	Score    float64
	Feedback string
}

const (
	defaultScore    = 5.0
	defaultFeedback = "No feedback provided"
)

var scorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`score[:\s]*(\d+(?:\.\d+)?)`),
	regexp.MustCompile(`(\d+(?:\.\d+)?)[/\s]*10`),
	regexp.MustCompile(`rating[:\s]*(\d+(?:\.\d+)?)`),
}

// ParseCritique extracts a quality score and feedback from the critic's raw
// response. It never fails: malformed input degrades through documented
// fallbacks instead.
//
// The happy path is a JSON object with numeric "score" and string
// "feedback", optionally wrapped in a fenced code block. On JSON failure the
// score patterns are tried in order over the lowercased text and the first
// match wins, clamped into [0,10]; with no match the score is a neutral 5.0
// and the feedback carries a truncated copy of the raw response.
func ParseCritique(raw string) Critique {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var payload struct {
		Score    *float64 `json:"score"`
		Feedback string   `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err == nil {
		c := Critique{Score: defaultScore, Feedback: payload.Feedback}
		if payload.Score != nil {
			c.Score = *payload.Score
		}
		if c.Feedback == "" {
			c.Feedback = defaultFeedback
		}
		return c
	}

	return Critique{
		Score:    extractScore(raw),
		Feedback: "Parsing failed. Raw response: " + truncate(raw, 500),
	}
}

// extractScore searches the text for a score using the fallback patterns.
func extractScore(text string) float64 {
	lowered := strings.ToLower(text)
	for _, pattern := range scorePatterns {
		m := pattern.FindStringSubmatch(lowered)
		if m == nil {
			continue
		}
		score, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		return clamp(score, 0.0, 10.0)
	}
	return defaultScore
}

// Risk keyword tiers for the meta-critic fallback. A major hit dominates
// moderate, moderate dominates minor.
var (
	majorRiskWords    = []string{"hallucination", "false", "incorrect", "misleading", "bias"}
	moderateRiskWords = []string{"concern", "issue", "problem", "questionable", "unclear"}
	minorRiskWords    = []string{"minor", "small", "trivial", "acceptable"}
)

var firstNumberPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

// ParseRisk extracts a bias/hallucination risk score in [0,1] from the
// meta-critic's raw response.
//
// The response is expected to lead with a decimal number; the first number
// found anywhere is used, clamped into range. With no number at all the
// score is derived from keyword tiers, defaulting to 0.2 when nothing
// matches.
func ParseRisk(raw string) float64 {
	m := firstNumberPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m != nil {
		if score, err := strconv.ParseFloat(m[1], 64); err == nil {
			return clamp(score, 0.0, 1.0)
		}
	}
	return riskFromKeywords(raw)
}

func riskFromKeywords(text string) float64 {
	lowered := strings.ToLower(text)

	count := func(words []string) int {
		n := 0
		for _, w := range words {
			if strings.Contains(lowered, w) {
				n++
			}
		}
		return n
	}

	if major := count(majorRiskWords); major > 0 {
		return min(0.7+float64(major)*0.1, 1.0)
	}
	if moderate := count(moderateRiskWords); moderate > 0 {
		return min(0.3+float64(moderate)*0.1, 0.6)
	}
	if minor := count(minorRiskWords); minor > 0 {
		return min(0.1+float64(minor)*0.05, 0.3)
	}
	return 0.2
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
