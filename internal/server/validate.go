package server

import (
	"fmt"
	"strings"
)

const (
	minQueryLength = 10
	maxQueryLength = 5000
)

// Substrings rejected anywhere in a query, case-insensitive.
var disallowed = []string{"script", "eval", "exec"}

// validateQuery checks an analysis query and returns it trimmed.
func validateQuery(query string) (string, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return "", fmt.Errorf("query cannot be empty or only whitespace")
	}
	if len(query) < minQueryLength {
		return "", fmt.Errorf("query must be at least %d characters", minQueryLength)
	}
	if len(query) > maxQueryLength {
		return "", fmt.Errorf("query must be at most %d characters", maxQueryLength)
	}

	lowered := strings.ToLower(query)
	for _, word := range disallowed {
		if strings.Contains(lowered, word) {
			return "", fmt.Errorf("query contains potentially unsafe content")
		}
	}

	return trimmed, nil
}
