package app

import (
	"regexp"
	"strings"
)

// Traced statements are collapsed and capped so multi-line settlement
// and leaderboard queries stay readable as span attributes.
const maxTracedQueryLength = 512

var queryWhitespaceRegex = regexp.MustCompile(`\s+`)

func formatDBQueryForTrace(query string) string {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return trimmed
	}

	flat := queryWhitespaceRegex.ReplaceAllString(trimmed, " ")
	if len(flat) > maxTracedQueryLength {
		return flat[:maxTracedQueryLength] + "..."
	}
	return flat
}
