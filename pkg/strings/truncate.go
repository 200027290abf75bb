// Package strings holds small text helpers for console and log output.
package strings

import (
	"strings"
)

// DefaultMaxLen is the length upstream text is cut to before it is shown.
const DefaultMaxLen = 200

// minLen leaves room for one character plus the ellipsis.
const minLen = 4

// OneLine collapses all whitespace runs in s to single spaces and cuts the
// result to maxLen runes, ending it with "..." when something was dropped.
// maxLen below 4 is treated as 4.
func OneLine(s string, maxLen int) string {
	if maxLen < minLen {
		maxLen = minLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
