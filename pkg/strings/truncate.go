package strings

import (
	"strings"
)

// DefaultOutputMaxLen is the default length of command output kept in
// error and status messages.
const DefaultOutputMaxLen = 200

// MinTruncateLen is the smallest maxLen honoured by Head and Tail, leaving
// room for one character plus "...".
const MinTruncateLen = 4

// Head collapses s to a single line and keeps at most maxLen runes from the
// start, marking a cut with a trailing "...".
func Head(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}
	runes := []rune(singleLine(s))
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return string(runes)
}

// Tail collapses s to a single line and keeps at most maxLen runes from the
// end, marking a cut with a leading "...". Command failures usually explain
// themselves in their last lines.
func Tail(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}
	runes := []rune(singleLine(s))
	if len(runes) > maxLen {
		return "..." + string(runes[len(runes)-maxLen+3:])
	}
	return string(runes)
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
