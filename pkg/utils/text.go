// Package utils provides shared utilities for text, math, and logging.
package utils

// TruncateChars returns s cut to at most maxLen bytes. If maxLen is 0 or
// negative, returns s unchanged. Truncation is a hard cut, matching the
// character budget applied to outbound prompt context.
func TruncateChars(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// WordCount returns the number of whitespace-separated words in s.
func WordCount(s string) int {
	n := 0
	inWord := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			inWord = false
			continue
		}
		if !inWord {
			n++
			inWord = true
		}
	}
	return n
}
