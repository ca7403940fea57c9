package discussion

import (
	"regexp"
	"strings"
)

var (
	htmlTagRe   = regexp.MustCompile(`<[^>]+>`)
	boldRe      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe    = regexp.MustCompile(`\*(.+?)\*`)
	bulletRe    = regexp.MustCompile(`(?m)^\s*[-*]\s+`)
	numberedRe  = regexp.MustCompile(`(?m)^\s*(\d+)\.\s+`)
	leadSpaceRe = regexp.MustCompile(`(?m)^\s+`)
	codeBlockRe = regexp.MustCompile(`(?s)` + "```" + `(.+?)` + "```")
)

// FormatResponse normalizes a model answer into plain text suitable for
// display: HTML tags are stripped, markdown emphasis and code fences are
// unwrapped, and list markers become plain bullets.
func FormatResponse(text string) string {
	text = htmlTagRe.ReplaceAllString(text, "")
	text = boldRe.ReplaceAllString(text, "$1")
	text = italicRe.ReplaceAllString(text, "$1")
	text = bulletRe.ReplaceAllString(text, "• ")
	text = numberedRe.ReplaceAllString(text, "$1. ")
	text = leadSpaceRe.ReplaceAllString(text, "")
	text = codeBlockRe.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

// Confidence is a crude proxy for answer substance: answers at or beyond 150
// characters saturate at 1.0. It is not a calibrated probability.
func Confidence(answer string) float64 {
	c := float64(len(answer)) / 150
	if c > 1.0 {
		return 1.0
	}
	return c
}
