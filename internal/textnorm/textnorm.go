// Package textnorm cleans up text produced by PDF-to-text conversion.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// Hyphen at end of line followed by a lowercase continuation is a
	// line-break artifact from justified PDF text.
	hyphenBreak = regexp.MustCompile(`([a-z])-\n([a-z])`)

	spaceRuns = regexp.MustCompile(`[ \t]+`)
	blankRuns = regexp.MustCompile(`\n{3,}`)
)

// Normalize strips control characters, repairs end-of-line hyphenation,
// and collapses whitespace runs. Newlines are preserved since downstream
// extraction is line-oriented.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			continue
		}
		b.WriteRune(r)
	}
	text = b.String()

	text = hyphenBreak.ReplaceAllString(text, "$1$2")
	text = spaceRuns.ReplaceAllString(text, " ")
	text = blankRuns.ReplaceAllString(text, "\n\n")

	// Trim trailing spaces per line.
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
