// Package extract pulls bibliographic metadata out of converted paper text
// using regular expressions and positional heuristics. Extraction is best
// effort: a field that cannot be found is left empty, never an error.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Naveduran/academic-research-utilities/internal/record"
)

const (
	// titleScanLines bounds how far into the document the title heuristic
	// looks. Titles on well-formed papers appear near the top.
	titleScanLines = 15

	// headScanLines bounds the author and year scans.
	headScanLines = 25

	minTitleLen = 15

	minYear = 1900
)

var (
	// DOI: "10." + 4-9 digit registrant + suffix, excluding characters
	// that terminate DOIs in running text.
	doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	urlPattern = regexp.MustCompile(`(?i)\bhttps?://[^\s<>"]+|\bwww\.[^\s<>"]+`)

	yearToken = regexp.MustCompile(`\b(\d{4})\b`)

	// An author list line: capitalized name tokens separated by commas
	// and/or "and". "Jane Doe, John Q. Smith and Wei Chen".
	authorLine = regexp.MustCompile(`^[A-Z][\pL.'-]*(?:\s+[A-Z][\pL.'-]*)+(?:\s*(?:,|and|&)\s*[A-Z][\pL.' -]*(?:\s+[A-Z][\pL.'-]*)*)+\.?$`)

	authorSplit = regexp.MustCompile(`\s*(?:,|\band\b|&)\s*`)

	leadingDigits = regexp.MustCompile(`^\d+\s*`)
)

// FromText extracts a record from normalized text. The returned record
// always has Status extracted; missing fields stay empty.
func FromText(sourceFile, text string) *record.Record {
	r := record.New(sourceFile)
	if strings.TrimSpace(text) == "" {
		return r
	}

	lines := strings.Split(text, "\n")

	if doi := findDOI(text); doi != "" {
		r.SetDOI(doi)
	}

	titleIdx := -1
	if title, idx := findTitle(lines); title != "" {
		r.Title = title
		titleIdx = idx
	}

	r.Authors = findAuthors(lines, titleIdx)
	r.Year = findYear(lines)
	r.Webpage = findWebpage(text)

	for _, email := range emailPattern.FindAllString(text, -1) {
		r.AddEmail(email)
	}

	return r
}

// findDOI returns the first syntactically valid DOI in text.
func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if record.ValidDOI(match) {
			return match
		}
	}
	return ""
}

// findTitle returns the first substantial line near the top of the
// document that does not look like a header, URL, email, or bare number.
// Also returns the line index for the author scan that follows.
func findTitle(lines []string) (string, int) {
	limit := titleScanLines
	if len(lines) < limit {
		limit = len(lines)
	}

	for i := 0; i < limit; i++ {
		line := strings.TrimSpace(lines[i])
		line = leadingDigits.ReplaceAllString(line, "")
		if len(line) < minTitleLen {
			continue
		}
		if isHeaderLine(line) || isAllUpper(line) {
			continue
		}
		if emailPattern.MatchString(line) || urlPattern.MatchString(line) {
			continue
		}
		return line, i
	}
	return "", -1
}

// findAuthors scans the lines following the title for an author list.
func findAuthors(lines []string, titleIdx int) []string {
	start := titleIdx + 1
	limit := headScanLines
	if len(lines) < limit {
		limit = len(lines)
	}

	for i := start; i < limit; i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" || len(line) > 300 {
			continue
		}
		// Affiliation and contact lines disqualify themselves.
		if strings.ContainsAny(line, "@0123456789") {
			continue
		}
		if isHeaderLine(line) {
			continue
		}
		if !authorLine.MatchString(line) {
			continue
		}
		return splitAuthors(line)
	}
	return nil
}

// splitAuthors splits a matched author line into trimmed names.
func splitAuthors(line string) []string {
	var authors []string
	for _, part := range authorSplit.Split(strings.TrimSuffix(line, "."), -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			authors = append(authors, part)
		}
	}
	return authors
}

// findYear returns the first plausible publication year scanning from the
// top of the document. Tokens outside [1900, current year + 1] are
// rejected, as are digit runs longer than four (the word boundary in the
// pattern handles those).
func findYear(lines []string) int {
	limit := headScanLines
	if len(lines) < limit {
		limit = len(lines)
	}
	maxYear := time.Now().Year() + 1

	for i := 0; i < limit; i++ {
		for _, m := range yearToken.FindAllString(lines[i], -1) {
			y, err := strconv.Atoi(m)
			if err != nil {
				continue
			}
			if y >= minYear && y <= maxYear {
				return y
			}
		}
	}
	return 0
}

// findWebpage returns the first URL in the text, trailing punctuation
// trimmed. Bare "www." matches get an http scheme so the field always
// holds a usable URL.
func findWebpage(text string) string {
	m := strings.TrimRight(urlPattern.FindString(text), ".,;:)")
	if m == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(m), "http") {
		m = "http://" + m
	}
	return m
}

// isHeaderLine checks if a line is likely a journal header or footer.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	if strings.HasPrefix(lower, "journal") {
		return true
	}
	if strings.Contains(lower, "volume") && strings.Contains(lower, "issue") {
		return true
	}
	if strings.Contains(lower, "copyright") {
		return true
	}
	if strings.Contains(lower, "received") && strings.Contains(lower, "accepted") {
		return true
	}
	return false
}

// isAllUpper reports whether every letter in the line is uppercase
// (running headers like "ORIGINAL RESEARCH ARTICLE").
func isAllUpper(line string) bool {
	hasLetter := false
	for _, r := range line {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}
