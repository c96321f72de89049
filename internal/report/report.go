// Package report serializes record batches to the tool's block text
// format and renders run statistics. The format is one block per record,
// "Key: value" lines, blocks separated by a single blank line. Output is
// deterministic: the same records in the same order produce byte-identical
// text, and Parse reads the format back field-for-field.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Naveduran/academic-research-utilities/internal/enrich"
	"github.com/Naveduran/academic-research-utilities/internal/record"
)

// Field keys in block output. Source and Status always appear; the rest
// are omitted when empty.
const (
	keySource        = "Source"
	keyDOI           = "DOI"
	keyTitle         = "Title"
	keyAuthors       = "Authors"
	keyYear          = "Year"
	keyWebpage       = "Webpage"
	keyEmails        = "Emails"
	keyAbstract      = "Abstract"
	keyAuthorDetails = "Author_Details"
	keySourceMethod  = "Source_Method"
	keyStatus        = "Status"
)

// listSep separates values inside a multi-valued field. Semicolons are
// used because author names contain commas.
const listSep = "; "

// detailSep separates a name from its affiliation in Author_Details.
const detailSep = " = "

// Serialize renders records to the block text format.
func Serialize(records []*record.Record) string {
	var blocks []string
	for _, r := range records {
		blocks = append(blocks, serializeRecord(r))
	}
	return strings.Join(blocks, "\n")
}

func serializeRecord(r *record.Record) string {
	var b strings.Builder

	writeField(&b, keySource, r.SourceFile)
	writeField(&b, keyDOI, r.DOI)
	writeField(&b, keyTitle, flatten(r.Title))
	writeField(&b, keyAuthors, joinList(r.Authors))
	if r.Year != 0 {
		writeField(&b, keyYear, strconv.Itoa(r.Year))
	}
	writeField(&b, keyWebpage, r.Webpage)
	writeField(&b, keyEmails, strings.Join(r.Emails, listSep))

	if e := r.Enrichment; e != nil {
		writeField(&b, keyAbstract, flatten(e.Abstract))
		writeField(&b, keyAuthorDetails, formatDetails(e.AuthorDetails))
		writeField(&b, keySourceMethod, e.SourceOfTruth)
	}

	writeField(&b, keyStatus, string(r.Status))
	return b.String()
}

func writeField(b *strings.Builder, key, value string) {
	if value == "" && key != keySource && key != keyStatus {
		return
	}
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}

// flatten folds newlines into spaces so every field stays on one line.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// sanitizeItem makes a value safe as one element of a multi-valued
// field. External payloads can carry the list separator in free text
// (an affiliation like "Dept. of Biology; Example University"), which
// would make the serialized output unparseable; fold it to a comma.
func sanitizeItem(s string) string {
	return strings.ReplaceAll(flatten(s), listSep, ", ")
}

// joinList renders a multi-valued field with each element sanitized.
func joinList(items []string) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = sanitizeItem(item)
	}
	return strings.Join(parts, listSep)
}

// formatDetails renders the author-details map sorted by name. Names
// additionally must not contain the name/detail separator; the detail
// text may, since parsing cuts at the first occurrence.
func formatDetails(details map[string]string) string {
	if len(details) == 0 {
		return ""
	}
	names := make([]string, 0, len(details))
	for name := range details {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		safeName := strings.ReplaceAll(sanitizeItem(name), detailSep, " - ")
		parts[i] = safeName + detailSep + sanitizeItem(details[name])
	}
	return strings.Join(parts, listSep)
}

// ParseError reports a malformed block in an input file.
type ParseError struct {
	Block   int // 1-based block number
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("block %d: %s", e.Block, e.Message)
}

// Parse reads the block text format back into records. Malformed blocks
// are an error naming the offending block; Parse never returns partial
// results alongside an error.
func Parse(text string) ([]*record.Record, error) {
	var records []*record.Record

	blockNum := 0
	for _, block := range strings.Split(text, "\n\n") {
		if !hasContent(block) {
			continue
		}
		blockNum++

		r, err := parseBlock(block)
		if err != nil {
			return nil, ParseError{Block: blockNum, Message: err.Error()}
		}
		records = append(records, r)
	}

	return records, nil
}

func parseBlock(block string) (*record.Record, error) {
	r := &record.Record{}
	var e *record.Enrichment

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			// A bare "Key:" line carries an empty value, but the key
			// still has to be one we know.
			if k, found := strings.CutSuffix(line, ":"); found && knownKey(k) {
				continue
			}
			return nil, fmt.Errorf("malformed line %q", line)
		}

		switch key {
		case keySource:
			r.SourceFile = value
		case keyDOI:
			r.DOI = value
		case keyTitle:
			r.Title = value
		case keyAuthors:
			r.Authors = splitList(value)
		case keyYear:
			y, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid year %q", value)
			}
			r.Year = y
		case keyWebpage:
			r.Webpage = value
		case keyEmails:
			r.Emails = splitList(value)
		case keyAbstract:
			e = ensure(r, e)
			e.Abstract = value
		case keyAuthorDetails:
			e = ensure(r, e)
			var err error
			e.AuthorDetails, err = parseDetails(value)
			if err != nil {
				return nil, err
			}
		case keySourceMethod:
			e = ensure(r, e)
			e.SourceOfTruth = value
		case keyStatus:
			switch s := record.Status(value); s {
			case record.StatusExtracted, record.StatusPending, record.StatusEnriched, record.StatusFailed:
				r.Status = s
			default:
				return nil, fmt.Errorf("invalid status %q", value)
			}
		default:
			return nil, fmt.Errorf("unknown field %q", key)
		}
	}

	if r.SourceFile == "" {
		return nil, fmt.Errorf("missing %s field", keySource)
	}
	if r.Status == "" {
		r.Status = record.StatusExtracted
	}
	return r, nil
}

// knownKey reports whether key is one of the block format's field keys.
func knownKey(key string) bool {
	switch key {
	case keySource, keyDOI, keyTitle, keyAuthors, keyYear, keyWebpage,
		keyEmails, keyAbstract, keyAuthorDetails, keySourceMethod, keyStatus:
		return true
	}
	return false
}

// hasContent reports whether a block holds any non-comment line, so the
// statistics section appended by enrich-metadata re-parses cleanly.
func hasContent(block string) bool {
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			return true
		}
	}
	return false
}

func ensure(r *record.Record, e *record.Enrichment) *record.Enrichment {
	if e == nil {
		e = r.EnsureEnrichment()
	}
	return e
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, listSep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDetails(value string) (map[string]string, error) {
	details := make(map[string]string)
	for _, part := range splitList(value) {
		name, detail, ok := strings.Cut(part, detailSep)
		if !ok {
			return nil, fmt.Errorf("malformed author detail %q", part)
		}
		details[name] = detail
	}
	return details, nil
}

// FormatStats renders the statistics section appended after an
// enrichment run.
func FormatStats(s enrich.Stats) string {
	var b strings.Builder

	b.WriteString("# Enrichment statistics\n")
	fmt.Fprintf(&b, "# Total records: %d\n", s.Total)
	fmt.Fprintf(&b, "# Enriched: %d (%.1f%%)\n", s.Enriched, s.Percent(s.Enriched))
	fmt.Fprintf(&b, "#   via DOI resolution: %d\n", s.FromDOI)
	fmt.Fprintf(&b, "#   via web search: %d\n", s.FromWeb)
	fmt.Fprintf(&b, "# Failed: %d (%.1f%%)\n", s.Failed, s.Percent(s.Failed))
	fmt.Fprintf(&b, "#   with no data found: %d\n", s.NotFound)

	b.WriteString("# Field coverage (before -> after):\n")
	for _, row := range []struct {
		name          string
		before, after int
	}{
		{"doi", s.Before.DOI, s.After.DOI},
		{"title", s.Before.Title, s.After.Title},
		{"authors", s.Before.Authors, s.After.Authors},
		{"year", s.Before.Year, s.After.Year},
		{"webpage", s.Before.Webpage, s.After.Webpage},
		{"emails", s.Before.Emails, s.After.Emails},
		{"abstract", s.Before.Abstract, s.After.Abstract},
	} {
		fmt.Fprintf(&b, "#   %-8s %5.1f%% -> %5.1f%%\n",
			row.name, s.Percent(row.before), s.Percent(row.after))
	}

	return b.String()
}
