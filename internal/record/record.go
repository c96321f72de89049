// Package record defines the core domain types for extracted paper metadata.
package record

import (
	"regexp"
	"sort"
	"strings"
)

// Status tracks a record's position in the extract/enrich lifecycle.
// Transitions only move forward: StatusExtracted -> StatusPending ->
// {StatusEnriched | StatusFailed}.
type Status string

const (
	StatusExtracted Status = "extracted"
	StatusPending   Status = "enrichment-pending"
	StatusEnriched  Status = "enriched"
	StatusFailed    Status = "enrichment-failed"
)

// Source-of-truth tags for enrichment data.
const (
	SourceDOI  = "doi-resolution"
	SourceWeb  = "web-search"
	SourceNone = "none"
)

// doiPattern validates bare DOIs: "10." + 4-9 digit registrant + suffix.
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

// Record is the structured metadata extracted from one source document.
type Record struct {
	// SourceFile identifies the originating document (relative path).
	// Immutable after creation.
	SourceFile string

	DOI     string
	Title   string
	Authors []string
	Year    int // 0 when unknown
	Webpage string

	// Emails is kept lower-cased, deduplicated, and sorted.
	Emails []string

	Enrichment *Enrichment
	Status     Status
}

// Enrichment holds fields fetched from external sources.
type Enrichment struct {
	Abstract      string
	AuthorDetails map[string]string // author name -> affiliation/profile text
	SourceOfTruth string            // SourceDOI, SourceWeb, or SourceNone
}

// New creates a record for the given source file in the extracted state.
func New(sourceFile string) *Record {
	return &Record{SourceFile: sourceFile, Status: StatusExtracted}
}

// ValidDOI reports whether s matches the bare DOI grammar.
func ValidDOI(s string) bool {
	return doiPattern.MatchString(s)
}

// SetDOI sets the DOI if s is syntactically valid and no validated DOI is
// already present. A DOI, once set, is never overwritten by a
// lower-confidence source. Returns true if the DOI was stored.
func (r *Record) SetDOI(s string) bool {
	if r.DOI != "" {
		return false
	}
	s = strings.TrimSpace(s)
	if !ValidDOI(s) {
		return false
	}
	r.DOI = s
	return true
}

// AddEmail adds an email, lower-casing it and skipping duplicates that
// differ only by case. Returns true if the email was new.
func (r *Record) AddEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, e := range r.Emails {
		if e == email {
			return false
		}
	}
	r.Emails = append(r.Emails, email)
	sort.Strings(r.Emails)
	return true
}

// MarkPending moves the record from extracted to enrichment-pending.
// Returns false (and leaves the record unchanged) for any other state.
func (r *Record) MarkPending() bool {
	if r.Status != StatusExtracted {
		return false
	}
	r.Status = StatusPending
	return true
}

// MarkEnriched moves a pending record to enriched.
func (r *Record) MarkEnriched() bool {
	if r.Status != StatusPending {
		return false
	}
	r.Status = StatusEnriched
	return true
}

// MarkFailed moves a pending record to enrichment-failed.
func (r *Record) MarkFailed() bool {
	if r.Status != StatusPending {
		return false
	}
	r.Status = StatusFailed
	return true
}

// EnsureEnrichment returns the record's enrichment substructure, creating
// it if absent.
func (r *Record) EnsureEnrichment() *Enrichment {
	if r.Enrichment == nil {
		r.Enrichment = &Enrichment{
			AuthorDetails: make(map[string]string),
			SourceOfTruth: SourceNone,
		}
	}
	if r.Enrichment.AuthorDetails == nil {
		r.Enrichment.AuthorDetails = make(map[string]string)
	}
	return r.Enrichment
}
