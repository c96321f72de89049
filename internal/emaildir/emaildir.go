// Package emaildir consolidates author emails found across a batch of
// documents into a single directory keyed by address.
package emaildir

import (
	"sort"
	"strings"
)

// Directory maps a lower-cased email address to the set of source files
// it was found in.
type Directory struct {
	sources map[string]map[string]struct{}
}

// New creates an empty directory.
func New() *Directory {
	return &Directory{sources: make(map[string]map[string]struct{})}
}

// Add records that email was found in sourceFile. Addresses differing
// only by case collapse to one entry.
func (d *Directory) Add(email, sourceFile string) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return
	}
	if d.sources[email] == nil {
		d.sources[email] = make(map[string]struct{})
	}
	d.sources[email][sourceFile] = struct{}{}
}

// Len returns the number of distinct addresses.
func (d *Directory) Len() int {
	return len(d.sources)
}

// Entry is one consolidated address with its sorted source files.
type Entry struct {
	Email   string
	Sources []string
}

// Entries returns all entries sorted by address, each with sorted
// sources, so output is deterministic.
func (d *Directory) Entries() []Entry {
	entries := make([]Entry, 0, len(d.sources))
	for email, files := range d.sources {
		e := Entry{Email: email}
		for f := range files {
			e.Sources = append(e.Sources, f)
		}
		sort.Strings(e.Sources)
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Email < entries[j].Email })
	return entries
}

// Format renders the directory as one line per address:
// "email\tsource1,source2".
func (d *Directory) Format() string {
	var b strings.Builder
	for _, e := range d.Entries() {
		b.WriteString(e.Email)
		b.WriteString("\t")
		b.WriteString(strings.Join(e.Sources, ","))
		b.WriteString("\n")
	}
	return b.String()
}
