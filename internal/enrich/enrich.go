// Package enrich drives per-record metadata lookups and merges the
// results back into records. Records are processed strictly in input
// order, one at a time, so the lookup client's rate floor holds for the
// whole batch.
package enrich

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Naveduran/academic-research-utilities/internal/lookup"
	"github.com/Naveduran/academic-research-utilities/internal/record"
)

// Lookuper is the external lookup capability. *lookup.Client satisfies
// it; tests substitute deterministic stubs.
type Lookuper interface {
	ResolveDOI(ctx context.Context, doi string) (*lookup.Partial, error)
	SearchWeb(ctx context.Context, query string) (*lookup.Partial, error)
}

// Store is an optional lookup cache consulted before the network.
type Store interface {
	Get(kind, key string) (*lookup.Partial, bool)
	Put(kind, key string, p *lookup.Partial) error
}

// Cache kinds, mirrored from the cache package to keep this package free
// of a sqlite dependency.
const (
	kindDOI    = "doi"
	kindSearch = "search"
)

// Pipeline enriches batches of records.
type Pipeline struct {
	Client Lookuper
	Cache  Store     // nil disables caching
	Log    io.Writer // nil discards progress output
}

// Stats summarizes an enrichment run.
type Stats struct {
	Total    int
	Enriched int
	Failed   int
	NotFound int // subset of Failed where both paths returned no data

	FromDOI int
	FromWeb int

	Before Coverage
	After  Coverage
}

// Coverage counts records with each optional field populated.
type Coverage struct {
	DOI      int
	Title    int
	Authors  int
	Year     int
	Webpage  int
	Emails   int
	Abstract int
}

// Percent returns n as a percentage of the stats total.
func (s Stats) Percent(n int) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(n) / float64(s.Total) * 100
}

// Enrich processes records sequentially, waiting delay between records.
// Per-record failures degrade that record to enrichment-failed and the
// run continues; only context cancellation stops the batch early, in
// which case the partially enriched records and ctx.Err() are returned.
func (p *Pipeline) Enrich(ctx context.Context, records []*record.Record, delay time.Duration) (Stats, error) {
	stats := Stats{Total: len(records)}
	stats.Before = measure(records)

	for i, r := range records {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				stats.After = measure(records)
				return stats, ctx.Err()
			case <-time.After(delay):
			}
		}
		if err := ctx.Err(); err != nil {
			stats.After = measure(records)
			return stats, err
		}

		p.logf("[%d/%d] %s", i+1, len(records), r.SourceFile)
		source := p.enrichOne(ctx, r)

		switch r.Status {
		case record.StatusEnriched:
			stats.Enriched++
			switch source {
			case record.SourceDOI:
				stats.FromDOI++
			case record.SourceWeb:
				stats.FromWeb++
			}
		case record.StatusFailed:
			stats.Failed++
		}
	}

	stats.After = measure(records)
	stats.NotFound = countNotFound(records)
	return stats, nil
}

// enrichOne runs the DOI-first, web-search-fallback flow for one record.
// Returns the source-of-truth tag for the data that was merged.
func (p *Pipeline) enrichOne(ctx context.Context, r *record.Record) string {
	r.MarkPending()

	// DOI resolution first: the registrar's metadata outranks anything a
	// web search can produce.
	if r.DOI != "" {
		partial, err := p.resolveDOI(ctx, r.DOI)
		if err == nil {
			merge(r, partial, record.SourceDOI)
			r.MarkEnriched()
			p.logf("  enriched via DOI resolution")
			return record.SourceDOI
		}
		if !lookup.IsNotFound(err) {
			p.logf("  DOI resolution failed: %v", err)
		} else {
			p.logf("  DOI did not resolve, falling back to web search")
		}
	}

	query := searchQuery(r)
	if query == "" {
		r.MarkFailed()
		p.logf("  no title to search for, giving up")
		return record.SourceNone
	}

	partial, err := p.searchWeb(ctx, query)
	if err != nil {
		if lookup.IsNotFound(err) {
			p.logf("  no search results")
		} else {
			p.logf("  web search failed: %v", err)
		}
		r.MarkFailed()
		return record.SourceNone
	}

	merge(r, partial, record.SourceWeb)
	r.MarkEnriched()
	p.logf("  enriched via web search")
	return record.SourceWeb
}

func (p *Pipeline) resolveDOI(ctx context.Context, doi string) (*lookup.Partial, error) {
	if p.Cache != nil {
		if partial, ok := p.Cache.Get(kindDOI, doi); ok {
			p.logf("  DOI cache hit")
			return partial, nil
		}
	}
	partial, err := p.Client.ResolveDOI(ctx, doi)
	if err != nil {
		return nil, err
	}
	if p.Cache != nil {
		if err := p.Cache.Put(kindDOI, doi, partial); err != nil {
			p.logf("  cache write failed: %v", err)
		}
	}
	return partial, nil
}

func (p *Pipeline) searchWeb(ctx context.Context, query string) (*lookup.Partial, error) {
	if p.Cache != nil {
		if partial, ok := p.Cache.Get(kindSearch, query); ok {
			p.logf("  search cache hit")
			return partial, nil
		}
	}
	partial, err := p.Client.SearchWeb(ctx, query)
	if err != nil {
		return nil, err
	}
	if p.Cache != nil {
		if err := p.Cache.Put(kindSearch, query, partial); err != nil {
			p.logf("  cache write failed: %v", err)
		}
	}
	return partial, nil
}

// searchQuery builds the web query: quoted title plus first author.
func searchQuery(r *record.Record) string {
	if r.Title == "" {
		return ""
	}
	q := fmt.Sprintf("%q", r.Title)
	if len(r.Authors) > 0 {
		q += " " + r.Authors[0]
	}
	return q
}

// merge folds a partial into a record. The DOI is never overwritten. For
// doi-resolution partials the fetched abstract and author details win
// over extraction-sourced values; web-search partials only fill gaps.
func merge(r *record.Record, p *lookup.Partial, source string) {
	doiSourced := source == record.SourceDOI

	if r.Title == "" {
		r.Title = p.Title
	}
	if len(r.Authors) == 0 && len(p.Authors) > 0 {
		r.Authors = append([]string(nil), p.Authors...)
	}
	if r.Year == 0 {
		r.Year = p.Year
	}
	if r.Webpage == "" || (doiSourced && p.URL != "") {
		if p.URL != "" {
			r.Webpage = p.URL
		}
	}

	e := r.EnsureEnrichment()
	if p.Abstract != "" && (doiSourced || e.Abstract == "") {
		e.Abstract = p.Abstract
	}
	for name, detail := range p.AuthorDetails {
		if doiSourced || e.AuthorDetails[name] == "" {
			e.AuthorDetails[name] = detail
		}
	}
	e.SourceOfTruth = source
}

// measure computes field coverage across a batch.
func measure(records []*record.Record) Coverage {
	var c Coverage
	for _, r := range records {
		if r.DOI != "" {
			c.DOI++
		}
		if r.Title != "" {
			c.Title++
		}
		if len(r.Authors) > 0 {
			c.Authors++
		}
		if r.Year != 0 {
			c.Year++
		}
		if r.Webpage != "" {
			c.Webpage++
		}
		if len(r.Emails) > 0 {
			c.Emails++
		}
		if r.Enrichment != nil && r.Enrichment.Abstract != "" {
			c.Abstract++
		}
	}
	return c
}

func countNotFound(records []*record.Record) int {
	n := 0
	for _, r := range records {
		if r.Status == record.StatusFailed && (r.Enrichment == nil || r.Enrichment.SourceOfTruth == record.SourceNone) {
			n++
		}
	}
	return n
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.Log == nil {
		return
	}
	fmt.Fprintf(p.Log, format+"\n", args...)
}
