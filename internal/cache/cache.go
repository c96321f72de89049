// Package cache persists successful lookup results between runs so
// repeated enrichment of the same batch skips the network.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/Naveduran/academic-research-utilities/internal/lookup"
)

// Lookup kinds stored in the cache.
const (
	KindDOI    = "doi"
	KindSearch = "search"
)

// Cache wraps a SQLite database holding lookup results keyed by
// (kind, query).
type Cache struct {
	db *sql.DB
}

// Open opens or creates a cache database at the given path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS lookups (
			kind    TEXT NOT NULL,
			key     TEXT NOT NULL,
			payload TEXT NOT NULL,
			PRIMARY KEY (kind, key)
		);
	`
	_, err := db.Exec(schema)
	return err
}

// Get returns the cached partial for (kind, key), or (nil, false) on a
// miss. Corrupt entries are treated as misses rather than errors so a
// damaged cache never aborts an enrichment run.
func (c *Cache) Get(kind, key string) (*lookup.Partial, bool) {
	var payload string
	err := c.db.QueryRow(
		`SELECT payload FROM lookups WHERE kind = ? AND key = ?`, kind, key,
	).Scan(&payload)
	if err != nil {
		return nil, false
	}

	var p lookup.Partial
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, false
	}
	return &p, true
}

// Put stores a partial for (kind, key), replacing any previous entry.
func (c *Cache) Put(kind, key string, p *lookup.Partial) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO lookups (kind, key, payload) VALUES (?, ?, ?)`,
		kind, key, string(payload),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}
