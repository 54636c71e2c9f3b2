// Package cache is the SQLite result cache keyed by file content hash.
// Unchanged files skip re-analysis on repeat runs. The cache is a host-side
// convenience; the analysis core itself never persists anything.
package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Cache is the data access layer over one cache database.
type Cache struct {
	db *sql.DB
}

// Open opens (or creates) a cache database at dbPath with WAL mode enabled.
func Open(dbPath string) (*Cache, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("cache: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: ping database: %w", err)
	}
	c := &Cache{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) migrate() error {
	_, err := c.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("cache: migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS results (
  path          TEXT PRIMARY KEY,
  hash          TEXT NOT NULL,
  analyzed_at   TIMESTAMP NOT NULL,
  findings      BLOB NOT NULL
);
`

// Lookup returns the cached findings for (path, hash), or ok=false when the
// file is absent or its content changed.
func (c *Cache) Lookup(path, hash string) ([]byte, bool, error) {
	var storedHash string
	var findings []byte
	err := c.db.QueryRow(
		"SELECT hash, findings FROM results WHERE path = ?", path,
	).Scan(&storedHash, &findings)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: lookup %s: %w", path, err)
	}
	if storedHash != hash {
		return nil, false, nil
	}
	return findings, true, nil
}

// Store upserts the findings for a file at its current content hash.
func (c *Cache) Store(path, hash string, findings []byte) error {
	_, err := c.db.Exec(
		`INSERT INTO results (path, hash, analyzed_at, findings) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET hash=excluded.hash,
		   analyzed_at=excluded.analyzed_at, findings=excluded.findings`,
		path, hash, time.Now(), findings,
	)
	if err != nil {
		return fmt.Errorf("cache: store %s: %w", path, err)
	}
	return nil
}

// Purge removes entries whose path is not in keep, bounding growth when
// files are deleted or renamed.
func (c *Cache) Purge(keep map[string]bool) error {
	rows, err := c.db.Query("SELECT path FROM results")
	if err != nil {
		return fmt.Errorf("cache: list: %w", err)
	}
	var stale []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return fmt.Errorf("cache: scan: %w", err)
		}
		if !keep[p] {
			stale = append(stale, p)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("cache: rows: %w", err)
	}
	for _, p := range stale {
		if _, err := c.db.Exec("DELETE FROM results WHERE path = ?", p); err != nil {
			return fmt.Errorf("cache: purge %s: %w", p, err)
		}
	}
	return nil
}
