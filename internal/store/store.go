// Package store persists postings and run records in a local SQLite file.
// It is the single identity authority for deduplication: the inbox sheet is
// never read back to decide what is new.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store wraps two sqlite handles: one writer capped at a single connection
// and one read-only handle. The pipeline is the only writer; concurrent
// cycles against the same file are not supported.
type Store struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	s := &Store{readDB: readDB, writeDB: writeDB}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS postings (
			source        TEXT NOT NULL,
			identity      TEXT NOT NULL,
			external_id   TEXT NOT NULL DEFAULT '',
			canonical_url TEXT NOT NULL DEFAULT '',
			title         TEXT NOT NULL,
			company       TEXT NOT NULL DEFAULT '',
			location      TEXT NOT NULL DEFAULT '',
			labels        TEXT NOT NULL DEFAULT '',
			downgraded    INTEGER NOT NULL DEFAULT 0,
			posted_at     TEXT,
			first_seen_at TEXT NOT NULL,
			last_seen_at  TEXT NOT NULL,
			score         INTEGER,
			score_reason  TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (source, identity)
		);
		CREATE INDEX IF NOT EXISTS idx_postings_first_seen ON postings(first_seen_at DESC);

		CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			started_at  TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			stats       TEXT NOT NULL,
			errors      TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS raw_text (
			canonical_url TEXT PRIMARY KEY,
			text          TEXT NOT NULL,
			extracted_at  TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	var first error
	for _, db := range []*sql.DB{s.readDB, s.writeDB} {
		if db == nil {
			continue
		}
		if err := db.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// GetMeta reads a small piece of operator state (e.g. the aneti watch
// beacon). Missing keys return "" without error.
func (s *Store) GetMeta(ctx context.Context, key string) (string, error) {
	var v string
	err := s.readDB.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading meta %q: %w", key, err)
	}
	return v, nil
}

func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.writeDB.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("writing meta %q: %w", key, err)
	}
	return nil
}
