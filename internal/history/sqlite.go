// Package history persists an append-only audit trail of rewrite
// outcomes. Entirely optional: the rewrite path works without it.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/storyline-io/storyline/internal/rewrite"
)

// Entry is one stored rewrite outcome.
type Entry struct {
	ID             int64     `json:"id"`
	Key            string    `json:"key"`
	OriginalTitle  string    `json:"original_title"`
	RewrittenTitle string    `json:"rewritten_title"`
	Source         string    `json:"source"`
	Criteria       int       `json:"criteria"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store is a SQLite-backed audit log.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: wal: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS rewrites (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			ticket_key      TEXT NOT NULL,
			original_title  TEXT NOT NULL,
			rewritten_title TEXT NOT NULL,
			source          TEXT NOT NULL,
			criteria        INTEGER NOT NULL,
			created_at      TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_rewrites_key ON rewrites(ticket_key);
	`)
	if err != nil {
		return fmt.Errorf("history: migrate: %w", err)
	}
	return nil
}

// Record implements rewrite.Recorder.
func (s *Store) Record(ctx context.Context, o rewrite.Outcome) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rewrites (ticket_key, original_title, rewritten_title, source, criteria, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		o.Key, o.OriginalTitle, o.RewrittenTitle, o.Source, o.Criteria,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("history: record %s: %w", o.Key, err)
	}
	return nil
}

// Recent returns the most recent entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ticket_key, original_title, rewritten_title, source, criteria, created_at
		FROM rewrites ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Key, &e.OriginalTitle, &e.RewrittenTitle, &e.Source, &e.Criteria, &createdAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
