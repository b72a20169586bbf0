// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/modulegen/pkg/types"
)

// SQLite is a ResultCache backed by an in-memory SQLite database. It holds
// Documents as JSON and disappears with the process, like Memory, but keeps
// entries out of the Go heap and can be inspected with SQL.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens a private in-memory database and creates the schema.
func NewSQLite() (*SQLite, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Every connection to :memory: is a separate database; pin the pool to one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLite{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database; all entries are lost.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		fingerprint TEXT PRIMARY KEY,
		document TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`)
	return err
}

func (s *SQLite) Get(ctx context.Context, fp types.Fingerprint) (*types.Document, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM documents WHERE fingerprint = ?`, string(fp),
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying cache: %w", err)
	}

	var doc types.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, false, fmt.Errorf("decoding cached document %s: %w", fp.Short(), err)
	}
	return &doc, true, nil
}

func (s *SQLite) Put(ctx context.Context, fp types.Fingerprint, doc *types.Document) error {
	if doc == nil {
		return fmt.Errorf("cache: nil document for %s", fp.Short())
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (fingerprint, document, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(fingerprint) DO UPDATE SET document = excluded.document, created_at = excluded.created_at`,
		string(fp), string(data), s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("storing document: %w", err)
	}
	return nil
}

func (s *SQLite) Len() int {
	var n int
	if err := s.db.QueryRow(`SELECT count(*) FROM documents`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// Entries lists cache entries ordered by insertion time.
func (s *SQLite) Entries(ctx context.Context) ([]types.CacheEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT fingerprint, document, created_at FROM documents ORDER BY created_at, fingerprint`)
	if err != nil {
		return nil, fmt.Errorf("listing cache: %w", err)
	}
	defer rows.Close()

	var entries []types.CacheEntry
	for rows.Next() {
		var fp, raw, created string
		if err := rows.Scan(&fp, &raw, &created); err != nil {
			return nil, fmt.Errorf("scanning cache row: %w", err)
		}
		var doc types.Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("decoding cached document: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		entries = append(entries, types.CacheEntry{Fingerprint: types.Fingerprint(fp), Document: &doc, CreatedAt: ts})
	}
	return entries, rows.Err()
}
