// Package sqlite keeps the shortcut mapping in a single row of an embedded
// SQLite key-value table.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver" // SQLite driver for database/sql
	_ "github.com/ncruces/go-sqlite3/embed"  // Embedded SQLite build

	"github.com/undeadops/goshort/internal/shortcut"
	"github.com/undeadops/goshort/internal/store"
)

var _ store.Store = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps writes serialised within the process.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context) (*shortcut.Entries, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, store.RecordName).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return shortcut.NewEntries(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}

	entries := shortcut.NewEntries()
	if err := json.Unmarshal([]byte(raw), entries); err != nil {
		return nil, fmt.Errorf("failed to decode entries: %w", err)
	}
	return entries, nil
}

func (s *Store) Set(ctx context.Context, entries *shortcut.Entries) error {
	if entries == nil {
		entries = shortcut.NewEntries()
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode entries: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		store.RecordName, string(data))
	if err != nil {
		return fmt.Errorf("failed to write entries: %w", err)
	}
	return nil
}
