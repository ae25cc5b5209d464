// Package file persists the shortcut mapping as a JSON document on disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/undeadops/goshort/internal/shortcut"
	"github.com/undeadops/goshort/internal/store"
)

var _ store.Store = (*Store)(nil)

// document is the on-disk layout: one record named "entries".
type document struct {
	Entries *shortcut.Entries `json:"entries"`
}

// Store reads and writes the whole mapping to a single JSON file.
type Store struct {
	mu   sync.Mutex
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Get reads the file. A missing file or a document without an entries
// record is an empty mapping.
func (s *Store) Get(_ context.Context) (*shortcut.Entries, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return shortcut.NewEntries(), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	if doc.Entries == nil {
		return shortcut.NewEntries(), nil
	}
	return doc.Entries, nil
}

// Set writes to a temp file then renames it over the store path.
func (s *Store) Set(_ context.Context, entries *shortcut.Entries) error {
	if entries == nil {
		entries = shortcut.NewEntries()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	data, err := json.MarshalIndent(document{Entries: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode entries: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}
