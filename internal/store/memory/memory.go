// Package memory is a process-local store used for tests and ephemeral runs.
package memory

import (
	"context"
	"sync"

	"github.com/undeadops/goshort/internal/shortcut"
	"github.com/undeadops/goshort/internal/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	mu      sync.RWMutex
	entries *shortcut.Entries
}

// New returns a store seeded with a copy of initial, which may be nil.
func New(initial *shortcut.Entries) *Store {
	if initial == nil {
		initial = shortcut.NewEntries()
	}
	return &Store{entries: initial.Clone()}
}

func (s *Store) Get(_ context.Context) (*shortcut.Entries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries.Clone(), nil
}

func (s *Store) Set(_ context.Context, entries *shortcut.Entries) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries.Clone()
	return nil
}
