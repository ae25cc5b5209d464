package store

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/undeadops/goshort/internal/shortcut"
)

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

// RecordName is the name of the single persisted record holding all entries.
const RecordName = "entries"

// Store - represents the persisted keyword -> url mapping, read and written as a whole
type Store interface {
	// Get returns the full mapping, or an empty one if nothing has been persisted.
	Get(ctx context.Context) (*shortcut.Entries, error)
	// Set replaces the full mapping.
	Set(ctx context.Context, entries *shortcut.Entries) error
}

// Load reads the mapping from s. Storage errors are logged and treated as an
// empty mapping so callers always have something to work with.
func Load(ctx context.Context, s Store, logger zerolog.Logger) *shortcut.Entries {
	entries, err := s.Get(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Storage unavailable, using empty shortcut set")
		return shortcut.NewEntries()
	}
	if entries == nil {
		return shortcut.NewEntries()
	}
	return entries
}
