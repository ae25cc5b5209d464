package manager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/undeadops/goshort/internal/store"
)

// Session runs the reducer against a store. It holds one view state; the HTTP
// API opens a session per request while the popup keeps one for its lifetime.
type Session struct {
	mu     sync.Mutex
	store  store.Store
	state  State
	logger zerolog.Logger
	now    func() time.Time
}

type SessionOption func(*Session)

func WithLogger(logger zerolog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithClock overrides time.Now for export filenames.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

func NewSession(st store.Store, opts ...SessionOption) *Session {
	s := &Session{
		store:  st,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, fn := range opts {
		fn(s)
	}
	s.state, _ = Reduce(State{}, Cancel{})
	return s
}

// State returns the current view state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Load reads the mapping from storage into the view. Storage errors leave the
// view with an empty mapping.
func (s *Session) Load(ctx context.Context) State {
	entries := store.Load(ctx, s.store, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state, _ = Reduce(s.state, Loaded{Entries: entries})
	return s.state
}

// Dispatch reduces ev and runs its effects. A failed Persist keeps the
// previous state; a Notify becomes the returned error. Export events return
// their Download.
func (s *Session) Dispatch(ctx context.Context, ev Event) (State, *Download, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, effects := Reduce(s.state, ev)

	var download *Download
	for _, eff := range effects {
		switch eff := eff.(type) {
		case Persist:
			if err := s.store.Set(ctx, eff.Entries); err != nil {
				s.logger.Error().Err(err).Msg("Failed to persist shortcuts")
				return s.state, nil, fmt.Errorf("failed to save shortcuts: %w", err)
			}
			s.logger.Debug().Int("entries", eff.Entries.Len()).Msg("Persisted shortcuts")
		case Download:
			d := eff
			download = &d
		case Notify:
			s.logger.Warn().Err(eff.Err).Msg("Shortcut operation rejected")
			return s.state, nil, eff.Err
		}
	}

	s.state = next
	return s.state, download, nil
}

func (s *Session) Submit(ctx context.Context, keyword, url string) (State, error) {
	st, _, err := s.Dispatch(ctx, Submit{Keyword: keyword, URL: url})
	return st, err
}

func (s *Session) Edit(ctx context.Context, keyword string) (State, error) {
	st, _, err := s.Dispatch(ctx, Edit{Keyword: keyword})
	return st, err
}

func (s *Session) Delete(ctx context.Context, keyword string) (State, error) {
	st, _, err := s.Dispatch(ctx, Delete{Keyword: keyword})
	return st, err
}

func (s *Session) Cancel(ctx context.Context) State {
	st, _, _ := s.Dispatch(ctx, Cancel{})
	return st
}

// Export renders the current mapping as a dated download.
func (s *Session) Export(ctx context.Context) (Download, error) {
	_, d, err := s.Dispatch(ctx, Export{At: s.now()})
	if err != nil {
		return Download{}, err
	}
	return *d, nil
}

func (s *Session) Import(ctx context.Context, contents []byte) (State, error) {
	st, _, err := s.Dispatch(ctx, Import{Contents: contents})
	return st, err
}
