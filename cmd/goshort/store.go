package main

import (
	"context"
	"fmt"

	"github.com/undeadops/goshort/internal/config"
	"github.com/undeadops/goshort/internal/db"
	"github.com/undeadops/goshort/internal/store"
	"github.com/undeadops/goshort/internal/store/file"
	"github.com/undeadops/goshort/internal/store/memory"
	"github.com/undeadops/goshort/internal/store/sqlite"
)

// openStore returns the configured backend and a function releasing it.
func (a *app) openStore(ctx context.Context) (store.Store, func(), error) {
	noop := func() {}

	switch a.cfg.Store.Backend {
	case config.BackendMemory:
		return memory.New(nil), noop, nil

	case config.BackendFile:
		return file.New(a.cfg.Store.Path), noop, nil

	case config.BackendSQLite:
		s, err := sqlite.Open(ctx, a.cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				a.logger.Warn().Err(err).Msg("Failed to close database")
			}
		}, nil

	case config.BackendDynamoDB:
		a.logger.Info().Msg("Setting up database connection...")
		client := &db.Client{
			Region:      a.cfg.DynamoDB.Region,
			Table:       a.cfg.DynamoDB.Table,
			DDBEndpoint: a.cfg.DynamoDB.Endpoint,
			DebugMode:   a.cfg.Debug,
			Logger:      &a.logger,
		}
		if err := db.SetupDB(ctx, client); err != nil {
			return nil, nil, err
		}
		return client, noop, nil
	}

	return nil, nil, fmt.Errorf("unknown storage backend %q", a.cfg.Store.Backend)
}
