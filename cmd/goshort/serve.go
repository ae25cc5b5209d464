package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/undeadops/goshort/internal/api"
	"github.com/undeadops/goshort/internal/omnibox"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server for address-bar and API access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringP("addr", "a", "", "address to listen on")
	cmd.Flags().String("base-url", "", "externally visible base URL")
	_ = a.v.BindPFlag("addr", cmd.Flags().Lookup("addr"))
	_ = a.v.BindPFlag("base_url", cmd.Flags().Lookup("base-url"))
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	logger := a.logger
	logger.Info().Str("version", version).Msgf("Starting %s version %s", appName, version)
	logger.Info().Msgf("Server configuration: %s", a.cfg)

	st, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	ctrl := omnibox.NewController(st,
		omnibox.WithSearchURL(a.cfg.SearchURL),
		omnibox.WithLogger(logger),
	)
	router := api.Router(st, ctrl, logger, api.Options{BaseURL: a.cfg.BaseURL})

	server := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Msgf("Starting %s server on %s", appName, a.cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// Listen for the interrupt signal, or a failed listener
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info().Msgf("Shutting down %s server", appName)
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Err(err).Msg("Server error")
		return err
	}
	return nil
}
