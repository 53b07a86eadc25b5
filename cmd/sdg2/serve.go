package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/sdg2-indicator-service/internal/adapter/httpadapter"
	"github.com/couchcryptid/sdg2-indicator-service/internal/config"
	"github.com/couchcryptid/sdg2-indicator-service/internal/observability"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	a, err := newApp(cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer a.Close()
	a.enableSink()

	api := httpadapter.NewAPI(a.newResolver(), a.newProber(), a.indicators, a.regions, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, api, a.store, logger)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("http server error", "error", err)
		return err
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
