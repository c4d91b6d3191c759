package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/location-picker/internal/adapter/http"
	"github.com/couchcryptid/location-picker/internal/observability"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web picker",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.NewLogger(cfg)
			metrics := observability.NewMetrics()

			dir := newDirectory(metrics, logger)
			sink, closeSink := newSink(metrics, logger)
			defer closeSink()

			srv := httpadapter.NewServer(cfg.HTTPAddr, dir, dir, sink, metrics, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("http server listening", "addr", cfg.HTTPAddr)
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
		},
	}
}
