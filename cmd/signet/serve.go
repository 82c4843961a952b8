package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/signet/config"
	signethttp "github.com/sagarc03/signet/http"
	"github.com/sagarc03/signet/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the Signet HTTP server.

Routes:
  POST /sign        issue a signed URL
  GET  /issuances   page through the issuance ledger (when enabled)
  GET  /healthz     liveness check
  GET  /metrics     Prometheus metrics (when enabled)
  GET  /            landing page`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8080, "HTTP server port (env: SIGNET_SERVER_PORT)")
	serveCmd.Flags().String("host", "0.0.0.0", "HTTP listen host (env: SIGNET_SERVER_HOST)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	logger := slog.Default()

	comps, err := buildComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	handlerConfig := signethttp.HandlerConfig{
		CORS:           cfg.CORS,
		RequestTimeout: cfg.Server.RequestTimeout,
		Issuances:      comps.ledger,
		Logger:         logger,
	}
	if cfg.Metrics.Enabled {
		handlerConfig.Metrics = metrics.New()
	}

	handler := signethttp.NewHandler(&handlerConfig, comps.service)

	addr := cfg.Server.Addr()
	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
	}()

	slog.Info("starting server",
		"addr", addr,
		"backend", cfg.Signing.Backend,
		"ledger", cfg.Database.Type,
		"metrics", cfg.Metrics.Enabled,
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
