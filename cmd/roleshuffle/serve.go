package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/roleshuffle/internal/app"
	rshttp "github.com/fyrsmithlabs/roleshuffle/internal/http"
)

const instrumentationName = "github.com/fyrsmithlabs/roleshuffle/cmd/roleshuffle"

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API until interrupted.

Endpoints:
  GET    /health
  GET    /metrics
  POST   /api/v1/assign
  POST   /api/v1/reveal
  GET    /api/v1/configurations
  POST   /api/v1/configurations
  GET    /api/v1/configurations/:id
  DELETE /api/v1/configurations/:id

Examples:
  # Serve on the configured address (default 127.0.0.1:8420)
  roleshuffle serve

  # Serve on another port
  roleshuffle serve --port 9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return root.withApp(cmd, func(_ context.Context, a *app.App) error {
				if cmd.Flags().Changed("host") {
					a.Config.Server.Host = host
				}
				if cmd.Flags().Changed("port") {
					a.Config.Server.Port = port
				}
				return serve(ctx, a)
			})
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "Listen host (overrides server.host)")
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (overrides server.port)")
	return cmd
}

// serve runs the HTTP server and shuts it down gracefully when ctx ends.
func serve(ctx context.Context, a *app.App) error {
	srv, err := rshttp.NewServer(rshttp.Services{
		Engine: a.Engine,
		Reveal: a.Reveal,
		Store:  a.Store,
		Meter:  a.Telemetry.Meter(instrumentationName),
	}, a.Logger, &rshttp.Config{
		Host:    a.Config.Server.Host,
		Port:    a.Config.Server.Port,
		Version: a.Version,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	a.Logger.Info(ctx, "starting roleshuffle",
		zap.String("host", a.Config.Server.Host),
		zap.Int("port", a.Config.Server.Port),
		zap.String("store_backend", a.Config.Store.Backend),
		zap.Duration("shutdown_timeout", a.Config.Server.ShutdownTimeout.Duration()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Logger.Info(context.Background(), "received shutdown signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	if err := <-errCh; err != nil {
		return err
	}
	a.Logger.Info(context.Background(), "server shutdown complete")
	return nil
}
