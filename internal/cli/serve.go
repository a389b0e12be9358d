package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Boluski2/lendsqr-admin/internal/dashboard"
	"github.com/Boluski2/lendsqr-admin/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the admin HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx, cfg, logger, true)
		if err != nil {
			return err
		}
		defer a.Close()

		// build the collection before accepting traffic
		if _, err := a.repo.Records(ctx); err != nil {
			return fmt.Errorf("load users: %w", err)
		}

		dash, err := dashboard.New(a.query, cfg.Dashboard.MaxSessions, logger)
		if err != nil {
			return err
		}

		api := server.NewAPIHandlers(logger, a.query, a.resolver, a.mutation)
		dashHandlers := server.NewDashboardHandlers(logger, dash)
		api.OnStatusChange(dashHandlers.StatusChanged)

		router := server.NewRouter(logger, server.RouterDependencies{
			Health:           server.StorageHealthService{Store: a.store},
			API:              api,
			Dashboard:        dashHandlers,
			Auth:             server.NewAuthHandlers(logger, a.auth),
			Tokens:           a.auth,
			AuthRequired:     cfg.Auth.Required,
			Metrics:          a.metrics,
			MetricsEnabled:   cfg.HTTP.MetricsEnabled,
			AllowedOrigins:   cfg.HTTP.AllowedOrigins(),
			AllowCredentials: true,
		})

		srv := server.New(logger, cfg.HTTP, router)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		var serveErr error
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig.String())
		case <-ctx.Done():
			logger.Info("context cancelled, shutting down")
		case serveErr = <-errCh:
			if serveErr != nil {
				logger.Error("server stopped unexpectedly", "error", serveErr)
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
		return serveErr
	},
}
