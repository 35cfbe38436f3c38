package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/go-cms/internal/db"
	"github.com/diewo77/go-cms/internal/logger"
	"github.com/diewo77/go-cms/internal/middleware"
	"github.com/diewo77/go-cms/internal/policy"
	"github.com/diewo77/go-cms/view"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Server.Port = port
		}
		log := logger.New(cfg.App.Dev)
		slog.SetDefault(log)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		conn, err := db.Connect(ctx, cfg.Database, log)
		if err != nil {
			return err
		}

		// Run migrations on startup if enabled
		if cfg.App.Migrations {
			if err := db.Migrate(conn); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			log.Info("migrations completed")
		}
		if err := seed(conn, log); err != nil {
			return err
		}

		view.SetDevMode(cfg.App.Dev)
		view.SetThemeResolver(middleware.ThemeFrom)

		routerCfg := policy.NewRouterConfig(conn, cfg, log)
		app := NewApp(routerCfg, log, cfg.App.Metrics)

		srv := &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      app,
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
			BaseContext:  func(net.Listener) context.Context { return ctx },
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("server starting", "port", cfg.Server.Port, "dev", cfg.App.Dev, "failure_policy", cfg.Access.Policy())
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-ctx.Done():
		}
		log.Info("shutdown signal received")

		// Session watch streams end with ctx; give the rest ten seconds.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown", "error", err)
			return err
		}
		log.Info("server stopped gracefully")
		return nil
	},
}

// seed tolerates a missing bootstrap account so a fresh install still starts.
func seed(conn *gorm.DB, log *slog.Logger) error {
	err := db.Seed(conn, cfg.Bootstrap)
	if errors.Is(err, db.ErrNoBootstrapAccount) {
		log.Warn("no bootstrap superadmin configured; set SUPERADMIN_EMAIL and SUPERADMIN_PASSWORD")
		return nil
	}
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	return nil
}

func init() {
	serveCmd.Flags().String("port", "", "Override the listen port (env: PORT)")
}
