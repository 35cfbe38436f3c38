package main

import (
	"fmt"

	"github.com/diewo77/go-cms/internal/db"
	"github.com/diewo77/go-cms/internal/logger"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.New(cfg.App.Dev)
		conn, err := db.Connect(cmd.Context(), cfg.Database, log)
		if err != nil {
			return err
		}
		if err := db.Migrate(conn); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.Info("migrations completed")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the bootstrap superadmin and default categories",
	Long: `Seeds default categories and, when SUPERADMIN_EMAIL and SUPERADMIN_PASSWORD
are set, the bootstrap superadmin account. Running it twice is harmless.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.New(cfg.App.Dev)
		conn, err := db.Connect(cmd.Context(), cfg.Database, log)
		if err != nil {
			return err
		}
		if err := seed(conn, log); err != nil {
			return err
		}
		log.Info("seeding completed")
		return nil
	},
}
