package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ticketgate/backend/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

func init() {
	migrateCmd.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply all pending migrations", RunE: migrateRunner("up", db.MigrateUp)},
		&cobra.Command{Use: "down", Short: "Roll back the latest migration", RunE: migrateRunner("down", db.MigrateDown)},
		&cobra.Command{Use: "status", Short: "Print migration status", RunE: migrateRunner("status", db.MigrateStatus)},
	)
}

func migrateRunner(name string, fn func(context.Context, string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if err := fn(cmd.Context(), cfg.DatabaseURL); err != nil {
			return err
		}
		logger.Info().Str("direction", name).Msg("migrate: ok")
		return nil
	}
}
