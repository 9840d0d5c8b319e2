package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

func openMigrator(databaseURL string) (*sql.DB, error) {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, err
	}
	conn, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return conn, nil
}

// MigrateUp applies every pending embedded migration.
func MigrateUp(ctx context.Context, databaseURL string) error {
	conn, err := openMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := goose.UpContext(ctx, conn, migrationsDir); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(ctx context.Context, databaseURL string) error {
	conn, err := openMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := goose.DownContext(ctx, conn, migrationsDir); err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

func MigrateStatus(ctx context.Context, databaseURL string) error {
	conn, err := openMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()
	return goose.StatusContext(ctx, conn, migrationsDir)
}
