package db

import (
	"context"
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"

	"resume-builder/internal/shared/telemetry"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsDir = "migrations"

// RunMigrations brings the users, resumes and subscription tables up to the
// latest embedded version. A nil database is a no-op.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	if database == nil {
		return nil
	}
	if err := prepareGoose(); err != nil {
		return err
	}
	before, err := goose.GetDBVersionContext(ctx, database)
	if err != nil {
		return err
	}
	if err := goose.UpContext(ctx, database, migrationsDir); err != nil {
		return err
	}
	after, err := goose.GetDBVersionContext(ctx, database)
	if err != nil {
		return err
	}
	telemetry.Info("db.migrations.applied", map[string]any{
		"from_version": before,
		"to_version":   after,
	})
	return nil
}

// SchemaVersion reports the applied migration version.
func SchemaVersion(ctx context.Context, database *sql.DB) (int64, error) {
	if err := prepareGoose(); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, database)
}

func prepareGoose() error {
	goose.SetBaseFS(migrationFiles)
	goose.SetLogger(goose.NopLogger())
	return goose.SetDialect("postgres")
}
