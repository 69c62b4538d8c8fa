package main

// Apply the resume-builder schema:
//   go run ./cmd/migrate
// Print the applied version only:
//   go run ./cmd/migrate -status

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/telemetry"
)

func main() {
	statusOnly := flag.Bool("status", false, "print the applied schema version and exit")
	flag.Parse()

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		telemetry.Error("migrate.config_missing", map[string]any{"env": cfg.Env, "missing": "DATABASE_URL"})
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if !*statusOnly {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			telemetry.Error("migrate.failed", map[string]any{"error": err.Error()})
			sqlDB.Close()
			os.Exit(1)
		}
	}
	version, err := db.SchemaVersion(ctx, sqlDB)
	if err != nil {
		telemetry.Error("migrate.version_failed", map[string]any{"error": err.Error()})
		sqlDB.Close()
		os.Exit(1)
	}
	telemetry.Info("migrate.schema", map[string]any{"env": cfg.Env, "version": version})
}
