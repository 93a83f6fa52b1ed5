package main

// Apply the result sink migrations:
//   DATABASE_URL=postgres://... go run ./cmd/migrate

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/config"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/storage/db"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.SetLevel(telemetry.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, cfg.DatabaseURL))
}

func run(ctx context.Context, databaseURL string) int {
	pool, err := db.Open(ctx, databaseURL, db.RuntimeMigrate)
	if err != nil {
		telemetry.Error("migrate.connect.failed", map[string]any{"error": err})
		return 1
	}
	defer pool.Close()

	before, err := db.SchemaVersion(ctx, pool)
	if err != nil {
		telemetry.Warn("migrate.version.unknown", map[string]any{"error": err})
	}
	if err := db.RunMigrations(ctx, pool); err != nil {
		telemetry.Error("migrate.run.failed", map[string]any{"error": err, "from_version": before})
		return 1
	}
	return 0
}
