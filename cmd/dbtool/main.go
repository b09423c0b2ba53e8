package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"roadbook-service/internal/adapters/cache"
	"roadbook-service/internal/config"
	"roadbook-service/internal/platform/db"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
)

// dbtool prepares the Postgres cache schema and optionally purges stale
// route entries (PURGE_OLDER_THAN, a Postgres interval such as "30 days").
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := runDBTool(ctx, logger, databaseURL, config.Get("PURGE_OLDER_THAN", "")); err != nil {
		logger.Error("dbtool failed", "err", err)
		os.Exit(1)
	}
}

func runDBTool(ctx context.Context, logger *slog.Logger, databaseURL, purgeOlderThan string) error {
	sqlDB, err := db.Open(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	logger.Info("initializing cache schema")
	if err := cache.InitSchema(ctx, sqlDB); err != nil {
		return err
	}
	logger.Info("schema ready")

	if purgeOlderThan == "" {
		return nil
	}

	n, err := cache.PurgeRoutes(ctx, sqlDB, purgeOlderThan)
	if err != nil {
		return err
	}
	logger.Info("purged stale routes", "older_than", purgeOlderThan, "deleted", n)
	return nil
}
