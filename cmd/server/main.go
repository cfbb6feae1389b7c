// Package main implements the entry point for the Kollectiv API
// server, which manages users' task collections and optimizes
// uploaded images for email delivery.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/Morty67/kollectiv-api/internal/config"
	"github.com/Morty67/kollectiv-api/internal/platform/logger"
	"github.com/Morty67/kollectiv-api/internal/platform/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	if err := run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	appLogger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("queue_backend", cfg.Queue.Backend))

	ctx := context.Background()

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := postgres.MigrateUp(ctx, db); err != nil {
		return err
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
