// Package main implements the standalone delivery worker. It consumes
// optimized images from RabbitMQ and emails them to their recipients.
// The API server only needs this binary when queue.backend is
// "rabbitmq"; the memory backend delivers in-process.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Morty67/kollectiv-api/internal/config"
	"github.com/Morty67/kollectiv-api/internal/platform/logger"
	"github.com/Morty67/kollectiv-api/internal/platform/smtp"
	"github.com/Morty67/kollectiv-api/internal/queue"
	"github.com/Morty67/kollectiv-api/internal/worker"
)

func main() {
	_ = godotenv.Load()

	if err := run(); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Queue.Backend != "rabbitmq" {
		return fmt.Errorf("queue backend %q has no standalone worker; set queue.backend to rabbitmq", cfg.Queue.Backend)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	appLogger.Info("worker configuration loaded",
		slog.String("queue", cfg.Queue.Name),
		slog.Int("workers", cfg.Queue.Workers))

	rabbit, err := queue.NewRabbit(cfg.Queue.URL, cfg.Queue.Name, appLogger)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	defer func() {
		if err := rabbit.Close(); err != nil {
			appLogger.Error("error closing queue connection", slog.Any("error", err))
		}
	}()

	sender, err := smtp.NewMailSender(smtp.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize mail sender: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := worker.New(rabbit, sender, cfg.Queue.Workers, appLogger)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	appLogger.Info("worker shutdown completed")
	return nil
}
