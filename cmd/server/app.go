package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Morty67/kollectiv-api/internal/config"
	"github.com/Morty67/kollectiv-api/internal/platform/imaging"
	"github.com/Morty67/kollectiv-api/internal/platform/postgres"
	"github.com/Morty67/kollectiv-api/internal/platform/smtp"
	"github.com/Morty67/kollectiv-api/internal/queue"
	"github.com/Morty67/kollectiv-api/internal/service"
	"github.com/Morty67/kollectiv-api/internal/service/auth"
	"github.com/Morty67/kollectiv-api/internal/worker"
)

// application holds the shared application dependencies so startup
// wiring and shutdown cleanup live in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	jwtService auth.JWTService

	categoryService *service.CategoryService
	taskService     *service.TaskService
	userService     *service.UserService
	imageService    *service.ImageService

	// publisher is the queue side the API writes to. With the memory
	// backend inProcessWorker consumes the same queue inside this
	// process; with rabbitmq a separate worker binary consumes it.
	publisher       queue.Publisher
	inProcessWorker *worker.Worker
}

// newApplication wires all dependencies from the loaded configuration.
// libvips is started here; cleanup shuts it down.
func newApplication(cfg *config.Config, log *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: log,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifetimeMinutes)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	log.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	categoryStore := postgres.NewPostgresCategoryStore(db, log)
	taskStore := postgres.NewPostgresTaskStore(db, log)
	userStore := postgres.NewPostgresUserStore(db, log)
	imageStore := postgres.NewPostgresImageStore(db, log)

	imaging.Startup()
	transcoder := imaging.NewVipsTranscoder(log)

	if err := app.setupQueue(); err != nil {
		imaging.Shutdown()
		return nil, err
	}

	app.categoryService = service.NewCategoryService(categoryStore, log)
	app.taskService = service.NewTaskService(taskStore, categoryStore, log)
	app.userService = service.NewUserService(
		db,
		userStore,
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		auth.NewBcryptVerifier(),
		app.jwtService,
		log,
	)
	app.imageService = service.NewImageService(imageStore, transcoder, app.publisher, log)
	if cfg.Image.Quality > 0 {
		app.imageService.SetDefaultQuality(cfg.Image.Quality)
	}

	log.Info("application initialized")
	return app, nil
}

// setupQueue selects the delivery queue backend. The memory backend
// also builds the in-process worker that drains it.
func (app *application) setupQueue() error {
	cfg := app.config

	switch cfg.Queue.Backend {
	case "rabbitmq":
		rabbit, err := queue.NewRabbit(cfg.Queue.URL, cfg.Queue.Name, app.logger)
		if err != nil {
			return fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		app.publisher = rabbit

	case "memory":
		mem := queue.NewMemory(cfg.Queue.BufferSize, app.logger)
		app.publisher = mem

		sender, err := smtp.NewMailSender(smtp.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, app.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize mail sender: %w", err)
		}
		app.inProcessWorker = worker.New(mem, sender, cfg.Queue.Workers, app.logger)

	default:
		return fmt.Errorf("unknown queue backend %q", cfg.Queue.Backend)
	}

	return nil
}

// Run starts the in-process worker when configured and serves HTTP
// until shutdown.
func (app *application) Run(ctx context.Context) error {
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()

	workerDone := make(chan struct{})
	if app.inProcessWorker != nil {
		go func() {
			defer close(workerDone)
			if err := app.inProcessWorker.Run(workerCtx); err != nil {
				app.logger.Error("delivery worker stopped", slog.Any("error", err))
			}
		}()
	} else {
		close(workerDone)
	}

	err := app.startHTTPServer(ctx, app.setupRouter())

	stopWorker()
	<-workerDone
	app.cleanup()

	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases application resources after the server and worker
// have stopped.
func (app *application) cleanup() {
	if app.publisher != nil {
		if err := app.publisher.Close(); err != nil {
			app.logger.Error("error closing queue", slog.Any("error", err))
		}
	}

	imaging.Shutdown()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database connection", slog.Any("error", err))
	}

	app.logger.Info("application shutdown completed")
}
