package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Morty67/kollectiv-api/internal/domain"
	"github.com/Morty67/kollectiv-api/internal/platform/logger"
	"github.com/Morty67/kollectiv-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	*Table[domain.Task]
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If log is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, log *slog.Logger) *PostgresTaskStore {
	return &PostgresTaskStore{
		Table: NewTable(
			db,
			log,
			"tasks",
			[]string{"id", "title", "description", "category_id", "priority", "user_id"},
			func(t *domain.Task) []any {
				return []any{&t.ID, &t.Title, &t.Description, &t.CategoryID, &t.Priority, &t.UserID}
			},
			store.ErrTaskNotFound,
		),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	task, found, err := s.GetOne(ctx, squirrel.Eq{"id": id})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, store.ErrTaskNotFound
	}
	return &task, nil
}

// Update implements store.TaskStore.Update
// It overwrites all mutable fields of the task identified by task.ID.
// Returns store.ErrTaskNotFound if no row matched and
// store.ErrInvalidReference if the category or user does not exist.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query, args, err := qb.Update("tasks").
		Set("title", task.Title).
		Set("description", task.Description).
		Set("category_id", task.CategoryID).
		Set("priority", task.Priority).
		Set("user_id", task.UserID).
		Where(squirrel.Eq{"id": task.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolationCode {
			log.Warn("foreign key violation during task update",
				slog.Int64("task_id", task.ID),
				slog.String("constraint", pgErr.ConstraintName))
			return fmt.Errorf("%w: %s", store.ErrInvalidReference, pgErr.ConstraintName)
		}

		log.Error("failed to update task",
			slog.Int64("task_id", task.ID),
			slog.String("error", err.Error()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrTaskNotFound
	}

	log.Debug("task updated", slog.Int64("task_id", task.ID))
	return nil
}

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{Table: s.Table.WithDB(tx)}
}
