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

// PostgresCategoryStore implements the store.CategoryStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCategoryStore struct {
	*Table[domain.Category]
}

// NewPostgresCategoryStore creates a new PostgreSQL implementation of
// the CategoryStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
// If log is nil, a default logger will be used.
func NewPostgresCategoryStore(db store.DBTX, log *slog.Logger) *PostgresCategoryStore {
	return &PostgresCategoryStore{
		Table: NewTable(
			db,
			log,
			"categories",
			[]string{"id", "name"},
			func(c *domain.Category) []any { return []any{&c.ID, &c.Name} },
			store.ErrCategoryNotFound,
		),
	}
}

// Ensure PostgresCategoryStore implements store.CategoryStore interface
var _ store.CategoryStore = (*PostgresCategoryStore)(nil)

// GetByID implements store.CategoryStore.GetByID
func (s *PostgresCategoryStore) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	category, found, err := s.GetOne(ctx, squirrel.Eq{"id": id})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, store.ErrCategoryNotFound
	}
	return &category, nil
}

// GetByName implements store.CategoryStore.GetByName
func (s *PostgresCategoryStore) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	category, found, err := s.GetOne(ctx, squirrel.Eq{"name": name})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, store.ErrCategoryNotFound
	}
	return &category, nil
}

// Update implements store.CategoryStore.Update
// It overwrites the name of the category identified by category.ID.
// Returns store.ErrCategoryNotFound if no row matched and
// store.ErrDuplicate if the name is already taken.
func (s *PostgresCategoryStore) Update(ctx context.Context, category *domain.Category) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := category.Validate(); err != nil {
		log.Warn("category validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("category_id", category.ID))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query, args, err := qb.Update("categories").
		Set("name", category.Name).
		Where(squirrel.Eq{"id": category.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			log.Warn("unique violation during category update",
				slog.Int64("category_id", category.ID),
				slog.String("constraint", pgErr.ConstraintName))
			return fmt.Errorf("%w: %s", store.ErrDuplicate, pgErr.ConstraintName)
		}

		log.Error("failed to update category",
			slog.Int64("category_id", category.ID),
			slog.String("error", err.Error()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrCategoryNotFound
	}

	log.Debug("category updated", slog.Int64("category_id", category.ID))
	return nil
}

// ExistsByID implements store.CategoryStore.ExistsByID
func (s *PostgresCategoryStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return s.Exists(ctx, squirrel.Eq{"id": id})
}

// WithTx implements store.CategoryStore.WithTx
func (s *PostgresCategoryStore) WithTx(tx *sql.Tx) store.CategoryStore {
	return &PostgresCategoryStore{Table: s.Table.WithDB(tx)}
}
