package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/Masterminds/squirrel"

	"github.com/Morty67/kollectiv-api/internal/domain"
	"github.com/Morty67/kollectiv-api/internal/platform/logger"
	"github.com/Morty67/kollectiv-api/internal/store"
)

// PostgresImageStore implements the store.ImageStore interface
// using a PostgreSQL database as the storage backend.
type PostgresImageStore struct {
	*Table[domain.Image]
}

// NewPostgresImageStore creates a new PostgreSQL implementation of the
// ImageStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If log is nil, a default logger will be used.
func NewPostgresImageStore(db store.DBTX, log *slog.Logger) *PostgresImageStore {
	return &PostgresImageStore{
		Table: NewTable(
			db,
			log,
			"images",
			[]string{"id", "name"},
			func(i *domain.Image) []any { return []any{&i.ID, &i.Name} },
			store.ErrImageNotFound,
		),
	}
}

// Ensure PostgresImageStore implements store.ImageStore interface
var _ store.ImageStore = (*PostgresImageStore)(nil)

// Add implements store.ImageStore.Add
// It records the filename of an optimized image.
// Returns store.ErrDuplicateName if the name was already recorded.
func (s *PostgresImageStore) Add(ctx context.Context, name string) (*domain.Image, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	image, err := domain.NewImage(name)
	if err != nil {
		return nil, err
	}

	if err := s.Create(ctx, image); err != nil {
		if store.IsDuplicateError(err) {
			log.Warn("image name already recorded", slog.String("name", name))
			return nil, store.ErrDuplicateName
		}
		return nil, err
	}

	return image, nil
}

// GetByID implements store.ImageStore.GetByID
func (s *PostgresImageStore) GetByID(ctx context.Context, id int64) (*domain.Image, error) {
	image, found, err := s.GetOne(ctx, squirrel.Eq{"id": id})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, store.ErrImageNotFound
	}
	return &image, nil
}

// GetByName implements store.ImageStore.GetByName
func (s *PostgresImageStore) GetByName(ctx context.Context, name string) (*domain.Image, error) {
	image, found, err := s.GetOne(ctx, squirrel.Eq{"name": name})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, store.ErrImageNotFound
	}
	return &image, nil
}

// WithTx implements store.ImageStore.WithTx
func (s *PostgresImageStore) WithTx(tx *sql.Tx) store.ImageStore {
	return &PostgresImageStore{Table: s.Table.WithDB(tx)}
}
