package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/Morty67/kollectiv-api/internal/domain"
	"github.com/Morty67/kollectiv-api/internal/platform/logger"
	"github.com/Morty67/kollectiv-api/internal/store"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	*Table[domain.User]
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the
// UserStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If log is nil, a default logger will be used.
func NewPostgresUserStore(db store.DBTX, log *slog.Logger) *PostgresUserStore {
	return &PostgresUserStore{
		Table: NewTable(
			db,
			log,
			"users",
			[]string{"id", "email", "username", "hashed_password", "last_login", "last_request"},
			func(u *domain.User) []any {
				return []any{&u.ID, &u.Email, &u.Username, &u.HashedPassword, &u.LastLogin, &u.LastRequest}
			},
			store.ErrUserNotFound,
		),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// Create implements store.Repository.Create for users, narrowing
// unique violations to the field that collided.
// Returns store.ErrEmailExists or store.ErrUsernameExists as appropriate.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	err := s.Table.Create(ctx, user)
	if err != nil && store.IsDuplicateError(err) {
		// The wrapped constraint name identifies the colliding column.
		switch {
		case strings.Contains(err.Error(), "email"):
			return store.ErrEmailExists
		case strings.Contains(err.Error(), "username"):
			return store.ErrUsernameExists
		}
	}
	return err
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, found, err := s.GetOne(ctx, squirrel.Eq{"id": id})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, store.ErrUserNotFound
	}
	return &user, nil
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, found, err := s.GetOne(ctx, squirrel.Eq{"email": email})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, store.ErrUserNotFound
	}
	return &user, nil
}

// GetByUsername implements store.UserStore.GetByUsername
func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, found, err := s.GetOne(ctx, squirrel.Eq{"username": username})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, store.ErrUserNotFound
	}
	return &user, nil
}

// ExistsByEmail implements store.UserStore.ExistsByEmail
func (s *PostgresUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.Exists(ctx, squirrel.Eq{"email": email})
}

// ExistsByUsername implements store.UserStore.ExistsByUsername
func (s *PostgresUserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.Exists(ctx, squirrel.Eq{"username": username})
}

// TouchLastLogin implements store.UserStore.TouchLastLogin
func (s *PostgresUserStore) TouchLastLogin(ctx context.Context, id int64) error {
	return s.touch(ctx, id, "last_login")
}

// TouchLastRequest implements store.UserStore.TouchLastRequest
func (s *PostgresUserStore) TouchLastRequest(ctx context.Context, id int64) error {
	return s.touch(ctx, id, "last_request")
}

func (s *PostgresUserStore) touch(ctx context.Context, id int64, column string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := qb.Update("users").
		Set(column, time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build touch query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update user activity timestamp",
			slog.Int64("user_id", id),
			slog.String("column", column),
			slog.String("error", err.Error()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrUserNotFound
	}

	return nil
}

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{Table: s.Table.WithDB(tx)}
}
