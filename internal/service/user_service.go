package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Morty67/kollectiv-api/internal/domain"
	"github.com/Morty67/kollectiv-api/internal/platform/logger"
	"github.com/Morty67/kollectiv-api/internal/service/auth"
	"github.com/Morty67/kollectiv-api/internal/store"
)

// UserService provides registration, authentication and account
// operations.
type UserService struct {
	db       *sql.DB
	users    store.UserStore
	hasher   auth.PasswordHasher
	verifier auth.PasswordVerifier
	jwt      auth.JWTService
	logger   *slog.Logger
}

// NewUserService creates a new UserService. db is used to open
// registration transactions; it may be nil in tests that never
// register.
// If log is nil, a default logger is used.
func NewUserService(
	db *sql.DB,
	users store.UserStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	jwt auth.JWTService,
	log *slog.Logger,
) *UserService {
	if users == nil {
		panic("users store cannot be nil")
	}
	if hasher == nil || verifier == nil {
		panic("password hasher and verifier cannot be nil")
	}
	if jwt == nil {
		panic("jwt service cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &UserService{
		db:       db,
		users:    users,
		hasher:   hasher,
		verifier: verifier,
		jwt:      jwt,
		logger:   log.With(slog.String("component", "user_service")),
	}
}

// Register creates a new user account. The uniqueness checks and the
// insert run in one transaction so concurrent registrations cannot
// both pass the check.
// Returns store.ErrEmailExists or store.ErrUsernameExists on conflict.
func (s *UserService) Register(ctx context.Context, email, username, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(email, username, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)

		if exists, err := users.ExistsByEmail(ctx, email); err != nil {
			return err
		} else if exists {
			return store.ErrEmailExists
		}

		if exists, err := users.ExistsByUsername(ctx, username); err != nil {
			return err
		} else if exists {
			return store.ErrUsernameExists
		}

		return users.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	log.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username))
	return user, nil
}

// Login authenticates a user by email and password and returns a
// signed access token. A successful login records the user's
// last_login timestamp.
// Returns auth.ErrInvalidCredentials when the email is unknown or the
// password does not match.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			// Same answer as a bad password, so the endpoint does not
			// leak which emails are registered.
			return "", nil, auth.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("password mismatch", slog.Int64("user_id", user.ID))
		return "", nil, auth.ErrInvalidCredentials
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		log.Error("failed to record last login",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()))
		return "", nil, err
	}

	token, err := s.jwt.GenerateToken(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}

	log.Info("user logged in", slog.Int64("user_id", user.ID))
	return token, user, nil
}

// List returns all users ordered by ID.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// Get retrieves a user by ID.
// Returns store.ErrUserNotFound if it does not exist.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// Delete removes a user account by ID. The user's tasks are removed
// with it via ON DELETE CASCADE. A missing user is a normal outcome
// reported through DeleteResult, not an error.
func (s *UserService) Delete(ctx context.Context, id int64) (*DeleteResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.users.DeleteByID(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return &DeleteResult{
				Deleted: false,
				Message: fmt.Sprintf("user with ID %d not found", id),
			}, nil
		}
		return nil, err
	}

	log.Info("user deleted", slog.Int64("user_id", id))
	return &DeleteResult{
		Deleted: true,
		Message: fmt.Sprintf("user with ID %d deleted", id),
	}, nil
}

// TouchLastRequest records activity for an authenticated user. A
// missing user is ignored, since the account may have been deleted
// while a token for it was still live.
func (s *UserService) TouchLastRequest(ctx context.Context, id int64) error {
	err := s.users.TouchLastRequest(ctx, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}
