package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Morty67/kollectiv-api/internal/domain"
	"github.com/Morty67/kollectiv-api/internal/service/auth"
	"github.com/Morty67/kollectiv-api/internal/store"
)

func newUserFixture(t *testing.T, users *mockUserStore) *UserService {
	t.Helper()

	jwt, err := auth.NewJWTService("test-jwt-secret-that-is-long-enough!", 30)
	require.NoError(t, err)

	// bcrypt.MinCost keeps the hashing fast in tests
	return NewUserService(nil, users, auth.NewBcryptHasher(4), auth.NewBcryptVerifier(), jwt, testLogger())
}

func TestUserServiceLogin(t *testing.T) {
	t.Parallel()

	hasher := auth.NewBcryptHasher(4)
	hashed, err := hasher.Hash("correct-horse")
	require.NoError(t, err)

	users := &mockUserStore{
		getByEmailFn: func(_ context.Context, email string) (*domain.User, error) {
			if email == "alice@example.com" {
				return &domain.User{ID: 42, Email: email, Username: "alice", HashedPassword: hashed}, nil
			}
			return nil, store.ErrUserNotFound
		},
	}
	svc := newUserFixture(t, users)
	ctx := context.Background()

	token, user, err := svc.Login(ctx, "alice@example.com", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, []int64{42}, users.lastLoginTouched)
}

func TestUserServiceLoginUnknownEmail(t *testing.T) {
	t.Parallel()

	users := &mockUserStore{}
	svc := newUserFixture(t, users)

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever1")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Empty(t, users.lastLoginTouched)
}

func TestUserServiceLoginWrongPassword(t *testing.T) {
	t.Parallel()

	hasher := auth.NewBcryptHasher(4)
	hashed, err := hasher.Hash("correct-horse")
	require.NoError(t, err)

	users := &mockUserStore{
		getByEmailFn: func(_ context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: 42, Email: email, HashedPassword: hashed}, nil
		},
	}
	svc := newUserFixture(t, users)

	_, _, err = svc.Login(context.Background(), "alice@example.com", "wrong-horse")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Empty(t, users.lastLoginTouched)
}

func TestUserServiceRegister(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	// The store operations run against the mock store; only the
	// transaction frame touches the database.
	mock.ExpectBegin()
	mock.ExpectCommit()

	users := &mockUserStore{}
	jwt, err := auth.NewJWTService("test-jwt-secret-that-is-long-enough!", 30)
	require.NoError(t, err)
	svc := NewUserService(db, users, auth.NewBcryptHasher(4), auth.NewBcryptVerifier(), jwt, testLogger())

	user, err := svc.Register(context.Background(), "alice@example.com", "alice", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.NotEmpty(t, user.HashedPassword)
	assert.NotEqual(t, "correct-horse", user.HashedPassword)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserServiceRegisterEmailTaken(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectRollback()

	users := &mockUserStore{
		existsByEmailFn: func(_ context.Context, _ string) (bool, error) { return true, nil },
	}
	jwt, err := auth.NewJWTService("test-jwt-secret-that-is-long-enough!", 30)
	require.NoError(t, err)
	svc := NewUserService(db, users, auth.NewBcryptHasher(4), auth.NewBcryptVerifier(), jwt, testLogger())

	_, err = svc.Register(context.Background(), "alice@example.com", "alice", "correct-horse")
	assert.ErrorIs(t, err, store.ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserServiceRegisterInvalid(t *testing.T) {
	t.Parallel()

	svc := newUserFixture(t, &mockUserStore{})

	_, err := svc.Register(context.Background(), "not-an-email", "alice", "correct-horse")
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestUserServiceTouchLastRequestIgnoresMissingUser(t *testing.T) {
	t.Parallel()

	users := &mockUserStore{}
	svc := newUserFixture(t, users)

	err := svc.TouchLastRequest(context.Background(), 42)
	assert.NoError(t, err)
	assert.Equal(t, []int64{42}, users.lastReqTouched)
}
