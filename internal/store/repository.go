package store

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"

	"github.com/Morty67/kollectiv-api/internal/domain"
)

// Repository is the generic data-access surface shared by all entity
// stores. E is the entity type; predicates are squirrel expressions
// (e.g. squirrel.Eq{"id": id}) evaluated against the entity's table.
type Repository[E any] interface {
	// List retrieves all entities ordered by primary key.
	List(ctx context.Context) ([]E, error)

	// Create inserts the entity and sets its database-assigned ID.
	Create(ctx context.Context, entity *E) error

	// GetOne retrieves the first entity matching the predicate.
	// The second return value is false when no row matched.
	GetOne(ctx context.Context, pred squirrel.Sqlizer) (E, bool, error)

	// Exists reports whether any entity matches the predicate.
	Exists(ctx context.Context, pred squirrel.Sqlizer) (bool, error)

	// DeleteByID removes the entity with the given primary key.
	// Returns ErrNotFound (or an entity-specific wrap) when no row matched.
	DeleteByID(ctx context.Context, id int64) error
}

// CategoryStore defines the persistence operations for categories.
type CategoryStore interface {
	Repository[domain.Category]

	// GetByID retrieves a category by its primary key.
	// Returns ErrCategoryNotFound if no category exists with the given ID.
	GetByID(ctx context.Context, id int64) (*domain.Category, error)

	// GetByName retrieves a category by its exact name.
	// Returns ErrCategoryNotFound if no category exists with the given name.
	GetByName(ctx context.Context, name string) (*domain.Category, error)

	// Update overwrites the name of the category identified by
	// category.ID. Returns ErrCategoryNotFound if no row matched.
	Update(ctx context.Context, category *domain.Category) error

	// ExistsByID reports whether a category with the given ID exists.
	ExistsByID(ctx context.Context, id int64) (bool, error)

	// WithTx returns a copy of the store bound to the given transaction.
	WithTx(tx *sql.Tx) CategoryStore
}

// TaskStore defines the persistence operations for tasks.
type TaskStore interface {
	Repository[domain.Task]

	// GetByID retrieves a task by its primary key.
	// Returns ErrTaskNotFound if no task exists with the given ID.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// Update overwrites all mutable fields of the task identified by
	// task.ID. Returns ErrTaskNotFound if no row matched.
	Update(ctx context.Context, task *domain.Task) error

	// WithTx returns a copy of the store bound to the given transaction.
	WithTx(tx *sql.Tx) TaskStore
}

// UserStore defines the persistence operations for users.
type UserStore interface {
	Repository[domain.User]

	// GetByID retrieves a user by its primary key.
	// Returns ErrUserNotFound if no user exists with the given ID.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by email address.
	// Returns ErrUserNotFound if no user exists with the given email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByUsername retrieves a user by username.
	// Returns ErrUserNotFound if no user exists with the given username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// ExistsByEmail reports whether a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByUsername reports whether a user with the given username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// TouchLastLogin records the current time as the user's last login.
	TouchLastLogin(ctx context.Context, id int64) error

	// TouchLastRequest records the current time as the user's last
	// authenticated request.
	TouchLastRequest(ctx context.Context, id int64) error

	// WithTx returns a copy of the store bound to the given transaction.
	WithTx(tx *sql.Tx) UserStore
}

// ImageStore defines the persistence operations for image records.
type ImageStore interface {
	Repository[domain.Image]

	// Add records the filename of an optimized image.
	// Returns ErrDuplicateName if the name was already recorded.
	Add(ctx context.Context, name string) (*domain.Image, error)

	// GetByID retrieves an image record by its primary key.
	// Returns ErrImageNotFound if no record exists with the given ID.
	GetByID(ctx context.Context, id int64) (*domain.Image, error)

	// GetByName retrieves an image record by its filename.
	// Returns ErrImageNotFound if no record exists with the given name.
	GetByName(ctx context.Context, name string) (*domain.Image, error)

	// WithTx returns a copy of the store bound to the given transaction.
	WithTx(tx *sql.Tx) ImageStore
}
