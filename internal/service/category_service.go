package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Morty67/kollectiv-api/internal/domain"
	"github.com/Morty67/kollectiv-api/internal/platform/logger"
	"github.com/Morty67/kollectiv-api/internal/store"
)

// CategoryService provides category-related operations.
type CategoryService struct {
	categories store.CategoryStore
	logger     *slog.Logger
}

// NewCategoryService creates a new CategoryService.
// If log is nil, a default logger is used.
func NewCategoryService(categories store.CategoryStore, log *slog.Logger) *CategoryService {
	if categories == nil {
		panic("categories store cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &CategoryService{
		categories: categories,
		logger:     log.With(slog.String("component", "category_service")),
	}
}

// List returns all categories ordered by ID.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

// Create creates a new category with the given name.
func (s *CategoryService) Create(ctx context.Context, name string) (*domain.Category, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	category, err := domain.NewCategory(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	log.Info("category created",
		slog.Int64("category_id", category.ID),
		slog.String("name", category.Name))
	return category, nil
}

// Get retrieves a category by ID.
// Returns store.ErrCategoryNotFound if it does not exist.
func (s *CategoryService) Get(ctx context.Context, id int64) (*domain.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// Update renames the category and returns its state as re-read after
// the write.
// Returns store.ErrCategoryNotFound if the category does not exist.
func (s *CategoryService) Update(ctx context.Context, id int64, name string) (*domain.Category, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Existence first, so a missing category reads as not-found
	// rather than a zero-row update.
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return nil, err
	}

	category := &domain.Category{ID: id, Name: name}
	if err := category.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}

	log.Info("category updated",
		slog.Int64("category_id", id),
		slog.String("name", name))

	// Re-read so the caller sees the committed state.
	return s.categories.GetByID(ctx, id)
}

// Delete removes a category by ID. A missing category is a normal
// outcome reported through DeleteResult, not an error. Tasks filed
// under the category keep existing with a NULL category thanks to the
// ON DELETE SET NULL constraint.
func (s *CategoryService) Delete(ctx context.Context, id int64) (*DeleteResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.categories.DeleteByID(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return &DeleteResult{
				Deleted: false,
				Message: fmt.Sprintf("category with ID %d not found", id),
			}, nil
		}
		return nil, err
	}

	log.Info("category deleted", slog.Int64("category_id", id))
	return &DeleteResult{
		Deleted: true,
		Message: fmt.Sprintf("category with ID %d deleted", id),
	}, nil
}
