package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Morty67/kollectiv-api/internal/domain"
	"github.com/Morty67/kollectiv-api/internal/platform/logger"
	"github.com/Morty67/kollectiv-api/internal/store"
)

// TaskParams carries the writable fields of a task for create and
// update operations. Update overwrites every field, so absent optional
// values clear the corresponding columns.
type TaskParams struct {
	Title       string
	Description *string
	CategoryID  *int64
	Priority    domain.Priority
	UserID      int64
}

// TaskService provides task-related operations.
type TaskService struct {
	tasks      store.TaskStore
	categories store.CategoryStore
	logger     *slog.Logger
}

// NewTaskService creates a new TaskService.
// If log is nil, a default logger is used.
func NewTaskService(tasks store.TaskStore, categories store.CategoryStore, log *slog.Logger) *TaskService {
	if tasks == nil {
		panic("tasks store cannot be nil")
	}
	if categories == nil {
		panic("categories store cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &TaskService{
		tasks:      tasks,
		categories: categories,
		logger:     log.With(slog.String("component", "task_service")),
	}
}

// List returns all tasks ordered by ID.
func (s *TaskService) List(ctx context.Context) ([]domain.Task, error) {
	return s.tasks.List(ctx)
}

// Create creates a new task.
// Returns store.ErrCategoryNotFound if a category is referenced but
// does not exist.
func (s *TaskService) Create(ctx context.Context, params TaskParams) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.checkCategory(ctx, params.CategoryID); err != nil {
		return nil, err
	}

	task, err := domain.NewTask(params.Title, params.Description, params.CategoryID, params.Priority, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	log.Info("task created",
		slog.Int64("task_id", task.ID),
		slog.Int64("user_id", task.UserID),
		slog.String("priority", string(task.Priority)))
	return task, nil
}

// Get retrieves a task by ID.
// Returns store.ErrTaskNotFound if it does not exist.
func (s *TaskService) Get(ctx context.Context, id int64) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

// Update overwrites all writable fields of an existing task and
// returns its state as re-read after the write. Under concurrent
// updates the last write wins field-for-field.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *TaskService) Update(ctx context.Context, id int64, params TaskParams) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Existence first, so a missing task reads as not-found rather
	// than a zero-row update.
	if _, err := s.tasks.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if err := s.checkCategory(ctx, params.CategoryID); err != nil {
		return nil, err
	}

	task := &domain.Task{
		ID:          id,
		Title:       params.Title,
		Description: params.Description,
		CategoryID:  params.CategoryID,
		Priority:    params.Priority,
		UserID:      params.UserID,
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	log.Info("task updated", slog.Int64("task_id", id))

	// Re-read so the caller sees the committed state, which may
	// include a concurrent writer's fields.
	return s.tasks.GetByID(ctx, id)
}

// Delete removes a task by ID. A missing task is a normal outcome
// reported through DeleteResult, not an error.
func (s *TaskService) Delete(ctx context.Context, id int64) (*DeleteResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.tasks.DeleteByID(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return &DeleteResult{
				Deleted: false,
				Message: fmt.Sprintf("task with ID %d not found", id),
			}, nil
		}
		return nil, err
	}

	log.Info("task deleted", slog.Int64("task_id", id))
	return &DeleteResult{
		Deleted: true,
		Message: fmt.Sprintf("task with ID %d deleted", id),
	}, nil
}

func (s *TaskService) checkCategory(ctx context.Context, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	exists, err := s.categories.ExistsByID(ctx, *categoryID)
	if err != nil {
		return err
	}
	if !exists {
		return store.ErrCategoryNotFound
	}
	return nil
}
