package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Morty67/kollectiv-api/internal/domain"
	"github.com/Morty67/kollectiv-api/internal/store"
)

func newTaskFixture(t *testing.T) (*TaskService, *memTaskStore, *memCategoryStore) {
	t.Helper()
	tasks := newMemTaskStore()
	categories := newMemCategoryStore()
	return NewTaskService(tasks, categories, testLogger()), tasks, categories
}

func TestTaskServiceCreate(t *testing.T) {
	t.Parallel()

	svc, _, categories := newTaskFixture(t)
	ctx := context.Background()

	require.NoError(t, categories.Create(ctx, &domain.Category{Name: "work"}))

	catID := int64(1)
	task, err := svc.Create(ctx, TaskParams{Title: "Report", CategoryID: &catID, UserID: 7})
	require.NoError(t, err)
	assert.Equal(t, int64(1), task.ID)
	assert.Equal(t, domain.PriorityMedium, task.Priority)
}

func TestTaskServiceCreateUnknownCategory(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTaskFixture(t)

	catID := int64(99)
	_, err := svc.Create(context.Background(), TaskParams{Title: "Report", CategoryID: &catID, UserID: 7})
	assert.ErrorIs(t, err, store.ErrCategoryNotFound)
}

func TestTaskServiceCreateInvalid(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTaskFixture(t)

	_, err := svc.Create(context.Background(), TaskParams{Title: "", UserID: 7})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestTaskServiceUpdateReturnsStoredState(t *testing.T) {
	t.Parallel()

	svc, tasks, _ := newTaskFixture(t)
	ctx := context.Background()

	desc := "first draft"
	require.NoError(t, tasks.Create(ctx, &domain.Task{
		Title: "Report", Description: &desc, Priority: domain.PriorityLow, UserID: 7,
	}))

	updated, err := svc.Update(ctx, 1, TaskParams{Title: "Final report", Priority: domain.PriorityHigh, UserID: 7})
	require.NoError(t, err)

	// Update overwrites every field, clearing the optional ones that
	// were not supplied.
	assert.Equal(t, "Final report", updated.Title)
	assert.Equal(t, domain.PriorityHigh, updated.Priority)
	assert.Nil(t, updated.Description)
	assert.Nil(t, updated.CategoryID)
}

func TestTaskServiceUpdateNotFound(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTaskFixture(t)

	_, err := svc.Update(context.Background(), 99, TaskParams{Title: "Report", UserID: 7})
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskServiceConcurrentUpdatesLastWriterWins(t *testing.T) {
	t.Parallel()

	svc, tasks, _ := newTaskFixture(t)
	ctx := context.Background()

	require.NoError(t, tasks.Create(ctx, &domain.Task{Title: "Report", Priority: domain.PriorityMedium, UserID: 7}))

	const writers = 8
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := svc.Update(ctx, 1, TaskParams{
				Title:    fmt.Sprintf("Report v%d", i),
				Priority: domain.PriorityHigh,
				UserID:   7,
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// Whichever writer landed last, the row holds one writer's fields
	// in full, never a mix.
	final, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Regexp(t, `^Report v\d$`, final.Title)
	assert.Equal(t, domain.PriorityHigh, final.Priority)
}

func TestTaskServiceDelete(t *testing.T) {
	t.Parallel()

	svc, tasks, _ := newTaskFixture(t)
	ctx := context.Background()

	require.NoError(t, tasks.Create(ctx, &domain.Task{Title: "Report", Priority: domain.PriorityMedium, UserID: 7}))

	result, err := svc.Delete(ctx, 1)
	require.NoError(t, err)
	assert.True(t, result.Deleted)
	assert.Equal(t, "task with ID 1 deleted", result.Message)

	_, err = svc.Get(ctx, 1)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	result, err = svc.Delete(ctx, 1)
	require.NoError(t, err)
	assert.False(t, result.Deleted)
	assert.Equal(t, "task with ID 1 not found", result.Message)
}
