package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"

	"github.com/Masterminds/squirrel"

	"github.com/Morty67/kollectiv-api/internal/domain"
	"github.com/Morty67/kollectiv-api/internal/queue"
	"github.com/Morty67/kollectiv-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memCategoryStore is an in-memory CategoryStore for service tests.
type memCategoryStore struct {
	mu         sync.Mutex
	nextID     int64
	categories map[int64]domain.Category
}

func newMemCategoryStore() *memCategoryStore {
	return &memCategoryStore{nextID: 1, categories: map[int64]domain.Category{}}
}

func (s *memCategoryStore) List(_ context.Context) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Category, 0, len(s.categories))
	for id := int64(1); id < s.nextID; id++ {
		if c, ok := s.categories[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memCategoryStore) Create(_ context.Context, c *domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextID
	s.nextID++
	s.categories[c.ID] = *c
	return nil
}

func (s *memCategoryStore) GetOne(_ context.Context, _ squirrel.Sqlizer) (domain.Category, bool, error) {
	panic("not used in tests")
}

func (s *memCategoryStore) Exists(_ context.Context, _ squirrel.Sqlizer) (bool, error) {
	panic("not used in tests")
}

func (s *memCategoryStore) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return store.ErrCategoryNotFound
	}
	delete(s.categories, id)
	return nil
}

func (s *memCategoryStore) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, store.ErrCategoryNotFound
	}
	return &c, nil
}

func (s *memCategoryStore) GetByName(_ context.Context, name string) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Name == name {
			c := c
			return &c, nil
		}
	}
	return nil, store.ErrCategoryNotFound
}

func (s *memCategoryStore) Update(_ context.Context, c *domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; !ok {
		return store.ErrCategoryNotFound
	}
	s.categories[c.ID] = *c
	return nil
}

func (s *memCategoryStore) ExistsByID(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.categories[id]
	return ok, nil
}

func (s *memCategoryStore) WithTx(_ *sql.Tx) store.CategoryStore { return s }

// memTaskStore is an in-memory TaskStore for service tests. The mutex
// makes it safe for the concurrent update tests.
type memTaskStore struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]domain.Task
}

func newMemTaskStore() *memTaskStore {
	return &memTaskStore{nextID: 1, tasks: map[int64]domain.Task{}}
}

func (s *memTaskStore) List(_ context.Context) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Task, 0, len(s.tasks))
	for id := int64(1); id < s.nextID; id++ {
		if t, ok := s.tasks[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memTaskStore) Create(_ context.Context, t *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID
	s.nextID++
	s.tasks[t.ID] = *t
	return nil
}

func (s *memTaskStore) GetOne(_ context.Context, _ squirrel.Sqlizer) (domain.Task, bool, error) {
	panic("not used in tests")
}

func (s *memTaskStore) Exists(_ context.Context, _ squirrel.Sqlizer) (bool, error) {
	panic("not used in tests")
}

func (s *memTaskStore) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *memTaskStore) GetByID(_ context.Context, id int64) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return &t, nil
}

func (s *memTaskStore) Update(_ context.Context, t *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; !ok {
		return store.ErrTaskNotFound
	}
	s.tasks[t.ID] = *t
	return nil
}

func (s *memTaskStore) WithTx(_ *sql.Tx) store.TaskStore { return s }

// mockUserStore is a UserStore with overridable behavior per method.
type mockUserStore struct {
	getByEmailFn       func(ctx context.Context, email string) (*domain.User, error)
	existsByEmailFn    func(ctx context.Context, email string) (bool, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	createFn           func(ctx context.Context, u *domain.User) error

	mu               sync.Mutex
	lastLoginTouched []int64
	lastReqTouched   []int64
}

func (m *mockUserStore) List(_ context.Context) ([]domain.User, error) { return nil, nil }

func (m *mockUserStore) Create(ctx context.Context, u *domain.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, u)
	}
	u.ID = 1
	return nil
}

func (m *mockUserStore) GetOne(_ context.Context, _ squirrel.Sqlizer) (domain.User, bool, error) {
	panic("not used in tests")
}

func (m *mockUserStore) Exists(_ context.Context, _ squirrel.Sqlizer) (bool, error) {
	panic("not used in tests")
}

func (m *mockUserStore) DeleteByID(_ context.Context, _ int64) error { return nil }

func (m *mockUserStore) GetByID(_ context.Context, _ int64) (*domain.User, error) {
	return nil, store.ErrUserNotFound
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, store.ErrUserNotFound
}

func (m *mockUserStore) GetByUsername(_ context.Context, _ string) (*domain.User, error) {
	return nil, store.ErrUserNotFound
}

func (m *mockUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserStore) TouchLastLogin(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLoginTouched = append(m.lastLoginTouched, id)
	return nil
}

func (m *mockUserStore) TouchLastRequest(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastReqTouched = append(m.lastReqTouched, id)
	return nil
}

func (m *mockUserStore) WithTx(_ *sql.Tx) store.UserStore { return m }

// mockImageStore is an ImageStore with overridable Add behavior.
type mockImageStore struct {
	addFn func(ctx context.Context, name string) (*domain.Image, error)

	mu    sync.Mutex
	added []string
}

func (m *mockImageStore) List(_ context.Context) ([]domain.Image, error) { return nil, nil }

func (m *mockImageStore) Create(_ context.Context, i *domain.Image) error {
	i.ID = 1
	return nil
}

func (m *mockImageStore) GetOne(_ context.Context, _ squirrel.Sqlizer) (domain.Image, bool, error) {
	panic("not used in tests")
}

func (m *mockImageStore) Exists(_ context.Context, _ squirrel.Sqlizer) (bool, error) {
	panic("not used in tests")
}

func (m *mockImageStore) DeleteByID(_ context.Context, _ int64) error { return nil }

func (m *mockImageStore) Add(ctx context.Context, name string) (*domain.Image, error) {
	m.mu.Lock()
	m.added = append(m.added, name)
	m.mu.Unlock()
	if m.addFn != nil {
		return m.addFn(ctx, name)
	}
	return &domain.Image{ID: 1, Name: name}, nil
}

func (m *mockImageStore) GetByID(_ context.Context, _ int64) (*domain.Image, error) {
	return nil, store.ErrImageNotFound
}

func (m *mockImageStore) GetByName(_ context.Context, _ string) (*domain.Image, error) {
	return nil, store.ErrImageNotFound
}

func (m *mockImageStore) WithTx(_ *sql.Tx) store.ImageStore { return m }

// mockTranscoder returns canned output or a canned error.
type mockTranscoder struct {
	out []byte
	err error

	mu    sync.Mutex
	calls int
}

func (m *mockTranscoder) Transcode(_ []byte, _ int) ([]byte, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.out, nil
}

// mockPublisher records published messages or fails with a canned error.
type mockPublisher struct {
	err error

	mu        sync.Mutex
	published []queue.Message
}

func (m *mockPublisher) Publish(_ context.Context, msg queue.Message) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, msg)
	return nil
}

func (m *mockPublisher) Close() error { return nil }
