package domain

import "errors"

// Priority represents the urgency level of a task
type Priority string

// Possible task priority values
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Common validation errors for Task
var (
	ErrEmptyTaskTitle   = errors.New("task title cannot be empty")
	ErrTaskTitleTooLong = errors.New("task title cannot exceed 255 characters")
	ErrEmptyTaskUserID  = errors.New("task user ID cannot be empty")
	ErrInvalidPriority  = errors.New("invalid task priority")
)

// ParsePriority converts a raw string into a Priority.
// An empty string yields PriorityMedium, matching the column default.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(s), nil
	case "":
		return PriorityMedium, nil
	default:
		return "", ErrInvalidPriority
	}
}

// Valid reports whether p is one of the recognized priority values.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task represents a unit of work owned by a user, optionally
// filed under a category.
type Task struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	CategoryID  *int64   `json:"category_id"`
	Priority    Priority `json:"priority"`
	UserID      int64    `json:"user_id"`
}

// NewTask creates a new Task with the given fields. A zero priority
// defaults to medium. The ID is assigned by the database on insert.
// Returns an error if validation fails.
func NewTask(title string, description *string, categoryID *int64, priority Priority, userID int64) (*Task, error) {
	if priority == "" {
		priority = PriorityMedium
	}

	task := &Task{
		Title:       title,
		Description: description,
		CategoryID:  categoryID,
		Priority:    priority,
		UserID:      userID,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.Title == "" {
		return ErrEmptyTaskTitle
	}

	if len(t.Title) > 255 {
		return ErrTaskTitleTooLong
	}

	if t.UserID == 0 {
		return ErrEmptyTaskUserID
	}

	if !t.Priority.Valid() {
		return ErrInvalidPriority
	}

	return nil
}
