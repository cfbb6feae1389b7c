package domain

import "errors"

// Common validation errors for Category
var (
	ErrEmptyCategoryName   = errors.New("category name cannot be empty")
	ErrCategoryNameTooLong = errors.New("category name cannot exceed 255 characters")
)

// Category groups tasks under a human-readable label.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NewCategory creates a new Category with the given name.
// The ID is assigned by the database on insert.
// Returns an error if validation fails.
func NewCategory(name string) (*Category, error) {
	category := &Category{Name: name}

	if err := category.Validate(); err != nil {
		return nil, err
	}

	return category, nil
}

// Validate checks if the Category has valid data.
func (c *Category) Validate() error {
	if c.Name == "" {
		return ErrEmptyCategoryName
	}

	if len(c.Name) > 255 {
		return ErrCategoryNameTooLong
	}

	return nil
}
