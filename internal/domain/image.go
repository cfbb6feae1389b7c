package domain

import "errors"

// Common validation errors for Image
var (
	ErrEmptyImageName   = errors.New("image name cannot be empty")
	ErrImageNameTooLong = errors.New("image name cannot exceed 63 characters")
)

// Image records the filename of an optimized upload.
// Names are unique across the table.
type Image struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NewImage creates a new Image record with the given filename.
// The ID is assigned by the database on insert.
// Returns an error if validation fails.
func NewImage(name string) (*Image, error) {
	image := &Image{Name: name}

	if err := image.Validate(); err != nil {
		return nil, err
	}

	return image, nil
}

// Validate checks if the Image has valid data.
func (i *Image) Validate() error {
	if i.Name == "" {
		return ErrEmptyImageName
	}

	if len(i.Name) > 63 {
		return ErrImageNameTooLong
	}

	return nil
}
