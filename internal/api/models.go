package api

import (
	"time"

	"github.com/Morty67/kollectiv-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for the login endpoint.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID int64 `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"access_token"`
}

// UserResponse is the public view of a user account.
type UserResponse struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	LastLogin   *time.Time `json:"last_login"`
	LastRequest *time.Time `json:"last_request"`
}

// NewUserResponse maps a domain user to its public view.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		LastLogin:   u.LastLogin,
		LastRequest: u.LastRequest,
	}
}

// CategoryRequest defines the payload for creating a category.
type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// TaskRequest defines the payload for creating or updating a task.
// On update every field is applied; omitted optional fields clear
// their columns.
type TaskRequest struct {
	Title       string  `json:"title"       validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty"`
	CategoryID  *int64  `json:"category_id" validate:"omitempty,gt=0"`
	Priority    string  `json:"priority"    validate:"omitempty,oneof=low medium high"`
	UserID      int64   `json:"user_id"     validate:"required,gt=0"`
}
