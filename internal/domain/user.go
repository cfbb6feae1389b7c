package domain

import (
	"errors"
	"net/mail"
	"time"
)

// Common validation errors for User
var (
	ErrEmptyUserEmail    = errors.New("user email cannot be empty")
	ErrInvalidUserEmail  = errors.New("user email is invalid")
	ErrEmptyUsername     = errors.New("username cannot be empty")
	ErrUsernameTooLong   = errors.New("username cannot exceed 255 characters")
	ErrEmptyUserPassword = errors.New("user password cannot be empty")
	ErrPasswordTooShort  = errors.New("user password must be at least 8 characters")
)

// User represents a registered account holder.
// HashedPassword is stored as a bcrypt hash and never serialized.
type User struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	Username       string     `json:"username"`
	HashedPassword string     `json:"-"`
	LastLogin      *time.Time `json:"last_login"`
	LastRequest    *time.Time `json:"last_request"`
}

// NewUser creates a new User with the given email, username and
// plaintext password. The password is validated here and hashed by
// the service layer before the user is stored.
// Returns an error if validation fails.
func NewUser(email, username, password string) (*User, error) {
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	user := &User{
		Email:    email,
		Username: username,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// The password hash is not validated here since it is set separately.
func (u *User) Validate() error {
	if u.Email == "" {
		return ErrEmptyUserEmail
	}

	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ErrInvalidUserEmail
	}

	if u.Username == "" {
		return ErrEmptyUsername
	}

	if len(u.Username) > 255 {
		return ErrUsernameTooLong
	}

	return nil
}

// ValidatePassword checks plaintext password requirements before hashing.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrEmptyUserPassword
	}

	if len(password) < 8 {
		return ErrPasswordTooShort
	}

	return nil
}
