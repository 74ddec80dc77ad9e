package auth

import (
	"context"
	"errors"
)

// ErrEmailTaken is returned by CreateUser when another row already holds the
// email. The resolver treats it as "a concurrent sign-in won the race".
var ErrEmailTaken = errors.New("email already registered")

// Repository defines the interface for user persistence.
type Repository interface {
	// FindUserByEmail returns the user with the given email, or nil if absent.
	FindUserByEmail(ctx context.Context, email string) (*User, error)

	// CreateUser inserts a new user. It returns ErrEmailTaken when the email
	// uniqueness constraint rejects the insert.
	CreateUser(ctx context.Context, user User) (User, error)
}
