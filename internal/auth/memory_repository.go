package auth

import (
	"context"
	"sync"
)

// InMemoryRepository stores users in an in-process map keyed by email, ideal
// for local development or tests. It enforces the same email uniqueness the
// Postgres store does.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewInMemoryRepository constructs an empty in-memory user store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{users: make(map[string]User)}
}

// FindUserByEmail returns the user with the given email, or nil if absent.
func (r *InMemoryRepository) FindUserByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[email]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// CreateUser inserts a new user, returning ErrEmailTaken when the email is
// already present.
func (r *InMemoryRepository) CreateUser(_ context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Email]; ok {
		return User{}, ErrEmailTaken
	}
	r.users[user.Email] = user
	return user, nil
}
