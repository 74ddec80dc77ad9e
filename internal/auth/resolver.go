package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Resolver maps a verified external identity to a local user, provisioning
// one on first sign-in. Correctness under concurrent first sign-ins comes
// from the store's email uniqueness enforcement, not in-process locking.
type Resolver struct {
	repo Repository
	now  func() time.Time
}

// NewResolver creates a Resolver backed by the given user store.
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo, now: time.Now}
}

// Resolve finds the user for claims.Email or creates one with role USER and
// status ACTIVATED. The returned bool reports whether a new user was created
// by this call. An existing user is returned unchanged.
func (r *Resolver) Resolve(ctx context.Context, claims IdentityClaims) (*User, bool, error) {
	existing, err := r.repo.FindUserByEmail(ctx, claims.Email)
	if err != nil {
		return nil, false, fmt.Errorf("find user: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	now := r.now()
	user := User{
		ID:           uuid.New(),
		Email:        claims.Email,
		FirstName:    claims.GivenName,
		LastName:     claims.FamilyName,
		Role:         RoleUser,
		Status:       StatusActivated,
		RegisteredAt: now,
		LastVisitAt:  now,
	}

	created, err := r.repo.CreateUser(ctx, user)
	if errors.Is(err, ErrEmailTaken) {
		// A concurrent sign-in created the row between our lookup and
		// insert. The winner's account is the account.
		winner, findErr := r.repo.FindUserByEmail(ctx, claims.Email)
		if findErr != nil {
			return nil, false, fmt.Errorf("find user after conflict: %w", findErr)
		}
		if winner == nil {
			return nil, false, fmt.Errorf("user %q missing after uniqueness conflict", claims.Email)
		}
		return winner, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}

	return &created, true, nil
}
