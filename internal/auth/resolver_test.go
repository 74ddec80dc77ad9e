package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type repoStub struct {
	findUserByEmail func(ctx context.Context, email string) (*User, error)
	createUser      func(ctx context.Context, user User) (User, error)
}

func (r *repoStub) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	if r.findUserByEmail != nil {
		return r.findUserByEmail(ctx, email)
	}
	return nil, nil
}

func (r *repoStub) CreateUser(ctx context.Context, user User) (User, error) {
	if r.createUser != nil {
		return r.createUser(ctx, user)
	}
	return user, nil
}

func TestResolveReturnsExistingUserUnchanged(t *testing.T) {
	existing := &User{
		ID:        uuid.New(),
		Email:     "a@x.com",
		FirstName: "Stored",
		LastName:  "Name",
		Role:      RoleAdmin,
		Status:    StatusActivated,
	}
	createCalled := false

	repo := &repoStub{
		findUserByEmail: func(ctx context.Context, email string) (*User, error) {
			if email != "a@x.com" {
				t.Fatalf("unexpected lookup email %q", email)
			}
			return existing, nil
		},
		createUser: func(ctx context.Context, user User) (User, error) {
			createCalled = true
			return user, nil
		},
	}

	resolver := NewResolver(repo)
	user, created, err := resolver.Resolve(context.Background(), IdentityClaims{Email: "a@x.com", GivenName: "Ann"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if created {
		t.Fatal("expected created=false for existing user")
	}
	if user != existing {
		t.Fatal("expected existing user to be returned as-is")
	}
	if user.FirstName != "Stored" || user.Role != RoleAdmin {
		t.Fatalf("expected stored profile to be untouched, got %+v", user)
	}
	if createCalled {
		t.Fatal("expected no create call for existing user")
	}
}

func TestResolveProvisionsNewUser(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var stored User

	repo := &repoStub{
		createUser: func(ctx context.Context, user User) (User, error) {
			stored = user
			return user, nil
		},
	}

	resolver := NewResolver(repo)
	resolver.now = func() time.Time { return now }

	claims := IdentityClaims{Email: "a@x.com", GivenName: "Ann", FamilyName: "Lee"}
	user, created, err := resolver.Resolve(context.Background(), claims)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !created {
		t.Fatal("expected created=true for a new user")
	}
	if stored.ID == uuid.Nil {
		t.Fatal("expected new user to receive an ID")
	}
	if stored.Email != "a@x.com" || stored.FirstName != "Ann" || stored.LastName != "Lee" {
		t.Fatalf("expected claims to populate the new user, got %+v", stored)
	}
	if stored.Role != RoleUser {
		t.Fatalf("expected role USER, got %q", stored.Role)
	}
	if stored.Status != StatusActivated {
		t.Fatalf("expected status ACTIVATED, got %q", stored.Status)
	}
	if !stored.RegisteredAt.Equal(now) || !stored.LastVisitAt.Equal(now) {
		t.Fatalf("expected both timestamps set to now, got %+v", stored)
	}
	if user.Email != stored.Email {
		t.Fatalf("expected stored user back, got %+v", user)
	}
}

func TestResolveRetriesLookupOnEmailConflict(t *testing.T) {
	winner := &User{ID: uuid.New(), Email: "a@x.com", FirstName: "Won"}
	lookups := 0

	repo := &repoStub{
		findUserByEmail: func(ctx context.Context, email string) (*User, error) {
			lookups++
			if lookups == 1 {
				// First lookup misses; the concurrent sign-in has not
				// committed yet.
				return nil, nil
			}
			return winner, nil
		},
		createUser: func(ctx context.Context, user User) (User, error) {
			return User{}, ErrEmailTaken
		},
	}

	resolver := NewResolver(repo)
	user, created, err := resolver.Resolve(context.Background(), IdentityClaims{Email: "a@x.com"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if created {
		t.Fatal("expected created=false after losing the race")
	}
	if user != winner {
		t.Fatalf("expected the winner's row, got %+v", user)
	}
	if lookups != 2 {
		t.Fatalf("expected exactly two lookups, got %d", lookups)
	}
}

func TestResolveFailsWhenUserMissingAfterConflict(t *testing.T) {
	repo := &repoStub{
		createUser: func(ctx context.Context, user User) (User, error) {
			return User{}, ErrEmailTaken
		},
	}

	resolver := NewResolver(repo)
	_, _, err := resolver.Resolve(context.Background(), IdentityClaims{Email: "a@x.com"})
	if err == nil || !strings.Contains(err.Error(), "missing after uniqueness conflict") {
		t.Fatalf("expected conflict escalation error, got %v", err)
	}
}

func TestResolveSurfacesLookupError(t *testing.T) {
	repo := &repoStub{
		findUserByEmail: func(ctx context.Context, email string) (*User, error) {
			return nil, errors.New("store down")
		},
	}

	resolver := NewResolver(repo)
	_, _, err := resolver.Resolve(context.Background(), IdentityClaims{Email: "a@x.com"})
	if err == nil || !strings.Contains(err.Error(), "find user") {
		t.Fatalf("expected find user error, got %v", err)
	}
}

func TestResolveSurfacesCreateError(t *testing.T) {
	repo := &repoStub{
		createUser: func(ctx context.Context, user User) (User, error) {
			return User{}, errors.New("store down")
		},
	}

	resolver := NewResolver(repo)
	_, _, err := resolver.Resolve(context.Background(), IdentityClaims{Email: "a@x.com"})
	if err == nil || !strings.Contains(err.Error(), "create user") {
		t.Fatalf("expected create user error, got %v", err)
	}
}

func TestInMemoryRepositoryEnforcesEmailUniqueness(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	first := User{ID: uuid.New(), Email: "a@x.com"}
	if _, err := repo.CreateUser(ctx, first); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	_, err := repo.CreateUser(ctx, User{ID: uuid.New(), Email: "a@x.com"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	found, err := repo.FindUserByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("FindUserByEmail returned error: %v", err)
	}
	if found == nil || found.ID != first.ID {
		t.Fatalf("expected the first user to win, got %+v", found)
	}
}
