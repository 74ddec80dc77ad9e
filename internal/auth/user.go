package auth

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser      Role = "USER"
	RoleModerator Role = "MODERATOR"
	RoleAdmin     Role = "ADMIN"
)

// Valid reports whether the role is a known member of the set.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// Status is the closed set of account lifecycle states.
type Status string

const (
	StatusActivated   Status = "ACTIVATED"
	StatusDeactivated Status = "DEACTIVATED"
	StatusBlocked     Status = "BLOCKED"
)

// Valid reports whether the status is a known member of the set.
func (s Status) Valid() bool {
	switch s {
	case StatusActivated, StatusDeactivated, StatusBlocked:
		return true
	}
	return false
}

// User represents a local account. Email uniquely identifies at most one User;
// the store enforces that, not this package.
type User struct {
	ID           uuid.UUID
	Email        string
	FirstName    string
	LastName     string
	Role         Role
	Status       Status
	RegisteredAt time.Time
	LastVisitAt  time.Time
}
