package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when a user record is not found.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateEmail is returned when a user with the same email already exists.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrStaleSecurityStamp is returned when a conditional update finds the
// security stamp changed since it was read.
var ErrStaleSecurityStamp = errors.New("security stamp changed")

// ErrRoleNotFound is returned when a role was referenced before it was created.
var ErrRoleNotFound = errors.New("role not found")

// ErrSessionNotFound is returned when a session is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// UserRepository provides operations on the users table.
type UserRepository interface {
	// Create inserts the user and its memberships in roleIDs in one
	// transaction. A missing role fails with ErrRoleNotFound and leaves no user.
	Create(ctx context.Context, user *User, roleIDs ...uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByNormalizedEmail(ctx context.Context, normalizedEmail string) (*User, error)
	// ConfirmEmail marks the user confirmed and swaps the security stamp,
	// provided the stored stamp still equals expectedStamp and the user is
	// not yet confirmed. Otherwise it returns ErrStaleSecurityStamp.
	ConfirmEmail(ctx context.Context, id uuid.UUID, expectedStamp, newStamp string) error
	// RecordFailedAccess increments the failed-attempt counter. When the
	// counter reaches maxAttempts it is reset and the lockout window is
	// opened for lockoutFor. Returns the resulting lockout end, if any.
	RecordFailedAccess(ctx context.Context, id uuid.UUID, maxAttempts int, lockoutFor time.Duration) (*time.Time, error)
	ResetFailedAccess(ctx context.Context, id uuid.UUID) error
}

// RoleRepository provides operations on the roles and user_roles tables.
type RoleRepository interface {
	// Ensure creates the role if no role with the same normalized name exists.
	Ensure(ctx context.Context, name string) error
	GetByNormalizedName(ctx context.Context, normalizedName string) (*Role, error)
	List(ctx context.Context) ([]Role, error)
	AddMember(ctx context.Context, userID, roleID uuid.UUID) error
	IsMember(ctx context.Context, userID uuid.UUID, normalizedName string) (bool, error)
}

// SessionStore persists sessions with a bounded lifetime.
type SessionStore interface {
	Create(ctx context.Context, session *Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Session, error)
	// Delete removes the session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, id string) error
}
