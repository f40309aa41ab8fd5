package auth

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Well-known roles provisioned at startup.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// User represents a row in the users table together with its role memberships.
type User struct {
	ID                uuid.UUID
	Email             string
	NormalizedEmail   string
	PasswordHash      string
	EmailConfirmed    bool
	SecurityStamp     string
	AccessFailedCount int
	LockoutEnd        *time.Time
	LockoutEnabled    bool
	Roles             RoleSet
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsLockedOut reports whether the lockout window is still open at now.
func (u *User) IsLockedOut(now time.Time) bool {
	return u.LockoutEnabled && u.LockoutEnd != nil && u.LockoutEnd.After(now)
}

// Role represents a row in the roles table.
type Role struct {
	ID             uuid.UUID
	Name           string
	NormalizedName string
	CreatedAt      time.Time
}

// RoleSet is a case-insensitive set of role names. The zero value is empty
// and ready to use.
type RoleSet struct {
	names map[string]string // normalized -> display name
}

// NewRoleSet returns a set holding the given role names.
func NewRoleSet(names ...string) RoleSet {
	var s RoleSet
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts name into the set. Adding an existing name is a no-op.
func (s *RoleSet) Add(name string) {
	key := NormalizeRoleName(name)
	if key == "" {
		return
	}
	if s.names == nil {
		s.names = make(map[string]string)
	}
	if _, ok := s.names[key]; !ok {
		s.names[key] = strings.TrimSpace(name)
	}
}

// Contains reports whether name is in the set.
func (s RoleSet) Contains(name string) bool {
	_, ok := s.names[NormalizeRoleName(name)]
	return ok
}

// Len returns the number of roles in the set.
func (s RoleSet) Len() int {
	return len(s.names)
}

// Names returns the display names in sorted order.
func (s RoleSet) Names() []string {
	out := make([]string, 0, len(s.names))
	for _, n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// LoginRequest carries the credentials submitted to Login.
type LoginRequest struct {
	Email    string
	Password string
	Remember bool
}

// Session is an authenticated browser session held in the session store.
type Session struct {
	ID        string    `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Remember  bool      `json:"remember"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Identity is stored in the request context after authentication.
type Identity struct {
	UserID    uuid.UUID
	Email     string
	Roles     RoleSet
	SessionID string
}

// HasRole reports whether the identity is a member of role.
func (i *Identity) HasRole(role string) bool {
	return i.Roles.Contains(role)
}

// NormalizeEmail returns the lookup key for an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeRoleName returns the lookup key for a role name.
func NormalizeRoleName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
