package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fanleague/fanleague/internal/mail"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
// The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrNotAllowed is returned when the credentials are valid but the account
// may not sign in yet (email not confirmed).
var ErrNotAllowed = errors.New("sign-in not allowed")

// ErrLockedOut is returned while an account is locked after repeated failures.
var ErrLockedOut = errors.New("account locked out")

// ErrInvalidRoleName is returned for a blank role name.
var ErrInvalidRoleName = errors.New("role name is required")

// ErrAdminPasswordRequired is returned by BootstrapAdmin when an admin email
// is configured without a password.
var ErrAdminPasswordRequired = errors.New("admin password is required")

// ServiceConfig holds the identity policy knobs.
type ServiceConfig struct {
	BcryptCost         int
	SessionTTL         time.Duration
	RememberSessionTTL time.Duration
	LockoutMaxAttempts int
	LockoutDuration    time.Duration
	// BaseURL is the public origin used to build confirmation links.
	BaseURL string
}

// Service sequences the identity workflows over the credential store,
// the session store, the token manager and the mail sender.
type Service struct {
	users     UserRepository
	roles     RoleRepository
	sessions  SessionStore
	tokens    *TokenManager
	mailer    mail.Sender
	cfg       ServiceConfig
	now       func() time.Time
	dummyHash []byte
}

// NewService creates a new identity Service.
func NewService(users UserRepository, roles RoleRepository, sessions SessionStore, tokens *TokenManager, mailer mail.Sender, cfg ServiceConfig) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.LockoutMaxAttempts <= 0 {
		cfg.LockoutMaxAttempts = 5
	}

	// Compared against when the email is unknown so both failure paths cost one bcrypt.
	dummy, err := bcrypt.GenerateFromPassword([]byte("fanleague-dummy-password"), cfg.BcryptCost)
	if err != nil {
		slog.Error("failed to prepare dummy password hash", "error", err)
	}

	return &Service{
		users:     users,
		roles:     roles,
		sessions:  sessions,
		tokens:    tokens,
		mailer:    mailer,
		cfg:       cfg,
		now:       time.Now,
		dummyHash: dummy,
	}
}

// WithClock replaces the service clock. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetUserByEmail looks a user up by email, case-insensitively.
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return nil, ErrUserNotFound
	}
	return s.users.GetByNormalizedEmail(ctx, normalized)
}

// GetUserByID looks a user up by id.
func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	if id == uuid.Nil {
		return nil, ErrUserNotFound
	}
	return s.users.GetByID(ctx, id)
}

// Register creates an unconfirmed account in the default role and mails a
// confirmation link. The user row and its role membership are written in one
// transaction. A mail delivery failure is logged, not returned: the account
// exists and the link can be re-sent.
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	if err := s.EnsureRole(ctx, RoleUser); err != nil {
		return nil, fmt.Errorf("ensuring role %s: %w", RoleUser, err)
	}

	u, err := s.createUser(ctx, email, password, false, RoleUser)
	if err != nil {
		return nil, err
	}

	slog.Info("user registered", "userId", u.ID)

	if err := s.sendConfirmation(ctx, u); err != nil {
		slog.Error("failed to send confirmation email", "error", err, "userId", u.ID)
	}

	return u, nil
}

// ResendConfirmation mails a fresh confirmation link. Unknown or already
// confirmed addresses succeed silently.
func (s *Service) ResendConfirmation(ctx context.Context, email string) error {
	u, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("finding user: %w", err)
	}

	if u.EmailConfirmed {
		return nil
	}

	return s.sendConfirmation(ctx, u)
}

// GenerateEmailConfirmationToken issues a token bound to the user's current
// security stamp. It does not write to the store.
func (s *Service) GenerateEmailConfirmationToken(_ context.Context, u *User) (string, error) {
	if u == nil {
		return "", ErrUserNotFound
	}
	return s.tokens.Generate(PurposeEmailConfirmation, u.ID, u.SecurityStamp)
}

// ConfirmEmail validates token for u and marks the account confirmed. The
// stamp rotates on success, so replaying the token fails with ErrInvalidToken.
func (s *Service) ConfirmEmail(ctx context.Context, u *User, token string) error {
	if u == nil {
		return ErrUserNotFound
	}

	current, err := s.users.GetByID(ctx, u.ID)
	if err != nil {
		return err
	}

	claims, err := s.tokens.Validate(PurposeEmailConfirmation, token)
	if err != nil {
		return ErrInvalidToken
	}

	if claims.Subject != current.ID.String() ||
		claims.Stamp != current.SecurityStamp ||
		current.EmailConfirmed {
		return ErrInvalidToken
	}

	newStamp, err := newSecurityStamp()
	if err != nil {
		return err
	}

	if err := s.users.ConfirmEmail(ctx, current.ID, claims.Stamp, newStamp); err != nil {
		if errors.Is(err, ErrStaleSecurityStamp) {
			return ErrInvalidToken
		}
		return fmt.Errorf("confirming email: %w", err)
	}

	u.EmailConfirmed = true
	u.SecurityStamp = newStamp

	slog.Info("email confirmed", "userId", u.ID)
	return nil
}

// EnsureRole creates the role if it does not exist yet.
func (s *Service) EnsureRole(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidRoleName
	}
	return s.roles.Ensure(ctx, strings.TrimSpace(name))
}

// ListRoles returns every role.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.roles.List(ctx)
}

// AddUserToRole grants roleName to u. The role must already exist.
func (s *Service) AddUserToRole(ctx context.Context, u *User, roleName string) error {
	if u == nil {
		return ErrUserNotFound
	}

	role, err := s.roles.GetByNormalizedName(ctx, NormalizeRoleName(roleName))
	if err != nil {
		return err
	}

	if err := s.roles.AddMember(ctx, u.ID, role.ID); err != nil {
		return err
	}

	u.Roles.Add(role.Name)
	return nil
}

// IsUserInRole reports whether u holds roleName according to the store.
func (s *Service) IsUserInRole(ctx context.Context, u *User, roleName string) (bool, error) {
	if u == nil {
		return false, ErrUserNotFound
	}
	return s.roles.IsMember(ctx, u.ID, NormalizeRoleName(roleName))
}

// Login checks, in order: the account exists, it is not locked out, the
// password matches, and the email is confirmed. On success it opens a session.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	u, err := s.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("finding user: %w", err)
	}

	now := s.now()
	// Lockout precedes the password check: a locked account rejects even the right password.
	if u.IsLockedOut(now) {
		return nil, ErrLockedOut
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, fmt.Errorf("comparing password: %w", err)
		}
		return nil, s.recordFailure(ctx, u, now)
	}

	if !u.EmailConfirmed {
		return nil, ErrNotAllowed
	}

	if u.AccessFailedCount > 0 || u.LockoutEnd != nil {
		if err := s.users.ResetFailedAccess(ctx, u.ID); err != nil {
			return nil, fmt.Errorf("resetting failed access: %w", err)
		}
	}

	session, err := s.createSession(ctx, u.ID, req.Remember)
	if err != nil {
		return nil, err
	}

	slog.Info("user logged in", "userId", u.ID, "remember", req.Remember)
	return session, nil
}

// Logout destroys the session. Unknown or empty ids are a no-op.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Authenticate resolves a session id to the caller's Identity.
func (s *Service) Authenticate(ctx context.Context, sessionID string) (*Identity, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading session user: %w", err)
	}

	return &Identity{
		UserID:    u.ID,
		Email:     u.Email,
		Roles:     u.Roles,
		SessionID: session.ID,
	}, nil
}

// BootstrapAdmin provisions the built-in roles and, when email is set and
// unknown, creates a confirmed administrator. A blank password with an email
// set fails with ErrAdminPasswordRequired. Reports whether a user was created.
func (s *Service) BootstrapAdmin(ctx context.Context, email, password string) (bool, error) {
	for _, role := range []string{RoleAdmin, RoleUser} {
		if err := s.EnsureRole(ctx, role); err != nil {
			return false, fmt.Errorf("ensuring role %s: %w", role, err)
		}
	}

	if strings.TrimSpace(email) == "" {
		return false, nil
	}
	if password == "" {
		return false, ErrAdminPasswordRequired
	}

	existing, err := s.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return false, s.AddUserToRole(ctx, existing, RoleAdmin)
	case !errors.Is(err, ErrUserNotFound):
		return false, fmt.Errorf("finding admin: %w", err)
	}

	u, err := s.createUser(ctx, email, password, true, RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("creating admin: %w", err)
	}

	slog.Info("admin user created", "userId", u.ID)
	return true, nil
}

// createUser stores a new user holding roleName. The role must exist.
func (s *Service) createUser(ctx context.Context, email, password string, confirmed bool, roleName string) (*User, error) {
	role, err := s.roles.GetByNormalizedName(ctx, NormalizeRoleName(roleName))
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	stamp, err := newSecurityStamp()
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:           strings.TrimSpace(email),
		NormalizedEmail: NormalizeEmail(email),
		PasswordHash:    string(hash),
		EmailConfirmed:  confirmed,
		SecurityStamp:   stamp,
		LockoutEnabled:  true,
	}

	if err := s.users.Create(ctx, u, role.ID); err != nil {
		return nil, err
	}
	u.Roles.Add(role.Name)
	return u, nil
}

func (s *Service) recordFailure(ctx context.Context, u *User, now time.Time) error {
	if !u.LockoutEnabled {
		return ErrInvalidCredentials
	}

	lockoutEnd, err := s.users.RecordFailedAccess(ctx, u.ID, s.cfg.LockoutMaxAttempts, s.cfg.LockoutDuration)
	if err != nil {
		return fmt.Errorf("recording failed access: %w", err)
	}

	if lockoutEnd != nil && lockoutEnd.After(now) {
		slog.Warn("user locked out", "userId", u.ID, "until", lockoutEnd.UTC())
		return ErrLockedOut
	}
	return ErrInvalidCredentials
}

func (s *Service) createSession(ctx context.Context, userID uuid.UUID, remember bool) (*Session, error) {
	id, err := randomHex(32)
	if err != nil {
		return nil, fmt.Errorf("generating session id: %w", err)
	}

	ttl := s.cfg.SessionTTL
	if remember {
		ttl = s.cfg.RememberSessionTTL
	}

	now := s.now()
	session := &Session{
		ID:        id,
		UserID:    userID,
		Remember:  remember,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	if err := s.sessions.Create(ctx, session, ttl); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return session, nil
}

func (s *Service) sendConfirmation(ctx context.Context, u *User) error {
	token, err := s.GenerateEmailConfirmationToken(ctx, u)
	if err != nil {
		return fmt.Errorf("generating confirmation token: %w", err)
	}

	link := fmt.Sprintf("%s/confirm-email?userId=%s&token=%s",
		strings.TrimRight(s.cfg.BaseURL, "/"), u.ID, url.QueryEscape(token))

	return s.mailer.Send(ctx, mail.Message{
		To:      u.Email,
		Subject: "Confirm your fanleague account",
		Body:    "Welcome to fanleague!\n\nConfirm your email address by opening this link:\n\n" + link + "\n",
	})
}

func newSecurityStamp() (string, error) {
	stamp, err := randomHex(16)
	if err != nil {
		return "", fmt.Errorf("generating security stamp: %w", err)
	}
	return stamp, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
