package auth_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fanleague/fanleague/internal/auth"
	"github.com/fanleague/fanleague/internal/mail"
)

// --- In-memory credential store ---

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*auth.User
	roles *memRoleRepo
	now   func() time.Time

	getByEmailErr error
	createErr     error
}

func newMemUserRepo(roles *memRoleRepo) *memUserRepo {
	return &memUserRepo{
		users: make(map[uuid.UUID]*auth.User),
		roles: roles,
		now:   time.Now,
	}
}

func (m *memUserRepo) Create(_ context.Context, u *auth.User, roleIDs ...uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.NormalizedEmail == u.NormalizedEmail {
			return auth.ErrDuplicateEmail
		}
	}
	if m.createErr != nil {
		return m.createErr
	}
	for _, roleID := range roleIDs {
		if !m.roles.hasRole(roleID) {
			return auth.ErrRoleNotFound
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = m.now()
	u.UpdatedAt = u.CreatedAt
	stored := *u
	stored.Roles = auth.NewRoleSet()
	m.users[u.ID] = &stored
	for _, roleID := range roleIDs {
		m.roles.addMember(u.ID, roleID)
	}
	return nil
}

func (m *memUserRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func (m *memUserRepo) snapshot(u *auth.User) *auth.User {
	cp := *u
	if u.LockoutEnd != nil {
		end := *u.LockoutEnd
		cp.LockoutEnd = &end
	}
	cp.Roles = auth.NewRoleSet(m.roles.rolesOf(u.ID)...)
	return &cp
}

func (m *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return m.snapshot(u), nil
}

func (m *memUserRepo) GetByNormalizedEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getByEmailErr != nil {
		return nil, m.getByEmailErr
	}
	for _, u := range m.users {
		if u.NormalizedEmail == email {
			return m.snapshot(u), nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (m *memUserRepo) ConfirmEmail(_ context.Context, id uuid.UUID, expectedStamp, newStamp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	if u.SecurityStamp != expectedStamp || u.EmailConfirmed {
		return auth.ErrStaleSecurityStamp
	}
	u.EmailConfirmed = true
	u.SecurityStamp = newStamp
	return nil
}

func (m *memUserRepo) RecordFailedAccess(_ context.Context, id uuid.UUID, maxAttempts int, lockoutFor time.Duration) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	u.AccessFailedCount++
	if u.AccessFailedCount >= maxAttempts {
		u.AccessFailedCount = 0
		end := m.now().Add(lockoutFor)
		u.LockoutEnd = &end
	}
	if u.LockoutEnd == nil {
		return nil, nil
	}
	end := *u.LockoutEnd
	return &end, nil
}

func (m *memUserRepo) ResetFailedAccess(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.AccessFailedCount = 0
	u.LockoutEnd = nil
	return nil
}

func (m *memUserRepo) stored(id uuid.UUID) auth.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.users[id]
}

type memRoleRepo struct {
	mu      sync.Mutex
	roles   map[string]*auth.Role // normalized name -> role
	members map[uuid.UUID]map[uuid.UUID]bool

	ensureErr error
}

func newMemRoleRepo() *memRoleRepo {
	return &memRoleRepo{
		roles:   make(map[string]*auth.Role),
		members: make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (m *memRoleRepo) Ensure(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ensureErr != nil {
		err := m.ensureErr
		m.ensureErr = nil
		return err
	}
	key := auth.NormalizeRoleName(name)
	if _, ok := m.roles[key]; !ok {
		m.roles[key] = &auth.Role{ID: uuid.New(), Name: name, NormalizedName: key, CreatedAt: time.Now()}
	}
	return nil
}

func (m *memRoleRepo) GetByNormalizedName(_ context.Context, normalizedName string) (*auth.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.roles[normalizedName]
	if !ok {
		return nil, auth.ErrRoleNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRoleRepo) List(_ context.Context) ([]auth.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]auth.Role, 0, len(m.roles))
	for _, r := range m.roles {
		out = append(out, *r)
	}
	return out, nil
}

func (m *memRoleRepo) AddMember(_ context.Context, userID, roleID uuid.UUID) error {
	m.addMember(userID, roleID)
	return nil
}

func (m *memRoleRepo) addMember(userID, roleID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.members[userID] == nil {
		m.members[userID] = make(map[uuid.UUID]bool)
	}
	m.members[userID][roleID] = true
}

func (m *memRoleRepo) hasRole(roleID uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.roles {
		if r.ID == roleID {
			return true
		}
	}
	return false
}

func (m *memRoleRepo) IsMember(_ context.Context, userID uuid.UUID, normalizedName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.roles[normalizedName]
	if !ok {
		return false, nil
	}
	return m.members[userID][r.ID], nil
}

func (m *memRoleRepo) rolesOf(userID uuid.UUID) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for _, r := range m.roles {
		if m.members[userID][r.ID] {
			names = append(names, r.Name)
		}
	}
	return names
}

func (m *memRoleRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.roles)
}

// --- Session store and mailer ---

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*auth.Session
	ttls     map[string]time.Duration
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{
		sessions: make(map[string]*auth.Session),
		ttls:     make(map[string]time.Duration),
	}
}

func (m *memSessionStore) Create(_ context.Context, s *auth.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.ID] = &cp
	m.ttls[s.ID] = ttl
	return nil
}

func (m *memSessionStore) Get(_ context.Context, id string) (*auth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, auth.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	delete(m.ttls, id)
	return nil
}

func (m *memSessionStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (r *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingMailer) messages() []mail.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mail.Message(nil), r.sent...)
}
