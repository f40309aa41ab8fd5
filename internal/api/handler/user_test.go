package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fanleague/fanleague/internal/api/handler"
	"github.com/fanleague/fanleague/internal/auth"
)

// --- Mock User Service ---

type mockUserService struct {
	users       map[uuid.UUID]*auth.User
	roles       []auth.Role
	ensured     []string
	addToRoleFn func(ctx context.Context, u *auth.User, roleName string) error
}

func newMockUserService(users ...*auth.User) *mockUserService {
	m := &mockUserService{users: make(map[uuid.UUID]*auth.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserService) GetUserByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, auth.ErrUserNotFound
}

func (m *mockUserService) GetUserByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, u := range m.users {
		if auth.NormalizeEmail(u.Email) == auth.NormalizeEmail(email) {
			return u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (m *mockUserService) EnsureRole(_ context.Context, name string) error {
	m.ensured = append(m.ensured, name)
	return nil
}

func (m *mockUserService) ListRoles(_ context.Context) ([]auth.Role, error) {
	return m.roles, nil
}

func (m *mockUserService) AddUserToRole(ctx context.Context, u *auth.User, roleName string) error {
	if m.addToRoleFn != nil {
		return m.addToRoleFn(ctx, u, roleName)
	}
	u.Roles.Add(roleName)
	return nil
}

func (m *mockUserService) IsUserInRole(_ context.Context, u *auth.User, roleName string) (bool, error) {
	return u.Roles.Contains(roleName), nil
}

func sampleUser(email string, roles ...string) *auth.User {
	now := time.Now().UTC()
	return &auth.User{
		ID:             uuid.New(),
		Email:          email,
		EmailConfirmed: true,
		Roles:          auth.NewRoleSet(roles...),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// ===== GET /api/users/{id} and /api/users?email= =====

func TestUserGetByID(t *testing.T) {
	t.Parallel()

	u := sampleUser("fan@example.com")
	h := handler.NewUserHandler(newMockUserService(u))

	req, w := makeChiRequest(http.MethodGet, "/api/users/"+u.ID.String(), nil, map[string]string{"id": u.ID.String()})
	h.GetByID(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "fan@example.com", data["email"])
	assert.Nil(t, data["lockoutEnd"])
	assert.NotContains(t, w.Body.String(), "passwordHash")
	assert.NotContains(t, w.Body.String(), "securityStamp")

	missing := uuid.NewString()
	req, w = makeChiRequest(http.MethodGet, "/api/users/"+missing, nil, map[string]string{"id": missing})
	h.GetByID(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserFindByEmail(t *testing.T) {
	t.Parallel()

	u := sampleUser("Fan@Example.com")
	h := handler.NewUserHandler(newMockUserService(u))

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"case-insensitive match", "?email=fan@example.com", http.StatusOK},
		{"unknown", "?email=ghost@example.com", http.StatusNotFound},
		{"missing parameter", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, w := makeChiRequest(http.MethodGet, "/api/users"+tt.query, nil, nil)
			h.FindByEmail(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

// ===== Roles =====

func TestUserEnsureRole(t *testing.T) {
	t.Parallel()

	svc := newMockUserService()
	h := handler.NewUserHandler(svc)

	req, w := makeChiRequest(http.MethodPost, "/api/roles", mustJSON(t, map[string]string{"name": " Moderator "}), nil)
	h.EnsureRole(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{" Moderator "}, svc.ensured)
	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Moderator", data["name"])

	req, w = makeChiRequest(http.MethodPost, "/api/roles", mustJSON(t, map[string]string{"name": ""}), nil)
	h.EnsureRole(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserListRoles(t *testing.T) {
	t.Parallel()

	svc := newMockUserService()
	svc.roles = []auth.Role{{ID: uuid.New(), Name: "Admin", NormalizedName: "ADMIN"}}
	h := handler.NewUserHandler(svc)

	req, w := makeChiRequest(http.MethodGet, "/api/roles", nil, nil)
	h.ListRoles(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := parseEnvelope(t, w)["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "Admin", data[0].(map[string]interface{})["name"])
}

func TestUserAddToRole(t *testing.T) {
	t.Parallel()

	u := sampleUser("fan@example.com")
	svc := newMockUserService(u)
	svc.addToRoleFn = func(_ context.Context, u *auth.User, roleName string) error {
		if auth.NormalizeRoleName(roleName) != "ADMIN" {
			return auth.ErrRoleNotFound
		}
		u.Roles.Add("Admin")
		return nil
	}
	h := handler.NewUserHandler(svc)
	params := map[string]string{"id": u.ID.String()}

	req, w := makeChiRequest(http.MethodPost, "/api/users/x/roles", mustJSON(t, map[string]string{"name": "admin"}), params)
	h.AddToRole(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{"Admin"}, data["roles"])

	req, w = makeChiRequest(http.MethodPost, "/api/users/x/roles", mustJSON(t, map[string]string{"name": "Ghost"}), params)
	h.AddToRole(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ROLE_NOT_FOUND", errorCode(t, w))
}

func TestUserIsInRole(t *testing.T) {
	t.Parallel()

	u := sampleUser("fan@example.com", "Admin")
	h := handler.NewUserHandler(newMockUserService(u))

	tests := []struct {
		role string
		want bool
	}{
		{"admin", true},
		{"Admin", true},
		{"Moderator", false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			params := map[string]string{"id": u.ID.String(), "role": tt.role}
			req, w := makeChiRequest(http.MethodGet, "/api/users/x/roles/"+tt.role, nil, params)
			h.IsInRole(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			data := parseEnvelope(t, w)["data"].(map[string]interface{})
			assert.Equal(t, tt.want, data["member"])
		})
	}
}
