package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fanleague/fanleague/internal/api/middleware"
	"github.com/fanleague/fanleague/internal/api/response"
	"github.com/fanleague/fanleague/internal/api/validation"
	"github.com/fanleague/fanleague/internal/auth"
)

// UserService is the user and role administration used by the admin endpoints.
type UserService interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error)
	GetUserByEmail(ctx context.Context, email string) (*auth.User, error)
	EnsureRole(ctx context.Context, name string) error
	ListRoles(ctx context.Context) ([]auth.Role, error)
	AddUserToRole(ctx context.Context, u *auth.User, roleName string) error
	IsUserInRole(ctx context.Context, u *auth.User, roleName string) (bool, error)
}

type userResponse struct {
	ID                string   `json:"id"`
	Email             string   `json:"email"`
	EmailConfirmed    bool     `json:"emailConfirmed"`
	Roles             []string `json:"roles"`
	AccessFailedCount int      `json:"accessFailedCount"`
	LockoutEnd        *string  `json:"lockoutEnd"`
	CreatedAt         string   `json:"createdAt"`
	UpdatedAt         string   `json:"updatedAt"`
}

func toUserResponse(u *auth.User) userResponse {
	resp := userResponse{
		ID:                u.ID.String(),
		Email:             u.Email,
		EmailConfirmed:    u.EmailConfirmed,
		Roles:             u.Roles.Names(),
		AccessFailedCount: u.AccessFailedCount,
		CreatedAt:         formatTime(u.CreatedAt),
		UpdatedAt:         formatTime(u.UpdatedAt),
	}
	if u.LockoutEnd != nil {
		end := formatTime(*u.LockoutEnd)
		resp.LockoutEnd = &end
	}
	return resp
}

type roleRequest struct {
	Name string `json:"name"`
}

type roleResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

type membershipResponse struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Member bool   `json:"member"`
}

// UserHandler handles user lookup and role administration.
type UserHandler struct {
	svc UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// GetByID handles GET /api/users/{id}.
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	u, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	response.Success(w, http.StatusOK, toUserResponse(u), middleware.GetRequestID(r.Context()))
}

// FindByEmail handles GET /api/users?email=.
func (h *UserHandler) FindByEmail(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
			[]validation.FieldError{{Field: "email", Message: "email is required"}}, requestID)
		return
	}

	u, err := h.svc.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		response.StoreErr(w, err, "failed to find user by email", requestID)
		return
	}

	response.Success(w, http.StatusOK, toUserResponse(u), requestID)
}

// ListRoles handles GET /api/roles.
func (h *UserHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	roles, err := h.svc.ListRoles(r.Context())
	if err != nil {
		response.StoreErr(w, err, "failed to list roles", requestID)
		return
	}

	items := make([]roleResponse, 0, len(roles))
	for _, role := range roles {
		items = append(items, roleResponse{
			ID:        role.ID.String(),
			Name:      role.Name,
			CreatedAt: formatTime(role.CreatedAt),
		})
	}

	response.SuccessList(w, http.StatusOK, items, len(items), requestID)
}

// EnsureRole handles POST /api/roles. Creating an existing role succeeds.
func (h *UserHandler) EnsureRole(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req roleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if fieldErrors := validation.ValidateRoleName("name", req.Name); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	if err := h.svc.EnsureRole(r.Context(), req.Name); err != nil {
		if errors.Is(err, auth.ErrInvalidRoleName) {
			response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
				[]validation.FieldError{{Field: "name", Message: "name is required"}}, requestID)
			return
		}
		response.StoreErr(w, err, "failed to ensure role", requestID)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"name": strings.TrimSpace(req.Name)}, requestID)
}

// AddToRole handles POST /api/users/{id}/roles.
func (h *UserHandler) AddToRole(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req roleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if fieldErrors := validation.ValidateRoleName("name", req.Name); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	u, ok := h.loadUser(w, r)
	if !ok {
		return
	}

	if err := h.svc.AddUserToRole(r.Context(), u, req.Name); err != nil {
		switch {
		case errors.Is(err, auth.ErrRoleNotFound):
			response.Err(w, http.StatusNotFound, "ROLE_NOT_FOUND", "Role does not exist", requestID)
		case errors.Is(err, auth.ErrUserNotFound):
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
		default:
			response.StoreErr(w, err, "failed to add user to role", requestID)
		}
		return
	}

	response.Success(w, http.StatusOK, toUserResponse(u), requestID)
}

// IsInRole handles GET /api/users/{id}/roles/{role}.
func (h *UserHandler) IsInRole(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	u, ok := h.loadUser(w, r)
	if !ok {
		return
	}

	role := chi.URLParam(r, "role")
	member, err := h.svc.IsUserInRole(r.Context(), u, role)
	if err != nil {
		response.StoreErr(w, err, "failed to check role membership", requestID)
		return
	}

	response.Success(w, http.StatusOK, membershipResponse{
		UserID: u.ID.String(),
		Role:   role,
		Member: member,
	}, requestID)
}

func (h *UserHandler) loadUser(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r, "id")
	if !ok {
		return nil, false
	}

	u, err := h.svc.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return nil, false
		}
		response.StoreErr(w, err, "failed to get user", requestID)
		return nil, false
	}
	return u, true
}
