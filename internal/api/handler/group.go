package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/fanleague/fanleague/internal/api/middleware"
	"github.com/fanleague/fanleague/internal/api/response"
	"github.com/fanleague/fanleague/internal/api/validation"
	"github.com/fanleague/fanleague/internal/group"
)

// GroupService lists and creates groups.
type GroupService interface {
	ListAll(ctx context.Context) ([]group.Group, error)
	Create(ctx context.Context, name string, adminID, tournamentID uuid.UUID) (*group.Group, error)
}

type createGroupRequest struct {
	Name         string `json:"name"`
	TournamentID string `json:"tournamentId"`
}

type groupResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	AdminID      string `json:"adminId"`
	TournamentID string `json:"tournamentId"`
	IsActive     bool   `json:"isActive"`
	CreatedAt    string `json:"createdAt"`
}

func toGroupResponse(g *group.Group) groupResponse {
	return groupResponse{
		ID:           g.ID.String(),
		Name:         g.Name,
		Code:         g.Code,
		AdminID:      g.AdminID.String(),
		TournamentID: g.TournamentID.String(),
		IsActive:     g.IsActive,
		CreatedAt:    formatTime(g.CreatedAt),
	}
}

// GroupHandler handles group endpoints.
type GroupHandler struct {
	svc GroupService
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(svc GroupService) *GroupHandler {
	return &GroupHandler{svc: svc}
}

// ListAll handles GET /api/groups/all.
func (h *GroupHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	groups, err := h.svc.ListAll(r.Context())
	if err != nil {
		response.StoreErr(w, err, "failed to list groups", requestID)
		return
	}

	items := make([]groupResponse, 0, len(groups))
	for i := range groups {
		items = append(items, toGroupResponse(&groups[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), requestID)
}

// Create handles POST /api/groups. The caller becomes the group admin.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sign-in is required", requestID)
		return
	}

	var req createGroupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tournamentID, fieldErrors := validation.ValidateCreateGroupRequest(validation.CreateGroupRequest{
		Name:         req.Name,
		TournamentID: req.TournamentID,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	g, err := h.svc.Create(r.Context(), req.Name, identity.UserID, tournamentID)
	if err != nil {
		switch {
		case errors.Is(err, group.ErrTournamentNotFound):
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Tournament not found", requestID)
		case errors.Is(err, group.ErrAdminNotFound):
			response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sign-in is required", requestID)
		default:
			response.StoreErr(w, err, "failed to create group", requestID)
		}
		return
	}

	response.Success(w, http.StatusCreated, toGroupResponse(g), requestID)
}
