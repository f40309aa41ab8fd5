package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fanleague/fanleague/internal/api/middleware"
	"github.com/fanleague/fanleague/internal/api/response"
	"github.com/fanleague/fanleague/internal/api/validation"
	"github.com/fanleague/fanleague/internal/team"
)

// TeamService is the team unit of work used by the team endpoints.
type TeamService interface {
	GetCombo(ctx context.Context, countryID uuid.UUID) ([]team.Team, error)
	Get(ctx context.Context, id uuid.UUID) (*team.Team, error)
	Add(ctx context.Context, in team.Input) (*team.Team, error)
	Update(ctx context.Context, in team.Input) (*team.Team, error)
}

type teamRequest struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Image         *string `json:"image"`
	IsImageSquare bool    `json:"isImageSquare"`
	CountryID     string  `json:"countryId"`
}

type teamResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Image           *string `json:"image"`
	IsImageSquare   bool    `json:"isImageSquare"`
	CountryID       string  `json:"countryId"`
	TournamentCount int     `json:"tournamentCount"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

func toTeamResponse(t *team.Team) teamResponse {
	return teamResponse{
		ID:              t.ID.String(),
		Name:            t.Name,
		Image:           t.Image,
		IsImageSquare:   t.IsImageSquare,
		CountryID:       t.CountryID.String(),
		TournamentCount: t.TournamentCount,
		CreatedAt:       formatTime(t.CreatedAt),
		UpdatedAt:       formatTime(t.UpdatedAt),
	}
}

// TeamHandler handles team endpoints.
type TeamHandler struct {
	uow TeamService
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(uow TeamService) *TeamHandler {
	return &TeamHandler{uow: uow}
}

// Combo handles GET /api/teams/combo/{countryId}. An unparseable or unknown
// country yields an empty list.
func (h *TeamHandler) Combo(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	countryID, err := uuid.Parse(chi.URLParam(r, "countryId"))
	if err != nil {
		countryID = uuid.Nil
	}

	teams, err := h.uow.GetCombo(r.Context(), countryID)
	if err != nil {
		response.StoreErr(w, err, "failed to list teams", requestID)
		return
	}

	items := make([]teamResponse, 0, len(teams))
	for i := range teams {
		items = append(items, toTeamResponse(&teams[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), requestID)
}

// GetByID handles GET /api/teams/{id}.
func (h *TeamHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	t, err := h.uow.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
			return
		}
		response.StoreErr(w, err, "failed to get team", requestID)
		return
	}

	response.Success(w, http.StatusOK, toTeamResponse(t), requestID)
}

// Create handles POST /api/teams.
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	in, ok := h.decodeInput(w, r, false)
	if !ok {
		return
	}

	t, err := h.uow.Add(r.Context(), in)
	if err != nil {
		h.writeWriteErr(w, err, "failed to add team", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toTeamResponse(t), requestID)
}

// Update handles PUT /api/teams.
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	in, ok := h.decodeInput(w, r, true)
	if !ok {
		return
	}

	t, err := h.uow.Update(r.Context(), in)
	if err != nil {
		h.writeWriteErr(w, err, "failed to update team", requestID)
		return
	}

	response.Success(w, http.StatusOK, toTeamResponse(t), requestID)
}

// decodeInput parses the request body. Only malformed identifiers are
// rejected here; name and country rules belong to the unit of work.
func (h *TeamHandler) decodeInput(w http.ResponseWriter, r *http.Request, withID bool) (team.Input, bool) {
	requestID := middleware.GetRequestID(r.Context())

	var req teamRequest
	if !decodeBody(w, r, &req) {
		return team.Input{}, false
	}

	in := team.Input{
		Name:          req.Name,
		Image:         req.Image,
		IsImageSquare: req.IsImageSquare,
	}

	var fieldErrors []validation.FieldError
	if withID {
		id, fe := validation.ParseUUID("id", req.ID)
		if fe != nil {
			fieldErrors = append(fieldErrors, *fe)
		}
		in.ID = id
	}
	if req.CountryID != "" {
		id, fe := validation.ParseUUID("countryId", req.CountryID)
		if fe != nil {
			fieldErrors = append(fieldErrors, *fe)
		}
		in.CountryID = id
	}

	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return team.Input{}, false
	}

	return in, true
}

func (h *TeamHandler) writeWriteErr(w http.ResponseWriter, err error, message, requestID string) {
	var verr *team.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", verr.Fields, requestID)
	case errors.Is(err, team.ErrTeamNotFound):
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
	default:
		response.StoreErr(w, err, message, requestID)
	}
}
