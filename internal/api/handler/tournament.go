package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fanleague/fanleague/internal/api/middleware"
	"github.com/fanleague/fanleague/internal/api/response"
	"github.com/fanleague/fanleague/internal/api/validation"
	"github.com/fanleague/fanleague/internal/tournament"
)

type createTournamentRequest struct {
	Name      string  `json:"name"`
	IsActive  *bool   `json:"isActive"`
	Remarks   *string `json:"remarks"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
}

type enrollTeamRequest struct {
	TeamID string `json:"teamId"`
}

type tournamentResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	IsActive  bool    `json:"isActive"`
	Remarks   *string `json:"remarks"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	TeamCount int     `json:"teamCount"`
	CreatedAt string  `json:"createdAt"`
}

func toTournamentResponse(t *tournament.Tournament) tournamentResponse {
	return tournamentResponse{
		ID:        t.ID.String(),
		Name:      t.Name,
		IsActive:  t.IsActive,
		Remarks:   t.Remarks,
		StartDate: t.StartDate.Format(validation.DateLayout),
		EndDate:   t.EndDate.Format(validation.DateLayout),
		TeamCount: t.TeamCount,
		CreatedAt: formatTime(t.CreatedAt),
	}
}

// TournamentHandler handles tournament endpoints.
type TournamentHandler struct {
	repo tournament.Repository
}

// NewTournamentHandler creates a new TournamentHandler.
func NewTournamentHandler(repo tournament.Repository) *TournamentHandler {
	return &TournamentHandler{repo: repo}
}

// List handles GET /api/tournaments.
func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	tournaments, err := h.repo.List(r.Context())
	if err != nil {
		response.StoreErr(w, err, "failed to list tournaments", requestID)
		return
	}

	items := make([]tournamentResponse, 0, len(tournaments))
	for i := range tournaments {
		items = append(items, toTournamentResponse(&tournaments[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), requestID)
}

// Create handles POST /api/tournaments. Tournaments are active unless
// isActive is false.
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req createTournamentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	start, end, fieldErrors := validation.ValidateCreateTournamentRequest(validation.CreateTournamentRequest{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	t := &tournament.Tournament{
		Name:      strings.TrimSpace(req.Name),
		IsActive:  req.IsActive == nil || *req.IsActive,
		Remarks:   req.Remarks,
		StartDate: start,
		EndDate:   end,
	}

	if err := h.repo.Create(r.Context(), t); err != nil {
		if errors.Is(err, tournament.ErrDuplicateTournamentName) {
			response.Err(w, http.StatusConflict, "DUPLICATE_NAME", fmt.Sprintf("A tournament named %q already exists", t.Name), requestID)
			return
		}
		response.StoreErr(w, err, "failed to create tournament", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toTournamentResponse(t), requestID)
}

// EnrollTeam handles POST /api/tournaments/{id}/teams.
func (h *TournamentHandler) EnrollTeam(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req enrollTeamRequest
	if !decodeBody(w, r, &req) {
		return
	}
	teamID, fe := validation.ParseUUID("teamId", req.TeamID)
	if fe != nil {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", []validation.FieldError{*fe}, requestID)
		return
	}

	if err := h.repo.EnrollTeam(r.Context(), id, teamID); err != nil {
		switch {
		case errors.Is(err, tournament.ErrTournamentNotFound):
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Tournament not found", requestID)
		case errors.Is(err, tournament.ErrTeamNotFound):
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
		default:
			response.StoreErr(w, err, "failed to enroll team", requestID)
		}
		return
	}

	t, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		response.StoreErr(w, err, "failed to reload tournament", requestID)
		return
	}

	response.Success(w, http.StatusOK, toTournamentResponse(t), requestID)
}
