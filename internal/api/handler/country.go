package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fanleague/fanleague/internal/api/middleware"
	"github.com/fanleague/fanleague/internal/api/response"
	"github.com/fanleague/fanleague/internal/api/validation"
	"github.com/fanleague/fanleague/internal/country"
)

type createCountryRequest struct {
	Name string `json:"name"`
}

type countryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TeamCount int    `json:"teamCount"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toCountryResponse(c *country.Country) countryResponse {
	return countryResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		TeamCount: c.TeamCount,
		CreatedAt: formatTime(c.CreatedAt),
		UpdatedAt: formatTime(c.UpdatedAt),
	}
}

// CountryHandler handles the country catalogue endpoints.
type CountryHandler struct {
	repo country.Repository
}

// NewCountryHandler creates a new CountryHandler.
func NewCountryHandler(repo country.Repository) *CountryHandler {
	return &CountryHandler{repo: repo}
}

// Create handles POST /api/countries.
func (h *CountryHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req createCountryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if fieldErrors := validation.ValidateCreateCountryRequest(validation.CreateCountryRequest{Name: req.Name}); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	c := &country.Country{Name: strings.TrimSpace(req.Name)}
	if err := h.repo.Create(r.Context(), c); err != nil {
		if errors.Is(err, country.ErrDuplicateCountryName) {
			response.Err(w, http.StatusConflict, "DUPLICATE_NAME", fmt.Sprintf("A country named %q already exists", c.Name), requestID)
			return
		}
		response.StoreErr(w, err, "failed to create country", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toCountryResponse(c), requestID)
}

// List handles GET /api/countries.
func (h *CountryHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	countries, err := h.repo.List(r.Context())
	if err != nil {
		response.StoreErr(w, err, "failed to list countries", requestID)
		return
	}

	items := make([]countryResponse, 0, len(countries))
	for i := range countries {
		items = append(items, toCountryResponse(&countries[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), requestID)
}

// GetByID handles GET /api/countries/{id}.
func (h *CountryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	c, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, country.ErrCountryNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Country not found", requestID)
			return
		}
		response.StoreErr(w, err, "failed to get country", requestID)
		return
	}

	response.Success(w, http.StatusOK, toCountryResponse(c), requestID)
}
