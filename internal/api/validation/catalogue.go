package validation

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format of tournament dates.
const DateLayout = "2006-01-02"

// CreateCountryRequest mirrors the fields needed for create country validation.
type CreateCountryRequest struct {
	Name string
}

// ValidateCreateCountryRequest validates the fields of a create country request.
func ValidateCreateCountryRequest(req CreateCountryRequest) []FieldError {
	var errs []FieldError
	if fe := validateName("name", req.Name); fe != nil {
		errs = append(errs, *fe)
	}
	return errs
}

// CreateTournamentRequest mirrors the fields needed for create tournament validation.
type CreateTournamentRequest struct {
	Name      string
	StartDate string
	EndDate   string
}

// ValidateCreateTournamentRequest validates the request and returns the parsed dates.
func ValidateCreateTournamentRequest(req CreateTournamentRequest) (start, end time.Time, errs []FieldError) {
	if fe := validateName("name", req.Name); fe != nil {
		errs = append(errs, *fe)
	}

	start, startErr := parseDate("startDate", req.StartDate)
	if startErr != nil {
		errs = append(errs, *startErr)
	}
	end, endErr := parseDate("endDate", req.EndDate)
	if endErr != nil {
		errs = append(errs, *endErr)
	}

	if startErr == nil && endErr == nil && end.Before(start) {
		errs = append(errs, FieldError{Field: "endDate", Message: "endDate must not be before startDate"})
	}

	return start, end, errs
}

// CreateGroupRequest mirrors the fields needed for create group validation.
type CreateGroupRequest struct {
	Name         string
	TournamentID string
}

// ValidateCreateGroupRequest validates the request and returns the parsed tournament id.
func ValidateCreateGroupRequest(req CreateGroupRequest) (uuid.UUID, []FieldError) {
	var errs []FieldError
	if fe := validateName("name", req.Name); fe != nil {
		errs = append(errs, *fe)
	}
	id, fe := ParseUUID("tournamentId", req.TournamentID)
	if fe != nil {
		errs = append(errs, *fe)
	}
	return id, errs
}

func parseDate(field, value string) (time.Time, *FieldError) {
	if value == "" {
		return time.Time{}, &FieldError{Field: field, Message: field + " is required"}
	}
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, &FieldError{Field: field, Message: field + " must be a date in YYYY-MM-DD format"}
	}
	return d, nil
}
