package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxNameLength bounds every catalogue name, in characters.
const MaxNameLength = 100

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func validateName(field, value string) *FieldError {
	name := strings.TrimSpace(value)
	if name == "" {
		return &FieldError{Field: field, Message: field + " is required"}
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return &FieldError{Field: field, Message: field + " must be at most 100 characters"}
	}
	return nil
}

// ParseUUID parses a required UUID field. An empty value is reported as
// missing, anything else unparseable as malformed.
func ParseUUID(field, value string) (uuid.UUID, *FieldError) {
	if strings.TrimSpace(value) == "" {
		return uuid.Nil, &FieldError{Field: field, Message: field + " is required"}
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, &FieldError{Field: field, Message: field + " must be a valid UUID"}
	}
	return id, nil
}
