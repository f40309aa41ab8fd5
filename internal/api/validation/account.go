package validation

import (
	"net/mail"
	"strings"
	"unicode"
)

const (
	maxEmailLength    = 256
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordBytes = 72
)

// RegisterRequest mirrors the fields needed for registration validation.
type RegisterRequest struct {
	Email    string
	Password string
}

// ValidateRegisterRequest validates the fields of a registration request.
func ValidateRegisterRequest(req RegisterRequest) []FieldError {
	var errs []FieldError

	if fe := validateEmail(req.Email); fe != nil {
		errs = append(errs, *fe)
	}

	switch {
	case req.Password == "":
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	case len([]rune(req.Password)) < minPasswordLength:
		errs = append(errs, FieldError{Field: "password", Message: "password must be at least 8 characters"})
	case len(req.Password) > maxPasswordBytes:
		errs = append(errs, FieldError{Field: "password", Message: "password must be at most 72 bytes"})
	case !hasLetterAndDigit(req.Password):
		errs = append(errs, FieldError{Field: "password", Message: "password must contain a letter and a digit"})
	}

	return errs
}

// LoginRequest mirrors the fields needed for login validation.
type LoginRequest struct {
	Email    string
	Password string
}

// ValidateLoginRequest only checks presence. Anything else would tell a
// caller which accounts cannot exist.
func ValidateLoginRequest(req LoginRequest) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(req.Email) == "" {
		errs = append(errs, FieldError{Field: "email", Message: "email is required"})
	}
	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	}
	return errs
}

// ValidateEmail validates a standalone email field.
func ValidateEmail(email string) []FieldError {
	if fe := validateEmail(email); fe != nil {
		return []FieldError{*fe}
	}
	return nil
}

// ConfirmEmailRequest mirrors the fields of an email confirmation.
type ConfirmEmailRequest struct {
	UserID string
	Token  string
}

// ValidateConfirmEmailRequest validates the fields of an email confirmation.
func ValidateConfirmEmailRequest(req ConfirmEmailRequest) []FieldError {
	var errs []FieldError
	if _, fe := ParseUUID("userId", req.UserID); fe != nil {
		errs = append(errs, *fe)
	}
	if strings.TrimSpace(req.Token) == "" {
		errs = append(errs, FieldError{Field: "token", Message: "token is required"})
	}
	return errs
}

// ValidateRoleName validates a role name.
func ValidateRoleName(field, name string) []FieldError {
	if fe := validateName(field, name); fe != nil {
		return []FieldError{*fe}
	}
	return nil
}

func validateEmail(email string) *FieldError {
	email = strings.TrimSpace(email)
	if email == "" {
		return &FieldError{Field: "email", Message: "email is required"}
	}
	if len(email) > maxEmailLength {
		return &FieldError{Field: "email", Message: "email must be at most 256 characters"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &FieldError{Field: "email", Message: "email must be a valid address"}
	}
	return nil
}

func hasLetterAndDigit(s string) bool {
	var letter, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}
