package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fanleague/fanleague/internal/api/middleware"
	"github.com/fanleague/fanleague/internal/api/response"
	"github.com/fanleague/fanleague/internal/api/validation"
	"github.com/fanleague/fanleague/internal/auth"
	"github.com/fanleague/fanleague/internal/metrics"
)

// AccountService is the identity workflow used by the account endpoints.
type AccountService interface {
	Register(ctx context.Context, email, password string) (*auth.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error)
	ConfirmEmail(ctx context.Context, u *auth.User, token string) error
	ResendConfirmation(ctx context.Context, email string) error
	Login(ctx context.Context, req auth.LoginRequest) (*auth.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Secure bool
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type confirmEmailRequest struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

type resendConfirmationRequest struct {
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type accountResponse struct {
	ID             string   `json:"id"`
	Email          string   `json:"email"`
	EmailConfirmed bool     `json:"emailConfirmed"`
	Roles          []string `json:"roles"`
	CreatedAt      string   `json:"createdAt"`
}

func toAccountResponse(u *auth.User) accountResponse {
	return accountResponse{
		ID:             u.ID.String(),
		Email:          u.Email,
		EmailConfirmed: u.EmailConfirmed,
		Roles:          u.Roles.Names(),
		CreatedAt:      formatTime(u.CreatedAt),
	}
}

type sessionResponse struct {
	UserID    string `json:"userId"`
	Remember  bool   `json:"remember"`
	ExpiresAt string `json:"expiresAt"`
}

type identityResponse struct {
	UserID string   `json:"userId"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
}

// AccountHandler handles registration, confirmation and sign-in.
type AccountHandler struct {
	svc     AccountService
	metrics metrics.Recorder
	cookie  CookieConfig
}

// NewAccountHandler creates a new AccountHandler. rec may be nil.
func NewAccountHandler(svc AccountService, rec metrics.Recorder, cookie CookieConfig) *AccountHandler {
	if rec == nil {
		rec = noopRecorder{}
	}
	return &AccountHandler{svc: svc, metrics: rec, cookie: cookie}
}

// Register handles POST /api/account/register.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	fieldErrors := validation.ValidateRegisterRequest(validation.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	u, err := h.svc.Register(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateEmail) {
			response.Err(w, http.StatusConflict, "DUPLICATE_EMAIL", "An account with this email already exists", requestID)
			return
		}
		response.StoreErr(w, err, "failed to register user", requestID)
		return
	}

	h.metrics.RecordRegistration()
	response.Success(w, http.StatusCreated, toAccountResponse(u), requestID)
}

// Confirm handles POST /api/account/confirm.
func (h *AccountHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req confirmEmailRequest
	if !decodeBody(w, r, &req) {
		return
	}

	fieldErrors := validation.ValidateConfirmEmailRequest(validation.ConfirmEmailRequest{
		UserID: req.UserID,
		Token:  req.Token,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	userID, _ := uuid.Parse(req.UserID)
	u, err := h.svc.GetUserByID(r.Context(), userID)
	if err == nil {
		err = h.svc.ConfirmEmail(r.Context(), u, req.Token)
	}
	if err != nil {
		// An unknown user is reported like a bad token so ids cannot be probed.
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrUserNotFound) {
			h.metrics.RecordEmailConfirmation(false)
			response.Err(w, http.StatusBadRequest, "INVALID_TOKEN", "The confirmation link is invalid or has expired", requestID)
			return
		}
		response.StoreErr(w, err, "failed to confirm email", requestID)
		return
	}

	h.metrics.RecordEmailConfirmation(true)
	response.Success(w, http.StatusOK, toAccountResponse(u), requestID)
}

// ResendConfirmation handles POST /api/account/resend-confirmation. It answers
// 202 whether or not the address is known.
func (h *AccountHandler) ResendConfirmation(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req resendConfirmationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if fieldErrors := validation.ValidateEmail(req.Email); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	if err := h.svc.ResendConfirmation(r.Context(), req.Email); err != nil {
		response.StoreErr(w, err, "failed to resend confirmation", requestID)
		return
	}

	response.Success(w, http.StatusAccepted, map[string]string{"status": "sent"}, requestID)
}

// Login handles POST /api/account/login and sets the session cookie.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	fieldErrors := validation.ValidateLoginRequest(validation.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	session, err := h.svc.Login(r.Context(), auth.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		Remember: req.Remember,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			h.metrics.RecordLogin(metrics.LoginInvalidCredentials)
			response.Err(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", requestID)
		case errors.Is(err, auth.ErrLockedOut):
			h.metrics.RecordLogin(metrics.LoginLockedOut)
			response.Err(w, http.StatusLocked, "LOCKED_OUT", "Too many failed attempts, the account is temporarily locked", requestID)
		case errors.Is(err, auth.ErrNotAllowed):
			h.metrics.RecordLogin(metrics.LoginNotAllowed)
			response.Err(w, http.StatusForbidden, "NOT_ALLOWED", "Confirm your email address before signing in", requestID)
		default:
			h.metrics.RecordLogin(metrics.LoginError)
			response.StoreErr(w, err, "failed to log in", requestID)
		}
		return
	}

	h.metrics.RecordLogin(metrics.LoginSucceeded)
	http.SetCookie(w, h.sessionCookie(session))
	response.Success(w, http.StatusOK, sessionResponse{
		UserID:    session.UserID.String(),
		Remember:  session.Remember,
		ExpiresAt: formatTime(session.ExpiresAt),
	}, requestID)
}

// Logout handles POST /api/account/logout. It always clears the cookie.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if err := h.svc.Logout(r.Context(), cookie.Value); err != nil {
			response.StoreErr(w, err, "failed to log out", requestID)
			return
		}
	}

	http.SetCookie(w, h.clearedCookie())
	response.NoContent(w)
}

// Me handles GET /api/account/me.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sign-in is required", requestID)
		return
	}

	response.Success(w, http.StatusOK, identityResponse{
		UserID: identity.UserID.String(),
		Email:  identity.Email,
		Roles:  identity.Roles.Names(),
	}, requestID)
}

// sessionCookie is persistent only for remembered sessions; otherwise it
// lives as long as the browser session.
func (h *AccountHandler) sessionCookie(s *auth.Session) *http.Cookie {
	c := &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if s.Remember {
		c.Expires = s.ExpiresAt
		c.MaxAge = int(time.Until(s.ExpiresAt).Seconds())
	}
	return c
}

func (h *AccountHandler) clearedCookie() *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}

type noopRecorder struct{}

func (noopRecorder) RecordLogin(string) {}

func (noopRecorder) RecordRegistration() {}

func (noopRecorder) RecordEmailConfirmation(bool) {}
