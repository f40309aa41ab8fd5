package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fanleague/fanleague/internal/api"
	"github.com/fanleague/fanleague/internal/api/handler"
	"github.com/fanleague/fanleague/internal/api/middleware"
	"github.com/fanleague/fanleague/internal/auth"
)

const (
	adminSession = "admin-session"
	fanSession   = "fan-session"
)

func newTestRouter(t *testing.T, limiter *middleware.RateLimiter) http.Handler {
	t.Helper()
	deps := fullRouterDeps()
	deps.DBPinger = handler.PingFunc(func(context.Context) error { return nil })
	deps.CachePinger = handler.PingFunc(func(context.Context) error { return errors.New("down") })
	deps.AccountLimiter = limiter
	deps.Identity = &stubIdentity{
		sessions: map[string]*auth.Identity{
			adminSession: {UserID: uuid.New(), Email: "admin@example.com", Roles: auth.NewRoleSet("Admin"), SessionID: adminSession},
			fanSession:   {UserID: uuid.New(), Email: "fan@example.com", Roles: auth.NewRoleSet(), SessionID: fanSession},
		},
		user: &auth.User{ID: uuid.New(), Email: "someone@example.com", Roles: auth.NewRoleSet()},
	}
	return api.NewRouter(deps)
}

func do(h http.Handler, method, path, session, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: session})
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorCodeOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Error, "expected an error envelope: %s", w.Body.String())
	return env.Error.Code
}

func TestRouter_AdminRoutes(t *testing.T) {
	router := newTestRouter(t, nil)
	userPath := "/api/users/" + uuid.NewString()

	tests := []struct {
		name       string
		method     string
		path       string
		session    string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"anonymous user lookup", http.MethodGet, userPath, "", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"fan user lookup", http.MethodGet, userPath, fanSession, "", http.StatusForbidden, "FORBIDDEN"},
		{"admin user lookup", http.MethodGet, userPath, adminSession, "", http.StatusOK, ""},
		{"unknown session is anonymous", http.MethodGet, userPath, "stale", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"fan creates country", http.MethodPost, "/api/countries", fanSession, `{"name":"Peru"}`, http.StatusForbidden, "FORBIDDEN"},
		{"fan adds team", http.MethodPost, "/api/teams", fanSession, `{"name":"Ajax"}`, http.StatusForbidden, "FORBIDDEN"},
		{"fan updates team", http.MethodPut, "/api/teams", fanSession, `{"name":"Ajax"}`, http.StatusForbidden, "FORBIDDEN"},
		{"fan creates tournament", http.MethodPost, "/api/tournaments", fanSession, `{}`, http.StatusForbidden, "FORBIDDEN"},
		{"fan creates role", http.MethodPost, "/api/roles", fanSession, `{"name":"Mod"}`, http.StatusForbidden, "FORBIDDEN"},
		{"admin creates role", http.MethodPost, "/api/roles", adminSession, `{"name":"Mod"}`, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, tt.method, tt.path, tt.session, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCodeOf(t, w))
			}
		})
	}
}

func TestRouter_PublicCatalogueNeedsNoSession(t *testing.T) {
	router := newTestRouter(t, nil)

	for _, path := range []string{"/api/countries", "/api/tournaments", "/api/teams/combo/not-a-uuid"} {
		w := do(router, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouter_GroupsRequireSession(t *testing.T) {
	router := newTestRouter(t, nil)

	w := do(router, http.MethodGet, "/api/groups/all", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, http.MethodGet, "/api/groups/all", fanSession, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_MeReturnsIdentity(t *testing.T) {
	router := newTestRouter(t, nil)

	w := do(router, http.MethodGet, "/api/account/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, http.MethodGet, "/api/account/me", adminSession, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"admin@example.com"`)
	assert.Contains(t, w.Body.String(), `"Admin"`)
}

func TestRouter_LoginIsThrottled(t *testing.T) {
	limiter := middleware.NewRateLimiter(middleware.PerMinute(2))
	defer limiter.Stop()
	router := newTestRouter(t, limiter)
	body := `{"email":"fan@example.com","password":"wrong-password1"}`

	for i := 0; i < 2; i++ {
		w := do(router, http.MethodPost, "/api/account/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := do(router, http.MethodPost, "/api/account/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", errorCodeOf(t, w))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Confirmation is not throttled.
	w = do(router, http.MethodPost, "/api/account/confirm", "", `{"userId":"`+uuid.NewString()+`","token":"t"}`)
	assert.NotEqual(t, http.StatusTooManyRequests, w.Code)
}

func TestRouter_LoginThrottleIgnoresForwardingHeaders(t *testing.T) {
	limiter := middleware.NewRateLimiter(middleware.PerMinute(2))
	defer limiter.Stop()
	router := newTestRouter(t, limiter)
	body := `{"email":"fan@example.com","password":"wrong-password1"}`

	limited := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/account/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i+1))
		req.Header.Set("X-Real-IP", fmt.Sprintf("10.0.1.%d", i+1))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			limited++
		}
	}

	assert.Equal(t, 18, limited)
	assert.Equal(t, 1, limiter.Len())
}

func TestRouter_HealthReportsDegradedCache(t *testing.T) {
	router := newTestRouter(t, nil)

	w := do(router, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
}

func TestRouter_MetricsExposesRequestCounter(t *testing.T) {
	router := newTestRouter(t, nil)

	do(router, http.MethodGet, "/api/countries", "", "")
	w := do(router, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fanleague_http_requests_total")
}

func TestRouter_ServesOpenAPIAsJSON(t *testing.T) {
	router := newTestRouter(t, nil)

	w := do(router, http.MethodGet, "/openapi.json", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "3.1.0", doc["openapi"])
}
