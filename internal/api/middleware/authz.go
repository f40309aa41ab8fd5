package middleware

import (
	"net/http"

	"github.com/fanleague/fanleague/internal/api/response"
)

// RequireAuthenticated rejects requests without a session with 401.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetIdentity(r.Context()) == nil {
			response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sign-in is required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole returns middleware that rejects identities holding none of the
// given roles. Role names compare case-insensitively.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			identity := GetIdentity(r.Context())
			if identity == nil {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sign-in is required", requestID)
				return
			}

			for _, role := range roles {
				if identity.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Err(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions", requestID)
		})
	}
}
