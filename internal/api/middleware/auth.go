package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/fanleague/fanleague/internal/api/response"
	"github.com/fanleague/fanleague/internal/auth"
)

// SessionCookieName is the cookie carrying the session id.
const SessionCookieName = "fl_session"

const identityKey contextKey = "identity"

// Authenticator resolves a session id to an Identity.
type Authenticator interface {
	Authenticate(ctx context.Context, sessionID string) (*auth.Identity, error)
}

// Session is middleware that resolves the session cookie to an Identity and
// stores it in the request context. Requests without a valid session pass
// through anonymously; RequireAuthenticated and RequireRole reject them.
func Session(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := authn.Authenticate(r.Context(), cookie.Value)
			if err != nil {
				if errors.Is(err, auth.ErrSessionNotFound) {
					next.ServeHTTP(w, r)
					return
				}
				response.StoreErr(w, err, "failed to authenticate session", GetRequestID(r.Context()))
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity retrieves the authenticated Identity from the request context.
func GetIdentity(ctx context.Context) *auth.Identity {
	if id, ok := ctx.Value(identityKey).(*auth.Identity); ok {
		return id
	}
	return nil
}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}
