// If you are AI: This file implements bearer-token middleware that puts an Identity in the request context.

package auth

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Authenticator wraps handlers that need a caller identity.
// A nil issuer means authentication is disabled and every caller is Anonymous.
type Authenticator struct {
	issuer *Issuer
	logger *zap.Logger
}

// NewAuthenticator creates the middleware source. Pass a nil issuer to disable auth.
func NewAuthenticator(issuer *Issuer, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{issuer: issuer, logger: logger.With(zap.String("component", "auth"))}
}

// Enabled reports whether tokens are checked.
func (a *Authenticator) Enabled() bool {
	return a.issuer != nil
}

// Require rejects requests without a valid token with 401.
// The token is read from "Authorization: Bearer" or, for browser WebSocket clients,
// the "token" query parameter.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.issuer == nil {
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), Anonymous)))
			return
		}

		tokenStr := bearerToken(r)
		if tokenStr == "" {
			writeJSONError(w, http.StatusUnauthorized, "missing or malformed Authorization header")
			return
		}

		id, err := a.issuer.Verify(tokenStr)
		if err != nil {
			a.logger.Debug("JWT validation failed", zap.Error(err))
			writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// RequireAdmin is Require plus a 403 for non-admin identities.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return a.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := FromContext(r.Context())
		if !ok || !id.Admin {
			writeJSONError(w, http.StatusForbidden, "admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// bearerToken extracts the raw token from the request.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

// writeJSONError writes a JSON error response with the given status code and message.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`, message)
}
