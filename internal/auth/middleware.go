package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/vidstream/backend/internal/apperror"
)

type contextKey string

const userIDKey contextKey = "userID"

// AccessVerifier validates access credentials. *Manager satisfies it.
type AccessVerifier interface {
	VerifyAccess(token string) (string, error)
}

// ErrorResponder renders an authentication failure.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

// RequireAuth rejects requests without a valid access credential and stores
// the caller's id on the context of the rest.
func RequireAuth(verifier AccessVerifier, reject ErrorResponder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := AccessTokenFromRequest(r)
			if token == "" {
				reject(w, r, apperror.Unauthenticated("unauthorized request"))
				return
			}
			userID, err := verifier.VerifyAccess(token)
			if err != nil {
				reject(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// OptionalAuth identifies the caller when a valid access credential is
// present and leaves the request anonymous otherwise.
func OptionalAuth(verifier AccessVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := AccessTokenFromRequest(r); token != "" {
				if userID, err := verifier.VerifyAccess(token); err == nil {
					r = r.WithContext(WithUserID(r.Context(), userID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AccessTokenFromRequest reads the access credential from its cookie or,
// failing that, from a bearer Authorization header.
func AccessTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(AccessCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// RefreshTokenFromRequest reads the refresh credential cookie.
func RefreshTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(RefreshCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// WithUserID stores the authenticated user id on ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user id, or ("", false) for an
// anonymous request.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}
