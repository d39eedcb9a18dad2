package auth

import (
	"context"
	"net/http"
	"strings"

	"coursemarket/internal/qerrors"

	"github.com/go-chi/render"
)

type contextKey string

const currentUserKey contextKey = "currentUser"

// RequireAuth is a middleware that rejects requests without a valid token. The token is read from
// the Authorization header ("Bearer <token>") or, failing that, from the named cookie. The
// Identity is added to the request context, and can be accessed via GetUserFromRequest.
func RequireAuth(v *Verifier, cookieName string) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r, cookieName)
			if token == "" {
				rejectRequest(w, r, http.StatusUnauthorized, "Token is missing")
				return
			}

			user, err := v.Verify(token)
			if err != nil {
				rejectRequest(w, r, http.StatusUnauthorized, "Token is invalid")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *Identity) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}

// GetUserFromRequest returns the Identity stored by RequireAuth.
func GetUserFromRequest(r *http.Request) (*Identity, error) {
	user, ok := r.Context().Value(currentUserKey).(*Identity)
	if !ok || user == nil {
		return nil, qerrors.UnauthenticatedError
	}
	return user, nil
}

func tokenFromRequest(r *http.Request, cookieName string) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// Helpers

func rejectRequest(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]interface{}{
		"success": false,
		"message": message,
	})
}
