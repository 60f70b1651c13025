package middleware

import (
	"context"
	"net/http"
	"strings"

	"eventregistry/internal/domain"
)

type contextKey string

const userIDKey contextKey = "userID"

// SetUserID returns a context with the user ID set. Used by auth middleware.
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user ID from the context, if
// present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// OptionalAuth validates a Bearer token when one is presented and sets the
// user ID in the request context. Requests without a token pass through
// anonymously; whether login is required is decided per event by the
// workflow, not here. An invalid token is still rejected outright.
func OptionalAuth(verifier domain.TokenVerifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			next.ServeHTTP(w, r)
			return
		}
		const prefix = "Bearer "
		token := strings.TrimSpace(strings.TrimPrefix(auth, prefix))
		if !strings.HasPrefix(auth, prefix) || token == "" {
			http.Error(w, "invalid authorization format", http.StatusUnauthorized)
			return
		}
		userID, err := verifier.Verify(token)
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(SetUserID(r.Context(), userID)))
	})
}
