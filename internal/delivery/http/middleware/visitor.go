package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const visitorCookieName = "visitor_session"

const visitorIDKey contextKey = "visitorID"

// VisitorIDFromContext returns the visitor session key from the context.
func VisitorIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(visitorIDKey).(string)
	return id, ok
}

// VisitorSession ensures every request carries a visitor session key: the
// existing cookie is reused, otherwise a new key is issued and set. The key
// scopes in-progress registrations, nothing else; it is not authentication.
func VisitorSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var visitorID string
		if c, err := r.Cookie(visitorCookieName); err == nil && c.Value != "" {
			visitorID = c.Value
		} else {
			visitorID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     visitorCookieName,
				Value:    visitorID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), visitorIDKey, visitorID)))
	})
}
