package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	SessionCartCookie = "sessionCartId"
	sessionCartMaxAge = 30 * 24 * time.Hour
)

var sessionCartKey = contextKey(uuid.New())

// SessionCart makes sure every request carries a cart session token, issuing a cookie when
// the client has none.
func SessionCart(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		var sessionCartID string

		if cookie, err := r.Cookie(SessionCartCookie); err == nil && cookie.Value != "" {
			sessionCartID = cookie.Value
		} else {
			sessionCartID = uuid.NewString()

			http.SetCookie(w, &http.Cookie{
				Name:     SessionCartCookie,
				Value:    sessionCartID,
				Path:     "/",
				MaxAge:   int(sessionCartMaxAge.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})

			LoggerFromContext(r.Context()).Debug("Issued session cart cookie", slog.String("sessionCartId", sessionCartID))
		}

		ctx := context.WithValue(r.Context(), sessionCartKey, sessionCartID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func SessionCartFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionCartKey).(string); ok {
		return id
	}

	return ""
}

// WithSessionCart stores a session cart token on ctx, as SessionCart does.
func WithSessionCart(ctx context.Context, sessionCartID string) context.Context {
	return context.WithValue(ctx, sessionCartKey, sessionCartID)
}
