package middleware

import (
	"context"
	"net/http"
	"strings"

	svcErr "github.com/sevenpm/date-backend/internal/errors"
)

type contextKey string

const userIDKey contextKey = "user_id"

// TokenValidator resolves a bearer token to a user id.
type TokenValidator interface {
	ValidateJWT(token string) (string, error)
}

// Auth creates a middleware enforcing JWT bearer authentication. The resolved
// user id becomes the ambient identity that scopes private records and
// authors every write downstream.
func Auth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				svcErr.Respond(w, svcErr.Unauthorized("authorization header required"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				svcErr.Respond(w, svcErr.Unauthorized("invalid authorization header format"))
				return
			}

			userID, err := validator.ValidateJWT(parts[1])
			if err != nil {
				svcErr.Respond(w, svcErr.Unauthorized("invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID extracts the authenticated user id from context.
func UserID(ctx context.Context) string {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

// WithUserID injects a user id directly, for handler tests.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
