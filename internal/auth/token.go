package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/joelohman/birthday-reminder-be/internal/models"
)

// TokenLookup resolves a bearer access token to its user. Implemented by the
// user service.
type TokenLookup interface {
	GetUserByAccessToken(token string) (models.User, error)
}

type contextKey string

// UserKey is the context key under which the authenticated user is stored.
const UserKey = contextKey("authUser")

// GenerateToken returns a new opaque access token. Tokens are random and
// only ever compared by store lookup; they carry no claims.
func GenerateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// UserFromContext retrieves the authenticated user placed by Middleware.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(UserKey).(models.User)
	return user, ok
}

// Middleware creates a middleware that authenticates requests by access
// token. The token is read from the Authorization header, with or without a
// "Bearer " prefix, and looked up in the user store.
func Middleware(lookup TokenLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("Authorization")
			token = strings.TrimPrefix(token, "Bearer ")
			if token == "" {
				http.Error(w, "Please log in", http.StatusUnauthorized)
				return
			}

			user, err := lookup.GetUserByAccessToken(token)
			if err != nil {
				http.Error(w, "Invalid access token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
