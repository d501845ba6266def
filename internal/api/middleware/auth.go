package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/prasad-echortech/chat-feature/internal/identity"
)

type contextKey string

const userContextKey contextKey = "user"

// AuthMiddleware authenticates requests against the identity provider.
type AuthMiddleware struct {
	provider identity.Provider
}

// NewAuthMiddleware creates an auth middleware over the given provider.
func NewAuthMiddleware(provider identity.Provider) *AuthMiddleware {
	return &AuthMiddleware{provider: provider}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved user identifier in the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			http.Error(w, `{"error":"authentication required"}`, http.StatusUnauthorized)
			return
		}

		user, err := m.provider.Authenticate(r.Context(), token)
		if err != nil {
			http.Error(w, `{"error":"authentication failed"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserFromContext returns the authenticated user, or "" when absent.
func GetUserFromContext(ctx context.Context) string {
	user, _ := ctx.Value(userContextKey).(string)
	return user
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) || len(h) == len(prefix) {
		return "", false
	}
	return h[len(prefix):], true
}
