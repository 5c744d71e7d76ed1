package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/PaulBabatuyi/privtalk/internal/auth"
)

// context key type for storing auth claims in context
type authContextKey struct{}

// ClaimsFromContext extracts auth claims from the context, if present.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	v := ctx.Value(authContextKey{})
	if v == nil {
		return nil, false
	}
	c, ok := v.(*auth.Claims)
	return c, ok
}

// TokenFromRequest finds the session token: Authorization bearer header
// first, then the jwt cookie, then the token query parameter (used by
// the WebSocket upgrade, where browsers cannot set headers).
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer"))
	}
	if c, err := r.Cookie("jwt"); err == nil {
		return c.Value
	}
	return r.URL.Query().Get("token")
}

// Authenticate verifies the session token and attaches its claims to the
// request context. Requests without a valid token get 401.
func Authenticate(j *auth.JWTManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token == "" {
			http.Error(w, "missing authentication token", http.StatusUnauthorized)
			return
		}

		claims, err := j.VerifyToken(token)
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), authContextKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
