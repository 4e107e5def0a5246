package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKey string

const userKey contextKey = "authenticated_user"

// AuthenticatedUser is the caller identity placed in request context
// by the middleware.
type AuthenticatedUser struct {
	Email string
}

// Middleware validates the bearer token and stores the authenticated
// principal in the request context. Requests without a valid token get
// a 401 with a generic error body.
func (s *JWTService) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			unauthorized(w)
			return
		}

		token := strings.TrimPrefix(authHeader, bearerPrefix)
		claims, err := s.ValidateToken(r.Context(), token)
		if err != nil {
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, &AuthenticatedUser{Email: claims.Email})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetAuthenticatedUser(ctx context.Context) (*AuthenticatedUser, bool) {
	user, ok := ctx.Value(userKey).(*AuthenticatedUser)
	return user, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Authentication required"})
}
