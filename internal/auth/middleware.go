package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"
)

// AuthorizationHeader carries the session token, optionally prefixed with "Bearer ".
const AuthorizationHeader = "Authorization"

// TokenParser verifies session tokens.
type TokenParser interface {
	Parse(raw string) (*Claims, error)
}

// AuthContext contains authentication information attached to a request.
type AuthContext struct {
	UserID    uuid.UUID
	ExpiresAt time.Time
}

// authContextKey is the context key for AuthContext.
type authContextKey struct{}

// WithAuthContext returns a copy of ctx carrying authCtx.
func WithAuthContext(ctx context.Context, authCtx *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, authCtx)
}

// GetAuthContext retrieves the AuthContext from a request context.
func GetAuthContext(ctx context.Context) *AuthContext {
	if authCtx, ok := ctx.Value(authContextKey{}).(*AuthContext); ok {
		return authCtx
	}
	return nil
}

// RequireAuth is a helper to get auth context or return error.
func RequireAuth(ctx context.Context) (*AuthContext, error) {
	authCtx := GetAuthContext(ctx)
	if authCtx == nil {
		return nil, ErrAccessDenied
	}
	return authCtx, nil
}

// Middleware rejects requests without a valid session token and stores the
// authenticated user in the request context.
func Middleware(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := tokens.Parse(extractToken(r.Header.Get(AuthorizationHeader)))
			if err != nil {
				hlog.FromRequest(r).Debug().Err(err).Str("path", r.URL.Path).Msg("authentication failed")
				writeAuthError(w, err)
				return
			}

			ctx := WithAuthContext(r.Context(), &AuthContext{
				UserID:    claims.UserID,
				ExpiresAt: claims.ExpiresAt,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// writeAuthError writes the JSON error body used across the API.
func writeAuthError(w http.ResponseWriter, err error) {
	authErr := NewAuthError(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(authErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    string(authErr.Code),
			"message": authErr.Message,
		},
	})
}
