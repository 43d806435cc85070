// internal/auth/middleware.go
// Token verification for the discovery and moderation API.
// Sign-up and login live in the account service; this package only
// checks the bearer token it issued and exposes the caller to handlers.

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/imadgeboyega/kiekky-nearby/internal/common/utils"
)

type contextKey string

const (
	userIDKey   contextKey = "userID"
	usernameKey contextKey = "username"
	roleKey     contextKey = "role"
)

// Middleware provides authentication middleware
type Middleware struct {
	secret string
}

// NewMiddleware creates a new auth middleware
func NewMiddleware(secret string) *Middleware {
	return &Middleware{secret: secret}
}

// Authenticate verifies the JWT and adds the caller to the request context
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
			return
		}

		claims, err := utils.ValidateJWT(token, m.secret)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		if claims.Type != "access" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token type")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// RequireAdmin must run after Authenticate
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !actor.IsAdmin {
			utils.RespondWithError(w, http.StatusForbidden, "Admin privileges required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// extractToken supports "Bearer <token>" and, for websocket upgrades where
// browsers cannot set headers, an access_token query parameter.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return r.URL.Query().Get("access_token")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

// Actor is the authenticated caller
type Actor struct {
	UserID   int64
	Username string
	IsAdmin  bool
}

// WithClaims stores verified claims on ctx
func WithClaims(ctx context.Context, claims *utils.JWTClaims) context.Context {
	ctx = context.WithValue(ctx, userIDKey, claims.UserID)
	ctx = context.WithValue(ctx, usernameKey, claims.Username)
	ctx = context.WithValue(ctx, roleKey, claims.Role)
	return ctx
}

// GetUserIDFromContext extracts user ID from request context
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

// ActorFromContext returns the caller set by Authenticate
func ActorFromContext(ctx context.Context) (Actor, bool) {
	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		return Actor{}, false
	}
	username, _ := ctx.Value(usernameKey).(string)
	role, _ := ctx.Value(roleKey).(string)

	return Actor{
		UserID:   userID,
		Username: username,
		IsAdmin:  role == utils.RoleAdmin,
	}, true
}
