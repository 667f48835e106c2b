package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"member-directory-backend/internal/apperr"
	"member-directory-backend/internal/services"
)

type contextKey string

const identityKey contextKey = "identity"

// AuthMiddleware creates a middleware for JWT authentication
func AuthMiddleware(tokenService *services.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondAppError(w, apperr.Unauthorized("Authorization header required"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondAppError(w, apperr.Unauthorized("Invalid authorization header format"))
				return
			}

			identity, err := tokenService.ValidateJWT(parts[1])
			if err != nil {
				respondAppError(w, apperr.Unauthorized("Invalid token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// WithIdentity stores the authenticated caller in ctx
func WithIdentity(ctx context.Context, identity *services.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity extracts the authenticated caller from context
func GetIdentity(ctx context.Context) *services.Identity {
	identity, ok := ctx.Value(identityKey).(*services.Identity)
	if !ok {
		return nil
	}
	return identity
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) string {
	if identity := GetIdentity(ctx); identity != nil {
		return identity.UserID
	}
	return ""
}

// GetUsername extracts the username from context
func GetUsername(ctx context.Context) string {
	if identity := GetIdentity(ctx); identity != nil {
		return identity.Username
	}
	return ""
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// respondAppError sends err with the status of its kind
func respondAppError(w http.ResponseWriter, err *apperr.Error) {
	respondError(w, err.Message, err.HTTPStatus())
}

// ValidateWebSocketToken validates JWT token from WebSocket query parameter
func ValidateWebSocketToken(token string, tokenService *services.TokenService) (*services.Identity, error) {
	if token == "" {
		return nil, apperr.Unauthorized("token required")
	}
	identity, err := tokenService.ValidateJWT(token)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindUnauthorized, "invalid token")
	}
	return identity, nil
}
