package middleware

import (
	"context"
	"net/http"
	"strings"

	"region-storefront/internal/domain"

	"go.uber.org/zap"
)

type contextKey string

const (
	PrincipalKey    contextKey = "principal"
	ViewerRegionKey contextKey = "viewer_region"
)

// TokenValidator turns a bearer token into the principal it was issued to
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (domain.Principal, error)
}

// AuthMiddleware validates bearer tokens and stores the principal in the
// request context
func AuthMiddleware(validator TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				RespondWithError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			// Check for Bearer token format
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				logger.Debug("Invalid authorization header format")
				RespondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			principal, err := validator.ValidateToken(r.Context(), parts[1])
			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				RespondWithError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			logger.Debug("Admin authenticated",
				zap.String("email", principal.Email),
				zap.String("token_id", principal.TokenID),
			)

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// WithPrincipal returns a context carrying principal
func WithPrincipal(ctx context.Context, principal domain.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, principal)
}

// GetPrincipal extracts the authenticated principal from request context
func GetPrincipal(ctx context.Context) (domain.Principal, bool) {
	principal, ok := ctx.Value(PrincipalKey).(domain.Principal)
	return principal, ok
}
