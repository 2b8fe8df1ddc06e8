package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

// RequireAdmin lets a request through only when its principal's email is
// on the admin allow-list. It must run after AuthMiddleware.
func RequireAdmin(isAdmin func(email string) bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r.Context())
			if !ok {
				logger.Warn("Principal not found in context")
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			if !isAdmin(principal.Email) {
				logger.Warn("Non-admin principal attempted to access admin endpoint",
					zap.String("email", principal.Email),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
