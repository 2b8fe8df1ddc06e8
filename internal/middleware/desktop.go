package middleware

import (
	"net/http"
	"regexp"
	"strconv"

	"go.uber.org/zap"
)

const (
	// ViewportWidthHeader lets the admin client report its window width.
	ViewportWidthHeader = "X-Viewport-Width"
	MinDesktopWidth     = 768
)

var mobileUserAgent = regexp.MustCompile(`(?i)android|webos|iphone|ipad|ipod|blackberry|iemobile|opera mini|mobile`)

// IsMobileRequest reports whether the request comes from a phone or tablet
// sized client
func IsMobileRequest(r *http.Request) bool {
	if mobileUserAgent.MatchString(r.UserAgent()) {
		return true
	}
	if raw := r.Header.Get(ViewportWidthHeader); raw != "" {
		if width, err := strconv.Atoi(raw); err == nil && width < MinDesktopWidth {
			return true
		}
	}
	return false
}

// DesktopOnly refuses the admin surface to mobile clients
func DesktopOnly(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsMobileRequest(r) {
				logger.Debug("Mobile client refused admin access",
					zap.String("user_agent", r.UserAgent()),
				)
				RespondWithError(w, http.StatusForbidden, "the admin panel is only available on desktop")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
