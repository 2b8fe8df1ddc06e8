package middleware

import (
	"context"
	"net/http"
	"time"

	"region-storefront/internal/domain"

	"go.uber.org/zap"
)

const (
	RegionCookieName   = "region"
	RegionQueryParam   = "region"
	RegionCookieMaxAge = 365 * 24 * time.Hour
)

// ViewerRegionMiddleware resolves the visitor's region from the query
// string, then the region cookie, then the default.
func ViewerRegionMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			region := ResolveViewerRegion(r)
			logger.Debug("Viewer region resolved", zap.String("region", string(region)))
			next.ServeHTTP(w, r.WithContext(WithViewerRegion(r.Context(), region)))
		})
	}
}

// ResolveViewerRegion reads the region signal of a single request
func ResolveViewerRegion(r *http.Request) domain.ViewerRegion {
	if raw := r.URL.Query().Get(RegionQueryParam); raw != "" {
		if region, ok := domain.ParseViewerRegion(raw); ok {
			return region
		}
	}
	if cookie, err := r.Cookie(RegionCookieName); err == nil {
		if region, ok := domain.ParseViewerRegion(cookie.Value); ok {
			return region
		}
	}
	return domain.DefaultViewerRegion
}

// SetRegionCookie persists the viewer's choice for a year
func SetRegionCookie(w http.ResponseWriter, region domain.ViewerRegion, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     RegionCookieName,
		Value:    string(region),
		Path:     "/",
		MaxAge:   int(RegionCookieMaxAge.Seconds()),
		HttpOnly: false,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func WithViewerRegion(ctx context.Context, region domain.ViewerRegion) context.Context {
	return context.WithValue(ctx, ViewerRegionKey, region)
}

// GetViewerRegion returns the resolved region, or the default when the
// middleware did not run
func GetViewerRegion(ctx context.Context) domain.ViewerRegion {
	if region, ok := ctx.Value(ViewerRegionKey).(domain.ViewerRegion); ok {
		return region
	}
	return domain.DefaultViewerRegion
}
