package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"region-storefront/internal/config"
	"region-storefront/internal/docstore"
	custommiddleware "region-storefront/internal/middleware"
	"region-storefront/internal/repository"
	"region-storefront/internal/service"
	"region-storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies are the long-lived resources the server owns once built.
// Redis, ImageProber and Health may be nil.
type Dependencies struct {
	Store       docstore.Store
	Redis       *redis.Client
	ImageProber service.ImageProber
	Health      func(ctx context.Context) map[string]string
}

type Server struct {
	*http.Server
	config      *config.Config
	logger      *zap.Logger
	deps        Dependencies
	catalog     service.CatalogService
	collections service.CollectionService
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Dependencies) *Server {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.IsDevelopment()))

	router.Get("/health", healthHandler(deps.Health))

	// Initialize repositories
	productRepo := repository.NewProductRepository(deps.Store)
	collectionRepo := repository.NewCollectionRepository(deps.Store)
	categoryRepo := repository.NewCategoryRepository(deps.Store)

	// Initialize services
	var denylist service.TokenDenylist
	if deps.Redis != nil {
		denylist = service.NewRedisDenylist(deps.Redis)
	}
	catalogService := service.NewCatalogService(productRepo, deps.ImageProber, cfg.Store.SnapshotTTL, logger)
	collectionService := service.NewCollectionService(collectionRepo, cfg.Store.SnapshotTTL, logger)
	categoryService := service.NewCategoryService(categoryRepo, logger)
	authService := service.NewAdminAuthService(
		service.AdminCredentials{Email: cfg.Admin.Email, PasswordHash: cfg.Admin.PasswordHash},
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessExpiry)*time.Minute,
		denylist,
		logger,
	)

	// Initialize handlers
	catalogHandler := transport.NewCatalogHandler(catalogService, !cfg.Server.IsDevelopment(), logger)
	collectionHandler := transport.NewCollectionHandler(collectionService, logger)
	adminHandler := transport.NewAdminHandler(authService, catalogService, categoryService, logger)

	authMiddleware := custommiddleware.AuthMiddleware(authService, logger)
	requireAdmin := custommiddleware.RequireAdmin(authService.IsAdmin, logger)
	protected := func(next http.Handler) http.Handler {
		return authMiddleware(requireAdmin(next))
	}

	loginLimiter := func(next http.Handler) http.Handler { return next }
	if deps.Redis != nil {
		loginLimiter = custommiddleware.RateLimitMiddleware(deps.Redis, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.LoginRequests,
			Window:            cfg.RateLimit.LoginWindow,
			KeyPrefix:         "ratelimit:admin_login",
		}, logger)
	}

	// Register routes
	router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.ViewerRegionMiddleware(logger))
			catalogHandler.RegisterRoutes(r)
			collectionHandler.RegisterRoutes(r)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(custommiddleware.DesktopOnly(logger))
			adminHandler.RegisterRoutes(r, protected, loginLimiter)
			collectionHandler.RegisterAdminRoutes(r, protected)
		})
	})

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:      cfg,
		logger:      logger,
		deps:        deps,
		catalog:     catalogService,
		collections: collectionService,
	}
}

// Warmup seeds the default collections and loads the first catalog
// snapshot. A failure is logged, not fatal: reads retry the store.
func (s *Server) Warmup(ctx context.Context) {
	if n, err := s.collections.SeedDefaults(ctx); err != nil {
		s.logger.Error("Failed to seed default collections", zap.Error(err))
	} else {
		s.logger.Info("Collections ready", zap.Int("seeded", n))
	}

	if err := s.catalog.Refresh(ctx); err != nil {
		s.logger.Warn("Initial catalog load failed", zap.Error(err))
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.deps.Store != nil {
		if err := s.deps.Store.Close(); err != nil {
			s.logger.Error("Failed to close document store", zap.Error(err))
		}
	}

	if s.deps.Redis != nil {
		if err := s.deps.Redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	_ = s.logger.Sync()
	return nil
}

func healthHandler(check func(ctx context.Context) map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{"status": "ok"}
		status := http.StatusOK

		if check != nil {
			deps := check(r.Context())
			body["dependencies"] = deps
			if deps["status"] == "down" {
				body["status"] = "degraded"
				status = http.StatusServiceUnavailable
			}
		}

		custommiddleware.RespondWithJSON(w, status, body)
	}
}
