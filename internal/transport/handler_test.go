package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"region-storefront/internal/docstore"
	"region-storefront/internal/domain"
	"region-storefront/internal/middleware"
	"region-storefront/internal/repository"
	"region-storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "owner@example.com"
	adminPassword = "correct horse battery"
)

// testApp wires real services over an in-memory store behind the same
// routes the server registers.
type testApp struct {
	router      http.Handler
	catalog     service.CatalogService
	collections service.CollectionService
	auth        service.AdminAuthService
	store       docstore.Store
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := zap.NewNop()
	store := docstore.NewMemoryStore()

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	catalogService := service.NewCatalogService(repository.NewProductRepository(store), nil, time.Hour, logger)
	collectionService := service.NewCollectionService(repository.NewCollectionRepository(store), time.Hour, logger)
	categoryService := service.NewCategoryService(repository.NewCategoryRepository(store), logger)
	authService := service.NewAdminAuthService(
		service.AdminCredentials{Email: adminEmail, PasswordHash: string(hash)},
		"test-secret", time.Hour, nil, logger,
	)

	catalogHandler := NewCatalogHandler(catalogService, false, logger)
	collectionHandler := NewCollectionHandler(collectionService, logger)
	adminHandler := NewAdminHandler(authService, catalogService, categoryService, logger)

	auth := middleware.AuthMiddleware(authService, logger)
	requireAdmin := middleware.RequireAdmin(authService.IsAdmin, logger)
	protected := func(next http.Handler) http.Handler { return auth(requireAdmin(next)) }
	passthrough := func(next http.Handler) http.Handler { return next }

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.ViewerRegionMiddleware(logger))
			catalogHandler.RegisterRoutes(r)
			collectionHandler.RegisterRoutes(r)
		})
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.DesktopOnly(logger))
			adminHandler.RegisterRoutes(r, protected, passthrough)
			collectionHandler.RegisterAdminRoutes(r, protected)
		})
	})

	return &testApp{
		router:      r,
		catalog:     catalogService,
		collections: collectionService,
		auth:        authService,
		store:       store,
	}
}

func (a *testApp) do(t *testing.T, method, path string, body interface{}, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, m := range mutate {
		m(req)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) login(t *testing.T) string {
	t.Helper()
	token, _, err := a.auth.Login(context.Background(), adminEmail, adminPassword)
	require.NoError(t, err)
	return token
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withCookie(region string) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: middleware.RegionCookieName, Value: region}) }
}

func (a *testApp) seedProduct(t *testing.T, np domain.NewProduct) domain.Product {
	t.Helper()
	p, err := a.catalog.Create(context.Background(), np)
	require.NoError(t, err)
	return p
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func plush(title string, region domain.Region) domain.NewProduct {
	return domain.NewProduct{
		Title:      title,
		Image:      "https://cdn.example.com/" + title + ".jpg",
		Category:   "plushies",
		Price:      domain.RegionalString{Global: "19.99"},
		AmazonLink: domain.RegionalString{Global: "https://amazon.com/dp/" + title},
		Rating:     4.3,
		Region:     region,
	}
}
