package transport

import (
	"errors"
	"net/http"

	"region-storefront/internal/catalog"
	"region-storefront/internal/middleware"
	"region-storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AdminHandler serves the admin login and the product and category managers
type AdminHandler struct {
	auth       service.AdminAuthService
	catalog    service.CatalogService
	categories service.CategoryService
	logger     *zap.Logger
}

func NewAdminHandler(auth service.AdminAuthService, catalogService service.CatalogService, categories service.CategoryService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		auth:       auth,
		catalog:    catalogService,
		categories: categories,
		logger:     logger,
	}
}

// RegisterRoutes registers admin routes on a router already mounted at
// /api/admin. loginLimiter wraps the login route only.
func (h *AdminHandler) RegisterRoutes(r chi.Router, protected, loginLimiter func(http.Handler) http.Handler) {
	r.With(loginLimiter).Post("/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(protected)
		r.Post("/logout", h.Logout)
		r.Get("/me", h.Me)

		r.Get("/products", h.ListProducts)
		r.Post("/products", h.CreateProduct)
		r.Get("/products/{id}", h.GetProduct)
		r.Put("/products/{id}", h.UpdateProduct)
		r.Delete("/products/{id}", h.DeleteProduct)

		r.Get("/categories", h.ListCategories)
		r.Post("/categories", h.CreateCategory)
		r.Put("/categories/{id}", h.UpdateCategory)
		r.Delete("/categories/{id}", h.DeleteCategory)
	})
}

// Login handles admin authentication
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	token, principal, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.logger.Error("Login failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, LoginResponse{
		AccessToken: token,
		ExpiresAt:   principal.ExpiresAt,
		Admin:       toAdminProfile(principal),
	})
}

// Logout revokes the token the request was made with
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.auth.Logout(r.Context(), principal); err != nil {
		h.logger.Error("Logout failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to logout")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

func (h *AdminHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, toAdminProfile(principal))
}

// ListProducts handles the admin product table
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	spec := catalog.Spec{
		SearchQuery: q.Get("search"),
		Category:    q.Get("category"),
		Subcategory: q.Get("subcategory"),
		Region:      q.Get("region"),
	}
	by, order := catalog.ParseSort(q.Get("sort"), q.Get("order"))

	listing, err := h.catalog.AdminList(r.Context(), spec, by, order)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list products")
		return
	}

	markStale(w, listing.Stale)
	middleware.RespondWithJSON(w, http.StatusOK, AdminProductListResponse{
		Products: listing.Products,
		Count:    len(listing.Products),
		Total:    listing.Total,
		Stale:    listing.Stale,
	})
}

func (h *AdminHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.AdminGet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "get product")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	product, err := h.catalog.Create(r.Context(), req.toDomain())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "create product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	product, err := h.catalog.Update(r.Context(), chi.URLParam(r, "id"), req.toDomain())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct succeeds for ids that no longer exist
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, h.logger, err, "delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list categories")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	category, err := h.categories.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "create category")
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req UpdateCategoryRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	if err := h.categories.Update(r.Context(), chi.URLParam(r, "id"), req.toDomain()); err != nil {
		respondWithServiceError(w, h.logger, err, "update category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, h.logger, err, "delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
