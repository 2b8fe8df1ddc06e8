package transport

import (
	"net/http"
	"strconv"

	"region-storefront/internal/catalog"
	"region-storefront/internal/domain"
	"region-storefront/internal/middleware"
	"region-storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogHandler serves the public storefront
type CatalogHandler struct {
	catalog      service.CatalogService
	secureCookie bool
	logger       *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler. secureCookie marks the
// region cookie Secure, which production deployments behind TLS want.
func NewCatalogHandler(catalogService service.CatalogService, secureCookie bool, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog:      catalogService,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// RegisterRoutes registers the public catalog routes. The viewer region
// middleware must already be installed on r.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.ListProducts)
	r.Get("/products/{id}", h.GetProduct)
	r.Get("/products/{id}/buy", h.Buy)
	r.Get("/featured", h.Featured)
	r.Get("/taxonomy", h.Taxonomy)
	r.Get("/region", h.GetRegion)
	r.Put("/region", h.SetRegion)
}

// ListProducts handles the filtered, sorted product grid
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewerRegion(r.Context())
	q := r.URL.Query()

	spec := catalog.Spec{
		SearchQuery: q.Get("search"),
		Category:    q.Get("category"),
		Subcategory: q.Get("subcategory"),
	}
	by, order := catalog.ParseSort(q.Get("sort"), q.Get("order"))

	listing, err := h.catalog.Browse(r.Context(), viewer, spec, by, order)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list products")
		return
	}

	resp := ProductListResponse{
		Products: toProductResponses(listing.Products, viewer),
		Count:    len(listing.Products),
		Total:    listing.Total,
		Stale:    listing.Stale,
		Region:   string(viewer),
	}
	if !listing.FetchedAt.IsZero() {
		resp.FetchedAt = &listing.FetchedAt
	}

	markStale(w, listing.Stale)
	middleware.RespondWithJSON(w, http.StatusOK, resp)
}

// GetProduct handles a single product page
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewerRegion(r.Context())

	product, err := h.catalog.Get(r.Context(), viewer, chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product, viewer))
}

// Buy redirects to the marketplace link for the viewer's region
func (h *CatalogHandler) Buy(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewerRegion(r.Context())

	product, err := h.catalog.Get(r.Context(), viewer, chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "resolve purchase link")
		return
	}

	link := catalog.ResolveLink(product, viewer)
	if link == catalog.NoLink {
		middleware.RespondWithError(w, http.StatusNotFound, "no purchase link available")
		return
	}

	h.logger.Debug("Redirecting to marketplace",
		zap.String("product_id", product.ID),
		zap.String("region", string(viewer)),
	)
	http.Redirect(w, r, link, http.StatusFound)
}

// Featured handles the home page sample
func (h *CatalogHandler) Featured(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewerRegion(r.Context())

	limit := service.DefaultFeaturedLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	products, err := h.catalog.Featured(r.Context(), viewer, limit)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "load featured products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"products": toProductResponses(products, viewer),
		"count":    len(products),
	})
}

// Taxonomy returns the static category tree
func (h *CatalogHandler) Taxonomy(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"categories": catalog.Taxonomy(),
	})
}

func (h *CatalogHandler) GetRegion(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, regionResponse(middleware.GetViewerRegion(r.Context())))
}

// SetRegion persists the viewer's region choice in a cookie
func (h *CatalogHandler) SetRegion(w http.ResponseWriter, r *http.Request) {
	var req RegionRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	region, _ := domain.ParseViewerRegion(req.Region)
	middleware.SetRegionCookie(w, region, h.secureCookie)
	middleware.RespondWithJSON(w, http.StatusOK, regionResponse(region))
}

func regionResponse(region domain.ViewerRegion) RegionResponse {
	return RegionResponse{
		Region:    string(region),
		Available: []string{string(domain.ViewerGlobal), string(domain.ViewerIndia)},
	}
}
