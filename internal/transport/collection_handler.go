package transport

import (
	"net/http"

	"region-storefront/internal/domain"
	"region-storefront/internal/middleware"
	"region-storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CollectionHandler serves home page collections publicly and to the admin
type CollectionHandler struct {
	collections service.CollectionService
	logger      *zap.Logger
}

func NewCollectionHandler(collections service.CollectionService, logger *zap.Logger) *CollectionHandler {
	return &CollectionHandler{collections: collections, logger: logger}
}

// RegisterRoutes registers the public collection route
func (h *CollectionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/collections", h.List)
}

// RegisterAdminRoutes registers collection management behind protected
func (h *CollectionHandler) RegisterAdminRoutes(r chi.Router, protected func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(protected)
		r.Get("/collections", h.List)
		r.Post("/collections", h.Create)
		r.Put("/collections/{id}", h.Update)
		r.Delete("/collections/{id}", h.Delete)
	})
}

func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	listing, err := h.collections.List(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list collections")
		return
	}

	markStale(w, listing.Stale)
	middleware.RespondWithJSON(w, http.StatusOK, CollectionListResponse{
		Collections: listing.Collections,
		Stale:       listing.Stale,
	})
}

func (h *CollectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CollectionRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	collection, err := h.collections.Create(r.Context(), domain.Collection{
		ID:          req.ID,
		Title:       req.Title,
		Image:       req.Image,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, err, "create collection")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, collection)
}

func (h *CollectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateCollectionRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	collection, err := h.collections.Update(r.Context(), chi.URLParam(r, "id"), req.toDomain())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update collection")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, collection)
}

func (h *CollectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.collections.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, h.logger, err, "delete collection")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
