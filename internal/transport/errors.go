package transport

import (
	"context"
	"errors"
	"net/http"

	"region-storefront/internal/middleware"
	"region-storefront/internal/repository"
	"region-storefront/internal/service"

	"go.uber.org/zap"
)

// respondWithServiceError maps service and repository errors to HTTP
// responses. action completes the sentence "failed to ...".
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, err error, action string) {
	var verr *service.ValidationError

	switch {
	case errors.As(err, &verr):
		logger.Debug("Validation failed", zap.String("action", action), zap.Error(err))
		middleware.RespondWithFieldErrors(w, verr.Fields)
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, repository.ErrCollectionNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "collection not found")
	case errors.Is(err, repository.ErrCategoryNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "category not found")
	case errors.Is(err, service.ErrStoreUnavailable):
		logger.Error("Store unavailable", zap.String("action", action), zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "catalog is temporarily unavailable")
	case errors.Is(err, context.Canceled):
		logger.Debug("Request canceled", zap.String("action", action))
	default:
		logger.Error("Request failed", zap.String("action", action), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

// decodeRequest decodes and validates a JSON body, answering 400 itself on
// failure
func decodeRequest(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		logger.Debug("Request validation failed", zap.String("path", r.URL.Path), zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func markStale(w http.ResponseWriter, stale bool) {
	if stale {
		w.Header().Set("X-Snapshot-Stale", "true")
	}
}
