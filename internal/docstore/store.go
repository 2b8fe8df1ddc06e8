// Package docstore is the document database boundary: named collections of
// JSON-shaped documents addressed by id.
package docstore

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("document not found")

// Document is a semantic map from field name to value. Values are the
// shapes produced by encoding/json: string, float64, bool, nil,
// map[string]any and []any. A nil value is the explicit absent marker.
type Document map[string]any

// Record is a stored document and its id.
type Record struct {
	ID   string   `json:"id"`
	Data Document `json:"data"`
}

// Store is implemented by every backend.
type Store interface {
	// List returns every document of a collection in insertion order.
	List(ctx context.Context, collection string) ([]Record, error)
	Get(ctx context.Context, collection, id string) (Record, error)
	// Set creates or fully replaces a document.
	Set(ctx context.Context, collection, id string, doc Document) error
	// Update merges the top-level keys of patch into an existing document
	// and returns ErrNotFound if there is none.
	Update(ctx context.Context, collection, id string, patch Document) error
	// Delete removes a document. Deleting a missing id is not an error.
	Delete(ctx context.Context, collection, id string) error
	Close() error
}
