package repository

import (
	"context"
	"errors"
	"fmt"

	"region-storefront/internal/docstore"
	"region-storefront/internal/domain"
)

const CollectionsCollection = "collections"

var ErrCollectionNotFound = errors.New("collection not found")

// CollectionRepository stores home page collections
type CollectionRepository interface {
	List(ctx context.Context) ([]domain.Collection, error)
	FindByID(ctx context.Context, id string) (domain.Collection, error)
	Save(ctx context.Context, collection domain.Collection) error
	Update(ctx context.Context, id string, patch domain.CollectionPatch) error
	Delete(ctx context.Context, id string) error
}

type collectionRepository struct {
	store docstore.Store
}

func NewCollectionRepository(store docstore.Store) CollectionRepository {
	return &collectionRepository{store: store}
}

func (r *collectionRepository) List(ctx context.Context) ([]domain.Collection, error) {
	records, err := r.store.List(ctx, CollectionsCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	collections := make([]domain.Collection, 0, len(records))
	for _, rec := range records {
		collections = append(collections, decodeCollection(rec))
	}
	return collections, nil
}

func (r *collectionRepository) FindByID(ctx context.Context, id string) (domain.Collection, error) {
	rec, err := r.store.Get(ctx, CollectionsCollection, id)
	if err != nil {
		return domain.Collection{}, wrapNotFound(err, ErrCollectionNotFound, "find collection")
	}
	return decodeCollection(rec), nil
}

// Save creates or replaces a collection under its ID
func (r *collectionRepository) Save(ctx context.Context, c domain.Collection) error {
	doc := docstore.Document{
		"id":          c.ID,
		"title":       c.Title,
		"image":       optional(c.Image),
		"category":    c.Category,
		"description": optional(c.Description),
	}
	if err := r.store.Set(ctx, CollectionsCollection, c.ID, doc); err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}
	return nil
}

func (r *collectionRepository) Update(ctx context.Context, id string, patch domain.CollectionPatch) error {
	doc := docstore.Document{}
	if patch.Title != nil {
		doc["title"] = *patch.Title
	}
	if patch.Image != nil {
		doc["image"] = optional(*patch.Image)
	}
	if patch.Category != nil {
		doc["category"] = *patch.Category
	}
	if patch.Description != nil {
		doc["description"] = optional(*patch.Description)
	}
	return wrapNotFound(r.store.Update(ctx, CollectionsCollection, id, doc), ErrCollectionNotFound, "update collection")
}

func (r *collectionRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, CollectionsCollection, id); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return nil
}

func decodeCollection(rec docstore.Record) domain.Collection {
	return domain.Collection{
		ID:          rec.ID,
		Title:       stringField(rec.Data, "title"),
		Image:       stringField(rec.Data, "image"),
		Category:    stringField(rec.Data, "category"),
		Description: stringField(rec.Data, "description"),
	}
}
