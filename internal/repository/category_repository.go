package repository

import (
	"context"
	"errors"
	"fmt"

	"region-storefront/internal/docstore"
	"region-storefront/internal/domain"

	"github.com/google/uuid"
)

const CategoriesCollection = "categories"

var ErrCategoryNotFound = errors.New("category not found")

// CategoryRepository stores editorial category documents
type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, category domain.Category) (domain.Category, error)
	Update(ctx context.Context, id string, patch domain.CategoryPatch) error
	Delete(ctx context.Context, id string) error
}

type categoryRepository struct {
	store docstore.Store
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(store docstore.Store) CategoryRepository {
	return &categoryRepository{store: store}
}

// List retrieves all categories
func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	records, err := r.store.List(ctx, CategoriesCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]domain.Category, 0, len(records))
	for _, rec := range records {
		categories = append(categories, domain.Category{
			ID:          rec.ID,
			Name:        stringField(rec.Data, "name"),
			Description: stringField(rec.Data, "description"),
			Slug:        stringField(rec.Data, "slug"),
		})
	}
	return categories, nil
}

// Create inserts a new category
func (r *categoryRepository) Create(ctx context.Context, c domain.Category) (domain.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	doc := docstore.Document{
		"name":        c.Name,
		"description": optional(c.Description),
		"slug":        c.Slug,
	}
	if err := r.store.Set(ctx, CategoriesCollection, c.ID, doc); err != nil {
		return domain.Category{}, fmt.Errorf("failed to create category: %w", err)
	}
	return c, nil
}

// Update changes the given fields of a category
func (r *categoryRepository) Update(ctx context.Context, id string, patch domain.CategoryPatch) error {
	doc := docstore.Document{}
	if patch.Name != nil {
		doc["name"] = *patch.Name
	}
	if patch.Description != nil {
		doc["description"] = optional(*patch.Description)
	}
	if patch.Slug != nil {
		doc["slug"] = *patch.Slug
	}
	return wrapNotFound(r.store.Update(ctx, CategoriesCollection, id, doc), ErrCategoryNotFound, "update category")
}

// Delete removes a category
func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, CategoriesCollection, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
