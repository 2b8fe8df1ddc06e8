package repository

import (
	"context"
	"errors"
	"fmt"

	"region-storefront/internal/docstore"
	"region-storefront/internal/domain"

	"github.com/google/uuid"
)

// ProductsCollection is the document collection holding products.
const ProductsCollection = "products"

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository is the catalog store for products
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	FindByID(ctx context.Context, id string) (domain.Product, error)
	Create(ctx context.Context, product domain.NewProduct) (domain.Product, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch) error
	Delete(ctx context.Context, id string) error
}

type productRepository struct {
	store docstore.Store
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(store docstore.Store) ProductRepository {
	return &productRepository{store: store}
}

// List returns every stored product in insertion order
func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	records, err := r.store.List(ctx, ProductsCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]domain.Product, 0, len(records))
	for _, rec := range records {
		products = append(products, decodeProduct(rec))
	}
	return products, nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	rec, err := r.store.Get(ctx, ProductsCollection, id)
	if err != nil {
		return domain.Product{}, wrapNotFound(err, ErrProductNotFound, "find product by ID")
	}
	return decodeProduct(rec), nil
}

// Create stores a new product, generating an ID when none is given
func (r *productRepository) Create(ctx context.Context, np domain.NewProduct) (domain.Product, error) {
	if np.ID == "" {
		np.ID = uuid.NewString()
	}

	product := domain.Product{
		ID:          np.ID,
		Title:       np.Title,
		Image:       np.Image,
		Category:    np.Category,
		Subcategory: np.Subcategory,
		Price:       np.Price,
		AmazonLink:  np.AmazonLink,
		Rating:      np.Rating,
		Region:      np.Region,
	}

	if err := r.store.Set(ctx, ProductsCollection, product.ID, encodeProduct(product)); err != nil {
		return domain.Product{}, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// Update applies a partial update; fields absent from the patch are untouched
func (r *productRepository) Update(ctx context.Context, id string, patch domain.ProductPatch) error {
	err := r.store.Update(ctx, ProductsCollection, id, encodeProductPatch(patch))
	return wrapNotFound(err, ErrProductNotFound, "update product")
}

// Delete removes a product; deleting a missing product succeeds
func (r *productRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, ProductsCollection, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func decodeProduct(rec docstore.Record) domain.Product {
	doc := rec.Data
	return domain.Product{
		ID:          rec.ID,
		Title:       stringField(doc, "title"),
		Image:       stringField(doc, "image"),
		Category:    stringField(doc, "category"),
		Subcategory: stringField(doc, "subcategory"),
		Price:       regionalField(doc, "price"),
		AmazonLink:  regionalField(doc, "amazonLink"),
		Rating:      floatField(doc, "rating"),
		Region:      regionField(doc),
	}
}

func encodeProduct(p domain.Product) docstore.Document {
	return docstore.Document{
		"title":       p.Title,
		"image":       p.Image,
		"category":    p.Category,
		"subcategory": optional(p.Subcategory),
		"price":       regionalValue(p.Price),
		"amazonLink":  regionalValue(p.AmazonLink),
		"rating":      p.Rating,
		"region":      string(p.Region),
	}
}

func encodeProductPatch(p domain.ProductPatch) docstore.Document {
	doc := docstore.Document{}
	if p.Title != nil {
		doc["title"] = *p.Title
	}
	if p.Image != nil {
		doc["image"] = *p.Image
	}
	if p.Category != nil {
		doc["category"] = *p.Category
	}
	if p.Subcategory != nil {
		doc["subcategory"] = optional(*p.Subcategory)
	}
	if p.Price != nil {
		doc["price"] = regionalValue(*p.Price)
	}
	if p.AmazonLink != nil {
		doc["amazonLink"] = regionalValue(*p.AmazonLink)
	}
	if p.Rating != nil {
		doc["rating"] = *p.Rating
	}
	if p.Region != nil {
		doc["region"] = string(*p.Region)
	}
	return doc
}
