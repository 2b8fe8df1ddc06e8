package repository

import (
	"context"
	"testing"

	"region-storefront/internal/docstore"
	"region-storefront/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// Feature: region-storefront, Property 10: Product creation preserves attributes
// Validates: Requirements 4.3
func TestProperty_ProductCreationPreservesAttributes(t *testing.T) {
	repo := NewProductRepository(docstore.NewMemoryStore())

	properties := gopter.NewProperties(nil)

	properties.Property("creating and retrieving a product preserves all attributes", prop.ForAll(
		func(title, globalLink, indiaPrice string, rating float64, region domain.Region) bool {
			ctx := context.Background()
			created, err := repo.Create(ctx, domain.NewProduct{
				Title:       title,
				Image:       "https://cdn.example/x.jpg",
				Category:    "clothing-women",
				Subcategory: "women-jackets",
				Price:       domain.RegionalString{India: indiaPrice},
				AmazonLink:  domain.RegionalString{Global: globalLink},
				Rating:      rating,
				Region:      region,
			})
			if err != nil || created.ID == "" {
				return false
			}

			got, err := repo.FindByID(ctx, created.ID)
			if err != nil {
				return false
			}
			return got.Title == title &&
				got.Category == "clothing-women" &&
				got.Subcategory == "women-jackets" &&
				got.Price.India == indiaPrice && got.Price.Global == "" &&
				got.AmazonLink.Global == globalLink && got.AmazonLink.India == "" &&
				got.Rating == rating &&
				got.Region == region
		},
		gen.AlphaString(),
		gen.Identifier(),
		gen.NumString(),
		gen.Float64Range(0, 5),
		gen.OneConstOf(domain.RegionGlobal, domain.RegionIndia, domain.RegionBoth),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductRepository_KeepsCallerID(t *testing.T) {
	repo := NewProductRepository(docstore.NewMemoryStore())

	created, err := repo.Create(context.Background(), domain.NewProduct{ID: "fixed-id", Title: "x", Region: domain.RegionBoth})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", created.ID)
}

func TestProductRepository_UnsetWritesExplicitNull(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	repo := NewProductRepository(store)

	created, err := repo.Create(ctx, domain.NewProduct{
		Title:       "Hoodie",
		Category:    "clothing-men",
		Subcategory: "men-hoodies",
		AmazonLink:  domain.RegionalString{Global: "https://amazon.com/h"},
		Region:      domain.RegionGlobal,
	})
	require.NoError(t, err)

	rec, err := store.Get(ctx, ProductsCollection, created.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"global": "https://amazon.com/h", "india": nil}, rec.Data["amazonLink"])
	price, present := rec.Data["price"]
	assert.True(t, present)
	assert.Nil(t, price)

	require.NoError(t, repo.Update(ctx, created.ID, domain.ProductPatch{
		Category:    strPtr("anime"),
		Subcategory: strPtr(""),
	}))

	rec, err = store.Get(ctx, ProductsCollection, created.ID)
	require.NoError(t, err)
	sub, present := rec.Data["subcategory"]
	assert.True(t, present)
	assert.Nil(t, sub)
	assert.Equal(t, "Hoodie", rec.Data["title"])

	got, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "anime", got.Category)
	assert.Empty(t, got.Subcategory)
}

func TestProductRepository_MalformedRecordsDegrade(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, ProductsCollection, "bad", docstore.Document{
		"rating":     "4.5",
		"price":      "999",
		"amazonLink": 42.0,
		"region":     "mars",
	}))
	require.NoError(t, store.Set(ctx, ProductsCollection, "good", docstore.Document{
		"title":  "Neko Plush",
		"region": "india",
	}))

	products, err := NewProductRepository(store).List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)

	bad := products[0]
	assert.Equal(t, "bad", bad.ID)
	assert.Empty(t, bad.Title)
	assert.Empty(t, bad.Category)
	assert.Equal(t, 4.5, bad.Rating)
	assert.Equal(t, domain.RegionalString{Global: "999", India: "999"}, bad.Price)
	assert.True(t, bad.AmazonLink.IsZero())
	assert.Equal(t, domain.RegionBoth, bad.Region)

	assert.Equal(t, domain.RegionIndia, products[1].Region)
}

func TestProductRepository_NotFoundAndIdempotentDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(docstore.NewMemoryStore())

	_, err := repo.FindByID(ctx, "ghost")
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, repo.Update(ctx, "ghost", domain.ProductPatch{Title: strPtr("x")}), ErrProductNotFound)

	created, err := repo.Create(ctx, domain.NewProduct{Title: "x", Region: domain.RegionBoth})
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, created.ID))
	require.NoError(t, repo.Delete(ctx, created.ID))

	products, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}
