package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"region-storefront/internal/catalog"
	"region-storefront/internal/docstore"
	"region-storefront/internal/domain"
	"region-storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// flakyProductRepository wraps a real repository and can be told to fail.
type flakyProductRepository struct {
	repository.ProductRepository
	mu       sync.Mutex
	failList bool
	lists    int
}

func (f *flakyProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	f.lists++
	fail := f.failList
	f.mu.Unlock()
	if fail {
		return nil, errors.New("store unavailable")
	}
	return f.ProductRepository.List(ctx)
}

func (f *flakyProductRepository) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failList = v
}

type stubProber struct {
	err   error
	calls []string
}

func (p *stubProber) Probe(ctx context.Context, url string) error {
	p.calls = append(p.calls, url)
	return p.err
}

func newTestCatalog(t *testing.T) (CatalogService, *flakyProductRepository, *stubProber) {
	t.Helper()
	repo := &flakyProductRepository{ProductRepository: repository.NewProductRepository(docstore.NewMemoryStore())}
	prober := &stubProber{}
	return NewCatalogService(repo, prober, time.Hour, zap.NewNop()), repo, prober
}

func validProduct(title string, region domain.Region) domain.NewProduct {
	return domain.NewProduct{
		Title:      title,
		Image:      "https://cdn.example.com/" + title + ".jpg",
		Category:   "plushies",
		AmazonLink: domain.RegionalString{Global: "https://amazon.com/dp/1"},
		Price:      domain.RegionalString{Global: "19.99"},
		Rating:     4,
		Region:     region,
	}
}

func TestCatalogService_BrowseScenario(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestCatalog(t)

	neko := validProduct("Neko Plush", domain.RegionBoth)
	neko.Rating = 5
	mug := validProduct("Gamer Mug", domain.RegionGlobal)
	mug.Category = "gaming"
	mug.Rating = 3
	hoodie := validProduct("Desi Hoodie", domain.RegionIndia)
	hoodie.Category = "clothing-men"
	hoodie.Subcategory = "men-hoodies"

	for _, np := range []domain.NewProduct{neko, mug, hoodie} {
		_, err := svc.Create(ctx, np)
		require.NoError(t, err)
	}

	listing, err := svc.Browse(ctx, domain.ViewerGlobal, catalog.Spec{Category: "all", Subcategory: "all"}, catalog.SortTitle, catalog.Asc)
	require.NoError(t, err)
	require.Len(t, listing.Products, 2)
	assert.Equal(t, "Gamer Mug", listing.Products[0].Title)
	assert.Equal(t, "Neko Plush", listing.Products[1].Title)
	assert.Equal(t, 2, listing.Total)
	assert.False(t, listing.Stale)

	india, err := svc.Browse(ctx, domain.ViewerIndia, catalog.Spec{Category: "clothing"}, catalog.SortNone, catalog.Asc)
	require.NoError(t, err)
	require.Len(t, india.Products, 1)
	assert.Equal(t, "Desi Hoodie", india.Products[0].Title)
}

func TestCatalogService_KeepsLastGoodSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := &flakyProductRepository{ProductRepository: repository.NewProductRepository(docstore.NewMemoryStore())}
	svc := NewCatalogService(repo, nil, time.Nanosecond, zap.NewNop())

	_, err := svc.Create(ctx, validProduct("Neko Plush", domain.RegionBoth))
	require.NoError(t, err)

	repo.setFail(true)
	time.Sleep(time.Millisecond)

	listing, err := svc.Browse(ctx, domain.ViewerGlobal, catalog.Spec{}, catalog.SortNone, catalog.Asc)
	require.NoError(t, err)
	assert.True(t, listing.Stale)
	assert.Len(t, listing.Products, 1)

	repo.setFail(false)
	time.Sleep(time.Millisecond)
	listing, err = svc.Browse(ctx, domain.ViewerGlobal, catalog.Spec{}, catalog.SortNone, catalog.Asc)
	require.NoError(t, err)
	assert.False(t, listing.Stale)
}

func TestCatalogService_FailsWithoutAnySnapshot(t *testing.T) {
	svc, repo, _ := newTestCatalog(t)
	repo.setFail(true)

	_, err := svc.Browse(context.Background(), domain.ViewerGlobal, catalog.Spec{}, catalog.SortNone, catalog.Asc)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestCatalogService_ServesFromSnapshotUntilWrite(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestCatalog(t)

	for i := 0; i < 3; i++ {
		_, err := svc.Browse(ctx, domain.ViewerGlobal, catalog.Spec{}, catalog.SortNone, catalog.Asc)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, repo.lists)

	_, err := svc.Create(ctx, validProduct("Mug", domain.RegionBoth))
	require.NoError(t, err)
	assert.Equal(t, 2, repo.lists)

	listing, err := svc.Browse(ctx, domain.ViewerGlobal, catalog.Spec{}, catalog.SortNone, catalog.Asc)
	require.NoError(t, err)
	assert.Len(t, listing.Products, 1)
	assert.Equal(t, 2, repo.lists)
}

func TestCatalogService_GetHidesOtherRegion(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestCatalog(t)

	created, err := svc.Create(ctx, validProduct("India Only", domain.RegionIndia))
	require.NoError(t, err)

	_, err = svc.Get(ctx, domain.ViewerGlobal, created.ID)
	assert.ErrorIs(t, err, repository.ErrProductNotFound)

	got, err := svc.Get(ctx, domain.ViewerIndia, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "India Only", got.Title)
}

func TestCatalogService_Featured(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestCatalog(t)

	for _, title := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		_, err := svc.Create(ctx, validProduct(title, domain.RegionBoth))
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, validProduct("hidden", domain.RegionIndia))
	require.NoError(t, err)

	featured, err := svc.Featured(ctx, domain.ViewerGlobal, 4)
	require.NoError(t, err)
	assert.Len(t, featured, 4)
	for _, p := range featured {
		assert.NotEqual(t, "hidden", p.Title)
	}

	all, err := svc.Featured(ctx, domain.ViewerGlobal, 100)
	require.NoError(t, err)
	assert.Len(t, all, 8)

	def, err := svc.Featured(ctx, domain.ViewerGlobal, 0)
	require.NoError(t, err)
	assert.Len(t, def, DefaultFeaturedLimit)
}

func TestCatalogService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestCatalog(t)

	bad := domain.NewProduct{
		Category:    "clothing-women",
		Subcategory: "men-hoodies",
		Rating:      7,
		Region:      "mars",
		AmazonLink:  domain.RegionalString{India: "not a url"},
	}
	_, err := svc.Create(ctx, bad)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "image")
	assert.Contains(t, verr.Fields, "subcategory")
	assert.Contains(t, verr.Fields, "rating")
	assert.Contains(t, verr.Fields, "region")
	assert.Contains(t, verr.Fields, "amazonLink.india")

	products, err := repo.ProductRepository.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestCatalogService_ImageProbe(t *testing.T) {
	ctx := context.Background()
	svc, _, prober := newTestCatalog(t)
	prober.err = ErrNotAnImage

	_, err := svc.Create(ctx, validProduct("Neko", domain.RegionBoth))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "image")

	prober.err = nil
	created, err := svc.Create(ctx, validProduct("Neko", domain.RegionBoth))
	require.NoError(t, err)

	calls := len(prober.calls)
	title := "Renamed"
	_, err = svc.Update(ctx, created.ID, domain.ProductPatch{Title: &title})
	require.NoError(t, err)
	assert.Len(t, prober.calls, calls, "unchanged image is not probed again")
}

func TestCatalogService_UpdateClearsSubcategoryWhenLeavingClothing(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestCatalog(t)

	np := validProduct("Hoodie", domain.RegionBoth)
	np.Category = "clothing-unisex"
	np.Subcategory = "unisex-hoodies"
	created, err := svc.Create(ctx, np)
	require.NoError(t, err)

	category := "tech-wearables"
	updated, err := svc.Update(ctx, created.ID, domain.ProductPatch{Category: &category})
	require.NoError(t, err)
	assert.Equal(t, "tech-wearables", updated.Category)
	assert.Empty(t, updated.Subcategory)

	got, err := svc.AdminGet(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Subcategory)

	listing, err := svc.Browse(ctx, domain.ViewerGlobal, catalog.Spec{Category: "tech"}, catalog.SortNone, catalog.Asc)
	require.NoError(t, err)
	assert.Len(t, listing.Products, 1)
}

func TestCatalogService_UpdateAndDeleteMissing(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestCatalog(t)

	title := "x"
	_, err := svc.Update(ctx, "ghost", domain.ProductPatch{Title: &title})
	assert.ErrorIs(t, err, repository.ErrProductNotFound)

	assert.NoError(t, svc.Delete(ctx, "ghost"))
}

func TestCatalogService_AdminListRegionAndSort(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestCatalog(t)

	for _, c := range []struct {
		title  string
		region domain.Region
		rating float64
	}{
		{"Alpha", domain.RegionGlobal, 2},
		{"Beta", domain.RegionIndia, 5},
		{"Gamma", domain.RegionBoth, 3},
	} {
		np := validProduct(c.title, c.region)
		np.Rating = c.rating
		_, err := svc.Create(ctx, np)
		require.NoError(t, err)
	}

	listing, err := svc.AdminList(ctx, catalog.Spec{Region: "india"}, catalog.SortRating, catalog.Desc)
	require.NoError(t, err)
	require.Len(t, listing.Products, 2)
	assert.Equal(t, "Beta", listing.Products[0].Title)
	assert.Equal(t, "Gamma", listing.Products[1].Title)
	assert.Equal(t, 3, listing.Total)
}
