package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"region-storefront/internal/catalog"
	"region-storefront/internal/domain"
	"region-storefront/internal/repository"

	"go.uber.org/zap"
)

const (
	DefaultFeaturedLimit = 6
	MaxFeaturedLimit     = 24
)

// Listing is a filtered and sorted view of the catalog snapshot.
type Listing struct {
	Products  []domain.Product
	Total     int // products considered before search and category filters
	Stale     bool
	FetchedAt time.Time
}

// CatalogService serves the public catalog and the admin product manager
type CatalogService interface {
	Browse(ctx context.Context, viewer domain.ViewerRegion, spec catalog.Spec, by catalog.SortBy, order catalog.Order) (Listing, error)
	Get(ctx context.Context, viewer domain.ViewerRegion, id string) (domain.Product, error)
	Featured(ctx context.Context, viewer domain.ViewerRegion, limit int) ([]domain.Product, error)

	AdminList(ctx context.Context, spec catalog.Spec, by catalog.SortBy, order catalog.Order) (Listing, error)
	AdminGet(ctx context.Context, id string) (domain.Product, error)
	Create(ctx context.Context, product domain.NewProduct) (domain.Product, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error)
	Delete(ctx context.Context, id string) error

	Refresh(ctx context.Context) error
}

type catalogService struct {
	repo    repository.ProductRepository
	loader  *snapshotLoader[domain.Product]
	prober  ImageProber
	shuffle func(n int, swap func(i, j int))
	logger  *zap.Logger
}

// NewCatalogService creates a catalog service. prober may be nil to skip
// image checks on save.
func NewCatalogService(repo repository.ProductRepository, prober ImageProber, snapshotTTL time.Duration, logger *zap.Logger) CatalogService {
	return &catalogService{
		repo:    repo,
		loader:  newSnapshotLoader(repository.ProductsCollection, repo.List, snapshotTTL, logger),
		prober:  prober,
		shuffle: rand.Shuffle,
		logger:  logger,
	}
}

func (s *catalogService) Refresh(ctx context.Context) error {
	return s.loader.Refresh(ctx)
}

// Browse filters the viewer-visible catalog, then sorts the result
func (s *catalogService) Browse(ctx context.Context, viewer domain.ViewerRegion, spec catalog.Spec, by catalog.SortBy, order catalog.Order) (Listing, error) {
	products, state, err := s.loader.Load(ctx)
	if err != nil {
		return Listing{}, err
	}

	visible := catalog.Filter(products, viewer, catalog.Spec{})
	filtered := catalog.Filter(products, viewer, spec)

	return Listing{
		Products:  catalog.Sort(filtered, by, order),
		Total:     len(visible),
		Stale:     state.Stale,
		FetchedAt: state.FetchedAt,
	}, nil
}

// Get returns a product only when the viewer may see it
func (s *catalogService) Get(ctx context.Context, viewer domain.ViewerRegion, id string) (domain.Product, error) {
	products, _, err := s.loader.Load(ctx)
	if err != nil {
		return domain.Product{}, err
	}

	for _, p := range products {
		if p.ID == id && catalog.IsVisible(p, viewer) {
			return p, nil
		}
	}
	return domain.Product{}, repository.ErrProductNotFound
}

// Featured returns a random sample of the viewer-visible catalog
func (s *catalogService) Featured(ctx context.Context, viewer domain.ViewerRegion, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	if limit > MaxFeaturedLimit {
		limit = MaxFeaturedLimit
	}

	products, _, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	visible := catalog.Filter(products, viewer, catalog.Spec{})
	s.shuffle(len(visible), func(i, j int) {
		visible[i], visible[j] = visible[j], visible[i]
	})

	if len(visible) > limit {
		visible = visible[:limit]
	}
	return visible, nil
}

// AdminList filters the whole catalog regardless of viewer region
func (s *catalogService) AdminList(ctx context.Context, spec catalog.Spec, by catalog.SortBy, order catalog.Order) (Listing, error) {
	products, state, err := s.loader.Load(ctx)
	if err != nil {
		return Listing{}, err
	}

	return Listing{
		Products:  catalog.Sort(catalog.FilterAll(products, spec), by, order),
		Total:     len(products),
		Stale:     state.Stale,
		FetchedAt: state.FetchedAt,
	}, nil
}

// AdminGet reads one product straight from the store
func (s *catalogService) AdminGet(ctx context.Context, id string) (domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

// Create validates and stores a product, then refreshes the snapshot
func (s *catalogService) Create(ctx context.Context, np domain.NewProduct) (domain.Product, error) {
	candidate := domain.Product{
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
	if err := validateProduct(candidate); err != nil {
		return domain.Product{}, err
	}
	if err := probeImage(ctx, s.prober, np.Image); err != nil {
		return domain.Product{}, err
	}

	product, err := s.repo.Create(ctx, np)
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID),
		zap.String("category", product.Category),
		zap.String("region", string(product.Region)),
	)
	s.loader.AfterWrite(ctx)
	return product, nil
}

// Update validates the merged result of a patch before writing the patch
func (s *catalogService) Update(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	// Moving an item out of a clothing branch drops its old subcategory.
	if patch.Category != nil && patch.Subcategory == nil &&
		!catalog.IsClothing(*patch.Category) && existing.Subcategory != "" {
		cleared := ""
		patch.Subcategory = &cleared
	}

	merged := patch.Apply(existing)
	if err := validateProduct(merged); err != nil {
		return domain.Product{}, err
	}
	if patch.Image != nil && *patch.Image != existing.Image {
		if err := probeImage(ctx, s.prober, merged.Image); err != nil {
			return domain.Product{}, err
		}
	}

	if patch.IsEmpty() {
		return existing, nil
	}

	if err := s.repo.Update(ctx, id, patch); err != nil {
		return domain.Product{}, err
	}

	s.logger.Info("Product updated", zap.String("product_id", id))
	s.loader.AfterWrite(ctx)
	return merged, nil
}

// Delete removes a product; a missing product is not an error
func (s *catalogService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Product deleted", zap.String("product_id", id))
	s.loader.AfterWrite(ctx)
	return nil
}
