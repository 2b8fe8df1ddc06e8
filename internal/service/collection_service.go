package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"region-storefront/internal/catalog"
	"region-storefront/internal/domain"
	"region-storefront/internal/repository"

	"go.uber.org/zap"
)

// DefaultCollections are written at startup when missing.
var DefaultCollections = []domain.Collection{
	{ID: "plushies", Title: "Plushies", Category: "plushies", Description: "Cute and cuddly plushies collection"},
	{ID: "anime", Title: "Anime", Category: "anime", Description: "Anime merchandise and collectibles"},
	{ID: "gaming", Title: "Gaming", Category: "gaming", Description: "Gaming merchandise and collectibles"},
	{ID: "tech", Title: "Tech", Category: "tech", Description: "Tech gadgets and accessories"},
	{ID: "accessories", Title: "Accessories", Category: "accessories", Description: "Trendy accessories and add-ons"},
	{ID: "clothing", Title: "Clothing", Category: "clothing", Description: "Stylish apparel and fashion items"},
}

func init() {
	for i := range DefaultCollections {
		DefaultCollections[i].Image = "https://example.com/" + DefaultCollections[i].ID + ".jpg"
	}
}

// CollectionListing is the snapshot view of collections.
type CollectionListing struct {
	Collections []domain.Collection
	Stale       bool
}

// CollectionService manages home page collections
type CollectionService interface {
	SeedDefaults(ctx context.Context) (int, error)
	List(ctx context.Context) (CollectionListing, error)
	Create(ctx context.Context, c domain.Collection) (domain.Collection, error)
	Update(ctx context.Context, id string, patch domain.CollectionPatch) (domain.Collection, error)
	Delete(ctx context.Context, id string) error
}

type collectionService struct {
	repo   repository.CollectionRepository
	loader *snapshotLoader[domain.Collection]
	logger *zap.Logger
}

func NewCollectionService(repo repository.CollectionRepository, snapshotTTL time.Duration, logger *zap.Logger) CollectionService {
	return &collectionService{
		repo:   repo,
		loader: newSnapshotLoader(repository.CollectionsCollection, repo.List, snapshotTTL, logger),
		logger: logger,
	}
}

// SeedDefaults writes every default collection that is not stored yet and
// returns how many were written.
func (s *collectionService) SeedDefaults(ctx context.Context) (int, error) {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list collections: %w", err)
	}

	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c.ID] = true
	}

	seeded := 0
	for _, c := range DefaultCollections {
		if have[c.ID] {
			continue
		}
		if err := s.repo.Save(ctx, c); err != nil {
			return seeded, fmt.Errorf("failed to seed collection %s: %w", c.ID, err)
		}
		seeded++
	}

	if seeded > 0 {
		s.logger.Info("Seeded default collections", zap.Int("count", seeded))
		s.loader.AfterWrite(ctx)
	}
	return seeded, nil
}

func (s *collectionService) List(ctx context.Context) (CollectionListing, error) {
	items, state, err := s.loader.Load(ctx)
	if err != nil {
		return CollectionListing{}, err
	}
	return CollectionListing{Collections: items, Stale: state.Stale}, nil
}

func (s *collectionService) Create(ctx context.Context, c domain.Collection) (domain.Collection, error) {
	if c.ID == "" {
		c.ID = Slugify(c.Title)
	}
	if err := validateCollection(c); err != nil {
		return domain.Collection{}, err
	}

	if err := s.repo.Save(ctx, c); err != nil {
		return domain.Collection{}, err
	}

	s.logger.Info("Collection saved", zap.String("collection_id", c.ID))
	s.loader.AfterWrite(ctx)
	return c, nil
}

func (s *collectionService) Update(ctx context.Context, id string, patch domain.CollectionPatch) (domain.Collection, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Collection{}, err
	}

	merged := existing
	if patch.Title != nil {
		merged.Title = *patch.Title
	}
	if patch.Image != nil {
		merged.Image = *patch.Image
	}
	if patch.Category != nil {
		merged.Category = *patch.Category
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	if err := validateCollection(merged); err != nil {
		return domain.Collection{}, err
	}

	if err := s.repo.Update(ctx, id, patch); err != nil {
		return domain.Collection{}, err
	}

	s.logger.Info("Collection updated", zap.String("collection_id", id))
	s.loader.AfterWrite(ctx)
	return merged, nil
}

func (s *collectionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Collection deleted", zap.String("collection_id", id))
	s.loader.AfterWrite(ctx)
	return nil
}

func validateCollection(c domain.Collection) error {
	errs := fieldErrors{}
	if strings.TrimSpace(c.ID) == "" {
		errs.add("id", "is required")
	}
	checkText(errs, "title", c.Title, true, maxTitleLength)
	checkText(errs, "description", c.Description, false, maxDescriptionLength)
	if c.Image != "" && !isHTTPURL(c.Image) {
		errs.add("image", "must be an http(s) URL")
	}
	// Collections link to a top-level category, so umbrellas are allowed.
	if c.Category != catalog.TopLevel(c.Category) || !catalog.IsKnownCategory(c.Category) {
		errs.add("category", "must be a top-level category")
	}
	return errs.err()
}
