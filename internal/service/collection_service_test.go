package service

import (
	"context"
	"testing"
	"time"

	"region-storefront/internal/docstore"
	"region-storefront/internal/domain"
	"region-storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCollections() CollectionService {
	repo := repository.NewCollectionRepository(docstore.NewMemoryStore())
	return NewCollectionService(repo, time.Hour, zap.NewNop())
}

func TestCollectionService_SeedDefaultsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestCollections()

	n, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultCollections), n)

	n, err = svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	listing, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, listing.Collections, 6)
	assert.Equal(t, "plushies", listing.Collections[0].ID)
	assert.Equal(t, "https://example.com/plushies.jpg", listing.Collections[0].Image)
	assert.Equal(t, "Cute and cuddly plushies collection", listing.Collections[0].Description)
}

func TestCollectionService_SeedKeepsEditedCollections(t *testing.T) {
	ctx := context.Background()
	svc := newTestCollections()

	_, err := svc.Create(ctx, domain.Collection{ID: "anime", Title: "Weeb Corner", Category: "anime"})
	require.NoError(t, err)

	n, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	listing, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Weeb Corner", listing.Collections[0].Title)
}

func TestCollectionService_UpdateValidates(t *testing.T) {
	ctx := context.Background()
	svc := newTestCollections()
	_, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)

	leaf := "tech-audio"
	_, err = svc.Update(ctx, "tech", domain.CollectionPatch{Category: &leaf})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "category")

	title := "Gadgets"
	updated, err := svc.Update(ctx, "tech", domain.CollectionPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Gadgets", updated.Title)

	_, err = svc.Update(ctx, "missing", domain.CollectionPatch{Title: &title})
	assert.ErrorIs(t, err, repository.ErrCollectionNotFound)
}

func TestCollectionService_CreateDerivesID(t *testing.T) {
	ctx := context.Background()
	svc := newTestCollections()

	c, err := svc.Create(ctx, domain.Collection{Title: "Amazon  Finds", Category: "amazon-finds"})
	require.NoError(t, err)
	assert.Equal(t, "amazon-finds", c.ID)

	require.NoError(t, svc.Delete(ctx, c.ID))
	require.NoError(t, svc.Delete(ctx, c.ID))
}
