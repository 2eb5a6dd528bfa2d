package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kashhq/kash/internal/common"
	"github.com/kashhq/kash/internal/model"
)

func TestUpsertMerchantPattern(t *testing.T) {
	ctx := context.Background()

	t.Run("insert new pattern", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		err := store.UpsertMerchantPattern(ctx, &model.MerchantPattern{
			Pattern:         "starbucks",
			Category:        "Coffee Shops",
			ConfidenceScore: 0.7,
			UsageCount:      1,
		})
		require.NoError(t, err)

		patterns, err := store.LoadMerchantPatterns(ctx)
		require.NoError(t, err)
		require.Len(t, patterns, 1)
		assert.Equal(t, "STARBUCKS", patterns[0].Pattern)
		assert.Equal(t, "Coffee Shops", patterns[0].Category)
		assert.InDelta(t, 0.7, patterns[0].ConfidenceScore, 0.001)
		assert.Equal(t, 1, patterns[0].UsageCount)
	})

	t.Run("conflict reinforces usage and overwrites category", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		err := store.UpsertMerchantPattern(ctx, &model.MerchantPattern{
			Pattern:         "UBER",
			Category:        "Transport",
			ConfidenceScore: 0.7,
			UsageCount:      1,
		})
		require.NoError(t, err)

		err = store.UpsertMerchantPattern(ctx, &model.MerchantPattern{
			Pattern:         "UBER",
			Category:        "Rideshare",
			ConfidenceScore: 0.95,
			UsageCount:      1,
		})
		require.NoError(t, err)

		patterns, err := store.LoadMerchantPatterns(ctx)
		require.NoError(t, err)
		require.Len(t, patterns, 1)
		assert.Equal(t, "Rideshare", patterns[0].Category)
		assert.Equal(t, 2, patterns[0].UsageCount)
		// Stored confidence stays at the original value on conflict.
		assert.InDelta(t, 0.7, patterns[0].ConfidenceScore, 0.001)
	})

	t.Run("patterns ordered by confidence", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		for _, p := range []model.MerchantPattern{
			{Pattern: "LOW", Category: "A", ConfidenceScore: 0.5, UsageCount: 1},
			{Pattern: "HIGH", Category: "B", ConfidenceScore: 0.9, UsageCount: 1},
			{Pattern: "MID", Category: "C", ConfidenceScore: 0.7, UsageCount: 1},
		} {
			require.NoError(t, store.UpsertMerchantPattern(ctx, &p))
		}

		patterns, err := store.LoadMerchantPatterns(ctx)
		require.NoError(t, err)
		require.Len(t, patterns, 3)
		assert.Equal(t, "HIGH", patterns[0].Pattern)
		assert.Equal(t, "MID", patterns[1].Pattern)
		assert.Equal(t, "LOW", patterns[2].Pattern)
	})
}

func TestDeleteMerchantPattern(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	err := store.UpsertMerchantPattern(ctx, &model.MerchantPattern{
		Pattern:         "NETFLIX",
		Category:        "Subscriptions",
		ConfidenceScore: 0.8,
		UsageCount:      1,
	})
	require.NoError(t, err)

	// Deletion is case-insensitive on the key.
	err = store.DeleteMerchantPattern(ctx, "netflix")
	require.NoError(t, err)

	patterns, err := store.LoadMerchantPatterns(ctx)
	require.NoError(t, err)
	assert.Empty(t, patterns)

	err = store.DeleteMerchantPattern(ctx, "NETFLIX")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
