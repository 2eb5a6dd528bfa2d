package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kashhq/kash/internal/model"
	"github.com/kashhq/kash/internal/service"
	"github.com/kashhq/kash/internal/storage"
)

func newTestStorage(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := storage.NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func newTestEngine(t *testing.T) (*Engine, *storage.SQLiteStorage) {
	t.Helper()
	store := newTestStorage(t)
	return New(store), store
}

func TestSuggestCategoryMerchantPattern(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t)

	err := store.UpsertMerchantPattern(ctx, &model.MerchantPattern{
		Pattern:         "STARBUCKS",
		Category:        "Coffee Shops",
		ConfidenceScore: 0.85,
		UsageCount:      100,
	})
	require.NoError(t, err)

	suggestions := eng.SuggestCategory(ctx, "STARBUCKS COFFEE #1234", 5.50, model.TransactionTypeExpense, "")
	require.NotEmpty(t, suggestions)

	top := suggestions[0]
	assert.Equal(t, "Coffee Shops", top.Category)
	assert.Equal(t, model.SourceMerchantPattern, top.Source)
	// 0.85 stored + 100 usages / 1000.
	assert.InDelta(t, 0.95, top.Confidence, 0.0001)
}

func TestSuggestCategoryPatternConfidenceCap(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t)

	err := store.UpsertMerchantPattern(ctx, &model.MerchantPattern{
		Pattern:         "COSTCO",
		Category:        "Groceries",
		ConfidenceScore: 0.9,
		UsageCount:      500,
	})
	require.NoError(t, err)

	suggestions := eng.SuggestCategory(ctx, "COSTCO WHSE #0042", 214.87, model.TransactionTypeExpense, "")
	require.NotEmpty(t, suggestions)
	assert.InDelta(t, 0.98, suggestions[0].Confidence, 0.0001)
}

func TestSuggestCategoryDefaultRules(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	t.Run("expense rule fires", func(t *testing.T) {
		suggestions := eng.SuggestCategory(ctx, "SHELL GAS STATION 42", 40, model.TransactionTypeExpense, "")
		require.NotEmpty(t, suggestions)
		assert.Equal(t, "Transport", suggestions[0].Category)
		assert.Equal(t, model.SourceRule, suggestions[0].Source)
	})

	t.Run("rules scoped by transaction type", func(t *testing.T) {
		// The gas rule is an expense rule; an income transaction misses it.
		suggestions := eng.SuggestCategory(ctx, "SHELL GAS STATION 42", 40, model.TransactionTypeIncome, "")
		for _, s := range suggestions {
			assert.NotEqual(t, "Transport", s.Category)
		}
	})

	t.Run("income rule fires", func(t *testing.T) {
		suggestions := eng.SuggestCategory(ctx, "ACME CORP PAYROLL DEP", 2500, model.TransactionTypeIncome, "")
		require.NotEmpty(t, suggestions)
		assert.Equal(t, "Salary", suggestions[0].Category)
	})
}

func TestSuggestCategoryRanking(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	t.Run("same category deduplicated to highest confidence", func(t *testing.T) {
		// Both the uber (0.7) and gas (0.6) seeded rules map to Transport.
		suggestions := eng.SuggestCategory(ctx, "UBER GAS SURCHARGE", 12, model.TransactionTypeExpense, "")
		require.Len(t, suggestions, 1)
		assert.Equal(t, "Transport", suggestions[0].Category)
		assert.InDelta(t, 0.7, suggestions[0].Confidence, 0.0001)
	})

	t.Run("at most three, sorted by confidence", func(t *testing.T) {
		suggestions := eng.SuggestCategory(ctx,
			"GROCERY PHARMACY RENT INSURANCE PARKING", 100, model.TransactionTypeExpense, "")
		require.Len(t, suggestions, maxSuggestions)
		for i := 1; i < len(suggestions); i++ {
			assert.GreaterOrEqual(t, suggestions[i-1].Confidence, suggestions[i].Confidence)
		}
	})
}

func TestSuggestCategoryNoMatches(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	// Nothing matching is an empty result, not the fallback.
	suggestions := eng.SuggestCategory(ctx, "QWERTYUIOP ZXCVBNM", 13.37, model.TransactionTypeExpense, "")
	assert.Empty(t, suggestions)
}

func TestSuggestCategoryFallbackOnPipelineError(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)
	eng.rankFn = func(_ []model.Suggestion) ([]model.Suggestion, error) {
		return nil, errors.New("boom")
	}

	suggestions := eng.SuggestCategory(ctx, "STARBUCKS COFFEE #1234", 5.50, model.TransactionTypeExpense, "")
	require.Len(t, suggestions, 1)
	assert.Equal(t, model.FallbackSuggestion(), suggestions[0])
}

func TestSuggestCategoryUserHistory(t *testing.T) {
	ctx := context.Background()
	eng, store := newTestEngine(t)

	now := time.Now()
	txns := []model.Transaction{
		{ID: "h1", Date: now, Description: "alpha bravo charlie delta foxtrot", Amount: 10, Category: "Hobbies", TransactionTypeID: model.TransactionTypeExpense, UserID: "alice"},
		{ID: "h2", Date: now, Description: "golf hotel india juliett", Amount: 10, Category: "Travel", TransactionTypeID: model.TransactionTypeExpense, UserID: "alice"},
	}
	for i := range txns {
		txns[i].Hash = txns[i].GenerateHash()
	}
	require.NoError(t, store.SaveTransactions(ctx, txns))

	t.Run("high similarity matches", func(t *testing.T) {
		// 4 of 5 shared tokens, similarity 0.8.
		suggestions := eng.SuggestCategory(ctx, "alpha bravo charlie delta", 10, model.TransactionTypeExpense, "alice")
		require.NotEmpty(t, suggestions)
		assert.Equal(t, "Hobbies", suggestions[0].Category)
		assert.Equal(t, model.SourceUserHistory, suggestions[0].Source)
		assert.InDelta(t, 0.8*0.8, suggestions[0].Confidence, 0.0001)
	})

	t.Run("similarity at the threshold does not match", func(t *testing.T) {
		// 3 shared tokens over a 5 token union, similarity exactly 0.6.
		suggestions := eng.SuggestCategory(ctx, "golf hotel india lima", 10, model.TransactionTypeExpense, "alice")
		for _, s := range suggestions {
			assert.NotEqual(t, model.SourceUserHistory, s.Source)
		}
	})

	t.Run("no user means no history source", func(t *testing.T) {
		suggestions := eng.SuggestCategory(ctx, "alpha bravo charlie delta", 10, model.TransactionTypeExpense, "")
		for _, s := range suggestions {
			assert.NotEqual(t, model.SourceUserHistory, s.Source)
		}
	})
}

// countingStore wraps a Storage and counts pattern table loads.
type countingStore struct {
	service.Storage
	mu    sync.Mutex
	loads int
}

func (c *countingStore) LoadMerchantPatterns(ctx context.Context) ([]model.MerchantPattern, error) {
	c.mu.Lock()
	c.loads++
	c.mu.Unlock()
	return c.Storage.LoadMerchantPatterns(ctx)
}

func TestConcurrentInitialization(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Storage: newTestStorage(t)}
	eng := New(store)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			eng.SuggestCategory(ctx, fmt.Sprintf("MERCHANT %d", n), 10, model.TransactionTypeExpense, "")
		}(i)
	}
	wg.Wait()

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, 1, store.loads)
}

func TestRecordFeedback(t *testing.T) {
	ctx := context.Background()

	t.Run("correction reinforces pattern", func(t *testing.T) {
		eng, store := newTestEngine(t)

		fb := model.Feedback{
			UserID:            "alice",
			Description:       "starbucks coffee #1234",
			SuggestedCategory: "Dining",
			ActualCategory:    "Coffee Shops",
			Confidence:        0.65,
			WasAccepted:       false,
		}
		eng.RecordFeedback(ctx, fb)

		patterns, err := store.LoadMerchantPatterns(ctx)
		require.NoError(t, err)
		require.Len(t, patterns, 1)
		assert.Equal(t, "STARBUCKS", patterns[0].Pattern)
		assert.Equal(t, "Coffee Shops", patterns[0].Category)
		assert.InDelta(t, 0.7, patterns[0].ConfidenceScore, 0.0001)
		assert.Equal(t, 1, patterns[0].UsageCount)

		// A second correction bumps usage and applies the newest category.
		fb.ActualCategory = "Dining Out"
		eng.RecordFeedback(ctx, fb)

		patterns, err = store.LoadMerchantPatterns(ctx)
		require.NoError(t, err)
		require.Len(t, patterns, 1)
		assert.Equal(t, "Dining Out", patterns[0].Category)
		assert.Equal(t, 2, patterns[0].UsageCount)

		samples, err := store.LoadVerifiedTrainingSamples(ctx)
		require.NoError(t, err)
		assert.Len(t, samples, 2)

		count, err := store.CountFeedbackSince(ctx, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("accepted feedback does not touch patterns", func(t *testing.T) {
		eng, store := newTestEngine(t)

		eng.RecordFeedback(ctx, model.Feedback{
			Description:       "starbucks coffee #1234",
			SuggestedCategory: "Coffee Shops",
			ActualCategory:    "Coffee Shops",
			WasAccepted:       true,
		})

		patterns, err := store.LoadMerchantPatterns(ctx)
		require.NoError(t, err)
		assert.Empty(t, patterns)

		samples, err := store.LoadVerifiedTrainingSamples(ctx)
		require.NoError(t, err)
		assert.Len(t, samples, 1)
		assert.True(t, samples[0].Verified)
	})

	t.Run("reinforced pattern visible to later suggestions", func(t *testing.T) {
		eng, _ := newTestEngine(t)

		eng.RecordFeedback(ctx, model.Feedback{
			Description:    "starbucks coffee #1234",
			ActualCategory: "Coffee Shops",
			WasAccepted:    false,
		})

		suggestions := eng.SuggestCategory(ctx, "STARBUCKS STORE 42", 4.75, model.TransactionTypeExpense, "")
		require.NotEmpty(t, suggestions)
		assert.Equal(t, "Coffee Shops", suggestions[0].Category)
		assert.Equal(t, model.SourceMerchantPattern, suggestions[0].Source)
	})
}

func appendFeedbackRecords(t *testing.T, store *storage.SQLiteStorage, count int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < count; i++ {
		err := store.AppendFeedbackRecord(ctx, &model.FeedbackRecord{
			ID:             uuid.NewString(),
			Description:    fmt.Sprintf("MERCHANT %d", i),
			ActualCategory: "Shopping",
			CreatedAt:      time.Now(),
		})
		require.NoError(t, err)
	}
}

func appendTrainingCorpus(t *testing.T, store *storage.SQLiteStorage, count int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < count; i++ {
		sample := model.TrainingSample{
			Amount:            10,
			TransactionTypeID: model.TransactionTypeExpense,
			Verified:          true,
		}
		if i%2 == 0 {
			sample.Description = fmt.Sprintf("STARBUCKS COFFEE %d", i)
			sample.Category = "Coffee Shops"
		} else {
			sample.Description = fmt.Sprintf("UBER TRIP %d", i)
			sample.Category = "Transport"
		}
		require.NoError(t, store.AppendTrainingSample(ctx, &sample))
	}
}

func TestRetrain(t *testing.T) {
	ctx := context.Background()

	t.Run("skips without enough new feedback", func(t *testing.T) {
		eng, store := newTestEngine(t)
		appendFeedbackRecords(t, store, 9)
		appendTrainingCorpus(t, store, 60)

		eng.Retrain(ctx)
		assert.Nil(t, eng.classifier.Load())
	})

	t.Run("skips with too small a corpus", func(t *testing.T) {
		eng, store := newTestEngine(t)
		appendFeedbackRecords(t, store, 10)
		appendTrainingCorpus(t, store, 40)

		eng.Retrain(ctx)
		assert.Nil(t, eng.classifier.Load())
	})

	t.Run("swaps in a new model", func(t *testing.T) {
		eng, store := newTestEngine(t)
		appendFeedbackRecords(t, store, 10)
		appendTrainingCorpus(t, store, 60)

		eng.Retrain(ctx)
		m := eng.classifier.Load()
		require.NotNil(t, m)
		assert.Equal(t, 60, m.SampleCount())

		// No feedback since the swap, so a second trigger keeps the model.
		eng.Retrain(ctx)
		assert.Same(t, m, eng.classifier.Load())
	})
}
