package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kashhq/kash/internal/model"
)

func TestSaveDefaultRule(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	seeded, err := store.LoadDefaultRules(ctx)
	require.NoError(t, err)

	rule := &model.DefaultRule{
		RuleType:          model.RuleTypeMerchant,
		RuleValue:         "trader joe",
		Category:          "Groceries",
		ConfidenceScore:   0.8,
		TransactionTypeID: model.TransactionTypeExpense,
	}
	require.NoError(t, store.SaveDefaultRule(ctx, rule))

	rules, err := store.LoadDefaultRules(ctx)
	require.NoError(t, err)
	assert.Len(t, rules, len(seeded)+1)

	// Same (type, value, transaction type) updates in place.
	rule.Category = "Food"
	rule.ConfidenceScore = 0.9
	require.NoError(t, store.SaveDefaultRule(ctx, rule))

	rules, err = store.LoadDefaultRules(ctx)
	require.NoError(t, err)
	assert.Len(t, rules, len(seeded)+1)

	var found *model.DefaultRule
	for i := range rules {
		if rules[i].RuleValue == "trader joe" {
			found = &rules[i]
			break
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "Food", found.Category)
	assert.InDelta(t, 0.9, found.ConfidenceScore, 0.001)
}
