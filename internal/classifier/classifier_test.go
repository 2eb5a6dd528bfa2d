package classifier

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kashhq/kash/internal/model"
)

func makeSamples(category, description string, count int) []model.TrainingSample {
	samples := make([]model.TrainingSample, count)
	for i := range samples {
		samples[i] = model.TrainingSample{
			Description:       fmt.Sprintf("%s %d", description, i+1),
			Category:          category,
			Amount:            10,
			TransactionTypeID: model.TransactionTypeExpense,
			Verified:          true,
		}
	}
	return samples
}

func TestTrain(t *testing.T) {
	t.Run("too few samples", func(t *testing.T) {
		samples := append(makeSamples("Coffee Shops", "STARBUCKS COFFEE", 5),
			makeSamples("Rideshare", "UBER TRIP", 4)...)

		m, err := Train(samples)
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("single category", func(t *testing.T) {
		samples := makeSamples("Coffee Shops", "STARBUCKS COFFEE", 15)

		m, err := Train(samples)
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("invalid samples are discarded", func(t *testing.T) {
		samples := append(makeSamples("Coffee Shops", "STARBUCKS COFFEE", 5),
			makeSamples("Rideshare", "UBER TRIP", 4)...)
		// Padding with unusable samples does not reach the minimum.
		samples = append(samples,
			model.TrainingSample{Description: "", Category: "Coffee Shops"},
			model.TrainingSample{Description: "NO CATEGORY", Category: ""},
		)

		m, err := Train(samples)
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("trains with two categories", func(t *testing.T) {
		samples := append(makeSamples("Coffee Shops", "STARBUCKS COFFEE", 8),
			makeSamples("Rideshare", "UBER TRIP", 8)...)

		m, err := Train(samples)
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, 16, m.SampleCount())
		assert.ElementsMatch(t, []string{"Coffee Shops", "Rideshare"}, m.Categories())
	})

	t.Run("empty input", func(t *testing.T) {
		m, err := Train(nil)
		require.NoError(t, err)
		assert.Nil(t, m)
	})
}

func TestPredict(t *testing.T) {
	samples := append(makeSamples("Coffee Shops", "STARBUCKS COFFEE", 10),
		makeSamples("Rideshare", "UBER TRIP", 10)...)

	m, err := Train(samples)
	require.NoError(t, err)
	require.NotNil(t, m)

	t.Run("known merchant", func(t *testing.T) {
		s := m.Predict("STARBUCKS COFFEE #9999", 5.50)
		require.NotNil(t, s)
		assert.Equal(t, "Coffee Shops", s.Category)
		assert.Equal(t, model.SourceMLModel, s.Source)
		assert.Greater(t, s.Confidence, 0.0)
		assert.LessOrEqual(t, s.Confidence, 0.9)
	})

	t.Run("other category", func(t *testing.T) {
		s := m.Predict("UBER TRIP HELP.UBER.COM", 23.40)
		require.NotNil(t, s)
		assert.Equal(t, "Rideshare", s.Category)
	})

	t.Run("empty description", func(t *testing.T) {
		assert.Nil(t, m.Predict("", 5))
	})
}
