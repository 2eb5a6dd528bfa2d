// Package classifier wraps a multinomial naive-bayes model trained on
// historical labeled transactions. A trained Model is immutable; retraining
// builds a fresh Model and the engine swaps the reference atomically.
package classifier

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/jbrukh/bayesian"

	"github.com/kashhq/kash/internal/features"
	"github.com/kashhq/kash/internal/model"
)

// MinTrainingSamples is the minimum number of valid samples required before a
// model is built. Below this the engine runs in rule-only mode, which is a
// normal condition, not an error.
const MinTrainingSamples = 10

// Model is an opaque trained classifier reference. It is safe for concurrent
// Predict calls and is never mutated after Train returns it.
type Model struct {
	cl      *bayesian.Classifier
	classes []bayesian.Class
	trained int
}

// SampleCount reports how many samples the model was trained on.
func (m *Model) SampleCount() int {
	return m.trained
}

// Categories returns the category labels the model can predict.
func (m *Model) Categories() []string {
	out := make([]string, len(m.classes))
	for i, c := range m.classes {
		out[i] = string(c)
	}
	return out
}

// Train builds a model from labeled samples. Samples with an empty
// description or category, or that yield zero features, are discarded. Train
// returns (nil, nil) when too few valid samples or too few distinct
// categories remain; the caller keeps whatever model it already has. Any
// failure during the build discards the partial model.
func Train(samples []model.TrainingSample) (m *Model, err error) {
	defer func() {
		if r := recover(); r != nil {
			m = nil
			err = fmt.Errorf("classifier training panicked: %v", r)
		}
	}()

	type doc struct {
		category string
		features []string
	}

	docs := make([]doc, 0, len(samples))
	categorySet := make(map[string]struct{})

	for _, s := range samples {
		if s.Description == "" || s.Category == "" {
			continue
		}
		feats := features.Extract(s.Description, s.Amount)
		if len(feats) == 0 {
			continue
		}
		docs = append(docs, doc{category: s.Category, features: feats})
		categorySet[s.Category] = struct{}{}
	}

	if len(docs) < MinTrainingSamples {
		slog.Info("Too few valid samples to train classifier",
			"valid_samples", len(docs),
			"required", MinTrainingSamples)
		return nil, nil
	}

	// The multinomial model needs at least two classes to discriminate.
	if len(categorySet) < 2 {
		slog.Info("Too few distinct categories to train classifier",
			"categories", len(categorySet))
		return nil, nil
	}

	classes := make([]bayesian.Class, 0, len(categorySet))
	for category := range categorySet {
		classes = append(classes, bayesian.Class(category))
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	cl := bayesian.NewClassifier(classes...)
	for _, d := range docs {
		cl.Learn(d.features, bayesian.Class(d.category))
	}

	return &Model{cl: cl, classes: classes, trained: len(docs)}, nil
}

// Predict returns the most probable category for a description, or nil when
// the description yields no features or scoring fails. Confidence is
// probability*0.8 capped at 0.9.
func (m *Model) Predict(description string, amount float64) *model.Suggestion {
	feats := features.Extract(description, amount)
	if len(feats) == 0 {
		return nil
	}

	scores, inx, _, err := m.cl.SafeProbScores(feats)
	if err != nil {
		slog.Debug("classifier scoring failed", "error", err)
		return nil
	}
	if inx < 0 || inx >= len(m.classes) {
		return nil
	}

	probability := scores[inx]
	if math.IsNaN(probability) {
		return nil
	}

	return &model.Suggestion{
		Category:   string(m.classes[inx]),
		Confidence: math.Min(probability*0.8, 0.9),
		Source:     model.SourceMLModel,
	}
}
