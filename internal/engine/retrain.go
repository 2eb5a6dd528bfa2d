package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/kashhq/kash/internal/classifier"
)

// Retrain rebuilds the statistical classifier from the verified training
// corpus when enough new feedback has accumulated. Runs are single-flight per
// process: a trigger that arrives while a retrain is in progress is dropped.
// Suggestion calls keep using the previously installed classifier until the
// new one is swapped in atomically; a failed run leaves the last good model
// in place.
func (e *Engine) Retrain(ctx context.Context) {
	if !e.retrainMu.TryLock() {
		slog.Info("Retraining already in progress, ignoring trigger")
		return
	}
	defer e.retrainMu.Unlock()

	newFeedback, err := e.store.CountFeedbackSince(ctx, e.lastRetrainTime())
	if err != nil {
		slog.Error("Failed to count new feedback, skipping retrain", "error", err)
		return
	}
	if newFeedback < e.cfg.RetrainMinFeedback {
		slog.Info("Skipping retrain, not enough new feedback",
			"new_feedback", newFeedback,
			"required", e.cfg.RetrainMinFeedback)
		return
	}

	samples, err := e.store.LoadVerifiedTrainingSamples(ctx)
	if err != nil {
		slog.Error("Failed to load training corpus, skipping retrain", "error", err)
		return
	}
	if len(samples) < e.cfg.RetrainMinCorpus {
		slog.Info("Skipping retrain, training corpus too small",
			"samples", len(samples),
			"required", e.cfg.RetrainMinCorpus)
		return
	}

	started := time.Now()
	m, err := classifier.Train(samples)
	if err != nil {
		slog.Error("Retraining failed, keeping previous classifier", "error", err)
		return
	}
	if m == nil {
		slog.Info("Retraining produced no model, keeping previous classifier")
		return
	}

	e.classifier.Store(m)
	e.setLastRetrain(time.Now())
	slog.Info("Swapped in retrained classifier",
		"samples", m.SampleCount(),
		"categories", len(m.Categories()),
		"duration", time.Since(started))
}
