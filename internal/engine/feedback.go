package engine

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kashhq/kash/internal/features"
	"github.com/kashhq/kash/internal/model"
)

// RecordFeedback persists a suggestion acceptance or correction. The audit
// record is the source of truth: if it cannot be written nothing else
// happens. Pattern reinforcement and the training-sample append are
// independent best-effort steps; their failures are logged and never reach
// the caller.
func (e *Engine) RecordFeedback(ctx context.Context, fb model.Feedback) {
	tag := features.MerchantTag(strings.ToLower(fb.Description))

	record := &model.FeedbackRecord{
		ID:                uuid.NewString(),
		UserID:            fb.UserID,
		Description:       fb.Description,
		SuggestedCategory: fb.SuggestedCategory,
		ActualCategory:    fb.ActualCategory,
		WasAccepted:       fb.WasAccepted,
		ConfidenceScore:   fb.Confidence,
		Amount:            fb.Amount,
		MerchantPattern:   tag,
		CreatedAt:         time.Now(),
	}

	if err := e.store.AppendFeedbackRecord(ctx, record); err != nil {
		slog.Error("Failed to persist feedback record",
			"user_id", fb.UserID,
			"error", err)
		return
	}

	// A correction that names a merchant reinforces the pattern table.
	if tag != "" && !fb.WasAccepted {
		e.reinforcePattern(ctx, tag, fb.ActualCategory)
	}

	// Every feedback event grows the verified training corpus, accepted or not.
	sample := &model.TrainingSample{
		Description: fb.Description,
		Category:    fb.ActualCategory,
		Verified:    true,
		CreatedAt:   time.Now(),
	}
	if fb.Amount != nil {
		sample.Amount = *fb.Amount
	}
	if err := e.store.AppendTrainingSample(ctx, sample); err != nil {
		slog.Warn("Failed to append training sample",
			"user_id", fb.UserID,
			"error", err)
	}
}

// reinforcePattern upserts the merchant pattern for a corrected suggestion:
// an existing pattern gets usage_count+1 and the corrected category, a new
// one starts at confidence 0.7. The in-memory table is reloaded afterwards so
// later suggestions see the write.
func (e *Engine) reinforcePattern(ctx context.Context, tag, category string) {
	pattern := &model.MerchantPattern{
		Pattern:         strings.ToUpper(tag),
		Category:        category,
		ConfidenceScore: 0.7,
		UsageCount:      1,
	}

	if err := e.store.UpsertMerchantPattern(ctx, pattern); err != nil {
		slog.Warn("Failed to reinforce merchant pattern",
			"pattern", pattern.Pattern,
			"error", err)
		return
	}

	if err := e.reloadPatterns(ctx); err != nil {
		slog.Warn("Failed to reload merchant patterns after reinforcement", "error", err)
	}

	slog.Debug("Reinforced merchant pattern",
		"pattern", pattern.Pattern,
		"category", category)
}
