package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/kashhq/kash/internal/features"
	"github.com/kashhq/kash/internal/model"
)

// merchantPatternSource returns the first stored pattern whose key appears in
// the description. The in-memory table preserves load order (stored
// confidence descending), so the first hit is the strongest one.
func (e *Engine) merchantPatternSource(_ context.Context, req *request) []model.Suggestion {
	if req.descLower == "" {
		return nil
	}

	e.tableMu.RLock()
	patterns := e.patterns
	e.tableMu.RUnlock()

	for _, p := range patterns {
		key := strings.ToLower(p.Pattern)
		if key == "" || !strings.Contains(req.descLower, key) {
			continue
		}

		confidence := math.Min(p.ConfidenceScore+float64(p.UsageCount)/1000.0, 0.98)
		return []model.Suggestion{{
			Category:   p.Category,
			Confidence: confidence,
			Source:     model.SourceMerchantPattern,
			Meta:       map[string]string{"pattern": p.Pattern},
		}}
	}

	return nil
}

// defaultRuleSource emits a suggestion for every rule of the transaction's
// type whose value appears in the description. Multiple rules may fire;
// deduplication happens in the ranker.
func (e *Engine) defaultRuleSource(_ context.Context, req *request) []model.Suggestion {
	if req.descLower == "" {
		return nil
	}

	e.tableMu.RLock()
	rules := e.rules[req.transactionTypeID]
	e.tableMu.RUnlock()

	var suggestions []model.Suggestion
	for _, rule := range rules {
		value := strings.ToLower(rule.RuleValue)
		if value == "" || !strings.Contains(req.descLower, value) {
			continue
		}
		suggestions = append(suggestions, model.Suggestion{
			Category:   rule.Category,
			Confidence: rule.ConfidenceScore,
			Source:     model.SourceRule,
			Meta: map[string]string{
				"rule_type":  string(rule.RuleType),
				"rule_value": rule.RuleValue,
			},
		})
	}

	return suggestions
}

// classifierSource consults the trained statistical model, if one is
// installed. Retraining swaps the model reference atomically, so the load
// here always observes either the previous or the fully trained new model.
func (e *Engine) classifierSource(_ context.Context, req *request) []model.Suggestion {
	m := e.classifier.Load()
	if m == nil {
		return nil
	}

	suggestion := m.Predict(req.description, req.amount)
	if suggestion == nil {
		return nil
	}
	return []model.Suggestion{*suggestion}
}

// userHistorySource looks for the most similar of the user's own previously
// categorized transactions. The store lookup is bounded by a timeout and any
// failure degrades to no suggestion from this source.
func (e *Engine) userHistorySource(ctx context.Context, req *request) []model.Suggestion {
	if req.userID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.HistoryTimeout)
	defer cancel()

	history, err := e.store.LoadUserTransactions(ctx, req.userID, e.cfg.HistoryLimit)
	if err != nil {
		slog.Warn("User history lookup failed",
			"user_id", req.userID,
			"error", err)
		return nil
	}

	candidate := features.Tokenize(req.descLower)
	if len(candidate) == 0 {
		return nil
	}

	var (
		bestSimilarity float64
		bestCategory   string
	)
	for _, txn := range history {
		if txn.Category == "" {
			continue
		}
		similarity := features.JaccardSimilarity(candidate, features.Tokenize(txn.Description))
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			bestCategory = txn.Category
		}
	}

	// Strictly greater than the threshold; an exact 0.6 does not qualify.
	if bestSimilarity <= e.cfg.HistoryThreshold {
		return nil
	}

	return []model.Suggestion{{
		Category:   bestCategory,
		Confidence: math.Min(bestSimilarity*0.8, 0.85),
		Source:     model.SourceUserHistory,
		Meta:       map[string]string{"similarity": fmt.Sprintf("%.2f", bestSimilarity)},
	}}
}
