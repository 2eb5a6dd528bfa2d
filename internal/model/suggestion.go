// Package model defines the core domain records used throughout the application.
package model

// SuggestionSource identifies which signal source produced a suggestion.
type SuggestionSource string

// Suggestion source constants.
const (
	SourceMerchantPattern SuggestionSource = "merchant_pattern"
	SourceRule            SuggestionSource = "rule"
	SourceMLModel         SuggestionSource = "ml_model"
	SourceUserHistory     SuggestionSource = "user_history"
	SourceFallback        SuggestionSource = "fallback"
)

// Suggestion is a single category suggestion produced for one request.
// Suggestions are ephemeral and never persisted directly.
type Suggestion struct {
	Meta       map[string]string
	Category   string
	Source     SuggestionSource
	Confidence float64
}

// FallbackSuggestion is returned alone when the suggestion pipeline fails
// unexpectedly. A legitimately empty result is an empty slice, not this.
func FallbackSuggestion() Suggestion {
	return Suggestion{
		Category:   "Uncategorized",
		Confidence: 0.3,
		Source:     SourceFallback,
	}
}
