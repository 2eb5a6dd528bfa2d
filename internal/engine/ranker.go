package engine

import (
	"sort"

	"github.com/kashhq/kash/internal/model"
)

// maxSuggestions caps the ranked result returned to callers.
const maxSuggestions = 3

// rankSuggestions merges the raw output of all sources: one suggestion per
// category (keeping the highest confidence), sorted by confidence descending,
// truncated to the top three. Confidences are clamped into [0,1].
func rankSuggestions(in []model.Suggestion) ([]model.Suggestion, error) {
	best := make(map[string]model.Suggestion, len(in))
	for _, s := range in {
		if s.Category == "" {
			continue
		}
		if s.Confidence < 0 {
			s.Confidence = 0
		}
		if s.Confidence > 1 {
			s.Confidence = 1
		}
		if current, ok := best[s.Category]; !ok || s.Confidence > current.Confidence {
			best[s.Category] = s
		}
	}

	ranked := make([]model.Suggestion, 0, len(best))
	for _, s := range best {
		ranked = append(ranked, s)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Confidence != ranked[j].Confidence {
			return ranked[i].Confidence > ranked[j].Confidence
		}
		return ranked[i].Category < ranked[j].Category
	})

	if len(ranked) > maxSuggestions {
		ranked = ranked[:maxSuggestions]
	}
	return ranked, nil
}
