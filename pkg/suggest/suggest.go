package suggest

import (
	"github.com/amosWeiskopf/seosmith/internal/models"
)

// Strategy produces advisory improvement text for a page. Implementations
// must not mutate their inputs.
type Strategy interface {
	Suggest(features models.FeatureSet, score models.ScoreBreakdown) models.SuggestionBundle
}

// StrategyFunc adapts a function to the Strategy interface
type StrategyFunc func(models.FeatureSet, models.ScoreBreakdown) models.SuggestionBundle

func (fn StrategyFunc) Suggest(features models.FeatureSet, score models.ScoreBreakdown) models.SuggestionBundle {
	return fn(features, score)
}
