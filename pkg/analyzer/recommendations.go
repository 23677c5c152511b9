package analyzer

import (
	"math"
	"sort"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

const (
	maxRecommendations = 4
	minGap             = 20
	criticalGap        = 50
	highGap            = 35
)

type advice struct {
	text   string
	factor float64
}

var categoryAdvice = map[models.Category]advice{
	models.CategoryTitle:       {"Optimize title to 50-60 chars with primary keyword", 0.6},
	models.CategoryMeta:        {"Add compelling meta description (150-160 chars)", 0.7},
	models.CategoryContent:     {"Improve content depth - aim for 1000+ words with proper heading structure", 0.5},
	models.CategoryTechnical:   {"Fix technical SEO issues (HTTPS, mobile, schema)", 0.8},
	models.CategoryPerformance: {"Optimize page speed - target under 2 seconds load time", 0.5},
	models.CategorySocial:      {"Add Open Graph and Twitter Card meta tags", 0.7},
}

// Recommendations returns up to four improvements for the categories furthest
// from a perfect score, largest gap first.
func (e *Engine) Recommendations(scores models.Scores) []models.Recommendation {
	type gap struct {
		category models.Category
		size     int
	}

	gaps := make([]gap, 0, len(models.Categories))
	for _, c := range models.Categories {
		if g := 100 - scores.Get(c); g > minGap {
			gaps = append(gaps, gap{category: c, size: g})
		}
	}
	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].size > gaps[j].size
	})
	if len(gaps) > maxRecommendations {
		gaps = gaps[:maxRecommendations]
	}

	recs := make([]models.Recommendation, 0, len(gaps))
	for _, g := range gaps {
		a := categoryAdvice[g.category]
		recs = append(recs, models.Recommendation{
			Category:             g.category,
			Suggestion:           a.text,
			Priority:             priority(g.size),
			PredictedImprovement: int(math.Round(float64(g.size) * a.factor)),
		})
	}
	return recs
}

func priority(gap int) string {
	switch {
	case gap > criticalGap:
		return "critical"
	case gap > highGap:
		return "high"
	default:
		return "medium"
	}
}
