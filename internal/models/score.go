package models

// Category names one of the six score categories
type Category string

const (
	CategoryTitle       Category = "title"
	CategoryMeta        Category = "meta"
	CategoryContent     Category = "content"
	CategoryTechnical   Category = "technical"
	CategoryPerformance Category = "performance"
	CategorySocial      Category = "social"
)

// Categories lists every category in rule-chain order.
var Categories = []Category{
	CategoryTitle,
	CategoryMeta,
	CategoryContent,
	CategoryTechnical,
	CategoryPerformance,
	CategorySocial,
}

// Valid reports whether c is one of the six categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Scores holds the six per-category scores, each in [0,100]
type Scores struct {
	Title       int `json:"title"`
	Meta        int `json:"meta"`
	Content     int `json:"content"`
	Technical   int `json:"technical"`
	Performance int `json:"performance"`
	Social      int `json:"social"`
}

// Get returns the score for a category
func (s Scores) Get(c Category) int {
	switch c {
	case CategoryTitle:
		return s.Title
	case CategoryMeta:
		return s.Meta
	case CategoryContent:
		return s.Content
	case CategoryTechnical:
		return s.Technical
	case CategoryPerformance:
		return s.Performance
	case CategorySocial:
		return s.Social
	}
	return 0
}

// ScoreBreakdown is the category scores plus the derived overall score and grade.
// Build it with scorer.Finalize so Overall and Grade always follow the categories.
type ScoreBreakdown struct {
	Scores  Scores `json:"scores"`
	Overall int    `json:"overall_score"`
	Grade   string `json:"grade"`
}

// Severity ranks an Issue
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Rank orders severities, lower is more severe
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	}
	return 3
}

// Issue represents a detected SEO deficiency
type Issue struct {
	Severity Severity `json:"type"`
	Category Category `json:"category"`
	Message  string   `json:"message"`
}

// Recommendation represents an actionable improvement for a weak category
type Recommendation struct {
	Category             Category `json:"category"`
	Suggestion           string   `json:"suggestion"`
	Priority             string   `json:"priority"`
	PredictedImprovement int      `json:"predicted_improvement"`
}
