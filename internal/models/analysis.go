package models

import "time"

// Origin records which path produced an Analysis
type Origin string

const (
	OriginPrimary  Origin = "primary"
	OriginFallback Origin = "fallback"
)

// Analysis is the full result of analyzing one URL
type Analysis struct {
	ID              string           `json:"id,omitempty"`
	URL             string           `json:"url"`
	Features        FeatureSet       `json:"features"`
	Score           ScoreBreakdown   `json:"score"`
	Issues          []Issue          `json:"issues"`
	Recommendations []Recommendation `json:"recommendations"`
	Suggestions     SuggestionBundle `json:"suggestions"`
	Origin          Origin           `json:"origin"`
	AnalyzedAt      time.Time        `json:"analyzed_at"`
}

// Generation is the suggestion bundle for a URL plus its platform renderings.
// Analysis is set when the bundle was derived from a full local analysis.
type Generation struct {
	URL         string                      `json:"url"`
	Analysis    *Analysis                   `json:"analysis,omitempty"`
	Suggestions SuggestionBundle            `json:"generated_content"`
	Draft       ContentDraft                `json:"draft"`
	Formatted   *PlatformFormat             `json:"formatted_content,omitempty"`
	Formats     map[Platform]PlatformFormat `json:"platform_formats"`
	Origin      Origin                      `json:"origin"`
}
