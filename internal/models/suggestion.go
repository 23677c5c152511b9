package models

// Variant is one candidate piece of text with the reason it was proposed
type Variant struct {
	Content     string `json:"content"`
	Length      int    `json:"length"`
	Reason      string `json:"reason"`
	Improvement string `json:"improvement"`
}

// TitleSuggestions holds title variants for a page
type TitleSuggestions struct {
	Current       string    `json:"current"`
	CurrentLength int       `json:"current_length"`
	OptimalLength string    `json:"optimal_length"`
	Issues        []string  `json:"issues"`
	Suggestions   []Variant `json:"suggestions"`
}

// MetaSuggestions holds meta description variants for a page
type MetaSuggestions struct {
	Current       string    `json:"current"`
	CurrentLength int       `json:"current_length"`
	OptimalLength string    `json:"optimal_length"`
	Suggestions   []Variant `json:"suggestions"`
}

// HeadingSuggestions holds H1 ideas for a page
type HeadingSuggestions struct {
	Current     string   `json:"current,omitempty"`
	Count       int      `json:"count"`
	Issue       string   `json:"issue,omitempty"`
	Suggestions []string `json:"suggestions"`
}

// KeywordRecommendations groups keyword advice
type KeywordRecommendations struct {
	Primary        string   `json:"primary,omitempty"`
	PrimaryCount   int      `json:"primary_count"`
	Secondary      []string `json:"secondary"`
	LongTail       []string `json:"long_tail_suggestions"`
	Recommendation string   `json:"recommendation"`
}

// ContentTip is a structural content improvement
type ContentTip struct {
	Type       string   `json:"type"`
	Priority   string   `json:"priority"`
	Suggestion string   `json:"suggestion"`
	Sections   []string `json:"sections_to_add,omitempty"`
	Example    string   `json:"example,omitempty"`
}

// SchemaSuggestion is a proposed JSON-LD block
type SchemaSuggestion struct {
	Type           string         `json:"type"`
	Schema         map[string]any `json:"schema"`
	Implementation string         `json:"implementation"`
}

// SuggestionBundle is advisory improvement text for a page. It is never applied
// automatically.
type SuggestionBundle struct {
	Title           TitleSuggestions       `json:"title"`
	MetaDescription MetaSuggestions        `json:"meta_description"`
	Headings        HeadingSuggestions     `json:"h1_suggestion"`
	Keywords        KeywordRecommendations `json:"keyword_recommendations"`
	ContentTips     []ContentTip           `json:"content_suggestions"`
	Schema          *SchemaSuggestion      `json:"schema_suggestion,omitempty"`
}
