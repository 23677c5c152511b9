package models

import "time"

// PageSnapshot represents a single fetched web page
type PageSnapshot struct {
	URL         string        `json:"url"`
	FinalURL    string        `json:"final_url"`
	Body        []byte        `json:"-"`
	StatusCode  int           `json:"status_code"`
	ContentType string        `json:"content_type"`
	Elapsed     time.Duration `json:"elapsed"`
	FetchedAt   time.Time     `json:"fetched_at"`
}

// EffectiveURL returns the post-redirect URL when known
func (s *PageSnapshot) EffectiveURL() string {
	if s.FinalURL != "" {
		return s.FinalURL
	}
	return s.URL
}

// Keyword is a ranked term found in page text
type Keyword struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// FeatureSet holds the normalized SEO measurements derived from a PageSnapshot.
// Every field is computed from the snapshot alone.
type FeatureSet struct {
	URL    string `json:"url"`
	Domain string `json:"domain"`

	Title       string `json:"title"`
	TitleLength int    `json:"title_length"`

	MetaDescription       string `json:"meta_description"`
	MetaDescriptionLength int    `json:"meta_description_length"`

	H1Tags  []string `json:"h1_tags"`
	H1Count int      `json:"h1_count"`
	H2Tags  []string `json:"h2_tags"`
	H2Count int      `json:"h2_count"`
	H3Count int      `json:"h3_count"`

	TotalImages      int `json:"total_images"`
	ImagesWithoutAlt int `json:"images_without_alt"`

	InternalLinks int `json:"internal_links"`
	ExternalLinks int `json:"external_links"`

	WordCount          int       `json:"word_count"`
	VocabularyRichness float64   `json:"vocabulary_richness"`
	ParagraphCount     int       `json:"paragraph_count"`
	TopKeywords        []Keyword `json:"top_keywords"`

	IsMobileFriendly bool   `json:"is_mobile_friendly"`
	HasViewport      bool   `json:"has_viewport"`
	HasSchema        bool   `json:"has_schema"`
	HTTPS            bool   `json:"url_has_https"`
	HasCanonical     bool   `json:"has_canonical"`
	CanonicalURL     string `json:"canonical_url,omitempty"`
	Lang             string `json:"lang,omitempty"`
	HasFavicon       bool   `json:"has_favicon"`

	HasOGTitle         bool    `json:"has_og_title"`
	HasOGDescription   bool    `json:"has_og_description"`
	HasOGImage         bool    `json:"has_og_image"`
	OGScore            float64 `json:"og_score"`
	HasTwitterCard     bool    `json:"has_twitter_card"`
	SocialCompleteness float64 `json:"social_completeness"`

	FormCount  int `json:"form_count"`
	VideoCount int `json:"video_count"`

	LoadTime       float64 `json:"load_time"`
	ResponseSizeKB float64 `json:"response_size_kb"`
	StatusCode     int     `json:"status_code"`
}

// HasTitle reports whether the page has a non-empty title
func (f FeatureSet) HasTitle() bool {
	return f.TitleLength > 0
}

// HasMetaDescription reports whether the page has a non-empty meta description
func (f FeatureSet) HasMetaDescription() bool {
	return f.MetaDescriptionLength > 0
}
