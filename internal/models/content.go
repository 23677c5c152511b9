package models

// Platform identifies an output target for formatted content
type Platform string

const (
	PlatformWordPress Platform = "wordpress"
	PlatformShopify   Platform = "shopify"
	PlatformGitHub    Platform = "github"
	PlatformHTML      Platform = "html"
	PlatformMarkdown  Platform = "markdown"
)

// DisplayName returns the platform's product name
func (p Platform) DisplayName() string {
	switch p {
	case PlatformWordPress:
		return "WordPress"
	case PlatformShopify:
		return "Shopify"
	case PlatformGitHub:
		return "GitHub"
	case PlatformHTML:
		return "HTML"
	case PlatformMarkdown:
		return "Markdown"
	case "":
		return "unknown platform"
	}
	return string(p)
}

// ContentDraft is the formatter input distilled from a SuggestionBundle
type ContentDraft struct {
	Title           string         `json:"title"`
	MetaDescription string         `json:"meta_description,omitempty"`
	H1              string         `json:"h1,omitempty"`
	Keyword         string         `json:"keyword,omitempty"`
	Schema          map[string]any `json:"schema,omitempty"`
}

// DraftFromBundle picks the first variant of each suggestion list
func DraftFromBundle(b SuggestionBundle) ContentDraft {
	d := ContentDraft{Keyword: b.Keywords.Primary}
	if len(b.Title.Suggestions) > 0 {
		d.Title = b.Title.Suggestions[0].Content
	}
	if len(b.MetaDescription.Suggestions) > 0 {
		d.MetaDescription = b.MetaDescription.Suggestions[0].Content
	}
	if len(b.Headings.Suggestions) > 0 {
		d.H1 = b.Headings.Suggestions[0]
	}
	if b.Schema != nil {
		d.Schema = b.Schema.Schema
	}
	return d
}

// Metafield is a Shopify-style namespaced value
type Metafield struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type"`
}

// WordPressMeta holds Yoast SEO fields
type WordPressMeta struct {
	Title    string `json:"yoast_wpseo_title,omitempty"`
	MetaDesc string `json:"yoast_wpseo_metadesc,omitempty"`
}

// PlatformFormat is a platform-specific rendering of a ContentDraft.
// Fields a platform does not use stay empty and are omitted from JSON.
type PlatformFormat struct {
	Platform        Platform       `json:"platform"`
	Title           string         `json:"title,omitempty"`
	Excerpt         string         `json:"excerpt,omitempty"`
	Meta            *WordPressMeta `json:"meta,omitempty"`
	Content         string         `json:"content,omitempty"`
	Metafields      []Metafield    `json:"metafields,omitempty"`
	FrontMatter     string         `json:"front_matter,omitempty"`
	HTML            string         `json:"html,omitempty"`
	Markdown        string         `json:"markdown,omitempty"`
	MetaDescription string         `json:"meta_description,omitempty"`
}
