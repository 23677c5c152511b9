package suggest

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/scorer"
	"github.com/amosWeiskopf/seosmith/pkg/utils"
)

const (
	defaultKeyword = "your product"
	defaultBrand   = "Your Brand"
	richWordCount  = 500
)

var titleWord = regexp.MustCompile(`\b[a-zA-Z]{4,}\b`)

var benefits = []string{
	"better results", "improved performance", "higher rankings",
	"increased traffic", "more conversions", "saved time",
	"reduced costs", "expert solutions", "proven results",
}

var ctas = []string{
	"Get started free →",
	"Learn more today!",
	"Try it now →",
	"Start your journey!",
	"See how it works →",
	"Get your free quote!",
	"Join thousands of users!",
	"Schedule a demo →",
}

// Template is the deterministic template-based Strategy. Variant choices are
// keyed on the primary keyword so equal inputs give equal output.
type Template struct {
	thresholds scorer.Thresholds
}

// NewTemplate creates a Template using the scoring thresholds for length targets
func NewTemplate(thresholds scorer.Thresholds) *Template {
	return &Template{thresholds: thresholds}
}

// Suggest implements Strategy
func (t *Template) Suggest(f models.FeatureSet, _ models.ScoreBreakdown) models.SuggestionBundle {
	keyword := PrimaryKeyword(f)
	brand := utils.BrandFromDomain(f.Domain)
	if brand == "" {
		brand = defaultBrand
	}

	return models.SuggestionBundle{
		Title:           t.titles(f, keyword, brand),
		MetaDescription: t.metas(f, keyword, brand),
		Headings:        headings(f, keyword),
		Keywords:        keywords(f.TopKeywords),
		ContentTips:     contentTips(f),
		Schema:          schema(f, brand),
	}
}

// PrimaryKeyword picks the top keyword, else the first meaningful title word
func PrimaryKeyword(f models.FeatureSet) string {
	if len(f.TopKeywords) > 0 && f.TopKeywords[0].Word != "" {
		return f.TopKeywords[0].Word
	}
	for _, w := range titleWord.FindAllString(strings.ToLower(f.Title), -1) {
		if !utils.IsStopWord(w) {
			return w
		}
	}
	return defaultKeyword
}

func (t *Template) titles(f models.FeatureSet, keyword, brand string) models.TitleSuggestions {
	th := t.thresholds
	issues := []string{}
	switch {
	case f.TitleLength < th.TitleMin:
		issues = append(issues, "too_short")
	case f.TitleLength > th.TitleMax:
		issues = append(issues, "too_long")
	}
	if !strings.Contains(strings.ToLower(f.Title), strings.ToLower(keyword)) {
		issues = append(issues, "missing_keyword")
	}

	kw := utils.TitleCase(keyword)
	keywordFirst := fmt.Sprintf("%s - Expert Solutions & Results | %s", kw, brand)
	if utf8.RuneCountInString(keywordFirst) > th.TitleMax {
		keywordFirst = fmt.Sprintf("%s - Best Solutions | %s", kw, brand)
	}
	benefit := utils.TitleCase(pick(benefits, keyword))

	return models.TitleSuggestions{
		Current:       f.Title,
		CurrentLength: f.TitleLength,
		OptimalLength: fmt.Sprintf("%d-%d characters", th.TitleMin, th.TitleMax),
		Issues:        issues,
		Suggestions: []models.Variant{
			variant(keywordFirst, th.TitleMax, "Keyword-first approach for better SEO visibility", "+15-20% click potential"),
			variant(fmt.Sprintf("%s with %s | %s", benefit, kw, brand), th.TitleMax, "Benefit-first approach appeals to user intent", "+10-15% engagement"),
			variant(fmt.Sprintf("Get %s That Works - %s", kw, brand), th.TitleMax, "Action-oriented title drives clicks", "+12% CTR potential"),
		},
	}
}

func (t *Template) metas(f models.FeatureSet, keyword, brand string) models.MetaSuggestions {
	th := t.thresholds
	cta := pick(ctas, keyword)

	return models.MetaSuggestions{
		Current:       f.MetaDescription,
		CurrentLength: f.MetaDescriptionLength,
		OptimalLength: fmt.Sprintf("%d-%d characters", th.MetaMin, th.MetaMax),
		Suggestions: []models.Variant{
			variant(fmt.Sprintf("Discover the best %s solutions that deliver real results. Trusted by thousands of customers. %s", keyword, cta),
				th.MetaMax, "Combines social proof with clear call-to-action", "+20% CTR"),
			variant(fmt.Sprintf("Looking for %s? %s offers proven solutions for better results. Get started today and see the difference. %s", keyword, brand, cta),
				th.MetaMax, "Addresses user intent directly", "+18% engagement"),
			variant(fmt.Sprintf("%s's %s helps you achieve your goals faster. Easy to use, powerful results. Join thousands of happy users. %s", brand, keyword, cta),
				th.MetaMax, "Highlights benefits and social proof", "+15% CTR"),
		},
	}
}

func headings(f models.FeatureSet, keyword string) models.HeadingSuggestions {
	kw := utils.TitleCase(keyword)
	ideas := []string{
		fmt.Sprintf("The Complete Guide to %s", kw),
		fmt.Sprintf("Discover %s That Delivers Results", kw),
		fmt.Sprintf("%s: Everything You Need to Know", kw),
		fmt.Sprintf("Best %s Solutions for Your Needs", kw),
	}

	h := models.HeadingSuggestions{
		Count:       f.H1Count,
		Suggestions: ideas[:3],
	}
	if len(f.H1Tags) > 0 {
		h.Current = f.H1Tags[0]
	}
	switch {
	case f.H1Count == 0:
		h.Issue = "missing"
	case f.H1Count > 1:
		h.Issue = "multiple"
	}
	return h
}

func keywords(top []models.Keyword) models.KeywordRecommendations {
	if len(top) == 0 {
		return models.KeywordRecommendations{
			Secondary:      []string{},
			LongTail:       []string{},
			Recommendation: "Add more keyword-rich content",
		}
	}

	primary := top[0]
	secondary := []string{}
	for i := 1; i < len(top) && i < 5; i++ {
		secondary = append(secondary, top[i].Word)
	}

	return models.KeywordRecommendations{
		Primary:      primary.Word,
		PrimaryCount: primary.Count,
		Secondary:    secondary,
		LongTail: []string{
			"best " + primary.Word,
			"how to " + primary.Word,
			primary.Word + " guide",
			primary.Word + " tips",
			primary.Word + " for beginners",
		},
		Recommendation: fmt.Sprintf("Primary keyword '%s' appears %d times. Consider natural distribution.", primary.Word, primary.Count),
	}
}

func contentTips(f models.FeatureSet) []models.ContentTip {
	tips := []models.ContentTip{}
	if f.WordCount < richWordCount {
		tips = append(tips, models.ContentTip{
			Type:       "content_length",
			Priority:   "high",
			Suggestion: "Add more content to reach at least 500-1000 words",
			Sections: []string{
				"Introduction with keyword context",
				"Benefits and features section",
				"How it works / Step-by-step guide",
				"FAQ section with common questions",
				"Conclusion with clear CTA",
			},
		})
	}
	if f.ImagesWithoutAlt > 0 {
		word := "product"
		if len(f.TopKeywords) > 0 {
			word = f.TopKeywords[0].Word
		}
		tips = append(tips, models.ContentTip{
			Type:       "image_optimization",
			Priority:   "medium",
			Suggestion: fmt.Sprintf("Add alt text to %d images", f.ImagesWithoutAlt),
			Example:    fmt.Sprintf(`alt="%s - descriptive image caption"`, word),
		})
	}
	return tips
}

func schema(f models.FeatureSet, brand string) *models.SchemaSuggestion {
	pageType := "WebPage"
	if f.FormCount == 0 && f.VideoCount > 0 {
		pageType = "VideoObject"
	}

	name := f.Title
	if name == "" {
		name = brand
	}
	block := map[string]any{
		"@context":    "https://schema.org",
		"@type":       pageType,
		"name":        name,
		"description": f.MetaDescription,
		"url":         f.URL,
		"publisher": map[string]any{
			"@type": "Organization",
			"name":  brand,
		},
	}

	data, err := json.MarshalIndent(block, "", "  ")
	if err != nil {
		return nil
	}
	return &models.SchemaSuggestion{
		Type:           pageType,
		Schema:         block,
		Implementation: "<script type=\"application/ld+json\">\n" + string(data) + "\n</script>",
	}
}

func variant(content string, limit int, reason, improvement string) models.Variant {
	content = utils.TruncateRunes(content, limit)
	return models.Variant{
		Content:     content,
		Length:      utf8.RuneCountInString(content),
		Reason:      reason,
		Improvement: improvement,
	}
}

// pick chooses a list entry keyed on the keyword
func pick(list []string, keyword string) string {
	return list[len(keyword)%len(list)]
}
