package suggest

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/scorer"
)

func coffeeFeatures() models.FeatureSet {
	return models.FeatureSet{
		URL:         "https://www.acme-coffee.com/",
		Domain:      "www.acme-coffee.com",
		Title:       "Home",
		TitleLength: 4,
		H1Count:     0,
		WordCount:   120,
		TopKeywords: []models.Keyword{
			{Word: "coffee", Count: 5},
			{Word: "beans", Count: 3},
			{Word: "roast", Count: 2},
			{Word: "brew", Count: 1},
			{Word: "cup", Count: 1},
			{Word: "mug", Count: 1},
		},
		ImagesWithoutAlt: 2,
	}
}

func newTestTemplate() *Template {
	return NewTemplate(scorer.DefaultConfig().Thresholds)
}

func TestTemplateTitles(t *testing.T) {
	b := newTestTemplate().Suggest(coffeeFeatures(), models.ScoreBreakdown{})

	assert.Equal(t, "Home", b.Title.Current)
	assert.Equal(t, []string{"too_short", "missing_keyword"}, b.Title.Issues)
	assert.Equal(t, "30-60 characters", b.Title.OptimalLength)
	require.Len(t, b.Title.Suggestions, 3)

	assert.Equal(t, "Coffee - Expert Solutions & Results | Acme Coffee", b.Title.Suggestions[0].Content)
	assert.Equal(t, "Reduced Costs with Coffee | Acme Coffee", b.Title.Suggestions[1].Content)
	assert.Equal(t, "Get Coffee That Works - Acme Coffee", b.Title.Suggestions[2].Content)
	for _, v := range b.Title.Suggestions {
		assert.Equal(t, utf8.RuneCountInString(v.Content), v.Length)
		assert.LessOrEqual(t, v.Length, 60)
		assert.NotEmpty(t, v.Reason)
	}
}

func TestTemplateTruncatesLongVariants(t *testing.T) {
	f := coffeeFeatures()
	f.Domain = "the-extraordinarily-long-brand-name-of-the-roastery.com"
	f.TopKeywords[0].Word = "decaffeinated"

	b := newTestTemplate().Suggest(f, models.ScoreBreakdown{})
	assert.True(t, strings.HasPrefix(b.Title.Suggestions[0].Content, "Decaffeinated - Best Solutions |"))
	for _, v := range b.Title.Suggestions {
		assert.LessOrEqual(t, utf8.RuneCountInString(v.Content), 60)
	}
	for _, v := range b.MetaDescription.Suggestions {
		assert.LessOrEqual(t, utf8.RuneCountInString(v.Content), 160)
	}
}

func TestTemplateMetaAndHeadings(t *testing.T) {
	b := newTestTemplate().Suggest(coffeeFeatures(), models.ScoreBreakdown{})

	require.Len(t, b.MetaDescription.Suggestions, 3)
	assert.Equal(t, "120-160 characters", b.MetaDescription.OptimalLength)
	assert.Contains(t, b.MetaDescription.Suggestions[0].Content, "Discover the best coffee solutions")
	assert.Contains(t, b.MetaDescription.Suggestions[1].Content, "Acme Coffee offers proven solutions")

	assert.Equal(t, "missing", b.Headings.Issue)
	assert.Empty(t, b.Headings.Current)
	assert.Equal(t, []string{
		"The Complete Guide to Coffee",
		"Discover Coffee That Delivers Results",
		"Coffee: Everything You Need to Know",
	}, b.Headings.Suggestions)
}

func TestTemplateKeywords(t *testing.T) {
	b := newTestTemplate().Suggest(coffeeFeatures(), models.ScoreBreakdown{})

	assert.Equal(t, "coffee", b.Keywords.Primary)
	assert.Equal(t, 5, b.Keywords.PrimaryCount)
	assert.Equal(t, []string{"beans", "roast", "brew", "cup"}, b.Keywords.Secondary)
	assert.Len(t, b.Keywords.LongTail, 5)
	assert.Contains(t, b.Keywords.LongTail, "coffee for beginners")

	empty := keywords(nil)
	assert.Empty(t, empty.Primary)
	assert.NotNil(t, empty.Secondary)
	assert.Equal(t, "Add more keyword-rich content", empty.Recommendation)
}

func TestTemplateContentTipsAndSchema(t *testing.T) {
	f := coffeeFeatures()
	f.VideoCount = 1
	b := newTestTemplate().Suggest(f, models.ScoreBreakdown{})

	require.Len(t, b.ContentTips, 2)
	assert.Equal(t, "content_length", b.ContentTips[0].Type)
	assert.Equal(t, "image_optimization", b.ContentTips[1].Type)
	assert.Equal(t, `alt="coffee - descriptive image caption"`, b.ContentTips[1].Example)

	require.NotNil(t, b.Schema)
	assert.Equal(t, "VideoObject", b.Schema.Type)
	assert.Equal(t, "Home", b.Schema.Schema["name"])
	assert.True(t, strings.HasPrefix(b.Schema.Implementation, `<script type="application/ld+json">`))
}

func TestPrimaryKeywordFallbacks(t *testing.T) {
	assert.Equal(t, "amazing", PrimaryKeyword(models.FeatureSet{Title: "With Your Amazing Shoes"}))
	assert.Equal(t, "your product", PrimaryKeyword(models.FeatureSet{Title: "A to Z"}))
	assert.Equal(t, "your product", PrimaryKeyword(models.FeatureSet{}))
}

func TestTemplateIsDeterministic(t *testing.T) {
	tmpl := newTestTemplate()
	f := coffeeFeatures()
	first := tmpl.Suggest(f, models.ScoreBreakdown{})
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, tmpl.Suggest(f, models.ScoreBreakdown{}))
	}
}

func TestStrategyFunc(t *testing.T) {
	var s Strategy = StrategyFunc(func(f models.FeatureSet, _ models.ScoreBreakdown) models.SuggestionBundle {
		return models.SuggestionBundle{Title: models.TitleSuggestions{Current: f.Title}}
	})
	assert.Equal(t, "x", s.Suggest(models.FeatureSet{Title: "x"}, models.ScoreBreakdown{}).Title.Current)
}
