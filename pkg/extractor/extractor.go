package extractor

import (
	"bytes"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/utils"
)

const (
	maxH2Tags   = 5
	maxKeywords = 10
)

// Extractor turns a PageSnapshot into a FeatureSet
type Extractor struct {
	detectLanguage bool
	logger         *slog.Logger
}

// Option configures an Extractor
type Option func(*Extractor)

// WithLanguageDetection toggles the statistical language fallback used when
// the document declares no lang attribute
func WithLanguageDetection(enabled bool) Option {
	return func(e *Extractor) {
		e.detectLanguage = enabled
	}
}

// WithLogger sets the extractor's logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// New creates a new Extractor instance
func New(opts ...Option) *Extractor {
	e := &Extractor{
		detectLanguage: true,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "extractor")
	return e
}

// Extract derives every feature from the snapshot alone. Malformed or missing
// markup degrades to zero values; it never fails.
func (e *Extractor) Extract(snap *models.PageSnapshot) models.FeatureSet {
	pageURL := snap.EffectiveURL()
	f := models.FeatureSet{
		URL:            pageURL,
		Domain:         utils.GetDomainFromURL(pageURL),
		HTTPS:          isHTTPS(pageURL),
		LoadTime:       snap.Elapsed.Seconds(),
		ResponseSizeKB: float64(len(snap.Body)) / 1024,
		StatusCode:     snap.StatusCode,
		H1Tags:         []string{},
		H2Tags:         []string{},
		TopKeywords:    []models.Keyword{},
	}

	root, err := html.Parse(bytes.NewReader(snap.Body))
	if err != nil {
		e.logger.Warn("unparseable document", "url", pageURL, "error", err)
		return f
	}
	doc := goquery.NewDocumentFromNode(root)

	e.extractHead(doc, &f)
	e.extractHeadings(doc, &f)
	e.extractBody(doc, &f)

	visible := visibleText(root)
	words := strings.Fields(visible)
	f.WordCount = len(words)
	f.VocabularyRichness = utils.VocabularyRichness(utils.Words(visible))

	f.TopKeywords = utils.ExtractKeywords(mainText(snap.Body, visible), maxKeywords)

	if f.Lang == "" && e.detectLanguage {
		f.Lang = detectLanguage(visible)
	}

	return f
}

func (e *Extractor) extractHead(doc *goquery.Document, f *models.FeatureSet) {
	f.Title = utils.CleanText(doc.Find("title").First().Text())
	f.TitleLength = utf8.RuneCountInString(f.Title)

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name := strings.ToLower(strings.TrimSpace(s.AttrOr("name", "")))
		property := strings.ToLower(strings.TrimSpace(s.AttrOr("property", "")))
		content := strings.TrimSpace(s.AttrOr("content", ""))

		switch {
		case name == "description" && f.MetaDescription == "":
			f.MetaDescription = utils.CleanText(content)
		case name == "viewport":
			f.HasViewport = true
			normalized := strings.ReplaceAll(strings.ToLower(content), " ", "")
			if strings.Contains(normalized, "width=device-width") {
				f.IsMobileFriendly = true
			}
		case property == "og:title":
			f.HasOGTitle = true
		case property == "og:description":
			f.HasOGDescription = true
		case property == "og:image":
			f.HasOGImage = true
		case name == "twitter:card" || property == "twitter:card":
			f.HasTwitterCard = true
		}
	})
	f.MetaDescriptionLength = utf8.RuneCountInString(f.MetaDescription)

	og := boolCount(f.HasOGTitle, f.HasOGDescription, f.HasOGImage)
	f.OGScore = float64(og) / 3 * 100
	f.SocialCompleteness = float64(og+boolCount(f.HasTwitterCard)) / 4 * 100

	doc.Find("link[rel]").Each(func(_ int, s *goquery.Selection) {
		rels := strings.Fields(strings.ToLower(s.AttrOr("rel", "")))
		for _, rel := range rels {
			switch rel {
			case "canonical":
				if !f.HasCanonical {
					f.HasCanonical = true
					f.CanonicalURL = strings.TrimSpace(s.AttrOr("href", ""))
				}
			case "icon":
				f.HasFavicon = true
			}
		}
	})

	f.Lang = strings.TrimSpace(doc.Find("html").First().AttrOr("lang", ""))

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if strings.EqualFold(strings.TrimSpace(s.AttrOr("type", "")), "application/ld+json") {
			f.HasSchema = true
		}
	})
}

func (e *Extractor) extractHeadings(doc *goquery.Document, f *models.FeatureSet) {
	doc.Find("h1").Each(func(_ int, s *goquery.Selection) {
		f.H1Tags = append(f.H1Tags, utils.CleanText(s.Text()))
	})
	f.H1Count = len(f.H1Tags)

	h2 := doc.Find("h2")
	f.H2Count = h2.Length()
	h2.EachWithBreak(func(i int, s *goquery.Selection) bool {
		f.H2Tags = append(f.H2Tags, utils.CleanText(s.Text()))
		return i+1 < maxH2Tags
	})
	f.H3Count = doc.Find("h3").Length()
}

func (e *Extractor) extractBody(doc *goquery.Document, f *models.FeatureSet) {
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		f.TotalImages++
		alt, ok := s.Attr("alt")
		if !ok || strings.TrimSpace(alt) == "" {
			f.ImagesWithoutAlt++
		}
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}
		if utils.IsExternalHref(href) {
			f.ExternalLinks++
		} else {
			f.InternalLinks++
		}
	})

	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if strings.TrimSpace(s.Text()) != "" {
			f.ParagraphCount++
		}
	})

	f.FormCount = doc.Find("form").Length()
	f.VideoCount = doc.Find("video").Length()
	doc.Find("iframe[src]").Each(func(_ int, s *goquery.Selection) {
		src := strings.ToLower(s.AttrOr("src", ""))
		if strings.Contains(src, "youtube.com") || strings.Contains(src, "youtube-nocookie.com") || strings.Contains(src, "vimeo.com") {
			f.VideoCount++
		}
	})
}

// hiddenElements never contribute visible text
var hiddenElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"svg":      true,
	"head":     true,
}

// visibleText joins the text nodes a reader would see, separated by spaces
func visibleText(root *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hiddenElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return utils.CleanText(b.String())
}

// mainText returns the main content text, or fallback when trafilatura finds none
func mainText(body []byte, fallback string) string {
	result, err := trafilatura.Extract(bytes.NewReader(body), trafilatura.Options{})
	if err == nil && result != nil && strings.TrimSpace(result.ContentText) != "" {
		return result.ContentText
	}
	return fallback
}

func isHTTPS(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && strings.EqualFold(u.Scheme, "https")
}

func boolCount(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
