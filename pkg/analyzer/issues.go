package analyzer

import (
	"fmt"
	"sort"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/scorer"
)

// rule inspects one aspect of a page and appends any issues it finds
type rule func(f models.FeatureSet, t scorer.Thresholds) []models.Issue

// Engine derives issues and recommendations from features and scores
type Engine struct {
	thresholds scorer.Thresholds
	rules      []rule
}

// NewEngine creates an Engine using the scoring thresholds as rule boundaries
func NewEngine(thresholds scorer.Thresholds) *Engine {
	return &Engine{
		thresholds: thresholds,
		rules: []rule{
			titleRules,
			metaRules,
			contentRules,
			technicalRules,
			performanceRules,
			socialRules,
		},
	}
}

// Issues runs the rule chain and orders the result with SortIssues. The
// rules currently read features only; scores are accepted so score-based
// rules can join the chain.
func (e *Engine) Issues(f models.FeatureSet, _ models.ScoreBreakdown) []models.Issue {
	issues := []models.Issue{}
	for _, r := range e.rules {
		issues = append(issues, r(f, e.thresholds)...)
	}
	return SortIssues(issues)
}

// SortIssues orders issues by severity in place, critical first. Within one
// severity the incoming order is kept, which for the rule chain is title,
// meta, content, technical, performance, social.
func SortIssues(issues []models.Issue) []models.Issue {
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Severity.Rank() < issues[j].Severity.Rank()
	})
	return issues
}

func issue(sev models.Severity, cat models.Category, format string, args ...any) models.Issue {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return models.Issue{Severity: sev, Category: cat, Message: msg}
}

func titleRules(f models.FeatureSet, t scorer.Thresholds) []models.Issue {
	switch {
	case !f.HasTitle():
		return []models.Issue{issue(models.SeverityCritical, models.CategoryTitle, "Missing page title")}
	case f.TitleLength < t.TitleMin:
		return []models.Issue{issue(models.SeverityWarning, models.CategoryTitle,
			"Title too short (%d chars) - aim for %d-%d characters", f.TitleLength, t.TitleMin, t.TitleMax)}
	case f.TitleLength > t.TitleMax:
		return []models.Issue{issue(models.SeverityWarning, models.CategoryTitle,
			"Title too long (%d chars) - may be truncated in search results", f.TitleLength)}
	}
	return nil
}

func metaRules(f models.FeatureSet, t scorer.Thresholds) []models.Issue {
	switch {
	case !f.HasMetaDescription():
		return []models.Issue{issue(models.SeverityCritical, models.CategoryMeta,
			"Missing meta description - strongly impacts click-through rate")}
	case f.MetaDescriptionLength < t.MetaMin:
		return []models.Issue{issue(models.SeverityWarning, models.CategoryMeta,
			"Meta description too short (%d chars) - aim for %d-%d characters", f.MetaDescriptionLength, t.MetaMin, t.MetaMax)}
	case f.MetaDescriptionLength > t.MetaMax:
		return []models.Issue{issue(models.SeverityWarning, models.CategoryMeta,
			"Meta description too long (%d chars) - may be truncated in search results", f.MetaDescriptionLength)}
	}
	return nil
}

func contentRules(f models.FeatureSet, t scorer.Thresholds) []models.Issue {
	var issues []models.Issue
	switch {
	case f.H1Count == 0:
		issues = append(issues, issue(models.SeverityCritical, models.CategoryContent, "Missing H1 heading"))
	case f.H1Count > 1:
		issues = append(issues, issue(models.SeverityWarning, models.CategoryContent,
			"Multiple H1 headings (%d) - use a single H1 per page", f.H1Count))
	}
	if f.WordCount < t.MinWordCount {
		issues = append(issues, issue(models.SeverityWarning, models.CategoryContent,
			"Thin content (%d words) - aim for at least %d words", f.WordCount, t.MinWordCount))
	}
	if f.ImagesWithoutAlt > 0 {
		issues = append(issues, issue(models.SeverityWarning, models.CategoryContent,
			"%d images missing alt text", f.ImagesWithoutAlt))
	}
	return issues
}

func technicalRules(f models.FeatureSet, _ scorer.Thresholds) []models.Issue {
	var issues []models.Issue
	if !f.HTTPS {
		issues = append(issues, issue(models.SeverityCritical, models.CategoryTechnical,
			"No HTTPS - page is served over an insecure connection"))
	}
	if !f.IsMobileFriendly {
		issues = append(issues, issue(models.SeverityCritical, models.CategoryTechnical,
			"Not mobile-friendly - add a responsive viewport meta tag"))
	}
	if !f.HasSchema {
		issues = append(issues, issue(models.SeverityInfo, models.CategoryTechnical,
			"No structured data (schema.org JSON-LD) found"))
	}
	return issues
}

func performanceRules(f models.FeatureSet, t scorer.Thresholds) []models.Issue {
	switch {
	case f.LoadTime >= t.MediumLoadSeconds:
		return []models.Issue{issue(models.SeverityWarning, models.CategoryPerformance,
			"Slow page load (%.2fs) - target under %g seconds", f.LoadTime, t.FastLoadSeconds)}
	case f.LoadTime >= t.FastLoadSeconds:
		return []models.Issue{issue(models.SeverityInfo, models.CategoryPerformance,
			"Page load (%.2fs) could be faster - target under %g seconds", f.LoadTime, t.FastLoadSeconds)}
	}
	return nil
}

func socialRules(f models.FeatureSet, _ scorer.Thresholds) []models.Issue {
	var issues []models.Issue
	if og := boolCount(f.HasOGTitle, f.HasOGDescription, f.HasOGImage); og < 3 {
		issues = append(issues, issue(models.SeverityInfo, models.CategorySocial,
			"Incomplete Open Graph tags (%d of 3 present)", og))
	}
	if !f.HasTwitterCard {
		issues = append(issues, issue(models.SeverityInfo, models.CategorySocial, "Missing Twitter Card meta tag"))
	}
	return issues
}

func boolCount(values ...bool) int {
	n := 0
	for _, v := range values {
		if v {
			n++
		}
	}
	return n
}
