package scorer

import (
	"fmt"
	"math"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

// Weights assigns each category its share of the overall score
type Weights struct {
	Title       float64 `mapstructure:"title"`
	Meta        float64 `mapstructure:"meta"`
	Content     float64 `mapstructure:"content"`
	Technical   float64 `mapstructure:"technical"`
	Performance float64 `mapstructure:"performance"`
	Social      float64 `mapstructure:"social"`
}

// Sum returns the total of all weights
func (w Weights) Sum() float64 {
	return w.Title + w.Meta + w.Content + w.Technical + w.Performance + w.Social
}

// Thresholds holds the rule boundaries and tier values
type Thresholds struct {
	TitleMin          int     `mapstructure:"title_min"`
	TitleMax          int     `mapstructure:"title_max"`
	MetaMin           int     `mapstructure:"meta_min"`
	MetaMax           int     `mapstructure:"meta_max"`
	ReducedTier       int     `mapstructure:"reduced_tier"`
	MinWordCount      int     `mapstructure:"min_word_count"`
	WordCountBonus    int     `mapstructure:"word_count_bonus"`
	SingleH1          int     `mapstructure:"single_h1"`
	NoH1              int     `mapstructure:"no_h1"`
	MultipleH1        int     `mapstructure:"multiple_h1"`
	HTTPSPoints       int     `mapstructure:"https_points"`
	MobilePoints      int     `mapstructure:"mobile_points"`
	SchemaPoints      int     `mapstructure:"schema_points"`
	FastLoadSeconds   float64 `mapstructure:"fast_load_seconds"`
	MediumLoadSeconds float64 `mapstructure:"medium_load_seconds"`
	FastScore         int     `mapstructure:"fast_score"`
	MediumScore       int     `mapstructure:"medium_score"`
	SlowScore         int     `mapstructure:"slow_score"`
	GradeA            int     `mapstructure:"grade_a"`
	GradeB            int     `mapstructure:"grade_b"`
	GradeC            int     `mapstructure:"grade_c"`
}

// Config is the injected scoring configuration
type Config struct {
	Weights    Weights    `mapstructure:"weights"`
	Thresholds Thresholds `mapstructure:"thresholds"`
}

// DefaultConfig returns the standard rule table
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Title:       0.15,
			Meta:        0.15,
			Content:     0.25,
			Technical:   0.20,
			Performance: 0.15,
			Social:      0.10,
		},
		Thresholds: Thresholds{
			TitleMin:          30,
			TitleMax:          60,
			MetaMin:           120,
			MetaMax:           160,
			ReducedTier:       60,
			MinWordCount:      300,
			WordCountBonus:    30,
			SingleH1:          70,
			NoH1:              30,
			MultipleH1:        50,
			HTTPSPoints:       40,
			MobilePoints:      35,
			SchemaPoints:      25,
			FastLoadSeconds:   2,
			MediumLoadSeconds: 4,
			FastScore:         100,
			MediumScore:       70,
			SlowScore:         40,
			GradeA:            80,
			GradeB:            60,
			GradeC:            40,
		},
	}
}

const weightTolerance = 0.001

// Validate checks that weights are non-negative and sum to 1
func (c Config) Validate() error {
	w := c.Weights
	for name, v := range map[string]float64{
		"title": w.Title, "meta": w.Meta, "content": w.Content,
		"technical": w.Technical, "performance": w.Performance, "social": w.Social,
	} {
		if v < 0 {
			return fmt.Errorf("scoring.weights.%s must not be negative", name)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("scoring.weights must sum to 1, got %.3f", sum)
	}
	t := c.Thresholds
	if t.TitleMin > t.TitleMax || t.MetaMin > t.MetaMax {
		return fmt.Errorf("scoring.thresholds: min length exceeds max length")
	}
	if t.FastLoadSeconds > t.MediumLoadSeconds {
		return fmt.Errorf("scoring.thresholds: fast_load_seconds exceeds medium_load_seconds")
	}
	if !(t.GradeA >= t.GradeB && t.GradeB >= t.GradeC) {
		return fmt.Errorf("scoring.thresholds: grade boundaries must be descending")
	}
	return nil
}

// Scorer maps a FeatureSet to a ScoreBreakdown
type Scorer struct {
	config Config
}

// New creates a Scorer with the given configuration
func New(config Config) *Scorer {
	return &Scorer{config: config}
}

// NewDefault creates a Scorer with DefaultConfig
func NewDefault() *Scorer {
	return New(DefaultConfig())
}

// Config returns the scorer's configuration
func (s *Scorer) Config() Config {
	return s.config
}

// Score evaluates every category and derives the overall score and grade
func (s *Scorer) Score(f models.FeatureSet) models.ScoreBreakdown {
	return s.Finalize(models.Scores{
		Title:       s.titleScore(f),
		Meta:        s.metaScore(f),
		Content:     s.contentScore(f),
		Technical:   s.technicalScore(f),
		Performance: s.performanceScore(f),
		Social:      s.socialScore(f),
	})
}

// Finalize clamps category scores and recomputes Overall and Grade from them.
// Every ScoreBreakdown, local or remote, goes through here.
func (s *Scorer) Finalize(scores models.Scores) models.ScoreBreakdown {
	scores = models.Scores{
		Title:       clamp(scores.Title),
		Meta:        clamp(scores.Meta),
		Content:     clamp(scores.Content),
		Technical:   clamp(scores.Technical),
		Performance: clamp(scores.Performance),
		Social:      clamp(scores.Social),
	}
	overall := s.Overall(scores)
	return models.ScoreBreakdown{
		Scores:  scores,
		Overall: overall,
		Grade:   s.Grade(overall),
	}
}

// Overall returns round(sum of category * weight)
func (s *Scorer) Overall(scores models.Scores) int {
	w := s.config.Weights
	total := float64(scores.Title)*w.Title +
		float64(scores.Meta)*w.Meta +
		float64(scores.Content)*w.Content +
		float64(scores.Technical)*w.Technical +
		float64(scores.Performance)*w.Performance +
		float64(scores.Social)*w.Social
	return clamp(int(math.Round(total)))
}

// Grade maps an overall score to a letter
func (s *Scorer) Grade(overall int) string {
	t := s.config.Thresholds
	switch {
	case overall >= t.GradeA:
		return "A"
	case overall >= t.GradeB:
		return "B"
	case overall >= t.GradeC:
		return "C"
	default:
		return "D"
	}
}

func (s *Scorer) titleScore(f models.FeatureSet) int {
	t := s.config.Thresholds
	switch {
	case !f.HasTitle():
		return 0
	case f.TitleLength >= t.TitleMin && f.TitleLength <= t.TitleMax:
		return 100
	default:
		return t.ReducedTier
	}
}

func (s *Scorer) metaScore(f models.FeatureSet) int {
	t := s.config.Thresholds
	switch {
	case !f.HasMetaDescription():
		return 0
	case f.MetaDescriptionLength >= t.MetaMin && f.MetaDescriptionLength <= t.MetaMax:
		return 100
	default:
		return t.ReducedTier
	}
}

func (s *Scorer) contentScore(f models.FeatureSet) int {
	t := s.config.Thresholds
	var score int
	switch {
	case f.H1Count == 1:
		score = t.SingleH1
	case f.H1Count == 0:
		score = t.NoH1
	default:
		score = t.MultipleH1
	}
	if f.WordCount >= t.MinWordCount {
		score += t.WordCountBonus
	}
	return score
}

func (s *Scorer) technicalScore(f models.FeatureSet) int {
	t := s.config.Thresholds
	score := 0
	if f.HTTPS {
		score += t.HTTPSPoints
	}
	if f.IsMobileFriendly {
		score += t.MobilePoints
	}
	if f.HasSchema {
		score += t.SchemaPoints
	}
	return score
}

func (s *Scorer) performanceScore(f models.FeatureSet) int {
	t := s.config.Thresholds
	switch {
	case f.LoadTime < t.FastLoadSeconds:
		return t.FastScore
	case f.LoadTime < t.MediumLoadSeconds:
		return t.MediumScore
	default:
		return t.SlowScore
	}
}

func (s *Scorer) socialScore(f models.FeatureSet) int {
	return int(math.Round(f.SocialCompleteness))
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
