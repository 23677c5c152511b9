package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

// SaveAnalysis stores a in a single insert, assigning its ID
func (s *Store) SaveAnalysis(ctx context.Context, websiteID, userID string, a *models.Analysis) error {
	features, err := json.Marshal(a.Features)
	if err != nil {
		return &models.PersistenceError{Op: "save analysis", Err: fmt.Errorf("encode features: %w", err)}
	}
	issues, err := json.Marshal(a.Issues)
	if err != nil {
		return &models.PersistenceError{Op: "save analysis", Err: fmt.Errorf("encode issues: %w", err)}
	}
	recs, err := json.Marshal(a.Recommendations)
	if err != nil {
		return &models.PersistenceError{Op: "save analysis", Err: fmt.Errorf("encode recommendations: %w", err)}
	}
	suggestions, err := json.Marshal(a.Suggestions)
	if err != nil {
		return &models.PersistenceError{Op: "save analysis", Err: fmt.Errorf("encode suggestions: %w", err)}
	}

	id := a.ID
	if id == "" {
		id = newID()
	}
	sc := a.Score.Scores
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (
		   id, website_id, user_id, url, created_at, overall, grade,
		   title_score, meta_score, content_score, technical_score, performance_score, social_score,
		   origin, features_json, issues_json, recommendations_json, suggestions_json
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, websiteID, userID, a.URL, toNanos(a.AnalyzedAt), a.Score.Overall, a.Score.Grade,
		sc.Title, sc.Meta, sc.Content, sc.Technical, sc.Performance, sc.Social,
		string(a.Origin), string(features), string(issues), string(recs), string(suggestions),
	)
	if err != nil {
		return &models.PersistenceError{Op: "save analysis", Err: err}
	}
	a.ID = id
	return nil
}

// ListAnalyses returns a website's analyses, newest first. limit <= 0 means all.
func (s *Store) ListAnalyses(ctx context.Context, websiteID string, limit int) ([]models.Analysis, error) {
	query := `SELECT id, url, created_at, overall, grade,
	            title_score, meta_score, content_score, technical_score, performance_score, social_score,
	            origin, features_json, issues_json, recommendations_json, suggestions_json
	          FROM analyses WHERE website_id = ? ORDER BY created_at DESC, id DESC`
	args := []any{websiteID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &models.PersistenceError{Op: "list analyses", Err: err}
	}
	defer rows.Close()

	out := []models.Analysis{}
	for rows.Next() {
		var (
			a                                  models.Analysis
			created                            int64
			origin                             string
			features, issues, recs, suggestion string
		)
		sc := &a.Score.Scores
		if err := rows.Scan(&a.ID, &a.URL, &created, &a.Score.Overall, &a.Score.Grade,
			&sc.Title, &sc.Meta, &sc.Content, &sc.Technical, &sc.Performance, &sc.Social,
			&origin, &features, &issues, &recs, &suggestion); err != nil {
			return nil, &models.PersistenceError{Op: "list analyses", Err: err}
		}
		a.AnalyzedAt = fromNanos(created)
		a.Origin = models.Origin(origin)

		for _, part := range []struct {
			data string
			dst  any
		}{
			{features, &a.Features},
			{issues, &a.Issues},
			{recs, &a.Recommendations},
			{suggestion, &a.Suggestions},
		} {
			if err := json.Unmarshal([]byte(part.data), part.dst); err != nil {
				return nil, &models.PersistenceError{Op: "list analyses", Err: fmt.Errorf("decode analysis %s: %w", a.ID, err)}
			}
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.PersistenceError{Op: "list analyses", Err: err}
	}
	return out, nil
}
