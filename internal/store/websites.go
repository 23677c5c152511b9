package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

// CreateWebsite inserts w, assigning its ID and creation time
func (s *Store) CreateWebsite(ctx context.Context, w *models.Website) error {
	if strings.TrimSpace(w.UserID) == "" {
		return models.NewValidationError("user_id", "user is required")
	}
	if strings.TrimSpace(w.URL) == "" {
		return models.NewValidationError("url", "URL is required")
	}
	if w.ID == "" {
		w.ID = newID()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO websites (id, user_id, url, platform, created_at, last_analyzed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		w.ID, w.UserID, w.URL, string(w.Platform), toNanos(w.CreatedAt), nullTime(w.LastAnalyzedAt),
	)
	if err != nil {
		return &models.PersistenceError{Op: "create website", Err: err}
	}
	return nil
}

// GetWebsite loads a website by ID
func (s *Store) GetWebsite(ctx context.Context, id string) (*models.Website, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, url, platform, created_at, last_analyzed_at FROM websites WHERE id = ?`, id)
	w, err := scanWebsite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("website %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "get website", Err: err}
	}
	return w, nil
}

// ListWebsites returns a user's websites, oldest first. An empty user lists all.
func (s *Store) ListWebsites(ctx context.Context, userID string) ([]models.Website, error) {
	query := `SELECT id, user_id, url, platform, created_at, last_analyzed_at FROM websites`
	var args []any
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &models.PersistenceError{Op: "list websites", Err: err}
	}
	defer rows.Close()

	out := []models.Website{}
	for rows.Next() {
		w, err := scanWebsite(rows)
		if err != nil {
			return nil, &models.PersistenceError{Op: "list websites", Err: err}
		}
		out = append(out, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.PersistenceError{Op: "list websites", Err: err}
	}
	return out, nil
}

// MarkAnalyzed records when a website was last analyzed
func (s *Store) MarkAnalyzed(ctx context.Context, websiteID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE websites SET last_analyzed_at = ? WHERE id = ?`, toNanos(at), websiteID)
	if err != nil {
		return &models.PersistenceError{Op: "mark analyzed", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("website %s: %w", websiteID, models.ErrNotFound)
	}
	return nil
}

// SaveAccount creates or replaces the user's account for a platform
func (s *Store) SaveAccount(ctx context.Context, a *models.ConnectedAccount) error {
	if strings.TrimSpace(a.UserID) == "" {
		return models.NewValidationError("user_id", "user is required")
	}
	if a.Platform == "" {
		return models.NewValidationError("platform", "platform is required")
	}
	if a.ID == "" {
		a.ID = newID()
	}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO connected_accounts (id, user_id, platform, access_token, site_url, store_url, repo)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, platform) DO UPDATE SET
		   access_token = excluded.access_token,
		   site_url = excluded.site_url,
		   store_url = excluded.store_url,
		   repo = excluded.repo
		 RETURNING id`,
		a.ID, a.UserID, string(a.Platform), a.AccessToken, a.SiteURL, a.StoreURL, a.Repo,
	).Scan(&a.ID)
	if err != nil {
		return &models.PersistenceError{Op: "save account", Err: err}
	}
	return nil
}

// GetAccount returns the user's connected account for a platform
func (s *Store) GetAccount(ctx context.Context, userID string, platform models.Platform) (*models.ConnectedAccount, error) {
	var a models.ConnectedAccount
	var p string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, platform, access_token, site_url, store_url, repo
		 FROM connected_accounts WHERE user_id = ? AND platform = ?`,
		userID, string(platform),
	).Scan(&a.ID, &a.UserID, &p, &a.AccessToken, &a.SiteURL, &a.StoreURL, &a.Repo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s account for user %s: %w", platform, userID, models.ErrNotFound)
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "get account", Err: err}
	}
	a.Platform = models.Platform(p)
	return &a, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWebsite(row scanner) (*models.Website, error) {
	var w models.Website
	var platform string
	var created int64
	var analyzed sql.NullInt64
	if err := row.Scan(&w.ID, &w.UserID, &w.URL, &platform, &created, &analyzed); err != nil {
		return nil, err
	}
	w.Platform = models.Platform(platform)
	w.CreatedAt = fromNanos(created)
	w.LastAnalyzedAt = timePtr(analyzed)
	return &w, nil
}
