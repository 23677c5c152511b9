package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

const editColumns = `id, website_id, user_id, field_type, old_value, new_value, status, simulated, push_note, created_at, applied_at`

// CreateEdit inserts a new edit record
func (s *Store) CreateEdit(ctx context.Context, e *models.EditRecord) error {
	if e.ID == "" {
		e.ID = newID()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO edits (`+editColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.WebsiteID, e.UserID, string(e.FieldType), e.OldValue, e.NewValue, string(e.Status),
		boolInt(e.Simulated), e.PushNote, toNanos(e.CreatedAt), nullTime(e.AppliedAt),
	)
	if err != nil {
		return &models.PersistenceError{Op: "create edit", Err: err}
	}
	return nil
}

// GetEdit loads an edit by ID
func (s *Store) GetEdit(ctx context.Context, id string) (*models.EditRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+editColumns+` FROM edits WHERE id = ?`, id)
	e, err := scanEdit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("edit %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "get edit", Err: err}
	}
	return e, nil
}

// ListEdits returns a website's edits, newest first
func (s *Store) ListEdits(ctx context.Context, websiteID string) ([]models.EditRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+editColumns+` FROM edits WHERE website_id = ? ORDER BY created_at DESC, id DESC`, websiteID)
	if err != nil {
		return nil, &models.PersistenceError{Op: "list edits", Err: err}
	}
	defer rows.Close()

	out := []models.EditRecord{}
	for rows.Next() {
		e, err := scanEdit(rows)
		if err != nil {
			return nil, &models.PersistenceError{Op: "list edits", Err: err}
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.PersistenceError{Op: "list edits", Err: err}
	}
	return out, nil
}

// FinishEdit writes e's terminal state, but only while the stored record is
// still pending. A concurrent apply and cancel cannot both succeed.
func (s *Store) FinishEdit(ctx context.Context, e *models.EditRecord) error {
	if !e.Status.Terminal() {
		return models.NewValidationError("status", fmt.Sprintf("%s is not a terminal status", e.Status))
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE edits SET status = ?, simulated = ?, push_note = ?, applied_at = ?
		 WHERE id = ? AND status = ?`,
		string(e.Status), boolInt(e.Simulated), e.PushNote, nullTime(e.AppliedAt),
		e.ID, string(models.EditPending),
	)
	if err != nil {
		return &models.PersistenceError{Op: "finish edit", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &models.PersistenceError{Op: "finish edit", Err: err}
	}
	if n == 0 {
		return models.ErrEditNotPending
	}
	return nil
}

func scanEdit(row scanner) (*models.EditRecord, error) {
	var (
		e             models.EditRecord
		field, status string
		simulated     int
		created       int64
		applied       sql.NullInt64
	)
	if err := row.Scan(&e.ID, &e.WebsiteID, &e.UserID, &field, &e.OldValue, &e.NewValue, &status,
		&simulated, &e.PushNote, &created, &applied); err != nil {
		return nil, err
	}
	e.FieldType = models.FieldType(field)
	e.Status = models.EditStatus(status)
	e.Simulated = simulated != 0
	e.CreatedAt = fromNanos(created)
	e.AppliedAt = timePtr(applied)
	return &e, nil
}
