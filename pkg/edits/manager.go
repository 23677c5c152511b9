package edits

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/connector"
)

const tracerName = "github.com/amosWeiskopf/seosmith/pkg/edits"

// Store persists edit records. FinishEdit must only succeed while the stored
// record is still pending and return models.ErrEditNotPending otherwise.
type Store interface {
	GetWebsite(ctx context.Context, id string) (*models.Website, error)
	CreateEdit(ctx context.Context, e *models.EditRecord) error
	GetEdit(ctx context.Context, id string) (*models.EditRecord, error)
	ListEdits(ctx context.Context, websiteID string) ([]models.EditRecord, error)
	FinishEdit(ctx context.Context, e *models.EditRecord) error
}

// Pusher makes one push attempt for an edit
type Pusher interface {
	Push(ctx context.Context, site *models.Website, edit *models.EditRecord) (*connector.Result, error)
}

// ApplyResult is the outcome of Apply
type ApplyResult struct {
	Edit     *models.EditRecord `json:"edit"`
	Verified bool               `json:"verified"`
	Message  string             `json:"message"`
}

// Manager drives edits through pending, applied and cancelled
type Manager struct {
	store       Store
	pusher      Pusher
	pushTimeout time.Duration
	logger      *slog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewManager creates a Manager
func NewManager(store Store, pusher Pusher, pushTimeout time.Duration, logger *slog.Logger) *Manager {
	return &Manager{
		store:       store,
		pusher:      pusher,
		pushTimeout: pushTimeout,
		logger:      logger.With("component", "edits"),
		tracer:      otel.Tracer(tracerName),
		now:         time.Now,
	}
}

// Create records a pending edit for a website field
func (m *Manager) Create(ctx context.Context, websiteID string, field models.FieldType, oldValue, newValue string) (*models.EditRecord, error) {
	if strings.TrimSpace(websiteID) == "" {
		return nil, models.NewValidationError("website_id", "website is required")
	}
	field, err := models.ParseFieldType(string(field))
	if err != nil {
		return nil, err
	}
	newValue = strings.TrimSpace(newValue)
	if newValue == "" {
		return nil, models.NewValidationError("new_value", "new value is required")
	}

	site, err := m.store.GetWebsite(ctx, websiteID)
	if err != nil {
		return nil, err
	}

	e := &models.EditRecord{
		ID:        newID(),
		WebsiteID: site.ID,
		UserID:    site.UserID,
		FieldType: field,
		OldValue:  oldValue,
		NewValue:  newValue,
		Status:    models.EditPending,
		CreatedAt: m.now().UTC(),
	}
	if err := m.store.CreateEdit(ctx, e); err != nil {
		return nil, asPersistence("create edit", err)
	}

	m.logger.Info("edit created", "edit_id", e.ID, "website_id", e.WebsiteID, "field", e.FieldType)
	return e, nil
}

// CreateFromSuggestion records a pending edit whose old value is the page's
// current value and whose new value is the chosen suggestion variant.
func (m *Manager) CreateFromSuggestion(ctx context.Context, websiteID string, field models.FieldType, bundle models.SuggestionBundle, variant int) (*models.EditRecord, error) {
	field, err := models.ParseFieldType(string(field))
	if err != nil {
		return nil, err
	}
	current, options := suggestionValues(field, bundle)
	if variant < 0 || variant >= len(options) {
		return nil, models.NewValidationError("variant", fmt.Sprintf("no %s suggestion at index %d", field, variant))
	}
	return m.Create(ctx, websiteID, field, current, options[variant])
}

func suggestionValues(field models.FieldType, b models.SuggestionBundle) (string, []string) {
	switch field {
	case models.FieldTitle:
		return b.Title.Current, variantContents(b.Title.Suggestions)
	case models.FieldMetaDescription:
		return b.MetaDescription.Current, variantContents(b.MetaDescription.Suggestions)
	case models.FieldH1:
		return b.Headings.Current, b.Headings.Suggestions
	case models.FieldKeywords:
		return b.Keywords.Primary, b.Keywords.LongTail
	}
	return "", nil
}

func variantContents(vs []models.Variant) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Content
	}
	return out
}

// Apply makes one push attempt and marks the edit applied. A failed push
// still applies the edit, flagged as simulated with the failure reason kept.
func (m *Manager) Apply(ctx context.Context, id string) (*ApplyResult, error) {
	ctx, span := m.tracer.Start(ctx, "edits.Apply", trace.WithAttributes(attribute.String("seosmith.edit_id", id)))
	defer span.End()

	e, err := m.pendingEdit(ctx, id, models.EditApplied)
	if err != nil {
		return nil, err
	}

	site, err := m.store.GetWebsite(ctx, e.WebsiteID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		site = &models.Website{ID: e.WebsiteID}
	case err != nil:
		return nil, asPersistence("load website", err)
	}

	pushCtx, cancel := m.pushContext(ctx)
	res, pushErr := m.push(pushCtx, site, e)
	cancel()

	now := m.now().UTC()
	e.Status = models.EditApplied
	e.AppliedAt = &now

	result := &ApplyResult{Edit: e}
	if pushErr != nil {
		provider, reason := describe(site.Platform, pushErr)
		e.Simulated = true
		e.PushNote = reason
		result.Message = fmt.Sprintf("%s applied in demo mode: could not push to %s (%s)",
			e.FieldType.Label(), provider.DisplayName(), reason)
		m.logger.Warn("push failed, edit applied in demo mode", "edit_id", e.ID, "provider", provider, "error", pushErr)
	} else {
		e.PushNote = res.Note
		result.Verified = true
		result.Message = fmt.Sprintf("%s pushed to %s", e.FieldType.Label(), res.Provider.DisplayName())
	}
	span.SetAttributes(attribute.Bool("seosmith.simulated", e.Simulated))

	if err := m.store.FinishEdit(ctx, e); err != nil {
		if errors.Is(err, models.ErrEditNotPending) {
			return nil, err
		}
		return nil, asPersistence("apply edit", err)
	}

	m.logger.Info("edit applied", "edit_id", e.ID, "verified", result.Verified)
	return result, nil
}

// Cancel moves a pending edit to cancelled. Anything else reports
// models.ErrEditNotPending and leaves the record unchanged.
func (m *Manager) Cancel(ctx context.Context, id string) (*models.EditRecord, error) {
	e, err := m.pendingEdit(ctx, id, models.EditCancelled)
	if err != nil {
		return nil, err
	}

	e.Status = models.EditCancelled
	if err := m.store.FinishEdit(ctx, e); err != nil {
		if errors.Is(err, models.ErrEditNotPending) {
			return nil, err
		}
		return nil, asPersistence("cancel edit", err)
	}

	m.logger.Info("edit cancelled", "edit_id", e.ID)
	return e, nil
}

// List returns a website's edits, newest first
func (m *Manager) List(ctx context.Context, websiteID string) ([]models.EditRecord, error) {
	edits, err := m.store.ListEdits(ctx, websiteID)
	if err != nil {
		return nil, asPersistence("list edits", err)
	}
	return edits, nil
}

// Get returns one edit
func (m *Manager) Get(ctx context.Context, id string) (*models.EditRecord, error) {
	return m.store.GetEdit(ctx, id)
}

func (m *Manager) pendingEdit(ctx context.Context, id string, next models.EditStatus) (*models.EditRecord, error) {
	e, err := m.store.GetEdit(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrEditNotPending
		}
		return nil, asPersistence("load edit", err)
	}
	if !e.Status.CanTransition(next) {
		return nil, models.ErrEditNotPending
	}
	return e, nil
}

func (m *Manager) push(ctx context.Context, site *models.Website, e *models.EditRecord) (*connector.Result, error) {
	if m.pusher == nil {
		return nil, &models.PushError{Provider: site.Platform, Reason: "no connector configured"}
	}
	return m.pusher.Push(ctx, site, e)
}

func (m *Manager) pushContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.pushTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.pushTimeout)
}

func describe(platform models.Platform, err error) (models.Platform, string) {
	var pe *models.PushError
	if errors.As(err, &pe) {
		return pe.Provider, pe.Reason
	}
	return platform, err.Error()
}

func asPersistence(op string, err error) error {
	var pe *models.PersistenceError
	if errors.As(err, &pe) || errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrValidation) {
		return err
	}
	return &models.PersistenceError{Op: op, Err: err}
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
