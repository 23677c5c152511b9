package models

import (
	"fmt"
	"strings"
	"time"
)

// EditStatus is the lifecycle state of an EditRecord
type EditStatus string

const (
	EditPending   EditStatus = "pending"
	EditApplied   EditStatus = "applied"
	EditCancelled EditStatus = "cancelled"
)

// Terminal reports whether no further transition is possible
func (s EditStatus) Terminal() bool {
	return s == EditApplied || s == EditCancelled
}

// Valid reports whether s is a known status
func (s EditStatus) Valid() bool {
	switch s {
	case EditPending, EditApplied, EditCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an edit may move from s to next.
// Only pending edits move, and only to applied or cancelled.
func (s EditStatus) CanTransition(next EditStatus) bool {
	return s == EditPending && (next == EditApplied || next == EditCancelled)
}

// FieldType names the page field an edit targets
type FieldType string

const (
	FieldTitle           FieldType = "title"
	FieldMetaDescription FieldType = "meta_description"
	FieldH1              FieldType = "h1"
	FieldKeywords        FieldType = "keywords"
)

// ParseFieldType validates a raw field name
func ParseFieldType(s string) (FieldType, error) {
	switch f := FieldType(strings.ToLower(strings.TrimSpace(s))); f {
	case FieldTitle, FieldMetaDescription, FieldH1, FieldKeywords:
		return f, nil
	}
	return "", NewValidationError("field_type", fmt.Sprintf("unknown field type %q", s))
}

// Label returns the human readable field name used in messages
func (f FieldType) Label() string {
	switch f {
	case FieldTitle:
		return "Title"
	case FieldMetaDescription:
		return "Meta description"
	case FieldH1:
		return "H1"
	case FieldKeywords:
		return "Keywords"
	}
	return string(f)
}

// EditRecord is a tracked proposed change to one page field
type EditRecord struct {
	ID        string     `json:"id"`
	WebsiteID string     `json:"website_id"`
	UserID    string     `json:"user_id"`
	FieldType FieldType  `json:"field_type"`
	OldValue  string     `json:"old_value"`
	NewValue  string     `json:"new_value"`
	Status    EditStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	AppliedAt *time.Time `json:"applied_at,omitempty"`
	Simulated bool       `json:"simulated"`
	PushNote  string     `json:"push_note,omitempty"`
}

// Website is a user's tracked site
type Website struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	URL            string     `json:"url"`
	Platform       Platform   `json:"platform"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAnalyzedAt *time.Time `json:"last_analyzed_at,omitempty"`
}

// ConnectedAccount holds credentials used to parameterize a push
type ConnectedAccount struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"`
	Platform    Platform `json:"platform"`
	AccessToken string   `json:"-"`
	SiteURL     string   `json:"site_url,omitempty"`
	StoreURL    string   `json:"store_url,omitempty"`
	Repo        string   `json:"repo,omitempty"`
}
