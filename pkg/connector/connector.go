package connector

import (
	"context"
	"errors"
	"log/slog"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/backend"
)

// AccountLookup finds the connected account a user holds for a platform
type AccountLookup interface {
	GetAccount(ctx context.Context, userID string, platform models.Platform) (*models.ConnectedAccount, error)
}

// Pusher sends a prepared push request, typically backend.Client
type Pusher interface {
	Push(ctx context.Context, req backend.PushRequest) (*backend.PushResponse, error)
}

// Result describes a push the backend accepted
type Result struct {
	Provider models.Platform
	Endpoint string
	Note     string
}

// Connector turns an edit into one push attempt. Every failure comes back
// as a *models.PushError naming the provider and reason.
type Connector struct {
	accounts AccountLookup
	pusher   Pusher
	logger   *slog.Logger
}

// New creates a Connector. A nil pusher makes every push fail.
func New(accounts AccountLookup, pusher Pusher, logger *slog.Logger) *Connector {
	return &Connector{
		accounts: accounts,
		pusher:   pusher,
		logger:   logger.With("component", "connector"),
	}
}

// Push sends the edit's new value to the website's platform
func (c *Connector) Push(ctx context.Context, site *models.Website, edit *models.EditRecord) (*Result, error) {
	provider := site.Platform
	if !Pushable(provider) {
		return nil, &models.PushError{Provider: provider, Reason: "unsupported provider"}
	}

	account, err := c.accounts.GetAccount(ctx, edit.UserID, provider)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, &models.PushError{Provider: provider, Reason: "no connected account", Err: err}
		}
		return nil, &models.PushError{Provider: provider, Reason: "account lookup failed", Err: err}
	}
	if c.pusher == nil {
		return nil, &models.PushError{Provider: provider, Reason: "no push backend configured"}
	}

	resp, err := c.pusher.Push(ctx, BuildRequest(site, account, edit))
	if err != nil {
		reason := "network error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timed out"
		}
		return nil, &models.PushError{Provider: provider, Reason: reason, Err: err}
	}
	if !resp.Success {
		reason := resp.Error
		if reason == "" {
			reason = "backend reported failure"
		}
		return nil, &models.PushError{Provider: provider, Reason: reason}
	}

	result := &Result{Provider: provider, Note: resp.Message}
	if resp.PushData != nil {
		result.Endpoint = resp.PushData.APIEndpoint
		if resp.PushData.Note != "" {
			result.Note = resp.PushData.Note
		}
	}
	c.logger.Info("edit pushed", "edit_id", edit.ID, "provider", provider, "endpoint", result.Endpoint)
	return result, nil
}

// Pushable reports whether edits can be pushed to platform
func Pushable(platform models.Platform) bool {
	switch platform {
	case models.PlatformWordPress, models.PlatformShopify, models.PlatformGitHub:
		return true
	}
	return false
}

// BuildRequest maps an edit and account onto the push contract
func BuildRequest(site *models.Website, account *models.ConnectedAccount, edit *models.EditRecord) backend.PushRequest {
	req := backend.PushRequest{
		Platform: site.Platform,
		Account: backend.PushAccount{
			AccessToken: account.AccessToken,
			SiteURL:     account.SiteURL,
			StoreURL:    account.StoreURL,
			Repo:        account.Repo,
		},
		Target: backend.PushTarget{PageURL: site.URL},
	}
	switch edit.FieldType {
	case models.FieldTitle:
		req.Content.Title = edit.NewValue
	case models.FieldMetaDescription:
		req.Content.MetaDescription = edit.NewValue
	case models.FieldH1:
		req.Content.H1 = edit.NewValue
	case models.FieldKeywords:
		req.Content.Keyword = edit.NewValue
	}
	return req
}
