package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/backend"
	"github.com/amosWeiskopf/seosmith/pkg/connector"
	"github.com/amosWeiskopf/seosmith/pkg/edits"
	"github.com/amosWeiskopf/seosmith/pkg/pipeline"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, backend.HealthResponse{
		Status:  "healthy",
		Service: serviceName,
		Version: s.version,
	})
}

// Backend contract

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var body backend.AnalyzeRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, "decoding analyze body", err)
		return
	}

	res, err := s.service.Analyze(r.Context(), pipeline.Request{URL: body.URL})
	if err != nil {
		s.fail(w, r, "analyzing url", err)
		return
	}
	writeJSON(w, http.StatusOK, toAnalyzeResponse(res.Analysis))
}

func toAnalyzeResponse(a *models.Analysis) backend.AnalyzeResponse {
	scores := a.Score.Scores
	features := a.Features
	return backend.AnalyzeResponse{
		URL:          a.URL,
		StatusCode:   a.Features.StatusCode,
		LoadTime:     a.Features.LoadTime,
		OverallScore: a.Score.Overall,
		Grade:        a.Score.Grade,
		Scores:       &scores,
		Features:     &features,
		Issues:       a.Issues,
		Suggestions:  a.Recommendations,
	}
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body backend.GenerateRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, "decoding generate body", err)
		return
	}

	g, err := s.service.Generate(r.Context(), body.URL, body.Platform)
	if err != nil {
		s.fail(w, r, "generating content", err)
		return
	}
	bundle := g.Suggestions
	writeJSON(w, http.StatusOK, backend.GenerateResponse{
		Success:          true,
		URL:              g.URL,
		GeneratedContent: &bundle,
		FormattedContent: g.Formatted,
		PlatformFormats:  g.Formats,
	})
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	var body backend.PushRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, "decoding push body", err)
		return
	}

	data, err := connector.Prepare(body)
	if err != nil {
		s.fail(w, r, "preparing push", err)
		return
	}
	writeJSON(w, http.StatusOK, backend.PushResponse{
		Success:  true,
		Platform: body.Platform,
		Message:  fmt.Sprintf("Content formatted and prepared for %s", body.Platform),
		PushData: data,
	})
}

// Accounts

func (s *Server) handleSaveAccount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID      string          `json:"user_id"`
		Platform    models.Platform `json:"platform"`
		AccessToken string          `json:"access_token"`
		SiteURL     string          `json:"site_url"`
		StoreURL    string          `json:"store_url"`
		Repo        string          `json:"repo"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, "decoding account body", err)
		return
	}

	a := &models.ConnectedAccount{
		UserID:      body.UserID,
		Platform:    models.Platform(strings.ToLower(string(body.Platform))),
		AccessToken: body.AccessToken,
		SiteURL:     body.SiteURL,
		StoreURL:    body.StoreURL,
		Repo:        body.Repo,
	}
	if err := s.store.SaveAccount(r.Context(), a); err != nil {
		s.fail(w, r, "saving account", err)
		return
	}
	s.logger.Info("saved account", "user_id", a.UserID, "platform", a.Platform)
	writeJSON(w, http.StatusCreated, a)
}

// Websites

func (s *Server) handleCreateWebsite(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID   string          `json:"user_id"`
		URL      string          `json:"url"`
		Platform models.Platform `json:"platform"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, "decoding website body", err)
		return
	}

	site := &models.Website{
		UserID:   body.UserID,
		URL:      body.URL,
		Platform: models.Platform(strings.ToLower(string(body.Platform))),
	}
	if err := s.store.CreateWebsite(r.Context(), site); err != nil {
		s.fail(w, r, "creating website", err)
		return
	}
	s.logger.Info("created website", "website_id", site.ID, "url", site.URL)
	writeJSON(w, http.StatusCreated, site)
}

func (s *Server) handleListWebsites(w http.ResponseWriter, r *http.Request) {
	sites, err := s.store.ListWebsites(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		s.fail(w, r, "listing websites", err)
		return
	}
	writeJSON(w, http.StatusOK, sites)
}

func (s *Server) handleGetWebsite(w http.ResponseWriter, r *http.Request) {
	site, err := s.store.GetWebsite(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "loading website", err)
		return
	}
	writeJSON(w, http.StatusOK, site)
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.GetWebsite(r.Context(), id); err != nil {
		s.fail(w, r, "loading website", err)
		return
	}
	analyses, err := s.store.ListAnalyses(r.Context(), id, 0)
	if err != nil {
		s.fail(w, r, "listing analyses", err)
		return
	}
	writeJSON(w, http.StatusOK, analyses)
}

func (s *Server) handleAnalyzeWebsite(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Platform models.Platform `json:"platform"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &body); err != nil {
			s.fail(w, r, "decoding analyze body", err)
			return
		}
	}

	res, err := s.service.Analyze(r.Context(), pipeline.Request{
		WebsiteID: chi.URLParam(r, "id"),
		Platform:  body.Platform,
	})
	if err != nil {
		s.fail(w, r, "analyzing website", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Edits

func (s *Server) handleListEdits(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.GetWebsite(r.Context(), id); err != nil {
		s.fail(w, r, "loading website", err)
		return
	}
	list, err := s.edits.List(r.Context(), id)
	if err != nil {
		s.fail(w, r, "listing edits", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleCreateEdit takes either an explicit new_value or the index of a
// suggestion variant from the website's latest analysis.
func (s *Server) handleCreateEdit(w http.ResponseWriter, r *http.Request) {
	websiteID := chi.URLParam(r, "id")
	var body struct {
		FieldType models.FieldType `json:"field_type"`
		OldValue  string           `json:"old_value"`
		NewValue  string           `json:"new_value"`
		Variant   *int             `json:"variant"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, "decoding edit body", err)
		return
	}

	var (
		e   *models.EditRecord
		err error
	)
	if body.Variant != nil && body.NewValue == "" {
		e, err = s.createFromLatest(r, websiteID, body.FieldType, *body.Variant)
	} else {
		e, err = s.edits.Create(r.Context(), websiteID, body.FieldType, body.OldValue, body.NewValue)
	}
	if err != nil {
		s.fail(w, r, "creating edit", err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) createFromLatest(r *http.Request, websiteID string, field models.FieldType, variant int) (*models.EditRecord, error) {
	if _, err := s.store.GetWebsite(r.Context(), websiteID); err != nil {
		return nil, err
	}
	latest, err := s.store.ListAnalyses(r.Context(), websiteID, 1)
	if err != nil {
		return nil, err
	}
	if len(latest) == 0 {
		return nil, models.NewValidationError("variant", "website has no analysis to take suggestions from")
	}
	return s.edits.CreateFromSuggestion(r.Context(), websiteID, field, latest[0].Suggestions, variant)
}

func (s *Server) handleGetEdit(w http.ResponseWriter, r *http.Request) {
	e, err := s.edits.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "loading edit", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handlePreviewEdit(w http.ResponseWriter, r *http.Request) {
	e, err := s.edits.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "loading edit", err)
		return
	}
	writeJSON(w, http.StatusOK, edits.PreviewEdit(e))
}

func (s *Server) handleApplyEdit(w http.ResponseWriter, r *http.Request) {
	res, err := s.edits.Apply(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "applying edit", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCancelEdit(w http.ResponseWriter, r *http.Request) {
	e, err := s.edits.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "cancelling edit", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}
