package backend

import "github.com/amosWeiskopf/seosmith/internal/models"

// AnalyzeRequest is the body of POST /analyze
type AnalyzeRequest struct {
	URL string `json:"url"`
}

// AnalyzeResponse is the result of POST /analyze
type AnalyzeResponse struct {
	URL          string                  `json:"url"`
	StatusCode   int                     `json:"status_code"`
	LoadTime     float64                 `json:"load_time"`
	OverallScore int                     `json:"overall_score"`
	Grade        string                  `json:"grade"`
	Scores       *models.Scores          `json:"scores"`
	Features     *models.FeatureSet      `json:"features"`
	Issues       []models.Issue          `json:"issues"`
	Suggestions  []models.Recommendation `json:"suggestions"`
}

// GenerateRequest is the body of POST /generate
type GenerateRequest struct {
	URL      string          `json:"url"`
	Platform models.Platform `json:"platform,omitempty"`
}

// GenerateResponse is the result of POST /generate
type GenerateResponse struct {
	Success          bool                                      `json:"success"`
	URL              string                                    `json:"url"`
	GeneratedContent *models.SuggestionBundle                  `json:"generated_content,omitempty"`
	FormattedContent *models.PlatformFormat                    `json:"formatted_content,omitempty"`
	PlatformFormats  map[models.Platform]models.PlatformFormat `json:"platform_formats,omitempty"`
	Error            string                                    `json:"error,omitempty"`
}

// PushAccount carries the credentials and location of the target site
type PushAccount struct {
	AccessToken string `json:"access_token,omitempty"`
	SiteURL     string `json:"site_url,omitempty"`
	StoreURL    string `json:"store_url,omitempty"`
	Repo        string `json:"repo,omitempty"`
}

// PushContent is the field set being pushed
type PushContent struct {
	Title           string `json:"title,omitempty"`
	MetaDescription string `json:"meta_description,omitempty"`
	H1              string `json:"h1,omitempty"`
	Keyword         string `json:"keyword,omitempty"`
}

// PushTarget identifies the page or post to update
type PushTarget struct {
	PageURL  string `json:"page_url,omitempty"`
	PostID   string `json:"post_id,omitempty"`
	FilePath string `json:"file_path,omitempty"`
	Type     string `json:"type,omitempty"`
	ID       string `json:"id,omitempty"`
}

// PushRequest is the body of POST /push
type PushRequest struct {
	Platform models.Platform `json:"platform"`
	Account  PushAccount     `json:"account"`
	Content  PushContent     `json:"content"`
	Target   PushTarget      `json:"target"`
}

// PushData describes the prepared platform call
type PushData struct {
	Status      string         `json:"status"`
	APIEndpoint string         `json:"api_endpoint"`
	Method      string         `json:"method"`
	Payload     map[string]any `json:"payload,omitempty"`
	Note        string         `json:"note,omitempty"`
}

// PushResponse is the result of POST /push
type PushResponse struct {
	Success  bool            `json:"success"`
	Platform models.Platform `json:"platform"`
	Message  string          `json:"message,omitempty"`
	PushData *PushData       `json:"push_data,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// HealthResponse is the result of GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// ErrorResponse is the body of any non-2xx reply
type ErrorResponse struct {
	Error string `json:"error"`
}
