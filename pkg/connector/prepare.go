package connector

import (
	"fmt"
	"html"
	"strings"

	"github.com/amosWeiskopf/seosmith/internal/models"
	"github.com/amosWeiskopf/seosmith/pkg/backend"
)

const shopifyAPIVersion = "2024-01"

// Prepare builds the platform API call for a push request without sending
// it. Real platform calls are not made; the note says so.
func Prepare(req backend.PushRequest) (*backend.PushData, error) {
	if req.Content == (backend.PushContent{}) {
		return nil, models.NewValidationError("content", "content is required")
	}

	switch req.Platform {
	case models.PlatformWordPress:
		return prepareWordPress(req), nil
	case models.PlatformShopify:
		return prepareShopify(req), nil
	case models.PlatformGitHub:
		return prepareGitHub(req), nil
	case "":
		return nil, models.NewValidationError("platform", "platform is required")
	}
	return nil, models.NewValidationError("platform", fmt.Sprintf("unknown platform: %s", req.Platform))
}

func prepareWordPress(req backend.PushRequest) *backend.PushData {
	site := strings.TrimRight(req.Account.SiteURL, "/")
	return &backend.PushData{
		Status:      "prepared",
		APIEndpoint: fmt.Sprintf("%s/wp-json/wp/v2/posts/%s", site, req.Target.PostID),
		Method:      "PUT",
		Payload: map[string]any{
			"title":   req.Content.Title,
			"excerpt": req.Content.MetaDescription,
			"meta": map[string]any{
				"_yoast_wpseo_title":    req.Content.Title,
				"_yoast_wpseo_metadesc": req.Content.MetaDescription,
			},
		},
		Note: demoNote(models.PlatformWordPress, "credentials"),
	}
}

func prepareShopify(req backend.PushRequest) *backend.PushData {
	store := strings.TrimRight(req.Account.StoreURL, "/")
	resource := req.Target.Type
	if resource == "" {
		resource = "page"
	}

	var fields []map[string]any
	if req.Content.Title != "" {
		fields = append(fields, map[string]any{
			"namespace": "global", "key": "title_tag", "value": req.Content.Title, "type": "single_line_text_field",
		})
	}
	if req.Content.MetaDescription != "" {
		fields = append(fields, map[string]any{
			"namespace": "global", "key": "description_tag", "value": req.Content.MetaDescription, "type": "multi_line_text_field",
		})
	}

	return &backend.PushData{
		Status:      "prepared",
		APIEndpoint: fmt.Sprintf("%s/admin/api/%s/%ss/%s.json", store, shopifyAPIVersion, resource, req.Target.ID),
		Method:      "PUT",
		Payload: map[string]any{
			resource: map[string]any{"metafields": fields},
		},
		Note: demoNote(models.PlatformShopify, "credentials"),
	}
}

func prepareGitHub(req backend.PushRequest) *backend.PushData {
	path := req.Target.FilePath
	if path == "" {
		path = "index.html"
	}

	var b strings.Builder
	b.WriteString("<!-- SEO meta tags -->\n")
	if t := req.Content.Title; t != "" {
		fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(t))
		fmt.Fprintf(&b, "<meta property=\"og:title\" content=\"%s\">\n", html.EscapeString(t))
	}
	if d := req.Content.MetaDescription; d != "" {
		fmt.Fprintf(&b, "<meta name=\"description\" content=\"%s\">\n", html.EscapeString(d))
		fmt.Fprintf(&b, "<meta property=\"og:description\" content=\"%s\">\n", html.EscapeString(d))
	}

	return &backend.PushData{
		Status:      "prepared",
		APIEndpoint: fmt.Sprintf("https://api.github.com/repos/%s/contents/%s", req.Account.Repo, path),
		Method:      "PUT",
		Payload:     map[string]any{"seo_meta_tags": b.String()},
		Note:        demoNote(models.PlatformGitHub, "token"),
	}
}

func demoNote(p models.Platform, credential string) string {
	return fmt.Sprintf("Demo mode - actual push requires valid %s %s", p.DisplayName(), credential)
}
