package utils

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/amosWeiskopf/seosmith/internal/models"
)

// NormalizeURL trims the input, adds an https scheme when none is given and
// lowercases the host. It rejects anything without a usable http(s) host.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", models.NewValidationError("url", "URL is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + strings.TrimPrefix(raw, "//")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", models.NewValidationError("url", fmt.Sprintf("invalid URL: %v", err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", models.NewValidationError("url", fmt.Sprintf("unsupported scheme %q", u.Scheme))
	}
	if u.Hostname() == "" || strings.ContainsAny(u.Hostname(), " \t") {
		return "", models.NewValidationError("url", "URL has no host")
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	return u.String(), nil
}

// GetDomainFromURL extracts the lowercase host name from a URL
func GetDomainFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		u, err = url.Parse("https://" + raw)
		if err != nil {
			return ""
		}
	}
	return strings.ToLower(u.Hostname())
}

// IsExternalHref reports whether an href points off-page: an absolute URL
// with a scheme or a protocol-relative reference.
func IsExternalHref(href string) bool {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		return true
	}
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	return u.IsAbs()
}

// BrandFromDomain derives a display brand from the registrable domain label
func BrandFromDomain(domain string) string {
	host := strings.TrimPrefix(strings.ToLower(domain), "www.")
	if host == "" {
		return ""
	}
	if net.ParseIP(host) != nil {
		return host
	}

	label := host
	if root, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		label = root
	}
	if suffix, _ := publicsuffix.PublicSuffix(label); suffix != "" && suffix != label {
		label = strings.TrimSuffix(label, "."+suffix)
	}
	label = strings.NewReplacer("-", " ", "_", " ").Replace(label)
	return TitleCase(label)
}
