// Package urlutils provides URL and common helper functions.
package urlutils

import (
	"net/url"
	"strings"
)

// IsValidURL checks if a URL is absolute (scheme and host present)
func IsValidURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// ResolveURL resolves a relative URL against a base URL
// If the URL is already absolute, it returns it unchanged
func ResolveURL(baseURL, relativeURL string) (string, error) {
	rel, err := url.Parse(relativeURL)
	if err != nil {
		return "", err
	}

	if rel.IsAbs() {
		return relativeURL, nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}

	return base.ResolveReference(rel).String(), nil
}

// SameOrigin reports whether both URLs share scheme and host.
// Hosts compare case-insensitively and default ports are ignored.
func SameOrigin(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil || ua.Scheme == "" || ua.Host == "" {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil || ub.Scheme == "" || ub.Host == "" {
		return false
	}

	return strings.EqualFold(ua.Scheme, ub.Scheme) && origin(ua) == origin(ub)
}

func origin(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	port := u.Port()

	switch {
	case port == "",
		port == "80" && strings.EqualFold(u.Scheme, "http"),
		port == "443" && strings.EqualFold(u.Scheme, "https"):
		return host
	default:
		return host + ":" + port
	}
}
