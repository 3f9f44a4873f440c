package config

import "strings"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the public base URL of the service (e.g. "https://go.example.com").
	// Used both as the OIDC redirect URI base and to compose returned short URLs.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	h.BaseURL = strings.TrimSuffix(h.BaseURL, "/")
	if h.Addr == "" {
		h.Addr = ":8080"
	}
}

// ShortURL composes the public short URL for a registered name.
func (h *HTTPConfig) ShortURL(name string) string {
	return h.BaseURL + "/" + name
}

// CallbackURL returns the OIDC redirect URI derived from the base URL.
func (h *HTTPConfig) CallbackURL() string {
	return h.BaseURL + "/callback"
}
