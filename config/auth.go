package config

import "time"

// OAuthConfig contains OIDC client configuration.
//
// IssuerURL is the OIDC provider issuer (discovery happens against
// <issuer>/.well-known/openid-configuration at startup and is fatal when it
// fails). RedirectURL defaults to the public base URL plus /callback; leave it
// empty to derive it from APP_BASE_URL.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	IssuerURL    string `env:"ISSUER_URL"`
	RedirectURL  string `env:"REDIRECT_URL"`
	Scope        string `env:"SCOPE"        envDefault:"openid"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	OAuth OAuthConfig `envPrefix:"OAUTH_"`
}

// SessionConfig configures the encrypted session and handshake-state cookies.
//
// Keys is a keyID=hexkey map; KeyID selects the key used for sealing while
// all listed keys are accepted for opening, allowing rotation without
// invalidating live sessions. Each key is 32 bytes, hex encoded.
type SessionConfig struct {
	KeyID string            `env:"KEY_ID" envDefault:"v1"`
	Keys  map[string]string `env:"KEYS"`

	// TTL is the lifetime of the session cookie.
	TTL time.Duration `env:"TTL" envDefault:"12h"`

	// HandshakeTTL is the lifetime of the ephemeral login-state cookie.
	HandshakeTTL time.Duration `env:"HANDSHAKE_TTL" envDefault:"10m"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.TTL <= 0 {
		s.TTL = 12 * time.Hour
	}
	if s.HandshakeTTL <= 0 {
		s.HandshakeTTL = 10 * time.Minute
	}
}
