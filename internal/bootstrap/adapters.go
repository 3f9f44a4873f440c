package bootstrap

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/target/golinks/config"
	"github.com/target/golinks/internal/adapters/oidc"
	"github.com/target/golinks/internal/adapters/sessioncookie"
)

// SessionCodecs bundles the two cookie codecs built from one key set.
type SessionCodecs struct {
	Sessions   *sessioncookie.SessionCodec
	Handshakes *sessioncookie.HandshakeCodec
}

// NewSessionCodecs decodes the configured hex keys and builds the session and
// handshake cookie codecs.
func NewSessionCodecs(cfg config.SessionConfig) (SessionCodecs, error) {
	keys := make(map[string][]byte, len(cfg.Keys))
	for id, hexKey := range cfg.Keys {
		key, err := hex.DecodeString(hexKey)
		if err != nil {
			return SessionCodecs{}, fmt.Errorf("decode session key %q: %w", id, err)
		}
		keys[id] = key
	}

	codec, err := sessioncookie.NewCodec(cfg.KeyID, keys)
	if err != nil {
		return SessionCodecs{}, fmt.Errorf("build cookie codec: %w", err)
	}

	return SessionCodecs{
		Sessions:   sessioncookie.NewSessionCodec(codec, cfg.TTL),
		Handshakes: sessioncookie.NewHandshakeCodec(codec, cfg.HandshakeTTL),
	}, nil
}

// NewOIDCProvider runs provider discovery and builds the OIDC adapter.
// Discovery failure is fatal: the service is useless without its identity
// provider, so the process should not come up half-working.
func NewOIDCProvider(ctx context.Context, cfg *config.AppConfig) (*oidc.Provider, error) {
	redirectURL := cfg.Auth.OAuth.RedirectURL
	if redirectURL == "" {
		redirectURL = cfg.HTTP.CallbackURL()
	}

	provider, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
		ClientID:     cfg.Auth.OAuth.ClientID,
		ClientSecret: cfg.Auth.OAuth.ClientSecret,
		RedirectURL:  redirectURL,
		Scope:        cfg.Auth.OAuth.Scope,
		IssuerURL:    cfg.Auth.OAuth.IssuerURL,
	})
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}
	return provider, nil
}
