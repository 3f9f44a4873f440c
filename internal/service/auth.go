package service

import (
	"context"
	"fmt"
	"log/slog"

	domainauth "github.com/target/golinks/internal/domain/auth"
	"github.com/target/golinks/internal/ports"
)

// AuthService orchestrates the single-sign-on handshake against the identity
// provider. CSRF state comparison stays with the HTTP layer, which holds both
// halves of the state; this service owns the provider round trips.
type AuthService struct {
	provider ports.AuthProvider
	logger   *slog.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(provider ports.AuthProvider, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{provider: provider, logger: logger}
}

// BeginLogin starts a handshake: fresh state and nonce plus the provider
// authorization URL they are bound into.
func (s *AuthService) BeginLogin(ctx context.Context) (domainauth.HandshakeState, error) {
	hs, err := s.provider.Begin(ctx)
	if err != nil {
		return domainauth.HandshakeState{}, fmt.Errorf("begin login: %w", err)
	}
	return hs, nil
}

// CompleteLoginInput carries the callback code and the nonce recovered from
// the handshake cookie.
type CompleteLoginInput struct {
	Code  string
	Nonce string
}

// CompleteLogin redeems the authorization code and verifies the identity
// token, including its nonce binding, returning the authenticated identity.
func (s *AuthService) CompleteLogin(ctx context.Context, in CompleteLoginInput) (domainauth.Identity, error) {
	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{Code: in.Code, Nonce: in.Nonce})
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("complete login: %w", err)
	}
	s.logger.InfoContext(ctx, "login completed", "user_id", identity.ID)
	return identity, nil
}
