package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/target/golinks/internal/domain/auth"
)

// AuthProvider initiates and completes an authentication flow against an IdP.
//
// The provider is stateless: the HandshakeState returned by Begin round-trips
// through the client (as an encrypted cookie) and is handed back to Exchange.
// Replay prevention is the caller's job, by deleting the cookie on first read.
type AuthProvider interface {
	// Begin starts the login flow, generating a fresh CSRF state and nonce
	// and the provider authorization URL embedding both.
	Begin(ctx context.Context) (domainauth.HandshakeState, error)

	// Exchange completes the login flow: it swaps the authorization code for
	// tokens, requires an ID token, verifies its signature, and checks the
	// embedded nonce against the handshake state. Any failure is an error;
	// callers treat it as a rejected login, never as fatal.
	//
	// The CSRF state must have been compared against the callback query by
	// the caller before Exchange is reached.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	Nonce string
}

// SessionCodec seals and opens the opaque session cookie value.
// Decode failures of any kind (tampered, expired, malformed) are reported
// as an error and are indistinguishable from "not logged in".
type SessionCodec interface {
	Encode(identity domainauth.Identity) (string, error)
	Decode(value string) (domainauth.Identity, error)
}
