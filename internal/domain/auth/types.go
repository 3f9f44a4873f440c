package auth

// Package auth contains domain-level types for authentication.
// It is pure and free of framework/adapter concerns.

// Identity represents the authenticated principal returned by the IdP.
// ID is the provider-asserted stable subject identifier; it is the only
// claim this service needs, and it is immutable for the life of a session.
type Identity struct {
	ID string `json:"id"`
}

// HandshakeState binds one login attempt to its provider redirect.
// It is created when a login is initiated, round-trips through the client
// in an encrypted cookie, and is consumed (deleted) when the callback is
// processed, regardless of outcome.
type HandshakeState struct {
	AuthURL string `json:"auth_url"`
	State   string `json:"state"`
	Nonce   string `json:"nonce"`
}
