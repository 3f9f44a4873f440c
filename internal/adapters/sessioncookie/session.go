package sessioncookie

import (
	"encoding/json"
	"time"

	domainauth "github.com/target/golinks/internal/domain/auth"
	"github.com/target/golinks/internal/ports"
)

var _ ports.SessionCodec = (*SessionCodec)(nil)

// Cookie names used across the HTTP layer.
const (
	SessionCookieName   = "session"
	HandshakeCookieName = "login_state"
)

// sessionPayload is the sealed session cookie body. Expiry lives inside the
// sealed value so a client cannot extend its own session by editing cookie
// attributes.
type sessionPayload struct {
	Identity  domainauth.Identity `json:"identity"`
	ExpiresAt int64               `json:"exp"`
}

// SessionCodec implements ports.SessionCodec on top of Codec.
type SessionCodec struct {
	codec *Codec
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionCodec builds a session codec. ttl bounds session lifetime.
func NewSessionCodec(codec *Codec, ttl time.Duration) *SessionCodec {
	return &SessionCodec{codec: codec, ttl: ttl, now: time.Now}
}

// Encode seals an identity into an opaque session token.
func (s *SessionCodec) Encode(identity domainauth.Identity) (string, error) {
	payload, err := json.Marshal(sessionPayload{
		Identity:  identity,
		ExpiresAt: s.now().Add(s.ttl).Unix(),
	})
	if err != nil {
		return "", err
	}
	return s.codec.Seal(SessionCookieName, payload)
}

// Decode opens a session token. Tampered, malformed, or expired tokens all
// return an error; absence of a valid identity is indistinguishable from
// "not logged in".
func (s *SessionCodec) Decode(value string) (domainauth.Identity, error) {
	plain, err := s.codec.Open(SessionCookieName, value)
	if err != nil {
		return domainauth.Identity{}, err
	}
	var payload sessionPayload
	if err := json.Unmarshal(plain, &payload); err != nil {
		return domainauth.Identity{}, ErrInvalid
	}
	if payload.Identity.ID == "" || s.now().Unix() >= payload.ExpiresAt {
		return domainauth.Identity{}, ErrInvalid
	}
	return payload.Identity, nil
}

// TTLSeconds returns the session lifetime as a cookie Max-Age value.
func (s *SessionCodec) TTLSeconds() int {
	return int(s.ttl.Seconds())
}

// HandshakeCodec seals the ephemeral login handshake state. The state is
// single-use: the callback handler deletes the cookie on first read, before
// verification, which is what prevents code/nonce replay.
type HandshakeCodec struct {
	codec *Codec
	ttl   time.Duration
}

// NewHandshakeCodec builds a handshake-state codec.
func NewHandshakeCodec(codec *Codec, ttl time.Duration) *HandshakeCodec {
	return &HandshakeCodec{codec: codec, ttl: ttl}
}

// Encode seals a handshake state.
func (h *HandshakeCodec) Encode(state domainauth.HandshakeState) (string, error) {
	payload, err := json.Marshal(state)
	if err != nil {
		return "", err
	}
	return h.codec.Seal(HandshakeCookieName, payload)
}

// Decode opens a handshake state.
func (h *HandshakeCodec) Decode(value string) (domainauth.HandshakeState, error) {
	plain, err := h.codec.Open(HandshakeCookieName, value)
	if err != nil {
		return domainauth.HandshakeState{}, err
	}
	var state domainauth.HandshakeState
	if err := json.Unmarshal(plain, &state); err != nil {
		return domainauth.HandshakeState{}, ErrInvalid
	}
	if state.State == "" || state.Nonce == "" {
		return domainauth.HandshakeState{}, ErrInvalid
	}
	return state, nil
}

// TTLSeconds returns the handshake lifetime as a cookie Max-Age value.
func (h *HandshakeCodec) TTLSeconds() int {
	return int(h.ttl.Seconds())
}
