package sessioncookie

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/golinks/internal/domain/auth"
)

func testKey(b byte) []byte {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = b
	}
	return key
}

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec("v1", map[string][]byte{"v1": testKey(1)})
	require.NoError(t, err)
	return codec
}

func TestNewCodec_RejectsBadKeys(t *testing.T) {
	_, err := NewCodec("v1", nil)
	require.Error(t, err)

	_, err = NewCodec("v2", map[string][]byte{"v1": testKey(1)})
	require.Error(t, err)

	_, err = NewCodec("v1", map[string][]byte{"v1": []byte("short")})
	require.Error(t, err)
}

func TestCodec_SealOpenRoundtrip(t *testing.T) {
	codec := newTestCodec(t)

	sealed, err := codec.Seal("session", []byte(`{"id":"user-1"}`))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, "v1."))

	plain, err := codec.Open("session", sealed)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"user-1"}`, string(plain))
}

func TestCodec_OpenRejectsTampering(t *testing.T) {
	codec := newTestCodec(t)

	sealed, err := codec.Seal("session", []byte("payload"))
	require.NoError(t, err)

	// Flip a character in the middle of the ciphertext.
	tampered := []byte(sealed)
	mid := len(tampered) - 10
	if tampered[mid] == 'A' {
		tampered[mid] = 'B'
	} else {
		tampered[mid] = 'A'
	}

	_, err = codec.Open("session", string(tampered))
	require.ErrorIs(t, err, ErrInvalid)
}

func TestCodec_OpenRejectsWrongContext(t *testing.T) {
	// A value lifted from one cookie must not open under another cookie name.
	codec := newTestCodec(t)

	sealed, err := codec.Seal("session", []byte("payload"))
	require.NoError(t, err)

	_, err = codec.Open("login_state", sealed)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestCodec_OpenRejectsMalformedValues(t *testing.T) {
	codec := newTestCodec(t)

	for _, value := range []string{
		"",
		"no-dot",
		".missing-key",
		"v1.",
		"v1.!!!not-base64!!!",
		"v1.c2hvcnQ", // valid base64, too short for nonce+tag
		strings.Repeat("x", maxValueLen+1),
	} {
		_, err := codec.Open("session", value)
		assert.ErrorIs(t, err, ErrFormat, "value %q", value)
	}
}

func TestCodec_OpenRejectsUnknownKey(t *testing.T) {
	codec := newTestCodec(t)

	sealed, err := codec.Seal("session", []byte("payload"))
	require.NoError(t, err)

	other, err := NewCodec("v2", map[string][]byte{"v2": testKey(2)})
	require.NoError(t, err)

	_, err = other.Open("session", sealed)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestCodec_KeyRotation(t *testing.T) {
	// Values sealed under the old key stay readable once the new key takes
	// over sealing, as long as the old key remains in the accepted set.
	oldCodec, err := NewCodec("v1", map[string][]byte{"v1": testKey(1)})
	require.NoError(t, err)

	sealed, err := oldCodec.Seal("session", []byte("payload"))
	require.NoError(t, err)

	rotated, err := NewCodec("v2", map[string][]byte{
		"v1": testKey(1),
		"v2": testKey(2),
	})
	require.NoError(t, err)

	plain, err := rotated.Open("session", sealed)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(plain))

	resealed, err := rotated.Seal("session", []byte("payload"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resealed, "v2."))
}

func TestSessionCodec_Roundtrip(t *testing.T) {
	sessions := NewSessionCodec(newTestCodec(t), time.Hour)

	token, err := sessions.Encode(domainauth.Identity{ID: "user-1"})
	require.NoError(t, err)

	identity, err := sessions.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.ID)
}

func TestSessionCodec_RejectsExpired(t *testing.T) {
	sessions := NewSessionCodec(newTestCodec(t), time.Hour)

	token, err := sessions.Encode(domainauth.Identity{ID: "user-1"})
	require.NoError(t, err)

	sessions.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = sessions.Decode(token)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestSessionCodec_RejectsEmptyIdentity(t *testing.T) {
	sessions := NewSessionCodec(newTestCodec(t), time.Hour)

	token, err := sessions.Encode(domainauth.Identity{})
	require.NoError(t, err)

	_, err = sessions.Decode(token)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestSessionCodec_TTLSeconds(t *testing.T) {
	sessions := NewSessionCodec(newTestCodec(t), 12*time.Hour)
	assert.Equal(t, 43200, sessions.TTLSeconds())
}

func TestHandshakeCodec_Roundtrip(t *testing.T) {
	handshakes := NewHandshakeCodec(newTestCodec(t), 10*time.Minute)

	state := domainauth.HandshakeState{
		AuthURL: "https://idp.example.com/auth?state=abc",
		State:   "abc",
		Nonce:   "def",
	}
	token, err := handshakes.Encode(state)
	require.NoError(t, err)

	got, err := handshakes.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, state, got)
}

func TestHandshakeCodec_RejectsEmptyState(t *testing.T) {
	handshakes := NewHandshakeCodec(newTestCodec(t), 10*time.Minute)

	token, err := handshakes.Encode(domainauth.HandshakeState{AuthURL: "https://idp.example.com"})
	require.NoError(t, err)

	_, err = handshakes.Decode(token)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestHandshakeCodec_NotInterchangeableWithSession(t *testing.T) {
	codec := newTestCodec(t)
	sessions := NewSessionCodec(codec, time.Hour)
	handshakes := NewHandshakeCodec(codec, 10*time.Minute)

	token, err := handshakes.Encode(domainauth.HandshakeState{
		AuthURL: "https://idp.example.com",
		State:   "abc",
		Nonce:   "def",
	})
	require.NoError(t, err)

	_, err = sessions.Decode(token)
	require.Error(t, err)
}
