package sessioncookie

// Package sessioncookie seals authenticated identity and ephemeral login
// state into opaque, tamper-proof cookie values. No server-side session
// store exists; everything round-trips through the client.

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

var (
	// ErrFormat reports a cookie value that is not structurally a sealed token.
	ErrFormat = errors.New("invalid cookie format")
	// ErrInvalid reports a sealed token that failed to open (forged, truncated,
	// or sealed under an unknown key).
	ErrInvalid = errors.New("invalid cookie")
)

// maxValueLen bounds the amount of attacker-controlled data we will decode.
// Browsers cap individual cookie values around 4KB; we enforce our own limit.
const maxValueLen = 8192

// KeySize is the required key length in bytes.
const KeySize = chacha20poly1305.KeySize

// Codec seals and opens cookie values with XChaCha20-Poly1305.
//
// Format: keyID "." base64url(nonce || sealed). Keys holds every accepted
// key; KeyID selects the one used for sealing, so keys can rotate without
// invalidating cookies sealed under an older key.
type Codec struct {
	keyID string
	keys  map[string][]byte
}

// NewCodec validates the key material and builds a codec.
func NewCodec(keyID string, keys map[string][]byte) (*Codec, error) {
	if len(keys) == 0 {
		return nil, errors.New("at least one key is required")
	}
	if _, ok := keys[keyID]; !ok {
		return nil, fmt.Errorf("sealing key %q not present in key set", keyID)
	}
	for id, k := range keys {
		if len(k) != KeySize {
			return nil, fmt.Errorf("key %q must be %d bytes, got %d", id, KeySize, len(k))
		}
	}
	return &Codec{keyID: keyID, keys: keys}, nil
}

// Seal encrypts plain under the current key. The aad binds the value to its
// context (the cookie name), so a value lifted from one cookie cannot be
// replayed in another.
func (c *Codec) Seal(aad string, plain []byte) (string, error) {
	aead, err := chacha20poly1305.NewX(c.keys[c.keyID])
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, plain, []byte(aad))
	return c.keyID + "." + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal. All failure modes collapse into
// ErrFormat/ErrInvalid; callers treat either as "no value present".
func (c *Codec) Open(aad, value string) ([]byte, error) {
	if len(value) == 0 || len(value) > maxValueLen {
		return nil, ErrFormat
	}
	keyID, encoded, ok := strings.Cut(value, ".")
	if !ok || keyID == "" || encoded == "" {
		return nil, ErrFormat
	}
	key, ok := c.keys[keyID]
	if !ok {
		return nil, ErrInvalid
	}

	sealed, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrFormat
	}

	var aead cipher.AEAD
	if aead, err = chacha20poly1305.NewX(key); err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrFormat
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, []byte(aad))
	if err != nil {
		return nil, ErrInvalid
	}
	return plain, nil
}
