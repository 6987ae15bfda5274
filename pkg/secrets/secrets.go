package secrets

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	dErrors "custodian/pkg/domain-errors"
)

// KeySize is the data key length accepted for at-rest encryption.
const KeySize = chacha20poly1305.KeySize

// Generate creates a random data key.
// Returns a base64-encoded string suitable for security.encryption_key.
func Generate() (string, error) {
	buf := make([]byte, KeySize)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate key")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ParseKey decodes a base64 key in standard or URL encoding, padded or not.
func ParseKey(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "key cannot be empty")
	}
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if key, err := enc.DecodeString(encoded); err == nil {
			return key, nil
		}
	}
	return nil, dErrors.New(dErrors.CodeValidation, "key is not valid base64")
}

// Probe proves key can encrypt by sealing and opening a random message.
func Probe(key []byte) error {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "key is not a usable data key")
	}
	nonce := make([]byte, aead.NonceSize())
	msg := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not generate nonce")
	}
	if _, err := rand.Read(msg); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not generate probe message")
	}
	sealed := aead.Seal(nil, nonce, msg, nil)
	opened, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "sealed probe did not open")
	}
	if !bytes.Equal(opened, msg) {
		return dErrors.New(dErrors.CodeInternal, "sealed probe round-trip mismatch")
	}
	return nil
}
