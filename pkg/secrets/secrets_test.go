package secrets

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "custodian/pkg/domain-errors"
)

func TestGenerateAndProbe(t *testing.T) {
	encoded, err := Generate()
	require.NoError(t, err)

	key, err := ParseKey(encoded)
	require.NoError(t, err)
	assert.Len(t, key, KeySize)
	assert.NoError(t, Probe(key))

	other, err := Generate()
	require.NoError(t, err)
	assert.NotEqual(t, encoded, other)
}

func TestParseKeyEncodings(t *testing.T) {
	raw := make([]byte, KeySize)
	for i := range raw {
		raw[i] = byte(250 - i)
	}
	for name, enc := range map[string]*base64.Encoding{
		"std":     base64.StdEncoding,
		"raw std": base64.RawStdEncoding,
		"url":     base64.URLEncoding,
		"raw url": base64.RawURLEncoding,
	} {
		t.Run(name, func(t *testing.T) {
			got, err := ParseKey(enc.EncodeToString(raw))
			require.NoError(t, err)
			assert.Equal(t, raw, got)
		})
	}

	_, err := ParseKey("  ")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	_, err = ParseKey("not base64!")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestProbeRejectsShortKey(t *testing.T) {
	err := Probe(make([]byte, 16))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
