package signals

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodian/internal/dsr"
	"custodian/internal/platform/config"
	"custodian/pkg/secrets"
)

func TestEncryptionKeyProbe(t *testing.T) {
	ctx := context.Background()
	key, err := secrets.Generate()
	require.NoError(t, err)

	t.Run("usable key", func(t *testing.T) {
		s := New(config.Security{EncryptionKey: key}, nil)
		on, err := s.EncryptionAtRest(ctx)
		require.NoError(t, err)
		assert.True(t, on)
		bits, err := s.EncryptionKeyBits(ctx)
		require.NoError(t, err)
		assert.Equal(t, 256, bits)
	})

	t.Run("no key", func(t *testing.T) {
		s := New(config.Security{}, nil)
		on, err := s.EncryptionAtRest(ctx)
		require.NoError(t, err)
		assert.False(t, on)
		bits, _ := s.EncryptionKeyBits(ctx)
		assert.Zero(t, bits)
	})

	t.Run("short key", func(t *testing.T) {
		s := New(config.Security{EncryptionKey: "c2hvcnQta2V5LTEyMzQ1Ng"}, nil)
		on, err := s.EncryptionAtRest(ctx)
		require.NoError(t, err)
		assert.False(t, on)
		bits, _ := s.EncryptionKeyBits(ctx)
		assert.Equal(t, 128, bits)
	})

	t.Run("not base64", func(t *testing.T) {
		s := New(config.Security{EncryptionKey: "%%%"}, nil)
		on, _ := s.EncryptionAtRest(ctx)
		assert.False(t, on)
	})
}

func TestRoleGrants(t *testing.T) {
	s := New(config.Security{
		Roles:  []string{"admin", "auditor"},
		Grants: []string{"admin:write", "auditor:read", "guest:read", " ", "*"},
	}, nil)
	grants, err := s.RoleGrants(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"admin:write", "auditor:read", "*"}, grants)

	s = New(config.Security{Grants: []string{"guest:read"}}, nil)
	grants, _ = s.RoleGrants(context.Background())
	assert.Equal(t, []string{"guest:read"}, grants)
}

func TestClassification(t *testing.T) {
	ctx := context.Background()
	tables := []dsr.Table{
		{Name: "users", SubjectColumn: "id", Classification: "restricted"},
		{Name: "sessions", SubjectColumn: "user_id", Classification: "internal"},
		{Name: "notes", SubjectColumn: "user_id"},
		{Name: "consents", SubjectColumn: "subject_id", Classification: "internal"},
	}

	s := New(config.Security{}, tables)
	levels, err := s.ClassificationLevels(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"internal", "restricted"}, levels)
	ratio, err := s.LabeledRatio(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, ratio, 1e-9)

	s = New(config.Security{ClassificationLevels: []string{"public", "sensitive"}}, tables)
	levels, _ = s.ClassificationLevels(ctx)
	assert.Equal(t, []string{"public", "sensitive"}, levels)

	_, err = New(config.Security{}, nil).LabeledRatio(ctx)
	assert.Error(t, err)
}
