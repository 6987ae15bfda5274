package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodian/pkg/secrets"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestKeygenPrintsUsableKey(t *testing.T) {
	out := execute(t, "keygen")

	key, err := secrets.ParseKey(string(bytes.TrimSpace([]byte(out))))
	require.NoError(t, err)
	assert.Len(t, key, secrets.KeySize)
}

func TestSweepOnEmptyStore(t *testing.T) {
	out := execute(t, "sweep", "--days", "7", "--json")

	var res struct {
		Deleted int `json:"deleted_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Zero(t, res.Deleted)
}

func TestCheckWithoutPolicies(t *testing.T) {
	out := execute(t, "check", "gdpr", "--json")

	var summary struct {
		Framework     string `json:"framework"`
		TotalPolicies int    `json:"total_policies"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "gdpr", summary.Framework)
	assert.Zero(t, summary.TotalPolicies)
}

func TestOverdueOnEmptyStore(t *testing.T) {
	out := execute(t, "overdue", "--json")
	assert.JSONEq(t, "[]", out)
}
