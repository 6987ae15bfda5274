package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssessRisk(t *testing.T) {
	tests := []struct {
		name      string
		category  Category
		operation string
		details   map[string]any
		want      RiskLevel
	}{
		{"critical keyword wins over category", CategorySystem, "attempt_sandbox_escape", nil, RiskCritical},
		{"critical keyword is case-insensitive", CategoryDataStore, "DROP_DATABASE", nil, RiskCritical},
		{"category sensitive operation", CategoryFile, "delete_file", nil, RiskHigh},
		{"sensitive op only applies to its category", CategoryAPI, "chmod", nil, RiskLow},
		{"medium pattern in operation", CategoryAPI, "export_contacts", nil, RiskMedium},
		{"medium pattern in details", CategoryFile, "read", map[string]any{"note": "user is admin"}, RiskMedium},
		{"redacted key still counts", CategoryAPI, "call", map[string]any{"password": RedactedMarker}, RiskMedium},
		{"auth category floor", CategoryAuth, "login", nil, RiskMedium},
		{"permission category floor", CategoryPermission, "list", nil, RiskMedium},
		{"plain event", CategoryBrowserAutomation, "navigate", map[string]any{"url": "https://example.org"}, RiskLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AssessRisk(tt.category, tt.operation, tt.details))
		})
	}
}

func TestAssessRisk_Deterministic(t *testing.T) {
	details := map[string]any{
		"a": 1, "b": "two", "c": []any{"x", "y"}, "d": map[string]any{"e": "f"},
		"g": "h", "i": "j", "k": "l", "m": "role",
	}
	first := AssessRisk(CategoryCollaboration, "join", details)
	for range 100 {
		// Rebuild the map so iteration order varies between runs.
		copied := make(map[string]any, len(details))
		for k, v := range details {
			copied[k] = v
		}
		assert.Equal(t, first, AssessRisk(CategoryCollaboration, "join", copied))
	}
	assert.Equal(t, RiskMedium, first)
}
