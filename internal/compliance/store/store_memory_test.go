package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodian/internal/compliance"
	"custodian/pkg/platform/sentinel"
)

func newPolicy(framework compliance.Framework, t compliance.PolicyType, created time.Time) *compliance.Policy {
	return &compliance.Policy{
		ID:        uuid.NewString(),
		Name:      string(t) + " policy",
		Type:      t,
		Framework: framework,
		Rules:     compliance.Rules{"maxAgeDays": 365},
		Enabled:   true,
		Severity:  compliance.SeverityMedium,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestInMemoryPolicies(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	a := newPolicy("gdpr", compliance.TypeRetention, now)
	b := newPolicy("gdpr", compliance.TypeEncryption, now.Add(time.Minute))
	c := newPolicy("soc2", compliance.TypeRetention, now.Add(2*time.Minute))
	for _, p := range []*compliance.Policy{a, b, c} {
		require.NoError(t, s.CreatePolicy(ctx, p))
	}

	list, err := s.ListPolicies(ctx, compliance.PolicyFilter{Framework: "gdpr"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)

	// stored rules are isolated from the caller's map
	a.Rules["maxAgeDays"] = 1
	got, err := s.GetPolicy(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 365, got.Rules.Int("maxAgeDays", 0))

	b.Enabled = false
	require.NoError(t, s.UpdatePolicy(ctx, b))
	enabled := true
	list, err = s.ListPolicies(ctx, compliance.PolicyFilter{Framework: "gdpr", Enabled: &enabled})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	_, err = s.GetPolicy(ctx, uuid.NewString())
	require.ErrorIs(t, err, sentinel.ErrNotFound)
	require.ErrorIs(t, s.UpdatePolicy(ctx, newPolicy("gdpr", compliance.TypeRetention, now)), sentinel.ErrNotFound)
	require.ErrorIs(t, s.DeletePolicy(ctx, uuid.NewString()), sentinel.ErrNotFound)
}

func TestInMemoryDeleteCascadesResults(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()

	p := newPolicy("gdpr", compliance.TypeRetention, now)
	other := newPolicy("gdpr", compliance.TypeEncryption, now)
	require.NoError(t, s.CreatePolicy(ctx, p))
	require.NoError(t, s.CreatePolicy(ctx, other))

	results := []compliance.CheckResult{
		{ID: uuid.NewString(), PolicyID: p.ID, Framework: "gdpr", Status: compliance.StatusPassed, Score: 100, CheckedAt: now},
		{ID: uuid.NewString(), PolicyID: other.ID, Framework: "gdpr", Status: compliance.StatusFailed, Score: 0, CheckedAt: now},
	}
	require.NoError(t, s.RecordRun(ctx, results, &compliance.ScoreHistory{ID: uuid.NewString(), Framework: "gdpr", RecordedAt: now}))

	require.NoError(t, s.DeletePolicy(ctx, p.ID))

	got, err := s.ListCheckResults(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
	got, err = s.ListCheckResults(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestInMemoryRecordRunDropsResultsOfDeletedPolicies(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()

	kept := newPolicy("gdpr", compliance.TypeEncryption, now)
	require.NoError(t, s.CreatePolicy(ctx, kept))

	results := []compliance.CheckResult{
		{ID: uuid.NewString(), PolicyID: kept.ID, Framework: "gdpr", Status: compliance.StatusPassed, Score: 100, CheckedAt: now},
		{ID: uuid.NewString(), PolicyID: uuid.NewString(), Framework: "gdpr", Status: compliance.StatusFailed, CheckedAt: now},
	}
	require.NoError(t, s.RecordRun(ctx, results, &compliance.ScoreHistory{ID: uuid.NewString(), Framework: "gdpr", Score: 50, RecordedAt: now}))

	got, err := s.ListCheckResults(ctx, kept.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	latest, err := s.LatestScore(ctx, "gdpr")
	require.NoError(t, err)
	assert.Equal(t, 50, latest.Score)
}

func TestInMemoryScoreHistory(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.LatestScore(ctx, "gdpr")
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	for i, score := range []int{40, 55, 70} {
		h := &compliance.ScoreHistory{
			ID:         uuid.NewString(),
			Framework:  "gdpr",
			Score:      score,
			RecordedAt: base.AddDate(0, 0, i*10),
		}
		require.NoError(t, s.RecordRun(ctx, nil, h))
	}
	require.NoError(t, s.RecordRun(ctx, nil, &compliance.ScoreHistory{ID: uuid.NewString(), Framework: "soc2", Score: 99, RecordedAt: base.AddDate(0, 1, 0)}))

	latest, err := s.LatestScore(ctx, "gdpr")
	require.NoError(t, err)
	assert.Equal(t, 70, latest.Score)

	hist, err := s.ScoreHistory(ctx, "gdpr", base.AddDate(0, 0, 5))
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, 55, hist[0].Score)
	assert.Equal(t, 70, hist[1].Score)
}

func TestInMemoryReports(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	first := &compliance.Report{ID: uuid.NewString(), Framework: "gdpr", Title: "first", Score: 50, GeneratedAt: base}
	second := &compliance.Report{ID: uuid.NewString(), Framework: "gdpr", Title: "second", Score: 60, GeneratedAt: base.Add(time.Hour)}
	other := &compliance.Report{ID: uuid.NewString(), Framework: "hipaa", Title: "other", GeneratedAt: base.Add(2 * time.Hour)}
	for _, r := range []*compliance.Report{first, second, other} {
		require.NoError(t, s.SaveReport(ctx, r))
	}

	got, err := s.GetReport(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)

	_, err = s.GetReport(ctx, uuid.NewString())
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	list, err := s.ListReports(ctx, "gdpr")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	all, err := s.ListReports(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, other.ID, all[0].ID)
}
