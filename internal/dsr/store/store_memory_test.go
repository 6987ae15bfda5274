package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodian/internal/dsr"
	"custodian/pkg/platform/sentinel"
)

func newRequest(subject string, created time.Time) *dsr.Request {
	return &dsr.Request{
		ID:          uuid.NewString(),
		Type:        dsr.TypeAccess,
		SubjectID:   subject,
		Status:      dsr.StatusPending,
		RequestData: map[string]any{},
		CreatedAt:   created,
		UpdatedAt:   created,
		Deadline:    created.Add(dsr.Window),
	}
}

func TestInMemoryTransition(t *testing.T) {
	s := New()
	ctx := context.Background()
	r := newRequest("S1", time.Now().UTC())
	require.NoError(t, s.Create(ctx, r))

	got, err := s.Transition(ctx, r.ID, []dsr.Status{dsr.StatusPending}, func(r *dsr.Request) error {
		r.Status = dsr.StatusInProgress
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, dsr.StatusInProgress, got.Status)

	_, err = s.Transition(ctx, r.ID, []dsr.Status{dsr.StatusPending}, func(*dsr.Request) error {
		t.Fatal("mutate must not run when the status does not match")
		return nil
	})
	var stateErr *dsr.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, dsr.StatusInProgress, stateErr.Current)
	assert.ErrorIs(t, err, sentinel.ErrInvalidState)

	// a failing mutate leaves the stored request untouched
	boom := errors.New("boom")
	_, err = s.Transition(ctx, r.ID, []dsr.Status{dsr.StatusInProgress}, func(r *dsr.Request) error {
		r.Status = dsr.StatusCompleted
		return boom
	})
	require.ErrorIs(t, err, boom)
	stored, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, dsr.StatusInProgress, stored.Status)

	_, err = s.Transition(ctx, "missing", []dsr.Status{dsr.StatusPending}, func(*dsr.Request) error { return nil })
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryListAndOpenBefore(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	a := newRequest("S1", base)
	b := newRequest("S2", base.Add(time.Hour))
	c := newRequest("S1", base.Add(2*time.Hour))
	c.Status = dsr.StatusCompleted
	for _, r := range []*dsr.Request{a, b, c} {
		require.NoError(t, s.Create(ctx, r))
	}

	list, err := s.List(ctx, dsr.Filter{SubjectID: "S1"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, c.ID, list[1].ID)

	open, err := s.OpenBefore(ctx, base.Add(dsr.Window+30*time.Minute))
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, a.ID, open[0].ID)
}

func TestInMemoryPersonalData(t *testing.T) {
	ctx := context.Background()
	data := NewPersonalData()
	profiles := dsr.Table{Name: "user_profiles", SubjectColumn: "user_id"}
	data.Seed("user_profiles", map[string]any{"id": 1, "user_id": "S1", "city": "Lyon"})
	data.Seed("user_profiles", map[string]any{"id": 2, "user_id": "S2", "city": "Oslo"})

	rows, err := data.Export(ctx, profiles, "S1")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	n, err := data.Rectify(ctx, profiles, "S1", "2", map[string]any{"city": "Paris"})
	require.NoError(t, err)
	assert.Zero(t, n, "record owned by another subject")
	n, err = data.Rectify(ctx, profiles, "S1", "1", map[string]any{"city": "Paris"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = data.Delete(ctx, profiles, "S1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Len(t, data.Rows("user_profiles"), 1)

	rows, err = data.Export(ctx, dsr.Table{Name: "never_seeded", SubjectColumn: "user_id"}, "S1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
