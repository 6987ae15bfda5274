package audit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "custodian/pkg/domain-errors"
)

func ringEntry(id string, ts time.Time, risk RiskLevel) *Entry {
	return &Entry{ID: id, Timestamp: ts, Category: CategorySystem, Operation: "op", Actor: "system", Risk: risk, Success: true}
}

func TestRingBuffer_DropsOldestWhenFull(t *testing.T) {
	ctx := context.Background()
	b := NewRingBuffer(3)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range 5 {
		require.NoError(t, b.Append(ctx, ringEntry(fmt.Sprintf("e%d", i), base.Add(time.Duration(i)*time.Minute), RiskLow)))
	}

	assert.Equal(t, 3, b.Len())
	assert.Equal(t, int64(2), b.Dropped())
	entries, total, err := b.Query(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"e4", "e3", "e2"}, ids(entries))

	_, err = b.Get(ctx, "e0")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestRingBuffer_ConcurrentAppendsKeepEveryEntry(t *testing.T) {
	ctx := context.Background()
	b := NewRingBuffer(1000)
	var wg sync.WaitGroup
	for i := range 500 {
		wg.Go(func() {
			_ = b.Append(ctx, ringEntry(fmt.Sprintf("c%d", i), time.Now(), RiskLow))
		})
	}
	wg.Wait()

	assert.Equal(t, 500, b.Len())
	seq, _ := b.MaxSeq(ctx)
	assert.Equal(t, int64(500), seq)
}

func TestRingBuffer_OrderingTiesBreakOnSeq(t *testing.T) {
	ctx := context.Background()
	b := NewRingBuffer(10)
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, b.Append(ctx, ringEntry(id, ts, RiskLow)))
	}
	entries, _, err := b.Query(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, ids(entries))
}

func TestRingBuffer_DeleteExpiredRespectsWatermark(t *testing.T) {
	ctx := context.Background()
	b := NewRingBuffer(10)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	old := now.AddDate(0, 0, -40)

	require.NoError(t, b.Append(ctx, ringEntry("old-low", old, RiskLow)))
	require.NoError(t, b.Append(ctx, ringEntry("old-high", old, RiskHigh)))
	require.NoError(t, b.Append(ctx, ringEntry("late-old", old, RiskLow)))

	deleted, err := b.DeleteExpired(ctx, Cutoffs{
		Before:         now.AddDate(0, 0, -30),
		KeepHighRisk:   true,
		HighRiskBefore: now.AddDate(0, 0, -365),
		MaxSeq:         2,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	entries, _, _ := b.Query(ctx, Filter{})
	assert.ElementsMatch(t, []string{"old-high", "late-old"}, ids(entries))
}

func TestRingBuffer_TrimOldest(t *testing.T) {
	ctx := context.Background()
	b := NewRingBuffer(10)
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := range 6 {
		require.NoError(t, b.Append(ctx, ringEntry(fmt.Sprintf("t%d", i), base.Add(time.Duration(i)*time.Second), RiskLow)))
	}

	deleted, err := b.TrimOldest(ctx, 0, 4)
	require.NoError(t, err)
	// t4 and t5 are above the watermark.
	assert.Equal(t, 4, deleted)
	entries, _, _ := b.Query(ctx, Filter{})
	assert.Equal(t, []string{"t5", "t4"}, ids(entries))

	// Appends still work after compaction.
	require.NoError(t, b.Append(ctx, ringEntry("t6", base.Add(time.Hour), RiskLow)))
	assert.Equal(t, 3, b.Len())
}

func TestRingBuffer_TrimOldestWithSharedSeq(t *testing.T) {
	ctx := context.Background()
	b := NewRingBuffer(10)
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	// memory-only entry numbered by the ring, then a persisted entry whose
	// backend seq collides with it
	require.NoError(t, b.Append(ctx, ringEntry("mem", base, RiskLow)))
	persisted := ringEntry("db", base.Add(time.Second), RiskLow)
	persisted.Seq = 1
	require.NoError(t, b.Append(ctx, persisted))
	for i := range 3 {
		require.NoError(t, b.Append(ctx, ringEntry(fmt.Sprintf("n%d", i), base.Add(time.Duration(i+2)*time.Second), RiskLow)))
	}

	deleted, err := b.TrimOldest(ctx, 4, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, 4, b.Len())
	entries, _, _ := b.Query(ctx, Filter{})
	assert.Equal(t, []string{"n2", "n1", "n0", "db"}, ids(entries))
}

func TestRingBuffer_Oldest(t *testing.T) {
	ctx := context.Background()
	b := NewRingBuffer(4)
	_, ok, err := b.Oldest(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	first := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, b.Append(ctx, ringEntry("late", first.AddDate(0, 1, 0), RiskLow)))
	require.NoError(t, b.Append(ctx, ringEntry("early", first, RiskLow)))
	oldest, ok, err := b.Oldest(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, first, oldest)
}

func ids(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
