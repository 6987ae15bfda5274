package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachHooks(t *testing.T) {
	ctx := context.Background()
	l := New()
	require.NoError(t, l.Init(ctx))
	bus := NewLocalBus()
	l.AttachHooks(bus)

	ts := time.Date(2026, 4, 1, 8, 30, 0, 0, time.UTC)
	ms := int64(42)
	bus.Publish(ctx, HookEvent{Name: "file:delete", Actor: "agent-1", SessionID: "s1", Timestamp: ts,
		Payload: map[string]any{"path": "/tmp/x", "password": "pw"}, DurationMs: &ms})
	bus.Publish(ctx, HookEvent{Name: "session:start", Error: "expired"})
	bus.Publish(ctx, HookEvent{Name: "unknown:event"})

	res, err := l.Query(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)

	byOp := map[string]Entry{}
	for _, e := range res.Entries {
		byOp[e.Operation] = e
	}

	del := byOp["file:delete"]
	assert.Equal(t, CategoryFile, del.Category)
	assert.Equal(t, RiskHigh, del.Risk)
	assert.Equal(t, "agent-1", del.Actor)
	assert.Equal(t, ts, del.Timestamp)
	assert.Equal(t, RedactedMarker, del.Details["password"])
	assert.Equal(t, int64(42), *del.DurationMs)

	start := byOp["session:start"]
	assert.Equal(t, CategoryAuth, start.Category)
	assert.False(t, start.Success)
	assert.Equal(t, "expired", start.Error)

	l.Destroy()
	bus.Publish(ctx, HookEvent{Name: "file:read"})
	assert.Equal(t, 2, l.Cache().Len())
}

func TestHookCategoryMapIsComplete(t *testing.T) {
	names := []string{
		"tool:invoke", "tool:result", "file:read", "file:write", "file:delete",
		"session:start", "session:end", "memory:save", "memory:load", "ipc:call",
		"permission:grant", "permission:revoke", "browser:navigate", "browser:action",
		"collab:join", "collab:share", "api:request", "datastore:query",
	}
	for _, name := range names {
		c, ok := HookCategory(name)
		assert.True(t, ok, name)
		assert.True(t, c.Valid(), name)
	}
}
