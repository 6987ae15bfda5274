package audit

import (
	"context"
	"sync"
	"time"
)

// HookEvent is a lifecycle event emitted by another subsystem.
type HookEvent struct {
	Name       string         `json:"name"`
	Actor      string         `json:"actor,omitempty"`
	SessionID  string         `json:"session_id,omitempty"`
	Origin     string         `json:"origin,omitempty"`
	Timestamp  time.Time      `json:"timestamp,omitzero"`
	Payload    map[string]any `json:"payload,omitempty"`
	Error      string         `json:"error,omitempty"`
	DurationMs *int64         `json:"duration_ms,omitempty"`
}

// HookHandler consumes hook events.
type HookHandler func(ctx context.Context, ev HookEvent)

// HookBus delivers hook events to subscribers.
type HookBus interface {
	Subscribe(h HookHandler) (unsubscribe func())
}

// hookCategories maps lifecycle event names to audit categories.
var hookCategories = map[string]Category{
	"tool:invoke":       CategorySystem,
	"tool:result":       CategorySystem,
	"file:read":         CategoryFile,
	"file:write":        CategoryFile,
	"file:delete":       CategoryFile,
	"session:start":     CategoryAuth,
	"session:end":       CategoryAuth,
	"memory:save":       CategoryDataStore,
	"memory:load":       CategoryDataStore,
	"ipc:call":          CategoryAPI,
	"permission:grant":  CategoryPermission,
	"permission:revoke": CategoryPermission,
	"browser:navigate":  CategoryBrowserAutomation,
	"browser:action":    CategoryBrowserAutomation,
	"collab:join":       CategoryCollaboration,
	"collab:share":      CategoryCollaboration,
	"api:request":       CategoryAPI,
	"datastore:query":   CategoryDataStore,
}

// HookCategory returns the category for a lifecycle event name.
func HookCategory(name string) (Category, bool) {
	c, ok := hookCategories[name]
	return c, ok
}

// AttachHooks subscribes the logger to bus. Known events become Log calls;
// unknown names are counted and ignored. Destroy detaches the subscription.
func (l *Logger) AttachHooks(bus HookBus) {
	unsubscribe := bus.Subscribe(func(ctx context.Context, ev HookEvent) {
		category, ok := HookCategory(ev.Name)
		if !ok {
			hookEvents.WithLabelValues("unmapped").Inc()
			l.log.DebugContext(ctx, "ignoring unmapped hook event", "name", ev.Name)
			return
		}

		opts := []EventOption{Actor(ev.Actor), Session(ev.SessionID), Origin(ev.Origin), At(ev.Timestamp)}
		if ev.Error != "" {
			opts = append(opts, Failed(ev.Error))
		}
		if ev.DurationMs != nil {
			opts = append(opts, Took(time.Duration(*ev.DurationMs)*time.Millisecond))
		}
		if _, err := l.Log(ctx, category, ev.Name, ev.Payload, opts...); err != nil {
			hookEvents.WithLabelValues("rejected").Inc()
			l.log.WarnContext(ctx, "hook event rejected", "name", ev.Name, "error", err)
			return
		}
		hookEvents.WithLabelValues("logged").Inc()
	})

	l.mu.Lock()
	if l.destroyed {
		l.mu.Unlock()
		unsubscribe()
		return
	}
	l.detachHooks = append(l.detachHooks, unsubscribe)
	l.mu.Unlock()
}

// LocalBus is an in-process HookBus. Publish calls handlers synchronously.
type LocalBus struct {
	mu       sync.RWMutex
	handlers map[int]HookHandler
	next     int
}

func NewLocalBus() *LocalBus {
	return &LocalBus{handlers: make(map[int]HookHandler)}
}

func (b *LocalBus) Subscribe(h HookHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.handlers[id] = h
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}
}

func (b *LocalBus) Publish(ctx context.Context, ev HookEvent) {
	b.mu.RLock()
	handlers := make([]HookHandler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, ev)
	}
}
