package audit

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	dErrors "custodian/pkg/domain-errors"
	"custodian/pkg/platform/circuit"
	"custodian/pkg/platform/privacy"
	"custodian/pkg/platform/validation"
)

// Logger records audit events. It always mirrors entries into a bounded ring
// buffer; when a persistent backend is configured that backend is the system
// of record and answers queries.
type Logger struct {
	log      *slog.Logger
	primary  Backend
	cache    *RingBuffer
	locker   SweepLocker
	breaker  *circuit.Breaker
	now      func() time.Time
	alerting bool
	enabled  bool
	capacity int

	mu          sync.RWMutex
	initialized bool
	destroyed   bool
	startedAt   time.Time
	subscribers map[int]func(Entry)
	nextSubID   int
	detachHooks []func()

	total      atomic.Int64
	countersMu sync.Mutex
	byCategory map[Category]int64
	byRisk     map[RiskLevel]int64
}

// Option configures a Logger.
type Option func(*Logger)

// WithBackend sets the persistent backend. Without it the ring buffer is the backend.
func WithBackend(b Backend) Option {
	return func(l *Logger) {
		l.primary = b
	}
}

// WithBufferSize sets the ring buffer capacity.
func WithBufferSize(n int) Option {
	return func(l *Logger) {
		if n > 0 {
			l.capacity = n
		}
	}
}

// WithAlerting toggles high-risk notifications to subscribers.
func WithAlerting(enabled bool) Option {
	return func(l *Logger) {
		l.alerting = enabled
	}
}

// WithEnabled toggles ingestion. A disabled logger rejects Log calls.
func WithEnabled(enabled bool) Option {
	return func(l *Logger) {
		l.enabled = enabled
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		l.now = now
	}
}

// WithSweepLocker replaces the in-process sweep lock.
func WithSweepLocker(locker SweepLocker) Option {
	return func(l *Logger) {
		l.locker = locker
	}
}

// WithPersistBreaker replaces the breaker guarding backend writes.
func WithPersistBreaker(b *circuit.Breaker) Option {
	return func(l *Logger) {
		l.breaker = b
	}
}

// WithLogger sets the operational slog logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Logger) {
		l.log = log
	}
}

// New constructs a Logger. Call Init before relying on persistence.
func New(opts ...Option) *Logger {
	l := &Logger{
		log:         slog.Default(),
		now:         time.Now,
		alerting:    true,
		enabled:     true,
		capacity:    defaultRingCapacity,
		subscribers: make(map[int]func(Entry)),
		byCategory:  make(map[Category]int64),
		byRisk:      make(map[RiskLevel]int64),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.cache = NewRingBuffer(l.capacity)
	if l.primary == nil {
		l.primary = l.cache
	}
	if l.locker == nil {
		l.locker = NewLocalSweepLocker()
	}
	if l.breaker == nil {
		l.breaker = circuit.New("audit_backend")
	}
	return l
}

// Init verifies the persistent backend and starts persisting entries to it.
// Entries logged before Init reach only the ring buffer.
func (l *Logger) Init(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.destroyed {
		return dErrors.New(dErrors.CodeDisabled, "audit logger destroyed")
	}
	if l.initialized {
		return nil
	}
	if _, err := l.primary.Count(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "audit backend unavailable")
	}
	l.initialized = true
	l.startedAt = l.now().UTC()
	l.log.InfoContext(ctx, "audit logger initialized", "persistent", l.persistent(), "buffer_size", l.capacity)
	return nil
}

// Destroy stops ingestion, detaches hook subscriptions and drops subscribers.
// It is safe to call more than once.
func (l *Logger) Destroy() {
	l.mu.Lock()
	if l.destroyed {
		l.mu.Unlock()
		return
	}
	l.destroyed = true
	detach := l.detachHooks
	l.detachHooks = nil
	l.subscribers = make(map[int]func(Entry))
	l.mu.Unlock()

	for _, fn := range detach {
		fn()
	}
}

// Active reports whether the logger is initialized and accepting events.
func (l *Logger) Active() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.enabled && l.initialized && !l.destroyed
}

// StartedAt returns when Init completed, zero before that.
func (l *Logger) StartedAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.startedAt
}

// Cache exposes the ring buffer mirror.
func (l *Logger) Cache() *RingBuffer {
	return l.cache
}

func (l *Logger) persistent() bool {
	return l.primary != Backend(l.cache)
}

// Subscribe registers fn for high-risk notifications and returns a function
// that removes it. fn runs synchronously inside Log and must not block.
func (l *Logger) Subscribe(fn func(Entry)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextSubID
	l.nextSubID++
	l.subscribers[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subscribers, id)
	}
}

// EventOption sets optional entry fields on Log.
type EventOption func(*Entry)

// Actor sets the acting identity. Defaults to "system".
func Actor(actor string) EventOption {
	return func(e *Entry) {
		if strings.TrimSpace(actor) != "" {
			e.Actor = actor
		}
	}
}

// Failed marks the event unsuccessful with an error message.
func Failed(msg string) EventOption {
	return func(e *Entry) {
		e.Success = false
		e.Error = msg
	}
}

// Succeeded sets the success flag explicitly.
func Succeeded(ok bool) EventOption {
	return func(e *Entry) {
		e.Success = ok
	}
}

// WithEventContext attaches caller context. It is redacted like details.
func WithEventContext(ctx map[string]any) EventOption {
	return func(e *Entry) {
		e.Context = ctx
	}
}

// Took records how long the operation ran.
func Took(d time.Duration) EventOption {
	return func(e *Entry) {
		ms := d.Milliseconds()
		e.DurationMs = &ms
	}
}

// Origin records the network origin. It is anonymized before storage.
func Origin(addr string) EventOption {
	return func(e *Entry) {
		e.Origin = addr
	}
}

// Session records the session the event belongs to.
func Session(id string) EventOption {
	return func(e *Entry) {
		e.SessionID = id
	}
}

// At sets the event time, e.g. when replaying events from another process.
func At(ts time.Time) EventOption {
	return func(e *Entry) {
		if !ts.IsZero() {
			e.Timestamp = ts
		}
	}
}

// Log records one event. Persistence failures are logged and counted but do
// not fail the call; the entry still reaches the ring buffer.
func (l *Logger) Log(ctx context.Context, category Category, operation string, details map[string]any, opts ...EventOption) (LogResult, error) {
	l.mu.RLock()
	accepting := l.enabled && !l.destroyed
	persist := l.initialized && l.persistent()
	l.mu.RUnlock()

	if !accepting {
		return LogResult{}, dErrors.New(dErrors.CodeDisabled, "audit logger disabled")
	}
	if !category.Valid() {
		return LogResult{}, dErrors.New(dErrors.CodeValidation, "invalid category")
	}
	if strings.TrimSpace(operation) == "" {
		return LogResult{}, dErrors.New(dErrors.CodeValidation, "operation is required")
	}
	if err := validation.CheckStringLength("operation", operation, validation.MaxOperationLength); err != nil {
		return LogResult{}, err
	}

	now := l.now().UTC()
	e := Entry{
		ID:        uuid.NewString(),
		Timestamp: now,
		Category:  category,
		Operation: operation,
		Actor:     "system",
		Success:   true,
	}
	for _, opt := range opts {
		opt(&e)
	}
	e.Timestamp = e.Timestamp.UTC().Truncate(time.Microsecond)
	e.CreatedAt = now.UnixMilli()
	e.Details = Redact(details)
	if e.Context != nil {
		e.Context = Redact(e.Context)
	}
	if e.Origin != "" {
		e.Origin = privacy.AnonymizeIP(e.Origin)
	}
	if e.Error != "" {
		e.Error = redactString("error", e.Error)
	}
	e.Risk = AssessRisk(category, operation, e.Details)

	if persist {
		l.persist(ctx, &e)
	}
	_ = l.cache.Append(ctx, &e) //nolint:errcheck // ring buffer append cannot fail

	l.count(e)
	if e.Risk.AtLeastHigh() && l.alerting {
		l.notify(ctx, e)
	}
	return LogResult{ID: e.ID, Risk: e.Risk}, nil
}

// persist writes e to the backend unless the breaker is shedding writes. A
// skipped or failed write leaves e in the ring buffer only.
func (l *Logger) persist(ctx context.Context, e *Entry) {
	if !l.breaker.Allow() {
		persistFailures.Inc()
		persistSkipped.Inc()
		return
	}

	start := time.Now()
	err := l.primary.Append(ctx, e)
	persistDuration.Observe(time.Since(start).Seconds())
	if err == nil {
		if l.breaker.RecordSuccess().Closed {
			l.log.InfoContext(ctx, "audit backend recovered, persistence resumed")
		}
		return
	}

	persistFailures.Inc()
	e.Seq = 0
	l.log.ErrorContext(ctx, "failed to persist audit entry",
		"error", err,
		"entry_id", e.ID,
		"category", e.Category,
	)
	if l.breaker.RecordFailure().Opened {
		l.log.WarnContext(ctx, "audit backend failing, entries kept in memory only",
			"breaker", l.breaker.Name(),
		)
	}
}

func (l *Logger) count(e Entry) {
	l.total.Add(1)
	l.countersMu.Lock()
	l.byCategory[e.Category]++
	l.byRisk[e.Risk]++
	l.countersMu.Unlock()
	entriesLogged.WithLabelValues(string(e.Category), string(e.Risk)).Inc()
}

func (l *Logger) notify(ctx context.Context, e Entry) {
	l.mu.RLock()
	subs := make([]func(Entry), 0, len(l.subscribers))
	for _, fn := range l.subscribers {
		subs = append(subs, fn)
	}
	l.mu.RUnlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					l.log.ErrorContext(ctx, "high-risk subscriber panicked", "entry_id", e.ID, "panic", r)
				}
			}()
			fn(e)
			highRiskAlerts.Inc()
		}()
	}
}

// Counters returns a snapshot of the running totals since construction.
func (l *Logger) Counters() Counters {
	l.countersMu.Lock()
	defer l.countersMu.Unlock()
	c := Counters{
		Total:      l.total.Load(),
		ByCategory: make(map[Category]int64, len(l.byCategory)),
		ByRisk:     make(map[RiskLevel]int64, len(l.byRisk)),
	}
	for k, v := range l.byCategory {
		c.ByCategory[k] = v
	}
	for k, v := range l.byRisk {
		c.ByRisk[k] = v
	}
	return c
}

func (l *Logger) checkOpen() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.destroyed {
		return dErrors.New(dErrors.CodeDisabled, "audit logger destroyed")
	}
	return nil
}

func validateFilter(f Filter) error {
	if f.Category != "" && !f.Category.Valid() {
		return dErrors.New(dErrors.CodeValidation, "invalid category")
	}
	if f.Risk != "" && !f.Risk.Valid() {
		return dErrors.New(dErrors.CodeValidation, "invalid risk level")
	}
	if f.Start != nil && f.End != nil && f.End.Before(*f.Start) {
		return dErrors.New(dErrors.CodeValidation, "end must not be before start")
	}
	return nil
}

// Query returns one page of matching entries from the system of record.
func (l *Logger) Query(ctx context.Context, f Filter) (QueryResult, error) {
	if err := l.checkOpen(); err != nil {
		return QueryResult{}, err
	}
	if err := validateFilter(f); err != nil {
		return QueryResult{}, err
	}
	f = f.Normalized()

	entries, total, err := l.primary.Query(ctx, f)
	if err != nil {
		return QueryResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "query audit entries")
	}
	return QueryResult{Entries: entries, Pagination: newPagination(f, total)}, nil
}

// Get returns a single entry by id.
func (l *Logger) Get(ctx context.Context, id string) (Entry, error) {
	if err := l.checkOpen(); err != nil {
		return Entry{}, err
	}
	e, err := l.primary.Get(ctx, id)
	if err != nil {
		return Entry{}, dErrors.Wrap(err, dErrors.CodeInternal, "get audit entry")
	}
	return e, nil
}

// OldestEntry returns the timestamp of the oldest stored entry.
func (l *Logger) OldestEntry(ctx context.Context) (time.Time, bool, error) {
	return l.primary.Oldest(ctx)
}
