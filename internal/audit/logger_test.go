package audit

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "custodian/pkg/domain-errors"
	"custodian/pkg/platform/circuit"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// flakyBackend fails every Append and otherwise behaves like a ring buffer.
type flakyBackend struct {
	*RingBuffer
}

func (f flakyBackend) Append(context.Context, *Entry) error {
	return errors.New("connection reset by peer")
}

// countingBackend fails every Append and counts the attempts.
type countingBackend struct {
	*RingBuffer
	calls *atomic.Int32
}

func (c countingBackend) Append(context.Context, *Entry) error {
	c.calls.Add(1)
	return errors.New("connection refused")
}

type LoggerSuite struct {
	suite.Suite
	ctx    context.Context
	clock  *clock
	logger *Logger
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerSuite))
}

func (s *LoggerSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = &clock{now: time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)}
	s.logger = New(
		WithClock(s.clock.Now),
		WithBufferSize(1000),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Require().NoError(s.logger.Init(s.ctx))
}

func (s *LoggerSuite) log(category Category, op string, details map[string]any, opts ...EventOption) LogResult {
	res, err := s.logger.Log(s.ctx, category, op, details, opts...)
	s.Require().NoError(err)
	return res
}

func (s *LoggerSuite) TestLogStoresRedactedEntry() {
	res := s.log(CategoryAPI, "call_endpoint", map[string]any{"token": "abc", "path": "/v1/x"},
		Actor("user-7"), Origin("192.168.1.47"), Session("sess-1"), Took(1500*time.Millisecond))

	s.Equal(RiskLow, res.Risk)
	e, err := s.logger.Get(s.ctx, res.ID)
	s.Require().NoError(err)
	s.Equal(RedactedMarker, e.Details["token"])
	s.Equal("/v1/x", e.Details["path"])
	s.Equal("user-7", e.Actor)
	s.Equal("192.168.1.0", e.Origin)
	s.Equal("sess-1", e.SessionID)
	s.Require().NotNil(e.DurationMs)
	s.Equal(int64(1500), *e.DurationMs)
	s.True(e.Success)
	s.Equal(s.clock.Now().UnixMilli(), e.CreatedAt)
}

func (s *LoggerSuite) TestLogDefaultsActorToSystem() {
	res := s.log(CategorySystem, "startup", nil)
	e, err := s.logger.Get(s.ctx, res.ID)
	s.Require().NoError(err)
	s.Equal("system", e.Actor)
	s.Equal(map[string]any{}, e.Details)
}

func (s *LoggerSuite) TestLogRejectsInvalidInput() {
	_, err := s.logger.Log(s.ctx, Category("network"), "x", nil)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Equal("invalid category", err.Error())

	_, err = s.logger.Log(s.ctx, CategorySystem, "  ", nil)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *LoggerSuite) TestDisabledAndDestroyed() {
	disabled := New(WithEnabled(false))
	_, err := disabled.Log(s.ctx, CategorySystem, "x", nil)
	s.True(dErrors.HasCode(err, dErrors.CodeDisabled))

	s.True(s.logger.Active())
	s.logger.Destroy()
	s.logger.Destroy()
	s.False(s.logger.Active())
	_, err = s.logger.Log(s.ctx, CategorySystem, "x", nil)
	s.True(dErrors.HasCode(err, dErrors.CodeDisabled))
	_, err = s.logger.Query(s.ctx, Filter{})
	s.True(dErrors.HasCode(err, dErrors.CodeDisabled))
}

func (s *LoggerSuite) TestNotActiveBeforeInit() {
	l := New()
	s.False(l.Active())
	_, err := l.Log(s.ctx, CategorySystem, "early", nil)
	s.NoError(err)
	s.Equal(1, l.Cache().Len())
}

func (s *LoggerSuite) TestPersistenceFailureIsSwallowed() {
	l := New(WithBackend(flakyBackend{NewRingBuffer(10)}), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(l.Init(s.ctx))

	res, err := l.Log(s.ctx, CategoryFile, "read", nil)
	s.Require().NoError(err)
	s.NotEmpty(res.ID)

	cached, _, err := l.Cache().Query(s.ctx, Filter{})
	s.Require().NoError(err)
	s.Require().Len(cached, 1)
	s.Equal(res.ID, cached[0].ID)
}

func (s *LoggerSuite) TestOpenCircuitStopsBackendWrites() {
	var calls atomic.Int32
	l := New(
		WithBackend(countingBackend{RingBuffer: NewRingBuffer(10), calls: &calls}),
		WithPersistBreaker(circuit.New("test", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Require().NoError(l.Init(s.ctx))

	for i := range 5 {
		_, err := l.Log(s.ctx, CategoryAPI, fmt.Sprintf("call_%d", i), nil)
		s.Require().NoError(err)
	}

	s.Equal(int32(2), calls.Load())
	cached, _, err := l.Cache().Query(s.ctx, Filter{})
	s.Require().NoError(err)
	s.Len(cached, 5)
}

func (s *LoggerSuite) TestHighRiskSubscribers() {
	var mu sync.Mutex
	var got []Entry
	unsubscribe := s.logger.Subscribe(func(e Entry) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e)
	})
	s.logger.Subscribe(func(Entry) { panic("bad subscriber") })

	s.log(CategorySystem, "disable_audit_trail", nil)
	s.log(CategoryFile, "delete_file", nil)
	s.log(CategoryFile, "read", nil)

	mu.Lock()
	s.Len(got, 2)
	s.Equal(RiskCritical, got[0].Risk)
	s.Equal(RiskHigh, got[1].Risk)
	mu.Unlock()

	unsubscribe()
	s.log(CategoryFile, "delete_file", nil)
	mu.Lock()
	s.Len(got, 2)
	mu.Unlock()
}

func (s *LoggerSuite) TestAlertingDisabled() {
	l := New(WithAlerting(false))
	called := false
	l.Subscribe(func(Entry) { called = true })
	_, err := l.Log(s.ctx, CategoryFile, "delete_file", nil)
	s.Require().NoError(err)
	s.False(called)
}

func (s *LoggerSuite) TestCounters() {
	s.log(CategoryAuth, "login", nil)
	s.log(CategoryAuth, "logout", nil)
	s.log(CategoryFile, "read", nil)

	c := s.logger.Counters()
	s.Equal(int64(3), c.Total)
	s.Equal(int64(2), c.ByCategory[CategoryAuth])
	s.Equal(int64(2), c.ByRisk[RiskMedium])
	s.Equal(int64(1), c.ByRisk[RiskLow])
}

func (s *LoggerSuite) TestQueryFiltersAndPagination() {
	for i := range 12 {
		s.clock.Set(s.clock.Now().Add(time.Minute))
		opts := []EventOption{Actor(fmt.Sprintf("user-%d", i%3))}
		if i%4 == 0 {
			opts = append(opts, Failed("boom"))
		}
		s.log(CategoryAPI, fmt.Sprintf("Fetch_Item_%d", i), nil, opts...)
	}
	s.log(CategoryFile, "read", nil, Session("s-9"))

	res, err := s.logger.Query(s.ctx, Filter{Category: CategoryAPI, PageSize: 5, Page: 2})
	s.Require().NoError(err)
	s.Equal(Pagination{Page: 2, PageSize: 5, Total: 12, TotalPages: 3, HasMore: true}, res.Pagination)
	s.Require().Len(res.Entries, 5)
	s.Equal("Fetch_Item_6", res.Entries[0].Operation)

	res, err = s.logger.Query(s.ctx, Filter{Operation: "fetch_item_1"})
	s.Require().NoError(err)
	s.Equal(3, res.Pagination.Total) // 1, 10, 11

	res, err = s.logger.Query(s.ctx, Filter{Actor: "user-0", SuccessOnly: true})
	s.Require().NoError(err)
	for _, e := range res.Entries {
		s.True(e.Success)
		s.Equal("user-0", e.Actor)
	}
	s.Equal(3, res.Pagination.Total) // 3, 6 and 9; 0 failed

	res, err = s.logger.Query(s.ctx, Filter{SessionID: "s-9"})
	s.Require().NoError(err)
	s.Equal(1, res.Pagination.Total)

	res, err = s.logger.Query(s.ctx, Filter{PageSize: 10000})
	s.Require().NoError(err)
	s.Equal(MaxPageSize, res.Pagination.PageSize)

	_, err = s.logger.Query(s.ctx, Filter{Risk: "severe"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *LoggerSuite) TestExportCSVQuoting() {
	s.log(CategoryAPI, "say, \"hello\"\nworld", map[string]any{"k": "v"})

	out, err := s.logger.Export(s.ctx, FormatCSV, Filter{})
	s.Require().NoError(err)

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(csvHeader, records[0])
	s.Equal("say, \"hello\"\nworld", records[1][3])
	s.Contains(string(out), `"say, ""hello""`)
}

func (s *LoggerSuite) TestExportPagesThroughEverything() {
	for i := range 1203 {
		s.log(CategoryFile, fmt.Sprintf("read_%d", i), nil)
	}

	out, err := s.logger.Export(s.ctx, FormatJSON, Filter{Page: 3, PageSize: 1})
	s.Require().NoError(err)

	var doc struct {
		Count   int     `json:"count"`
		Entries []Entry `json:"entries"`
	}
	s.Require().NoError(json.Unmarshal(out, &doc))
	s.Equal(1000, doc.Count) // capped by the 1000-entry ring
	s.Len(doc.Entries, 1000)

	_, err = s.logger.Export(s.ctx, ExportFormat("xml"), Filter{})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *LoggerSuite) TestStatistics() {
	day := s.clock.Now()
	s.clock.Set(day.Add(-48 * time.Hour))
	s.log(CategoryAuth, "login", nil, Actor("alice"))
	s.log(CategoryAuth, "login", nil, Actor("alice"), Failed("bad password"))
	s.clock.Set(day.Add(-1 * time.Hour))
	s.log(CategoryFile, "delete_file", nil, Actor("bob"))
	s.clock.Set(day.AddDate(0, 0, -10))
	s.log(CategoryFile, "read", nil, Actor("carol"))
	s.clock.Set(day)

	stats, err := s.logger.Statistics(s.ctx, StatsRequest{})
	s.Require().NoError(err)

	s.Equal(Summary{Total: 3, Success: 2, Failure: 1, HighRisk: 1}, stats.Summary)
	s.Equal(2, stats.ByCategory[CategoryAuth])
	s.Equal(1, stats.ByRisk[RiskHigh])
	s.Equal([]ActorCount{{Actor: "alice", Count: 2}, {Actor: "bob", Count: 1}}, stats.TopActors)
	s.Require().Len(stats.Trend, 2)
	s.Equal(2, stats.Trend[0].Total)
	s.Equal(1, stats.Trend[0].Failure)
	s.Equal(1, stats.Trend[1].HighRisk)

	_, err = s.logger.Statistics(s.ctx, StatsRequest{Granularity: "minute"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *LoggerSuite) TestBucketStart() {
	ts := time.Date(2026, 5, 14, 15, 42, 0, 0, time.UTC) // Thursday
	s.Equal(time.Date(2026, 5, 14, 15, 0, 0, 0, time.UTC), bucketStart(ts, GranularityHour))
	s.Equal(time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC), bucketStart(ts, GranularityDay))
	s.Equal(time.Date(2026, 5, 11, 0, 0, 0, 0, time.UTC), bucketStart(ts, GranularityWeek))
	s.Equal(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), bucketStart(ts, GranularityMonth))
}

// Five entries 40 days old and five from yesterday; a 30-day sweep removes
// exactly the old five.
func (s *LoggerSuite) TestRetentionDeletesOnlyExpiredEntries() {
	now := s.clock.Now()
	for i := range 5 {
		s.log(CategoryFile, fmt.Sprintf("read_old_%d", i), nil, At(now.AddDate(0, 0, -40)))
	}
	for i := range 5 {
		s.log(CategoryFile, fmt.Sprintf("read_new_%d", i), nil, At(now.AddDate(0, 0, -1)))
	}

	res, err := s.logger.ApplyRetention(s.ctx, RetentionOptions{RetentionDays: 30, KeepHighRisk: false})
	s.Require().NoError(err)
	s.Equal(RetentionResult{Deleted: 5, Remaining: 5}, res)

	left, err := s.logger.Query(s.ctx, Filter{Operation: "read_old"})
	s.Require().NoError(err)
	s.Zero(left.Pagination.Total)

	again, err := s.logger.ApplyRetention(s.ctx, RetentionOptions{RetentionDays: 30})
	s.Require().NoError(err)
	s.Equal(RetentionResult{Deleted: 0, Remaining: 5}, again)
}

func (s *LoggerSuite) TestRetentionKeepsHighRiskLonger() {
	now := s.clock.Now()
	s.log(CategoryFile, "delete_file", nil, At(now.AddDate(0, 0, -100)))
	s.log(CategoryFile, "read", nil, At(now.AddDate(0, 0, -100)))
	s.log(CategoryFile, "delete_file", nil, At(now.AddDate(0, 0, -400)))

	res, err := s.logger.ApplyRetention(s.ctx, RetentionOptions{RetentionDays: 30, KeepHighRisk: true, HighRiskRetentionDays: 365})
	s.Require().NoError(err)
	s.Equal(RetentionResult{Deleted: 2, Remaining: 1}, res)
}

func (s *LoggerSuite) TestRetentionTrimsToMaxRecords() {
	for i := range 8 {
		s.clock.Set(s.clock.Now().Add(time.Second))
		s.log(CategoryFile, fmt.Sprintf("read_%d", i), nil)
	}
	res, err := s.logger.ApplyRetention(s.ctx, RetentionOptions{RetentionDays: 30, MaxRecords: 3})
	s.Require().NoError(err)
	s.Equal(RetentionResult{Deleted: 5, Remaining: 3}, res)

	q, _ := s.logger.Query(s.ctx, Filter{})
	s.Equal("read_7", q.Entries[0].Operation)
	s.Equal("read_5", q.Entries[2].Operation)
}

func (s *LoggerSuite) TestRetentionValidation() {
	_, err := s.logger.ApplyRetention(s.ctx, RetentionOptions{})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

// countingLocker records how many sweeps held the lock at once.
type countingLocker struct {
	inner    SweepLocker
	mu       sync.Mutex
	active   int
	maxSeen  int
	acquired int
}

func (c *countingLocker) Acquire(ctx context.Context) (func(), error) {
	release, err := c.inner.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.active++
	c.acquired++
	c.maxSeen = max(c.maxSeen, c.active)
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		c.active--
		c.mu.Unlock()
		release()
	}, nil
}

func (s *LoggerSuite) TestConcurrentSweepsAreSerialized() {
	locker := &countingLocker{inner: NewLocalSweepLocker()}
	l := New(WithSweepLocker(locker), WithClock(s.clock.Now))
	s.Require().NoError(l.Init(s.ctx))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Go(func() {
			_, _ = l.Log(s.ctx, CategoryFile, fmt.Sprintf("read_%d", i), nil, At(s.clock.Now().AddDate(0, 0, -60)))
		})
		wg.Go(func() {
			_, err := l.ApplyRetention(s.ctx, RetentionOptions{RetentionDays: 30})
			s.NoError(err)
		})
	}
	wg.Wait()

	s.Equal(20, locker.acquired)
	s.Equal(1, locker.maxSeen)
}

func (s *LoggerSuite) TestSweepLockHonoursContext() {
	locker := NewLocalSweepLocker()
	release, err := locker.Acquire(s.ctx)
	s.Require().NoError(err)
	defer release()

	ctx, cancel := context.WithTimeout(s.ctx, 20*time.Millisecond)
	defer cancel()
	l := New(WithSweepLocker(locker))
	_, err = l.ApplyRetention(ctx, RetentionOptions{RetentionDays: 30})
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
}

// sweepHookBackend runs onDelete just before deleting, standing in for an
// event that arrives while a sweep is in progress.
type sweepHookBackend struct {
	*RingBuffer
	onDelete func()
}

func (b *sweepHookBackend) DeleteExpired(ctx context.Context, c Cutoffs) (int, error) {
	b.onDelete()
	return b.RingBuffer.DeleteExpired(ctx, c)
}

func (s *LoggerSuite) TestSweepNeverDeletesEntriesLoggedDuringIt() {
	backend := &sweepHookBackend{RingBuffer: NewRingBuffer(100)}
	l := New(WithBackend(backend), WithClock(s.clock.Now))
	s.Require().NoError(l.Init(s.ctx))

	old := s.clock.Now().AddDate(0, 0, -90)
	_, err := l.Log(s.ctx, CategoryFile, "read_before", nil, At(old))
	s.Require().NoError(err)

	backend.onDelete = func() {
		_, err := l.Log(s.ctx, CategoryFile, "read_during", nil, At(old))
		s.Require().NoError(err)
	}

	res, err := l.ApplyRetention(s.ctx, RetentionOptions{RetentionDays: 30})
	s.Require().NoError(err)
	s.Equal(1, res.Deleted)

	q, err := l.Query(s.ctx, Filter{})
	s.Require().NoError(err)
	s.Require().Len(q.Entries, 1)
	s.Equal("read_during", q.Entries[0].Operation)
}
