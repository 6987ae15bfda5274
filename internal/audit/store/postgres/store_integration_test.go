//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"custodian/internal/audit"
	auditpg "custodian/internal/audit/store/postgres"
	dErrors "custodian/pkg/domain-errors"
	"custodian/pkg/testutil/containers"
)

type StoreIntegrationSuite struct {
	suite.Suite
	pg     *containers.PostgresContainer
	store  *auditpg.Store
	logger *audit.Logger
	now    time.Time
}

func TestStoreIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(StoreIntegrationSuite))
}

func (s *StoreIntegrationSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.store = auditpg.New(s.pg.DB)
}

func (s *StoreIntegrationSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.pg.TruncateTables(ctx, "audit_entries"))

	s.now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	s.logger = audit.New(
		audit.WithBackend(s.store),
		audit.WithClock(func() time.Time { return s.now }),
	)
	s.Require().NoError(s.logger.Init(ctx))
}

func (s *StoreIntegrationSuite) TearDownTest() {
	s.logger.Destroy()
}

func (s *StoreIntegrationSuite) seed() {
	ctx := context.Background()
	categories := []audit.Category{audit.CategoryFile, audit.CategoryAuth, audit.CategoryDataStore, audit.CategoryAPI}
	base := s.now.Add(-10 * 24 * time.Hour)
	for i := range 40 {
		opts := []audit.EventOption{
			audit.Actor(fmt.Sprintf("user-%d", i%3)),
			audit.Session(fmt.Sprintf("s-%d", i%2)),
			// every fourth pair shares a timestamp so ordering falls back to seq
			audit.At(base.Add(time.Duration(i/2) * time.Hour)),
		}
		if i%5 == 0 {
			opts = append(opts, audit.Failed("boom"))
		}
		op := "read_record"
		if i%7 == 0 {
			op = "bulk_delete"
		}
		_, err := s.logger.Log(ctx, categories[i%len(categories)], op, map[string]any{"n": i}, opts...)
		s.Require().NoError(err)
	}
}

func ids(entries []audit.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

// Query returns the same entries, in the same order, from postgres and from
// the ring buffer mirror.
func (s *StoreIntegrationSuite) TestQueryMatchesRingBuffer() {
	ctx := context.Background()
	s.seed()

	start := s.now.Add(-8 * 24 * time.Hour)
	end := s.now.Add(-9 * 24 * time.Hour).Add(30 * time.Hour)
	filters := map[string]audit.Filter{
		"all":          {},
		"category":     {Category: audit.CategoryAuth},
		"operation":    {Operation: "BULK"},
		"actor":        {Actor: "user-1"},
		"risk":         {Risk: audit.RiskHigh},
		"success only": {SuccessOnly: true},
		"session":      {SessionID: "s-0"},
		"window":       {Start: &start},
		"bounded":      {Start: &start, End: &end},
		"second page":  {Page: 2, PageSize: 7},
		"past the end": {Page: 9, PageSize: 10},
		"combined":     {Actor: "user-0", SuccessOnly: true, Page: 1, PageSize: 3},
	}

	for name, f := range filters {
		s.Run(name, func() {
			fromDB, dbTotal, err := s.store.Query(ctx, f.Normalized())
			s.Require().NoError(err)
			fromRing, ringTotal, err := s.logger.Cache().Query(ctx, f.Normalized())
			s.Require().NoError(err)

			s.Equal(ringTotal, dbTotal)
			s.Equal(ids(fromRing), ids(fromDB))
		})
	}
}

func (s *StoreIntegrationSuite) TestEntriesRoundTrip() {
	ctx := context.Background()
	res, err := s.logger.Log(ctx, audit.CategoryAuth, "login_failed",
		map[string]any{"password": "hunter2", "attempt": 3},
		audit.Actor("alice"),
		audit.Origin("203.0.113.77"),
		audit.Failed("bad credentials"),
		audit.Took(150*time.Millisecond),
		audit.WithEventContext(map[string]any{"client": "desktop"}),
	)
	s.Require().NoError(err)

	got, err := s.logger.Get(ctx, res.ID)
	s.Require().NoError(err)
	s.Equal(audit.RiskHigh, got.Risk)
	s.Equal("alice", got.Actor)
	s.Equal("203.0.113.0", got.Origin)
	s.Equal(audit.RedactedMarker, got.Details["password"])
	s.InDelta(3, got.Details["attempt"], 0)
	s.Equal("desktop", got.Context["client"])
	s.Equal("bad credentials", got.Error)
	s.Require().NotNil(got.DurationMs)
	s.Equal(int64(150), *got.DurationMs)
	s.Equal(s.now, got.Timestamp)
	s.Positive(got.Seq)
}

func (s *StoreIntegrationSuite) TestGetUnknownID() {
	ctx := context.Background()
	_, err := s.store.Get(ctx, "not-a-uuid")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	_, err = s.store.Get(ctx, "6f1c8a52-8a31-4c55-9d0f-6f3d0c7a9e10")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *StoreIntegrationSuite) TestRetentionOnPostgres() {
	ctx := context.Background()

	old := s.now.AddDate(0, 0, -40)
	for _, op := range []string{"read_old", "drop_table"} {
		_, err := s.logger.Log(ctx, audit.CategoryDataStore, op, nil, audit.At(old))
		s.Require().NoError(err)
	}
	for i := range 3 {
		_, err := s.logger.Log(ctx, audit.CategoryAPI, fmt.Sprintf("recent_%d", i), nil)
		s.Require().NoError(err)
	}

	res, err := s.logger.ApplyRetention(ctx, audit.RetentionOptions{
		RetentionDays: 30,
		MaxRecords:    3,
		KeepHighRisk:  true,
	})
	s.Require().NoError(err)
	// read_old expires; drop_table survives the age cut and is the oldest
	// entry left over the record cap.
	s.Equal(2, res.Deleted)
	s.Equal(3, res.Remaining)

	again, err := s.logger.ApplyRetention(ctx, audit.RetentionOptions{RetentionDays: 30, MaxRecords: 3, KeepHighRisk: true})
	s.Require().NoError(err)
	s.Zero(again.Deleted)

	count, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(3, count)
	s.Equal(3, s.logger.Cache().Len())
}

func (s *StoreIntegrationSuite) TestOldest() {
	ctx := context.Background()
	_, ok, err := s.store.Oldest(ctx)
	s.Require().NoError(err)
	s.False(ok)

	at := s.now.AddDate(0, 0, -3)
	_, err = s.logger.Log(ctx, audit.CategorySystem, "boot", nil, audit.At(at))
	s.Require().NoError(err)

	oldest, ok, err := s.logger.OldestEntry(ctx)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(at, oldest)
}
