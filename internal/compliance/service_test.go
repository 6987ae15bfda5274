package compliance_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"custodian/internal/audit"
	"custodian/internal/compliance"
	"custodian/internal/compliance/mocks"
	"custodian/internal/compliance/store"
	dErrors "custodian/pkg/domain-errors"
	"custodian/pkg/platform/sentinel"
)

type ServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	signals *mocks.MockSystemSignals
	store   *store.InMemoryStore
	auditor *audit.Logger
	now     time.Time
	service *compliance.Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.signals = mocks.NewMockSystemSignals(s.ctrl)
	s.store = store.New()
	s.now = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.auditor = audit.New(audit.WithClock(func() time.Time { return s.now }), audit.WithLogger(logger))
	s.Require().NoError(s.auditor.Init(context.Background()))

	var err error
	s.service, err = compliance.New(s.store,
		compliance.WithSystemSignals(s.signals),
		compliance.WithAuditSignals(s.auditor),
		compliance.WithAuditSink(s.auditor),
		compliance.WithLogger(logger),
		compliance.WithClock(func() time.Time { return s.now }),
	)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TearDownTest() {
	s.auditor.Destroy()
	s.ctrl.Finish()
}

func (s *ServiceSuite) healthySignals() {
	s.signals.EXPECT().EncryptionAtRest(gomock.Any()).Return(true, nil).AnyTimes()
	s.signals.EXPECT().EncryptionKeyBits(gomock.Any()).Return(256, nil).AnyTimes()
	s.signals.EXPECT().TLSEnabled(gomock.Any()).Return(true, nil).AnyTimes()
	s.signals.EXPECT().RoleGrants(gomock.Any()).Return([]string{"admin:audit:read"}, nil).AnyTimes()
	s.signals.EXPECT().IdentityAuth(gomock.Any()).Return(true, nil).AnyTimes()
	s.signals.EXPECT().SessionTracking(gomock.Any()).Return(true, nil).AnyTimes()
	s.signals.EXPECT().ClassificationLevels(gomock.Any()).Return([]string{"public", "restricted"}, nil).AnyTimes()
	s.signals.EXPECT().LabeledRatio(gomock.Any()).Return(1.0, nil).AnyTimes()
}

func (s *ServiceSuite) createPolicy(t compliance.PolicyType, rules compliance.Rules) *compliance.Policy {
	p, err := s.service.CreatePolicy(context.Background(), compliance.CreatePolicyRequest{
		Name:      string(t) + " policy",
		Type:      t,
		Framework: "gdpr",
		Rules:     rules,
	})
	s.Require().NoError(err)
	return p
}

func (s *ServiceSuite) TestNewRequiresStore() {
	_, err := compliance.New(nil)
	s.True(dErrors.HasCode(err, dErrors.CodeConfiguration))
}

func (s *ServiceSuite) TestCreatePolicy() {
	ctx := context.Background()

	s.Run("normalizes and defaults", func() {
		p, err := s.service.CreatePolicy(ctx, compliance.CreatePolicyRequest{
			Name:      "  Keys  ",
			Type:      compliance.TypeEncryption,
			Framework: " GDPR ",
		})
		s.Require().NoError(err)
		s.Equal("Keys", p.Name)
		s.Equal(compliance.Framework("gdpr"), p.Framework)
		s.Equal(compliance.SeverityMedium, p.Severity)
		s.True(p.Enabled)
		s.NotEmpty(p.ID)
		s.Equal(s.now, p.CreatedAt)
	})

	s.Run("rejects unknown type", func() {
		_, err := s.service.CreatePolicy(ctx, compliance.CreatePolicyRequest{
			Name: "x", Type: "firewall", Framework: "gdpr",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects unknown framework", func() {
		_, err := s.service.CreatePolicy(ctx, compliance.CreatePolicyRequest{
			Name: "x", Type: compliance.TypeRetention, Framework: "pci",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects blank name", func() {
		_, err := s.service.CreatePolicy(ctx, compliance.CreatePolicyRequest{
			Name: "   ", Type: compliance.TypeRetention, Framework: "gdpr",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("records an audit event", func() {
		res, err := s.auditor.Query(ctx, audit.Filter{Operation: "compliance_policy_create"})
		s.Require().NoError(err)
		s.Equal(1, res.Pagination.Total)
	})
}

func (s *ServiceSuite) TestUpdatePolicy() {
	ctx := context.Background()
	p := s.createPolicy(compliance.TypeRetention, compliance.Rules{"maxAgeDays": 365})

	_, err := s.service.UpdatePolicy(ctx, p.ID, compliance.PolicyUpdate{})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	disabled := false
	s.now = s.now.Add(time.Hour)
	updated, err := s.service.UpdatePolicy(ctx, p.ID, compliance.PolicyUpdate{
		Enabled: &disabled,
		Rules:   compliance.Rules{"maxAgeDays": 90},
	})
	s.Require().NoError(err)
	s.False(updated.Enabled)
	s.Equal(90, updated.Rules.Int("maxAgeDays", 0))
	s.Equal(p.CreatedAt, updated.CreatedAt)
	s.True(updated.UpdatedAt.After(p.UpdatedAt))

	bad := compliance.Severity("urgent")
	_, err = s.service.UpdatePolicy(ctx, p.ID, compliance.PolicyUpdate{Severity: &bad})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.service.UpdatePolicy(ctx, "missing", compliance.PolicyUpdate{Enabled: &disabled})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestDeletePolicyRemovesResults() {
	ctx := context.Background()
	s.healthySignals()
	p := s.createPolicy(compliance.TypeEncryption, compliance.Rules{"requireTLS": true})

	_, err := s.service.CheckCompliance(ctx, "gdpr")
	s.Require().NoError(err)
	results, err := s.service.PolicyResults(ctx, p.ID)
	s.Require().NoError(err)
	s.Len(results, 1)

	s.Require().NoError(s.service.DeletePolicy(ctx, p.ID))
	_, err = s.service.GetPolicy(ctx, p.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.True(dErrors.HasCode(s.service.DeletePolicy(ctx, p.ID), dErrors.CodeNotFound))
}

// TestEncryptionPolicyScoresFully covers a fully encrypted system with TLS.
func (s *ServiceSuite) TestPolicyDeletedDuringCheckKeepsTheRun() {
	ctx := context.Background()
	enc := s.createPolicy(compliance.TypeEncryption, nil)
	access := s.createPolicy(compliance.TypeAccessControl, nil)

	var deleteErr error
	s.signals.EXPECT().EncryptionAtRest(gomock.Any()).DoAndReturn(func(context.Context) (bool, error) {
		deleteErr = s.service.DeletePolicy(ctx, access.ID)
		return true, nil
	})
	s.signals.EXPECT().EncryptionKeyBits(gomock.Any()).Return(256, nil)
	s.signals.EXPECT().TLSEnabled(gomock.Any()).Return(true, nil)
	s.signals.EXPECT().RoleGrants(gomock.Any()).Return([]string{"admin:audit:read"}, nil)
	s.signals.EXPECT().IdentityAuth(gomock.Any()).Return(true, nil)
	s.signals.EXPECT().SessionTracking(gomock.Any()).Return(true, nil)

	summary, err := s.service.CheckCompliance(ctx, "gdpr")
	s.Require().NoError(err)
	s.Require().NoError(deleteErr)
	s.Equal(2, summary.TotalPolicies)

	kept, err := s.store.ListCheckResults(ctx, enc.ID)
	s.Require().NoError(err)
	s.Len(kept, 1)
	dropped, err := s.store.ListCheckResults(ctx, access.ID)
	s.Require().NoError(err)
	s.Empty(dropped)

	latest, err := s.store.LatestScore(ctx, "gdpr")
	s.Require().NoError(err)
	s.Equal(summary.Score, latest.Score)
}

func (s *ServiceSuite) TestEncryptionPolicyScoresFully() {
	ctx := context.Background()
	s.healthySignals()
	p := s.createPolicy(compliance.TypeEncryption, compliance.Rules{"requireTLS": true, "minKeyLength": 256})

	summary, err := s.service.CheckCompliance(ctx, "gdpr")
	s.Require().NoError(err)
	s.Equal(1, summary.TotalPolicies)
	s.Equal(1, summary.Passed)
	s.Equal(100, summary.Score)
	s.Require().Len(summary.Checks, 1)
	s.Equal(p.ID, summary.Checks[0].PolicyID)
	s.Equal(compliance.StatusPassed, summary.Checks[0].Status)
	s.Equal(100, summary.Checks[0].Score)

	latest, err := s.service.ComplianceScore(ctx, "gdpr")
	s.Require().NoError(err)
	s.True(latest.HasData)
	s.Equal(100, latest.Latest.Score)
}

func (s *ServiceSuite) TestCheckWithoutPolicies() {
	ctx := context.Background()

	score, err := s.service.ComplianceScore(ctx, "soc2")
	s.Require().NoError(err)
	s.False(score.HasData)
	s.Equal("no compliance checks run yet", score.Message)

	summary, err := s.service.CheckCompliance(ctx, "soc2")
	s.Require().NoError(err)
	s.Zero(summary.Score)
	s.Zero(summary.TotalPolicies)
	s.Require().Len(summary.Recommendations, 1)
	s.Contains(summary.Recommendations[0], "No policies configured")

	hist, err := s.service.ScoreHistory(ctx, "soc2", 0)
	s.Require().NoError(err)
	s.Equal(30, hist.Days)
	s.Len(hist.Entries, 1)
}

func (s *ServiceSuite) TestDisabledPoliciesAreSkipped() {
	ctx := context.Background()
	s.healthySignals()
	s.createPolicy(compliance.TypeEncryption, nil)
	off := false
	_, err := s.service.CreatePolicy(ctx, compliance.CreatePolicyRequest{
		Name: "off", Type: compliance.TypeRetention, Framework: "gdpr", Enabled: &off,
	})
	s.Require().NoError(err)

	summary, err := s.service.CheckCompliance(ctx, "gdpr")
	s.Require().NoError(err)
	s.Equal(1, summary.TotalPolicies)
}

func (s *ServiceSuite) TestUnknownFramework() {
	_, err := s.service.CheckCompliance(context.Background(), "pci")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	_, err = s.service.ScoreHistory(context.Background(), "pci", 30)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestScoreHistoryTrend() {
	ctx := context.Background()
	s.healthySignals()
	p := s.createPolicy(compliance.TypeRetention, nil)

	// first run: no maxAgeDays, retention scores 0
	_, err := s.service.CheckCompliance(ctx, "gdpr")
	s.Require().NoError(err)

	s.now = s.now.Add(24 * time.Hour)
	_, err = s.service.UpdatePolicy(ctx, p.ID, compliance.PolicyUpdate{Rules: compliance.Rules{"maxAgeDays": 365}})
	s.Require().NoError(err)
	_, err = s.service.CheckCompliance(ctx, "gdpr")
	s.Require().NoError(err)

	hist, err := s.service.ScoreHistory(ctx, "gdpr", 7)
	s.Require().NoError(err)
	s.Require().Len(hist.Entries, 2)
	s.Less(hist.Entries[0].Score, hist.Entries[1].Score)
	s.Equal(compliance.TrendImproving, hist.Trend)
}

func (s *ServiceSuite) TestGenerateReport() {
	ctx := context.Background()
	s.healthySignals()
	created, err := s.service.SeedDefaultPolicies(ctx, "hipaa")
	s.Require().NoError(err)
	s.Equal(5, created)

	again, err := s.service.SeedDefaultPolicies(ctx, "hipaa")
	s.Require().NoError(err)
	s.Zero(again)

	report, err := s.service.GenerateReport(ctx, "hipaa", compliance.Period{})
	s.Require().NoError(err)
	s.Equal("HIPAA Compliance Report 2026-05-16 to 2026-06-15", report.Title)
	s.Len(report.Content.Findings, 5)
	s.Len(report.Content.Evidence, 5)
	s.Len(report.Content.Policies, 5)
	s.Len(report.Content.ScoreHistory, 1)
	s.Equal(report.Summary, report.Content.ExecutiveSummary)

	got, err := s.service.GetReport(ctx, report.ID)
	s.Require().NoError(err)
	s.Equal(report.ID, got.ID)

	list, err := s.service.ListReports(ctx, "hipaa")
	s.Require().NoError(err)
	s.Len(list, 1)

	_, err = s.service.GetReport(ctx, "missing")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.GenerateReport(ctx, "hipaa", compliance.Period{Start: s.now, End: s.now.Add(-time.Hour)})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestProbeFailureYieldsUnknownEvidence() {
	ctx := context.Background()
	probeErr := errors.New("kms unreachable")
	s.signals.EXPECT().EncryptionAtRest(gomock.Any()).Return(false, probeErr)
	s.signals.EXPECT().EncryptionKeyBits(gomock.Any()).Return(0, probeErr)
	s.signals.EXPECT().TLSEnabled(gomock.Any()).Return(true, nil)
	s.createPolicy(compliance.TypeEncryption, compliance.Rules{"requireTLS": true})

	summary, err := s.service.CheckCompliance(ctx, "gdpr")
	s.Require().NoError(err)
	s.Require().Len(summary.Checks, 1)
	check := summary.Checks[0]
	s.Equal(compliance.StatusFailed, check.Status)
	s.Equal(33, check.Score)
	s.Equal(compliance.EvidenceUnknown, check.Evidence[0].Status)
}

// StoreErrorSuite drives the service against a mocked store.
type StoreErrorSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	store   *mocks.MockStore
	service *compliance.Service
}

func TestStoreErrorSuite(t *testing.T) {
	suite.Run(t, new(StoreErrorSuite))
}

func (s *StoreErrorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	var err error
	s.service, err = compliance.New(s.store, compliance.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)
}

func (s *StoreErrorSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *StoreErrorSuite) TestNotFoundMapsToDomainCode() {
	s.store.EXPECT().GetPolicy(gomock.Any(), "p1").Return(nil, sentinel.ErrNotFound)
	_, err := s.service.GetPolicy(context.Background(), "p1")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *StoreErrorSuite) TestInfrastructureErrorIsInternal() {
	s.store.EXPECT().ListPolicies(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))
	_, err := s.service.ListPolicies(context.Background(), compliance.PolicyFilter{})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *StoreErrorSuite) TestFailedRecordRunFailsTheCheck() {
	p := compliance.Policy{ID: "p1", Name: "keys", Type: compliance.TypeRetention, Framework: "gdpr", Enabled: true,
		Rules: compliance.Rules{"maxAgeDays": 30}}
	s.store.EXPECT().LatestScore(gomock.Any(), compliance.Framework("gdpr")).Return(nil, sentinel.ErrNotFound)
	s.store.EXPECT().ListPolicies(gomock.Any(), gomock.Any()).Return([]compliance.Policy{p}, nil)
	s.store.EXPECT().RecordRun(gomock.Any(), gomock.Len(1), gomock.Any()).Return(errors.New("tx aborted"))

	_, err := s.service.CheckCompliance(context.Background(), "gdpr")
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *StoreErrorSuite) TestLatestScoreErrorIsUnknownRecentCheck() {
	p := compliance.Policy{ID: "p1", Name: "trail", Type: compliance.TypeAuditTrail, Framework: "gdpr", Enabled: true}
	s.store.EXPECT().LatestScore(gomock.Any(), compliance.Framework("gdpr")).Return(nil, errors.New("timeout"))
	s.store.EXPECT().ListPolicies(gomock.Any(), gomock.Any()).Return([]compliance.Policy{p}, nil)
	s.store.EXPECT().RecordRun(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	summary, err := s.service.CheckCompliance(context.Background(), "gdpr")
	s.Require().NoError(err)
	var recent compliance.EvidenceStatus
	for _, ev := range summary.Checks[0].Evidence {
		if ev.Check == "recent_check" {
			recent = ev.Status
		}
	}
	s.Equal(compliance.EvidenceUnknown, recent)
}
