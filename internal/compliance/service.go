package compliance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"custodian/internal/audit"
	dErrors "custodian/pkg/domain-errors"
	"custodian/pkg/platform/sentinel"
	"custodian/pkg/platform/validation"
)

const (
	defaultMaxParallel = 4
	defaultHistoryDays = 30
	maxHistoryDays     = 3650
)

// AuditSink receives correlated audit events. *audit.Logger satisfies it.
type AuditSink interface {
	Log(ctx context.Context, category audit.Category, operation string, details map[string]any, opts ...audit.EventOption) (audit.LogResult, error)
}

type Option func(*Service)

func WithSystemSignals(s SystemSignals) Option {
	return func(svc *Service) { svc.system = s }
}

// WithAuditSignals lets audit_trail and retention checks read the logger.
func WithAuditSignals(a AuditSignals) Option {
	return func(svc *Service) { svc.auditSignals = a }
}

func WithAuditSink(a AuditSink) Option {
	return func(svc *Service) { svc.sink = a }
}

// WithFrameworks replaces the accepted framework set.
func WithFrameworks(frameworks ...Framework) Option {
	return func(svc *Service) {
		if len(frameworks) > 0 {
			svc.frameworks = frameworks
		}
	}
}

// WithMaxParallel bounds how many policies are evaluated at once.
func WithMaxParallel(n int) Option {
	return func(svc *Service) {
		if n > 0 {
			svc.maxParallel = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(svc *Service) { svc.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

func WithTracer(t trace.Tracer) Option {
	return func(svc *Service) { svc.tracer = t }
}

// Service is the compliance policy engine.
type Service struct {
	store        Store
	system       SystemSignals
	auditSignals AuditSignals
	sink         AuditSink
	frameworks   []Framework
	maxParallel  int
	logger       *slog.Logger
	now          func() time.Time
	tracer       trace.Tracer
}

// New creates the engine. A store is required.
func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "compliance store is required")
	}
	svc := &Service{
		store:       store,
		frameworks:  DefaultFrameworks,
		maxParallel: defaultMaxParallel,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.tracer == nil {
		svc.tracer = otel.Tracer("custodian/compliance")
	}
	return svc, nil
}

// Frameworks returns the accepted framework set.
func (s *Service) Frameworks() []Framework {
	return append([]Framework(nil), s.frameworks...)
}

func (s *Service) validateFramework(f Framework) error {
	return validation.OneOf("framework", f, s.frameworks)
}

func normalizeFramework(f Framework) Framework {
	return Framework(strings.ToLower(strings.TrimSpace(string(f))))
}

func validateRules(r Rules) error {
	if _, err := json.Marshal(r); err != nil {
		return dErrors.New(dErrors.CodeValidation, "rules must be a JSON object")
	}
	return nil
}

func (s *Service) CreatePolicy(ctx context.Context, req CreatePolicyRequest) (*Policy, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.validateFramework(req.Framework); err != nil {
		return nil, err
	}
	if err := validateRules(req.Rules); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	p := &Policy{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Framework:   req.Framework,
		Rules:       req.Rules.Clone(),
		Enabled:     enabled,
		Severity:    req.Severity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreatePolicy(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create policy")
	}

	s.audit(ctx, "compliance_policy_create", map[string]any{
		"policy_id": p.ID, "type": p.Type, "framework": p.Framework,
	})
	return p, nil
}

func (s *Service) UpdatePolicy(ctx context.Context, id string, u PolicyUpdate) (*Policy, error) {
	if u.Empty() {
		return nil, dErrors.New(dErrors.CodeValidation, "no fields to update")
	}
	p, err := s.GetPolicy(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "name must not be blank")
		}
		if err := validation.CheckStringLength("name", name, validation.MaxNameLength); err != nil {
			return nil, err
		}
		p.Name = name
	}
	if u.Description != nil {
		if err := validation.CheckStringLength("description", *u.Description, validation.MaxDescriptionLength); err != nil {
			return nil, err
		}
		p.Description = *u.Description
	}
	if u.Rules != nil {
		if err := validateRules(u.Rules); err != nil {
			return nil, err
		}
		p.Rules = u.Rules.Clone()
	}
	if u.Enabled != nil {
		p.Enabled = *u.Enabled
	}
	if u.Severity != nil {
		if err := validation.OneOf("severity", *u.Severity, Severities); err != nil {
			return nil, err
		}
		p.Severity = *u.Severity
	}
	if u.Type != nil {
		if err := validation.OneOf("type", *u.Type, PolicyTypes); err != nil {
			return nil, err
		}
		p.Type = *u.Type
	}
	if u.Framework != nil {
		f := normalizeFramework(*u.Framework)
		if err := s.validateFramework(f); err != nil {
			return nil, err
		}
		p.Framework = f
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.store.UpdatePolicy(ctx, p); err != nil {
		return nil, mapStoreErr(err, "policy not found", "update policy")
	}
	s.audit(ctx, "compliance_policy_update", map[string]any{"policy_id": p.ID})
	return p, nil
}

// DeletePolicy removes a policy and its check results.
func (s *Service) DeletePolicy(ctx context.Context, id string) error {
	if err := s.store.DeletePolicy(ctx, id); err != nil {
		return mapStoreErr(err, "policy not found", "delete policy")
	}
	s.audit(ctx, "compliance_policy_delete", map[string]any{"policy_id": id})
	return nil
}

func (s *Service) GetPolicy(ctx context.Context, id string) (*Policy, error) {
	p, err := s.store.GetPolicy(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err, "policy not found", "get policy")
	}
	return p, nil
}

func (s *Service) ListPolicies(ctx context.Context, filter PolicyFilter) ([]Policy, error) {
	filter.Framework = normalizeFramework(filter.Framework)
	if filter.Type != "" {
		if err := validation.OneOf("type", filter.Type, PolicyTypes); err != nil {
			return nil, err
		}
	}
	policies, err := s.store.ListPolicies(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list policies")
	}
	return policies, nil
}

// PolicyResults returns the recorded check results of one policy, newest first.
func (s *Service) PolicyResults(ctx context.Context, policyID string) ([]CheckResult, error) {
	if _, err := s.GetPolicy(ctx, policyID); err != nil {
		return nil, err
	}
	results, err := s.store.ListCheckResults(ctx, policyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list check results")
	}
	return results, nil
}

// CheckCompliance evaluates every enabled policy of framework, records one
// result per policy and one history row for the run.
func (s *Service) CheckCompliance(ctx context.Context, framework Framework) (summary *CheckSummary, err error) {
	framework = normalizeFramework(framework)
	if err := s.validateFramework(framework); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "compliance.check",
		trace.WithAttributes(attribute.String("compliance.framework", string(framework))))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	started := time.Now()
	now := s.now().UTC()
	e := env{system: s.system, audit: s.auditSignals, now: now}
	switch last, err := s.store.LatestScore(ctx, framework); {
	case err == nil:
		e.lastCheck, e.hasLastCheck = last.RecordedAt, true
	case !errors.Is(err, sentinel.ErrNotFound):
		e.lastCheckErr = err
	}

	enabled := true
	policies, err := s.store.ListPolicies(ctx, PolicyFilter{Framework: framework, Enabled: &enabled})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list policies")
	}

	results, err := s.evaluate(ctx, policies, e)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "evaluate policies")
	}

	summary = &CheckSummary{
		Framework:     framework,
		Score:         WeightedScore(results),
		TotalPolicies: len(results),
		Checks:        results,
		CheckedAt:     now,
	}
	var recs []string
	digests := make([]CheckDigest, 0, len(results))
	for _, r := range results {
		if r.Status == StatusPassed {
			summary.Passed++
		} else {
			summary.Failed++
		}
		recs = append(recs, r.Recommendations...)
		digests = append(digests, CheckDigest{
			PolicyID: r.PolicyID, PolicyName: r.PolicyName, PolicyType: r.PolicyType,
			Status: r.Status, Score: r.Score,
		})
	}
	if len(results) == 0 {
		recs = []string{fmt.Sprintf("No policies configured for %s: create policies to evaluate compliance", frameworkLabel(framework))}
	}
	summary.Recommendations = dedupe(recs)

	history := &ScoreHistory{
		ID:            uuid.NewString(),
		Framework:     framework,
		Score:         summary.Score,
		TotalPolicies: summary.TotalPolicies,
		Passed:        summary.Passed,
		Failed:        summary.Failed,
		Summary:       digests,
		RecordedAt:    now,
	}
	if err := s.store.RecordRun(ctx, results, history); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "record compliance run")
	}

	checkRuns.WithLabelValues(string(framework)).Inc()
	checkDuration.WithLabelValues(string(framework)).Observe(time.Since(started).Seconds())
	frameworkScore.WithLabelValues(string(framework)).Set(float64(summary.Score))
	span.SetAttributes(
		attribute.Int("compliance.score", summary.Score),
		attribute.Int("compliance.policies", summary.TotalPolicies),
	)

	s.logger.InfoContext(ctx, "compliance check completed",
		"framework", framework,
		"score", summary.Score,
		"passed", summary.Passed,
		"failed", summary.Failed,
	)
	s.audit(ctx, "compliance_check_completed", map[string]any{
		"framework": framework, "score": summary.Score,
		"passed": summary.Passed, "failed": summary.Failed,
	})
	return summary, nil
}

// evaluate runs the handlers concurrently. Results keep policy order.
func (s *Service) evaluate(ctx context.Context, policies []Policy, e env) ([]CheckResult, error) {
	results := make([]CheckResult, len(policies))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)

	for i, p := range policies {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out := handlerFor(p.Type).evaluate(gctx, p, e)
			status := StatusFailed
			if out.Passed {
				status = StatusPassed
			}
			policyResults.WithLabelValues(string(p.Type), string(status)).Inc()
			// each goroutine owns results[i]
			results[i] = CheckResult{
				ID:              uuid.NewString(),
				Framework:       p.Framework,
				PolicyID:        p.ID,
				PolicyName:      p.Name,
				PolicyType:      p.Type,
				Status:          status,
				Score:           clampScore(out.Score),
				Details:         out.Details,
				Evidence:        out.Evidence,
				Recommendations: nonNil(out.Recommendations),
				CheckedAt:       e.now,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ComplianceScore returns the latest recorded score of framework.
func (s *Service) ComplianceScore(ctx context.Context, framework Framework) (*ScoreResult, error) {
	framework = normalizeFramework(framework)
	if err := s.validateFramework(framework); err != nil {
		return nil, err
	}
	latest, err := s.store.LatestScore(ctx, framework)
	if errors.Is(err, sentinel.ErrNotFound) {
		return &ScoreResult{Framework: framework, HasData: false, Message: "no compliance checks run yet"}, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get latest score")
	}
	return &ScoreResult{Framework: framework, HasData: true, Latest: latest}, nil
}

// ScoreHistory returns the history of the trailing days in ascending order
// with its trend. days <= 0 selects 30.
func (s *Service) ScoreHistory(ctx context.Context, framework Framework, days int) (*HistoryResult, error) {
	framework = normalizeFramework(framework)
	if err := s.validateFramework(framework); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = defaultHistoryDays
	}
	if days > maxHistoryDays {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("days must be at most %d", maxHistoryDays))
	}
	entries, err := s.history(ctx, framework, days)
	if err != nil {
		return nil, err
	}
	return &HistoryResult{Framework: framework, Days: days, Entries: entries, Trend: TrendOf(entries)}, nil
}

func (s *Service) history(ctx context.Context, framework Framework, days int) ([]ScoreHistory, error) {
	since := s.now().UTC().AddDate(0, 0, -days)
	entries, err := s.store.ScoreHistory(ctx, framework, since)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get score history")
	}
	if entries == nil {
		entries = []ScoreHistory{}
	}
	return entries, nil
}

// GenerateReport runs a fresh check and persists a report built from it, the
// last 90 days of history and the current policies.
func (s *Service) GenerateReport(ctx context.Context, framework Framework, period Period) (report *Report, err error) {
	framework = normalizeFramework(framework)
	if err := s.validateFramework(framework); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if period.End.IsZero() {
		period.End = now
	}
	if period.Start.IsZero() {
		period.Start = period.End.AddDate(0, 0, -defaultPeriodDays)
	}
	if period.Start.After(period.End) {
		return nil, dErrors.New(dErrors.CodeValidation, "period start must not be after period end")
	}

	ctx, span := s.tracer.Start(ctx, "compliance.report",
		trace.WithAttributes(attribute.String("compliance.framework", string(framework))))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	summary, err := s.CheckCompliance(ctx, framework)
	if err != nil {
		return nil, err
	}
	history, err := s.history(ctx, framework, reportHistoryDays)
	if err != nil {
		return nil, err
	}
	policies, err := s.ListPolicies(ctx, PolicyFilter{Framework: framework})
	if err != nil {
		return nil, err
	}
	trend := TrendOf(history)
	exec := executiveSummary(*summary, trend)

	report = &Report{
		ID:        uuid.NewString(),
		Framework: framework,
		Title:     reportTitle(framework, period),
		Summary:   exec,
		Score:     summary.Score,
		Content: ReportContent{
			ExecutiveSummary: exec,
			Findings:         findings(summary.Checks),
			Evidence:         summary.Checks,
			Recommendations:  summary.Recommendations,
			ScoreHistory:     history,
			Policies:         policies,
			Trend:            trend,
		},
		PeriodStart: period.Start.UTC(),
		PeriodEnd:   period.End.UTC(),
		GeneratedAt: now,
	}
	if err := s.store.SaveReport(ctx, report); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "save report")
	}

	reportsGenerated.WithLabelValues(string(framework)).Inc()
	s.audit(ctx, "compliance_report_generated", map[string]any{
		"report_id": report.ID, "framework": framework, "score": report.Score,
	})
	return report, nil
}

func (s *Service) GetReport(ctx context.Context, id string) (*Report, error) {
	r, err := s.store.GetReport(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err, "report not found", "get report")
	}
	return r, nil
}

// ListReports returns report summaries, newest first. An empty framework
// lists all.
func (s *Service) ListReports(ctx context.Context, framework Framework) ([]ReportSummary, error) {
	framework = normalizeFramework(framework)
	if framework != "" {
		if err := s.validateFramework(framework); err != nil {
			return nil, err
		}
	}
	reports, err := s.store.ListReports(ctx, framework)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list reports")
	}
	return reports, nil
}

// defaultRules are the baseline rules installed by SeedDefaultPolicies.
var defaultRules = []struct {
	Type     PolicyType
	Name     string
	Severity Severity
	Rules    Rules
}{
	{TypeEncryption, "encryption baseline", SeverityCritical, Rules{"minKeyLength": 256, "requireTLS": true}},
	{TypeAccessControl, "access control baseline", SeverityHigh, Rules{}},
	{TypeAuditTrail, "audit trail baseline", SeverityHigh, Rules{"minRetentionDays": defaultMinRetentionDays}},
	{TypeRetention, "data retention baseline", SeverityMedium, Rules{"maxAgeDays": 365}},
	{TypeDataClassification, "data classification baseline", SeverityMedium, Rules{"minLabeledRatio": defaultMinLabeledRatio}},
}

// SeedDefaultPolicies installs one baseline policy per type when framework
// has no policies yet. It returns the number of policies created.
func (s *Service) SeedDefaultPolicies(ctx context.Context, framework Framework) (int, error) {
	framework = normalizeFramework(framework)
	if err := s.validateFramework(framework); err != nil {
		return 0, err
	}
	existing, err := s.ListPolicies(ctx, PolicyFilter{Framework: framework})
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	created := 0
	for _, d := range defaultRules {
		_, err := s.CreatePolicy(ctx, CreatePolicyRequest{
			Name:      fmt.Sprintf("%s %s", frameworkLabel(framework), d.Name),
			Type:      d.Type,
			Framework: framework,
			Rules:     d.Rules,
			Severity:  d.Severity,
		})
		if err != nil {
			return created, err
		}
		created++
	}
	s.logger.InfoContext(ctx, "seeded default compliance policies", "framework", framework, "count", created)
	return created, nil
}

func (s *Service) audit(ctx context.Context, operation string, details map[string]any) {
	if s.sink == nil {
		return
	}
	if _, err := s.sink.Log(ctx, audit.CategorySystem, operation, details, audit.Actor("compliance")); err != nil {
		s.logger.WarnContext(ctx, "audit event not recorded", "operation", operation, "error", err)
	}
}

func mapStoreErr(err error, notFoundMsg, op string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, notFoundMsg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, op)
}
