// Package compliance evaluates policies per regulatory framework, scores them
// and keeps the score history and reports.
package compliance

import (
	"strings"
	"time"

	"custodian/pkg/platform/validation"
)

type PolicyType string

const (
	TypeRetention          PolicyType = "retention"
	TypeAccessControl      PolicyType = "access_control"
	TypeEncryption         PolicyType = "encryption"
	TypeDataClassification PolicyType = "data_classification"
	TypeAuditTrail         PolicyType = "audit_trail"
)

// PolicyTypes lists every type a policy may be created with.
var PolicyTypes = []PolicyType{
	TypeRetention,
	TypeAccessControl,
	TypeEncryption,
	TypeDataClassification,
	TypeAuditTrail,
}

type Framework string

// DefaultFrameworks is used when no framework list is configured.
var DefaultFrameworks = []Framework{"gdpr", "soc2", "hipaa", "iso27001"}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Rules holds handler-specific parameters. It is stored as a JSON object.
type Rules map[string]any

// Policy is a named rule set for one type under one framework.
type Policy struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Type        PolicyType `json:"type"`
	Framework   Framework  `json:"framework"`
	Rules       Rules      `json:"rules"`
	Enabled     bool       `json:"enabled"`
	Severity    Severity   `json:"severity"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreatePolicyRequest is the input of CreatePolicy. Enabled defaults to true
// and Severity to medium.
type CreatePolicyRequest struct {
	Name        string     `json:"name" validate:"required,notblank,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	Type        PolicyType `json:"type" validate:"required"`
	Framework   Framework  `json:"framework" validate:"required"`
	Rules       Rules      `json:"rules"`
	Enabled     *bool      `json:"enabled"`
	Severity    Severity   `json:"severity"`
}

func (r *CreatePolicyRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Framework = Framework(strings.ToLower(strings.TrimSpace(string(r.Framework))))
	if r.Severity == "" {
		r.Severity = SeverityMedium
	}
}

func (r *CreatePolicyRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	if err := validation.OneOf("type", r.Type, PolicyTypes); err != nil {
		return err
	}
	return validation.OneOf("severity", r.Severity, Severities)
}

// PolicyUpdate carries the fields to change. Nil fields are left alone; an
// update with no fields set is rejected.
type PolicyUpdate struct {
	Name        *string     `json:"name,omitempty"`
	Description *string     `json:"description,omitempty"`
	Rules       Rules       `json:"rules,omitempty"`
	Enabled     *bool       `json:"enabled,omitempty"`
	Severity    *Severity   `json:"severity,omitempty"`
	Type        *PolicyType `json:"type,omitempty"`
	Framework   *Framework  `json:"framework,omitempty"`
}

func (u PolicyUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Rules == nil &&
		u.Enabled == nil && u.Severity == nil && u.Type == nil && u.Framework == nil
}

// PolicyFilter narrows ListPolicies. Zero fields match everything.
type PolicyFilter struct {
	Framework Framework
	Type      PolicyType
	Enabled   *bool
}

func (f PolicyFilter) Matches(p Policy) bool {
	if f.Framework != "" && p.Framework != f.Framework {
		return false
	}
	if f.Type != "" && p.Type != f.Type {
		return false
	}
	if f.Enabled != nil && p.Enabled != *f.Enabled {
		return false
	}
	return true
}

type CheckStatus string

const (
	StatusPassed CheckStatus = "passed"
	StatusFailed CheckStatus = "failed"
)

// EvidenceStatus is the outcome of one sub-check.
type EvidenceStatus string

const (
	EvidencePass    EvidenceStatus = "pass"
	EvidenceFail    EvidenceStatus = "fail"
	EvidenceUnknown EvidenceStatus = "unknown"
)

// Evidence records one sub-check and what was observed.
type Evidence struct {
	Check  string         `json:"check"`
	Status EvidenceStatus `json:"status"`
	Detail string         `json:"detail"`
}

// CheckResult is the outcome of evaluating one policy in one run.
type CheckResult struct {
	ID              string         `json:"id"`
	Framework       Framework      `json:"framework"`
	PolicyID        string         `json:"policy_id"`
	PolicyName      string         `json:"policy_name"`
	PolicyType      PolicyType     `json:"policy_type"`
	Status          CheckStatus    `json:"status"`
	Score           int            `json:"score"`
	Details         map[string]any `json:"details"`
	Evidence        []Evidence     `json:"evidence"`
	Recommendations []string       `json:"recommendations"`
	CheckedAt       time.Time      `json:"checked_at"`
}

// CheckSummary is returned by CheckCompliance.
type CheckSummary struct {
	Framework       Framework     `json:"framework"`
	Score           int           `json:"score"`
	TotalPolicies   int           `json:"total_policies"`
	Passed          int           `json:"passed"`
	Failed          int           `json:"failed"`
	Checks          []CheckResult `json:"checks"`
	Recommendations []string      `json:"recommendations"`
	CheckedAt       time.Time     `json:"checked_at"`
}

// CheckDigest is the per-check summary stored with each history row.
type CheckDigest struct {
	PolicyID   string      `json:"policy_id"`
	PolicyName string      `json:"policy_name"`
	PolicyType PolicyType  `json:"policy_type"`
	Status     CheckStatus `json:"status"`
	Score      int         `json:"score"`
}

// ScoreHistory is one row per check run per framework.
type ScoreHistory struct {
	ID            string        `json:"id"`
	Framework     Framework     `json:"framework"`
	Score         int           `json:"score"`
	TotalPolicies int           `json:"total_policies"`
	Passed        int           `json:"passed"`
	Failed        int           `json:"failed"`
	Summary       []CheckDigest `json:"summary"`
	RecordedAt    time.Time     `json:"recorded_at"`
}

// ScoreResult is the latest score of a framework.
type ScoreResult struct {
	Framework Framework     `json:"framework"`
	HasData   bool          `json:"has_data"`
	Message   string        `json:"message,omitempty"`
	Latest    *ScoreHistory `json:"latest,omitempty"`
}

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// HistoryResult is the ascending history within a window plus its trend.
type HistoryResult struct {
	Framework Framework      `json:"framework"`
	Days      int            `json:"days"`
	Entries   []ScoreHistory `json:"entries"`
	Trend     Trend          `json:"trend"`
}

// Period is the date range a report covers. Zero values default to the
// trailing 30 days.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Finding is one report line per evaluated policy.
type Finding struct {
	PolicyID        string      `json:"policy_id"`
	PolicyName      string      `json:"policy_name"`
	PolicyType      PolicyType  `json:"policy_type"`
	Severity        string      `json:"severity"`
	Status          CheckStatus `json:"status"`
	Score           int         `json:"score"`
	Recommendations []string    `json:"recommendations,omitempty"`
}

// ReportContent is the structured body of a report.
type ReportContent struct {
	ExecutiveSummary string         `json:"executive_summary"`
	Findings         []Finding      `json:"findings"`
	Evidence         []CheckResult  `json:"evidence"`
	Recommendations  []string       `json:"recommendations"`
	ScoreHistory     []ScoreHistory `json:"score_history"`
	Policies         []Policy       `json:"policies"`
	Trend            Trend          `json:"trend"`
}

// Report is an immutable generated artifact.
type Report struct {
	ID          string        `json:"id"`
	Framework   Framework     `json:"framework"`
	Title       string        `json:"title"`
	Summary     string        `json:"summary"`
	Score       int           `json:"score"`
	Content     ReportContent `json:"content"`
	PeriodStart time.Time     `json:"period_start"`
	PeriodEnd   time.Time     `json:"period_end"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// ReportSummary is the listing form of a report.
type ReportSummary struct {
	ID          string    `json:"id"`
	Framework   Framework `json:"framework"`
	Title       string    `json:"title"`
	Score       int       `json:"score"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	GeneratedAt time.Time `json:"generated_at"`
}
