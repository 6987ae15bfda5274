package compliance

import (
	"context"
	"time"
)

//go:generate mockgen -source=store.go -destination=mocks/store_mock.go -package=mocks

// Store persists policies, check runs and reports.
// Error Contract:
//   - GetPolicy, UpdatePolicy, DeletePolicy, LatestScore and GetReport return
//     sentinel.ErrNotFound (optionally wrapped) for unknown ids or empty history
//   - RecordRun writes the check results and the history row atomically,
//     dropping results whose policy no longer exists
//   - ListPolicies orders by creation time; ScoreHistory ascending by record time
type Store interface {
	CreatePolicy(ctx context.Context, p *Policy) error
	UpdatePolicy(ctx context.Context, p *Policy) error
	DeletePolicy(ctx context.Context, id string) error
	GetPolicy(ctx context.Context, id string) (*Policy, error)
	ListPolicies(ctx context.Context, filter PolicyFilter) ([]Policy, error)

	RecordRun(ctx context.Context, results []CheckResult, history *ScoreHistory) error
	ListCheckResults(ctx context.Context, policyID string) ([]CheckResult, error)
	LatestScore(ctx context.Context, framework Framework) (*ScoreHistory, error)
	ScoreHistory(ctx context.Context, framework Framework, since time.Time) ([]ScoreHistory, error)

	SaveReport(ctx context.Context, r *Report) error
	GetReport(ctx context.Context, id string) (*Report, error)
	ListReports(ctx context.Context, framework Framework) ([]ReportSummary, error)
}
