// Package jobs runs the periodic maintenance work on cron schedules: the
// audit retention sweep, the overdue-DSR scan and connection pool gauges.
package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"custodian/internal/audit"
	"custodian/internal/dsr"
	"custodian/pkg/platform/privacy"
)

// Job is one unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Retention applies the audit retention policy.
type Retention interface {
	ApplyRetention(ctx context.Context, opts audit.RetentionOptions) (audit.RetentionResult, error)
}

// Overdue lists open DSR requests past their deadline.
type Overdue interface {
	OverdueRequests(ctx context.Context) ([]dsr.OverdueRequest, error)
}

// PoolStats publishes connection pool gauges.
type PoolStats interface {
	RecordPoolStats()
}

// RetentionSweep deletes expired audit entries.
type RetentionSweep struct {
	Audit   Retention
	Options audit.RetentionOptions
	Logger  *slog.Logger
}

func (RetentionSweep) Name() string { return "audit_retention" }

func (j RetentionSweep) Run(ctx context.Context) error {
	res, err := j.Audit.ApplyRetention(ctx, j.Options)
	if err != nil {
		return fmt.Errorf("apply retention: %w", err)
	}
	logger(j.Logger).InfoContext(ctx, "retention sweep completed",
		"deleted", res.Deleted,
		"remaining", res.Remaining,
	)
	return nil
}

// OverdueScan reports open DSR requests past their statutory deadline. The
// overdue gauge is refreshed as a side effect of the listing.
type OverdueScan struct {
	DSR    Overdue
	Logger *slog.Logger
}

func (OverdueScan) Name() string { return "dsr_overdue_scan" }

func (j OverdueScan) Run(ctx context.Context) error {
	overdue, err := j.DSR.OverdueRequests(ctx)
	if err != nil {
		return fmt.Errorf("list overdue requests: %w", err)
	}
	log := logger(j.Logger)
	for _, r := range overdue {
		log.WarnContext(ctx, "dsr request overdue",
			"request_id", r.ID,
			"type", r.Type,
			"status", r.Status,
			"subject", privacy.SubjectDigest(r.SubjectID),
			"days_overdue", r.DaysOverdue,
		)
	}
	if len(overdue) > 0 {
		log.WarnContext(ctx, "overdue dsr requests found", "count", len(overdue))
	}
	return nil
}

// PoolGauges refreshes connection pool metrics.
type PoolGauges struct {
	Pool PoolStats
}

func (PoolGauges) Name() string { return "pool_stats" }

func (j PoolGauges) Run(context.Context) error {
	j.Pool.RecordPoolStats()
	return nil
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
