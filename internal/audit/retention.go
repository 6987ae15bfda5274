package audit

import (
	"context"
	"time"

	dErrors "custodian/pkg/domain-errors"
)

const defaultHighRiskRetentionDays = 365

// SweepLocker serializes retention sweeps. Acquire blocks until the lock is
// held or ctx is done and returns the function that releases it.
type SweepLocker interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// LocalSweepLocker serializes sweeps within one process.
type LocalSweepLocker struct {
	sem chan struct{}
}

func NewLocalSweepLocker() *LocalSweepLocker {
	return &LocalSweepLocker{sem: make(chan struct{}, 1)}
}

func (s *LocalSweepLocker) Acquire(ctx context.Context) (func(), error) {
	select {
	case s.sem <- struct{}{}:
		return func() { <-s.sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ApplyRetention deletes entries past their age limit, then trims the oldest
// entries beyond MaxRecords. Cutoffs and the sequence watermark are fixed when
// the sweep starts, so entries logged while it runs are never deleted.
// Running it twice with no new entries deletes nothing the second time.
func (l *Logger) ApplyRetention(ctx context.Context, opts RetentionOptions) (RetentionResult, error) {
	if err := l.checkOpen(); err != nil {
		return RetentionResult{}, err
	}
	if opts.RetentionDays <= 0 {
		return RetentionResult{}, dErrors.New(dErrors.CodeValidation, "retention_days must be positive")
	}
	if opts.MaxRecords < 0 {
		return RetentionResult{}, dErrors.New(dErrors.CodeValidation, "max_records must not be negative")
	}
	if opts.HighRiskRetentionDays < 0 {
		return RetentionResult{}, dErrors.New(dErrors.CodeValidation, "high_risk_retention_days must not be negative")
	}
	if opts.KeepHighRisk && opts.HighRiskRetentionDays == 0 {
		opts.HighRiskRetentionDays = defaultHighRiskRetentionDays
	}

	release, err := l.locker.Acquire(ctx)
	if err != nil {
		return RetentionResult{}, dErrors.Wrap(err, dErrors.CodeTimeout, "acquire retention sweep lock")
	}
	defer release()

	started := time.Now()
	defer func() { retentionDuration.Observe(time.Since(started).Seconds()) }()

	result, err := l.sweep(ctx, l.primary, opts)
	if err != nil {
		return RetentionResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "apply retention")
	}
	if l.persistent() {
		// The mirror follows the same policy so it never serves expired entries.
		if _, err := l.sweep(ctx, l.cache, opts); err != nil {
			l.log.WarnContext(ctx, "retention sweep of ring buffer failed", "error", err)
		}
	}

	retentionDeleted.Add(float64(result.Deleted))
	l.log.InfoContext(ctx, "audit retention sweep finished",
		"deleted", result.Deleted,
		"remaining", result.Remaining,
		"retention_days", opts.RetentionDays,
		"keep_high_risk", opts.KeepHighRisk,
	)
	return result, nil
}

func (l *Logger) sweep(ctx context.Context, b Backend, opts RetentionOptions) (RetentionResult, error) {
	now := l.now().UTC()
	watermark, err := b.MaxSeq(ctx)
	if err != nil {
		return RetentionResult{}, err
	}
	cutoffs := Cutoffs{
		Before:         now.AddDate(0, 0, -opts.RetentionDays),
		KeepHighRisk:   opts.KeepHighRisk,
		HighRiskBefore: now.AddDate(0, 0, -opts.HighRiskRetentionDays),
		MaxSeq:         watermark,
	}

	deleted, err := b.DeleteExpired(ctx, cutoffs)
	if err != nil {
		return RetentionResult{}, err
	}
	if opts.MaxRecords > 0 {
		trimmed, err := b.TrimOldest(ctx, opts.MaxRecords, watermark)
		if err != nil {
			return RetentionResult{Deleted: deleted}, err
		}
		deleted += trimmed
	}

	remaining, err := b.Count(ctx)
	if err != nil {
		return RetentionResult{Deleted: deleted}, err
	}
	return RetentionResult{Deleted: deleted, Remaining: remaining}, nil
}
