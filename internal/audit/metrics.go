package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registered once per process; every Logger instance shares them.
var (
	entriesLogged = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custodian_audit_entries_logged_total",
		Help: "Audit entries accepted by Log, by category and risk level",
	}, []string{"category", "risk"})

	persistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "custodian_audit_persist_failures_total",
		Help: "Entries that reached only the in-memory buffer because the persistent backend failed",
	})

	persistSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "custodian_audit_persist_skipped_total",
		Help: "Entries not sent to the persistent backend because its circuit was open",
	})

	persistDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "custodian_audit_persist_duration_seconds",
		Help:    "Time taken to persist an audit entry to the primary backend",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	ringDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "custodian_audit_ring_dropped_total",
		Help: "Entries evicted from the in-memory ring buffer to make room",
	})

	highRiskAlerts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "custodian_audit_high_risk_alerts_total",
		Help: "High-risk notifications delivered to subscribers",
	})

	retentionDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "custodian_audit_retention_deleted_total",
		Help: "Entries deleted by retention sweeps",
	})

	retentionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "custodian_audit_retention_duration_seconds",
		Help:    "Duration of retention sweeps",
		Buckets: prometheus.DefBuckets,
	})

	hookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custodian_audit_hook_events_total",
		Help: "Lifecycle hook events received, by outcome",
	}, []string{"outcome"})
)
