package dsr

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custodian_dsr_requests_created_total",
		Help: "Data-subject requests created, by type",
	}, []string{"type"})
	requestTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custodian_dsr_transitions_total",
		Help: "Data-subject request transitions, by target status",
	}, []string{"status"})
	approvalDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "custodian_dsr_approval_duration_seconds",
		Help:    "Time spent executing an approved request",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})
	tableFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custodian_dsr_table_failures_total",
		Help: "Personal-data table operations that failed, by action",
	}, []string{"action"})
	overdueRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "custodian_dsr_overdue_requests",
		Help: "Open requests past their deadline at the last scan",
	})
)
