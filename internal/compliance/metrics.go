package compliance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checkRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custodian_compliance_check_runs_total",
		Help: "Compliance check runs, by framework",
	}, []string{"framework"})
	checkDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "custodian_compliance_check_duration_seconds",
		Help:    "Duration of a compliance check run",
		Buckets: prometheus.DefBuckets,
	}, []string{"framework"})
	frameworkScore = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "custodian_compliance_score",
		Help: "Latest weighted compliance score, by framework",
	}, []string{"framework"})
	policyResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custodian_compliance_policy_results_total",
		Help: "Policy evaluations, by policy type and status",
	}, []string{"type", "status"})
	reportsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custodian_compliance_reports_total",
		Help: "Generated compliance reports, by framework",
	}, []string{"framework"})
)
