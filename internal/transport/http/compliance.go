package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"custodian/internal/compliance"
	"custodian/pkg/platform/httputil"
)

//go:generate mockgen -source=compliance.go -destination=mocks/compliance_mock.go -package=mocks ComplianceService

// ComplianceService is the compliance engine as driven by the admin API.
type ComplianceService interface {
	Frameworks() []compliance.Framework
	CreatePolicy(ctx context.Context, req compliance.CreatePolicyRequest) (*compliance.Policy, error)
	UpdatePolicy(ctx context.Context, id string, u compliance.PolicyUpdate) (*compliance.Policy, error)
	DeletePolicy(ctx context.Context, id string) error
	GetPolicy(ctx context.Context, id string) (*compliance.Policy, error)
	ListPolicies(ctx context.Context, filter compliance.PolicyFilter) ([]compliance.Policy, error)
	PolicyResults(ctx context.Context, policyID string) ([]compliance.CheckResult, error)
	CheckCompliance(ctx context.Context, framework compliance.Framework) (*compliance.CheckSummary, error)
	ComplianceScore(ctx context.Context, framework compliance.Framework) (*compliance.ScoreResult, error)
	ScoreHistory(ctx context.Context, framework compliance.Framework, days int) (*compliance.HistoryResult, error)
	GenerateReport(ctx context.Context, framework compliance.Framework, period compliance.Period) (*compliance.Report, error)
	GetReport(ctx context.Context, id string) (*compliance.Report, error)
	ListReports(ctx context.Context, framework compliance.Framework) ([]compliance.ReportSummary, error)
	SeedDefaultPolicies(ctx context.Context, framework compliance.Framework) (int, error)
}

// ComplianceHandler serves /compliance.
type ComplianceHandler struct {
	svc    ComplianceService
	logger *slog.Logger
}

func NewComplianceHandler(svc ComplianceService, logger *slog.Logger) *ComplianceHandler {
	return &ComplianceHandler{svc: svc, logger: logger}
}

func (h *ComplianceHandler) Register(r chi.Router) {
	r.Route("/compliance", func(r chi.Router) {
		r.Get("/frameworks", h.handleFrameworks)
		r.Route("/frameworks/{framework}", func(r chi.Router) {
			r.Post("/check", h.handleCheck)
			r.Get("/score", h.handleScore)
			r.Get("/history", h.handleHistory)
			r.Post("/reports", h.handleGenerateReport)
			r.Post("/seed", h.handleSeed)
		})

		r.Post("/policies", h.handleCreatePolicy)
		r.Get("/policies", h.handleListPolicies)
		r.Get("/policies/{id}", h.handleGetPolicy)
		r.Patch("/policies/{id}", h.handleUpdatePolicy)
		r.Delete("/policies/{id}", h.handleDeletePolicy)
		r.Get("/policies/{id}/results", h.handlePolicyResults)

		r.Get("/reports", h.handleListReports)
		r.Get("/reports/{id}", h.handleGetReport)
	})
}

func framework(r *http.Request) compliance.Framework {
	return compliance.Framework(strings.ToLower(strings.TrimSpace(chi.URLParam(r, "framework"))))
}

func (h *ComplianceHandler) handleFrameworks(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteData(w, http.StatusOK, map[string]any{"frameworks": h.svc.Frameworks()})
}

func (h *ComplianceHandler) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeJSON[compliance.CreatePolicyRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}
	p, err := h.svc.CreatePolicy(ctx, *req)
	if err != nil {
		h.fail(ctx, w, "failed to create policy", err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, p)
}

func (h *ComplianceHandler) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	enabled, err := queryBool(q, "enabled")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	policies, err := h.svc.ListPolicies(ctx, compliance.PolicyFilter{
		Framework: compliance.Framework(strings.ToLower(queryString(q, "framework"))),
		Type:      compliance.PolicyType(queryString(q, "type")),
		Enabled:   enabled,
	})
	if err != nil {
		h.fail(ctx, w, "failed to list policies", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]any{"policies": policies, "count": len(policies)})
}

func (h *ComplianceHandler) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := h.svc.GetPolicy(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(ctx, w, "failed to get policy", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, p)
}

func (h *ComplianceHandler) handleUpdatePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, ok := httputil.DecodeJSON[compliance.PolicyUpdate](w, r, h.logger, ctx)
	if !ok {
		return
	}
	p, err := h.svc.UpdatePolicy(ctx, chi.URLParam(r, "id"), *u)
	if err != nil {
		h.fail(ctx, w, "failed to update policy", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, p)
}

func (h *ComplianceHandler) handleDeletePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := h.svc.DeletePolicy(ctx, id); err != nil {
		h.fail(ctx, w, "failed to delete policy", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]any{"deleted": id})
}

func (h *ComplianceHandler) handlePolicyResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	results, err := h.svc.PolicyResults(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(ctx, w, "failed to list policy results", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]any{"results": results, "count": len(results)})
}

func (h *ComplianceHandler) handleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	summary, err := h.svc.CheckCompliance(ctx, framework(r))
	if err != nil {
		h.fail(ctx, w, "compliance check failed", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, summary)
}

func (h *ComplianceHandler) handleScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	score, err := h.svc.ComplianceScore(ctx, framework(r))
	if err != nil {
		h.fail(ctx, w, "failed to get compliance score", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, score)
}

func (h *ComplianceHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	days, err := queryInt(r.URL.Query(), "days")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	history, err := h.svc.ScoreHistory(ctx, framework(r), days)
	if err != nil {
		h.fail(ctx, w, "failed to get score history", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, history)
}

type generateReportRequest struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

func (h *ComplianceHandler) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req generateReportRequest
	if !decodeOptional(w, r, h.logger, &req) {
		return
	}
	var period compliance.Period
	if req.Start != nil {
		period.Start = req.Start.UTC()
	}
	if req.End != nil {
		period.End = req.End.UTC()
	}
	report, err := h.svc.GenerateReport(ctx, framework(r), period)
	if err != nil {
		h.fail(ctx, w, "failed to generate report", err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, report)
}

func (h *ComplianceHandler) handleSeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f := framework(r)
	n, err := h.svc.SeedDefaultPolicies(ctx, f)
	if err != nil {
		h.fail(ctx, w, "failed to seed default policies", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]any{"framework": f, "created": n})
}

func (h *ComplianceHandler) handleListReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reports, err := h.svc.ListReports(ctx, compliance.Framework(strings.ToLower(queryString(r.URL.Query(), "framework"))))
	if err != nil {
		h.fail(ctx, w, "failed to list reports", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]any{"reports": reports, "count": len(reports)})
}

func (h *ComplianceHandler) handleGetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report, err := h.svc.GetReport(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(ctx, w, "failed to get report", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, report)
}

func (h *ComplianceHandler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	logFailure(ctx, h.logger, msg, err)
	httputil.WriteError(w, err)
}
