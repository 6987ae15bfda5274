package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"custodian/internal/dsr"
	"custodian/pkg/platform/httputil"
)

//go:generate mockgen -source=dsr.go -destination=mocks/dsr_mock.go -package=mocks DSRService

// DSRService is the DSR handler as driven by the admin API.
type DSRService interface {
	Tables() []dsr.Table
	CreateRequest(ctx context.Context, req dsr.CreateRequest) (*dsr.Request, error)
	GetRequest(ctx context.Context, id string) (*dsr.Request, error)
	ListRequests(ctx context.Context, filter dsr.Filter) ([]dsr.Request, error)
	ProcessRequest(ctx context.Context, id string) (*dsr.Request, error)
	ApproveRequest(ctx context.Context, id string, responseData map[string]any) (*dsr.Request, error)
	RejectRequest(ctx context.Context, id, reason string) (*dsr.Request, error)
	OverdueRequests(ctx context.Context) ([]dsr.OverdueRequest, error)
}

// DSRHandler serves /dsr.
type DSRHandler struct {
	svc    DSRService
	logger *slog.Logger
}

func NewDSRHandler(svc DSRService, logger *slog.Logger) *DSRHandler {
	return &DSRHandler{svc: svc, logger: logger}
}

func (h *DSRHandler) Register(r chi.Router) {
	r.Route("/dsr", func(r chi.Router) {
		r.Get("/tables", h.handleTables)
		r.Post("/requests", h.handleCreate)
		r.Get("/requests", h.handleList)
		r.Get("/requests/overdue", h.handleOverdue)
		r.Get("/requests/{id}", h.handleGet)
		r.Post("/requests/{id}/process", h.handleProcess)
		r.Post("/requests/{id}/approve", h.handleApprove)
		r.Post("/requests/{id}/reject", h.handleReject)
	})
}

func (h *DSRHandler) handleTables(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteData(w, http.StatusOK, map[string]any{"tables": h.svc.Tables()})
}

func (h *DSRHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeJSON[dsr.CreateRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}
	created, err := h.svc.CreateRequest(ctx, *req)
	if err != nil {
		h.fail(ctx, w, "failed to create dsr request", err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, created)
}

func (h *DSRHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	requests, err := h.svc.ListRequests(ctx, dsr.Filter{
		Status:    dsr.Status(queryString(q, "status")),
		Type:      dsr.RequestType(queryString(q, "type")),
		SubjectID: queryString(q, "subject_id"),
	})
	if err != nil {
		h.fail(ctx, w, "failed to list dsr requests", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]any{"requests": requests, "count": len(requests)})
}

func (h *DSRHandler) handleOverdue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	overdue, err := h.svc.OverdueRequests(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list overdue dsr requests", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]any{"requests": overdue, "count": len(overdue)})
}

func (h *DSRHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := h.svc.GetRequest(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(ctx, w, "failed to get dsr request", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, req)
}

func (h *DSRHandler) handleProcess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := h.svc.ProcessRequest(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(ctx, w, "failed to process dsr request", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, req)
}

type approveRequest struct {
	ResponseData map[string]any `json:"response_data"`
}

func (h *DSRHandler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body approveRequest
	if !decodeOptional(w, r, h.logger, &body) {
		return
	}
	req, err := h.svc.ApproveRequest(ctx, chi.URLParam(r, "id"), body.ResponseData)
	if err != nil {
		h.fail(ctx, w, "failed to approve dsr request", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, req)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *DSRHandler) handleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, ok := httputil.DecodeJSON[rejectRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}
	req, err := h.svc.RejectRequest(ctx, chi.URLParam(r, "id"), body.Reason)
	if err != nil {
		h.fail(ctx, w, "failed to reject dsr request", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, req)
}

func (h *DSRHandler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	logFailure(ctx, h.logger, msg, err)
	httputil.WriteError(w, err)
}
