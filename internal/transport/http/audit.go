package httptransport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"custodian/internal/audit"
	dErrors "custodian/pkg/domain-errors"
	"custodian/pkg/platform/httputil"
	"custodian/pkg/platform/middleware/admin"
	"custodian/pkg/platform/middleware/metadata"
	request "custodian/pkg/platform/middleware/request"
)

//go:generate mockgen -source=audit.go -destination=mocks/audit_mock.go -package=mocks AuditService

// AuditService is the part of the audit logger the admin API drives.
type AuditService interface {
	Log(ctx context.Context, category audit.Category, operation string, details map[string]any, opts ...audit.EventOption) (audit.LogResult, error)
	Query(ctx context.Context, f audit.Filter) (audit.QueryResult, error)
	Get(ctx context.Context, id string) (audit.Entry, error)
	Statistics(ctx context.Context, req audit.StatsRequest) (audit.Statistics, error)
	Export(ctx context.Context, format audit.ExportFormat, f audit.Filter) ([]byte, error)
	ApplyRetention(ctx context.Context, opts audit.RetentionOptions) (audit.RetentionResult, error)
	Counters() audit.Counters
}

// AuditHandler serves /audit.
type AuditHandler struct {
	svc       AuditService
	retention audit.RetentionOptions
	logger    *slog.Logger
}

// NewAuditHandler creates the audit routes. retention is applied when a
// retention request carries no body.
func NewAuditHandler(svc AuditService, retention audit.RetentionOptions, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{svc: svc, retention: retention, logger: logger}
}

func (h *AuditHandler) Register(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.Post("/events", h.handleLog)
		r.Get("/events", h.handleQuery)
		r.Get("/events/{id}", h.handleGet)
		r.Get("/stats", h.handleStats)
		r.Get("/counters", h.handleCounters)
		r.Get("/export", h.handleExport)
		r.Post("/retention", h.handleRetention)
	})
}

type logEventRequest struct {
	Category   audit.Category `json:"category"`
	Operation  string         `json:"operation"`
	Details    map[string]any `json:"details"`
	Context    map[string]any `json:"context"`
	Actor      string         `json:"actor"`
	Success    *bool          `json:"success"`
	Error      string         `json:"error"`
	DurationMs *int64         `json:"duration_ms"`
	SessionID  string         `json:"session_id"`
	Timestamp  *time.Time     `json:"timestamp"`
}

// maxTimestampSkew bounds caller-supplied event times. Historical events
// arrive through the hook relay, not the admin API.
const maxTimestampSkew = 5 * time.Minute

func (req *logEventRequest) checkTimestamp(now time.Time) error {
	if req.Timestamp == nil {
		return nil
	}
	if skew := req.Timestamp.Sub(now); skew > maxTimestampSkew || skew < -maxTimestampSkew {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("timestamp must be within %s of the server clock", maxTimestampSkew))
	}
	return nil
}

func (req *logEventRequest) options(ctx context.Context, remoteAddr string) []audit.EventOption {
	actor := req.Actor
	if actor == "" {
		actor = admin.GetAdminActorID(ctx)
	}
	origin := metadata.GetClientIP(ctx)
	if origin == "" {
		origin = remoteAddr
	}
	opts := []audit.EventOption{audit.Actor(actor), audit.Origin(origin)}
	if req.Success != nil {
		opts = append(opts, audit.Succeeded(*req.Success))
	}
	if req.Error != "" {
		opts = append(opts, audit.Failed(req.Error))
	}
	if req.DurationMs != nil {
		opts = append(opts, audit.Took(time.Duration(*req.DurationMs)*time.Millisecond))
	}
	if req.SessionID != "" {
		opts = append(opts, audit.Session(req.SessionID))
	}
	if ua := metadata.GetUserAgent(ctx); ua != "" {
		if req.Context == nil {
			req.Context = map[string]any{}
		}
		if _, ok := req.Context["user_agent"]; !ok {
			req.Context["user_agent"] = ua
			req.Context["device"] = metadata.DeviceName(ua)
		}
	}
	if req.Context != nil {
		opts = append(opts, audit.WithEventContext(req.Context))
	}
	if req.Timestamp != nil {
		opts = append(opts, audit.At(*req.Timestamp))
	}
	return opts
}

func (h *AuditHandler) handleLog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeJSON[logEventRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}
	if err := req.checkTimestamp(time.Now()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.svc.Log(ctx, req.Category, strings.TrimSpace(req.Operation), req.Details, req.options(ctx, r.RemoteAddr)...)
	if err != nil {
		h.fail(ctx, w, "failed to log audit event", err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, res)
}

func (h *AuditHandler) handleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f, err := parseAuditFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.svc.Query(ctx, f)
	if err != nil {
		h.fail(ctx, w, "failed to query audit entries", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, res)
}

func (h *AuditHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	e, err := h.svc.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(ctx, w, "failed to get audit entry", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, e)
}

func (h *AuditHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	start, err := queryTime(q, "start")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	end, err := queryTime(q, "end")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	stats, err := h.svc.Statistics(ctx, audit.StatsRequest{
		Start:       start,
		End:         end,
		Granularity: audit.Granularity(queryString(q, "granularity")),
	})
	if err != nil {
		h.fail(ctx, w, "failed to compute audit statistics", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, stats)
}

func (h *AuditHandler) handleCounters(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.svc.Counters())
}

// handleExport streams the serialized entries as a file rather than an envelope.
func (h *AuditHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f, err := parseAuditFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	format := audit.ExportFormat(strings.ToLower(queryString(r.URL.Query(), "format")))
	if format == "" {
		format = audit.FormatJSON
	}
	body, err := h.svc.Export(ctx, format, f)
	if err != nil {
		h.fail(ctx, w, "failed to export audit entries", err)
		return
	}

	contentType := "application/json"
	if format == audit.FormatCSV {
		contentType = "text/csv; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="audit-%s.%s"`,
		time.Now().UTC().Format("20060102T150405Z"), format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body) //nolint:errcheck // headers already sent
}

func (h *AuditHandler) handleRetention(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	opts := h.retention
	if !decodeOptional(w, r, h.logger, &opts) {
		return
	}
	res, err := h.svc.ApplyRetention(ctx, opts)
	if err != nil {
		h.fail(ctx, w, "failed to apply audit retention", err)
		return
	}
	httputil.WriteData(w, http.StatusOK, res)
}

func (h *AuditHandler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	logFailure(ctx, h.logger, msg, err)
	httputil.WriteError(w, err)
}

func parseAuditFilter(r *http.Request) (audit.Filter, error) {
	q := r.URL.Query()
	f := audit.Filter{
		Category:  audit.Category(queryString(q, "category")),
		Operation: queryString(q, "operation"),
		Actor:     queryString(q, "actor"),
		Risk:      audit.RiskLevel(queryString(q, "risk_level")),
		SessionID: queryString(q, "session_id"),
	}
	var err error
	if f.Start, err = queryTime(q, "start"); err != nil {
		return audit.Filter{}, err
	}
	if f.End, err = queryTime(q, "end"); err != nil {
		return audit.Filter{}, err
	}
	successOnly, err := queryBool(q, "success_only")
	if err != nil {
		return audit.Filter{}, err
	}
	if successOnly != nil {
		f.SuccessOnly = *successOnly
	}
	if f.Page, err = queryInt(q, "page"); err != nil {
		return audit.Filter{}, err
	}
	if f.PageSize, err = queryInt(q, "page_size"); err != nil {
		return audit.Filter{}, err
	}
	return f, nil
}

// logFailure logs client mistakes at warn and everything else at error.
func logFailure(ctx context.Context, logger *slog.Logger, msg string, err error) {
	level := slog.LevelError
	switch dErrors.CodeOf(err) {
	case dErrors.CodeValidation, dErrors.CodeNotFound, dErrors.CodeInvalidTransition, dErrors.CodeConflict:
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, msg, "request_id", request.GetRequestID(ctx), "error", err)
}
