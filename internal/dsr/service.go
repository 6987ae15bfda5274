package dsr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"custodian/internal/audit"
	dErrors "custodian/pkg/domain-errors"
	"custodian/pkg/platform/sentinel"
	"custodian/pkg/platform/validation"
)

// protectedTables hold compliance evidence and are never personal-data tables.
var protectedTables = map[string]bool{
	"audit_entries": true,
	"dsr_requests":  true,
}

// AuditSink receives the audit trail of every transition. *audit.Logger
// satisfies it.
type AuditSink interface {
	Log(ctx context.Context, category audit.Category, operation string, details map[string]any, opts ...audit.EventOption) (audit.LogResult, error)
}

type Option func(*Service)

// WithTables replaces DefaultTables.
func WithTables(tables []Table) Option {
	return func(s *Service) {
		if len(tables) > 0 {
			s.tables = slices.Clone(tables)
		}
	}
}

func WithAuditSink(sink AuditSink) Option {
	return func(s *Service) { s.sink = sink }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// Service runs the request lifecycle.
type Service struct {
	store  Store
	data   PersonalData
	tables []Table
	sink   AuditSink
	logger *slog.Logger
	now    func() time.Time
	tracer trace.Tracer
}

// New creates the handler. store and data are required; the table list is
// validated once here.
func New(store Store, data PersonalData, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "dsr request store is required")
	}
	if data == nil {
		return nil, dErrors.New(dErrors.CodeConfiguration, "personal data store is required")
	}
	s := &Service{
		store:  store,
		data:   data,
		tables: DefaultTables(),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("custodian/dsr")
	}
	for _, t := range s.tables {
		if err := validation.Validate(t); err != nil {
			return nil, dErrors.New(dErrors.CodeConfiguration, fmt.Sprintf("personal data table %q: %v", t.Name, err))
		}
		if protectedTables[t.Name] {
			return nil, dErrors.New(dErrors.CodeConfiguration, fmt.Sprintf("table %q cannot hold personal data", t.Name))
		}
	}
	return s, nil
}

// Tables returns the personal-data tables in use.
func (s *Service) Tables() []Table {
	return slices.Clone(s.tables)
}

func (s *Service) table(name string) (Table, bool) {
	i := slices.IndexFunc(s.tables, func(t Table) bool { return t.Name == name })
	if i < 0 {
		return Table{}, false
	}
	return s.tables[i], true
}

func (s *Service) CreateRequest(ctx context.Context, req CreateRequest) (*Request, error) {
	req.SubjectID = strings.TrimSpace(req.SubjectID)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	payload, err := jsonMap(req.Payload)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "payload must be a JSON object")
	}
	if req.Type == TypeRectification && payload["rectifications"] != nil {
		if _, err := parseRectifications(payload["rectifications"]); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	r := &Request{
		ID:          uuid.NewString(),
		Type:        req.Type,
		SubjectID:   req.SubjectID,
		Status:      StatusPending,
		RequestData: payload,
		CreatedAt:   now,
		UpdatedAt:   now,
		Deadline:    now.Add(Window),
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create request")
	}

	requestsCreated.WithLabelValues(string(r.Type)).Inc()
	s.logger.InfoContext(ctx, "dsr request created", "request_id", r.ID, "type", r.Type)
	s.audit(ctx, "dsr_request_created", r, map[string]any{"deadline": r.Deadline.Format(time.RFC3339)})
	return r, nil
}

func (s *Service) GetRequest(ctx context.Context, id string) (*Request, error) {
	r, err := s.store.Get(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "request not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "get request")
	}
	return r, nil
}

func (s *Service) ListRequests(ctx context.Context, filter Filter) ([]Request, error) {
	if filter.Status != "" {
		if err := validation.OneOf("status", filter.Status, Statuses); err != nil {
			return nil, err
		}
	}
	if filter.Type != "" {
		if err := validation.OneOf("type", filter.Type, RequestTypes); err != nil {
			return nil, err
		}
	}
	out, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list requests")
	}
	return out, nil
}

// ProcessRequest moves a pending request to in_progress.
func (s *Service) ProcessRequest(ctx context.Context, id string) (*Request, error) {
	r, err := s.transition(ctx, id, StatusInProgress, func(*Request) error { return nil })
	if err != nil {
		return nil, err
	}
	s.audit(ctx, "dsr_request_processing", r, nil)
	return r, nil
}

// RejectRequest closes an open request with a reason.
func (s *Service) RejectRequest(ctx context.Context, id, reason string) (*Request, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	if err := validation.CheckStringLength("reason", reason, validation.MaxReasonLength); err != nil {
		return nil, err
	}
	r, err := s.transition(ctx, id, StatusRejected, func(r *Request) error {
		r.RejectionReason = reason
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, "dsr_request_rejected", r, map[string]any{"reason": reason})
	return r, nil
}

// ApproveRequest executes the request and completes it. The action runs
// while the request is claimed, so a concurrent approval observes the
// completed status and fails with an invalid transition.
func (s *Service) ApproveRequest(ctx context.Context, id string, responseData map[string]any) (r *Request, err error) {
	ctx, span := s.tracer.Start(ctx, "dsr.approve", trace.WithAttributes(attribute.String("dsr.request_id", id)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	current, err := s.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(current.Status, StatusCompleted) {
		return nil, illegalTransition(current.Status, StatusCompleted)
	}
	span.SetAttributes(attribute.String("dsr.type", string(current.Type)))

	response, err := jsonMap(responseData)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "response data must be a JSON object")
	}
	var plan map[string][]Rectification
	if current.Type == TypeRectification {
		src := response["rectifications"]
		if src == nil {
			src = current.RequestData["rectifications"]
		}
		if plan, err = parseRectifications(src); err != nil {
			return nil, err
		}
	}

	started := time.Now()
	r, err = s.transition(ctx, id, StatusCompleted, func(r *Request) error {
		result, err := s.execute(ctx, r, plan)
		if err != nil {
			return err
		}
		out := maps.Clone(response)
		if out == nil {
			out = map[string]any{}
		}
		maps.Copy(out, result)
		if r.ResponseData, err = jsonMap(out); err != nil {
			return fmt.Errorf("encode response data: %w", err)
		}
		completed := s.now().UTC()
		r.CompletedAt = &completed
		return nil
	})
	if err != nil {
		return nil, err
	}

	approvalDuration.WithLabelValues(string(r.Type)).Observe(time.Since(started).Seconds())
	s.logger.InfoContext(ctx, "dsr request completed", "request_id", r.ID, "type", r.Type)
	s.audit(ctx, "dsr_request_completed", r, map[string]any{"partial": r.ResponseData["partial"]})
	return r, nil
}

func (s *Service) execute(ctx context.Context, r *Request, plan map[string][]Rectification) (map[string]any, error) {
	switch r.Type {
	case TypeAccess, TypePortability:
		return s.export(ctx, r)
	case TypeDeletion:
		return s.erase(ctx, r), nil
	case TypeRectification:
		return s.rectify(ctx, r, plan), nil
	default:
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unsupported request type %q", r.Type))
	}
}

// OverdueRequests returns open requests past their deadline, most overdue first.
func (s *Service) OverdueRequests(ctx context.Context) ([]OverdueRequest, error) {
	now := s.now().UTC()
	open, err := s.store.OpenBefore(ctx, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list overdue requests")
	}
	out := make([]OverdueRequest, 0, len(open))
	for _, r := range open {
		out = append(out, OverdueRequest{Request: r, DaysOverdue: daysOverdue(r.Deadline, now)})
	}
	slices.SortStableFunc(out, func(a, b OverdueRequest) int {
		return a.Deadline.Compare(b.Deadline)
	})
	overdueRequests.Set(float64(len(out)))
	return out, nil
}

// daysOverdue counts started days past the deadline.
func daysOverdue(deadline, now time.Time) int {
	return int(math.Ceil(now.Sub(deadline).Hours() / 24))
}

func (s *Service) transition(ctx context.Context, id string, to Status, mutate func(*Request) error) (*Request, error) {
	r, err := s.store.Transition(ctx, id, sourcesOf(to), func(r *Request) error {
		if err := mutate(r); err != nil {
			return err
		}
		r.Status = to
		r.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		var stateErr *StateError
		switch {
		case errors.As(err, &stateErr):
			return nil, illegalTransition(stateErr.Current, to)
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "request not found")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "transition request")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "transition request")
		}
	}
	requestTransitions.WithLabelValues(string(to)).Inc()
	return r, nil
}

func (s *Service) audit(ctx context.Context, operation string, r *Request, extra map[string]any) {
	if s.sink == nil {
		return
	}
	details := map[string]any{
		"request_id": r.ID,
		"type":       r.Type,
		"subject_id": r.SubjectID,
		"status":     r.Status,
	}
	maps.Copy(details, extra)
	if _, err := s.sink.Log(ctx, audit.CategoryDataStore, operation, details, audit.Actor("dsr")); err != nil {
		s.logger.WarnContext(ctx, "audit event not recorded", "operation", operation, "error", err)
	}
}

// jsonMap normalizes v to the JSON object form a store returns, so memory
// and postgres stores hold the same shapes.
func jsonMap(v map[string]any) (map[string]any, error) {
	if v == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
