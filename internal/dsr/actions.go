package dsr

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"custodian/internal/audit"
	dErrors "custodian/pkg/domain-errors"
	"custodian/pkg/platform/validation"
)

// export gathers the subject's rows and request history. A table that
// cannot be read is reported under "errors" and the export continues.
func (s *Service) export(ctx context.Context, r *Request) (map[string]any, error) {
	data := map[string]any{}
	failures := map[string]string{}
	for _, t := range s.tables {
		rows, err := s.data.Export(ctx, t, r.SubjectID)
		if err != nil {
			s.tableFailed(ctx, "export", t.Name, r, err)
			failures[t.Name] = err.Error()
			continue
		}
		if rows == nil {
			rows = []map[string]any{}
		}
		data[t.Name] = rows
	}

	history, err := s.store.List(ctx, Filter{SubjectID: r.SubjectID})
	if err != nil {
		return nil, fmt.Errorf("load request history: %w", err)
	}
	summaries := make([]map[string]any, 0, len(history))
	for _, h := range history {
		summaries = append(summaries, historyEntry(h))
	}

	result := map[string]any{
		"subject_id":   r.SubjectID,
		"request_type": r.Type,
		"exported_at":  s.now().UTC().Format(time.RFC3339),
		"data":         data,
		"dsr_history":  summaries,
		"partial":      len(failures) > 0,
	}
	if r.Type == TypePortability {
		result["format"] = "json"
	}
	if len(failures) > 0 {
		result["errors"] = failures
	}
	return result, nil
}

func historyEntry(h Request) map[string]any {
	e := map[string]any{
		"id":         h.ID,
		"type":       h.Type,
		"status":     h.Status,
		"created_at": h.CreatedAt.Format(time.RFC3339),
		"deadline":   h.Deadline.Format(time.RFC3339),
	}
	if h.CompletedAt != nil {
		e["completed_at"] = h.CompletedAt.Format(time.RFC3339)
	}
	return e
}

// erase deletes the subject's rows table by table and always records the
// deletion in the audit trail, whose own entries are never touched.
func (s *Service) erase(ctx context.Context, r *Request) map[string]any {
	deleted := map[string]int64{}
	failures := map[string]string{}
	var total int64
	for _, t := range s.tables {
		n, err := s.data.Delete(ctx, t, r.SubjectID)
		if err != nil {
			s.tableFailed(ctx, "delete", t.Name, r, err)
			failures[t.Name] = err.Error()
			continue
		}
		deleted[t.Name] = n
		total += n
	}

	if s.sink != nil {
		details := map[string]any{
			"request_id":    r.ID,
			"subject_id":    r.SubjectID,
			"deleted":       deleted,
			"total_deleted": total,
		}
		if len(failures) > 0 {
			details["failed_tables"] = len(failures)
		}
		opts := []audit.EventOption{audit.Actor("dsr")}
		if len(failures) > 0 {
			opts = append(opts, audit.Failed(fmt.Sprintf("%d tables could not be cleared", len(failures))))
		}
		if _, err := s.sink.Log(ctx, audit.CategoryDataStore, "dsr_deletion_executed", details, opts...); err != nil {
			s.logger.ErrorContext(ctx, "deletion audit entry not recorded", "request_id", r.ID, "error", err)
		}
	}

	result := map[string]any{
		"subject_id":    r.SubjectID,
		"deleted":       deleted,
		"total_deleted": total,
		"partial":       len(failures) > 0,
	}
	if len(failures) > 0 {
		result["errors"] = failures
	}
	return result
}

// rectify applies the plan record by record. Unknown tables and records
// that fail are reported per table; fields that are not plain identifiers,
// or that name the id or subject column, are skipped.
func (s *Service) rectify(ctx context.Context, r *Request, plan map[string][]Rectification) map[string]any {
	updated := map[string]int64{}
	failures := map[string]string{}
	skipped := map[string][]string{}
	var total int64

	for name, records := range plan {
		t, ok := s.table(name)
		if !ok {
			failures[name] = "unknown table"
			continue
		}
		var n int64
		for _, rec := range records {
			fields := map[string]any{}
			for field, v := range rec.Fields {
				if !validation.IsIdentifier(field) || field == "id" || field == t.SubjectColumn {
					skipped[name] = append(skipped[name], field)
					continue
				}
				fields[field] = v
			}
			if len(fields) == 0 {
				continue
			}
			c, err := s.data.Rectify(ctx, t, r.SubjectID, rec.ID, fields)
			if err != nil {
				s.tableFailed(ctx, "rectify", name, r, err)
				failures[name] = err.Error()
				continue
			}
			n += c
		}
		updated[name] = n
		total += n
	}

	result := map[string]any{
		"subject_id":    r.SubjectID,
		"updated":       updated,
		"total_updated": total,
		"partial":       len(failures) > 0,
	}
	if len(failures) > 0 {
		result["errors"] = failures
	}
	if len(skipped) > 0 {
		result["skipped_fields"] = skipped
	}
	return result
}

func (s *Service) tableFailed(ctx context.Context, action, table string, r *Request, err error) {
	tableFailures.WithLabelValues(action).Inc()
	s.logger.WarnContext(ctx, "personal data table operation failed",
		"action", action,
		"table", table,
		"request_id", r.ID,
		"error", err,
	)
}

// parseRectifications decodes table → [{id, fields}] and rejects malformed
// plans before anything is changed.
func parseRectifications(src any) (map[string][]Rectification, error) {
	malformed := dErrors.New(dErrors.CodeValidation,
		"rectifications must map table names to lists of {id, fields}")
	if src == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "no rectifications supplied")
	}
	raw, err := json.Marshal(src)
	if err != nil {
		return nil, malformed
	}
	var plan map[string][]Rectification
	if err := json.Unmarshal(raw, &plan); err != nil || len(plan) == 0 {
		return nil, malformed
	}

	count := 0
	for table, records := range plan {
		if len(records) == 0 {
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("rectifications for %q are empty", table))
		}
		for _, rec := range records {
			if rec.ID == "" || len(rec.Fields) == 0 {
				return nil, dErrors.New(dErrors.CodeValidation,
					fmt.Sprintf("each rectification for %q needs an id and at least one field", table))
			}
		}
		count += len(records)
	}
	if err := validation.CheckSliceCount("rectifications", count, validation.MaxRectifications); err != nil {
		return nil, err
	}
	return plan, nil
}
