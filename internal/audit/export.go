package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	dErrors "custodian/pkg/domain-errors"
)

// ExportFormat selects the serialization used by Export.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

var csvHeader = []string{
	"id", "timestamp", "category", "operation", "actor", "risk_level", "success",
	"details", "error", "duration_ms", "origin", "session_id", "created_at",
}

// exporter receives entries one at a time. Open is called before the first
// Write and Close after the last, even when no entries matched.
type exporter interface {
	Open() error
	Write(e Entry) error
	Close() error
}

type csvExporter struct {
	buf *bytes.Buffer
	w   *csv.Writer
}

func newCSVExporter(buf *bytes.Buffer) *csvExporter {
	return &csvExporter{buf: buf, w: csv.NewWriter(buf)}
}

func (x *csvExporter) Open() error {
	return x.w.Write(csvHeader)
}

func (x *csvExporter) Write(e Entry) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return fmt.Errorf("encode details of %s: %w", e.ID, err)
	}
	duration := ""
	if e.DurationMs != nil {
		duration = strconv.FormatInt(*e.DurationMs, 10)
	}
	return x.w.Write([]string{
		e.ID,
		e.Timestamp.Format(time.RFC3339Nano),
		string(e.Category),
		e.Operation,
		e.Actor,
		string(e.Risk),
		strconv.FormatBool(e.Success),
		string(details),
		e.Error,
		duration,
		e.Origin,
		e.SessionID,
		strconv.FormatInt(e.CreatedAt, 10),
	})
}

func (x *csvExporter) Close() error {
	x.w.Flush()
	return x.w.Error()
}

type jsonExporter struct {
	buf     *bytes.Buffer
	now     time.Time
	entries []Entry
}

func (x *jsonExporter) Open() error {
	x.entries = make([]Entry, 0)
	return nil
}

func (x *jsonExporter) Write(e Entry) error {
	x.entries = append(x.entries, e)
	return nil
}

func (x *jsonExporter) Close() error {
	doc := struct {
		ExportedAt time.Time `json:"exported_at"`
		Count      int       `json:"count"`
		Entries    []Entry   `json:"entries"`
	}{ExportedAt: x.now, Count: len(x.entries), Entries: x.entries}
	return json.NewEncoder(x.buf).Encode(doc)
}

// Export serializes every entry matching f, ignoring f's page fields. It
// pages through the backend in batches of 500, pinned to the moment the
// export started so concurrent writes do not shift pages.
func (l *Logger) Export(ctx context.Context, format ExportFormat, f Filter) ([]byte, error) {
	if err := l.checkOpen(); err != nil {
		return nil, err
	}
	if err := validateFilter(f); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	now := l.now().UTC()
	var x exporter
	switch format {
	case FormatCSV:
		x = newCSVExporter(&buf)
	case FormatJSON:
		x = &jsonExporter{buf: &buf, now: now}
	default:
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	if f.End == nil || f.End.After(now) {
		f.End = &now
	}
	if err := x.Open(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "open export")
	}

	seen := make(map[string]struct{})
	err := l.eachEntry(ctx, f, func(e Entry) error {
		if _, dup := seen[e.ID]; dup {
			return nil
		}
		seen[e.ID] = struct{}{}
		return x.Write(e)
	})
	if err != nil {
		return nil, err
	}
	if err := x.Close(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "close export")
	}
	return buf.Bytes(), nil
}

// eachEntry walks every entry matching f newest first in export-sized pages.
func (l *Logger) eachEntry(ctx context.Context, f Filter, fn func(Entry) error) error {
	f.PageSize = exportBatchSize
	f.Page = 1
	fetched := 0
	for {
		if err := ctx.Err(); err != nil {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "audit scan cancelled")
		}
		entries, total, err := l.primary.Query(ctx, f)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("fetch audit entries at page %d", f.Page))
		}
		for _, e := range entries {
			if err := fn(e); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "write audit entry")
			}
		}
		fetched += len(entries)
		if fetched >= total || len(entries) == 0 {
			return nil
		}
		f.Page++
	}
}
