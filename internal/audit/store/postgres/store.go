// Package postgres is the persistent audit backend.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"custodian/internal/audit"
	dErrors "custodian/pkg/domain-errors"
)

// Store implements audit.Backend on the audit_entries table. seq is a
// BIGSERIAL, so creation order is global across processes sharing the table.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit backend. The schema must already exist
// (see database.EnsureSchema).
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const entryColumns = `seq, id, ts, category, operation, actor, risk, success, details,
	context, error, duration_ms, origin, session_id, created_at`

func (s *Store) Append(ctx context.Context, e *audit.Entry) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}
	var eventCtx []byte
	if e.Context != nil {
		if eventCtx, err = json.Marshal(e.Context); err != nil {
			return fmt.Errorf("marshal context: %w", err)
		}
	}

	query := `
		INSERT INTO audit_entries (id, ts, category, operation, actor, risk, success, details,
			context, error, duration_ms, origin, session_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING seq
	`
	var seq int64
	err = s.db.QueryRowContext(ctx, query,
		e.ID,
		e.Timestamp,
		string(e.Category),
		e.Operation,
		e.Actor,
		string(e.Risk),
		e.Success,
		string(details),
		nullJSON(eventCtx),
		nullString(e.Error),
		e.DurationMs,
		nullString(e.Origin),
		nullString(e.SessionID),
		e.CreatedAt,
	).Scan(&seq)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	e.Seq = seq
	return nil
}

// where renders the filter as a WHERE clause with the same semantics as
// audit.Filter.Matches.
func where(f audit.Filter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Category != "" {
		add("category = $%d", string(f.Category))
	}
	if f.Operation != "" {
		add("position(lower($%d) in lower(operation)) > 0", f.Operation)
	}
	if f.Actor != "" {
		add("actor = $%d", f.Actor)
	}
	if f.Risk != "" {
		add("risk = $%d", string(f.Risk))
	}
	if f.Start != nil {
		add("ts >= $%d", *f.Start)
	}
	if f.End != nil {
		add("ts <= $%d", *f.End)
	}
	if f.SuccessOnly {
		conds = append(conds, "success")
	}
	if f.SessionID != "" {
		add("session_id = $%d", f.SessionID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *Store) Query(ctx context.Context, f audit.Filter) ([]audit.Entry, int, error) {
	f = f.Normalized()
	clause, args := where(f)

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM audit_entries"+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	args = append(args, f.PageSize, f.Offset())
	query := fmt.Sprintf("SELECT %s FROM audit_entries%s ORDER BY ts DESC, seq DESC LIMIT $%d OFFSET $%d",
		entryColumns, clause, len(args)-1, len(args))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]audit.Entry, 0, f.PageSize)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, total, nil
}

func (s *Store) Get(ctx context.Context, id string) (audit.Entry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return audit.Entry{}, dErrors.New(dErrors.CodeNotFound, "audit entry not found")
	}
	row := s.db.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM audit_entries WHERE id = $1", id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return audit.Entry{}, dErrors.New(dErrors.CodeNotFound, "audit entry not found")
	}
	if err != nil {
		return audit.Entry{}, fmt.Errorf("get audit entry: %w", err)
	}
	return e, nil
}

func (s *Store) DeleteExpired(ctx context.Context, c audit.Cutoffs) (int, error) {
	query := `
		DELETE FROM audit_entries
		WHERE seq <= $1
		  AND CASE WHEN $2 AND risk IN ('high', 'critical')
		           THEN ts < $3
		           ELSE ts < $4
		      END
	`
	res, err := s.db.ExecContext(ctx, query, c.MaxSeq, c.KeepHighRisk, c.HighRiskBefore, c.Before)
	if err != nil {
		return 0, fmt.Errorf("delete expired audit entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

func (s *Store) TrimOldest(ctx context.Context, keep int, maxSeq int64) (int, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return 0, err
	}
	excess := count - keep
	if excess <= 0 {
		return 0, nil
	}
	query := `
		DELETE FROM audit_entries
		WHERE seq IN (
			SELECT seq FROM audit_entries WHERE seq <= $1 ORDER BY seq ASC LIMIT $2
		)
	`
	res, err := s.db.ExecContext(ctx, query, maxSeq, excess)
	if err != nil {
		return 0, fmt.Errorf("trim audit entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM audit_entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("count audit entries: %w", err)
	}
	return n, nil
}

func (s *Store) Oldest(ctx context.Context) (time.Time, bool, error) {
	var ts sql.NullTime
	if err := s.db.QueryRowContext(ctx, "SELECT min(ts) FROM audit_entries").Scan(&ts); err != nil {
		return time.Time{}, false, fmt.Errorf("oldest audit entry: %w", err)
	}
	if !ts.Valid {
		return time.Time{}, false, nil
	}
	return ts.Time.UTC(), true, nil
}

func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(max(seq), 0) FROM audit_entries").Scan(&seq); err != nil {
		return 0, fmt.Errorf("max audit seq: %w", err)
	}
	return seq, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (audit.Entry, error) {
	var (
		e          audit.Entry
		category   string
		risk       string
		details    []byte
		eventCtx   []byte
		errMsg     sql.NullString
		durationMs sql.NullInt64
		origin     sql.NullString
		sessionID  sql.NullString
	)
	err := row.Scan(&e.Seq, &e.ID, &e.Timestamp, &category, &e.Operation, &e.Actor, &risk, &e.Success,
		&details, &eventCtx, &errMsg, &durationMs, &origin, &sessionID, &e.CreatedAt)
	if err != nil {
		return audit.Entry{}, err
	}

	e.Timestamp = e.Timestamp.UTC()
	e.Category = audit.Category(category)
	e.Risk = audit.RiskLevel(risk)
	e.Details = map[string]any{}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &e.Details); err != nil {
			return audit.Entry{}, fmt.Errorf("decode details: %w", err)
		}
	}
	if len(eventCtx) > 0 {
		if err := json.Unmarshal(eventCtx, &e.Context); err != nil {
			return audit.Entry{}, fmt.Errorf("decode context: %w", err)
		}
	}
	e.Error = errMsg.String
	if durationMs.Valid {
		d := durationMs.Int64
		e.DurationMs = &d
	}
	e.Origin = origin.String
	e.SessionID = sessionID.String
	return e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullJSON(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}
