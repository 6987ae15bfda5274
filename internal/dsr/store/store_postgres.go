package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"custodian/internal/dsr"
	"custodian/internal/platform/database"
	"custodian/pkg/platform/sentinel"
)

// dbExecutor is satisfied by *sql.DB and *sql.Tx.
type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore persists requests in dsr_requests. Transitions hold the row
// lock (SELECT ... FOR UPDATE) for the duration of mutate.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const requestColumns = `id, type, subject_id, status, request_data, response_data, rejection_reason,
	created_at, updated_at, completed_at, deadline`

func (s *PostgresStore) Create(ctx context.Context, r *dsr.Request) error {
	reqData, err := json.Marshal(r.RequestData)
	if err != nil {
		return fmt.Errorf("marshal request data: %w", err)
	}
	query := `
		INSERT INTO dsr_requests (id, type, subject_id, status, request_data, created_at, updated_at, deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.db.ExecContext(ctx, query,
		r.ID, string(r.Type), r.SubjectID, string(r.Status), string(reqData),
		r.CreatedAt, r.UpdatedAt, r.Deadline,
	)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*dsr.Request, error) {
	return getRequest(ctx, s.db, id, false)
}

func getRequest(ctx context.Context, db dbExecutor, id string, forUpdate bool) (*dsr.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM dsr_requests WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	r, err := scanRequest(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) List(ctx context.Context, filter dsr.Filter) ([]dsr.Request, error) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.Type != "" {
		add("type = $%d", string(filter.Type))
	}
	if filter.SubjectID != "" {
		add("subject_id = $%d", filter.SubjectID)
	}
	query := `SELECT ` + requestColumns + ` FROM dsr_requests`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at, id"
	return s.query(ctx, query, args...)
}

func (s *PostgresStore) OpenBefore(ctx context.Context, cutoff time.Time) ([]dsr.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM dsr_requests
		WHERE status IN ('pending', 'in_progress') AND deadline < $1
		ORDER BY deadline, id`
	return s.query(ctx, query, cutoff)
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]dsr.Request, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	out := []dsr.Request{}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Transition(ctx context.Context, id string, from []dsr.Status, mutate func(*dsr.Request) error) (*dsr.Request, error) {
	var out *dsr.Request
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		current, err := getRequest(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if !slices.Contains(from, current.Status) {
			return &dsr.StateError{Current: current.Status}
		}
		if err := mutate(current); err != nil {
			return err
		}
		if err := updateRequest(ctx, tx, current); err != nil {
			return err
		}
		out = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// updateRequest writes the mutable columns. deadline and created_at are
// never part of the update.
func updateRequest(ctx context.Context, db dbExecutor, r *dsr.Request) error {
	var response any
	if r.ResponseData != nil {
		raw, err := json.Marshal(r.ResponseData)
		if err != nil {
			return fmt.Errorf("marshal response data: %w", err)
		}
		response = string(raw)
	}
	query := `
		UPDATE dsr_requests
		SET status = $2, response_data = $3, rejection_reason = $4, updated_at = $5, completed_at = $6
		WHERE id = $1
	`
	_, err := db.ExecContext(ctx, query,
		r.ID, string(r.Status), response, nullString(r.RejectionReason), r.UpdatedAt, r.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*dsr.Request, error) {
	var (
		r                 dsr.Request
		rtype, status     string
		reqData, respData []byte
		reason            sql.NullString
		completedAt       sql.NullTime
	)
	if err := row.Scan(&r.ID, &rtype, &r.SubjectID, &status, &reqData, &respData, &reason,
		&r.CreatedAt, &r.UpdatedAt, &completedAt, &r.Deadline); err != nil {
		return nil, err
	}
	r.Type = dsr.RequestType(rtype)
	r.Status = dsr.Status(status)
	r.RejectionReason = reason.String
	r.RequestData = map[string]any{}
	if len(reqData) > 0 {
		if err := json.Unmarshal(reqData, &r.RequestData); err != nil {
			return nil, fmt.Errorf("unmarshal request data: %w", err)
		}
	}
	if len(respData) > 0 {
		if err := json.Unmarshal(respData, &r.ResponseData); err != nil {
			return nil, fmt.Errorf("unmarshal response data: %w", err)
		}
	}
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		r.CompletedAt = &t
	}
	r.CreatedAt, r.UpdatedAt, r.Deadline = r.CreatedAt.UTC(), r.UpdatedAt.UTC(), r.Deadline.UTC()
	return &r, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
