package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"custodian/internal/compliance"
	"custodian/internal/platform/database"
	"custodian/pkg/platform/sentinel"
)

// dbExecutor is satisfied by *sql.DB and *sql.Tx.
type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore persists compliance state in the compliance_* tables.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const policyColumns = `id, name, description, type, framework, rules, enabled, severity, created_at, updated_at`

func (s *PostgresStore) CreatePolicy(ctx context.Context, p *compliance.Policy) error {
	rules, err := marshalJSON(p.Rules, "{}")
	if err != nil {
		return fmt.Errorf("marshal rules: %w", err)
	}
	query := `
		INSERT INTO compliance_policies (` + policyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Description, string(p.Type), string(p.Framework),
		rules, p.Enabled, string(p.Severity), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert policy: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdatePolicy(ctx context.Context, p *compliance.Policy) error {
	rules, err := marshalJSON(p.Rules, "{}")
	if err != nil {
		return fmt.Errorf("marshal rules: %w", err)
	}
	query := `
		UPDATE compliance_policies
		SET name = $2, description = $3, type = $4, framework = $5, rules = $6,
			enabled = $7, severity = $8, updated_at = $9
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Description, string(p.Type), string(p.Framework),
		rules, p.Enabled, string(p.Severity), p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update policy: %w", err)
	}
	return expectRow(res, "update policy")
}

// DeletePolicy relies on ON DELETE CASCADE for the check results.
func (s *PostgresStore) DeletePolicy(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM compliance_policies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete policy: %w", err)
	}
	return expectRow(res, "delete policy")
}

func (s *PostgresStore) GetPolicy(ctx context.Context, id string) (*compliance.Policy, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+policyColumns+` FROM compliance_policies WHERE id = $1`, id)
	p, err := scanPolicy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get policy: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ListPolicies(ctx context.Context, filter compliance.PolicyFilter) ([]compliance.Policy, error) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Framework != "" {
		add("framework = $%d", string(filter.Framework))
	}
	if filter.Type != "" {
		add("type = $%d", string(filter.Type))
	}
	if filter.Enabled != nil {
		add("enabled = $%d", *filter.Enabled)
	}
	query := `SELECT ` + policyColumns + ` FROM compliance_policies`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	defer rows.Close()

	out := []compliance.Policy{}
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan policy: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// RecordRun writes the results and the history row in one transaction.
// Results whose policy was deleted while the run was in flight are dropped.
func (s *PostgresStore) RecordRun(ctx context.Context, results []compliance.CheckResult, history *compliance.ScoreHistory) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		for i := range results {
			if err := insertResult(ctx, tx, &results[i]); err != nil {
				return err
			}
		}
		return insertHistory(ctx, tx, history)
	})
}

func insertResult(ctx context.Context, db dbExecutor, r *compliance.CheckResult) error {
	details, err := marshalJSON(r.Details, "{}")
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}
	evidence, err := marshalJSON(r.Evidence, "[]")
	if err != nil {
		return fmt.Errorf("marshal evidence: %w", err)
	}
	recs, err := marshalJSON(r.Recommendations, "[]")
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}
	// Selecting from the policy row locks it against deletion until commit
	// and inserts nothing when it is already gone.
	query := `
		INSERT INTO compliance_check_results (id, framework, policy_id, policy_name, policy_type,
			status, score, details, evidence, recommendations, checked_at)
		SELECT $1::uuid, $2::text, p.id, $4::text, $5::text, $6::text, $7::integer,
			$8::jsonb, $9::jsonb, $10::jsonb, $11::timestamptz
		FROM compliance_policies p
		WHERE p.id = $3::uuid
		FOR KEY SHARE
	`
	_, err = db.ExecContext(ctx, query,
		r.ID, string(r.Framework), r.PolicyID, r.PolicyName, string(r.PolicyType),
		string(r.Status), r.Score, details, evidence, recs, r.CheckedAt,
	)
	if err != nil {
		return fmt.Errorf("insert check result: %w", err)
	}
	return nil
}

func insertHistory(ctx context.Context, db dbExecutor, h *compliance.ScoreHistory) error {
	summary, err := marshalJSON(h.Summary, "[]")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	query := `
		INSERT INTO compliance_score_history (id, framework, score, total_policies, passed, failed,
			summary, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = db.ExecContext(ctx, query,
		h.ID, string(h.Framework), h.Score, h.TotalPolicies, h.Passed, h.Failed, summary, h.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert score history: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListCheckResults(ctx context.Context, policyID string) ([]compliance.CheckResult, error) {
	query := `
		SELECT id, framework, policy_id, policy_name, policy_type, status, score,
			details, evidence, recommendations, checked_at
		FROM compliance_check_results
		WHERE policy_id = $1
		ORDER BY checked_at DESC, id
	`
	rows, err := s.db.QueryContext(ctx, query, policyID)
	if err != nil {
		return nil, fmt.Errorf("list check results: %w", err)
	}
	defer rows.Close()

	out := []compliance.CheckResult{}
	for rows.Next() {
		var (
			r                        compliance.CheckResult
			framework, ptype, status string
			details, evidence, recs  []byte
		)
		if err := rows.Scan(&r.ID, &framework, &r.PolicyID, &r.PolicyName, &ptype, &status, &r.Score,
			&details, &evidence, &recs, &r.CheckedAt); err != nil {
			return nil, fmt.Errorf("scan check result: %w", err)
		}
		r.Framework = compliance.Framework(framework)
		r.PolicyType = compliance.PolicyType(ptype)
		r.Status = compliance.CheckStatus(status)
		if err := unmarshalAll(
			jsonField{details, &r.Details},
			jsonField{evidence, &r.Evidence},
			jsonField{recs, &r.Recommendations},
		); err != nil {
			return nil, err
		}
		r.CheckedAt = r.CheckedAt.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

const historyColumns = `id, framework, score, total_policies, passed, failed, summary, recorded_at`

func (s *PostgresStore) LatestScore(ctx context.Context, framework compliance.Framework) (*compliance.ScoreHistory, error) {
	query := `SELECT ` + historyColumns + ` FROM compliance_score_history
		WHERE framework = $1 ORDER BY recorded_at DESC, id LIMIT 1`
	h, err := scanHistory(s.db.QueryRowContext(ctx, query, string(framework)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest score: %w", err)
	}
	return h, nil
}

func (s *PostgresStore) ScoreHistory(ctx context.Context, framework compliance.Framework, since time.Time) ([]compliance.ScoreHistory, error) {
	query := `SELECT ` + historyColumns + ` FROM compliance_score_history
		WHERE framework = $1 AND recorded_at >= $2 ORDER BY recorded_at, id`
	rows, err := s.db.QueryContext(ctx, query, string(framework), since)
	if err != nil {
		return nil, fmt.Errorf("score history: %w", err)
	}
	defer rows.Close()

	out := []compliance.ScoreHistory{}
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan score history: %w", err)
		}
		out = append(out, *h)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SaveReport(ctx context.Context, r *compliance.Report) error {
	content, err := json.Marshal(r.Content)
	if err != nil {
		return fmt.Errorf("marshal report content: %w", err)
	}
	query := `
		INSERT INTO compliance_reports (id, framework, title, summary, score, content,
			period_start, period_end, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(ctx, query,
		r.ID, string(r.Framework), r.Title, r.Summary, r.Score, string(content),
		r.PeriodStart, r.PeriodEnd, r.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetReport(ctx context.Context, id string) (*compliance.Report, error) {
	query := `
		SELECT id, framework, title, summary, score, content, period_start, period_end, generated_at
		FROM compliance_reports WHERE id = $1
	`
	var (
		r         compliance.Report
		framework string
		content   []byte
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(&r.ID, &framework, &r.Title, &r.Summary, &r.Score,
		&content, &r.PeriodStart, &r.PeriodEnd, &r.GeneratedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	r.Framework = compliance.Framework(framework)
	if err := json.Unmarshal(content, &r.Content); err != nil {
		return nil, fmt.Errorf("unmarshal report content: %w", err)
	}
	r.PeriodStart, r.PeriodEnd, r.GeneratedAt = r.PeriodStart.UTC(), r.PeriodEnd.UTC(), r.GeneratedAt.UTC()
	return &r, nil
}

func (s *PostgresStore) ListReports(ctx context.Context, framework compliance.Framework) ([]compliance.ReportSummary, error) {
	query := `SELECT id, framework, title, score, period_start, period_end, generated_at FROM compliance_reports`
	var args []any
	if framework != "" {
		query += ` WHERE framework = $1`
		args = append(args, string(framework))
	}
	query += ` ORDER BY generated_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	out := []compliance.ReportSummary{}
	for rows.Next() {
		var (
			r  compliance.ReportSummary
			fw string
		)
		if err := rows.Scan(&r.ID, &fw, &r.Title, &r.Score, &r.PeriodStart, &r.PeriodEnd, &r.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		r.Framework = compliance.Framework(fw)
		r.PeriodStart, r.PeriodEnd, r.GeneratedAt = r.PeriodStart.UTC(), r.PeriodEnd.UTC(), r.GeneratedAt.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row rowScanner) (*compliance.Policy, error) {
	var (
		p                          compliance.Policy
		ptype, framework, severity string
		rules                      []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &ptype, &framework, &rules,
		&p.Enabled, &severity, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Type = compliance.PolicyType(ptype)
	p.Framework = compliance.Framework(framework)
	p.Severity = compliance.Severity(severity)
	p.Rules = compliance.Rules{}
	if err := json.Unmarshal(rules, &p.Rules); err != nil {
		return nil, fmt.Errorf("unmarshal rules: %w", err)
	}
	p.CreatedAt, p.UpdatedAt = p.CreatedAt.UTC(), p.UpdatedAt.UTC()
	return &p, nil
}

func scanHistory(row rowScanner) (*compliance.ScoreHistory, error) {
	var (
		h         compliance.ScoreHistory
		framework string
		summary   []byte
	)
	if err := row.Scan(&h.ID, &framework, &h.Score, &h.TotalPolicies, &h.Passed, &h.Failed,
		&summary, &h.RecordedAt); err != nil {
		return nil, err
	}
	h.Framework = compliance.Framework(framework)
	if err := json.Unmarshal(summary, &h.Summary); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}
	h.RecordedAt = h.RecordedAt.UTC()
	return &h, nil
}

type jsonField struct {
	raw  []byte
	dest any
}

func unmarshalAll(fields ...jsonField) error {
	for _, f := range fields {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dest); err != nil {
			return fmt.Errorf("unmarshal json column: %w", err)
		}
	}
	return nil
}

// marshalJSON renders v as JSON, substituting empty for nil values.
func marshalJSON(v any, empty string) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(raw) == "null" {
		return empty, nil
	}
	return string(raw), nil
}

func expectRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
