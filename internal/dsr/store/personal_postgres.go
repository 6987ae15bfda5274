package store

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/lib/pq"

	"custodian/internal/dsr"
	"custodian/pkg/platform/validation"
)

// PostgresPersonalData reads and changes subject rows in the configured
// personal-data tables. Identifiers are validated and quoted; values are
// always bound parameters. Subject and id columns are compared as text so
// uuid, integer and text keys all match.
type PostgresPersonalData struct {
	db *sql.DB
}

func NewPostgresPersonalData(db *sql.DB) *PostgresPersonalData {
	return &PostgresPersonalData{db: db}
}

func quote(names ...string) ([]string, error) {
	out := make([]string, len(names))
	for i, n := range names {
		if !validation.IsIdentifier(n) {
			return nil, fmt.Errorf("invalid identifier %q", n)
		}
		out[i] = pq.QuoteIdentifier(n)
	}
	return out, nil
}

func (s *PostgresPersonalData) Export(ctx context.Context, t dsr.Table, subjectID string) ([]map[string]any, error) {
	q, err := quote(t.Name, t.SubjectColumn)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT * FROM %s WHERE %s::text = $1`, q[0], q[1])
	rows, err := s.db.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", t.Name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", t.Name, err)
	}
	out := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("export %s: %w", t.Name, err)
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
				continue
			}
			row[c] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *PostgresPersonalData) Delete(ctx context.Context, t dsr.Table, subjectID string) (int64, error) {
	q, err := quote(t.Name, t.SubjectColumn)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s::text = $1`, q[0], q[1]), subjectID)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", t.Name, err)
	}
	return res.RowsAffected()
}

func (s *PostgresPersonalData) Rectify(ctx context.Context, t dsr.Table, subjectID, recordID string, fields map[string]any) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	q, err := quote(t.Name, t.SubjectColumn)
	if err != nil {
		return 0, err
	}
	names := slices.Sorted(maps.Keys(fields))
	cols, err := quote(names...)
	if err != nil {
		return 0, err
	}

	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+2)
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+1)
		args = append(args, fields[names[i]])
	}
	args = append(args, recordID, subjectID)
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id::text = $%d AND %s::text = $%d`,
		q[0], strings.Join(sets, ", "), len(cols)+1, q[1], len(cols)+2)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("rectify %s: %w", t.Name, err)
	}
	return res.RowsAffected()
}
