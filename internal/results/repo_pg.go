package results

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Save upserts records in one transaction.
func (r *PGRepo) Save(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	const query = `
INSERT INTO extraction_tables (
    id,
    invocation_arn,
    input_uri,
    segment_index,
    field,
    blueprint,
    confidence,
    columns,
    rows,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (invocation_arn, segment_index, field) DO UPDATE SET
    blueprint = EXCLUDED.blueprint,
    confidence = EXCLUDED.confidence,
    columns = EXCLUDED.columns,
    rows = EXCLUDED.rows`

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, rec := range records {
		columns, err := json.Marshal(rec.Columns)
		if err != nil {
			return fmt.Errorf("marshal columns field=%s: %w", rec.Field, err)
		}
		rows, err := json.Marshal(rec.Rows)
		if err != nil {
			return fmt.Errorf("marshal rows field=%s: %w", rec.Field, err)
		}
		var confidence sql.NullFloat64
		if rec.Confidence != nil {
			confidence = sql.NullFloat64{Float64: *rec.Confidence, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, query,
			rec.ID,
			rec.InvocationArn,
			rec.InputURI,
			rec.SegmentIndex,
			rec.Field,
			rec.Blueprint,
			confidence,
			columns,
			rows,
			rec.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert extraction table field=%s segment=%d: %w", rec.Field, rec.SegmentIndex, err)
		}
	}
	return tx.Commit()
}

// ListByInput returns records for inputURI.
func (r *PGRepo) ListByInput(ctx context.Context, inputURI string) ([]Record, error) {
	const query = `
SELECT id, invocation_arn, input_uri, segment_index, field, blueprint, confidence, columns, rows, created_at
FROM extraction_tables
WHERE input_uri = $1
ORDER BY created_at DESC, segment_index ASC, field ASC`

	rows, err := r.DB.QueryContext(ctx, query, inputURI)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec        Record
			confidence sql.NullFloat64
			columns    []byte
			data       []byte
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.InvocationArn,
			&rec.InputURI,
			&rec.SegmentIndex,
			&rec.Field,
			&rec.Blueprint,
			&confidence,
			&columns,
			&data,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		if confidence.Valid {
			v := confidence.Float64
			rec.Confidence = &v
		}
		if err := json.Unmarshal(columns, &rec.Columns); err != nil {
			return nil, fmt.Errorf("decode columns id=%s: %w", rec.ID, err)
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&rec.Rows); err != nil {
			return nil, fmt.Errorf("decode rows id=%s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}
