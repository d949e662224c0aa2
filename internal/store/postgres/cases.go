package postgres

import (
	"context"
	"fmt"
	"time"

	"casegen/internal/store"
)

func (c *Client) RecordCase(ctx context.Context, runID string, rec store.CaseRecord) error {
	inactive := rec.InactiveSinks
	if inactive == nil {
		inactive = []string{}
	}

	query := `
INSERT INTO run_cases (run_id, case_index, name, profile_name, condition_name, artifact, status, error, inactive_sinks, duration_ms)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (run_id, name) DO UPDATE SET
    artifact = EXCLUDED.artifact,
    status = EXCLUDED.status,
    error = EXCLUDED.error,
    inactive_sinks = EXCLUDED.inactive_sinks,
    duration_ms = EXCLUDED.duration_ms
`
	_, err := c.pool.Exec(ctx, query,
		runID,
		rec.Index,
		rec.Name,
		rec.Profile,
		rec.Condition,
		rec.Artifact,
		rec.Status,
		rec.Error,
		inactive,
		rec.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("recording case %s: %w", rec.Name, err)
	}
	return nil
}

func (c *Client) ListCases(ctx context.Context, runID, status string) ([]store.CaseRecord, error) {
	query := `
SELECT case_index, name, profile_name, condition_name, artifact, status, error, inactive_sinks, duration_ms
FROM run_cases
WHERE run_id = $1 AND ($2 = '' OR status = $2)
ORDER BY case_index
`
	rows, err := c.pool.Query(ctx, query, runID, status)
	if err != nil {
		return nil, fmt.Errorf("listing cases: %w", err)
	}
	defer rows.Close()

	records := []store.CaseRecord{}
	for rows.Next() {
		var rec store.CaseRecord
		var durationMS int64
		err := rows.Scan(
			&rec.Index,
			&rec.Name,
			&rec.Profile,
			&rec.Condition,
			&rec.Artifact,
			&rec.Status,
			&rec.Error,
			&rec.InactiveSinks,
			&durationMS,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning case: %w", err)
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cases: %w", err)
	}
	return records, nil
}
