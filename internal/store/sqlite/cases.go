package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"casegen/internal/store"
)

func (c *Client) RecordCase(ctx context.Context, runID string, rec store.CaseRecord) error {
	inactive := rec.InactiveSinks
	if inactive == nil {
		inactive = []string{}
	}
	inactiveJSON, err := json.Marshal(inactive)
	if err != nil {
		return fmt.Errorf("marshaling inactive sinks: %w", err)
	}

	query := `
	INSERT INTO run_cases (run_id, case_index, name, profile_name, condition_name, artifact, status, error, inactive_sinks, duration_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (run_id, name) DO UPDATE SET
		artifact = excluded.artifact,
		status = excluded.status,
		error = excluded.error,
		inactive_sinks = excluded.inactive_sinks,
		duration_ms = excluded.duration_ms
	`
	_, err = c.db.ExecContext(ctx, query,
		runID,
		rec.Index,
		rec.Name,
		rec.Profile,
		rec.Condition,
		rec.Artifact,
		rec.Status,
		rec.Error,
		string(inactiveJSON),
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
	WHERE run_id = ?
	`
	args := []any{runID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY case_index"

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing cases: %w", err)
	}
	defer rows.Close()

	records := []store.CaseRecord{}
	for rows.Next() {
		var rec store.CaseRecord
		var inactiveJSON string
		var durationMS int64
		err := rows.Scan(
			&rec.Index,
			&rec.Name,
			&rec.Profile,
			&rec.Condition,
			&rec.Artifact,
			&rec.Status,
			&rec.Error,
			&inactiveJSON,
			&durationMS,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning case: %w", err)
		}
		if err := json.Unmarshal([]byte(inactiveJSON), &rec.InactiveSinks); err != nil {
			return nil, fmt.Errorf("unmarshaling inactive sinks: %w", err)
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cases: %w", err)
	}
	return records, nil
}
