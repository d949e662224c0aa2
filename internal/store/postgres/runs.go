package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"casegen/internal/store"
)

func (c *Client) StartRun(ctx context.Context, run store.Run) error {
	query := `
INSERT INTO runs (id, project, base_model, workbook, status, started_at, total)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err := c.pool.Exec(ctx, query,
		run.ID,
		run.Project,
		run.BaseModel,
		run.Workbook,
		store.RunRunning,
		run.StartedAt,
		run.Total,
	)
	if err != nil {
		return fmt.Errorf("starting run: %w", err)
	}
	return nil
}

func (c *Client) FinishRun(ctx context.Context, runID string, summary store.RunSummary) error {
	query := `
UPDATE runs
SET status = $1, finished_at = $2, succeeded = $3, failed = $4, skipped = $5, not_run = $6, error = $7
WHERE id = $8
`
	tag, err := c.pool.Exec(ctx, query,
		summary.Status,
		summary.FinishedAt,
		summary.Succeeded,
		summary.Failed,
		summary.Skipped,
		summary.NotRun,
		summary.Error,
		runID,
	)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("finishing run %s: %w", runID, store.ErrRunNotFound)
	}
	return nil
}

const runColumns = `id, project, base_model, workbook, status, started_at, finished_at,
    total, succeeded, failed, skipped, not_run, error`

func (c *Client) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := c.pool.Query(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	runs := []store.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

func (c *Client) GetRun(ctx context.Context, runID string) (*store.Run, error) {
	row := c.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM runs WHERE id = $1`, runID)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, store.ErrRunNotFound)
	}
	return run, err
}

func scanRun(row pgx.Row) (*store.Run, error) {
	var run store.Run
	err := row.Scan(
		&run.ID,
		&run.Project,
		&run.BaseModel,
		&run.Workbook,
		&run.Status,
		&run.StartedAt,
		&run.FinishedAt,
		&run.Total,
		&run.Succeeded,
		&run.Failed,
		&run.Skipped,
		&run.NotRun,
		&run.Error,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	return &run, nil
}
