package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"casegen/internal/store"
)

// timeLayout has a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func (c *Client) StartRun(ctx context.Context, run store.Run) error {
	query := `
	INSERT INTO runs (id, project, base_model, workbook, status, started_at, total)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := c.db.ExecContext(ctx, query,
		run.ID,
		run.Project,
		run.BaseModel,
		run.Workbook,
		store.RunRunning,
		run.StartedAt.UTC().Format(timeLayout),
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
	SET status = ?, finished_at = ?, succeeded = ?, failed = ?, skipped = ?, not_run = ?, error = ?
	WHERE id = ?
	`
	res, err := c.db.ExecContext(ctx, query,
		summary.Status,
		summary.FinishedAt.UTC().Format(timeLayout),
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
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	if n == 0 {
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
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
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
	row := c.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, store.ErrRunNotFound)
	}
	return run, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*store.Run, error) {
	var run store.Run
	var startedAt string
	var finishedAt sql.NullString
	err := s.Scan(
		&run.ID,
		&run.Project,
		&run.BaseModel,
		&run.Workbook,
		&run.Status,
		&startedAt,
		&finishedAt,
		&run.Total,
		&run.Succeeded,
		&run.Failed,
		&run.Skipped,
		&run.NotRun,
		&run.Error,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	if run.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	if finishedAt.Valid {
		t, err := time.Parse(timeLayout, finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing finished_at: %w", err)
		}
		run.FinishedAt = &t
	}
	return &run, nil
}
