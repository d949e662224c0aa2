package sqlite

import (
	"context"
	"fmt"
	"strings"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		project     TEXT NOT NULL,
		base_model  TEXT NOT NULL,
		workbook    TEXT NOT NULL,
		status      TEXT NOT NULL,
		started_at  TEXT NOT NULL,
		finished_at TEXT,
		total       INTEGER NOT NULL DEFAULT 0,
		succeeded   INTEGER NOT NULL DEFAULT 0,
		failed      INTEGER NOT NULL DEFAULT 0,
		skipped     INTEGER NOT NULL DEFAULT 0,
		not_run     INTEGER NOT NULL DEFAULT 0,
		error       TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS run_cases (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id         TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		case_index     INTEGER NOT NULL,
		name           TEXT NOT NULL,
		profile_name   TEXT NOT NULL,
		condition_name TEXT NOT NULL,
		artifact       TEXT NOT NULL DEFAULT '',
		status         TEXT NOT NULL,
		error          TEXT NOT NULL DEFAULT '',
		inactive_sinks TEXT NOT NULL DEFAULT '[]',
		duration_ms    INTEGER NOT NULL DEFAULT 0,
		CONSTRAINT uq_run_case UNIQUE (run_id, name)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs (started_at);
	CREATE INDEX IF NOT EXISTS idx_run_cases_run ON run_cases (run_id, case_index);
	CREATE INDEX IF NOT EXISTS idx_run_cases_status ON run_cases (run_id, status);
	`

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(ddl) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}

func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(stripped, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		statements = append(statements, current.String())
	}

	return statements
}
