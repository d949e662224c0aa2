package sqlite

import (
	"context"
	"fmt"
)

// PruneRuns deletes every run except the newest keep, along with their
// cases. It returns the number of runs removed.
func (c *Client) PruneRuns(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must not be negative")
	}

	// foreign_keys is a per-connection pragma, so cases are removed explicitly.
	stale := `SELECT id FROM runs ORDER BY started_at DESC, id LIMIT -1 OFFSET ?`

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_cases WHERE run_id IN (`+stale+`)`, keep); err != nil {
		return 0, fmt.Errorf("removing stale cases: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id IN (`+stale+`)`, keep)
	if err != nil {
		return 0, fmt.Errorf("removing stale runs: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing prune: %w", err)
	}
	return affected, nil
}
