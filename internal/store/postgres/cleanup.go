package postgres

import (
	"context"
	"fmt"
)

// PruneRuns deletes every run except the newest keep. Cases go with their run
// through the foreign key cascade.
func (c *Client) PruneRuns(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must not be negative")
	}

	query := `
DELETE FROM runs
WHERE id IN (SELECT id FROM runs ORDER BY started_at DESC, id OFFSET $1)
RETURNING id
`

	rows, err := c.pool.Query(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("removing stale runs: %w", err)
	}
	defer rows.Close()

	var count int64
	for rows.Next() {
		count++
	}

	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("counting deleted rows: %w", err)
	}

	return count, nil
}
