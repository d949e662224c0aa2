package sqlite

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strconv"

	"casegen/internal/store"
)

// RunSQL runs a read-only query on a connection held in query_only mode, so a
// statement that slips past CheckReadOnly still cannot write. Positional
// parameters are passed as params["1"], params["2"] and so on.
func (c *Client) RunSQL(ctx context.Context, query string, params map[string]any) (_ []map[string]any, err error) {
	if err := store.CheckReadOnly(query); err != nil {
		return nil, err
	}

	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Close()
	if _, err := conn.ExecContext(ctx, "PRAGMA query_only = ON;"); err != nil {
		return nil, fmt.Errorf("setting query_only: %w", err)
	}
	defer func() {
		if _, resetErr := conn.ExecContext(context.Background(), "PRAGMA query_only = OFF;"); resetErr != nil {
			// Drop the connection rather than return a read-only one to the pool.
			_ = conn.Raw(func(any) error { return driver.ErrBadConn })
			if err == nil {
				err = fmt.Errorf("resetting query_only: %w", resetErr)
			}
		}
	}()

	args := make([]any, 0, len(params))
	for i := 1; i <= len(params); i++ {
		if val, ok := params[strconv.Itoa(i)]; ok {
			args = append(args, val)
		}
	}

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("running sql: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("getting columns: %w", err)
	}

	results := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sql rows: %w", err)
	}

	return results, nil
}
