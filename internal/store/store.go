package store

import (
	"context"
)

// Ledger records generation runs and the outcome of every case in them.
type Ledger interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	StartRun(ctx context.Context, run Run) error
	RecordCase(ctx context.Context, runID string, c CaseRecord) error
	FinishRun(ctx context.Context, runID string, summary RunSummary) error

	ListRuns(ctx context.Context, limit int) ([]Run, error)
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListCases(ctx context.Context, runID, status string) ([]CaseRecord, error)
	PruneRuns(ctx context.Context, keep int) (int64, error)

	RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}
