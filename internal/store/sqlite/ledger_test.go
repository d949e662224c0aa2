package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casegen/internal/store"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()
	c, err := New(ctx, "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close(ctx) })
	require.NoError(t, c.EnsureSchema(ctx))
	return c
}

func TestLedgerRunLifecycle(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	started := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	require.NoError(t, c.StartRun(ctx, store.Run{
		ID:        "run-1",
		Project:   "field-a",
		BaseModel: "models/base.yaml",
		Workbook:  "inputs/cases.xlsx",
		StartedAt: started,
		Total:     2,
	}))

	require.NoError(t, c.RecordCase(ctx, "run-1", store.CaseRecord{
		Index: 1, Name: "base_P1_S-LP", Profile: "P1", Condition: "S-LP",
		Status: "failed", Error: "conflicting overrides",
	}))
	require.NoError(t, c.RecordCase(ctx, "run-1", store.CaseRecord{
		Index: 0, Name: "base_P1_S-HP", Profile: "P1", Condition: "S-HP",
		Artifact: "Models/base_P1_S-HP.yaml", Status: "succeeded",
		InactiveSinks: []string{"Sk-2"}, Duration: 12 * time.Millisecond,
	}))

	finished := started.Add(time.Minute)
	require.NoError(t, c.FinishRun(ctx, "run-1", store.RunSummary{
		Status: store.RunCompleted, FinishedAt: finished, Succeeded: 1, Failed: 1,
	}))

	t.Run("get run", func(t *testing.T) {
		run, err := c.GetRun(ctx, "run-1")
		require.NoError(t, err)
		assert.Equal(t, store.RunCompleted, run.Status)
		assert.Equal(t, started, run.StartedAt)
		require.NotNil(t, run.FinishedAt)
		assert.Equal(t, finished, *run.FinishedAt)
		assert.Equal(t, 2, run.Total)
		assert.Equal(t, 1, run.Failed)
	})

	t.Run("cases in matrix order", func(t *testing.T) {
		records, err := c.ListCases(ctx, "run-1", "")
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "base_P1_S-HP", records[0].Name)
		assert.Equal(t, []string{"Sk-2"}, records[0].InactiveSinks)
		assert.Equal(t, 12*time.Millisecond, records[0].Duration)
		assert.Equal(t, []string{}, records[1].InactiveSinks)
	})

	t.Run("cases filtered by status", func(t *testing.T) {
		records, err := c.ListCases(ctx, "run-1", "failed")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "conflicting overrides", records[0].Error)
	})

	t.Run("recording a case again replaces it", func(t *testing.T) {
		require.NoError(t, c.RecordCase(ctx, "run-1", store.CaseRecord{
			Index: 1, Name: "base_P1_S-LP", Profile: "P1", Condition: "S-LP", Status: "succeeded",
		}))
		records, err := c.ListCases(ctx, "run-1", "failed")
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("unknown run", func(t *testing.T) {
		_, err := c.GetRun(ctx, "missing")
		assert.ErrorIs(t, err, store.ErrRunNotFound)
		err = c.FinishRun(ctx, "missing", store.RunSummary{Status: store.RunCompleted, FinishedAt: finished})
		assert.ErrorIs(t, err, store.ErrRunNotFound)
	})
}

func TestLedgerListRuns(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, c.StartRun(ctx, store.Run{
			ID: id, Project: "p", BaseModel: "b", Workbook: "w",
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	runs, err := c.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "mid", runs[1].ID)
	assert.Equal(t, store.RunRunning, runs[0].Status)
	assert.Nil(t, runs[0].FinishedAt)
}

func TestPruneRuns(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, c.StartRun(ctx, store.Run{
			ID: id, Project: "p", BaseModel: "b", Workbook: "w",
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		}))
		require.NoError(t, c.RecordCase(ctx, id, store.CaseRecord{Name: "base_P1_S1", Profile: "P1", Condition: "S1", Status: "succeeded"}))
	}

	removed, err := c.PruneRuns(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	runs, err := c.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "new", runs[0].ID)

	rows, err := c.RunSQL(ctx, "SELECT COUNT(*) AS n FROM run_cases", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows[0]["n"])

	removed, err = c.PruneRuns(ctx, 5)
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, err = c.PruneRuns(ctx, -1)
	assert.Error(t, err)
}

func TestRunSQL(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	require.NoError(t, c.StartRun(ctx, store.Run{ID: "r", Project: "p", BaseModel: "b", Workbook: "w", StartedAt: time.Now()}))

	rows, err := c.RunSQL(ctx, "SELECT id, project FROM runs WHERE project = ?", map[string]any{"1": "p"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "r", rows[0]["id"])

	_, err = c.RunSQL(ctx, "DELETE FROM runs", nil)
	assert.ErrorIs(t, err, store.ErrNotReadOnly)

	t.Run("writes behind a leading WITH are refused", func(t *testing.T) {
		writes := []string{
			"WITH x AS (SELECT 1) DELETE FROM runs",
			"WITH x AS (SELECT 1) UPDATE runs SET project = 'q'",
			"WITH x AS (SELECT 1) INSERT INTO runs (id) SELECT 'y'",
		}
		for _, query := range writes {
			_, err := c.RunSQL(ctx, query, nil)
			assert.Error(t, err, query)
		}

		run, err := c.GetRun(ctx, "r")
		require.NoError(t, err)
		assert.Equal(t, "p", run.Project)
		runs, err := c.ListRuns(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, runs, 1)
	})

	t.Run("connection is writable afterwards", func(t *testing.T) {
		require.NoError(t, c.StartRun(ctx, store.Run{ID: "r2", Project: "p", BaseModel: "b", Workbook: "w", StartedAt: time.Now()}))
		rows, err := c.RunSQL(ctx, "WITH x AS (SELECT id FROM runs) SELECT COUNT(*) AS n FROM x", nil)
		require.NoError(t, err)
		assert.EqualValues(t, 2, rows[0]["n"])
	})
}

func TestParseDSN(t *testing.T) {
	tests := []struct {
		name    string
		dsn     string
		want    string
		wantErr bool
	}{
		{name: "memory", dsn: "sqlite://:memory:", want: ":memory:"},
		{name: "relative", dsn: "sqlite://casegen.db", want: "./casegen.db"},
		{name: "dot relative", dsn: "sqlite://./data/casegen.db", want: "./data/casegen.db"},
		{name: "absolute", dsn: "sqlite:///var/lib/casegen.db", want: "/var/lib/casegen.db"},
		{name: "escaped with query", dsn: "sqlite://my%20runs.db?cache=shared", want: "./my runs.db?cache=shared"},
		{name: "wrong scheme", dsn: "postgres://localhost/db", wantErr: true},
		{name: "no path", dsn: "sqlite://", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDSN(tt.dsn)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), filepath.FromSlash(got))
		})
	}
}
