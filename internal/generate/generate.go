// Package generate drives a generation run: every case of the plan is
// resolved and materialized on a bounded worker pool, failures stay scoped
// to their case, and each outcome is reported, logged and recorded.
package generate

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"casegen/internal/cases"
	"casegen/internal/config"
	"casegen/internal/logging"
	"casegen/internal/materialize"
	"casegen/internal/resolve"
	"casegen/internal/store"
)

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
	StatusNotRun    Status = "not_run"
)

type CaseRecord struct {
	Index         int
	Name          string
	Profile       string
	Condition     string
	Artifact      string
	Status        Status
	Err           error
	InactiveSinks []string
	Duration      time.Duration
}

type Result struct {
	RunID   string
	Records []CaseRecord
	// Aborted is set when the failure threshold or cancellation stopped
	// scheduling before every case ran.
	Aborted bool
	// LedgerErrors collects failures to record outcomes. They never fail a
	// case.
	LedgerErrors []error
}

func (r *Result) Count(status Status) int {
	n := 0
	for _, rec := range r.Records {
		if rec.Status == status {
			n++
		}
	}
	return n
}

func (r *Result) Failed() []CaseRecord {
	var out []CaseRecord
	for _, rec := range r.Records {
		if rec.Status == StatusFailed {
			out = append(out, rec)
		}
	}
	return out
}

// Ledger is the subset of store.Ledger a run writes to.
type Ledger interface {
	StartRun(ctx context.Context, run store.Run) error
	RecordCase(ctx context.Context, runID string, c store.CaseRecord) error
	FinishRun(ctx context.Context, runID string, summary store.RunSummary) error
}

type Options struct {
	// Resume skips cases whose artifact already exists.
	Resume    bool
	Overwrite bool
	// Workers overrides cfg.Workers when positive.
	Workers int
	Logger  logging.Logger
	Metrics *Metrics
	Now     func() time.Time
}

type runner struct {
	cfg     *config.ProjectConfig
	plan    *Plan
	ledger  Ledger
	log     logging.Logger
	metrics *Metrics
	now     func() time.Time
	runID   string

	skipExisting bool
	overwrite    bool

	mu           sync.Mutex
	ledgerErrors []error
}

// Run processes every case in plan. ledger may be nil. The returned error is
// reserved for run-level failures; case failures are reported in the Result.
func Run(ctx context.Context, cfg *config.ProjectConfig, plan *Plan, ledger Ledger, options Options) (*Result, error) {
	r := &runner{
		cfg:          cfg,
		plan:         plan,
		ledger:       ledger,
		log:          options.Logger,
		metrics:      options.Metrics,
		now:          options.Now,
		runID:        uuid.NewString(),
		overwrite:    cfg.Output.Overwrite || options.Overwrite,
		skipExisting: options.Resume || (cfg.Output.SkipExisting && !options.Overwrite),
	}
	if r.log == nil {
		r.log = logging.Noop()
	}
	if r.now == nil {
		r.now = time.Now
	}
	r.log = r.log.With(logging.String("run_id", r.runID))

	workers := cfg.Workers
	if options.Workers > 0 {
		workers = options.Workers
	}
	if workers < 1 {
		workers = 1
	}

	started := r.now()
	if ledger != nil {
		err := ledger.StartRun(ctx, store.Run{
			ID:        r.runID,
			Project:   cfg.Project,
			BaseModel: cfg.BaseModelPath(),
			Workbook:  cfg.WorkbookPath(),
			StartedAt: started,
			Total:     len(plan.Cases),
		})
		if err != nil {
			return nil, fmt.Errorf("recording run start: %w", err)
		}
	}
	if r.metrics != nil {
		r.metrics.LastRunCases.Set(float64(len(plan.Cases)))
	}

	r.log.Info(ctx, "run started",
		logging.Int("cases", len(plan.Cases)),
		logging.Int("workers", workers),
		logging.String("output_dir", cfg.OutputDir()))

	records := make([]CaseRecord, len(plan.Cases))
	var failures atomic.Int64
	aborted := false

	// A worker slot is taken before the stop check so the failure count seen
	// there includes every case that finished before it.
	slots := make(chan struct{}, workers)
	var g errgroup.Group
	for i, c := range plan.Cases {
		slots <- struct{}{}
		if r.shouldStop(ctx, failures.Load()) {
			<-slots
			aborted = true
			for j := i; j < len(plan.Cases); j++ {
				records[j] = notRun(plan.Cases[j])
				r.record(ctx, records[j])
			}
			break
		}
		g.Go(func() error {
			defer func() { <-slots }()
			rec := r.process(ctx, c)
			if rec.Status == StatusFailed {
				failures.Add(1)
			}
			records[i] = rec
			r.record(ctx, rec)
			return nil
		})
	}
	_ = g.Wait()
	if ctx.Err() != nil {
		aborted = true
	}

	result := &Result{RunID: r.runID, Records: records, Aborted: aborted, LedgerErrors: r.ledgerErrors}
	r.finish(ctx, result)
	return result, nil
}

func (r *runner) shouldStop(ctx context.Context, failures int64) bool {
	if ctx.Err() != nil {
		return true
	}
	return r.cfg.MaxFailures > 0 && failures >= int64(r.cfg.MaxFailures)
}

func notRun(c cases.Case) CaseRecord {
	return CaseRecord{
		Index:     c.Index,
		Name:      c.Name,
		Profile:   c.Profile.Name,
		Condition: c.Condition.Name,
		Status:    StatusNotRun,
	}
}

func (r *runner) process(ctx context.Context, c cases.Case) CaseRecord {
	rec := notRun(c)
	log := r.log.With(logging.String("case", c.Name))
	start := r.now()

	if err := ctx.Err(); err != nil {
		return rec
	}

	if r.skipExisting {
		exists, err := materialize.Exists(r.cfg.OutputDir(), c.ArtifactName)
		if err != nil {
			return r.fail(ctx, log, rec, err)
		}
		if exists {
			rec.Status = StatusSkipped
			log.Info(ctx, "artifact exists, skipping")
			return rec
		}
	}

	set, err := resolve.Resolve(c, r.plan.Catalog, resolve.Options{
		FlowParameter:   r.cfg.Activation.FlowParameter,
		RequireComplete: r.cfg.Activation.RequireCompleteProfiles,
	})
	if err != nil {
		return r.fail(ctx, log, rec, err)
	}
	activation := resolve.Activate(set, r.plan.Catalog, r.cfg.Threshold()).WithBase(r.plan.Base)

	artifact, err := materialize.Materialize(r.plan.Base, set, activation, c.ArtifactName, materialize.Options{
		Dir:       r.cfg.OutputDir(),
		Overwrite: r.overwrite,
	})
	if err != nil {
		return r.fail(ctx, log, rec, err)
	}

	rec.Status = StatusSucceeded
	rec.Artifact = artifact.Path
	rec.InactiveSinks = artifact.Inactive
	rec.Duration = r.now().Sub(start)
	log.Debug(ctx, "case materialized",
		logging.String("artifact", artifact.Path),
		logging.Int("values", set.Len()),
		logging.Int("inactive_sinks", len(artifact.Inactive)))
	return rec
}

func (r *runner) fail(ctx context.Context, log logging.Logger, rec CaseRecord, err error) CaseRecord {
	rec.Status = StatusFailed
	rec.Err = err
	log.Warn(ctx, "case failed", logging.Err(err))
	return rec
}

func (r *runner) record(ctx context.Context, rec CaseRecord) {
	r.metrics.observe(rec)
	if r.ledger == nil {
		return
	}
	entry := store.CaseRecord{
		Index:         rec.Index,
		Name:          rec.Name,
		Profile:       rec.Profile,
		Condition:     rec.Condition,
		Artifact:      rec.Artifact,
		Status:        string(rec.Status),
		InactiveSinks: rec.InactiveSinks,
		Duration:      rec.Duration,
	}
	if rec.Err != nil {
		entry.Error = rec.Err.Error()
	}
	if err := r.ledger.RecordCase(context.WithoutCancel(ctx), r.runID, entry); err != nil {
		r.mu.Lock()
		r.ledgerErrors = append(r.ledgerErrors, err)
		r.mu.Unlock()
		r.log.Warn(ctx, "recording case outcome", logging.String("case", rec.Name), logging.Err(err))
	}
}

func (r *runner) finish(ctx context.Context, result *Result) {
	summary := store.RunSummary{
		Status:     store.RunCompleted,
		FinishedAt: r.now(),
		Succeeded:  result.Count(StatusSucceeded),
		Failed:     result.Count(StatusFailed),
		Skipped:    result.Count(StatusSkipped),
		NotRun:     result.Count(StatusNotRun),
	}
	if result.Aborted {
		summary.Status = store.RunAborted
		if err := ctx.Err(); err != nil {
			summary.Error = err.Error()
		} else {
			summary.Error = fmt.Sprintf("stopped after %d failed cases", summary.Failed)
		}
	}

	r.log.Info(ctx, "run finished",
		logging.String("status", summary.Status),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped),
		logging.Int("not_run", summary.NotRun))

	if r.ledger != nil {
		// The run context may already be cancelled; the summary is still written.
		if err := r.ledger.FinishRun(context.WithoutCancel(ctx), r.runID, summary); err != nil {
			result.LedgerErrors = append(result.LedgerErrors, err)
			r.log.Warn(ctx, "recording run summary", logging.Err(err))
		}
	}
	if r.metrics != nil && r.cfg.MetricsFile != "" {
		if err := r.metrics.WriteTextfile(r.cfg.Resolve(r.cfg.MetricsFile)); err != nil {
			r.log.Warn(ctx, "writing metrics", logging.Err(err))
		}
	}
}

// RecordFailure records a run that stopped on a run-scoped error before any
// case was scheduled, and returns its id.
func RecordFailure(ctx context.Context, cfg *config.ProjectConfig, ledger Ledger, cause error) (string, error) {
	runID := uuid.NewString()
	now := time.Now()
	err := ledger.StartRun(ctx, store.Run{
		ID:        runID,
		Project:   cfg.Project,
		BaseModel: cfg.BaseModelPath(),
		Workbook:  cfg.WorkbookPath(),
		StartedAt: now,
	})
	if err != nil {
		return "", fmt.Errorf("recording run start: %w", err)
	}
	err = ledger.FinishRun(ctx, runID, store.RunSummary{
		Status:     store.RunFailed,
		FinishedAt: now,
		Error:      cause.Error(),
	})
	if err != nil {
		return "", fmt.Errorf("recording run failure: %w", err)
	}
	return runID, nil
}
