// Package pipeline orchestrates a full report run: collect datapoints,
// aggregate statistics, render the document, publish both artifacts and
// notify interested channels. A run advances through stages in fixed
// order and stops at the first fatal failure.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/trevmt/usagereport/internal/aggregate"
	"github.com/trevmt/usagereport/internal/artifacts"
	"github.com/trevmt/usagereport/internal/collector"
	"github.com/trevmt/usagereport/internal/domain"
	"github.com/trevmt/usagereport/internal/notify"
	"github.com/trevmt/usagereport/internal/report"
	"github.com/trevmt/usagereport/internal/retry"
)

// Stage identifies a phase of the run.
type Stage string

const (
	StageCollecting  Stage = "collecting"
	StageAggregating Stage = "aggregating"
	StageRendering   Stage = "rendering"
	StagePublishing  Stage = "publishing"
	StageNotifying   Stage = "notifying"
	StageDone        Stage = "done"
)

// RunError reports which stage a run failed in.
type RunError struct {
	Stage Stage
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run failed during %s: %v", e.Stage, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// Config wires the collaborators a run needs.
type Config struct {
	Provider   string
	Source     domain.MetricSource
	Registry   domain.EntityRegistry
	Store      artifacts.Store
	Notifier   notify.Notifier
	Thresholds aggregate.Thresholds

	// Concurrency bounds parallel fetches. Zero uses the collector
	// default.
	Concurrency int

	// Retry controls publish retries. Zero value uses
	// retry.DefaultConfig().
	Retry retry.Config

	// Log receives warnings for non-fatal failures such as undelivered
	// notifications. Nil defaults to stderr.
	Log *log.Logger

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Result summarizes a run. Stage is StageDone on success, or the stage
// that failed. Fields are populated as far as the run got.
type Result struct {
	Stage      Stage
	Period     domain.Period
	Entities   []domain.EntityID
	Missing    []domain.EntityID
	Datapoints int
	Report     *domain.AggregateReport
	Document   string
}

// Runner executes report runs.
type Runner struct {
	cfg Config
	log *log.Logger
	now func() time.Time
}

func NewRunner(cfg Config) *Runner {
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	if cfg.Retry == (retry.Config{}) {
		cfg.Retry = retry.DefaultConfig()
	}
	logger := cfg.Log
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Runner{cfg: cfg, log: logger, now: now}
}

// Run executes one full run for the period. The returned Result is
// never nil; on failure it reflects how far the run got and the error
// is a *RunError naming the failed stage.
func (r *Runner) Run(ctx context.Context, period domain.Period) (*Result, error) {
	result := &Result{Stage: StageCollecting, Period: period}

	// Lifecycle notifications are best effort throughout; only the
	// run's own stages can fail it.
	r.send(ctx, notify.StatusStarted, period, "")

	entities, err := r.cfg.Registry.ListMonitoredEntities(ctx)
	if err != nil {
		return r.fail(ctx, result, StageCollecting, err)
	}
	result.Entities = entities

	opts := []collector.Option{}
	if r.cfg.Concurrency > 0 {
		opts = append(opts, collector.WithConcurrency(r.cfg.Concurrency))
	}
	snapshot, err := collector.New(r.cfg.Source, opts...).Collect(ctx, entities, period)
	if err != nil {
		return r.fail(ctx, result, StageCollecting, err)
	}
	result.Missing = snapshot.Missing
	result.Datapoints = snapshot.Datapoints()

	result.Stage = StageAggregating
	agg, err := aggregate.Build(snapshot, aggregate.Options{
		Thresholds:  r.cfg.Thresholds,
		GeneratedAt: r.now(),
	})
	if err != nil {
		return r.fail(ctx, result, StageAggregating, err)
	}
	result.Report = agg

	result.Stage = StageRendering
	doc, err := report.Render(agg)
	if err != nil {
		return r.fail(ctx, result, StageRendering, err)
	}
	result.Document = doc

	result.Stage = StagePublishing
	if err := r.publish(ctx, snapshot, doc); err != nil {
		return r.fail(ctx, result, StagePublishing, err)
	}

	result.Stage = StageNotifying
	detail := fmt.Sprintf("%d entities, %d datapoints", len(entities), result.Datapoints)
	r.send(ctx, notify.StatusCompleted, period, detail)

	result.Stage = StageDone
	return result, nil
}

// publish stores the snapshot and the rendered document under the
// period key, retrying transient storage failures. Re-publishing a
// period overwrites its previous artifacts.
func (r *Runner) publish(ctx context.Context, snapshot *domain.MetricSnapshot, doc string) error {
	blob, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	key := snapshot.Period.Key()
	if err := retry.Do(ctx, r.cfg.Retry, retry.Always, func() error {
		return r.cfg.Store.Put(artifacts.KindSnapshot, key, blob)
	}); err != nil {
		return fmt.Errorf("storing snapshot: %w", err)
	}
	if err := retry.Do(ctx, r.cfg.Retry, retry.Always, func() error {
		return r.cfg.Store.Put(artifacts.KindReport, key, []byte(doc))
	}); err != nil {
		return fmt.Errorf("storing report: %w", err)
	}
	return nil
}

func (r *Runner) fail(ctx context.Context, result *Result, stage Stage, err error) (*Result, error) {
	result.Stage = stage
	r.send(ctx, notify.StatusFailed, result.Period, fmt.Sprintf("%s: %v", stage, err))
	return result, &RunError{Stage: stage, Err: err}
}

func (r *Runner) send(ctx context.Context, status notify.Status, period domain.Period, detail string) {
	if r.cfg.Notifier == nil {
		return
	}
	err := r.cfg.Notifier.Notify(ctx, notify.Event{
		Status:    status,
		PeriodKey: period.Key(),
		Provider:  r.cfg.Provider,
		Detail:    detail,
		At:        r.now(),
	})
	if err != nil {
		r.log.Printf("warning: %s notification failed: %v", status, err)
	}
}
