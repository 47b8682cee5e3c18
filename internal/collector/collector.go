// Package collector fetches raw datapoints for the configured entities
// and assembles them into an immutable metric snapshot.
package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/trevmt/usagereport/internal/domain"

	"golang.org/x/sync/errgroup"
)

// ErrAllEntitiesFailed indicates every configured entity fetch failed,
// or the metric source was unreachable. Single-entity failures are not
// errors; they surface as missing entities in the snapshot.
var ErrAllEntitiesFailed = errors.New("all entity fetches failed")

const (
	defaultStep  = time.Hour
	defaultLimit = 4
)

// Collector fetches datapoints for a set of entities over one period.
type Collector struct {
	source domain.MetricSource
	metric domain.Metric
	step   time.Duration
	limit  int
}

// Option customizes a Collector.
type Option func(*Collector)

// WithMetric sets the metric to collect. Defaults to CPU utilization.
func WithMetric(metric domain.Metric) Option {
	return func(c *Collector) { c.metric = metric }
}

// WithStep sets the sampling granularity. Defaults to one sample per hour.
func WithStep(step time.Duration) Option {
	return func(c *Collector) {
		if step > 0 {
			c.step = step
		}
	}
}

// WithConcurrency caps the number of parallel per-entity fetches, so the
// collector respects the metric source's rate limits.
func WithConcurrency(limit int) Option {
	return func(c *Collector) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// New creates a Collector reading from the given metric source.
func New(source domain.MetricSource, opts ...Option) *Collector {
	c := &Collector{
		source: source,
		metric: domain.MetricCPU,
		step:   defaultStep,
		limit:  defaultLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect fetches datapoints for every entity over the period and builds
// the snapshot. Fetches run with bounded parallelism; the snapshot is
// assembled only after all of them settle, so no partial snapshot is ever
// observed. A failed fetch records its entity as missing; if every fetch
// fails the whole collection fails with ErrAllEntitiesFailed.
func (c *Collector) Collect(ctx context.Context, entities []domain.EntityID, period domain.Period) (*domain.MetricSnapshot, error) {
	type fetchResult struct {
		points []domain.Datapoint
		err    error
	}

	results := make([]fetchResult, len(entities))

	g, gtx := errgroup.WithContext(ctx)
	g.SetLimit(c.limit)
	for i, entity := range entities {
		i, entity := i, entity
		g.Go(func() error {
			points, err := c.source.FetchDatapoints(gtx, entity, c.metric, period, c.step)
			results[i] = fetchResult{points: points, err: err}
			return nil
		})
	}
	// Goroutines never return errors; Wait is only a barrier.
	g.Wait()

	snapshot := &domain.MetricSnapshot{
		Period:    period,
		PerEntity: make(map[domain.EntityID][]domain.Datapoint, len(entities)),
	}

	var firstErr error
	failed := 0
	for i, entity := range entities {
		result := results[i]
		if result.err != nil {
			failed++
			if firstErr == nil {
				firstErr = result.err
			}
			snapshot.Missing = append(snapshot.Missing, entity)
			continue
		}
		snapshot.PerEntity[entity] = normalize(result.points)
	}
	sort.Slice(snapshot.Missing, func(i, j int) bool {
		return snapshot.Missing[i] < snapshot.Missing[j]
	})

	if len(entities) > 0 && failed == len(entities) {
		return nil, fmt.Errorf("collector: %w (%d entities, first error: %v)", ErrAllEntitiesFailed, len(entities), firstErr)
	}

	return snapshot, nil
}

// normalize sorts datapoints ascending by timestamp and de-duplicates
// equal timestamps, keeping the last value seen. The metric source is
// not trusted to guarantee either property.
func normalize(points []domain.Datapoint) []domain.Datapoint {
	if len(points) == 0 {
		return []domain.Datapoint{}
	}

	sorted := make([]domain.Datapoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	out := sorted[:0]
	for _, p := range sorted {
		if n := len(out); n > 0 && out[n-1].Timestamp.Equal(p.Timestamp) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}
