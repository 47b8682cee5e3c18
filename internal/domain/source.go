package domain

import (
	"context"
	"time"
)

// MetricSource supplies raw datapoints for an entity over a time window.
// Implementations wrap a provider SDK and are not trusted to return
// ordered or de-duplicated datapoints; the collector normalizes them.
type MetricSource interface {
	// FetchDatapoints returns the datapoints for one entity over the
	// period, sampled at roughly one point per step.
	FetchDatapoints(ctx context.Context, entity EntityID, metric Metric, period Period, step time.Duration) ([]Datapoint, error)
}

// EntityRegistry lists the entities to monitor. It decouples the
// pipeline from any specific discovery mechanism.
type EntityRegistry interface {
	ListMonitoredEntities(ctx context.Context) ([]EntityID, error)
}
