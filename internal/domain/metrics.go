package domain

import (
	"fmt"
	"time"
)

// Metric enumerates the utilization metrics a source can supply.
type Metric string

const (
	// MetricCPU is CPU utilization as a percentage.
	MetricCPU Metric = "cpu"
)

// EntityID identifies a monitored compute instance. The core treats it
// as opaque; display names and tags are a registry concern.
type EntityID string

// Datapoint is a single sample in an entity's time series.
type Datapoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Period is the half-open time window [Start, End) a report covers.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// MonthToDate returns the period from the first instant of now's month
// (UTC) up to now.
func MonthToDate(now time.Time) Period {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: now}
}

// Key returns a stable identifier for the period, used to key persisted
// artifacts. Identical periods always produce identical keys.
func (p Period) Key() string {
	const layout = "20060102T150405Z"
	return p.Start.UTC().Format(layout) + "_" + p.End.UTC().Format(layout)
}

func (p Period) String() string {
	return fmt.Sprintf("%s to %s", p.Start.UTC().Format(time.RFC3339), p.End.UTC().Format(time.RFC3339))
}

// Duration returns the length of the period.
func (p Period) Duration() time.Duration {
	return p.End.Sub(p.Start)
}

// MetricSnapshot is the normalized collection of raw datapoints for one
// period. It is constructed once by the collector and never mutated.
//
// Every configured entity appears either as a key of PerEntity (possibly
// with an empty sequence) or in Missing, never both. Datapoint sequences
// are sorted ascending by timestamp with unique timestamps.
type MetricSnapshot struct {
	Period    Period                   `json:"period"`
	PerEntity map[EntityID][]Datapoint `json:"per_entity"`
	Missing   []EntityID               `json:"missing,omitempty"`
}

// Datapoints returns the total number of datapoints across all entities.
func (s *MetricSnapshot) Datapoints() int {
	n := 0
	for _, points := range s.PerEntity {
		n += len(points)
	}
	return n
}
