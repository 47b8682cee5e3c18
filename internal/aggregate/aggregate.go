// Package aggregate turns a raw metric snapshot into per-entity and
// fleet-wide statistics, utilization tiers and recommendations. All
// functions are pure: the same snapshot and options always produce the
// same report.
package aggregate

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/trevmt/usagereport/internal/domain"
)

// Thresholds are the tier boundaries, as percentages. A mean at or
// above High is HIGH, at or above Low is MEDIUM, below Low is LOW.
type Thresholds struct {
	Low  float64
	High float64
}

// DefaultThresholds matches the configuration defaults.
var DefaultThresholds = Thresholds{Low: 30, High: 70}

// SpikeThreshold is the peak value, as a percentage, above which an
// entity gets a spike recommendation even when its mean is unremarkable.
const SpikeThreshold = 95.0

// Options controls report generation.
type Options struct {
	// Thresholds for tier classification. Zero value falls back to
	// DefaultThresholds.
	Thresholds Thresholds

	// GeneratedAt is stamped on the report. Zero means time.Now().UTC().
	GeneratedAt time.Time
}

// Build computes an aggregate report from a snapshot. It returns an
// error if the snapshot is internally inconsistent (an entity listed
// both as collected and as missing) or if the thresholds are inverted.
func Build(snapshot *domain.MetricSnapshot, opts Options) (*domain.AggregateReport, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("aggregate: nil snapshot")
	}

	thresholds := opts.Thresholds
	if thresholds == (Thresholds{}) {
		thresholds = DefaultThresholds
	}
	if thresholds.Low > thresholds.High {
		return nil, fmt.Errorf("aggregate: low threshold %.2f exceeds high threshold %.2f", thresholds.Low, thresholds.High)
	}

	for _, entity := range snapshot.Missing {
		if _, ok := snapshot.PerEntity[entity]; ok {
			return nil, fmt.Errorf("aggregate: entity %q is both collected and missing", entity)
		}
	}

	generatedAt := opts.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now().UTC()
	}

	// Missing entities still get sentinel rows, so the report is
	// complete over the configured entity set.
	entities := make([]domain.EntityID, 0, len(snapshot.PerEntity)+len(snapshot.Missing))
	for entity := range snapshot.PerEntity {
		entities = append(entities, entity)
	}
	entities = append(entities, snapshot.Missing...)
	sort.Slice(entities, func(i, j int) bool { return entities[i] < entities[j] })

	report := &domain.AggregateReport{
		Period:      snapshot.Period,
		GeneratedAt: generatedAt,
	}

	var pooled []float64
	for _, entity := range entities {
		points := snapshot.PerEntity[entity]
		stats := entityStats(entity, points, thresholds)
		report.PerEntity = append(report.PerEntity, stats)
		report.Detail = append(report.Detail, entityDetail(entity, points))
		if stats.HasData() {
			for _, p := range points {
				pooled = append(pooled, p.Value)
			}
		}
	}

	report.Overall = poolStats(pooled)
	report.Recommendations = recommendations(report.PerEntity)

	return report, nil
}

// entityStats computes statistics for a single entity. An entity with
// no datapoints gets Count == 0 and TierNone; it never contributes to
// fleet statistics.
func entityStats(entity domain.EntityID, points []domain.Datapoint, thresholds Thresholds) domain.EntityStatistics {
	stats := domain.EntityStatistics{EntityID: entity}
	if len(points) == 0 {
		return stats
	}

	stats.Count = len(points)
	stats.Min = points[0].Value
	stats.Max = points[0].Value
	var sum float64
	for _, p := range points {
		if p.Value < stats.Min {
			stats.Min = p.Value
		}
		if p.Value > stats.Max {
			stats.Max = p.Value
		}
		sum += p.Value
	}
	stats.Mean = sum / float64(len(points))

	if len(points) > 1 {
		var ss float64
		for _, p := range points {
			d := p.Value - stats.Mean
			ss += d * d
		}
		stats.StdDev = math.Sqrt(ss / float64(len(points)-1))
	}

	stats.Tier = classify(stats.Mean, thresholds)
	return stats
}

// classify maps a mean value onto a tier. Boundary values land in the
// higher tier.
func classify(mean float64, thresholds Thresholds) domain.Tier {
	switch {
	case mean >= thresholds.High:
		return domain.TierHigh
	case mean >= thresholds.Low:
		return domain.TierMedium
	default:
		return domain.TierLow
	}
}

// poolStats computes fleet-wide statistics over all datapoints of all
// entities that reported data. The EntityID field stays empty.
func poolStats(values []float64) domain.EntityStatistics {
	var stats domain.EntityStatistics
	if len(values) == 0 {
		return stats
	}

	stats.Count = len(values)
	stats.Min = values[0]
	stats.Max = values[0]
	var sum float64
	for _, v := range values {
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
		sum += v
	}
	stats.Mean = sum / float64(len(values))

	if len(values) > 1 {
		var ss float64
		for _, v := range values {
			d := v - stats.Mean
			ss += d * d
		}
		stats.StdDev = math.Sqrt(ss / float64(len(values)-1))
	}

	return stats
}

// entityDetail buckets an entity's datapoints by UTC calendar day.
// Buckets come out in chronological order; datapoints are already
// sorted by the collector.
func entityDetail(entity domain.EntityID, points []domain.Datapoint) domain.EntityDetail {
	detail := domain.EntityDetail{EntityID: entity}

	var current *domain.DetailBucket
	var sum float64
	flush := func() {
		if current != nil {
			current.Mean = sum / float64(current.Count)
			detail.Buckets = append(detail.Buckets, *current)
		}
	}

	for _, p := range points {
		day := p.Timestamp.UTC().Truncate(24 * time.Hour)
		if current == nil || !current.Day.Equal(day) {
			flush()
			current = &domain.DetailBucket{Day: day, Min: p.Value, Max: p.Value}
			sum = 0
		}
		current.Count++
		if p.Value < current.Min {
			current.Min = p.Value
		}
		if p.Value > current.Max {
			current.Max = p.Value
		}
		sum += p.Value
	}
	flush()

	return detail
}

// recommendations derives action items from the classified entities.
// Output order is fixed: scaling advice for hot entities, spike warnings
// for entities that peaked above SpikeThreshold without being hot on
// average, downsizing advice for cold ones, a monitoring check for
// entities with no data, and an all-clear when nothing else applies.
// Within each rule, entities follow the report's lexicographic order.
func recommendations(perEntity []domain.EntityStatistics) []string {
	var recs []string

	for _, stats := range perEntity {
		if stats.Tier == domain.TierHigh {
			recs = append(recs, fmt.Sprintf("Entity %s averages %.2f%% utilization; consider scaling up or rebalancing its load.", stats.EntityID, stats.Mean))
		}
	}
	for _, stats := range perEntity {
		if stats.HasData() && stats.Tier != domain.TierHigh && stats.Max > SpikeThreshold {
			recs = append(recs, fmt.Sprintf("Entity %s peaked at %.2f%% utilization despite a %.2f%% average; investigate load spikes.", stats.EntityID, stats.Max, stats.Mean))
		}
	}
	for _, stats := range perEntity {
		if stats.HasData() && stats.Tier == domain.TierLow {
			recs = append(recs, fmt.Sprintf("Entity %s averages %.2f%% utilization; consider downsizing to reduce cost.", stats.EntityID, stats.Mean))
		}
	}
	for _, stats := range perEntity {
		if !stats.HasData() {
			recs = append(recs, fmt.Sprintf("Entity %s reported no data for the period; verify its monitoring configuration.", stats.EntityID))
		}
	}

	if len(recs) == 0 {
		recs = append(recs, "All entities are operating within normal utilization ranges.")
	}
	return recs
}
