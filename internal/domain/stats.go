package domain

import "time"

// Tier is the coarse utilization classification of an entity's mean
// metric value.
type Tier string

const (
	// TierNone is the sentinel for entities without data; no tier is
	// assigned when there is nothing to classify.
	TierNone Tier = "none"

	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// EntityStatistics holds derived statistics for one entity. A Count of
// zero is the "no data" sentinel: the numeric fields are zero and Tier
// is TierNone.
type EntityStatistics struct {
	EntityID EntityID `json:"entity_id"`
	Count    int      `json:"count"`
	Min      float64  `json:"min"`
	Max      float64  `json:"max"`
	Mean     float64  `json:"mean"`
	StdDev   float64  `json:"std_dev"`
	Tier     Tier     `json:"tier"`
}

// HasData reports whether any datapoints back these statistics.
func (s EntityStatistics) HasData() bool { return s.Count > 0 }

// DetailBucket summarizes one entity's datapoints within a single day.
type DetailBucket struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
	Min   float64   `json:"min"`
	Max   float64   `json:"max"`
	Mean  float64   `json:"mean"`
}

// EntityDetail carries the per-day buckets for one entity. Entities
// without data have an empty Buckets slice; they still appear so the
// detail section is complete over the configured entity set.
type EntityDetail struct {
	EntityID EntityID       `json:"entity_id"`
	Buckets  []DetailBucket `json:"buckets,omitempty"`
}

// AggregateReport is the derived statistics and recommendations for one
// period. It is produced once per run from exactly one snapshot and is
// deterministic given that snapshot: PerEntity is ordered
// lexicographically by entity id and Recommendations follow fixed rule
// evaluation order. GeneratedAt is the only field not derived from the
// snapshot.
type AggregateReport struct {
	Period          Period             `json:"period"`
	PerEntity       []EntityStatistics `json:"per_entity"`
	Overall         EntityStatistics   `json:"overall"`
	Detail          []EntityDetail     `json:"detail"`
	Recommendations []string           `json:"recommendations"`
	GeneratedAt     time.Time          `json:"generated_at"`
}

// TierCounts returns how many entities fall into each tier.
func (r *AggregateReport) TierCounts() map[Tier]int {
	counts := make(map[Tier]int, 4)
	for _, stats := range r.PerEntity {
		counts[stats.Tier]++
	}
	return counts
}
