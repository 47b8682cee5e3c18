package runlog

import "time"

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// RunRecord represents one persisted pipeline run.
type RunRecord struct {
	ID         int64     `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	Provider   string    `json:"provider,omitempty"`
	PeriodKey  string    `json:"period_key"`
	Stage      string    `json:"stage"`
	Outcome    string    `json:"outcome"`
	Detail     string    `json:"detail,omitempty"`
	Entities   int       `json:"entities"`
	Missing    int       `json:"missing"`
	Datapoints int       `json:"datapoints"`
	DurationMs int64     `json:"duration_ms"`
}
