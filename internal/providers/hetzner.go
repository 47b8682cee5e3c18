package providers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/trevmt/usagereport/internal/domain"
	"github.com/trevmt/usagereport/internal/services/auth"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// HetznerSource implements domain.MetricSource using the Hetzner Cloud API.
// Entity identifiers are numeric Hetzner server IDs.
type HetznerSource struct {
	client *hcloud.Client
}

// NewHetznerSource creates a HetznerSource with the given hcloud client options.
// Default options (application name) are applied first; callers can override them.
func NewHetznerSource(opts ...hcloud.ClientOption) *HetznerSource {
	defaults := []hcloud.ClientOption{
		hcloud.WithApplication("usagereport", "0.1.0"),
	}
	allOpts := append(defaults, opts...)
	return &HetznerSource{
		client: hcloud.NewClient(allOpts...),
	}
}

// RegisterHetzner registers the Hetzner provider factory with the global registry.
func RegisterHetzner() {
	Register("hetzner", func(store auth.Store) (domain.MetricSource, error) {
		token, err := store.GetToken("hetzner")
		if err != nil {
			return nil, fmt.Errorf("hetzner auth: %w", err)
		}

		return NewHetznerSource(hcloud.WithToken(token)), nil
	})
}

// FetchDatapoints fetches the metric time series for one server over the
// period, sampled at roughly one point per step.
func (h *HetznerSource) FetchDatapoints(ctx context.Context, entity domain.EntityID, metric domain.Metric, period domain.Period, step time.Duration) ([]domain.Datapoint, error) {
	serverID, err := strconv.ParseInt(string(entity), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid server ID %q: %w", entity, err)
	}

	var metricType hcloud.ServerMetricType
	switch metric {
	case domain.MetricCPU:
		metricType = hcloud.ServerMetricCPU
	default:
		return nil, fmt.Errorf("unsupported metric type: %q", metric)
	}

	stepSeconds := int(step.Seconds())
	if stepSeconds < 1 {
		stepSeconds = 1
	}

	opts := hcloud.ServerGetMetricsOpts{
		Types: []hcloud.ServerMetricType{metricType},
		Start: period.Start,
		End:   period.End,
		Step:  stepSeconds,
	}

	hzMetrics, _, err := h.client.Server.GetMetrics(ctx, &hcloud.Server{ID: serverID}, opts)
	if err != nil {
		if hcloud.IsError(err, hcloud.ErrorCodeNotFound) {
			return nil, fmt.Errorf("failed to fetch server metrics: %w", domain.ErrNotFound)
		}
		if hcloud.IsError(err, hcloud.ErrorCodeUnauthorized) {
			return nil, fmt.Errorf("failed to fetch server metrics: %w", domain.ErrUnauthorized)
		}
		if hcloud.IsError(err, hcloud.ErrorCodeRateLimitExceeded) {
			return nil, fmt.Errorf("failed to fetch server metrics: %w", domain.ErrRateLimited)
		}
		return nil, fmt.Errorf("failed to fetch server metrics: %w", err)
	}

	return toDatapoints(hzMetrics, string(metric)), nil
}

// toDatapoints flattens the hcloud time series for the requested metric
// into datapoints. Values that cannot be parsed as float64 are skipped.
func toDatapoints(hz *hcloud.ServerMetrics, metric string) []domain.Datapoint {
	if hz == nil {
		return nil
	}

	series, ok := hz.TimeSeries[metric]
	if !ok {
		return nil
	}

	points := make([]domain.Datapoint, 0, len(series))
	for _, v := range series {
		f, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			continue
		}
		points = append(points, domain.Datapoint{
			Timestamp: time.Unix(int64(v.Timestamp), 0).UTC(),
			Value:     f,
		})
	}

	return points
}
