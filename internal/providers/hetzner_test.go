package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/trevmt/usagereport/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// testMetricsResponse builds a Hetzner API metrics response with the given
// time series data. Keys follow the Hetzner API naming (e.g. "cpu").
func testMetricsResponse(start, end string, step float64, timeSeries map[string][][2]any) map[string]any {
	ts := make(map[string]any, len(timeSeries))
	for name, points := range timeSeries {
		values := make([]any, len(points))
		for i, pt := range points {
			values[i] = []any{pt[0], pt[1]}
		}
		ts[name] = map[string]any{
			"values": values,
		}
	}

	return map[string]any{
		"metrics": map[string]any{
			"start":       start,
			"end":         end,
			"step":        step,
			"time_series": ts,
		},
	}
}

func testSource(t *testing.T, handler http.HandlerFunc) *HetznerSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHetznerSource(hcloud.WithEndpoint(srv.URL))
}

func TestFetchDatapoints_HappyPath(t *testing.T) {
	response := testMetricsResponse(
		"2026-08-01T00:00:00Z",
		"2026-08-01T03:00:00Z",
		3600,
		map[string][][2]any{
			"cpu": {
				{1753999200.0, "42.5"},
				{1754002800.0, "55.3"},
				{1754006400.0, "38.1"},
			},
		},
	)

	source := testSource(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/servers/42/metrics" {
			t.Errorf("expected path /servers/42/metrics, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("type"); got != "cpu" {
			t.Errorf("expected type=cpu query param, got %q", got)
		}
		if got := r.URL.Query().Get("step"); got != "3600" {
			t.Errorf("expected step=3600 query param, got %q", got)
		}
		json.NewEncoder(w).Encode(response)
	})

	period := domain.Period{
		Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 1, 3, 0, 0, 0, time.UTC),
	}
	points, err := source.FetchDatapoints(context.Background(), "42", domain.MetricCPU, period, time.Hour)
	if err != nil {
		t.Fatalf("FetchDatapoints failed: %v", err)
	}

	want := []domain.Datapoint{
		{Timestamp: time.Unix(1753999200, 0).UTC(), Value: 42.5},
		{Timestamp: time.Unix(1754002800, 0).UTC(), Value: 55.3},
		{Timestamp: time.Unix(1754006400, 0).UTC(), Value: 38.1},
	}
	if diff := cmp.Diff(want, points); diff != "" {
		t.Errorf("datapoints mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchDatapoints_SkipsUnparseableValues(t *testing.T) {
	response := testMetricsResponse(
		"2026-08-01T00:00:00Z",
		"2026-08-01T02:00:00Z",
		3600,
		map[string][][2]any{
			"cpu": {
				{1753999200.0, "42.5"},
				{1754002800.0, "not-a-number"},
			},
		},
	)

	source := testSource(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(response)
	})

	period := domain.Period{
		Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 1, 2, 0, 0, 0, time.UTC),
	}
	points, err := source.FetchDatapoints(context.Background(), "42", domain.MetricCPU, period, time.Hour)
	if err != nil {
		t.Fatalf("FetchDatapoints failed: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected 1 parseable datapoint, got %d", len(points))
	}
	if points[0].Value != 42.5 {
		t.Errorf("expected value 42.5, got %v", points[0].Value)
	}
}

func TestFetchDatapoints_InvalidServerID(t *testing.T) {
	source := NewHetznerSource()

	_, err := source.FetchDatapoints(context.Background(), "not-numeric", domain.MetricCPU, domain.Period{}, time.Hour)
	if err == nil {
		t.Fatal("expected error for non-numeric server ID")
	}
}

func TestFetchDatapoints_UnsupportedMetric(t *testing.T) {
	source := NewHetznerSource()

	_, err := source.FetchDatapoints(context.Background(), "42", domain.Metric("memory"), domain.Period{}, time.Hour)
	if err == nil {
		t.Fatal("expected error for unsupported metric")
	}
}

func TestFetchDatapoints_NotFoundMapsToDomainError(t *testing.T) {
	source := testSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":    "not_found",
				"message": "server not found",
			},
		})
	})

	_, err := source.FetchDatapoints(context.Background(), "42", domain.MetricCPU, domain.Period{}, time.Hour)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected domain.ErrNotFound, got %v", err)
	}
}
