package collector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/trevmt/usagereport/internal/domain"

	"github.com/google/go-cmp/cmp"
)

// fakeSource serves canned datapoints or errors per entity.
type fakeSource struct {
	mu       sync.Mutex
	points   map[domain.EntityID][]domain.Datapoint
	errs     map[domain.EntityID]error
	inFlight int
	maxSeen  int
}

func (f *fakeSource) FetchDatapoints(_ context.Context, entity domain.EntityID, _ domain.Metric, _ domain.Period, _ time.Duration) ([]domain.Datapoint, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	f.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if err, ok := f.errs[entity]; ok {
		return nil, err
	}
	return f.points[entity], nil
}

func testPeriod() domain.Period {
	return domain.Period{
		Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
	}
}

func dp(hour int, value float64) domain.Datapoint {
	return domain.Datapoint{
		Timestamp: time.Date(2026, 8, 1, hour, 0, 0, 0, time.UTC),
		Value:     value,
	}
}

func TestCollect_PartitionInvariant(t *testing.T) {
	source := &fakeSource{
		points: map[domain.EntityID][]domain.Datapoint{
			"a": {dp(0, 10), dp(1, 20)},
			"b": {},
		},
		errs: map[domain.EntityID]error{
			"c": errors.New("fetch failed"),
		},
	}

	entities := []domain.EntityID{"a", "b", "c"}
	snapshot, err := New(source).Collect(context.Background(), entities, testPeriod())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	// Every configured entity appears in exactly one of PerEntity / Missing.
	for _, entity := range entities {
		_, inPerEntity := snapshot.PerEntity[entity]
		inMissing := false
		for _, m := range snapshot.Missing {
			if m == entity {
				inMissing = true
			}
		}
		if inPerEntity == inMissing {
			t.Errorf("entity %q: inPerEntity=%v inMissing=%v, want exactly one", entity, inPerEntity, inMissing)
		}
	}

	if len(snapshot.Missing) != 1 || snapshot.Missing[0] != "c" {
		t.Errorf("Missing = %v, want [c]", snapshot.Missing)
	}
	if got := snapshot.PerEntity["b"]; got == nil || len(got) != 0 {
		t.Errorf("entity b should have an empty (non-missing) sequence, got %v", got)
	}
}

func TestCollect_NormalizesOutOfOrderAndDuplicates(t *testing.T) {
	source := &fakeSource{
		points: map[domain.EntityID][]domain.Datapoint{
			"a": {
				dp(3, 30),
				dp(1, 10),
				dp(3, 33), // duplicate timestamp, later value wins
				dp(2, 20),
			},
		},
	}

	snapshot, err := New(source).Collect(context.Background(), []domain.EntityID{"a"}, testPeriod())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	want := []domain.Datapoint{dp(1, 10), dp(2, 20), dp(3, 33)}
	if diff := cmp.Diff(want, snapshot.PerEntity["a"]); diff != "" {
		t.Errorf("normalized datapoints mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_AllFetchesFail(t *testing.T) {
	source := &fakeSource{
		errs: map[domain.EntityID]error{
			"a": errors.New("boom"),
			"b": errors.New("boom"),
		},
	}

	_, err := New(source).Collect(context.Background(), []domain.EntityID{"a", "b"}, testPeriod())
	if !errors.Is(err, ErrAllEntitiesFailed) {
		t.Fatalf("expected ErrAllEntitiesFailed, got %v", err)
	}
}

func TestCollect_NoEntities(t *testing.T) {
	source := &fakeSource{}

	snapshot, err := New(source).Collect(context.Background(), nil, testPeriod())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(snapshot.PerEntity) != 0 || len(snapshot.Missing) != 0 {
		t.Errorf("expected empty snapshot, got %+v", snapshot)
	}
}

func TestCollect_RespectsConcurrencyCap(t *testing.T) {
	source := &fakeSource{
		points: map[domain.EntityID][]domain.Datapoint{},
	}

	entities := []domain.EntityID{"a", "b", "c", "d", "e", "f", "g", "h"}
	_, err := New(source, WithConcurrency(2)).Collect(context.Background(), entities, testPeriod())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if source.maxSeen > 2 {
		t.Errorf("observed %d concurrent fetches, cap is 2", source.maxSeen)
	}
}

func TestCollect_MissingEntitiesSorted(t *testing.T) {
	source := &fakeSource{
		errs: map[domain.EntityID]error{
			"z": errors.New("boom"),
			"a": errors.New("boom"),
			"m": errors.New("boom"),
		},
		points: map[domain.EntityID][]domain.Datapoint{
			"ok": {dp(0, 1)},
		},
	}

	snapshot, err := New(source).Collect(context.Background(), []domain.EntityID{"z", "ok", "a", "m"}, testPeriod())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	want := []domain.EntityID{"a", "m", "z"}
	if diff := cmp.Diff(want, snapshot.Missing); diff != "" {
		t.Errorf("missing ordering mismatch (-want +got):\n%s", diff)
	}
}
