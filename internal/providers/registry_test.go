package providers

import (
	"context"
	"testing"
	"time"

	"github.com/trevmt/usagereport/internal/domain"
	"github.com/trevmt/usagereport/internal/services/auth"
)

type stubSource struct{}

func (stubSource) FetchDatapoints(_ context.Context, _ domain.EntityID, _ domain.Metric, _ domain.Period, _ time.Duration) ([]domain.Datapoint, error) {
	return nil, nil
}

func resetRegistry(t *testing.T) {
	t.Helper()
	Reset()
	t.Cleanup(Reset)
}

func TestRegisterAndGet(t *testing.T) {
	resetRegistry(t)

	Register("Stub", func(store auth.Store) (domain.MetricSource, error) {
		return stubSource{}, nil
	})

	// Lookup is case-insensitive.
	source, err := Get("  STUB ", auth.NewMockStore())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if source == nil {
		t.Fatal("expected non-nil source")
	}
}

func TestGet_UnknownProvider(t *testing.T) {
	resetRegistry(t)

	if _, err := Get("nope", auth.NewMockStore()); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	resetRegistry(t)

	factory := func(store auth.Store) (domain.MetricSource, error) { return stubSource{}, nil }
	Register("stub", factory)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register("stub", factory)
}
