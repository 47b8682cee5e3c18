package report

import (
	"strings"
	"testing"
	"time"

	"github.com/trevmt/usagereport/internal/config"
	"github.com/trevmt/usagereport/internal/runlog"
)

func saveTestRun(t *testing.T, record *runlog.RunRecord) {
	t.Helper()
	repo, err := runlog.Open()
	if err != nil {
		t.Fatalf("failed to open run log: %v", err)
	}
	defer repo.Close()
	if err := repo.Save(record); err != nil {
		t.Fatalf("failed to save run record: %v", err)
	}
}

func TestHistoryCommand_DisplaysRuns(t *testing.T) {
	setupTestEnv(t, &config.Config{DefaultProvider: "mock"})
	registerMockSource(t, "mock", &mockSource{})
	saveTestRun(t, &runlog.RunRecord{
		StartedAt:  time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC),
		Provider:   "hetzner",
		PeriodKey:  "20260801T000000Z_20260815T000000Z",
		Stage:      "done",
		Outcome:    runlog.OutcomeSuccess,
		Entities:   3,
		Missing:    1,
		Datapoints: 240,
		DurationMs: 1500,
	})

	stdout, _, err := execReport(t, "history")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	for _, want := range []string{"hetzner", "success", "done", "240", "1.5s"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in history output:\n%s", want, stdout)
		}
	}
}

func TestHistoryCommand_FilterByPeriod(t *testing.T) {
	setupTestEnv(t, &config.Config{DefaultProvider: "mock"})
	registerMockSource(t, "mock", &mockSource{})
	saveTestRun(t, &runlog.RunRecord{
		StartedAt: time.Now().UTC(),
		PeriodKey: "period-a",
		Stage:     "done",
		Outcome:   runlog.OutcomeSuccess,
	})
	saveTestRun(t, &runlog.RunRecord{
		StartedAt: time.Now().UTC(),
		PeriodKey: "period-b",
		Stage:     "collecting",
		Outcome:   runlog.OutcomeError,
		Detail:    "api down",
	})

	stdout, _, err := execReport(t, "history", "--period", "period-b")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if strings.Contains(stdout, "period-a") {
		t.Errorf("expected only period-b runs, got:\n%s", stdout)
	}
	if !strings.Contains(stdout, "period-b") {
		t.Errorf("expected period-b run, got:\n%s", stdout)
	}
}

func TestHistoryCommand_JSON(t *testing.T) {
	setupTestEnv(t, &config.Config{DefaultProvider: "mock"})
	registerMockSource(t, "mock", &mockSource{})
	saveTestRun(t, &runlog.RunRecord{
		StartedAt: time.Now().UTC(),
		PeriodKey: "period-a",
		Stage:     "done",
		Outcome:   runlog.OutcomeSuccess,
	})

	stdout, _, err := execReport(t, "history", "-o", "json")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(stdout, `"period_key": "period-a"`) {
		t.Errorf("expected JSON output, got:\n%s", stdout)
	}
}

func TestHistoryCommand_Empty(t *testing.T) {
	setupTestEnv(t, &config.Config{DefaultProvider: "mock"})
	registerMockSource(t, "mock", &mockSource{})

	stdout, _, err := execReport(t, "history")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(stdout, "No report runs found.") {
		t.Errorf("expected empty message, got:\n%s", stdout)
	}
}

func TestHistoryCommand_InvalidLimit(t *testing.T) {
	setupTestEnv(t, &config.Config{DefaultProvider: "mock"})
	registerMockSource(t, "mock", &mockSource{})

	_, _, err := execReport(t, "history", "--limit", "0")
	if err == nil || !strings.Contains(err.Error(), "limit must be greater than 0") {
		t.Fatalf("expected limit error, got %v", err)
	}
}
