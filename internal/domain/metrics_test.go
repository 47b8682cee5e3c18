package domain

import (
	"testing"
	"time"
)

func TestMonthToDate(t *testing.T) {
	now := time.Date(2026, 8, 15, 9, 30, 0, 0, time.UTC)
	p := MonthToDate(now)

	wantStart := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	if !p.Start.Equal(wantStart) {
		t.Errorf("start = %s, want %s", p.Start, wantStart)
	}
	if !p.End.Equal(now) {
		t.Errorf("end = %s, want %s", p.End, now)
	}
}

func TestMonthToDate_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	// 01:00 on Sep 1 local is still Aug 31 in UTC.
	now := time.Date(2026, 9, 1, 1, 0, 0, 0, loc)
	p := MonthToDate(now)

	if p.Start.Month() != time.August {
		t.Errorf("start month = %s, want August", p.Start.Month())
	}
}

func TestPeriodKey_Stable(t *testing.T) {
	p := Period{
		Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
	}

	want := "20260801T000000Z_20260815T000000Z"
	if got := p.Key(); got != want {
		t.Errorf("key = %s, want %s", got, want)
	}

	// Same instant in a different zone yields the same key.
	loc := time.FixedZone("UTC-5", -5*3600)
	shifted := Period{Start: p.Start.In(loc), End: p.End.In(loc)}
	if shifted.Key() != want {
		t.Errorf("key changed across time zones: %s", shifted.Key())
	}
}

func TestSnapshotDatapoints(t *testing.T) {
	s := &MetricSnapshot{
		PerEntity: map[EntityID][]Datapoint{
			"a": {{Value: 1}, {Value: 2}},
			"b": {},
			"c": {{Value: 3}},
		},
	}
	if got := s.Datapoints(); got != 3 {
		t.Errorf("datapoints = %d, want 3", got)
	}
}
