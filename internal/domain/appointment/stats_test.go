package appointment

import (
	"testing"
	"time"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return parsed
}

func TestComputeStats_TodayPastDueByClock(t *testing.T) {
	now := mustTime(t, "2026-09-01 09:00")
	appts := []*Appointment{
		{Date: "2026-09-01", Time: "08:00"},
	}

	s := ComputeStats(appts, now)
	if s.Today.Total != 1 || s.Today.Open != 0 || s.Today.PastDue != 1 {
		t.Errorf("today = %+v, want total=1 open=0 past_due=1", s.Today)
	}
	// Lifetime compares dates only, so a same-day appointment is still open.
	if s.Lifetime.Open != 1 || s.Lifetime.PastDue != 0 {
		t.Errorf("lifetime = %+v, want open=1 past_due=0", s.Lifetime)
	}
}

func TestComputeStats_ExactClockTimeIsOpen(t *testing.T) {
	now := mustTime(t, "2026-09-01 09:00")
	appts := []*Appointment{
		{Date: "2026-09-01", Time: "09:00"},
	}

	s := ComputeStats(appts, now)
	if s.Today.Open != 1 || s.Today.PastDue != 0 {
		t.Errorf("today = %+v, want open=1 past_due=0", s.Today)
	}
}

func TestComputeStats_ClosedWinsOverPastDue(t *testing.T) {
	now := mustTime(t, "2026-09-01 12:00")
	appts := []*Appointment{
		{Date: "2026-08-20", Time: "10:00", IsClosed: true},
		{Date: "2026-09-01", Time: "08:00", IsClosed: true},
	}

	s := ComputeStats(appts, now)
	if s.Lifetime.Closed != 2 || s.Lifetime.PastDue != 0 {
		t.Errorf("lifetime = %+v, want closed=2 past_due=0", s.Lifetime)
	}
	if s.Today.Closed != 1 || s.Today.PastDue != 0 {
		t.Errorf("today = %+v, want closed=1 past_due=0", s.Today)
	}
}

func TestComputeStats_Tiers(t *testing.T) {
	now := mustTime(t, "2026-09-01 12:00")
	appts := []*Appointment{
		{Date: "2026-08-01", Time: "10:00"},                 // lifetime past due
		{Date: "2026-08-15", Time: "10:00", IsClosed: true}, // lifetime closed
		{Date: "2026-09-01", Time: "09:00"},                 // today past due
		{Date: "2026-09-01", Time: "15:00"},                 // today open
		{Date: "2026-10-01", Time: "10:00"},                 // lifetime open
	}

	s := ComputeStats(appts, now)
	want := Stats{
		Today:    Counts{Total: 2, Open: 1, Closed: 0, PastDue: 1},
		Lifetime: Counts{Total: 5, Open: 3, Closed: 1, PastDue: 1},
	}
	if s != want {
		t.Errorf("stats = %+v, want %+v", s, want)
	}
}

func TestComputeStats_Empty(t *testing.T) {
	s := ComputeStats(nil, mustTime(t, "2026-09-01 12:00"))
	if s != (Stats{}) {
		t.Errorf("expected zero stats, got %+v", s)
	}
}
