package appointment

import "testing"

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2026-09-10"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, bad := range []string{"", "10/09/2026", "2026-13-01", "2026-09-32"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestParseTimeOfDay(t *testing.T) {
	if _, err := ParseTimeOfDay("09:30"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, bad := range []string{"", "9:30 AM", "24:00", "09:60"} {
		if _, err := ParseTimeOfDay(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestDateBefore(t *testing.T) {
	if !Date("2026-08-31").Before("2026-09-01") {
		t.Error("expected 2026-08-31 < 2026-09-01")
	}
	if Date("2026-09-01").Before("2026-09-01") {
		t.Error("a date is not before itself")
	}
}

func TestVisitTypeDisplay(t *testing.T) {
	if got := VisitInPerson.Display(); got != "In person" {
		t.Errorf("Display(I) = %q", got)
	}
	if got := VisitVirtual.Display(); got != "Virtual" {
		t.Errorf("Display(V) = %q", got)
	}
	if !VisitInPerson.Valid() || VisitType("X").Valid() {
		t.Error("visit type validity mismatch")
	}
}
