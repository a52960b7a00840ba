package appointment

import "time"

// Counts is one tier of the appointment statistics.
type Counts struct {
	Total   int `json:"total"`
	Open    int `json:"open"`
	Closed  int `json:"closed"`
	PastDue int `json:"past_due"`
}

// Stats holds the dual-tier statistics for one patient.
type Stats struct {
	Today    Counts `json:"today"`
	Lifetime Counts `json:"lifetime"`
}

// ComputeStats aggregates a patient's appointments into lifetime and
// today-scoped counts. Lifetime figures compare dates only; today figures
// additionally gate open/past_due on the clock time in now.
func ComputeStats(appts []*Appointment, now time.Time) Stats {
	today := DateOf(now)
	clock := TimeOfDayOf(now)

	var s Stats
	for _, a := range appts {
		s.Lifetime.Total++
		switch {
		case a.IsClosed:
			s.Lifetime.Closed++
		case a.Date.Before(today):
			s.Lifetime.PastDue++
		default:
			s.Lifetime.Open++
		}

		if a.Date != today {
			continue
		}
		s.Today.Total++
		switch {
		case a.IsClosed:
			s.Today.Closed++
		case a.Time < clock:
			s.Today.PastDue++
		default:
			s.Today.Open++
		}
	}
	return s
}
