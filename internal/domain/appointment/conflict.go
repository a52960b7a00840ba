package appointment

// ConflictingSlots decides whether a candidate booking collides with the
// patient's existing appointments on the same date. Two bookings conflict
// when they fall in the same hour of day; minutes are ignored.
//
// When any hour collision is found the returned list holds the 12-hour
// formatted times of EVERY existing appointment on that date, not only the
// colliding ones. Clients display the full day from that list. A nil
// return means the slot is free.
//
// The existing set must already exclude the appointment being rescheduled,
// so an edit that keeps its own slot does not conflict with itself.
func ConflictingSlots(existing []TimeOfDay, candidate TimeOfDay) []string {
	if len(existing) == 0 {
		return nil
	}

	collision := false
	slots := make([]string, 0, len(existing))
	for _, t := range existing {
		slots = append(slots, t.Meridiem())
		if t.Hour() == candidate.Hour() {
			collision = true
		}
	}
	if !collision {
		return nil
	}
	return slots
}
