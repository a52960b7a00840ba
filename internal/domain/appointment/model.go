package appointment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VisitType is the single-letter visit type code.
type VisitType string

const (
	VisitInPerson VisitType = "I"
	VisitVirtual  VisitType = "V"
)

// Valid reports whether the code is a known visit type.
func (v VisitType) Valid() bool {
	return v == VisitInPerson || v == VisitVirtual
}

// Display returns the human-readable visit type name.
func (v VisitType) Display() string {
	switch v {
	case VisitInPerson:
		return "In person"
	case VisitVirtual:
		return "Virtual"
	default:
		return string(v)
	}
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Date is a calendar date in "YYYY-MM-DD" form. The ISO layout makes
// lexicographic comparison equivalent to chronological comparison.
type Date string

// ParseDate validates and normalizes a date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date(t.Format(dateLayout)), nil
}

// DateOf truncates a time to its calendar date.
func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

func (d Date) Before(other Date) bool { return d < other }

// TimeOfDay is a clock time in 24-hour "HH:MM" form, comparable
// lexicographically.
type TimeOfDay string

// ParseTimeOfDay validates and normalizes a clock-time string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid time %q: %w", s, err)
	}
	return TimeOfDay(t.Format(timeLayout)), nil
}

// TimeOfDayOf truncates a time to its clock time (minute precision).
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Format(timeLayout))
}

// Hour returns the hour-of-day component.
func (t TimeOfDay) Hour() int {
	parsed, err := time.Parse(timeLayout, string(t))
	if err != nil {
		return -1
	}
	return parsed.Hour()
}

// Meridiem formats the time's hour as a 12-hour string with meridiem,
// e.g. "09 AM" for 09:45 or "02 PM" for 14:05.
func (t TimeOfDay) Meridiem() string {
	parsed, err := time.Parse(timeLayout, string(t))
	if err != nil {
		return string(t)
	}
	return parsed.Format("03 PM")
}

// Appointment maps to the appointments table.
type Appointment struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Date           Date      `db:"date" json:"date"`
	Time           TimeOfDay `db:"time_of_day" json:"time"`
	VisitType      VisitType `db:"visit_type" json:"visit_type"`
	CreatedFor     uuid.UUID `db:"created_for" json:"created_for"`
	CreatedForName string    `db:"created_for_name" json:"created_for_full_name,omitempty"`
	IsClosed       bool      `db:"is_closed" json:"is_closed"`
	Description    *string   `db:"description" json:"description,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
