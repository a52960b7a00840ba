package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no appointment matches the given id.
var ErrNotFound = errors.New("appointment not found")

// Filter narrows List queries. Nil fields are ignored.
type Filter struct {
	ID             *uuid.UUID
	CreatedFor     *uuid.UUID
	CreatedForName string // case-insensitive substring on patient first/last name
	VisitType      *VisitType
	IsClosed       *bool
	Date           *Date
	DateAfter      *Date
	DateBefore     *Date
	Time           *TimeOfDay
	TimeAfter      *TimeOfDay
	TimeBefore     *TimeOfDay
	OrderBy        []string // whitelisted: id, date, time, created_for; "-" prefix for descending
}

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error)
	// ListTimes returns the booked times for one patient on one date,
	// optionally excluding an appointment being rescheduled.
	ListTimes(ctx context.Context, patientID uuid.UUID, date Date, exclude *uuid.UUID) ([]TimeOfDay, error)
	// ListByPatient returns every appointment for one patient, for the
	// statistics aggregation.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
}
