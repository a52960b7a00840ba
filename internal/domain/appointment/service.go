package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/platform/access"
	"github.com/clinicdesk/clinicdesk/internal/platform/apperr"
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateInput carries a booking request.
type CreateInput struct {
	Date        Date
	Time        TimeOfDay
	VisitType   VisitType
	CreatedFor  *uuid.UUID
	Description *string
}

// UpdateInput carries a partial appointment edit. Nil fields are unchanged.
type UpdateInput struct {
	Date        *Date
	Time        *TimeOfDay
	VisitType   *VisitType
	IsClosed    *bool
	Description *string
}

// checkSlot runs the conflict validation for a candidate slot, excluding the
// appointment being rescheduled when exclude is non-nil.
func (s *Service) checkSlot(ctx context.Context, patientID uuid.UUID, date Date, t TimeOfDay, exclude *uuid.UUID) error {
	times, err := s.repo.ListTimes(ctx, patientID, date, exclude)
	if err != nil {
		return fmt.Errorf("list booked times: %w", err)
	}
	if slots := ConflictingSlots(times, t); slots != nil {
		return apperr.SlotConflict(slots)
	}
	return nil
}

// Create books an appointment. Non-staff actors always book for themselves;
// a client-supplied patient is honored only for staff.
func (s *Service) Create(ctx context.Context, actor *auth.Principal, in CreateInput) (*Appointment, error) {
	if actor == nil {
		return nil, apperr.AuthenticationRequired()
	}
	if !in.VisitType.Valid() {
		return nil, apperr.FieldError("visit_type", "Must be one of: I, V.")
	}

	createdFor := actor.ID
	if actor.IsStaff && in.CreatedFor != nil {
		createdFor = *in.CreatedFor
	}

	if err := s.checkSlot(ctx, createdFor, in.Date, in.Time, nil); err != nil {
		return nil, err
	}

	a := &Appointment{
		Date:        in.Date,
		Time:        in.Time,
		VisitType:   in.VisitType,
		CreatedFor:  createdFor,
		Description: in.Description,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return s.repo.GetByID(ctx, a.ID)
}

// Get loads one appointment, enforcing the object-level read rule.
func (s *Service) Get(ctx context.Context, actor *auth.Principal, id uuid.UUID) (*Appointment, error) {
	if actor == nil {
		return nil, apperr.AuthenticationRequired()
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return nil, apperr.NotFound("appointment")
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if !access.CanAccessResource(actor, access.ActionRead, &access.Appointment{PatientID: a.CreatedFor}) {
		return nil, apperr.PermissionDenied("")
	}
	return a, nil
}

// Update edits an appointment, re-validating the slot with the record itself
// excluded so an unchanged slot does not self-conflict. The patient
// (created_for) is immutable once set.
func (s *Service) Update(ctx context.Context, actor *auth.Principal, id uuid.UUID, in UpdateInput) (*Appointment, error) {
	if actor == nil {
		return nil, apperr.AuthenticationRequired()
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return nil, apperr.NotFound("appointment")
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if !access.IsStaff(actor) && !access.IsOwner(actor, a.CreatedFor) {
		return nil, apperr.PermissionDenied("")
	}

	if in.Date != nil {
		a.Date = *in.Date
	}
	if in.Time != nil {
		a.Time = *in.Time
	}
	if in.VisitType != nil {
		if !in.VisitType.Valid() {
			return nil, apperr.FieldError("visit_type", "Must be one of: I, V.")
		}
		a.VisitType = *in.VisitType
	}
	if in.IsClosed != nil {
		a.IsClosed = *in.IsClosed
	}
	if in.Description != nil {
		a.Description = in.Description
	}

	if err := s.checkSlot(ctx, a.CreatedFor, a.Date, a.Time, &a.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	return s.repo.GetByID(ctx, a.ID)
}

// Delete removes an appointment; permitted to staff and to the patient.
func (s *Service) Delete(ctx context.Context, actor *auth.Principal, id uuid.UUID) error {
	if actor == nil {
		return apperr.AuthenticationRequired()
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return apperr.NotFound("appointment")
		}
		return fmt.Errorf("load appointment: %w", err)
	}
	if !access.IsStaff(actor) && !access.IsOwner(actor, a.CreatedFor) {
		return apperr.PermissionDenied("")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

// List returns appointments matching the filter. Staff see every patient's
// appointments; other actors are always scoped to their own.
func (s *Service) List(ctx context.Context, actor *auth.Principal, f Filter, limit, offset int) ([]*Appointment, int, error) {
	if actor == nil {
		return nil, 0, apperr.AuthenticationRequired()
	}
	if !actor.IsStaff {
		own := actor.ID
		f.CreatedFor = &own
	}
	return s.repo.List(ctx, f, limit, offset)
}

// Today returns the caller's appointments for the current date, ordered by
// time ascending.
func (s *Service) Today(ctx context.Context, actor *auth.Principal, limit, offset int) ([]*Appointment, int, error) {
	if actor == nil {
		return nil, 0, apperr.AuthenticationRequired()
	}
	today := DateOf(s.now())
	own := actor.ID
	f := Filter{
		CreatedFor: &own,
		Date:       &today,
		OrderBy:    []string{"time"},
	}
	return s.repo.List(ctx, f, limit, offset)
}

// Calendar returns the global appointment listing for staff, ordered by
// (date, time).
func (s *Service) Calendar(ctx context.Context, actor *auth.Principal, f Filter, limit, offset int) ([]*Appointment, int, error) {
	if actor == nil {
		return nil, 0, apperr.AuthenticationRequired()
	}
	if !actor.IsStaff {
		return nil, 0, apperr.PermissionDenied("")
	}
	f.OrderBy = []string{"date", "time"}
	return s.repo.List(ctx, f, limit, offset)
}

// Stats computes the caller's lifetime and today-scoped appointment counts.
func (s *Service) Stats(ctx context.Context, actor *auth.Principal) (*Stats, error) {
	if actor == nil {
		return nil, apperr.AuthenticationRequired()
	}
	appts, err := s.repo.ListByPatient(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	stats := ComputeStats(appts, s.now())
	return &stats, nil
}
