package note

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/appointment"
	"github.com/clinicdesk/clinicdesk/internal/platform/access"
	"github.com/clinicdesk/clinicdesk/internal/platform/apperr"
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

type Service struct {
	repo  Repository
	appts appointment.Repository
}

func NewService(repo Repository, appts appointment.Repository) *Service {
	return &Service{repo: repo, appts: appts}
}

// gateCollection loads the parent appointment and applies the collection
// rule. A nonexistent appointment is reported as a permission failure, the
// same as an appointment the actor may not see.
func (s *Service) gateCollection(ctx context.Context, actor *auth.Principal, appointmentID uuid.UUID) (*appointment.Appointment, error) {
	if actor == nil {
		return nil, apperr.AuthenticationRequired()
	}
	appt, err := s.appts.GetByID(ctx, appointmentID)
	if err != nil {
		if err == appointment.ErrNotFound {
			return nil, apperr.PermissionDenied("")
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if !access.CanAccessAppointmentCollection(actor, &access.Appointment{PatientID: appt.CreatedFor}) {
		return nil, apperr.PermissionDenied("")
	}
	return appt, nil
}

// getScoped loads a note and verifies it belongs to the given appointment.
func (s *Service) getScoped(ctx context.Context, appointmentID, noteID uuid.UUID) (*Note, error) {
	n, err := s.repo.GetByID(ctx, noteID)
	if err != nil {
		if err == ErrNotFound {
			return nil, apperr.NotFound("note")
		}
		return nil, fmt.Errorf("load note: %w", err)
	}
	if n.AppointmentID != appointmentID {
		return nil, apperr.NotFound("note")
	}
	return n, nil
}

// Create attaches a note to an appointment, authored by the actor.
func (s *Service) Create(ctx context.Context, actor *auth.Principal, appointmentID uuid.UUID, description string) (*Note, error) {
	if _, err := s.gateCollection(ctx, actor, appointmentID); err != nil {
		return nil, err
	}
	n := &Note{
		AppointmentID: appointmentID,
		Description:   description,
		CreatedBy:     actor.ID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return s.repo.GetByID(ctx, n.ID)
}

// Get loads one note within an appointment.
func (s *Service) Get(ctx context.Context, actor *auth.Principal, appointmentID, noteID uuid.UUID) (*Note, error) {
	appt, err := s.gateCollection(ctx, actor, appointmentID)
	if err != nil {
		return nil, err
	}
	n, err := s.getScoped(ctx, appointmentID, noteID)
	if err != nil {
		return nil, err
	}
	desc := &access.Note{AuthorID: n.CreatedBy, PatientID: appt.CreatedFor}
	if !access.CanAccessResource(actor, access.ActionRead, desc) {
		return nil, apperr.PermissionDenied("")
	}
	return n, nil
}

// Update rewrites a note's body. The editor becomes the author and the
// created_on timestamp restarts.
func (s *Service) Update(ctx context.Context, actor *auth.Principal, appointmentID, noteID uuid.UUID, description string) (*Note, error) {
	appt, err := s.gateCollection(ctx, actor, appointmentID)
	if err != nil {
		return nil, err
	}
	n, err := s.getScoped(ctx, appointmentID, noteID)
	if err != nil {
		return nil, err
	}
	desc := &access.Note{AuthorID: n.CreatedBy, PatientID: appt.CreatedFor}
	if !access.CanAccessResource(actor, access.ActionUpdate, desc) {
		return nil, apperr.PermissionDenied("")
	}

	n.Description = description
	n.CreatedBy = actor.ID
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return s.repo.GetByID(ctx, n.ID)
}

// Delete removes a note; permitted to staff and to the note's author.
func (s *Service) Delete(ctx context.Context, actor *auth.Principal, appointmentID, noteID uuid.UUID) error {
	appt, err := s.gateCollection(ctx, actor, appointmentID)
	if err != nil {
		return err
	}
	n, err := s.getScoped(ctx, appointmentID, noteID)
	if err != nil {
		return err
	}
	desc := &access.Note{AuthorID: n.CreatedBy, PatientID: appt.CreatedFor}
	if !access.CanAccessResource(actor, access.ActionDelete, desc) {
		return apperr.PermissionDenied("")
	}
	if err := s.repo.Delete(ctx, noteID); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

// List returns an appointment's notes, newest first.
func (s *Service) List(ctx context.Context, actor *auth.Principal, appointmentID uuid.UUID, limit, offset int) ([]*Note, int, error) {
	if _, err := s.gateCollection(ctx, actor, appointmentID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByAppointment(ctx, appointmentID, limit, offset)
}
