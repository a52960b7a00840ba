package note

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no note matches the given id.
var ErrNotFound = errors.New("note not found")

type Repository interface {
	Create(ctx context.Context, n *Note) error
	GetByID(ctx context.Context, id uuid.UUID) (*Note, error)
	Update(ctx context.Context, n *Note) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID, limit, offset int) ([]*Note, int, error)
}
