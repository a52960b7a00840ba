package avatar

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a user has no avatar.
	ErrNotFound = errors.New("avatar not found")
	// ErrDuplicate is returned when the user already has an avatar.
	ErrDuplicate = errors.New("avatar already exists")
)

type Repository interface {
	Create(ctx context.Context, a *Avatar) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Avatar, error)
	Update(ctx context.Context, a *Avatar) error
	Delete(ctx context.Context, userID uuid.UUID) error
}
