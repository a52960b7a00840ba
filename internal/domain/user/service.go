package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicdesk/clinicdesk/internal/platform/access"
	"github.com/clinicdesk/clinicdesk/internal/platform/apperr"
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

// WelcomeMailer delivers the one-shot activation email.
type WelcomeMailer interface {
	SendWelcome(ctx context.Context, to, username string) error
}

type Service struct {
	repo   Repository
	mailer WelcomeMailer
}

func NewService(repo Repository, mailer WelcomeMailer) *Service {
	return &Service{repo: repo, mailer: mailer}
}

// RegisterInput carries a signup request.
type RegisterInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
	IsStaff   bool
}

// UpdateInput carries a partial profile edit. Nil fields are unchanged.
type UpdateInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Password  *string
	IsStaff   *bool
	IsActive  *bool
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Register creates an account. Staff actors may create staff accounts, which
// are active immediately; every other registration produces an inactive
// patient account awaiting staff activation.
func (s *Service) Register(ctx context.Context, actor *auth.Principal, in RegisterInput) (*User, error) {
	isStaff := in.IsStaff && access.IsStaff(actor)

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		IsStaff:      isStaff,
		IsActive:     isStaff,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, apperr.FieldError("username", "A user with that username or email already exists.")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.repo.GetByID(ctx, u.ID)
}

// Authenticate verifies credentials for login. Unknown users, wrong
// passwords and deactivated accounts all fail identically.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.AuthenticationRequired()
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !u.IsActive {
		return nil, apperr.AuthenticationRequired()
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, apperr.AuthenticationRequired()
	}
	return u, nil
}

// Get loads one user; staff may load anyone, others only themselves.
func (s *Service) Get(ctx context.Context, actor *auth.Principal, id uuid.UUID) (*User, error) {
	if actor == nil {
		return nil, apperr.AuthenticationRequired()
	}
	if !access.IsStaff(actor) && !access.IsOwner(actor, id) {
		return nil, apperr.PermissionDenied("")
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("user")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// List returns users matching the filter; staff only.
func (s *Service) List(ctx context.Context, actor *auth.Principal, f Filter, limit, offset int) ([]*User, int, error) {
	if actor == nil {
		return nil, 0, apperr.AuthenticationRequired()
	}
	if !access.IsStaff(actor) {
		return nil, 0, apperr.PermissionDenied("")
	}
	return s.repo.List(ctx, f, limit, offset)
}

// Update edits a profile. Staff may edit anyone including the role and
// activation flags; a user may edit their own profile fields only. The first
// transition of is_active from false to true sends the welcome email once;
// if delivery fails the activation is not persisted.
func (s *Service) Update(ctx context.Context, actor *auth.Principal, id uuid.UUID, in UpdateInput) (*User, error) {
	if actor == nil {
		return nil, apperr.AuthenticationRequired()
	}
	if !access.IsStaff(actor) && !access.IsOwner(actor, id) {
		return nil, apperr.PermissionDenied("")
	}
	if !access.IsStaff(actor) && (in.IsStaff != nil || in.IsActive != nil) {
		return nil, apperr.PermissionDenied("")
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("user")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	wasActive := u.IsActive
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.Password != nil {
		hash, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if in.IsStaff != nil {
		u.IsStaff = *in.IsStaff
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}

	if !wasActive && u.IsActive && !u.IsAlreadyActivated {
		if err := s.mailer.SendWelcome(ctx, u.Email, u.Username); err != nil {
			return nil, fmt.Errorf("send welcome email: %w", err)
		}
		u.IsAlreadyActivated = true
	}

	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, apperr.FieldError("email", "A user with that email already exists.")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.repo.GetByID(ctx, u.ID)
}

// Delete removes an account; staff only.
func (s *Service) Delete(ctx context.Context, actor *auth.Principal, id uuid.UUID) error {
	if actor == nil {
		return apperr.AuthenticationRequired()
	}
	if !access.IsStaff(actor) {
		return apperr.PermissionDenied("")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("user")
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
