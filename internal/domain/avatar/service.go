package avatar

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/user"
	"github.com/clinicdesk/clinicdesk/internal/platform/access"
	"github.com/clinicdesk/clinicdesk/internal/platform/apperr"
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/internal/platform/blobstore"
)

type Service struct {
	repo  Repository
	blobs blobstore.Store
	users user.Repository
}

func NewService(repo Repository, blobs blobstore.Store, users user.Repository) *Service {
	return &Service{repo: repo, blobs: blobs, users: users}
}

// Upload carries an incoming avatar image.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

func uploadError(err error) error {
	switch {
	case errors.Is(err, blobstore.ErrFileTooLarge):
		return apperr.FieldError("avatar", "Image exceeds the 1000 KB size limit.")
	case errors.Is(err, blobstore.ErrInvalidContentType):
		return apperr.FieldError("avatar", "Unsupported image type.")
	case errors.Is(err, blobstore.ErrMissingFileName):
		return apperr.FieldError("avatar", "A file name is required.")
	default:
		return fmt.Errorf("store avatar: %w", err)
	}
}

func (s *Service) store(ctx context.Context, up Upload) (*blobstore.Metadata, error) {
	meta := blobstore.Metadata{
		FileName:    up.FileName,
		ContentType: up.ContentType,
		Size:        up.Size,
	}
	stored, err := s.blobs.Upload(ctx, meta, up.Content)
	if err != nil {
		return nil, uploadError(err)
	}
	return stored, nil
}

// Create uploads a user's first avatar. A second create for the same user is
// rejected; the image must be replaced through Update instead. No principal
// is required; the only constraint is that the target user exists.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, up Upload) (*Avatar, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, apperr.NotFound("user")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if _, err := s.repo.GetByUserID(ctx, userID); err == nil {
		return nil, apperr.DuplicateAvatar()
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("load avatar: %w", err)
	}

	stored, err := s.store(ctx, up)
	if err != nil {
		return nil, err
	}

	a := &Avatar{
		UserID:      userID,
		BlobID:      stored.ID,
		FileName:    stored.FileName,
		ContentType: stored.ContentType,
		Size:        stored.Size,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		// Lost the race with a concurrent create; drop the orphan blob.
		if errors.Is(err, ErrDuplicate) {
			s.blobs.Delete(ctx, stored.ID)
			return nil, apperr.DuplicateAvatar()
		}
		return nil, fmt.Errorf("create avatar: %w", err)
	}
	return s.repo.GetByUserID(ctx, userID)
}

// Get returns the avatar record for a user. Reads are open to anyone,
// authenticated or not.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*Avatar, error) {
	a, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("avatar")
		}
		return nil, fmt.Errorf("load avatar: %w", err)
	}
	return a, nil
}

// Open returns the avatar record together with its image content.
func (s *Service) Open(ctx context.Context, userID uuid.UUID) (*Avatar, io.ReadCloser, error) {
	a, err := s.Get(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	content, _, err := s.blobs.Download(ctx, a.BlobID)
	if err != nil {
		if errors.Is(err, blobstore.ErrBlobNotFound) {
			return nil, nil, apperr.NotFound("avatar")
		}
		return nil, nil, fmt.Errorf("download avatar: %w", err)
	}
	return a, content, nil
}

// Update replaces a user's avatar image; staff only.
func (s *Service) Update(ctx context.Context, actor *auth.Principal, userID uuid.UUID, up Upload) (*Avatar, error) {
	if actor == nil {
		return nil, apperr.AuthenticationRequired()
	}
	if !access.CanMutateAvatar(actor) {
		return nil, apperr.PermissionDenied("")
	}
	a, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("avatar")
		}
		return nil, fmt.Errorf("load avatar: %w", err)
	}

	stored, err := s.store(ctx, up)
	if err != nil {
		return nil, err
	}
	oldBlob := a.BlobID

	a.BlobID = stored.ID
	a.FileName = stored.FileName
	a.ContentType = stored.ContentType
	a.Size = stored.Size
	if err := s.repo.Update(ctx, a); err != nil {
		s.blobs.Delete(ctx, stored.ID)
		return nil, fmt.Errorf("update avatar: %w", err)
	}
	s.blobs.Delete(ctx, oldBlob)
	return s.repo.GetByUserID(ctx, userID)
}

// Delete removes a user's avatar and its image; staff only.
func (s *Service) Delete(ctx context.Context, actor *auth.Principal, userID uuid.UUID) error {
	if actor == nil {
		return apperr.AuthenticationRequired()
	}
	if !access.CanMutateAvatar(actor) {
		return apperr.PermissionDenied("")
	}
	a, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("avatar")
		}
		return fmt.Errorf("load avatar: %w", err)
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete avatar: %w", err)
	}
	s.blobs.Delete(ctx, a.BlobID)
	return nil
}
