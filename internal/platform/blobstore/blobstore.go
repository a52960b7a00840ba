// Package blobstore stores avatar image blobs. It defines the Store
// interface, an in-memory implementation used by tests and development, and
// a filesystem implementation used in production.
package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrBlobNotFound       = errors.New("blob not found")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrInvalidContentType = errors.New("content type is not allowed")
	ErrMissingFileName    = errors.New("file name is required")
)

// MaxFileSize is the maximum allowed image size in bytes (1000 KB).
const MaxFileSize = 1000 * 1024

// AllowedContentTypes lists the accepted avatar image MIME types.
var AllowedContentTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
}

// Metadata describes a stored blob.
type Metadata struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store defines the contract for blob storage backends.
type Store interface {
	Upload(ctx context.Context, meta Metadata, content io.Reader) (*Metadata, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *Metadata, error)
	Delete(ctx context.Context, id string) error
}

// ValidateUpload checks the declared metadata before accepting content.
func ValidateUpload(meta Metadata) error {
	if meta.FileName == "" {
		return ErrMissingFileName
	}
	if !AllowedContentTypes[meta.ContentType] {
		return fmt.Errorf("%w: %s", ErrInvalidContentType, meta.ContentType)
	}
	if meta.Size > MaxFileSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, meta.Size, MaxFileSize)
	}
	return nil
}

// readAll buffers content while enforcing the size limit, guarding against
// under-declared Content-Length.
func readAll(content io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(content, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read blob content: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

// ---------------------------------------------------------------------------
// In-memory implementation
// ---------------------------------------------------------------------------

type memoryBlob struct {
	meta    Metadata
	content []byte
}

// MemoryStore is an in-memory Store for tests and development.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]memoryBlob
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]memoryBlob)}
}

func (s *MemoryStore) Upload(_ context.Context, meta Metadata, content io.Reader) (*Metadata, error) {
	if err := ValidateUpload(meta); err != nil {
		return nil, err
	}
	data, err := readAll(content)
	if err != nil {
		return nil, err
	}

	if meta.ID == "" {
		meta.ID = uuid.New().String()
	}
	meta.Size = int64(len(data))
	meta.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	s.blobs[meta.ID] = memoryBlob{meta: meta, content: data}
	s.mu.Unlock()

	stored := meta
	return &stored, nil
}

func (s *MemoryStore) Download(_ context.Context, id string) (io.ReadCloser, *Metadata, error) {
	s.mu.RLock()
	blob, ok := s.blobs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, ErrBlobNotFound
	}
	meta := blob.meta
	return io.NopCloser(bytes.NewReader(blob.content)), &meta, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[id]; !ok {
		return ErrBlobNotFound
	}
	delete(s.blobs, id)
	return nil
}

// ---------------------------------------------------------------------------
// Filesystem implementation
// ---------------------------------------------------------------------------

// FileStore keeps blobs as files under a base directory, one file per blob id.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id)
}

func (s *FileStore) Upload(_ context.Context, meta Metadata, content io.Reader) (*Metadata, error) {
	if err := ValidateUpload(meta); err != nil {
		return nil, err
	}
	data, err := readAll(content)
	if err != nil {
		return nil, err
	}

	if meta.ID == "" {
		meta.ID = uuid.New().String()
	}
	meta.Size = int64(len(data))
	meta.CreatedAt = time.Now().UTC()

	if err := os.WriteFile(s.path(meta.ID), data, 0o644); err != nil {
		return nil, fmt.Errorf("write blob %s: %w", meta.ID, err)
	}

	stored := meta
	return &stored, nil
}

func (s *FileStore) Download(_ context.Context, id string) (io.ReadCloser, *Metadata, error) {
	f, err := os.Open(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrBlobNotFound
		}
		return nil, nil, fmt.Errorf("open blob %s: %w", id, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat blob %s: %w", id, err)
	}
	meta := &Metadata{ID: id, Size: info.Size(), CreatedAt: info.ModTime()}
	return f, meta, nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrBlobNotFound
		}
		return fmt.Errorf("remove blob %s: %w", id, err)
	}
	return nil
}
