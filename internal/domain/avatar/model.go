package avatar

import (
	"time"

	"github.com/google/uuid"
)

// Avatar is a user's profile image. Each user has at most one; the image
// bytes live in the blob store and the row carries the pointer plus the
// upload metadata.
type Avatar struct {
	UserID      uuid.UUID `db:"user_id" json:"user"`
	BlobID      string    `db:"blob_id" json:"-"`
	FileName    string    `db:"file_name" json:"file_name"`
	ContentType string    `db:"content_type" json:"content_type"`
	Size        int64     `db:"size" json:"size"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
