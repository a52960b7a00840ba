package note

import (
	"time"

	"github.com/google/uuid"
)

// MaxDescriptionLen caps the note body length.
const MaxDescriptionLen = 5000

// Note is a free-text annotation attached to one appointment. Editing a note
// reassigns authorship to the editor and resets the created_on timestamp, so
// the record always reflects who last wrote it and when.
type Note struct {
	ID            uuid.UUID `db:"id" json:"id"`
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment"`
	Description   string    `db:"description" json:"description"`
	CreatedBy     uuid.UUID `db:"created_by" json:"created_by"`
	CreatedByName string    `db:"created_by_name" json:"created_by_full_name,omitempty"`
	CreatedOn     time.Time `db:"created_on" json:"created_on"`
}
