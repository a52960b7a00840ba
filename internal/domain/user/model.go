package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User maps to the users table. Staff accounts are activated at
// registration; patient accounts start inactive and are activated by staff.
// IsAlreadyActivated records that the welcome email for the first activation
// went out, so later deactivate/reactivate cycles stay silent.
type User struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	Username           string    `db:"username" json:"username"`
	Email              string    `db:"email" json:"email"`
	FirstName          string    `db:"first_name" json:"first_name"`
	LastName           string    `db:"last_name" json:"last_name"`
	PasswordHash       string    `db:"password_hash" json:"-"`
	IsStaff            bool      `db:"is_staff" json:"is_staff"`
	IsActive           bool      `db:"is_active" json:"is_active"`
	IsAlreadyActivated bool      `db:"is_already_activated" json:"-"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins the name parts, tolerating a missing one.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
