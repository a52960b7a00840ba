// Package access decides whether an actor may perform an action on a
// resource. Rules are pure functions over the principal and a small resource
// description, composed from the predicates below; nothing here touches the
// store or the HTTP layer.
package access

import (
	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

// Action is the operation being attempted on a resource.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Appointment describes an appointment for authorization purposes.
type Appointment struct {
	PatientID uuid.UUID
}

// Note describes a note for authorization purposes.
type Note struct {
	AuthorID  uuid.UUID
	PatientID uuid.UUID // patient of the parent appointment
}

// IsStaff reports whether the actor holds the staff role.
func IsStaff(actor *auth.Principal) bool {
	return actor != nil && actor.IsStaff
}

// IsOwner reports whether the actor is the given user.
func IsOwner(actor *auth.Principal, userID uuid.UUID) bool {
	return actor != nil && actor.ID == userID
}

// CanAccessAppointmentCollection gates access to the nested resources of one
// appointment (its notes) before any specific object is loaded. Staff may
// access any appointment's collection; a patient only their own. A request
// that did not identify an appointment is always denied.
func CanAccessAppointmentCollection(actor *auth.Principal, appt *Appointment) bool {
	if appt == nil {
		return false
	}
	return IsStaff(actor) || IsOwner(actor, appt.PatientID)
}

// CanAccessResource is the object-level check. Reading an appointment-scoped
// resource is permitted to staff and to the appointment's patient. Any
// action on a note is permitted to staff and to the note's author.
// Unrecognized resource types are denied.
func CanAccessResource(actor *auth.Principal, action Action, resource interface{}) bool {
	switch r := resource.(type) {
	case *Appointment:
		if action == ActionRead {
			return IsStaff(actor) || IsOwner(actor, r.PatientID)
		}
		return false
	case *Note:
		// Reads follow the parent appointment's ownership; writes follow
		// authorship.
		if action == ActionRead {
			return IsStaff(actor) || IsOwner(actor, r.PatientID)
		}
		return IsStaff(actor) || IsOwner(actor, r.AuthorID)
	default:
		return false
	}
}

// CanMutateAvatar gates avatar update and delete, which are restricted to
// staff. Avatar read and create are open and not checked here.
func CanMutateAvatar(actor *auth.Principal) bool {
	return IsStaff(actor)
}
