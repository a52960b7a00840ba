package access

import (
	"testing"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

func patient(id uuid.UUID) *auth.Principal {
	return &auth.Principal{ID: id, Username: "patient", IsStaff: false}
}

func staff() *auth.Principal {
	return &auth.Principal{ID: uuid.New(), Username: "staff", IsStaff: true}
}

func TestCanAccessAppointmentCollection(t *testing.T) {
	ownerID := uuid.New()
	appt := &Appointment{PatientID: ownerID}

	if !CanAccessAppointmentCollection(staff(), appt) {
		t.Error("staff should access any appointment collection")
	}
	if !CanAccessAppointmentCollection(patient(ownerID), appt) {
		t.Error("patient should access their own appointment collection")
	}
	if CanAccessAppointmentCollection(patient(uuid.New()), appt) {
		t.Error("another patient must be denied")
	}
	if CanAccessAppointmentCollection(nil, appt) {
		t.Error("unauthenticated actor must be denied")
	}
	if CanAccessAppointmentCollection(staff(), nil) {
		t.Error("missing appointment must be denied even for staff")
	}
}

func TestCanAccessResource_AppointmentRead(t *testing.T) {
	ownerID := uuid.New()
	appt := &Appointment{PatientID: ownerID}

	if !CanAccessResource(staff(), ActionRead, appt) {
		t.Error("staff read should be permitted")
	}
	if !CanAccessResource(patient(ownerID), ActionRead, appt) {
		t.Error("owner read should be permitted")
	}
	if CanAccessResource(patient(uuid.New()), ActionRead, appt) {
		t.Error("non-owner read must be denied")
	}
}

func TestCanAccessResource_Note(t *testing.T) {
	authorID := uuid.New()
	patientID := uuid.New()
	note := &Note{AuthorID: authorID, PatientID: patientID}

	// Reads follow the parent appointment's patient.
	if !CanAccessResource(patient(patientID), ActionRead, note) {
		t.Error("appointment patient should read notes")
	}
	if CanAccessResource(patient(uuid.New()), ActionRead, note) {
		t.Error("unrelated patient must not read notes")
	}

	// Writes follow authorship.
	if !CanAccessResource(patient(authorID), ActionUpdate, note) {
		t.Error("author should edit their note")
	}
	if CanAccessResource(patient(patientID), ActionDelete, note) {
		t.Error("non-author patient must not delete a note")
	}
	if !CanAccessResource(staff(), ActionDelete, note) {
		t.Error("staff should delete any note")
	}
}

func TestCanAccessResource_ClosedWorld(t *testing.T) {
	type mystery struct{}
	if CanAccessResource(staff(), ActionRead, &mystery{}) {
		t.Error("unrecognized resource types must be denied, even for staff")
	}
	if CanAccessResource(staff(), ActionRead, nil) {
		t.Error("nil resource must be denied")
	}
}

func TestCanMutateAvatar(t *testing.T) {
	if !CanMutateAvatar(staff()) {
		t.Error("staff should mutate avatars")
	}
	if CanMutateAvatar(patient(uuid.New())) {
		t.Error("non-staff must not mutate avatars")
	}
	if CanMutateAvatar(nil) {
		t.Error("unauthenticated actor must not mutate avatars")
	}
}
