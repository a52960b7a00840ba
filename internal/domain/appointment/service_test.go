package appointment

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/platform/apperr"
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

// -- Mock Repository --

type mockRepo struct {
	appts map[uuid.UUID]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	cp := *a
	m.appts[a.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, a *Appointment) error {
	if _, ok := m.appts[a.ID]; !ok {
		return ErrNotFound
	}
	cp := *a
	m.appts[a.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.appts[id]; !ok {
		return ErrNotFound
	}
	delete(m.appts, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	var result []*Appointment
	for _, a := range m.appts {
		if f.CreatedFor != nil && a.CreatedFor != *f.CreatedFor {
			continue
		}
		if f.Date != nil && a.Date != *f.Date {
			continue
		}
		if f.IsClosed != nil && a.IsClosed != *f.IsClosed {
			continue
		}
		cp := *a
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		return result[i].Time < result[j].Time
	})
	return result, len(result), nil
}

func (m *mockRepo) ListTimes(_ context.Context, patientID uuid.UUID, date Date, exclude *uuid.UUID) ([]TimeOfDay, error) {
	var times []TimeOfDay
	for _, a := range m.appts {
		if a.CreatedFor != patientID || a.Date != date {
			continue
		}
		if exclude != nil && a.ID == *exclude {
			continue
		}
		times = append(times, a.Time)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	return times, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	var result []*Appointment
	for _, a := range m.appts {
		if a.CreatedFor == patientID {
			cp := *a
			result = append(result, &cp)
		}
	}
	return result, nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	svc := NewService(repo)
	return svc, repo
}

func patient() *auth.Principal {
	return &auth.Principal{ID: uuid.New(), Username: "pat"}
}

func staff() *auth.Principal {
	return &auth.Principal{ID: uuid.New(), Username: "doc", IsStaff: true}
}

func validationFields(t *testing.T, err error) apperr.Fields {
	t.Helper()
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	return ve.Fields
}

// -- Create --

func TestService_Create_NonStaffBooksForSelf(t *testing.T) {
	svc, _ := newTestService()
	actor := patient()
	other := uuid.New()

	a, err := svc.Create(context.Background(), actor, CreateInput{
		Date: "2026-09-10", Time: "09:00", VisitType: VisitInPerson,
		CreatedFor: &other,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.CreatedFor != actor.ID {
		t.Errorf("created_for = %s, want actor %s", a.CreatedFor, actor.ID)
	}
}

func TestService_Create_StaffBooksForPatient(t *testing.T) {
	svc, _ := newTestService()
	target := uuid.New()

	a, err := svc.Create(context.Background(), staff(), CreateInput{
		Date: "2026-09-10", Time: "09:00", VisitType: VisitVirtual,
		CreatedFor: &target,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.CreatedFor != target {
		t.Errorf("created_for = %s, want %s", a.CreatedFor, target)
	}
}

func TestService_Create_StaffWithoutTargetBooksForSelf(t *testing.T) {
	svc, _ := newTestService()
	actor := staff()

	a, err := svc.Create(context.Background(), actor, CreateInput{
		Date: "2026-09-10", Time: "09:00", VisitType: VisitInPerson,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.CreatedFor != actor.ID {
		t.Errorf("created_for = %s, want actor %s", a.CreatedFor, actor.ID)
	}
}

func TestService_Create_Unauthenticated(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Create(context.Background(), nil, CreateInput{
		Date: "2026-09-10", Time: "09:00", VisitType: VisitInPerson,
	})
	var ae *apperr.AuthenticationError
	if !errors.As(err, &ae) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestService_Create_SlotConflict(t *testing.T) {
	svc, _ := newTestService()
	actor := patient()
	ctx := context.Background()

	if _, err := svc.Create(ctx, actor, CreateInput{
		Date: "2026-09-10", Time: "09:10", VisitType: VisitInPerson,
	}); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	_, err := svc.Create(ctx, actor, CreateInput{
		Date: "2026-09-10", Time: "09:50", VisitType: VisitInPerson,
	})
	fields := validationFields(t, err)
	slots := fields["conflicting_slots"]
	if len(slots) != 1 || slots[0] != "09 AM" {
		t.Errorf("conflicting_slots = %v, want [09 AM]", slots)
	}
}

func TestService_Create_AdjacentHourAllowed(t *testing.T) {
	svc, _ := newTestService()
	actor := patient()
	ctx := context.Background()

	if _, err := svc.Create(ctx, actor, CreateInput{
		Date: "2026-09-10", Time: "09:00", VisitType: VisitInPerson,
	}); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}
	if _, err := svc.Create(ctx, actor, CreateInput{
		Date: "2026-09-10", Time: "10:00", VisitType: VisitInPerson,
	}); err != nil {
		t.Errorf("expected adjacent hour to book, got %v", err)
	}
}

func TestService_Create_SameSlotDifferentPatients(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	doc := staff()
	p1, p2 := uuid.New(), uuid.New()

	for _, target := range []uuid.UUID{p1, p2} {
		id := target
		if _, err := svc.Create(ctx, doc, CreateInput{
			Date: "2026-09-10", Time: "09:00", VisitType: VisitInPerson,
			CreatedFor: &id,
		}); err != nil {
			t.Errorf("booking for %s failed: %v", target, err)
		}
	}
}

// -- Update --

func TestService_Update_KeepingOwnSlotDoesNotConflict(t *testing.T) {
	svc, _ := newTestService()
	actor := patient()
	ctx := context.Background()

	a, err := svc.Create(ctx, actor, CreateInput{
		Date: "2026-09-10", Time: "09:00", VisitType: VisitInPerson,
	})
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	closed := true
	updated, err := svc.Update(ctx, actor, a.ID, UpdateInput{IsClosed: &closed})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.IsClosed {
		t.Error("expected appointment to be closed")
	}
}

func TestService_Update_RescheduleIntoBookedHour(t *testing.T) {
	svc, _ := newTestService()
	actor := patient()
	ctx := context.Background()

	for _, in := range []CreateInput{
		{Date: "2026-09-10", Time: "09:00", VisitType: VisitInPerson},
		{Date: "2026-09-10", Time: "14:00", VisitType: VisitInPerson},
	} {
		if _, err := svc.Create(ctx, actor, in); err != nil {
			t.Fatalf("seed booking failed: %v", err)
		}
	}
	a, err := svc.Create(ctx, actor, CreateInput{
		Date: "2026-09-10", Time: "11:00", VisitType: VisitInPerson,
	})
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	moved := TimeOfDay("09:30")
	_, err = svc.Update(ctx, actor, a.ID, UpdateInput{Time: &moved})
	fields := validationFields(t, err)
	slots := fields["conflicting_slots"]
	// Every other booking on the date is reported; the rescheduled
	// appointment itself is not.
	want := []string{"09 AM", "02 PM"}
	if !reflect.DeepEqual(slots, want) {
		t.Errorf("conflicting_slots = %v, want %v", slots, want)
	}
}

func TestService_Update_OtherPatientDenied(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	owner := patient()

	a, err := svc.Create(ctx, owner, CreateInput{
		Date: "2026-09-10", Time: "09:00", VisitType: VisitInPerson,
	})
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	closed := true
	_, err = svc.Update(ctx, patient(), a.ID, UpdateInput{IsClosed: &closed})
	var pe *apperr.PermissionError
	if !errors.As(err, &pe) {
		t.Fatalf("expected permission error, got %v", err)
	}
}

func TestService_Update_StaffCanEditAnyPatient(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, patient(), CreateInput{
		Date: "2026-09-10", Time: "09:00", VisitType: VisitInPerson,
	})
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	closed := true
	updated, err := svc.Update(ctx, staff(), a.ID, UpdateInput{IsClosed: &closed})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.IsClosed {
		t.Error("expected appointment to be closed")
	}
	if updated.CreatedFor != a.CreatedFor {
		t.Error("created_for must not change on update")
	}
}

func TestService_Update_NotFound(t *testing.T) {
	svc, _ := newTestService()
	closed := true
	_, err := svc.Update(context.Background(), staff(), uuid.New(), UpdateInput{IsClosed: &closed})
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

// -- Get / Delete --

func TestService_Get_OwnerAndStaffOnly(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	owner := patient()

	a, err := svc.Create(ctx, owner, CreateInput{
		Date: "2026-09-10", Time: "09:00", VisitType: VisitInPerson,
	})
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	if _, err := svc.Get(ctx, owner, a.ID); err != nil {
		t.Errorf("owner read failed: %v", err)
	}
	if _, err := svc.Get(ctx, staff(), a.ID); err != nil {
		t.Errorf("staff read failed: %v", err)
	}
	var pe *apperr.PermissionError
	if _, err := svc.Get(ctx, patient(), a.ID); !errors.As(err, &pe) {
		t.Errorf("expected permission error for other patient, got %v", err)
	}
}

func TestService_Delete_OwnerAllowed(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	owner := patient()

	a, err := svc.Create(ctx, owner, CreateInput{
		Date: "2026-09-10", Time: "09:00", VisitType: VisitInPerson,
	})
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}
	if err := svc.Delete(ctx, owner, a.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.appts) != 0 {
		t.Error("expected appointment to be removed")
	}
}

func TestService_Delete_OtherPatientDenied(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, patient(), CreateInput{
		Date: "2026-09-10", Time: "09:00", VisitType: VisitInPerson,
	})
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}
	var pe *apperr.PermissionError
	if err := svc.Delete(ctx, patient(), a.ID); !errors.As(err, &pe) {
		t.Fatalf("expected permission error, got %v", err)
	}
}

// -- Listings --

func TestService_List_NonStaffScopedToOwn(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	actor := patient()

	if _, err := svc.Create(ctx, actor, CreateInput{
		Date: "2026-09-10", Time: "09:00", VisitType: VisitInPerson,
	}); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}
	if _, err := svc.Create(ctx, patient(), CreateInput{
		Date: "2026-09-10", Time: "09:00", VisitType: VisitInPerson,
	}); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	items, total, err := svc.List(ctx, actor, Filter{}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].CreatedFor != actor.ID {
		t.Errorf("expected only the actor's appointment, got %d items", len(items))
	}
}

func TestService_Today_ScopedToCurrentDate(t *testing.T) {
	svc, _ := newTestService()
	svc.now = func() time.Time { return mustTime(t, "2026-09-01 08:00") }
	ctx := context.Background()
	actor := patient()

	for _, in := range []CreateInput{
		{Date: "2026-09-01", Time: "15:00", VisitType: VisitInPerson},
		{Date: "2026-09-01", Time: "09:00", VisitType: VisitInPerson},
		{Date: "2026-09-02", Time: "09:00", VisitType: VisitInPerson},
	} {
		if _, err := svc.Create(ctx, actor, in); err != nil {
			t.Fatalf("seed booking failed: %v", err)
		}
	}

	items, total, err := svc.Today(ctx, actor, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 appointments today, got %d", total)
	}
	if items[0].Time != "09:00" || items[1].Time != "15:00" {
		t.Errorf("expected time-ascending order, got %s then %s", items[0].Time, items[1].Time)
	}
}

func TestService_Calendar_StaffOnly(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	var pe *apperr.PermissionError
	if _, _, err := svc.Calendar(ctx, patient(), Filter{}, 20, 0); !errors.As(err, &pe) {
		t.Errorf("expected permission error for non-staff, got %v", err)
	}
	if _, _, err := svc.Calendar(ctx, staff(), Filter{}, 20, 0); err != nil {
		t.Errorf("staff calendar failed: %v", err)
	}
}

// -- Stats --

func TestService_Stats(t *testing.T) {
	svc, _ := newTestService()
	svc.now = func() time.Time { return mustTime(t, "2026-09-01 09:00") }
	ctx := context.Background()
	actor := patient()

	if _, err := svc.Create(ctx, actor, CreateInput{
		Date: "2026-09-01", Time: "08:00", VisitType: VisitInPerson,
	}); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	stats, err := svc.Stats(ctx, actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Stats{
		Today:    Counts{Total: 1, PastDue: 1},
		Lifetime: Counts{Total: 1, Open: 1},
	}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}
}
