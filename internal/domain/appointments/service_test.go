package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/careportal/careportal/internal/platform/api"
)

type mockRepo struct {
	appts   map[uuid.UUID]*Appointment
	updates int
}

func newMockRepo() *mockRepo {
	return &mockRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	m.appts[a.ID] = &cp
	return nil
}

func (m *mockRepo) Update(_ context.Context, a *Appointment) error {
	if _, ok := m.appts[a.ID]; !ok {
		return ErrNotFound
	}
	m.updates++
	cp := *a
	cp.UpdatedAt = time.Now().UTC()
	m.appts[a.ID] = &cp
	return nil
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var out []*Appointment
	for _, a := range m.appts {
		if a.DoctorID == doctorID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var out []*Appointment
	for _, a := range m.appts {
		if a.PatientID == patientID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

// fixedNow keeps every seeded appointment comfortably outside the cutoff.
var fixedNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func testService(repo *mockRepo) *Service {
	return NewServiceWithClock(repo, func() time.Time { return fixedNow })
}

func seedAppt(repo *mockRepo, status Status) *Appointment {
	a := &Appointment{
		ID:        uuid.New(),
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Date:      "2026-09-20",
		Time:      "10:00",
		Type:      TypeInPerson,
		Status:    status,
		Location:  "clinic A",
		Duration:  30,
	}
	repo.appts[a.ID] = a
	return a
}

func TestBook(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	patientID := uuid.New()

	a, err := svc.Book(context.Background(), patientID, BookInput{
		DoctorID: uuid.New(),
		Date:     "2026-10-01",
		Time:     "09:30",
		Type:     TypeVideo,
		Reason:   "follow-up",
	})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if a.Status != StatusPending {
		t.Errorf("new appointment status = %s, want pending", a.Status)
	}
	if a.PatientID != patientID {
		t.Error("appointment should belong to the booking patient")
	}
	if a.Duration != 30 {
		t.Errorf("default duration = %d, want 30", a.Duration)
	}
}

func TestBook_MissingFields(t *testing.T) {
	svc := testService(newMockRepo())
	_, err := svc.Book(context.Background(), uuid.New(), BookInput{Type: Type("carrier-pigeon")})
	if api.KindOf(err) != api.KindValidation {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	apiErr := err.(*api.Error)
	for _, f := range []string{"doctorId", "date", "time", "type"} {
		if apiErr.Fields[f] == "" {
			t.Errorf("expected field error for %s", f)
		}
	}
}

func TestAccept_NotesOnlyLeavesScheduleUntouched(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a := seedAppt(repo, StatusPending)

	got, err := svc.Accept(context.Background(), a.ID, a.DoctorID, AcceptInput{DoctorNotes: "bring referral letter"})
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if got.Status != StatusAccepted {
		t.Errorf("status = %s, want accepted", got.Status)
	}
	if got.Date != "2026-09-20" || got.Time != "10:00" || got.Location != "clinic A" {
		t.Error("accepting with notes only must leave the schedule unchanged")
	}
	if got.DoctorNotes != "bring referral letter" {
		t.Error("doctor notes should be recorded")
	}
}

func TestAccept_WithOverrides(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a := seedAppt(repo, StatusPending)

	got, err := svc.Accept(context.Background(), a.ID, a.DoctorID, AcceptInput{
		Date: "2026-09-21", Time: "14:00", Location: "clinic B",
	})
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if got.Date != "2026-09-21" || got.Time != "14:00" || got.Location != "clinic B" {
		t.Errorf("overrides not applied: %+v", got)
	}
}

func TestAccept_OnlyFromPending(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a := seedAppt(repo, StatusConfirmed)

	_, err := svc.Accept(context.Background(), a.ID, a.DoctorID, AcceptInput{})
	if api.KindOf(err) != api.KindMutation {
		t.Errorf("expected MutationError for non-pending accept, got %v", err)
	}
}

func TestAccept_WrongDoctor(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a := seedAppt(repo, StatusPending)

	_, err := svc.Accept(context.Background(), a.ID, uuid.New(), AcceptInput{})
	if err == nil {
		t.Fatal("expected error for another doctor's appointment")
	}
	if repo.updates != 0 {
		t.Error("nothing should have been written")
	}
}

func TestReject_RequiresNotes(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a := seedAppt(repo, StatusPending)

	_, err := svc.Reject(context.Background(), a.ID, a.DoctorID, "  ")
	if api.KindOf(err) != api.KindValidation {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if repo.updates != 0 {
		t.Error("validation failure must not reach storage")
	}

	got, err := svc.Reject(context.Background(), a.ID, a.DoctorID, "fully booked")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if got.Status != StatusRejected || got.DoctorNotes != "fully booked" {
		t.Errorf("reject result: %+v", got)
	}
}

func TestUpdate_ExplicitRescheduledHonored(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a := seedAppt(repo, StatusConfirmed)

	got, err := svc.Update(context.Background(), a.ID, a.DoctorID, UpdateInput{
		Date: "2026-09-25", Time: "11:00", Status: StatusRescheduled,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Status != StatusRescheduled {
		t.Errorf("status = %s, want rescheduled", got.Status)
	}
	if got.Date != "2026-09-25" {
		t.Error("date should be updated")
	}
}

func TestUpdate_KeepsStatusWithoutExplicitSet(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a := seedAppt(repo, StatusConfirmed)

	got, err := svc.Update(context.Background(), a.ID, a.DoctorID, UpdateInput{Location: "clinic C"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Status != StatusConfirmed {
		t.Errorf("status = %s, want unchanged confirmed", got.Status)
	}
}

func TestUpdate_ArbitraryStatusRejected(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a := seedAppt(repo, StatusConfirmed)

	_, err := svc.Update(context.Background(), a.ID, a.DoctorID, UpdateInput{Status: StatusCompleted})
	if api.KindOf(err) != api.KindValidation {
		t.Errorf("expected ValidationError for direct status set, got %v", err)
	}
}

func TestUpdate_TerminalGuard(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a := seedAppt(repo, StatusCancelled)

	_, err := svc.Update(context.Background(), a.ID, a.DoctorID, UpdateInput{Location: "x"})
	if api.KindOf(err) != api.KindMutation {
		t.Errorf("expected MutationError for terminal appointment, got %v", err)
	}
}

func TestCutoffEnforcedServerSide(t *testing.T) {
	repo := newMockRepo()
	a := seedAppt(repo, StatusPending)
	// 23h before the scheduled time
	svc := NewServiceWithClock(repo, func() time.Time {
		return time.Date(2026, 9, 19, 11, 0, 0, 0, time.UTC)
	})

	_, err := svc.Accept(context.Background(), a.ID, a.DoctorID, AcceptInput{})
	if api.KindOf(err) != api.KindMutation {
		t.Fatalf("expected MutationError inside the cutoff, got %v", err)
	}
	if repo.updates != 0 {
		t.Error("late accept must not be written")
	}
}

func TestResolveReschedule_ApproveRequiresDateAndTime(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a := seedAppt(repo, StatusRescheduleRequested)
	a.RescheduleRequest = &RescheduleRequest{PreferredTimes: []string{"2026-09-22 09:00"}}

	// aborts locally: no write, no state change
	_, err := svc.ResolveReschedule(context.Background(), a.ID, a.DoctorID, ResolveInput{
		Action: RescheduleApprove, NewDate: "2026-09-22",
	})
	if api.KindOf(err) != api.KindValidation {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if repo.updates != 0 {
		t.Error("approval without time must not reach storage")
	}
	if repo.appts[a.ID].Status != StatusRescheduleRequested {
		t.Error("status must be unchanged after a local validation failure")
	}
}

func TestResolveReschedule_Approve(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a := seedAppt(repo, StatusRescheduleRequested)
	a.RescheduleRequest = &RescheduleRequest{PreferredTimes: []string{"2026-09-22 09:00"}}

	got, err := svc.ResolveReschedule(context.Background(), a.ID, a.DoctorID, ResolveInput{
		Action: RescheduleApprove, NewDate: "2026-09-22", NewTime: "09:00",
	})
	if err != nil {
		t.Fatalf("ResolveReschedule: %v", err)
	}
	if got.Status != StatusRescheduled {
		t.Errorf("status = %s, want rescheduled", got.Status)
	}
	if got.Date != "2026-09-22" || got.Time != "09:00" {
		t.Error("schedule should reflect the approved request")
	}
	if got.RescheduleRequest != nil {
		t.Error("request should be cleared after resolution")
	}
}

func TestResolveReschedule_RejectClearsRequestKeepsStatus(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a := seedAppt(repo, StatusRescheduleRequested)
	a.RescheduleRequest = &RescheduleRequest{PreferredTimes: []string{"2026-09-22 09:00"}}

	got, err := svc.ResolveReschedule(context.Background(), a.ID, a.DoctorID, ResolveInput{
		Action: RescheduleReject, DoctorNotes: "no availability that week",
	})
	if err != nil {
		t.Fatalf("ResolveReschedule: %v", err)
	}
	if got.RescheduleRequest != nil {
		t.Error("request should be cleared after rejection")
	}
	if got.Status != StatusRescheduleRequested {
		t.Errorf("status = %s, want unchanged reschedule_requested", got.Status)
	}
	if got.Date != "2026-09-20" || got.Time != "10:00" {
		t.Error("schedule must be unchanged after rejection")
	}
}

func TestResolveReschedule_NoPendingRequest(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a := seedAppt(repo, StatusConfirmed)

	_, err := svc.ResolveReschedule(context.Background(), a.ID, a.DoctorID, ResolveInput{
		Action: RescheduleApprove, NewDate: "2026-09-22", NewTime: "09:00",
	})
	if api.KindOf(err) != api.KindMutation {
		t.Errorf("expected MutationError without a pending request, got %v", err)
	}
}

func TestRequestReschedule(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a := seedAppt(repo, StatusConfirmed)

	got, err := svc.RequestReschedule(context.Background(), a.ID, a.PatientID, RescheduleRequest{
		PreferredTimes: []string{"2026-09-23 08:00", "2026-09-24 16:00"},
		Reason:         "work conflict",
	})
	if err != nil {
		t.Fatalf("RequestReschedule: %v", err)
	}
	if got.Status != StatusRescheduleRequested {
		t.Errorf("status = %s, want reschedule_requested", got.Status)
	}
	if got.RescheduleRequest == nil || len(got.RescheduleRequest.PreferredTimes) != 2 {
		t.Error("request should be attached")
	}
}

func TestRequestReschedule_RequiresPreferredTimes(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a := seedAppt(repo, StatusConfirmed)

	_, err := svc.RequestReschedule(context.Background(), a.ID, a.PatientID, RescheduleRequest{})
	if api.KindOf(err) != api.KindValidation {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a := seedAppt(repo, StatusConfirmed)

	got, err := svc.Cancel(context.Background(), a.ID, a.PatientID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}

	// cancelling again hits the terminal guard
	_, err = svc.Cancel(context.Background(), a.ID, a.PatientID)
	if api.KindOf(err) != api.KindMutation {
		t.Errorf("expected MutationError for second cancel, got %v", err)
	}
}

func TestCancel_WrongPatient(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	a := seedAppt(repo, StatusConfirmed)

	_, err := svc.Cancel(context.Background(), a.ID, uuid.New())
	if err == nil {
		t.Fatal("expected error for another patient's appointment")
	}
}

func TestStaleIDIsInvalidRecord(t *testing.T) {
	svc := testService(newMockRepo())
	_, err := svc.Accept(context.Background(), uuid.New(), uuid.New(), AcceptInput{})
	if api.KindOf(err) != api.KindInvalidRecord {
		t.Errorf("expected InvalidRecord, got %v", err)
	}
}
