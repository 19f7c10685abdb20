package appointments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careportal/careportal/internal/platform/api"
)

// Service enforces the appointment state machine. Clients may hide actions
// behind the same guards, but those checks are advisory; this layer is
// authoritative and independently rejects late or illegal transitions.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// NewServiceWithClock lets tests pin the 24-hour cutoff.
func NewServiceWithClock(repo Repository, now func() time.Time) *Service {
	return &Service{repo: repo, now: now}
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	items, total, err := s.repo.ListByDoctor(ctx, doctorID, limit, offset)
	if err != nil {
		return nil, 0, api.FetchError("failed to load appointments", err)
	}
	return items, total, nil
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	items, total, err := s.repo.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, 0, api.FetchError("failed to load appointments", err)
	}
	return items, total, nil
}

// BookInput carries the patient booking request.
type BookInput struct {
	DoctorID     uuid.UUID `json:"doctorId"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	Type         Type      `json:"type"`
	Reason       string    `json:"reason"`
	PatientNotes string    `json:"patientNotes"`
	Duration     int       `json:"duration"`
}

// Book creates a pending appointment for the patient.
func (s *Service) Book(ctx context.Context, patientID uuid.UUID, in BookInput) (*Appointment, error) {
	fieldErrs := map[string]string{}
	if in.DoctorID == uuid.Nil {
		fieldErrs["doctorId"] = "doctorId is required"
	}
	if strings.TrimSpace(in.Date) == "" {
		fieldErrs["date"] = "date is required"
	}
	if strings.TrimSpace(in.Time) == "" {
		fieldErrs["time"] = "time is required"
	}
	if in.Type == "" {
		fieldErrs["type"] = "type is required"
	} else if !validTypes[in.Type] {
		fieldErrs["type"] = "type must be in-person, video or phone"
	}
	if len(fieldErrs) > 0 {
		return nil, api.ValidationError("missing required fields", fieldErrs)
	}

	a := &Appointment{
		PatientID:    patientID,
		DoctorID:     in.DoctorID,
		Date:         in.Date,
		Time:         in.Time,
		Type:         in.Type,
		Status:       StatusPending,
		Reason:       in.Reason,
		PatientNotes: in.PatientNotes,
		Duration:     in.Duration,
	}
	if a.Duration <= 0 {
		a.Duration = 30
	}
	if _, ok := a.ScheduledAt(); !ok {
		return nil, api.ValidationError("invalid schedule", map[string]string{
			"date": "date must be YYYY-MM-DD and time HH:MM",
		})
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, api.MutationError("failed to book appointment", err)
	}
	return a, nil
}

// AcceptInput carries optional overrides. Only populated fields touch the
// stored values; accepting with notes alone leaves the schedule unchanged.
type AcceptInput struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	DoctorNotes string `json:"doctorNotes"`
}

// Accept moves a pending appointment to accepted.
func (s *Service) Accept(ctx context.Context, id, doctorID uuid.UUID, in AcceptInput) (*Appointment, error) {
	a, err := s.loadForDoctor(ctx, id, doctorID)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusPending {
		return nil, api.MutationError("only pending appointments can be accepted", nil)
	}
	if !a.CanBeModified(s.now()) {
		return nil, api.MutationError("appointment is within the 24-hour modification cutoff", nil)
	}

	if in.Date != "" {
		a.Date = in.Date
	}
	if in.Time != "" {
		a.Time = in.Time
	}
	if in.Location != "" {
		a.Location = in.Location
	}
	if in.DoctorNotes != "" {
		a.DoctorNotes = in.DoctorNotes
	}
	a.Status = StatusAccepted
	return s.save(ctx, a)
}

// Reject moves a pending appointment to rejected. A reason is mandatory.
func (s *Service) Reject(ctx context.Context, id, doctorID uuid.UUID, doctorNotes string) (*Appointment, error) {
	if strings.TrimSpace(doctorNotes) == "" {
		return nil, api.ValidationError("a rejection reason is required", map[string]string{
			"doctorNotes": "doctorNotes is required",
		})
	}
	a, err := s.loadForDoctor(ctx, id, doctorID)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusPending {
		return nil, api.MutationError("only pending appointments can be rejected", nil)
	}
	if !a.CanBeModified(s.now()) {
		return nil, api.MutationError("appointment is within the 24-hour modification cutoff", nil)
	}

	a.DoctorNotes = doctorNotes
	a.Status = StatusRejected
	return s.save(ctx, a)
}

// UpdateInput is the doctor's partial update. Empty fields are left alone.
// Setting Status to rescheduled is honored; other explicit statuses are
// rejected.
type UpdateInput struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	DoctorNotes string `json:"doctorNotes"`
	Reason      string `json:"reason"`
	Type        Type   `json:"type"`
	Status      Status `json:"status"`
}

// Update applies a subset of schedule fields to any non-terminal
// appointment.
func (s *Service) Update(ctx context.Context, id, doctorID uuid.UUID, in UpdateInput) (*Appointment, error) {
	if in.Status != "" && in.Status != StatusRescheduled {
		return nil, api.ValidationError("status cannot be set directly", map[string]string{
			"status": "only rescheduled may be set explicitly",
		})
	}
	if in.Type != "" && !validTypes[in.Type] {
		return nil, api.ValidationError("invalid appointment type", map[string]string{
			"type": "type must be in-person, video or phone",
		})
	}
	a, err := s.loadForDoctor(ctx, id, doctorID)
	if err != nil {
		return nil, err
	}
	if a.Status.Terminal() {
		return nil, api.MutationError("appointment is in a terminal state", nil)
	}
	if !a.CanBeModified(s.now()) {
		return nil, api.MutationError("appointment is within the 24-hour modification cutoff", nil)
	}

	if in.Date != "" {
		a.Date = in.Date
	}
	if in.Time != "" {
		a.Time = in.Time
	}
	if in.Location != "" {
		a.Location = in.Location
	}
	if in.DoctorNotes != "" {
		a.DoctorNotes = in.DoctorNotes
	}
	if in.Reason != "" {
		a.Reason = in.Reason
	}
	if in.Type != "" {
		a.Type = in.Type
	}
	if in.Status == StatusRescheduled {
		a.Status = StatusRescheduled
	}
	return s.save(ctx, a)
}

// RescheduleAction is the doctor's resolution of a patient request.
type RescheduleAction string

const (
	RescheduleApprove RescheduleAction = "approve"
	RescheduleReject  RescheduleAction = "reject"
)

// ResolveInput carries the resolution details.
type ResolveInput struct {
	Action      RescheduleAction `json:"action"`
	NewDate     string           `json:"newDate"`
	NewTime     string           `json:"newTime"`
	DoctorNotes string           `json:"doctorNotes"`
}

// ResolveReschedule approves or rejects a pending reschedule request.
// Approval without both a new date and time is a local validation failure;
// no transition happens and nothing is written. Rejection clears the request
// and keeps the current status, recording the doctor's reason.
func (s *Service) ResolveReschedule(ctx context.Context, id, doctorID uuid.UUID, in ResolveInput) (*Appointment, error) {
	switch in.Action {
	case RescheduleApprove:
		fieldErrs := map[string]string{}
		if strings.TrimSpace(in.NewDate) == "" {
			fieldErrs["newDate"] = "newDate is required to approve a reschedule"
		}
		if strings.TrimSpace(in.NewTime) == "" {
			fieldErrs["newTime"] = "newTime is required to approve a reschedule"
		}
		if len(fieldErrs) > 0 {
			return nil, api.ValidationError("missing reschedule details", fieldErrs)
		}
	case RescheduleReject:
		if strings.TrimSpace(in.DoctorNotes) == "" {
			return nil, api.ValidationError("a rejection reason is required", map[string]string{
				"doctorNotes": "doctorNotes is required",
			})
		}
	default:
		return nil, api.ValidationError("invalid reschedule action", map[string]string{
			"action": "action must be approve or reject",
		})
	}

	a, err := s.loadForDoctor(ctx, id, doctorID)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusRescheduleRequested {
		return nil, api.MutationError("appointment has no pending reschedule request", nil)
	}
	if !a.CanBeModified(s.now()) {
		return nil, api.MutationError("appointment is within the 24-hour modification cutoff", nil)
	}

	if in.Action == RescheduleApprove {
		a.Date = in.NewDate
		a.Time = in.NewTime
		a.Status = StatusRescheduled
	}
	if in.DoctorNotes != "" {
		a.DoctorNotes = in.DoctorNotes
	}
	a.RescheduleRequest = nil
	return s.save(ctx, a)
}

// RequestReschedule attaches a patient's alternate-time proposal.
func (s *Service) RequestReschedule(ctx context.Context, id, patientID uuid.UUID, req RescheduleRequest) (*Appointment, error) {
	if len(req.PreferredTimes) == 0 {
		return nil, api.ValidationError("at least one preferred time is required", map[string]string{
			"preferredTimes": "preferredTimes must not be empty",
		})
	}
	a, err := s.loadForPatient(ctx, id, patientID)
	if err != nil {
		return nil, err
	}
	if a.Status.Terminal() {
		return nil, api.MutationError("appointment is in a terminal state", nil)
	}
	if !a.CanBeModified(s.now()) {
		return nil, api.MutationError("appointment is within the 24-hour modification cutoff", nil)
	}

	reqCopy := req
	a.RescheduleRequest = &reqCopy
	a.Status = StatusRescheduleRequested
	return s.save(ctx, a)
}

// Cancel lets the patient cancel a non-terminal appointment.
func (s *Service) Cancel(ctx context.Context, id, patientID uuid.UUID) (*Appointment, error) {
	a, err := s.loadForPatient(ctx, id, patientID)
	if err != nil {
		return nil, err
	}
	if a.Status.Terminal() {
		return nil, api.MutationError("appointment is in a terminal state", nil)
	}
	if !a.CanBeModified(s.now()) {
		return nil, api.MutationError("appointment is within the 24-hour modification cutoff", nil)
	}

	a.Status = StatusCancelled
	a.RescheduleRequest = nil
	return s.save(ctx, a)
}

func (s *Service) save(ctx context.Context, a *Appointment) (*Appointment, error) {
	if err := s.repo.Update(ctx, a); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, api.InvalidRecord("appointment no longer exists")
		}
		return nil, api.MutationError("failed to update appointment", err)
	}
	return a, nil
}

func (s *Service) loadForDoctor(ctx context.Context, id, doctorID uuid.UUID) (*Appointment, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.DoctorID != doctorID {
		return nil, api.MutationError("appointment belongs to another doctor", nil)
	}
	return a, nil
}

func (s *Service) loadForPatient(ctx context.Context, id, patientID uuid.UUID) (*Appointment, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.PatientID != patientID {
		return nil, api.MutationError("appointment belongs to another patient", nil)
	}
	return a, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, api.InvalidRecord("appointment not found")
		}
		return nil, api.FetchError("failed to load appointment", err)
	}
	return a, nil
}
