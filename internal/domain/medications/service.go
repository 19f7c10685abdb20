package medications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careportal/careportal/internal/platform/api"
)

// Service enforces ownership and validation for patient medications.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*Medication, error) {
	items, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, api.FetchError("failed to load medications", err)
	}
	if items == nil {
		items = []*Medication{}
	}
	return items, nil
}

// Input carries a create or update request body.
type Input struct {
	Name      string     `json:"name"`
	Dosage    string     `json:"dosage"`
	Frequency string     `json:"frequency"`
	StartDate string     `json:"startDate"`
	EndDate   string     `json:"endDate"`
	Status    Status     `json:"status"`
	Reminders []Reminder `json:"reminders"`
}

func validateInput(in Input) map[string]string {
	fieldErrs := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fieldErrs["name"] = "name is required"
	}
	if strings.TrimSpace(in.Dosage) == "" {
		fieldErrs["dosage"] = "dosage is required"
	}
	if strings.TrimSpace(in.Frequency) == "" {
		fieldErrs["frequency"] = "frequency is required"
	}
	if in.Status != "" && !validStatuses[in.Status] {
		fieldErrs["status"] = "status must be active, paused, completed or discontinued"
	}
	for k, v := range validateReminders(in.Reminders) {
		fieldErrs[k] = v
	}
	if len(fieldErrs) == 0 {
		return nil
	}
	return fieldErrs
}

func validateReminders(reminders []Reminder) map[string]string {
	fieldErrs := map[string]string{}
	for i, r := range reminders {
		if _, err := time.Parse("15:04", r.Time); err != nil {
			fieldErrs[fmt.Sprintf("reminders[%d].time", i)] = "time must be HH:MM"
		}
		for _, d := range r.Days {
			if !validDays[strings.ToLower(d)] {
				fieldErrs[fmt.Sprintf("reminders[%d].days", i)] = "days must be weekday names"
				break
			}
		}
	}
	if len(fieldErrs) == 0 {
		return nil
	}
	return fieldErrs
}

// Add creates a medication owned by the patient.
func (s *Service) Add(ctx context.Context, patientID uuid.UUID, in Input) (*Medication, error) {
	if fieldErrs := validateInput(in); fieldErrs != nil {
		return nil, api.ValidationError("missing required fields", fieldErrs)
	}
	m := &Medication{
		PatientID: patientID,
		Name:      in.Name,
		Dosage:    in.Dosage,
		Frequency: in.Frequency,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Status:    in.Status,
		Reminders: in.Reminders,
	}
	if m.Status == "" {
		m.Status = StatusActive
	}
	if m.Reminders == nil {
		m.Reminders = []Reminder{}
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, api.MutationError("failed to add medication", err)
	}
	return m, nil
}

// Update replaces the medication's editable fields.
func (s *Service) Update(ctx context.Context, id, patientID uuid.UUID, in Input) (*Medication, error) {
	if fieldErrs := validateInput(in); fieldErrs != nil {
		return nil, api.ValidationError("missing required fields", fieldErrs)
	}
	m, err := s.loadOwned(ctx, id, patientID)
	if err != nil {
		return nil, err
	}
	m.Name = in.Name
	m.Dosage = in.Dosage
	m.Frequency = in.Frequency
	m.StartDate = in.StartDate
	m.EndDate = in.EndDate
	if in.Status != "" {
		m.Status = in.Status
	}
	if in.Reminders != nil {
		m.Reminders = in.Reminders
	}
	return s.save(ctx, m)
}

// Delete removes a medication owned by the patient.
func (s *Service) Delete(ctx context.Context, id, patientID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, id, patientID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return api.InvalidRecord("medication no longer exists")
		}
		return api.MutationError("failed to delete medication", err)
	}
	return nil
}

// ReplaceReminders swaps the entire reminder sequence. Toggle, edit and
// delete all arrive through this one operation.
func (s *Service) ReplaceReminders(ctx context.Context, id, patientID uuid.UUID, reminders []Reminder) (*Medication, error) {
	if fieldErrs := validateReminders(reminders); fieldErrs != nil {
		return nil, api.ValidationError("invalid reminders", fieldErrs)
	}
	m, err := s.loadOwned(ctx, id, patientID)
	if err != nil {
		return nil, err
	}
	if reminders == nil {
		reminders = []Reminder{}
	}
	m.Reminders = reminders
	return s.save(ctx, m)
}

func (s *Service) save(ctx context.Context, m *Medication) (*Medication, error) {
	if err := s.repo.Update(ctx, m); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, api.InvalidRecord("medication no longer exists")
		}
		return nil, api.MutationError("failed to update medication", err)
	}
	return m, nil
}

func (s *Service) loadOwned(ctx context.Context, id, patientID uuid.UUID) (*Medication, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, api.InvalidRecord("medication not found")
		}
		return nil, api.FetchError("failed to load medication", err)
	}
	if m.PatientID != patientID {
		return nil, api.MutationError("medication belongs to another patient", nil)
	}
	return m, nil
}
