package records

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/careportal/careportal/internal/platform/api"
)

// Service applies the medical-record business rules on top of the repository:
// authorship gating on mutations and refetch-after-write so callers always
// see server-computed state.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// LoadPatientFile returns the patient's full medical file grouped by category.
func (s *Service) LoadPatientFile(ctx context.Context, patientID uuid.UUID) (*MedicalFile, error) {
	items, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, api.FetchError("failed to load medical file", err)
	}
	return buildFile(patientID, items), nil
}

// AddRecord creates a record item authored by doctorID and returns the
// reloaded file.
func (s *Service) AddRecord(ctx context.Context, patientID uuid.UUID, category Category, doctorID uuid.UUID, fields map[string]interface{}) (*MedicalFile, error) {
	if _, err := ParseCategory(string(category)); err != nil {
		return nil, api.ValidationError("unknown record category", map[string]string{"category": err.Error()})
	}
	item := &RecordItem{
		PatientID: patientID,
		Category:  category,
		DoctorID:  doctorID,
		Fields:    fields,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, api.MutationError("failed to add record", err)
	}
	return s.LoadPatientFile(ctx, patientID)
}

// UpdateRecord replaces the fields of an existing item. The caller must be
// the authoring doctor.
func (s *Service) UpdateRecord(ctx context.Context, patientID uuid.UUID, category Category, itemID, doctorID uuid.UUID, fields map[string]interface{}) (*MedicalFile, error) {
	item, err := s.loadTarget(ctx, patientID, category, itemID)
	if err != nil {
		return nil, err
	}
	if !item.AuthoredBy(doctorID) {
		return nil, api.MutationError("records can only be edited by their authoring doctor", nil)
	}
	item.Fields = fields
	if err := s.repo.Update(ctx, item); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, api.InvalidRecord("record no longer exists")
		}
		return nil, api.MutationError("failed to update record", err)
	}
	return s.LoadPatientFile(ctx, patientID)
}

// DeleteRecord removes an item. Deleting with a stale id yields an
// InvalidRecord error, never a crash.
func (s *Service) DeleteRecord(ctx context.Context, patientID uuid.UUID, category Category, itemID, doctorID uuid.UUID) (*MedicalFile, error) {
	item, err := s.loadTarget(ctx, patientID, category, itemID)
	if err != nil {
		return nil, err
	}
	if !item.AuthoredBy(doctorID) {
		return nil, api.MutationError("records can only be deleted by their authoring doctor", nil)
	}
	if err := s.repo.Delete(ctx, itemID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, api.InvalidRecord("record no longer exists")
		}
		return nil, api.MutationError("failed to delete record", err)
	}
	return s.LoadPatientFile(ctx, patientID)
}

// loadTarget fetches a mutation target and checks it belongs to the expected
// patient and category.
func (s *Service) loadTarget(ctx context.Context, patientID uuid.UUID, category Category, itemID uuid.UUID) (*RecordItem, error) {
	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, api.InvalidRecord("no record selected for this action")
		}
		return nil, api.FetchError("failed to load record", err)
	}
	if item.PatientID != patientID || item.Category != category {
		return nil, api.InvalidRecord("record does not belong to this patient and category")
	}
	return item, nil
}
