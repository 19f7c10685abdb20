package records

import (
	"time"

	"github.com/google/uuid"
)

// RecordItem is one entry within a medical-file category. ID, DoctorID and
// CreatedAt are immutable after creation.
type RecordItem struct {
	ID        uuid.UUID              `json:"id"`
	PatientID uuid.UUID              `json:"patientId"`
	Category  Category               `json:"category"`
	DoctorID  uuid.UUID              `json:"doctorId"`
	Fields    map[string]interface{} `json:"fields"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

// AuthoredBy reports whether the given doctor wrote this record. Authorship
// gates edit and delete.
func (r *RecordItem) AuthoredBy(doctorID uuid.UUID) bool {
	return r.DoctorID == doctorID
}

// MedicalFile is a patient's full record set grouped by category in display
// order.
type MedicalFile struct {
	PatientID uuid.UUID                 `json:"patientId"`
	Records   map[Category][]*RecordItem `json:"records"`
}

// buildFile groups items into a MedicalFile, keeping every category present
// so consumers can iterate the fixed order without nil checks.
func buildFile(patientID uuid.UUID, items []*RecordItem) *MedicalFile {
	file := &MedicalFile{
		PatientID: patientID,
		Records:   make(map[Category][]*RecordItem, len(categoryOrder)),
	}
	for _, c := range categoryOrder {
		file.Records[c] = []*RecordItem{}
	}
	for _, item := range items {
		file.Records[item.Category] = append(file.Records[item.Category], item)
	}
	return file
}
