// Package medications implements patient-owned medications and their
// reminders. Reminders are mutated by whole-array replacement: toggling,
// editing or removing one resubmits the full sequence.
package medications

import (
	"time"

	"github.com/google/uuid"
)

// Status is the medication lifecycle state.
type Status string

const (
	StatusActive       Status = "active"
	StatusPaused       Status = "paused"
	StatusCompleted    Status = "completed"
	StatusDiscontinued Status = "discontinued"
)

var validStatuses = map[Status]bool{
	StatusActive: true, StatusPaused: true,
	StatusCompleted: true, StatusDiscontinued: true,
}

var validDays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// Reminder is one scheduled intake reminder. Time is HH:MM.
type Reminder struct {
	Time    string   `json:"time"`
	Days    []string `json:"days"`
	Note    string   `json:"note,omitempty"`
	Enabled bool     `json:"enabled"`
}

// Medication is one entry in a patient's medication list.
type Medication struct {
	ID        uuid.UUID  `json:"id"`
	PatientID uuid.UUID  `json:"patientId"`
	Name      string     `json:"name"`
	Dosage    string     `json:"dosage"`
	Frequency string     `json:"frequency"`
	StartDate string     `json:"startDate,omitempty"`
	EndDate   string     `json:"endDate,omitempty"`
	Status    Status     `json:"status"`
	Reminders []Reminder `json:"reminders"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
