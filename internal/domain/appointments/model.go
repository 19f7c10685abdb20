// Package appointments implements the appointment lifecycle: booking,
// doctor accept/reject, updates, and the patient-initiated reschedule
// request flow. All transitions are guarded by a 24-hour modification
// cutoff before the scheduled time.
package appointments

import (
	"time"

	"github.com/google/uuid"
)

// Status is an appointment lifecycle state.
type Status string

const (
	StatusPending             Status = "pending"
	StatusAccepted            Status = "accepted"
	StatusConfirmed           Status = "confirmed"
	StatusScheduled           Status = "scheduled"
	StatusRejected            Status = "rejected"
	StatusRescheduled         Status = "rescheduled"
	StatusRescheduleRequested Status = "reschedule_requested"
	StatusCompleted           Status = "completed"
	StatusCancelled           Status = "cancelled"
)

var validStatuses = map[Status]bool{
	StatusPending: true, StatusAccepted: true, StatusConfirmed: true,
	StatusScheduled: true, StatusRejected: true, StatusRescheduled: true,
	StatusRescheduleRequested: true, StatusCompleted: true, StatusCancelled: true,
}

var terminalStatuses = map[Status]bool{
	StatusRejected: true, StatusCompleted: true, StatusCancelled: true,
}

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool { return terminalStatuses[s] }

// Booked reports whether the appointment sits in one of the equivalent
// booked states.
func (s Status) Booked() bool {
	return s == StatusAccepted || s == StatusConfirmed || s == StatusScheduled
}

// Type is the appointment modality.
type Type string

const (
	TypeInPerson Type = "in-person"
	TypeVideo    Type = "video"
	TypePhone    Type = "phone"
)

var validTypes = map[Type]bool{
	TypeInPerson: true, TypeVideo: true, TypePhone: true,
}

// RescheduleRequest is a patient-submitted alternate-time proposal awaiting
// doctor resolution.
type RescheduleRequest struct {
	PreferredTimes []string `json:"preferredTimes"`
	Reason         string   `json:"reason,omitempty"`
}

// Appointment is one scheduled encounter between a patient and a doctor.
// Date is YYYY-MM-DD and Time is HH:MM, both interpreted in UTC.
type Appointment struct {
	ID                uuid.UUID          `json:"id"`
	PatientID         uuid.UUID          `json:"patientId"`
	DoctorID          uuid.UUID          `json:"doctorId"`
	Date              string             `json:"date"`
	Time              string             `json:"time"`
	Type              Type               `json:"type"`
	Status            Status             `json:"status"`
	Location          string             `json:"location,omitempty"`
	DoctorNotes       string             `json:"doctorNotes,omitempty"`
	PatientNotes      string             `json:"patientNotes,omitempty"`
	Reason            string             `json:"reason,omitempty"`
	Duration          int                `json:"duration"`
	RescheduleRequest *RescheduleRequest `json:"rescheduleRequest,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// ScheduledAt combines Date and Time into the scheduled instant. ok is false
// when either part is missing or malformed.
func (a *Appointment) ScheduledAt() (time.Time, bool) {
	if a.Date == "" || a.Time == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02 15:04", a.Date+" "+a.Time)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// CanBeModified is the derived 24-hour cutoff: true iff at least 24 hours
// remain before the scheduled time. It is never persisted, always
// recomputed. Appointments without a parseable schedule are modifiable.
func (a *Appointment) CanBeModified(now time.Time) bool {
	at, ok := a.ScheduledAt()
	if !ok {
		return true
	}
	return at.Sub(now) >= 24*time.Hour
}
