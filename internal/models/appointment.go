package models

import (
	"fmt"
	"strings"
	"time"
)

type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "SCHEDULED"
	StatusConfirmed  AppointmentStatus = "CONFIRMED"
	StatusInProgress AppointmentStatus = "IN_PROGRESS"
	StatusCompleted  AppointmentStatus = "COMPLETED"
	StatusCancelled  AppointmentStatus = "CANCELLED"
	StatusNoShow     AppointmentStatus = "NO_SHOW"
)

// AppointmentStatuses lists every status in display order. Any status is
// reachable from any other; the backend owns whatever transition rules exist.
var AppointmentStatuses = []AppointmentStatus{
	StatusScheduled,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}

func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	for _, status := range AppointmentStatuses {
		if AppointmentStatus(s) == status {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown appointment status %q", s)
}

func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Label renders the status for display (IN_PROGRESS -> "IN PROGRESS").
func (s AppointmentStatus) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// APITime handles the timestamp shapes the backend emits: RFC3339 or the
// bare local forms 2006-01-02T15:04[:05].
type APITime struct {
	time.Time
}

var apiTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func (t *APITime) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		t.Time = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range apiTimeLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("parse api time %q: %w", raw, lastErr)
}

func (t APITime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + t.Format("2006-01-02T15:04:05") + `"`), nil
}

type Appointment struct {
	ID                   int64             `json:"id"`
	PatientID            int64             `json:"patientId"`
	DoctorID             int64             `json:"doctorId"`
	PatientName          string            `json:"patientName"`
	PatientPhone         string            `json:"patientPhone,omitempty"`
	DoctorName           string            `json:"doctorName"`
	DoctorSpecialization string            `json:"doctorSpecialization,omitempty"`
	AppointmentTime      APITime           `json:"appointmentTime"`
	Reason               string            `json:"reason,omitempty"`
	Notes                string            `json:"notes,omitempty"`
	Status               AppointmentStatus `json:"status"`
}
