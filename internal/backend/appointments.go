package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"hospitalms/web/internal/models"
)

// AppointmentInput is what create and update both send. AppointmentTime is
// the bare local form the backend expects (2006-01-02T15:04).
type AppointmentInput struct {
	PatientID       int64  `json:"patientId"`
	DoctorID        int64  `json:"doctorId"`
	AppointmentTime string `json:"appointmentTime"`
	Reason          string `json:"reason,omitempty"`
	Notes           string `json:"notes,omitempty"`
	Status          string `json:"status,omitempty"`
}

func (c *Client) ListAppointments(ctx context.Context, token string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	if err := c.do(ctx, http.MethodGet, "/appointments", token, nil, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (c *Client) GetAppointment(ctx context.Context, token string, id int64) (models.Appointment, error) {
	var appointment models.Appointment
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/appointments/%d", id), token, nil, &appointment); err != nil {
		return models.Appointment{}, err
	}
	return appointment, nil
}

func (c *Client) CreateAppointment(ctx context.Context, token string, input AppointmentInput) (models.Appointment, error) {
	var appointment models.Appointment
	if err := c.do(ctx, http.MethodPost, "/appointments", token, input, &appointment); err != nil {
		return models.Appointment{}, err
	}
	return appointment, nil
}

func (c *Client) UpdateAppointment(ctx context.Context, token string, id int64, input AppointmentInput) (models.Appointment, error) {
	var appointment models.Appointment
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/appointments/%d", id), token, input, &appointment); err != nil {
		return models.Appointment{}, err
	}
	return appointment, nil
}

// UpdateAppointmentStatus is the status-only PATCH.
func (c *Client) UpdateAppointmentStatus(ctx context.Context, token string, id int64, status models.AppointmentStatus) error {
	body := map[string]string{"status": string(status)}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/appointments/%d/status", id), token, body, nil)
}

func (c *Client) DeleteAppointment(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/appointments/%d", id), token, nil, nil)
}

func (c *Client) AppointmentsByDoctor(ctx context.Context, token string, doctorID int64) ([]models.Appointment, error) {
	var appointments []models.Appointment
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/appointments/doctor/%d", doctorID), token, nil, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (c *Client) AppointmentsByPatient(ctx context.Context, token string, patientID int64) ([]models.Appointment, error) {
	var appointments []models.Appointment
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/appointments/patient/%d", patientID), token, nil, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (c *Client) AppointmentsByStatus(ctx context.Context, token string, status models.AppointmentStatus) ([]models.Appointment, error) {
	var appointments []models.Appointment
	path := "/appointments/status/" + url.PathEscape(string(status))
	if err := c.do(ctx, http.MethodGet, path, token, nil, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}
