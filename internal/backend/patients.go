package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"hospitalms/web/internal/models"
)

func (c *Client) ListPatients(ctx context.Context, token string) ([]models.Patient, error) {
	var patients []models.Patient
	if err := c.do(ctx, http.MethodGet, "/patients", token, nil, &patients); err != nil {
		return nil, err
	}
	return patients, nil
}

func (c *Client) GetPatient(ctx context.Context, token string, id int64) (models.Patient, error) {
	var patient models.Patient
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/patients/%d", id), token, nil, &patient); err != nil {
		return models.Patient{}, err
	}
	return patient, nil
}

type UpdatePatientInput struct {
	Name               string `json:"name,omitempty"`
	Age                int    `json:"age,omitempty"`
	Gender             string `json:"gender,omitempty"`
	Phone              string `json:"phone,omitempty"`
	Email              string `json:"email,omitempty"`
	Address            string `json:"address,omitempty"`
	DateOfBirth        string `json:"dateOfBirth,omitempty"`
	BloodGroup         string `json:"bloodGroup,omitempty"`
	EmergencyContact   string `json:"emergencyContact,omitempty"`
	MedicalHistory     string `json:"medicalHistory,omitempty"`
	Allergies          string `json:"allergies,omitempty"`
	CurrentMedications string `json:"currentMedications,omitempty"`
}

func (c *Client) UpdatePatient(ctx context.Context, token string, id int64, input UpdatePatientInput) (models.Patient, error) {
	var patient models.Patient
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/patients/%d", id), token, input, &patient); err != nil {
		return models.Patient{}, err
	}
	return patient, nil
}

func (c *Client) DeletePatient(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/patients/%d", id), token, nil, nil)
}

func (c *Client) SearchPatients(ctx context.Context, token, name string) ([]models.Patient, error) {
	var patients []models.Patient
	path := "/patients/search?name=" + url.QueryEscape(name)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &patients); err != nil {
		return nil, err
	}
	return patients, nil
}
