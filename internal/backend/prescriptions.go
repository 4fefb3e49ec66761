package backend

import (
	"context"
	"fmt"
	"net/http"

	"hospitalms/web/internal/models"
)

type PrescriptionInput struct {
	PatientID      int64  `json:"patientId"`
	DoctorID       int64  `json:"doctorId"`
	MedicationName string `json:"medicationName"`
	Dosage         string `json:"dosage,omitempty"`
	Frequency      string `json:"frequency,omitempty"`
	Duration       string `json:"duration,omitempty"`
	Instructions   string `json:"instructions,omitempty"`
}

func (c *Client) ListPrescriptions(ctx context.Context, token string) ([]models.Prescription, error) {
	var prescriptions []models.Prescription
	if err := c.do(ctx, http.MethodGet, "/prescriptions", token, nil, &prescriptions); err != nil {
		return nil, err
	}
	return prescriptions, nil
}

func (c *Client) GetPrescription(ctx context.Context, token string, id int64) (models.Prescription, error) {
	var prescription models.Prescription
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/prescriptions/%d", id), token, nil, &prescription); err != nil {
		return models.Prescription{}, err
	}
	return prescription, nil
}

func (c *Client) CreatePrescription(ctx context.Context, token string, input PrescriptionInput) (models.Prescription, error) {
	var prescription models.Prescription
	if err := c.do(ctx, http.MethodPost, "/prescriptions", token, input, &prescription); err != nil {
		return models.Prescription{}, err
	}
	return prescription, nil
}

func (c *Client) UpdatePrescription(ctx context.Context, token string, id int64, input PrescriptionInput) (models.Prescription, error) {
	var prescription models.Prescription
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/prescriptions/%d", id), token, input, &prescription); err != nil {
		return models.Prescription{}, err
	}
	return prescription, nil
}

func (c *Client) DeletePrescription(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/prescriptions/%d", id), token, nil, nil)
}

func (c *Client) PrescriptionsByDoctor(ctx context.Context, token string, doctorID int64) ([]models.Prescription, error) {
	var prescriptions []models.Prescription
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/prescriptions/doctor/%d", doctorID), token, nil, &prescriptions); err != nil {
		return nil, err
	}
	return prescriptions, nil
}

func (c *Client) PrescriptionsByPatient(ctx context.Context, token string, patientID int64) ([]models.Prescription, error) {
	var prescriptions []models.Prescription
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/prescriptions/patient/%d", patientID), token, nil, &prescriptions); err != nil {
		return nil, err
	}
	return prescriptions, nil
}
