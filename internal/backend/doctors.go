package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"hospitalms/web/internal/models"
)

func (c *Client) ListDoctors(ctx context.Context, token string) ([]models.Doctor, error) {
	var doctors []models.Doctor
	if err := c.do(ctx, http.MethodGet, "/doctors", token, nil, &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

func (c *Client) GetDoctor(ctx context.Context, token string, id int64) (models.Doctor, error) {
	var doctor models.Doctor
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/doctors/%d", id), token, nil, &doctor); err != nil {
		return models.Doctor{}, err
	}
	return doctor, nil
}

type UpdateDoctorInput struct {
	Username        string  `json:"username,omitempty"`
	Email           string  `json:"email,omitempty"`
	Name            string  `json:"name,omitempty"`
	Specialization  string  `json:"specialization,omitempty"`
	Qualification   string  `json:"qualification,omitempty"`
	Experience      int     `json:"experience,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	Address         string  `json:"address,omitempty"`
	ConsultationFee float64 `json:"consultationFee,omitempty"`
}

func (c *Client) UpdateDoctor(ctx context.Context, token string, id int64, input UpdateDoctorInput) (models.Doctor, error) {
	var doctor models.Doctor
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/doctors/%d", id), token, input, &doctor); err != nil {
		return models.Doctor{}, err
	}
	return doctor, nil
}

func (c *Client) DeleteDoctor(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/doctors/%d", id), token, nil, nil)
}

func (c *Client) SearchDoctors(ctx context.Context, token, specialization string) ([]models.Doctor, error) {
	var doctors []models.Doctor
	path := "/doctors/search?specialization=" + url.QueryEscape(specialization)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}
