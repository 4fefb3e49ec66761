package backend

import (
	"context"
	"net/http"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse mirrors the backend's flat login body: the user fields sit
// beside the token, not nested under a user object.
type LoginResponse struct {
	Token     string `json:"token"`
	UserID    int64  `json:"userId"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	DoctorID  *int64 `json:"doctorId"`
	PatientID *int64 `json:"patientId"`
}

func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", creds, &resp); err != nil {
		return LoginResponse{}, err
	}
	return resp, nil
}

type RegisterAdminInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
}

type RegisterDoctorInput struct {
	Username        string  `json:"username"`
	Password        string  `json:"password"`
	Email           string  `json:"email"`
	Name            string  `json:"name"`
	Specialization  string  `json:"specialization"`
	Qualification   string  `json:"qualification,omitempty"`
	Experience      int     `json:"experience,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	Address         string  `json:"address,omitempty"`
	ConsultationFee float64 `json:"consultationFee,omitempty"`
}

type RegisterPatientInput struct {
	Username         string `json:"username"`
	Password         string `json:"password"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	Age              int    `json:"age,omitempty"`
	DateOfBirth      string `json:"dateOfBirth,omitempty"`
	Gender           string `json:"gender,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Address          string `json:"address,omitempty"`
	BloodGroup       string `json:"bloodGroup,omitempty"`
	EmergencyContact string `json:"emergencyContact,omitempty"`
	MedicalHistory   string `json:"medicalHistory,omitempty"`
}

// Registration endpoints report success or failure only; they never log the
// new account in.

func (c *Client) RegisterAdmin(ctx context.Context, input RegisterAdminInput) error {
	return c.do(ctx, http.MethodPost, "/auth/register/admin", "", input, nil)
}

func (c *Client) RegisterDoctor(ctx context.Context, input RegisterDoctorInput) error {
	return c.do(ctx, http.MethodPost, "/auth/register/doctor", "", input, nil)
}

func (c *Client) RegisterPatient(ctx context.Context, input RegisterPatientInput) error {
	return c.do(ctx, http.MethodPost, "/auth/register/patient", "", input, nil)
}
