package models

type Patient struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
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
