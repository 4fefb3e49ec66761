package models

type Doctor struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email,omitempty"`
	Specialization  string  `json:"specialization,omitempty"`
	Qualification   string  `json:"qualification,omitempty"`
	Experience      int     `json:"experience,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	Address         string  `json:"address,omitempty"`
	ConsultationFee float64 `json:"consultationFee,omitempty"`
}

// Specializations the registration and edit forms offer.
var Specializations = []string{
	"CARDIOLOGY", "DERMATOLOGY", "ENDOCRINOLOGY", "GASTROENTEROLOGY",
	"HEMATOLOGY", "NEUROLOGY", "ONCOLOGY", "ORTHOPEDICS", "PEDIATRICS",
	"PSYCHIATRY", "RADIOLOGY", "SURGERY", "UROLOGY", "GENERAL_PRACTICE",
}
