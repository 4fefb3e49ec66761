package models

type Prescription struct {
	ID             int64   `json:"id"`
	PatientID      int64   `json:"patientId"`
	DoctorID       int64   `json:"doctorId"`
	PatientName    string  `json:"patientName,omitempty"`
	DoctorName     string  `json:"doctorName,omitempty"`
	MedicationName string  `json:"medicationName"`
	Dosage         string  `json:"dosage,omitempty"`
	Frequency      string  `json:"frequency,omitempty"`
	Duration       string  `json:"duration,omitempty"`
	Instructions   string  `json:"instructions,omitempty"`
	PrescribedDate APITime `json:"prescribedDate,omitempty"`
}
