package models

import "errors"

var ErrNoScopedID = errors.New("role-scoped id missing from user record")

// UserRecord mirrors the identity fields the backend returns on login.
// DoctorID and PatientID are only populated for the matching role.
type UserRecord struct {
	UserID    int64  `json:"userId"`
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	DoctorID  *int64 `json:"doctorId,omitempty"`
	PatientID *int64 `json:"patientId,omitempty"`
}

// RoleScopedID resolves the identifier used for "by doctor" / "by patient"
// queries. For ADMIN it is the user id. A DOCTOR or PATIENT record without
// its role id cannot issue scoped fetches, so that is an explicit error
// rather than a fallback to the wrong identifier space.
func (u UserRecord) RoleScopedID() (int64, error) {
	switch u.Role {
	case RoleDoctor:
		if u.DoctorID == nil {
			return 0, ErrNoScopedID
		}
		return *u.DoctorID, nil
	case RolePatient:
		if u.PatientID == nil {
			return 0, ErrNoScopedID
		}
		return *u.PatientID, nil
	case RoleAdmin:
		return u.UserID, nil
	}
	return 0, ErrNoScopedID
}

// DisplayName prefers the real name over the login name.
func (u UserRecord) DisplayName() string {
	if u.FirstName != "" || u.LastName != "" {
		name := u.FirstName
		if u.LastName != "" {
			if name != "" {
				name += " "
			}
			name += u.LastName
		}
		return name
	}
	return u.Username
}
