package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"hospitalms/web/internal/models"
)

func sampleAppointments() []models.Appointment {
	return []models.Appointment{
		{ID: 1, PatientName: "Alice Brown", DoctorName: "Dr. Smith", Reason: "Checkup", Status: models.StatusScheduled},
		{ID: 2, PatientName: "Bob Green", DoctorName: "Dr. Jones", Reason: "Back pain", Status: models.StatusConfirmed},
		{ID: 3, PatientName: "Carol White", DoctorName: "Dr. Smith", Reason: "Follow-up", Status: models.StatusCompleted},
		{ID: 4, PatientName: "Dan Black", DoctorName: "Dr. Lee", Reason: "Migraine", Status: models.StatusCancelled},
	}
}

func TestFilterAppointments(t *testing.T) {
	items := sampleAppointments()

	assert.Len(t, filterAppointments(items, "", ""), 4)

	byPatient := filterAppointments(items, "alice", "")
	assert.Len(t, byPatient, 1)
	assert.Equal(t, int64(1), byPatient[0].ID)

	byDoctor := filterAppointments(items, "smith", "")
	assert.Len(t, byDoctor, 2)

	byReason := filterAppointments(items, "pain", "")
	assert.Len(t, byReason, 1)
	assert.Equal(t, int64(2), byReason[0].ID)

	byStatus := filterAppointments(items, "", models.StatusCompleted)
	assert.Len(t, byStatus, 1)
	assert.Equal(t, int64(3), byStatus[0].ID)

	combined := filterAppointments(items, "smith", models.StatusCompleted)
	assert.Len(t, combined, 1)
	assert.Equal(t, int64(3), combined[0].ID)

	assert.Empty(t, filterAppointments(items, "nobody", ""))
}

func TestRemoveAppointment(t *testing.T) {
	items := sampleAppointments()

	remaining := removeAppointment(items, 2)
	assert.Len(t, remaining, 3)
	for _, a := range remaining {
		assert.NotEqual(t, int64(2), a.ID)
	}

	// untouched input
	assert.Len(t, items, 4)

	same := removeAppointment(items, 99)
	assert.Len(t, same, 4)
}

func TestPatchAppointmentStatus(t *testing.T) {
	items := sampleAppointments()

	patched := patchAppointmentStatus(items, 1, models.StatusCancelled)
	assert.Equal(t, models.StatusCancelled, patched[0].Status)
	assert.Equal(t, models.StatusConfirmed, patched[1].Status)

	// untouched input
	assert.Equal(t, models.StatusScheduled, items[0].Status)
}

func TestSummarizeAppointments(t *testing.T) {
	s := summarizeAppointments(sampleAppointments())
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Upcoming)
	assert.Equal(t, 1, s.Completed)
	assert.Equal(t, 1, s.Cancelled)
}

func TestValidateAppointmentTime(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.Local)
	layout := appointmentTimeLayout

	t.Run("empty", func(t *testing.T) {
		_, msg := validateAppointmentTime("", now, true)
		assert.NotEmpty(t, msg)
	})

	t.Run("unparsable", func(t *testing.T) {
		_, msg := validateAppointmentTime("15/03/2026 13:00", now, true)
		assert.Equal(t, "Invalid appointment date and time", msg)
	})

	t.Run("past", func(t *testing.T) {
		_, msg := validateAppointmentTime(now.Add(-time.Hour).Format(layout), now, true)
		assert.Equal(t, "Appointment date and time must be in the future", msg)
	})

	t.Run("under one hour lead on create", func(t *testing.T) {
		_, msg := validateAppointmentTime(now.Add(30*time.Minute).Format(layout), now, true)
		assert.Equal(t, "Appointments must be scheduled at least one hour in advance", msg)
	})

	t.Run("under one hour lead allowed on edit", func(t *testing.T) {
		_, msg := validateAppointmentTime(now.Add(30*time.Minute).Format(layout), now, false)
		assert.Empty(t, msg)
	})

	t.Run("valid create", func(t *testing.T) {
		parsed, msg := validateAppointmentTime(now.Add(2*time.Hour).Format(layout), now, true)
		assert.Empty(t, msg)
		assert.True(t, parsed.After(now))
	})
}

func TestCanManageAppointment(t *testing.T) {
	doctorID := int64(42)
	appointment := models.Appointment{ID: 1, DoctorID: 42}

	admin := models.Session{Token: "t", User: models.UserRecord{Role: models.RoleAdmin}}
	assert.True(t, canManageAppointment(admin, appointment))

	assigned := models.Session{Token: "t", User: models.UserRecord{Role: models.RoleDoctor, DoctorID: &doctorID}}
	assert.True(t, canManageAppointment(assigned, appointment))

	otherID := int64(43)
	other := models.Session{Token: "t", User: models.UserRecord{Role: models.RoleDoctor, DoctorID: &otherID}}
	assert.False(t, canManageAppointment(other, appointment))

	patient := models.Session{Token: "t", User: models.UserRecord{Role: models.RolePatient}}
	assert.False(t, canManageAppointment(patient, appointment))
}

func TestFilterPatients(t *testing.T) {
	patients := []models.Patient{
		{ID: 1, Name: "Alice Brown", Email: "alice@example.com", Phone: "555-0101"},
		{ID: 2, Name: "Bob Green", Email: "bob@example.com", Phone: "555-0202"},
	}

	assert.Len(t, filterPatients(patients, ""), 2)
	assert.Len(t, filterPatients(patients, "ALICE"), 1)
	assert.Len(t, filterPatients(patients, "bob@"), 1)
	assert.Len(t, filterPatients(patients, "0202"), 1)
	assert.Empty(t, filterPatients(patients, "zzz"))
}

func TestFilterDoctors(t *testing.T) {
	doctors := []models.Doctor{
		{ID: 1, Name: "Dr. Smith", Specialization: "CARDIOLOGY", Email: "smith@example.com", Phone: "555-0303"},
		{ID: 2, Name: "Dr. Jones", Specialization: "NEUROLOGY", Email: "jones@example.com", Phone: "555-0404"},
	}

	assert.Len(t, filterDoctors(doctors, ""), 2)
	assert.Len(t, filterDoctors(doctors, "cardio"), 1)
	assert.Len(t, filterDoctors(doctors, "jones"), 1)
	assert.Empty(t, filterDoctors(doctors, "pediatrics"))
}

func TestFilterPrescriptions(t *testing.T) {
	prescriptions := []models.Prescription{
		{ID: 1, PatientName: "Alice Brown", DoctorName: "Dr. Smith", MedicationName: "Amoxicillin"},
		{ID: 2, PatientName: "Bob Green", DoctorName: "Dr. Jones", MedicationName: "Ibuprofen"},
	}

	assert.Len(t, filterPrescriptions(prescriptions, ""), 2)
	assert.Len(t, filterPrescriptions(prescriptions, "amox"), 1)
	assert.Len(t, filterPrescriptions(prescriptions, "smith"), 1)
	assert.Len(t, filterPrescriptions(prescriptions, "bob"), 1)
}

func TestRecentPatients(t *testing.T) {
	patients := []models.Patient{{ID: 1}, {ID: 5}, {ID: 3}, {ID: 9}, {ID: 2}, {ID: 7}}

	recent := recentPatients(patients, 5)
	assert.Len(t, recent, 5)
	assert.Equal(t, int64(9), recent[0].ID)
	assert.Equal(t, int64(7), recent[1].ID)

	all := recentPatients(patients[:2], 5)
	assert.Len(t, all, 2)
}
