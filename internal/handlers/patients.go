package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"hospitalms/web/internal/backend"
	"hospitalms/web/internal/models"
)

// filterPatients narrows the fetched set with a case-insensitive substring
// match over name, email and phone. Filtering always runs in-process over
// the full collection; nothing is paged server-side.
func filterPatients(patients []models.Patient, query string) []models.Patient {
	if query == "" {
		return patients
	}
	q := strings.ToLower(query)
	filtered := make([]models.Patient, 0, len(patients))
	for _, p := range patients {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Email), q) ||
			strings.Contains(p.Phone, query) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func (h HandlerSet) PatientsList(c *gin.Context) {
	sess := mustSession(c)

	patients, err := h.api.ListPatients(c.Request.Context(), sess.Token)
	if err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		h.log.Error().Err(err).Msg("list patients failed")
		h.render(c, http.StatusOK, "patients_list.html", gin.H{
			"Title": "Patients",
			"Error": "Failed to fetch patients. Please try again.",
		})
		return
	}

	query := c.Query("q")
	h.render(c, http.StatusOK, "patients_list.html", gin.H{
		"Title":    "Patients",
		"Patients": filterPatients(patients, query),
		"Total":    len(patients),
		"Query":    query,
		"Flash":    c.Query("flash"),
	})
}

func (h HandlerSet) PatientDetail(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	sess := mustSession(c)

	patient, err := h.api.GetPatient(c.Request.Context(), sess.Token, id)
	if err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		if errors.Is(err, backend.ErrNotFound) {
			h.NotFound(c)
			return
		}
		h.log.Error().Err(err).Int64("patient_id", id).Msg("get patient failed")
		h.render(c, http.StatusOK, "patient_detail.html", gin.H{
			"Title": "Patient Details",
			"Error": "Failed to fetch patient details. Please try again.",
		})
		return
	}

	h.render(c, http.StatusOK, "patient_detail.html", gin.H{
		"Title":   "Patient Details",
		"Patient": patient,
	})
}

func (h HandlerSet) PatientRegisterForm(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", gin.H{
		"Title":  "Register Patient",
		"Action": "/patients/register",
	})
}

func (h HandlerSet) PatientRegisterSubmit(c *gin.Context) {
	h.submitPatientRegistration(c, "/patients/register", "Patient registered successfully!", "/patients")
}

func (h HandlerSet) PatientEditForm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	sess := mustSession(c)

	patient, err := h.api.GetPatient(c.Request.Context(), sess.Token, id)
	if err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		if errors.Is(err, backend.ErrNotFound) {
			h.NotFound(c)
			return
		}
		h.log.Error().Err(err).Int64("patient_id", id).Msg("get patient failed")
		h.render(c, http.StatusOK, "patient_edit.html", gin.H{
			"Title": "Edit Patient",
			"Error": "Failed to load patient data. Please try again.",
		})
		return
	}

	h.render(c, http.StatusOK, "patient_edit.html", gin.H{
		"Title":   "Edit Patient",
		"Patient": patient,
	})
}

func (h HandlerSet) PatientEditSubmit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	sess := mustSession(c)

	input := backend.UpdatePatientInput{
		Name:               strings.TrimSpace(c.PostForm("name")),
		Gender:             c.PostForm("gender"),
		Phone:              strings.TrimSpace(c.PostForm("phone")),
		Email:              strings.TrimSpace(c.PostForm("email")),
		Address:            strings.TrimSpace(c.PostForm("address")),
		DateOfBirth:        c.PostForm("dateOfBirth"),
		BloodGroup:         c.PostForm("bloodGroup"),
		EmergencyContact:   strings.TrimSpace(c.PostForm("emergencyContact")),
		MedicalHistory:     strings.TrimSpace(c.PostForm("medicalHistory")),
		Allergies:          strings.TrimSpace(c.PostForm("allergies")),
		CurrentMedications: strings.TrimSpace(c.PostForm("currentMedications")),
	}

	formPatient := models.Patient{
		ID: id, Name: input.Name, Gender: input.Gender, Phone: input.Phone,
		Email: input.Email, Address: input.Address, DateOfBirth: input.DateOfBirth,
		BloodGroup: input.BloodGroup, EmergencyContact: input.EmergencyContact,
		MedicalHistory: input.MedicalHistory, Allergies: input.Allergies,
		CurrentMedications: input.CurrentMedications,
	}
	form := gin.H{"Title": "Edit Patient", "Patient": formPatient}

	if ageField := c.PostForm("age"); ageField != "" {
		age, err := strconv.Atoi(ageField)
		if err != nil || age < 0 {
			form["Error"] = "Please enter a valid age"
			h.render(c, http.StatusBadRequest, "patient_edit.html", form)
			return
		}
		input.Age = age
		formPatient.Age = age
		form["Patient"] = formPatient
	}

	if input.Name == "" {
		form["Error"] = "Name is required"
		h.render(c, http.StatusBadRequest, "patient_edit.html", form)
		return
	}

	if _, err := h.api.UpdatePatient(c.Request.Context(), sess.Token, id, input); err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		h.log.Error().Err(err).Int64("patient_id", id).Msg("update patient failed")
		form["Error"] = "Failed to update patient. Please try again."
		h.render(c, http.StatusOK, "patient_edit.html", form)
		return
	}

	form["Success"] = "Patient updated successfully!"
	form["Redirect"] = "/patients/" + strconv.FormatInt(id, 10)
	h.render(c, http.StatusOK, "patient_edit.html", form)
}

func (h HandlerSet) PatientDelete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	sess := mustSession(c)

	if err := h.api.DeletePatient(c.Request.Context(), sess.Token, id); err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		h.log.Error().Err(err).Int64("patient_id", id).Msg("delete patient failed")
		c.Redirect(http.StatusSeeOther, "/patients?flash=delete_failed")
		return
	}
	c.Redirect(http.StatusSeeOther, "/patients?flash=deleted")
}
