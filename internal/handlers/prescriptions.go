package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"hospitalms/web/internal/backend"
	"hospitalms/web/internal/models"
)

func filterPrescriptions(items []models.Prescription, query string) []models.Prescription {
	if query == "" {
		return items
	}
	q := strings.ToLower(query)
	filtered := make([]models.Prescription, 0, len(items))
	for _, p := range items {
		if strings.Contains(strings.ToLower(p.PatientName), q) ||
			strings.Contains(strings.ToLower(p.DoctorName), q) ||
			strings.Contains(strings.ToLower(p.MedicationName), q) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func (h HandlerSet) fetchPrescriptionsForRole(ctx context.Context, sess models.Session) ([]models.Prescription, error) {
	switch sess.User.Role {
	case models.RoleAdmin:
		return h.api.ListPrescriptions(ctx, sess.Token)
	case models.RoleDoctor:
		doctorID, err := sess.User.RoleScopedID()
		if err != nil {
			return nil, errScopedID("Doctor ID not found. Please log out and log back in.")
		}
		return h.api.PrescriptionsByDoctor(ctx, sess.Token, doctorID)
	case models.RolePatient:
		patientID, err := sess.User.RoleScopedID()
		if err != nil {
			return nil, errScopedID("Patient ID not found. Please log out and log back in.")
		}
		return h.api.PrescriptionsByPatient(ctx, sess.Token, patientID)
	}
	return nil, errScopedID("Unknown role.")
}

func (h HandlerSet) PrescriptionsList(c *gin.Context) {
	sess := mustSession(c)

	prescriptions, err := h.fetchPrescriptionsForRole(c.Request.Context(), sess)
	if err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		msg := "Failed to fetch prescriptions. Please try again."
		var scoped scopedIDError
		if errors.As(err, &scoped) {
			msg = scoped.Error()
		} else {
			h.log.Error().Err(err).Msg("list prescriptions failed")
		}
		h.render(c, http.StatusOK, "prescriptions_list.html", gin.H{
			"Title": "Prescriptions",
			"Error": msg,
		})
		return
	}

	query := c.Query("q")
	h.render(c, http.StatusOK, "prescriptions_list.html", gin.H{
		"Title":         "Prescriptions",
		"Prescriptions": filterPrescriptions(prescriptions, query),
		"Total":         len(prescriptions),
		"Query":         query,
	})
}

func (h HandlerSet) PrescriptionDetail(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	sess := mustSession(c)

	prescription, err := h.api.GetPrescription(c.Request.Context(), sess.Token, id)
	if err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		if errors.Is(err, backend.ErrNotFound) {
			h.NotFound(c)
			return
		}
		h.log.Error().Err(err).Int64("prescription_id", id).Msg("get prescription failed")
		h.render(c, http.StatusOK, "prescription_detail.html", gin.H{
			"Title": "Prescription Details",
			"Error": "Failed to fetch prescription details",
		})
		return
	}

	h.render(c, http.StatusOK, "prescription_detail.html", gin.H{
		"Title":        "Prescription Details",
		"Prescription": prescription,
	})
}

type prescriptionForm struct {
	PatientID      string
	DoctorID       string
	MedicationName string
	Dosage         string
	Frequency      string
	Duration       string
	Instructions   string
}

func (h HandlerSet) PrescriptionCreateForm(c *gin.Context) {
	sess := mustSession(c)

	patients, err := h.api.ListPatients(c.Request.Context(), sess.Token)
	if err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		h.log.Error().Err(err).Msg("patients fetch failed")
		h.render(c, http.StatusOK, "prescription_create.html", gin.H{
			"Title": "New Prescription",
			"Error": "Failed to load required data. Please try again.",
		})
		return
	}

	form := prescriptionForm{}
	if sess.HasRole(models.RoleDoctor) {
		doctorID, err := sess.User.RoleScopedID()
		if err != nil {
			h.render(c, http.StatusOK, "prescription_create.html", gin.H{
				"Title": "New Prescription",
				"Error": "Doctor ID not found. Please log out and log back in.",
			})
			return
		}
		form.DoctorID = strconv.FormatInt(doctorID, 10)
	}

	var doctors []models.Doctor
	if sess.HasRole(models.RoleAdmin) {
		doctors, err = h.api.ListDoctors(c.Request.Context(), sess.Token)
		if err != nil {
			if h.handleUnauthorized(c, err) {
				return
			}
			h.log.Error().Err(err).Msg("doctors fetch failed")
			h.render(c, http.StatusOK, "prescription_create.html", gin.H{
				"Title": "New Prescription",
				"Error": "Failed to load required data. Please try again.",
			})
			return
		}
	}

	h.render(c, http.StatusOK, "prescription_create.html", gin.H{
		"Title":    "New Prescription",
		"Patients": patients,
		"Doctors":  doctors,
		"Form":     form,
	})
}

func (h HandlerSet) PrescriptionCreateSubmit(c *gin.Context) {
	sess := mustSession(c)
	ctx := c.Request.Context()

	form := prescriptionForm{
		PatientID:      c.PostForm("patientId"),
		DoctorID:       c.PostForm("doctorId"),
		MedicationName: strings.TrimSpace(c.PostForm("medicationName")),
		Dosage:         strings.TrimSpace(c.PostForm("dosage")),
		Frequency:      strings.TrimSpace(c.PostForm("frequency")),
		Duration:       strings.TrimSpace(c.PostForm("duration")),
		Instructions:   strings.TrimSpace(c.PostForm("instructions")),
	}

	renderForm := func(status int, msg string) {
		patients, err := h.api.ListPatients(ctx, sess.Token)
		if err != nil && h.handleUnauthorized(c, err) {
			return
		}
		var doctors []models.Doctor
		if sess.HasRole(models.RoleAdmin) {
			doctors, _ = h.api.ListDoctors(ctx, sess.Token)
		}
		h.render(c, status, "prescription_create.html", gin.H{
			"Title":    "New Prescription",
			"Patients": patients,
			"Doctors":  doctors,
			"Form":     form,
			"Error":    msg,
		})
	}

	// Doctors always prescribe as themselves; only ADMIN picks the doctor.
	if sess.HasRole(models.RoleDoctor) {
		doctorID, err := sess.User.RoleScopedID()
		if err != nil {
			renderForm(http.StatusBadRequest, "Doctor ID not found. Please log out and log back in.")
			return
		}
		form.DoctorID = strconv.FormatInt(doctorID, 10)
	}

	patientID, err1 := strconv.ParseInt(form.PatientID, 10, 64)
	doctorID, err2 := strconv.ParseInt(form.DoctorID, 10, 64)
	if err1 != nil || err2 != nil {
		renderForm(http.StatusBadRequest, "Patient and doctor are required")
		return
	}

	if form.MedicationName == "" || form.Dosage == "" || form.Frequency == "" {
		renderForm(http.StatusBadRequest, "Medication name, dosage and frequency are required")
		return
	}

	input := backend.PrescriptionInput{
		PatientID:      patientID,
		DoctorID:       doctorID,
		MedicationName: form.MedicationName,
		Dosage:         form.Dosage,
		Frequency:      form.Frequency,
		Duration:       form.Duration,
		Instructions:   form.Instructions,
	}

	if _, err := h.api.CreatePrescription(ctx, sess.Token, input); err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		h.log.Error().Err(err).Msg("create prescription failed")
		renderForm(http.StatusOK, "Failed to create prescription. Please try again.")
		return
	}

	h.render(c, http.StatusOK, "prescription_create.html", gin.H{
		"Title":    "New Prescription",
		"Success":  "Prescription created successfully!",
		"Redirect": "/prescriptions",
	})
}
