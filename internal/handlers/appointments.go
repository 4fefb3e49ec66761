package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"hospitalms/web/internal/backend"
	"hospitalms/web/internal/models"
)

const appointmentTimeLayout = "2006-01-02T15:04"

// filterAppointments applies the search box and the exact status filter over
// the already-fetched collection.
func filterAppointments(items []models.Appointment, query string, status models.AppointmentStatus) []models.Appointment {
	filtered := make([]models.Appointment, 0, len(items))
	q := strings.ToLower(query)
	for _, a := range items {
		matchesSearch := q == "" ||
			strings.Contains(strings.ToLower(a.PatientName), q) ||
			strings.Contains(strings.ToLower(a.DoctorName), q) ||
			strings.Contains(strings.ToLower(a.Reason), q)
		matchesStatus := status == "" || a.Status == status
		if matchesSearch && matchesStatus {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

// removeAppointment drops exactly the deleted row; the surviving rows keep
// their fetched state and no second list fetch happens.
func removeAppointment(items []models.Appointment, id int64) []models.Appointment {
	remaining := make([]models.Appointment, 0, len(items))
	for _, a := range items {
		if a.ID != id {
			remaining = append(remaining, a)
		}
	}
	return remaining
}

// patchAppointmentStatus patches the single mutated record in place.
func patchAppointmentStatus(items []models.Appointment, id int64, status models.AppointmentStatus) []models.Appointment {
	patched := make([]models.Appointment, len(items))
	copy(patched, items)
	for i := range patched {
		if patched[i].ID == id {
			patched[i].Status = status
		}
	}
	return patched
}

type appointmentSummary struct {
	Total     int
	Upcoming  int
	Completed int
	Cancelled int
}

func summarizeAppointments(items []models.Appointment) appointmentSummary {
	s := appointmentSummary{Total: len(items)}
	for _, a := range items {
		switch a.Status {
		case models.StatusScheduled, models.StatusConfirmed:
			s.Upcoming++
		case models.StatusCompleted:
			s.Completed++
		case models.StatusCancelled:
			s.Cancelled++
		}
	}
	return s
}

// fetchAppointmentsForRole issues the minimal fetch for the current role:
// ADMIN sees everything, DOCTOR and PATIENT only their own. A user record
// missing its role-scoped id is a terminal error for the page; no malformed
// fetch is attempted.
func (h HandlerSet) fetchAppointmentsForRole(ctx context.Context, sess models.Session) ([]models.Appointment, error) {
	switch sess.User.Role {
	case models.RoleAdmin:
		return h.api.ListAppointments(ctx, sess.Token)
	case models.RoleDoctor:
		doctorID, err := sess.User.RoleScopedID()
		if err != nil {
			return nil, errScopedID("Doctor ID not found. Please log out and log back in.")
		}
		return h.api.AppointmentsByDoctor(ctx, sess.Token, doctorID)
	case models.RolePatient:
		patientID, err := sess.User.RoleScopedID()
		if err != nil {
			return nil, errScopedID("Patient ID not found. Please log out and log back in.")
		}
		return h.api.AppointmentsByPatient(ctx, sess.Token, patientID)
	}
	return nil, errScopedID("Unknown role.")
}

type scopedIDError string

func errScopedID(msg string) error { return scopedIDError(msg) }

func (e scopedIDError) Error() string { return string(e) }

func (e scopedIDError) Is(target error) bool { return target == models.ErrNoScopedID }

func (h HandlerSet) AppointmentsList(c *gin.Context) {
	sess := mustSession(c)

	appointments, err := h.fetchAppointmentsForRole(c.Request.Context(), sess)
	if err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		msg := "Failed to fetch appointments. Please try again."
		var scoped scopedIDError
		if errors.As(err, &scoped) {
			msg = scoped.Error()
		} else {
			h.log.Error().Err(err).Msg("list appointments failed")
		}
		h.render(c, http.StatusOK, "appointments_list.html", gin.H{
			"Title":        "Appointments",
			"Error":        msg,
			"Statuses":     models.AppointmentStatuses,
			"StatusFilter": models.AppointmentStatus(""),
			"Query":        c.Query("q"),
		})
		return
	}

	h.renderAppointmentsList(c, appointments, "", "")
}

func (h HandlerSet) renderAppointmentsList(c *gin.Context, appointments []models.Appointment, flash, inlineErr string) {
	query := c.Query("q")
	statusParam := c.Query("status")
	var statusFilter models.AppointmentStatus
	if statusParam != "" {
		if parsed, err := models.ParseAppointmentStatus(statusParam); err == nil {
			statusFilter = parsed
		}
	}

	data := gin.H{
		"Title":        "Appointments",
		"Appointments": filterAppointments(appointments, query, statusFilter),
		"Summary":      summarizeAppointments(appointments),
		"Statuses":     models.AppointmentStatuses,
		"Query":        query,
		"StatusFilter": statusFilter,
	}
	if flash != "" {
		data["Flash"] = flash
	}
	if inlineErr != "" {
		data["Error"] = inlineErr
	}
	h.render(c, http.StatusOK, "appointments_list.html", data)
}

// AppointmentDelete removes the appointment and re-renders the collection
// fetched in this same request with the row taken out, rather than fetching
// the list a second time.
func (h HandlerSet) AppointmentDelete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	sess := mustSession(c)
	ctx := c.Request.Context()

	appointments, err := h.fetchAppointmentsForRole(ctx, sess)
	if err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		c.Redirect(http.StatusSeeOther, "/appointments")
		return
	}

	if err := h.api.DeleteAppointment(ctx, sess.Token, id); err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		h.log.Error().Err(err).Int64("appointment_id", id).Msg("delete appointment failed")
		h.renderAppointmentsList(c, appointments, "", "Failed to delete appointment. Please try again.")
		return
	}

	h.renderAppointmentsList(c, removeAppointment(appointments, id), "Appointment deleted successfully!", "")
}

// AppointmentStatusUpdate handles the status-only PATCH. Triggered from the
// list it patches the one record locally; from the detail page it redirects
// back there.
func (h HandlerSet) AppointmentStatusUpdate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	sess := mustSession(c)
	ctx := c.Request.Context()

	status, err := models.ParseAppointmentStatus(c.PostForm("status"))
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/appointments")
		return
	}

	fromDetail := c.PostForm("from") == "detail"

	if fromDetail {
		if err := h.api.UpdateAppointmentStatus(ctx, sess.Token, id, status); err != nil {
			if h.handleUnauthorized(c, err) {
				return
			}
			h.log.Error().Err(err).Int64("appointment_id", id).Msg("status update failed")
			c.Redirect(http.StatusSeeOther, "/appointments/"+strconv.FormatInt(id, 10)+"?flash=status_failed")
			return
		}
		c.Redirect(http.StatusSeeOther, "/appointments/"+strconv.FormatInt(id, 10)+"?flash=status_updated")
		return
	}

	appointments, fetchErr := h.fetchAppointmentsForRole(ctx, sess)
	if fetchErr != nil {
		if h.handleUnauthorized(c, fetchErr) {
			return
		}
		c.Redirect(http.StatusSeeOther, "/appointments")
		return
	}

	if err := h.api.UpdateAppointmentStatus(ctx, sess.Token, id, status); err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		h.log.Error().Err(err).Int64("appointment_id", id).Msg("status update failed")
		h.renderAppointmentsList(c, appointments, "", "Failed to update appointment status. Please try again.")
		return
	}

	h.renderAppointmentsList(c, patchAppointmentStatus(appointments, id, status), "Appointment status updated successfully!", "")
}

func (h HandlerSet) AppointmentDetail(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	sess := mustSession(c)

	appointment, err := h.api.GetAppointment(c.Request.Context(), sess.Token, id)
	if err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		if errors.Is(err, backend.ErrNotFound) {
			h.NotFound(c)
			return
		}
		h.log.Error().Err(err).Int64("appointment_id", id).Msg("get appointment failed")
		h.render(c, http.StatusOK, "appointment_detail.html", gin.H{
			"Title": "Appointment Details",
			"Error": "Failed to fetch appointment details",
		})
		return
	}

	h.render(c, http.StatusOK, "appointment_detail.html", gin.H{
		"Title":       "Appointment Details",
		"Appointment": appointment,
		"Statuses":    models.AppointmentStatuses,
		"CanManage":   canManageAppointment(sess, appointment),
		"Flash":       c.Query("flash"),
	})
}

// canManageAppointment gates edit/status/delete actions: ADMIN always, the
// assigned DOCTOR for their own appointments.
func canManageAppointment(sess models.Session, a models.Appointment) bool {
	if sess.HasRole(models.RoleAdmin) {
		return true
	}
	if sess.HasRole(models.RoleDoctor) {
		doctorID, err := sess.User.RoleScopedID()
		return err == nil && doctorID == a.DoctorID
	}
	return false
}

// loadScheduleRefs fetches the reference data the create and edit forms
// need, all-or-nothing: doctors always, patients only for staff roles.
func (h HandlerSet) loadScheduleRefs(ctx context.Context, sess models.Session) ([]models.Doctor, []models.Patient, error) {
	doctors, err := h.api.ListDoctors(ctx, sess.Token)
	if err != nil {
		return nil, nil, err
	}
	var patients []models.Patient
	if sess.HasRole(models.RoleAdmin) || sess.HasRole(models.RoleDoctor) {
		patients, err = h.api.ListPatients(ctx, sess.Token)
		if err != nil {
			return nil, nil, err
		}
	}
	return doctors, patients, nil
}

type appointmentForm struct {
	PatientID       string
	DoctorID        string
	AppointmentTime string
	Reason          string
	Notes           string
	Status          string
}

func (h HandlerSet) AppointmentCreateForm(c *gin.Context) {
	sess := mustSession(c)

	doctors, patients, err := h.loadScheduleRefs(c.Request.Context(), sess)
	if err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		h.log.Error().Err(err).Msg("schedule refs fetch failed")
		h.render(c, http.StatusOK, "appointment_create.html", gin.H{
			"Title": "Schedule Appointment",
			"Error": "Failed to load required data. Please try again.",
		})
		return
	}

	form := appointmentForm{}
	// Pre-select the requester where the role implies one side of the visit.
	if sess.HasRole(models.RoleDoctor) {
		if doctorID, err := sess.User.RoleScopedID(); err == nil {
			form.DoctorID = strconv.FormatInt(doctorID, 10)
		}
	}
	if sess.HasRole(models.RolePatient) {
		patientID, err := sess.User.RoleScopedID()
		if err != nil {
			h.render(c, http.StatusOK, "appointment_create.html", gin.H{
				"Title": "Schedule Appointment",
				"Error": "Patient ID not found. Please log out and log back in.",
			})
			return
		}
		form.PatientID = strconv.FormatInt(patientID, 10)
	}

	h.render(c, http.StatusOK, "appointment_create.html", gin.H{
		"Title":       "Schedule Appointment",
		"Doctors":     doctors,
		"Patients":    patients,
		"Form":        form,
		"MinDateTime": time.Now().Add(time.Hour).Format(appointmentTimeLayout),
	})
}

// validateAppointmentTime enforces the advisory local check before anything
// reaches the backend: strictly future, and on creation at least an hour of
// lead time. The backend remains the authority and may still reject.
func validateAppointmentTime(raw string, now time.Time, creating bool) (time.Time, string) {
	if raw == "" {
		return time.Time{}, "Appointment date and time is required"
	}
	t, err := time.ParseInLocation(appointmentTimeLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, "Invalid appointment date and time"
	}
	if !t.After(now) {
		return time.Time{}, "Appointment date and time must be in the future"
	}
	if creating && t.Before(now.Add(time.Hour)) {
		return time.Time{}, "Appointments must be scheduled at least one hour in advance"
	}
	return t, ""
}

func (h HandlerSet) AppointmentCreateSubmit(c *gin.Context) {
	sess := mustSession(c)
	ctx := c.Request.Context()

	form := appointmentForm{
		PatientID:       c.PostForm("patientId"),
		DoctorID:        c.PostForm("doctorId"),
		AppointmentTime: c.PostForm("appointmentTime"),
		Reason:          strings.TrimSpace(c.PostForm("reason")),
		Notes:           strings.TrimSpace(c.PostForm("notes")),
	}

	renderForm := func(status int, msg string) {
		doctors, patients, err := h.loadScheduleRefs(ctx, sess)
		if err != nil && h.handleUnauthorized(c, err) {
			return
		}
		h.render(c, status, "appointment_create.html", gin.H{
			"Title":       "Schedule Appointment",
			"Doctors":     doctors,
			"Patients":    patients,
			"Form":        form,
			"Error":       msg,
			"MinDateTime": time.Now().Add(time.Hour).Format(appointmentTimeLayout),
		})
	}

	patientID, err1 := strconv.ParseInt(form.PatientID, 10, 64)
	doctorID, err2 := strconv.ParseInt(form.DoctorID, 10, 64)
	if err1 != nil || err2 != nil {
		renderForm(http.StatusBadRequest, "Patient and doctor are required")
		return
	}

	if _, msg := validateAppointmentTime(form.AppointmentTime, time.Now(), true); msg != "" {
		renderForm(http.StatusBadRequest, msg)
		return
	}

	input := backend.AppointmentInput{
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentTime: form.AppointmentTime,
		Reason:          form.Reason,
		Notes:           form.Notes,
		Status:          string(models.StatusScheduled),
	}

	if _, err := h.api.CreateAppointment(ctx, sess.Token, input); err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		h.log.Error().Err(err).Msg("create appointment failed")
		renderForm(http.StatusOK, "Failed to schedule appointment. Please try again.")
		return
	}

	h.render(c, http.StatusOK, "appointment_create.html", gin.H{
		"Title":    "Schedule Appointment",
		"Success":  "Appointment scheduled successfully!",
		"Redirect": "/appointments",
	})
}

func (h HandlerSet) AppointmentEditForm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	sess := mustSession(c)
	ctx := c.Request.Context()

	appointment, err := h.api.GetAppointment(ctx, sess.Token, id)
	if err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		if errors.Is(err, backend.ErrNotFound) {
			h.NotFound(c)
			return
		}
		h.log.Error().Err(err).Int64("appointment_id", id).Msg("get appointment failed")
		h.render(c, http.StatusOK, "appointment_edit.html", gin.H{
			"Title": "Edit Appointment",
			"Error": "Failed to load appointment. Please try again.",
		})
		return
	}

	doctors, patients, err := h.loadScheduleRefs(ctx, sess)
	if err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		h.log.Error().Err(err).Msg("schedule refs fetch failed")
		h.render(c, http.StatusOK, "appointment_edit.html", gin.H{
			"Title": "Edit Appointment",
			"Error": "Failed to load required data. Please try again.",
		})
		return
	}

	form := appointmentForm{
		PatientID:       strconv.FormatInt(appointment.PatientID, 10),
		DoctorID:        strconv.FormatInt(appointment.DoctorID, 10),
		AppointmentTime: appointment.AppointmentTime.Format(appointmentTimeLayout),
		Reason:          appointment.Reason,
		Notes:           appointment.Notes,
		Status:          string(appointment.Status),
	}

	h.render(c, http.StatusOK, "appointment_edit.html", gin.H{
		"Title":         "Edit Appointment",
		"Appointment":   appointment,
		"Doctors":       doctors,
		"Patients":      patients,
		"Form":          form,
		"Statuses":      models.AppointmentStatuses,
		"CanReassign":   sess.HasRole(models.RoleAdmin),
		"CanEditStatus": canManageAppointment(sess, appointment),
	})
}

func (h HandlerSet) AppointmentEditSubmit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	sess := mustSession(c)
	ctx := c.Request.Context()

	appointment, err := h.api.GetAppointment(ctx, sess.Token, id)
	if err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		if errors.Is(err, backend.ErrNotFound) {
			h.NotFound(c)
			return
		}
		h.render(c, http.StatusOK, "appointment_edit.html", gin.H{
			"Title": "Edit Appointment",
			"Error": "Failed to load appointment. Please try again.",
		})
		return
	}

	form := appointmentForm{
		PatientID:       c.PostForm("patientId"),
		DoctorID:        c.PostForm("doctorId"),
		AppointmentTime: c.PostForm("appointmentTime"),
		Reason:          strings.TrimSpace(c.PostForm("reason")),
		Notes:           strings.TrimSpace(c.PostForm("notes")),
		Status:          c.PostForm("status"),
	}

	canReassign := sess.HasRole(models.RoleAdmin)
	canEditStatus := canManageAppointment(sess, appointment)

	renderForm := func(status int, msg string) {
		doctors, patients, refErr := h.loadScheduleRefs(ctx, sess)
		if refErr != nil && h.handleUnauthorized(c, refErr) {
			return
		}
		h.render(c, status, "appointment_edit.html", gin.H{
			"Title":         "Edit Appointment",
			"Appointment":   appointment,
			"Doctors":       doctors,
			"Patients":      patients,
			"Form":          form,
			"Statuses":      models.AppointmentStatuses,
			"CanReassign":   canReassign,
			"CanEditStatus": canEditStatus,
			"Error":         msg,
		})
	}

	// Reassignment is ADMIN-only; everyone else keeps the stored parties.
	patientID := appointment.PatientID
	doctorID := appointment.DoctorID
	if canReassign {
		var err1, err2 error
		patientID, err1 = strconv.ParseInt(form.PatientID, 10, 64)
		doctorID, err2 = strconv.ParseInt(form.DoctorID, 10, 64)
		if err1 != nil || err2 != nil {
			renderForm(http.StatusBadRequest, "Patient and doctor are required")
			return
		}
	}

	status := appointment.Status
	if canEditStatus && form.Status != "" {
		parsed, err := models.ParseAppointmentStatus(form.Status)
		if err != nil {
			renderForm(http.StatusBadRequest, "Invalid appointment status")
			return
		}
		status = parsed
	}

	if _, msg := validateAppointmentTime(form.AppointmentTime, time.Now(), false); msg != "" {
		renderForm(http.StatusBadRequest, msg)
		return
	}

	input := backend.AppointmentInput{
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentTime: form.AppointmentTime,
		Reason:          form.Reason,
		Notes:           form.Notes,
		Status:          string(status),
	}

	if _, err := h.api.UpdateAppointment(ctx, sess.Token, id, input); err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		h.log.Error().Err(err).Int64("appointment_id", id).Msg("update appointment failed")
		renderForm(http.StatusOK, "Failed to update appointment. Please try again.")
		return
	}

	h.render(c, http.StatusOK, "appointment_edit.html", gin.H{
		"Title":    "Edit Appointment",
		"Success":  "Appointment updated successfully!",
		"Redirect": "/appointments/" + strconv.FormatInt(id, 10),
	})
}
