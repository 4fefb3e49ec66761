package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"hospitalms/web/internal/backend"
	"hospitalms/web/internal/models"
	"hospitalms/web/internal/session"
)

func filterDoctors(doctors []models.Doctor, query string) []models.Doctor {
	if query == "" {
		return doctors
	}
	q := strings.ToLower(query)
	filtered := make([]models.Doctor, 0, len(doctors))
	for _, d := range doctors {
		if strings.Contains(strings.ToLower(d.Name), q) ||
			strings.Contains(strings.ToLower(d.Email), q) ||
			strings.Contains(strings.ToLower(d.Specialization), q) ||
			strings.Contains(d.Phone, query) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

func (h HandlerSet) DoctorsList(c *gin.Context) {
	sess := mustSession(c)

	doctors, err := h.api.ListDoctors(c.Request.Context(), sess.Token)
	if err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		h.log.Error().Err(err).Msg("list doctors failed")
		h.render(c, http.StatusOK, "doctors_list.html", gin.H{
			"Title": "Doctors",
			"Error": "Failed to fetch doctors. Please try again.",
		})
		return
	}

	query := c.Query("q")
	h.render(c, http.StatusOK, "doctors_list.html", gin.H{
		"Title":   "Doctors",
		"Doctors": filterDoctors(doctors, query),
		"Total":   len(doctors),
		"Query":   query,
		"Flash":   c.Query("flash"),
	})
}

func (h HandlerSet) DoctorDetail(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	sess := mustSession(c)

	doctor, err := h.api.GetDoctor(c.Request.Context(), sess.Token, id)
	if err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		if errors.Is(err, backend.ErrNotFound) {
			h.NotFound(c)
			return
		}
		h.log.Error().Err(err).Int64("doctor_id", id).Msg("get doctor failed")
		h.render(c, http.StatusOK, "doctor_detail.html", gin.H{
			"Title": "Doctor Details",
			"Error": "Failed to fetch doctor details. Please try again.",
		})
		return
	}

	h.render(c, http.StatusOK, "doctor_detail.html", gin.H{
		"Title":  "Doctor Details",
		"Doctor": doctor,
	})
}

func (h HandlerSet) DoctorRegisterForm(c *gin.Context) {
	h.render(c, http.StatusOK, "doctor_register.html", gin.H{
		"Title":           "Register Doctor",
		"Specializations": models.Specializations,
	})
}

func (h HandlerSet) DoctorRegisterSubmit(c *gin.Context) {
	input := backend.RegisterDoctorInput{
		Username:       strings.TrimSpace(c.PostForm("username")),
		Password:       c.PostForm("password"),
		Email:          strings.TrimSpace(c.PostForm("email")),
		Name:           strings.TrimSpace(c.PostForm("name")),
		Specialization: c.PostForm("specialization"),
		Qualification:  strings.TrimSpace(c.PostForm("qualification")),
		Phone:          strings.TrimSpace(c.PostForm("phone")),
		Address:        strings.TrimSpace(c.PostForm("address")),
	}

	form := gin.H{
		"Title":           "Register Doctor",
		"Specializations": models.Specializations,
		"Form":            input,
	}

	fail := func(status int, msg string) {
		form["Form"] = input
		form["Error"] = msg
		h.render(c, status, "doctor_register.html", form)
	}

	if input.Username == "" || input.Password == "" || input.Name == "" || input.Specialization == "" {
		fail(http.StatusBadRequest, "Username, password, name and specialization are required")
		return
	}

	if expField := c.PostForm("experience"); expField != "" {
		exp, err := strconv.Atoi(expField)
		if err != nil || exp < 0 {
			fail(http.StatusBadRequest, "Experience cannot be negative")
			return
		}
		input.Experience = exp
	}
	if feeField := c.PostForm("consultationFee"); feeField != "" {
		fee, err := strconv.ParseFloat(feeField, 64)
		if err != nil || fee < 0 {
			fail(http.StatusBadRequest, "Consultation fee cannot be negative")
			return
		}
		input.ConsultationFee = fee
	}

	if err := h.sessions.RegisterDoctor(c.Request.Context(), input); err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		h.log.Warn().Err(err).Msg("doctor registration failed")
		fail(http.StatusBadRequest, session.FailureMessage(err, "Registration failed"))
		return
	}

	h.render(c, http.StatusOK, "doctor_register.html", gin.H{
		"Title":           "Register Doctor",
		"Specializations": models.Specializations,
		"Success":         "Doctor registered successfully!",
	})
}

func (h HandlerSet) DoctorEditForm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	sess := mustSession(c)

	doctor, err := h.api.GetDoctor(c.Request.Context(), sess.Token, id)
	if err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		if errors.Is(err, backend.ErrNotFound) {
			h.NotFound(c)
			return
		}
		h.log.Error().Err(err).Int64("doctor_id", id).Msg("get doctor failed")
		h.render(c, http.StatusOK, "doctor_edit.html", gin.H{
			"Title": "Edit Doctor",
			"Error": "Failed to load doctor data. Please try again.",
		})
		return
	}

	h.render(c, http.StatusOK, "doctor_edit.html", gin.H{
		"Title":           "Edit Doctor",
		"Doctor":          doctor,
		"Specializations": models.Specializations,
	})
}

func (h HandlerSet) DoctorEditSubmit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	sess := mustSession(c)

	input := backend.UpdateDoctorInput{
		Email:          strings.TrimSpace(c.PostForm("email")),
		Name:           strings.TrimSpace(c.PostForm("name")),
		Specialization: c.PostForm("specialization"),
		Qualification:  strings.TrimSpace(c.PostForm("qualification")),
		Phone:          strings.TrimSpace(c.PostForm("phone")),
		Address:        strings.TrimSpace(c.PostForm("address")),
	}

	formDoctor := models.Doctor{
		ID: id, Name: input.Name, Email: input.Email,
		Specialization: input.Specialization, Qualification: input.Qualification,
		Phone: input.Phone, Address: input.Address,
	}
	form := gin.H{
		"Title":           "Edit Doctor",
		"Doctor":          formDoctor,
		"Specializations": models.Specializations,
	}

	fail := func(status int, msg string) {
		form["Doctor"] = formDoctor
		form["Error"] = msg
		h.render(c, status, "doctor_edit.html", form)
	}

	if input.Name == "" {
		fail(http.StatusBadRequest, "Name is required")
		return
	}

	if expField := c.PostForm("experience"); expField != "" {
		exp, err := strconv.Atoi(expField)
		if err != nil || exp < 0 {
			fail(http.StatusBadRequest, "Experience cannot be negative")
			return
		}
		input.Experience = exp
		formDoctor.Experience = exp
	}
	if feeField := c.PostForm("consultationFee"); feeField != "" {
		fee, err := strconv.ParseFloat(feeField, 64)
		if err != nil || fee < 0 {
			fail(http.StatusBadRequest, "Consultation fee cannot be negative")
			return
		}
		input.ConsultationFee = fee
		formDoctor.ConsultationFee = fee
	}

	if _, err := h.api.UpdateDoctor(c.Request.Context(), sess.Token, id, input); err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		h.log.Error().Err(err).Int64("doctor_id", id).Msg("update doctor failed")
		fail(http.StatusOK, "Failed to update doctor. Please try again.")
		return
	}

	form["Success"] = "Doctor updated successfully!"
	form["Redirect"] = "/doctors/" + strconv.FormatInt(id, 10)
	h.render(c, http.StatusOK, "doctor_edit.html", form)
}

func (h HandlerSet) DoctorDelete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	sess := mustSession(c)

	if err := h.api.DeleteDoctor(c.Request.Context(), sess.Token, id); err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		h.log.Error().Err(err).Int64("doctor_id", id).Msg("delete doctor failed")
		c.Redirect(http.StatusSeeOther, "/doctors?flash=delete_failed")
		return
	}
	c.Redirect(http.StatusSeeOther, "/doctors?flash=deleted")
}
