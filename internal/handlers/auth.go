package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"hospitalms/web/internal/backend"
	"hospitalms/web/internal/middleware"
	"hospitalms/web/internal/session"
)

func (h HandlerSet) LoginForm(c *gin.Context) {
	if _, ok := middleware.CurrentSession(c); ok {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}
	h.render(c, http.StatusOK, "login.html", gin.H{"Title": "Login"})
}

func (h HandlerSet) LoginSubmit(c *gin.Context) {
	if _, ok := middleware.CurrentSession(c); ok {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}

	creds := backend.Credentials{
		Username: strings.TrimSpace(c.PostForm("username")),
		Password: c.PostForm("password"),
	}
	if creds.Username == "" || creds.Password == "" {
		h.render(c, http.StatusBadRequest, "login.html", gin.H{
			"Title":    "Login",
			"Error":    "Username and password are required",
			"Username": creds.Username,
		})
		return
	}

	_, cookie, err := h.sessions.Login(c.Request.Context(), creds)
	if err != nil {
		h.log.Warn().Err(err).Str("username", creds.Username).Msg("login failed")
		h.render(c, http.StatusUnauthorized, "login.html", gin.H{
			"Title":    "Login",
			"Error":    session.FailureMessage(err, "Login failed"),
			"Username": creds.Username,
		})
		return
	}

	h.setSessionCookie(c, cookie)
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h HandlerSet) Logout(c *gin.Context) {
	if sess, ok := middleware.CurrentSession(c); ok {
		h.sessions.Logout(c.Request.Context(), sess.ID)
	}
	h.clearSessionCookie(c)
	c.Redirect(http.StatusSeeOther, "/login")
}

// RegisterForm is the public patient self-registration page. Admin-driven
// patient registration reuses the same form under /patients/register.
func (h HandlerSet) RegisterForm(c *gin.Context) {
	if _, ok := middleware.CurrentSession(c); ok {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}
	h.render(c, http.StatusOK, "register.html", gin.H{
		"Title":  "Patient Registration",
		"Action": "/register",
	})
}

func (h HandlerSet) RegisterSubmit(c *gin.Context) {
	if _, ok := middleware.CurrentSession(c); ok {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}
	h.submitPatientRegistration(c, "/register", "Patient registered successfully! You can now login.", "/login")
}

func (h HandlerSet) submitPatientRegistration(c *gin.Context, action, successMsg, redirect string) {
	input := backend.RegisterPatientInput{
		Username:         strings.TrimSpace(c.PostForm("username")),
		Password:         c.PostForm("password"),
		Email:            strings.TrimSpace(c.PostForm("email")),
		Name:             strings.TrimSpace(c.PostForm("name")),
		DateOfBirth:      c.PostForm("dateOfBirth"),
		Gender:           c.PostForm("gender"),
		Phone:            strings.TrimSpace(c.PostForm("phone")),
		Address:          strings.TrimSpace(c.PostForm("address")),
		BloodGroup:       c.PostForm("bloodGroup"),
		EmergencyContact: strings.TrimSpace(c.PostForm("emergencyContact")),
		MedicalHistory:   strings.TrimSpace(c.PostForm("medicalHistory")),
	}

	form := gin.H{
		"Title":  "Patient Registration",
		"Action": action,
		"Form":   input,
	}

	if input.Username == "" || input.Password == "" || input.Name == "" {
		form["Error"] = "Username, password and name are required"
		h.render(c, http.StatusBadRequest, "register.html", form)
		return
	}

	if ageField := c.PostForm("age"); ageField != "" {
		age, err := strconv.Atoi(ageField)
		if err != nil || age < 0 || age > 150 {
			form["Error"] = "Please enter a valid age"
			h.render(c, http.StatusBadRequest, "register.html", form)
			return
		}
		input.Age = age
		form["Form"] = input
	}

	if err := h.sessions.RegisterPatient(c.Request.Context(), input); err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		h.log.Warn().Err(err).Msg("patient registration failed")
		form["Error"] = session.FailureMessage(err, "Registration failed")
		h.render(c, http.StatusBadRequest, "register.html", form)
		return
	}

	h.render(c, http.StatusOK, "register.html", gin.H{
		"Title":    "Patient Registration",
		"Action":   action,
		"Success":  successMsg,
		"Redirect": redirect,
	})
}

func (h HandlerSet) AdminRegisterForm(c *gin.Context) {
	h.render(c, http.StatusOK, "admin_register.html", gin.H{"Title": "Register Administrator"})
}

func (h HandlerSet) AdminRegisterSubmit(c *gin.Context) {
	input := backend.RegisterAdminInput{
		Username: strings.TrimSpace(c.PostForm("username")),
		Password: c.PostForm("password"),
		Email:    strings.TrimSpace(c.PostForm("email")),
		Name:     strings.TrimSpace(c.PostForm("name")),
	}

	form := gin.H{"Title": "Register Administrator", "Form": input}

	if input.Username == "" || input.Password == "" {
		form["Error"] = "Username and password are required"
		h.render(c, http.StatusBadRequest, "admin_register.html", form)
		return
	}

	if err := h.sessions.RegisterAdmin(c.Request.Context(), input); err != nil {
		if h.handleUnauthorized(c, err) {
			return
		}
		h.log.Warn().Err(err).Msg("admin registration failed")
		form["Error"] = session.FailureMessage(err, "Registration failed")
		h.render(c, http.StatusBadRequest, "admin_register.html", form)
		return
	}

	h.render(c, http.StatusOK, "admin_register.html", gin.H{
		"Title":   "Register Administrator",
		"Success": "Administrator registered successfully!",
	})
}
