package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hospitalms/web/internal/models"
)

// Profile shows the signed-in user's own record, enriched with the doctor or
// patient row when the role carries one.
func (h HandlerSet) Profile(c *gin.Context) {
	sess := mustSession(c)

	data := gin.H{
		"Title":   "My Profile",
		"Account": sess.User,
	}

	switch sess.User.Role {
	case models.RoleDoctor:
		if doctorID, err := sess.User.RoleScopedID(); err == nil {
			doctor, err := h.api.GetDoctor(c.Request.Context(), sess.Token, doctorID)
			if err != nil {
				if h.handleUnauthorized(c, err) {
					return
				}
				h.log.Warn().Err(err).Int64("doctor_id", doctorID).Msg("profile doctor fetch failed")
			} else {
				data["Doctor"] = doctor
			}
		}
	case models.RolePatient:
		if patientID, err := sess.User.RoleScopedID(); err == nil {
			patient, err := h.api.GetPatient(c.Request.Context(), sess.Token, patientID)
			if err != nil {
				if h.handleUnauthorized(c, err) {
					return
				}
				h.log.Warn().Err(err).Int64("patient_id", patientID).Msg("profile patient fetch failed")
			} else {
				data["Patient"] = patient
			}
		}
	}

	h.render(c, http.StatusOK, "profile.html", data)
}
