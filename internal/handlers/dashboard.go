package handlers

import (
	"errors"
	"net/http"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"

	"hospitalms/web/internal/backend"
	"hospitalms/web/internal/models"
)

type dashboardStats struct {
	Doctors       int
	Patients      int
	Appointments  int
	Prescriptions int
}

// Dashboard issues the per-role stat fetches in parallel with all-settled
// semantics: a failed fetch is logged and its stat stays at zero, the rest
// of the page still renders.
func (h HandlerSet) Dashboard(c *gin.Context) {
	sess := mustSession(c)
	ctx := c.Request.Context()
	token := sess.Token

	var stats dashboardStats
	var scopeErr string
	var unauthorized bool
	var mu sync.Mutex
	var wg sync.WaitGroup

	run := func(name string, fetch func() (int, error)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := fetch()
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if errors.Is(err, backend.ErrUnauthorized) {
					unauthorized = true
					return
				}
				h.log.Error().Err(err).Str("stat", name).Msg("dashboard fetch failed")
				return
			}
			switch name {
			case "doctors":
				stats.Doctors = n
			case "patients":
				stats.Patients = n
			case "appointments":
				stats.Appointments = n
			case "prescriptions":
				stats.Prescriptions = n
			}
		}()
	}

	switch sess.User.Role {
	case models.RoleAdmin:
		run("doctors", func() (int, error) { return count(h.api.ListDoctors(ctx, token)) })
		run("patients", func() (int, error) { return count(h.api.ListPatients(ctx, token)) })
		run("appointments", func() (int, error) { return count(h.api.ListAppointments(ctx, token)) })
		run("prescriptions", func() (int, error) { return count(h.api.ListPrescriptions(ctx, token)) })
	case models.RoleDoctor:
		doctorID, err := sess.User.RoleScopedID()
		if err != nil {
			scopeErr = "Doctor ID not found. Please log out and log back in."
			break
		}
		run("patients", func() (int, error) { return count(h.api.ListPatients(ctx, token)) })
		run("appointments", func() (int, error) { return count(h.api.AppointmentsByDoctor(ctx, token, doctorID)) })
		run("prescriptions", func() (int, error) { return count(h.api.PrescriptionsByDoctor(ctx, token, doctorID)) })
	case models.RolePatient:
		patientID, err := sess.User.RoleScopedID()
		if err != nil {
			scopeErr = "Patient ID not found. Please log out and log back in."
			break
		}
		run("appointments", func() (int, error) { return count(h.api.AppointmentsByPatient(ctx, token, patientID)) })
		run("prescriptions", func() (int, error) { return count(h.api.PrescriptionsByPatient(ctx, token, patientID)) })
	}

	wg.Wait()

	if unauthorized {
		if h.handleUnauthorized(c, backend.ErrUnauthorized) {
			return
		}
	}

	data := gin.H{
		"Title": "Dashboard",
		"Stats": stats,
	}
	if scopeErr != "" {
		data["Error"] = scopeErr
	}

	if sess.HasRole(models.RoleAdmin) && scopeErr == "" {
		if patients, err := h.api.ListPatients(ctx, token); err == nil {
			data["RecentPatients"] = recentPatients(patients, 5)
		} else if h.handleUnauthorized(c, err) {
			return
		} else {
			h.log.Error().Err(err).Msg("recent patients fetch failed")
		}
		if doctors, err := h.api.ListDoctors(ctx, token); err == nil {
			data["Doctors"] = doctors
		} else if h.handleUnauthorized(c, err) {
			return
		} else {
			h.log.Error().Err(err).Msg("doctor roster fetch failed")
		}
	}

	h.render(c, http.StatusOK, "dashboard.html", data)
}

func count[T any](items []T, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// recentPatients returns the n highest-id patients, newest first.
func recentPatients(patients []models.Patient, n int) []models.Patient {
	sorted := make([]models.Patient, len(patients))
	copy(sorted, patients)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID > sorted[j].ID })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
