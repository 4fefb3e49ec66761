package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"hospitalms/web/internal/backend"
	"hospitalms/web/internal/config"
	"hospitalms/web/internal/middleware"
	"hospitalms/web/internal/models"
	"hospitalms/web/internal/session"
)

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	api      *backend.Client
	sessions *session.Manager
	cache    *redis.Client
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, api *backend.Client, sessions *session.Manager, cache *redis.Client) HandlerSet {
	return HandlerSet{
		log:      log,
		cfg:      cfg,
		api:      api,
		sessions: sessions,
		cache:    cache,
	}
}

func (h HandlerSet) Register(engine *gin.Engine) {
	engine.GET("/healthz", h.Health)

	engine.GET("/", h.Home)
	engine.GET("/login", h.LoginForm)
	engine.POST("/login", h.LoginSubmit)
	engine.GET("/register", h.RegisterForm)
	engine.POST("/register", h.RegisterSubmit)
	engine.POST("/logout", h.Logout)
	engine.GET("/unauthorized", h.Unauthorized)

	authed := engine.Group("", middleware.RequireAuth())
	authed.GET("/dashboard", h.Dashboard)
	authed.GET("/profile", h.Profile)

	patients := authed.Group("/patients")
	patients.GET("", h.PatientsList)
	patients.GET("/:id", h.PatientDetail)
	patientsAdmin := patients.Group("", middleware.RequireRoles(models.RoleAdmin))
	patientsAdmin.GET("/register", h.PatientRegisterForm)
	patientsAdmin.POST("/register", h.PatientRegisterSubmit)
	patientsAdmin.GET("/:id/edit", h.PatientEditForm)
	patientsAdmin.POST("/:id/edit", h.PatientEditSubmit)
	patientsAdmin.POST("/:id/delete", h.PatientDelete)

	doctors := authed.Group("/doctors")
	doctors.GET("", h.DoctorsList)
	doctors.GET("/:id", h.DoctorDetail)
	doctorsAdmin := doctors.Group("", middleware.RequireRoles(models.RoleAdmin))
	doctorsAdmin.GET("/register", h.DoctorRegisterForm)
	doctorsAdmin.POST("/register", h.DoctorRegisterSubmit)
	doctorsAdmin.GET("/:id/edit", h.DoctorEditForm)
	doctorsAdmin.POST("/:id/edit", h.DoctorEditSubmit)
	doctorsAdmin.POST("/:id/delete", h.DoctorDelete)

	appointments := authed.Group("/appointments")
	appointments.GET("", h.AppointmentsList)
	appointments.GET("/create", h.AppointmentCreateForm)
	appointments.POST("/create", h.AppointmentCreateSubmit)
	appointments.GET("/:id", h.AppointmentDetail)
	appointments.GET("/:id/edit", h.AppointmentEditForm)
	appointments.POST("/:id/edit", h.AppointmentEditSubmit)
	appointments.POST("/:id/status", h.AppointmentStatusUpdate)
	appointments.POST("/:id/delete", h.AppointmentDelete)

	prescriptions := authed.Group("/prescriptions")
	prescriptions.GET("", h.PrescriptionsList)
	prescriptions.GET("/:id", h.PrescriptionDetail)
	prescriptionsStaff := prescriptions.Group("", middleware.RequireRoles(models.RoleAdmin, models.RoleDoctor))
	prescriptionsStaff.GET("/create", h.PrescriptionCreateForm)
	prescriptionsStaff.POST("/create", h.PrescriptionCreateSubmit)

	adminArea := authed.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	adminArea.GET("/register", h.AdminRegisterForm)
	adminArea.POST("/register", h.AdminRegisterSubmit)

	engine.NoRoute(h.NotFound)
}

// render injects the session into every view so the navbar can gate its
// entries the same way the route guards gate the routes.
func (h HandlerSet) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if sess, ok := middleware.CurrentSession(c); ok {
		data["User"] = sess.User
		data["Authenticated"] = true
		data["IsAdmin"] = sess.HasRole(models.RoleAdmin)
		data["IsDoctor"] = sess.HasRole(models.RoleDoctor)
		data["IsPatient"] = sess.HasRole(models.RolePatient)
	}
	c.HTML(status, name, data)
}

// handleUnauthorized reacts to a 401 from any backend call: the session is
// destroyed and the browser is sent to the login view, no matter which page
// triggered the call. Returns true when the error was handled.
func (h HandlerSet) handleUnauthorized(c *gin.Context, err error) bool {
	if !errors.Is(err, backend.ErrUnauthorized) {
		return false
	}
	if sess, ok := middleware.CurrentSession(c); ok {
		h.sessions.Logout(c.Request.Context(), sess.ID)
	}
	h.clearSessionCookie(c)
	c.Redirect(http.StatusSeeOther, "/login")
	c.Abort()
	return true
}

func (h HandlerSet) clearSessionCookie(c *gin.Context) {
	c.SetCookie(h.sessions.CookieName(), "", -1, "/", "", h.sessions.CookieSecure(), true)
}

func (h HandlerSet) setSessionCookie(c *gin.Context, value string) {
	c.SetCookie(h.sessions.CookieName(), value, int(h.sessions.CookieTTL().Seconds()), "/", "", h.sessions.CookieSecure(), true)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func mustSession(c *gin.Context) models.Session {
	sess, _ := middleware.CurrentSession(c)
	return sess
}
