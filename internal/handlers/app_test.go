package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospitalms/web/internal/backend"
	"hospitalms/web/internal/config"
	"hospitalms/web/internal/middleware"
	"hospitalms/web/internal/models"
	"hospitalms/web/internal/session"
)

// backendStub fakes the hospital REST API and records every request so
// tests can assert which calls a page did, and did not, make.
type backendStub struct {
	mux *http.ServeMux

	mu       sync.Mutex
	requests []string
}

func newBackendStub() *backendStub {
	return &backendStub{mux: http.NewServeMux()}
}

func (b *backendStub) handle(pattern string, fn http.HandlerFunc) {
	b.mux.HandleFunc(pattern, fn)
}

func (b *backendStub) handleJSON(pattern string, payload any) {
	b.handle(pattern, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(payload)
	})
}

func (b *backendStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.requests = append(b.requests, r.Method+" "+r.URL.Path)
	b.mu.Unlock()
	b.mux.ServeHTTP(w, r)
}

func (b *backendStub) calls(prefix string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, req := range b.requests {
		if strings.HasPrefix(req, prefix) {
			n++
		}
	}
	return n
}

func newTestApp(t *testing.T, stub *backendStub) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	cfg := &config.AppConfig{
		Environment: "test",
		Backend:     config.BackendConfig{BaseURL: srv.URL, Timeout: 5 * time.Second},
		Session: config.SessionConfig{
			CookieName:   "hms_session",
			CookieSecret: "test-secret",
			TTL:          time.Hour,
			MaxSessions:  3,
		},
	}

	api := backend.New(cfg.Backend, zerolog.Nop())
	store := session.NewRedisStore(redisClient)
	sessions := session.NewManager(api, store, cfg.Session, zerolog.Nop())
	handlerSet := NewHandlerSet(zerolog.Nop(), cfg, api, sessions, redisClient)

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(zerolog.Nop()),
		middleware.LoadSession(sessions),
	)
	engine.SetHTMLTemplate(Templates())
	handlerSet.Register(engine)
	return engine
}

func stubLogin(stub *backendStub, user map[string]any) {
	stub.handle("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(user)
	})
}

func adminUser() map[string]any {
	return map[string]any{"token": "tok", "userId": 1, "username": "admin", "role": "ADMIN"}
}

func doLogin(t *testing.T, engine *gin.Engine) *http.Cookie {
	t.Helper()
	form := url.Values{"username": {"u"}, "password": {"p"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
	for _, c := range rec.Result().Cookies() {
		if c.Name == "hms_session" && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func get(engine *gin.Engine, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func postForm(engine *gin.Engine, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestGuestRedirectedToLogin(t *testing.T) {
	engine := newTestApp(t, newBackendStub())

	for _, path := range []string{"/dashboard", "/patients", "/appointments", "/prescriptions", "/profile"} {
		rec := get(engine, path, nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), path)
	}
}

func TestPublicPages(t *testing.T) {
	engine := newTestApp(t, newBackendStub())

	home := get(engine, "/", nil)
	assert.Equal(t, http.StatusOK, home.Code)

	login := get(engine, "/login", nil)
	assert.Equal(t, http.StatusOK, login.Code)
	assert.Contains(t, login.Body.String(), "Login")

	register := get(engine, "/register", nil)
	assert.Equal(t, http.StatusOK, register.Code)
}

func TestLoginFlow(t *testing.T) {
	stub := newBackendStub()
	stubLogin(stub, adminUser())
	stub.handleJSON("GET /doctors", []models.Doctor{})
	stub.handleJSON("GET /patients", []models.Patient{})
	stub.handleJSON("GET /appointments", []models.Appointment{})
	stub.handleJSON("GET /prescriptions", []models.Prescription{})
	engine := newTestApp(t, stub)

	cookie := doLogin(t, engine)

	dash := get(engine, "/dashboard", cookie)
	assert.Equal(t, http.StatusOK, dash.Code)
	assert.Contains(t, dash.Body.String(), "Dashboard")
}

func TestLoginFailureShowsBackendMessage(t *testing.T) {
	stub := newBackendStub()
	stub.handle("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Invalid username or password"}`))
	})
	engine := newTestApp(t, stub)

	rec := postForm(engine, "/login", url.Values{"username": {"u"}, "password": {"bad"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username or password")
}

func TestLoginMissingFields(t *testing.T) {
	engine := newTestApp(t, newBackendStub())

	rec := postForm(engine, "/login", url.Values{"username": {"u"}}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Username and password are required")
}

func TestRoleGuardRedirectsToUnauthorized(t *testing.T) {
	stub := newBackendStub()
	stubLogin(stub, map[string]any{"token": "tok", "userId": 3, "username": "pat", "role": "PATIENT", "patientId": 13})
	engine := newTestApp(t, stub)

	cookie := doLogin(t, engine)

	for _, path := range []string{"/patients/register", "/doctors/register", "/admin/register", "/prescriptions/create"} {
		rec := get(engine, path, cookie)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/unauthorized", rec.Header().Get("Location"), path)
	}
}

func TestDoctorWithoutScopedIDSeesTerminalError(t *testing.T) {
	stub := newBackendStub()
	stubLogin(stub, map[string]any{"token": "tok", "userId": 2, "username": "doc", "role": "DOCTOR"})
	engine := newTestApp(t, stub)

	cookie := doLogin(t, engine)

	rec := get(engine, "/appointments", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Doctor ID not found. Please log out and log back in.")
	assert.Zero(t, stub.calls("GET /appointments"))

	rx := get(engine, "/prescriptions", cookie)
	assert.Contains(t, rx.Body.String(), "Doctor ID not found. Please log out and log back in.")
	assert.Zero(t, stub.calls("GET /prescriptions"))
}

func TestAppointmentCreateRejectsPastDate(t *testing.T) {
	stub := newBackendStub()
	stubLogin(stub, adminUser())
	stub.handleJSON("GET /doctors", []models.Doctor{{ID: 1, Name: "Dr. Smith"}})
	stub.handleJSON("GET /patients", []models.Patient{{ID: 2, Name: "Alice"}})
	engine := newTestApp(t, stub)

	cookie := doLogin(t, engine)

	form := url.Values{
		"patientId":       {"2"},
		"doctorId":        {"1"},
		"appointmentTime": {time.Now().Add(-24 * time.Hour).Format(appointmentTimeLayout)},
		"reason":          {"Checkup"},
	}
	rec := postForm(engine, "/appointments/create", form, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Appointment date and time must be in the future")
	assert.Zero(t, stub.calls("POST /appointments"))
}

func TestAppointmentCreateRejectsShortLead(t *testing.T) {
	stub := newBackendStub()
	stubLogin(stub, adminUser())
	stub.handleJSON("GET /doctors", []models.Doctor{{ID: 1, Name: "Dr. Smith"}})
	stub.handleJSON("GET /patients", []models.Patient{{ID: 2, Name: "Alice"}})
	engine := newTestApp(t, stub)

	cookie := doLogin(t, engine)

	form := url.Values{
		"patientId":       {"2"},
		"doctorId":        {"1"},
		"appointmentTime": {time.Now().Add(15 * time.Minute).Format(appointmentTimeLayout)},
	}
	rec := postForm(engine, "/appointments/create", form, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "at least one hour in advance")
	assert.Zero(t, stub.calls("POST /appointments"))
}

func TestAppointmentDeletePatchesFetchedList(t *testing.T) {
	stub := newBackendStub()
	stubLogin(stub, adminUser())
	stub.handleJSON("GET /appointments", []models.Appointment{
		{ID: 1, PatientName: "Alice Brown", DoctorName: "Dr. Smith", Status: models.StatusScheduled},
		{ID: 2, PatientName: "Bob Green", DoctorName: "Dr. Jones", Status: models.StatusConfirmed},
	})
	stub.handle("DELETE /appointments/1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	engine := newTestApp(t, stub)

	cookie := doLogin(t, engine)

	before := stub.calls("GET /appointments")
	rec := postForm(engine, "/appointments/1/delete", url.Values{}, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Appointment deleted successfully!")
	assert.NotContains(t, body, "Alice Brown")
	assert.Contains(t, body, "Bob Green")

	// the collection was fetched once, then patched locally
	assert.Equal(t, before+1, stub.calls("GET /appointments"))
}

func TestAppointmentStatusUpdateFromList(t *testing.T) {
	stub := newBackendStub()
	stubLogin(stub, adminUser())
	stub.handleJSON("GET /appointments", []models.Appointment{
		{ID: 1, PatientName: "Alice Brown", DoctorName: "Dr. Smith", Status: models.StatusScheduled},
	})
	stub.handle("PATCH /appointments/1/status", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	engine := newTestApp(t, stub)

	cookie := doLogin(t, engine)

	rec := postForm(engine, "/appointments/1/status", url.Values{"status": {"CONFIRMED"}}, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Appointment status updated successfully!")
	assert.Contains(t, rec.Body.String(), "CONFIRMED")
	assert.Equal(t, 1, stub.calls("PATCH /appointments/1/status"))
}

func TestBackend401ForcesLogout(t *testing.T) {
	stub := newBackendStub()
	stubLogin(stub, adminUser())
	stub.handle("GET /patients", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	engine := newTestApp(t, stub)

	cookie := doLogin(t, engine)

	rec := get(engine, "/patients", cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// the session is gone; the old cookie no longer authenticates
	again := get(engine, "/dashboard", cookie)
	assert.Equal(t, http.StatusSeeOther, again.Code)
	assert.Equal(t, "/login", again.Header().Get("Location"))
}

func TestDoctorRegistrationFlow(t *testing.T) {
	stub := newBackendStub()
	stubLogin(stub, adminUser())
	stub.handle("POST /auth/register/doctor", func(w http.ResponseWriter, r *http.Request) {
		var input backend.RegisterDoctorInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		assert.Equal(t, "drsmith", input.Username)
		assert.Equal(t, "CARDIOLOGY", input.Specialization)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	})
	engine := newTestApp(t, stub)

	cookie := doLogin(t, engine)

	form := url.Values{
		"username":       {"drsmith"},
		"password":       {"pw"},
		"name":           {"Dr. Smith"},
		"specialization": {"CARDIOLOGY"},
		"experience":     {"10"},
	}
	rec := postForm(engine, "/doctors/register", form, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Doctor registered successfully!")
	assert.Equal(t, 1, stub.calls("POST /auth/register/doctor"))
}

func TestDoctorRegistrationValidation(t *testing.T) {
	stub := newBackendStub()
	stubLogin(stub, adminUser())
	engine := newTestApp(t, stub)

	cookie := doLogin(t, engine)

	form := url.Values{
		"username":       {"drsmith"},
		"password":       {"pw"},
		"name":           {"Dr. Smith"},
		"specialization": {"CARDIOLOGY"},
		"experience":     {"-3"},
	}
	rec := postForm(engine, "/doctors/register", form, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Experience cannot be negative")
	assert.Zero(t, stub.calls("POST /auth/register/doctor"))
}

func TestPatientSelfRegistration(t *testing.T) {
	stub := newBackendStub()
	stub.handle("POST /auth/register/patient", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	})
	engine := newTestApp(t, stub)

	form := url.Values{
		"username": {"alice"},
		"password": {"pw"},
		"name":     {"Alice Brown"},
		"age":      {"30"},
	}
	rec := postForm(engine, "/register", form, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Patient registered successfully! You can now login.")
}

func TestPatientRegistrationInvalidAge(t *testing.T) {
	stub := newBackendStub()
	engine := newTestApp(t, stub)

	form := url.Values{
		"username": {"alice"},
		"password": {"pw"},
		"name":     {"Alice Brown"},
		"age":      {"200"},
	}
	rec := postForm(engine, "/register", form, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please enter a valid age")
	assert.Zero(t, stub.calls("POST /auth/register/patient"))
}

func TestNotFoundPage(t *testing.T) {
	engine := newTestApp(t, newBackendStub())

	rec := get(engine, "/no-such-page", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "404")
}

func TestHealthEndpoint(t *testing.T) {
	engine := newTestApp(t, newBackendStub())

	rec := get(engine, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, "ok", payload["cache"])
}
