package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospitalms/web/internal/config"
	"hospitalms/web/internal/models"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.BackendConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, zerolog.Nop())
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]models.Doctor{})
	})

	_, err := client.ListDoctors(context.Background(), "tok123")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", gotAuth)
}

func TestNoTokenNoHeader(t *testing.T) {
	var hasAuth bool
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		json.NewEncoder(w).Encode(LoginResponse{Token: "t", Role: "ADMIN"})
	})

	_, err := client.Login(context.Background(), Credentials{Username: "a", Password: "b"})
	require.NoError(t, err)
	assert.False(t, hasAuth)
}

func TestUnauthorizedSentinel(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.ListPatients(context.Background(), "stale")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestNotFoundSentinel(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetPatient(context.Background(), "tok", 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAPIErrorMessage(t *testing.T) {
	t.Run("message field", func(t *testing.T) {
		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"Username already exists"}`))
		})

		err := client.RegisterAdmin(context.Background(), RegisterAdminInput{Username: "dup", Password: "p"})
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.Status)
		assert.Equal(t, "Username already exists", apiErr.Message)
	})

	t.Run("error field", func(t *testing.T) {
		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error":"conflict"}`))
		})

		err := client.DeleteDoctor(context.Background(), "tok", 1)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "conflict", apiErr.Message)
	})

	t.Run("unparsable body", func(t *testing.T) {
		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`<html>oops</html>`))
		})

		err := client.DeleteDoctor(context.Background(), "tok", 1)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Empty(t, apiErr.Message)
	})
}

func TestScopedPaths(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody map[string]string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		if r.Method == http.MethodPatch {
			json.NewDecoder(r.Body).Decode(&gotBody)
		}
		w.Write([]byte(`[]`))
	})
	ctx := context.Background()

	_, err := client.AppointmentsByDoctor(ctx, "tok", 42)
	require.NoError(t, err)
	assert.Equal(t, "/appointments/doctor/42", gotPath)

	_, err = client.PrescriptionsByPatient(ctx, "tok", 13)
	require.NoError(t, err)
	assert.Equal(t, "/prescriptions/patient/13", gotPath)

	err = client.UpdateAppointmentStatus(ctx, "tok", 7, models.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, "/appointments/7/status", gotPath)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "CONFIRMED", gotBody["status"])
}

func TestLoginFlatResponse(t *testing.T) {
	doctorID := int64(42)
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"token":     "jwt-token",
			"userId":    7,
			"username":  "drwho",
			"role":      "DOCTOR",
			"email":     "dr@who.example",
			"firstName": "John",
			"lastName":  "Smith",
			"doctorId":  doctorID,
		})
	})

	resp, err := client.Login(context.Background(), Credentials{Username: "drwho", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", resp.Token)
	assert.Equal(t, int64(7), resp.UserID)
	assert.Equal(t, "DOCTOR", resp.Role)
	require.NotNil(t, resp.DoctorID)
	assert.Equal(t, doctorID, *resp.DoctorID)
	assert.Nil(t, resp.PatientID)
}
