package session

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"hospitalms/web/internal/backend"
	"hospitalms/web/internal/config"
	"hospitalms/web/internal/models"
)

// ErrNoToken means the backend answered the login call without a token; the
// prior session state is left untouched when this happens.
var ErrNoToken = errors.New("no authentication token received")

// Manager is the authorization context: it owns login, logout and
// registration, and resolves the session for incoming requests. All state
// lives in the Store; the Manager itself is stateless and safe for
// concurrent use.
type Manager struct {
	api   *backend.Client
	store Store
	cfg   config.SessionConfig
	log   zerolog.Logger
}

func NewManager(api *backend.Client, store Store, cfg config.SessionConfig, log zerolog.Logger) *Manager {
	return &Manager{
		api:   api,
		store: store,
		cfg:   cfg,
		log:   log,
	}
}

func (m *Manager) CookieName() string {
	return m.cfg.CookieName
}

func (m *Manager) CookieTTL() time.Duration {
	return m.cfg.TTL
}

func (m *Manager) CookieSecure() bool {
	return m.cfg.Secure
}

// Login authenticates against the backend and, on success, creates a fresh
// session record and returns it with the signed cookie value. Any failure
// leaves existing sessions untouched.
func (m *Manager) Login(ctx context.Context, creds backend.Credentials) (models.Session, string, error) {
	resp, err := m.api.Login(ctx, creds)
	if err != nil {
		return models.Session{}, "", err
	}
	if resp.Token == "" {
		return models.Session{}, "", ErrNoToken
	}

	role, err := models.ParseRole(resp.Role)
	if err != nil {
		return models.Session{}, "", err
	}

	now := time.Now()
	session := models.Session{
		ID:    ksuid.New().String(),
		Token: resp.Token,
		User: models.UserRecord{
			UserID:    resp.UserID,
			Username:  resp.Username,
			Role:      role,
			Email:     resp.Email,
			FirstName: resp.FirstName,
			LastName:  resp.LastName,
			DoctorID:  resp.DoctorID,
			PatientID: resp.PatientID,
		},
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(m.cfg.TTL),
	}

	if err := m.store.Save(ctx, session); err != nil {
		return models.Session{}, "", err
	}

	if err := m.store.EnforceLimit(ctx, session.User.UserID, m.cfg.MaxSessions); err != nil {
		m.log.Warn().Err(err).Int64("user_id", session.User.UserID).Msg("enforce session limit failed")
	}

	cookie, err := signCookie(m.cfg.CookieSecret, session.ID, session.User.UserID, m.cfg.TTL)
	if err != nil {
		return models.Session{}, "", err
	}
	return session, cookie, nil
}

// Logout is purely local: the session record is removed, no backend call is
// made. Store failures are logged, not returned; the caller clears the
// cookie either way.
func (m *Manager) Logout(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	if err := m.store.Delete(ctx, sessionID); err != nil {
		m.log.Error().Err(err).Str("session_id", sessionID).Msg("delete session failed")
	}
}

// Load resolves the session behind a cookie value. Any failure, whether an
// unparsable cookie or a missing record, degrades to ErrNoSession so callers
// always land in a clean anonymous state.
func (m *Manager) Load(ctx context.Context, cookieValue string) (models.Session, error) {
	if cookieValue == "" {
		return models.Session{}, ErrNoSession
	}

	claims, err := parseCookie(cookieValue, m.cfg.CookieSecret)
	if err != nil {
		m.log.Debug().Err(err).Msg("session cookie rejected")
		return models.Session{}, ErrNoSession
	}

	session, err := m.store.Get(ctx, claims.SessionID)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			m.log.Error().Err(err).Msg("session store read failed")
		}
		return models.Session{}, ErrNoSession
	}

	if session.User.UserID != claims.UserID {
		return models.Session{}, ErrNoSession
	}

	if err := m.store.Touch(ctx, session); err != nil {
		m.log.Warn().Err(err).Msg("session touch failed")
	}
	return session, nil
}

// Registration delegates to the backend and never mutates session state;
// registering does not imply logging in.

func (m *Manager) RegisterAdmin(ctx context.Context, input backend.RegisterAdminInput) error {
	return m.api.RegisterAdmin(ctx, input)
}

func (m *Manager) RegisterDoctor(ctx context.Context, input backend.RegisterDoctorInput) error {
	return m.api.RegisterDoctor(ctx, input)
}

func (m *Manager) RegisterPatient(ctx context.Context, input backend.RegisterPatientInput) error {
	return m.api.RegisterPatient(ctx, input)
}

// FailureMessage maps an error from Login or a registration call to the
// message shown inline, preferring whatever the backend said.
func FailureMessage(err error, generic string) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrNoToken) {
		return "No authentication token received"
	}
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return generic
}
