package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 3000, cfg.HTTP.Port)
	assert.Equal(t, "http://localhost:8080/api", cfg.Backend.BaseURL)
	assert.Equal(t, 20*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
	assert.Equal(t, "hms_session", cfg.Session.CookieName)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 5, cfg.Session.MaxSessions)
	assert.False(t, cfg.Session.Secure)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HOSPITALWEB_HTTP_PORT", "8081")
	t.Setenv("HOSPITALWEB_ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.HTTP.Port)
	assert.Equal(t, "production", cfg.Environment)
}
