package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("applies defaults and env overrides", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("KAYIT_BACKEND_BASE_URL", "https://erp.example.com/api/")
		t.Setenv("KAYIT_SESSION_WINDOW", "15m")
		t.Setenv("KAYIT_REDIS_URL", "redis://localhost:6379/0")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.Equal(t, "https://erp.example.com/api", cfg.Backend.BaseURL)
		assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
		assert.Equal(t, 15*time.Minute, cfg.Session.Window)
		assert.Equal(t, time.Second, cfg.Session.TickInterval)
		assert.Equal(t, 10*time.Minute, cfg.Location.CacheTTL)
		assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, RateLimitConfig{Enabled: true, Requests: 60, Window: time.Minute}, cfg.RateLimit)
	})

	t.Run("requires a backend base URL", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("KAYIT_BACKEND_BASE_URL", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "backend.base_url")
	})
}

func TestValidate(t *testing.T) {
	valid := Config{
		Backend:  BackendConfig{BaseURL: "http://erp.local"},
		Session:  SessionConfig{Window: DefaultSessionWindow, TickInterval: time.Second},
		Location: LocationConfig{CacheTTL: time.Minute},
	}
	require.NoError(t, valid.Validate())

	relative := valid
	relative.Backend.BaseURL = "erp.local/api"
	assert.Error(t, relative.Validate())

	noWindow := valid
	noWindow.Session.Window = 0
	assert.Error(t, noWindow.Validate())

	noLimit := valid
	noLimit.RateLimit = RateLimitConfig{Enabled: true}
	assert.Error(t, noLimit.Validate())
}
