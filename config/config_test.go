package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5250", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "database/leads.db", cfg.Store.Path)
	assert.Equal(t, 60, cfg.Store.CacheTTL)
	assert.Equal(t, "leads-cookie", cfg.Auth.CookieName)
	assert.Equal(t, 24, cfg.Auth.CookieExpiryHours)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("CACHE_TTL_SECONDS", "5")
	t.Setenv("JWT_SECRET", "override")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 5, cfg.Store.CacheTTL)
	assert.Equal(t, "override", cfg.Auth.JWTSecret)
}
