package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("HOST", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("FRONTEND_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SERVICE_JWT_SECRET", "")
	t.Setenv("LOG_LEVEL", "")

	cfg := Load()

	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.AllowedHost)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, cfg.JWTSecret, cfg.ServiceJWTSecret)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadProductionHost(t *testing.T) {
	t.Setenv("ENV", "Production")
	t.Setenv("HOST", "https://api.agora.social:443/v1")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://agora.social")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "api.agora.social", cfg.AllowedHost)
	assert.Equal(t, []string{
		"https://app.example.com",
		"https://agora.social",
		"https://www.agora.social",
	}, cfg.AllowedOrigins)
}

func TestServiceSecretOverride(t *testing.T) {
	t.Setenv("JWT_SECRET", "user-secret")
	t.Setenv("SERVICE_JWT_SECRET", "svc-secret")

	cfg := Load()

	assert.Equal(t, "user-secret", cfg.JWTSecret)
	assert.Equal(t, "svc-secret", cfg.ServiceJWTSecret)
}

func TestHostname(t *testing.T) {
	cases := map[string]string{
		"http://localhost:8080":        "localhost",
		"https://api.agora.social/x/y": "api.agora.social",
		" api.agora.social ":           "api.agora.social",
		"":                             "",
	}
	for in, want := range cases {
		assert.Equal(t, want, hostname(in), in)
	}
}
