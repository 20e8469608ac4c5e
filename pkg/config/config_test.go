package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forumbridge/forumbridge/pkg/observability"
	"github.com/forumbridge/forumbridge/pkg/sso"
)

// setRequiredEnv sets the minimum environment for a valid session config.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FORUMBRIDGE_GHOST_URL", "https://blog.example.com")
	t.Setenv("FORUMBRIDGE_DISCOURSE_SECRET", "shared-secret")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.HealthPort)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, "https://blog.example.com", cfg.Ghost.URL)
	assert.Equal(t, 10*time.Second, cfg.Ghost.RequestTimeout)

	assert.Equal(t, sso.MethodSession, cfg.SSO.Method)
	assert.Equal(t, "shared-secret", cfg.SSO.DiscourseSecret)

	assert.Equal(t, observability.InfoLevel, cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.MetricsEnabled)
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FORUMBRIDGE_PORT", "8080")
	t.Setenv("FORUMBRIDGE_GHOST_ADMIN_URL", "https://admin.example.com")
	t.Setenv("FORUMBRIDGE_GHOST_REQUEST_TIMEOUT", "3s")
	t.Setenv("FORUMBRIDGE_NO_AUTH_REDIRECT", "https://blog.example.com/signin")
	t.Setenv("FORUMBRIDGE_LOG_LEVEL", "debug")
	t.Setenv("FORUMBRIDGE_METRICS_ENABLED", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "https://admin.example.com", cfg.Ghost.AdminURL)
	assert.Equal(t, 3*time.Second, cfg.Ghost.RequestTimeout)
	assert.Equal(t, "https://blog.example.com/signin", cfg.SSO.NoAuthRedirect)
	assert.Equal(t, observability.DebugLevel, cfg.Observability.LogLevel)
	assert.False(t, cfg.Observability.MetricsEnabled)
}

func TestLoadConfigJWTMethod(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FORUMBRIDGE_SSO_METHOD", "jwt")
	t.Setenv("FORUMBRIDGE_JWT_SSO_PATH", "/sso-client")
	t.Setenv("FORUMBRIDGE_GHOST_API_KEY", "id:deadbeef")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, sso.MethodJWT, cfg.SSO.Method)
	assert.Equal(t, "/sso-client", cfg.SSO.JWTSSOPath)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: "3000", HealthPort: "9090"},
			Ghost:  GhostConfig{URL: "https://blog.example.com"},
			SSO: SSOConfig{
				Method:          sso.MethodSession,
				DiscourseSecret: "secret",
			},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing port", func(c *Config) { c.Server.Port = "" }},
		{"missing health port", func(c *Config) { c.Server.HealthPort = "" }},
		{"port collision", func(c *Config) { c.Server.HealthPort = c.Server.Port }},
		{"missing ghost url", func(c *Config) { c.Ghost.URL = "" }},
		{"missing discourse secret", func(c *Config) { c.SSO.DiscourseSecret = "" }},
		{"unknown sso method", func(c *Config) { c.SSO.Method = "basic" }},
		{"jwt without sso path", func(c *Config) {
			c.SSO.Method = sso.MethodJWT
			c.Ghost.APIKey = "id:deadbeef"
		}},
		{"jwt without admin key", func(c *Config) {
			c.SSO.Method = sso.MethodJWT
			c.SSO.JWTSSOPath = "/sso-client"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigInvalidFailsFast(t *testing.T) {
	t.Setenv("FORUMBRIDGE_GHOST_URL", "https://blog.example.com")
	// No discourse secret set.
	_, err := LoadConfig()
	assert.Error(t, err)
}
