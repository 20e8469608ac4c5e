package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/forumbridge/forumbridge/pkg/observability"
	"github.com/forumbridge/forumbridge/pkg/sso"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Ghost upstream configuration
	Ghost GhostConfig

	// SSO protocol configuration
	SSO SSOConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// GhostConfig holds the Ghost upstream settings
type GhostConfig struct {
	// URL is the public Ghost base URL.
	URL string
	// AdminURL is the Admin API base URL; defaults to URL.
	AdminURL string
	// APIKey is the Admin API key in id:secret form. Required for the jwt
	// SSO method, which looks members up by email.
	APIKey string
	// RequestTimeout bounds individual Ghost API calls.
	RequestTimeout time.Duration
}

// SSOConfig holds the SSO protocol settings
type SSOConfig struct {
	// Method selects the authentication flow: "session" or "jwt".
	Method sso.Method
	// DiscourseSecret is the shared secret signing both payload directions.
	DiscourseSecret string
	// NoAuthRedirect overrides where visitors without a session are sent.
	NoAuthRedirect string
	// JWTSSOPath is the path of the browser client page on the Ghost origin.
	JWTSSOPath string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("FORUMBRIDGE_HOST", "0.0.0.0"),
			Port:            getEnv("FORUMBRIDGE_PORT", "3000"),
			ReadTimeout:     getEnvDuration("FORUMBRIDGE_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("FORUMBRIDGE_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("FORUMBRIDGE_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("FORUMBRIDGE_SHUTDOWN_TIMEOUT", 30*time.Second),
			HealthPort:      getEnv("FORUMBRIDGE_HEALTH_PORT", "9090"),
		},
		Ghost: GhostConfig{
			URL:            getEnv("FORUMBRIDGE_GHOST_URL", ""),
			AdminURL:       getEnv("FORUMBRIDGE_GHOST_ADMIN_URL", ""),
			APIKey:         getEnv("FORUMBRIDGE_GHOST_API_KEY", ""),
			RequestTimeout: getEnvDuration("FORUMBRIDGE_GHOST_REQUEST_TIMEOUT", 10*time.Second),
		},
		SSO: SSOConfig{
			Method:          sso.Method(getEnv("FORUMBRIDGE_SSO_METHOD", string(sso.MethodSession))),
			DiscourseSecret: getEnv("FORUMBRIDGE_DISCOURSE_SECRET", ""),
			NoAuthRedirect:  getEnv("FORUMBRIDGE_NO_AUTH_REDIRECT", ""),
			JWTSSOPath:      getEnv("FORUMBRIDGE_JWT_SSO_PATH", ""),
		},
		Observability: ObservabilityConfig{
			LogLevel:       observability.ParseLogLevel(getEnv("FORUMBRIDGE_LOG_LEVEL", "info")),
			MetricsEnabled: getEnvBool("FORUMBRIDGE_METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.Ghost.URL == "" {
		return fmt.Errorf("ghost URL is required")
	}
	if c.SSO.DiscourseSecret == "" {
		return fmt.Errorf("discourse secret is required")
	}

	switch c.SSO.Method {
	case sso.MethodSession:
	case sso.MethodJWT:
		if c.SSO.JWTSSOPath == "" {
			return fmt.Errorf("jwt sso path is required for the jwt method")
		}
		if c.Ghost.APIKey == "" {
			return fmt.Errorf("ghost admin API key is required for the jwt method")
		}
	default:
		return fmt.Errorf("invalid sso method: %s (must be session or jwt)", c.SSO.Method)
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
