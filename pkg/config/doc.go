// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings.
//
// # Configuration Structure
//
// Server settings:
//
//	FORUMBRIDGE_HOST="0.0.0.0"
//	FORUMBRIDGE_PORT="3000"
//	FORUMBRIDGE_HEALTH_PORT="9090"
//	FORUMBRIDGE_READ_TIMEOUT="15s"
//	FORUMBRIDGE_WRITE_TIMEOUT="15s"
//	FORUMBRIDGE_IDLE_TIMEOUT="60s"
//	FORUMBRIDGE_SHUTDOWN_TIMEOUT="30s"
//
// Ghost upstream settings:
//
//	FORUMBRIDGE_GHOST_URL="https://blog.example.com"
//	FORUMBRIDGE_GHOST_ADMIN_URL=""              # defaults to FORUMBRIDGE_GHOST_URL
//	FORUMBRIDGE_GHOST_API_KEY="<id>:<hex-secret>"
//	FORUMBRIDGE_GHOST_REQUEST_TIMEOUT="10s"
//
// SSO settings:
//
//	FORUMBRIDGE_SSO_METHOD="session"  # session, jwt
//	FORUMBRIDGE_DISCOURSE_SECRET="..."
//	FORUMBRIDGE_NO_AUTH_REDIRECT=""   # defaults to the Ghost portal account page
//	FORUMBRIDGE_JWT_SSO_PATH="/sso"   # required for the jwt method
//
// Observability settings:
//
//	FORUMBRIDGE_LOG_LEVEL="info"  # debug, info, warn, error
//	FORUMBRIDGE_METRICS_ENABLED="true"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//	fmt.Printf("SSO method: %s\n", cfg.SSO.Method)
//
// # Related Packages
//
//   - pkg/ghost: Uses the Ghost upstream configuration
//   - pkg/sso: Uses the SSO protocol configuration
//   - pkg/observability: Uses observability configuration
package config
