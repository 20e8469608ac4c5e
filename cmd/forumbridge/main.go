// Command forumbridge runs the Ghost ⇄ Discourse SSO bridge.
package main

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/forumbridge/forumbridge/pkg/config"
	"github.com/forumbridge/forumbridge/pkg/ghost"
	"github.com/forumbridge/forumbridge/pkg/httputil"
	"github.com/forumbridge/forumbridge/pkg/observability"
	"github.com/forumbridge/forumbridge/pkg/payload"
	"github.com/forumbridge/forumbridge/pkg/sso"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		observability.NewLogger(observability.ErrorLevel, os.Stderr).
			WithError(err).Error("invalid configuration")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	registry := prometheus.NewRegistry()
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(registry)
	}

	ghostClient, err := ghost.NewClient(ghost.ClientConfig{
		PublicURL:  cfg.Ghost.URL,
		AdminURL:   cfg.Ghost.AdminURL,
		APIKey:     cfg.Ghost.APIKey,
		HTTPClient: &http.Client{Timeout: cfg.Ghost.RequestTimeout},
		Logger:     logger,
		Metrics:    metrics,
	})
	if err != nil {
		logger.WithError(err).Error("failed to initialize ghost client")
		os.Exit(1)
	}

	signer, err := payload.NewSigner(cfg.SSO.DiscourseSecret)
	if err != nil {
		logger.WithError(err).Error("failed to derive signing key")
		os.Exit(1)
	}

	var verifier *ghost.TokenVerifier
	if cfg.SSO.Method == sso.MethodJWT {
		verifier = ghost.NewTokenVerifier(ghostClient, metrics)
	}

	controller, err := sso.NewController(sso.ControllerConfig{
		Method:         cfg.SSO.Method,
		Signer:         signer,
		Ghost:          ghostClient,
		Verifier:       verifier,
		Logger:         logger,
		Metrics:        metrics,
		NoAuthRedirect: cfg.SSO.NoAuthRedirect,
		JWTSSOPath:     cfg.SSO.JWTSSOPath,
	})
	if err != nil {
		logger.WithError(err).Error("failed to initialize sso controller")
		os.Exit(1)
	}

	router := mux.NewRouter()
	controller.RegisterRoutes(router)

	middlewares := []func(http.Handler) http.Handler{
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(logger),
		httputil.RecoveryMiddleware(logger),
	}
	if metrics != nil {
		middlewares = append(middlewares, observability.HTTPMetricsMiddleware(metrics))
	}
	handler := httputil.Chain(middlewares...)(router)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Health and metrics on a separate listener for probes.
	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(ghostClient))
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := &http.Server{
		Addr:        cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler:     healthMux,
		ReadTimeout: 5 * time.Second,
	}

	go func() {
		logger.Infof("health server listening on %s", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("health server failed")
		}
	}()

	go func() {
		logger.WithFields(map[string]interface{}{
			"addr":   server.Addr,
			"method": string(cfg.SSO.Method),
		}).Info("forumbridge listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("http server failed")
			os.Exit(1)
		}
	}()

	shutdown := observability.NewShutdownManager(logger, server, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(healthServer.Shutdown)
	if err := shutdown.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("shutdown failed")
		os.Exit(1)
	}
}
