// Package observability provides structured logging, Prometheus metrics, health
// checks and graceful shutdown.
//
// # Overview
//
// This package centralizes observability infrastructure including JSON logging,
// metrics collection, upstream health checks, and shutdown sequencing.
//
// # Structured Logging
//
// Create logger:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.Info("Server started")
//
// Context-aware logging:
//
//	observability.FromContext(ctx).WithError(err).Error("Request failed")
//
// # Prometheus Metrics
//
// Initialize metrics:
//
//	metrics := observability.NewMetrics(registry)
//	metrics.ObserveSSO("session", observability.OutcomeSuccess)
//	metrics.ObserveGhost("member_self", 200, elapsed)
//
// All Observe helpers are nil-receiver safe, so callers don't have to guard
// for a deployment with metrics disabled.
//
// # Health Checks
//
// Configure health checker:
//
//	checker := observability.NewHealthChecker(ghostClient)
//	observability.RegisterHealthRoutes(mux, checker)
//
// # Graceful Shutdown
//
//	shutdown := observability.NewShutdownManager(logger, server, 30*time.Second)
//	shutdown.RegisterShutdownFunc(healthServer.Shutdown)
//	err := shutdown.WaitForShutdown()
//
// # Related Packages
//
//   - pkg/config: Observability configuration
//   - pkg/httputil: Request logging middleware
package observability
