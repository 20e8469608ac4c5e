package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// SSO flow metrics
	SSORequestsTotal *prometheus.CounterVec

	// Ghost upstream metrics
	GhostRequestsTotal   *prometheus.CounterVec
	GhostRequestDuration *prometheus.HistogramVec

	// JWKS metrics
	JWKSFetchesTotal *prometheus.CounterVec
}

// SSO flow outcome labels recorded by the flow controllers.
const (
	OutcomeSuccess        = "success"
	OutcomeHandoff        = "handoff"
	OutcomeBadRequest     = "bad_request"
	OutcomeBadSignature   = "bad_signature"
	OutcomeNotLoggedIn    = "not_logged_in"
	OutcomeInvalidToken   = "invalid_token"
	OutcomeMemberNotFound = "member_not_found"
	OutcomeUpstreamError  = "upstream_error"
)

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forumbridge_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "forumbridge_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		SSORequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forumbridge_sso_requests_total",
				Help: "SSO flow requests by flow and outcome",
			},
			[]string{"flow", "outcome"},
		),
		GhostRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forumbridge_ghost_requests_total",
				Help: "Requests made to the Ghost APIs",
			},
			[]string{"endpoint", "status"},
		),
		GhostRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "forumbridge_ghost_request_duration_seconds",
				Help:    "Ghost API request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"endpoint"},
		),
		JWKSFetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forumbridge_jwks_fetches_total",
				Help: "Fetches of the Ghost members JWKS document",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SSORequestsTotal,
		m.GhostRequestsTotal,
		m.GhostRequestDuration,
		m.JWKSFetchesTotal,
	)

	return m
}

// ObserveSSO records the outcome of a single SSO flow request.
func (m *Metrics) ObserveSSO(flow, outcome string) {
	if m == nil {
		return
	}
	m.SSORequestsTotal.WithLabelValues(flow, outcome).Inc()
}

// ObserveGhost records a completed Ghost API request.
func (m *Metrics) ObserveGhost(endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.GhostRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.GhostRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// ObserveJWKSFetch records a JWKS fetch attempt.
func (m *Metrics) ObserveJWKSFetch(err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.JWKSFetchesTotal.WithLabelValues(status).Inc()
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(rw.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
		})
	}
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
