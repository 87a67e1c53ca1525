package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	MediatorRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediator_requests_total",
			Help: "Total number of dispatched commands and queries by outcome",
		},
		[]string{"request", "outcome"},
	)
	MediatorRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediator_request_duration_seconds",
			Help:    "Command and query handling duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"request"},
	)

	AuthLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts by outcome",
		},
		[]string{"outcome"},
	)

	DomainEventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_events_published_total",
			Help: "Total number of domain events handed to the broker by outcome",
		},
		[]string{"type", "outcome"},
	)

	RefreshTokensSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_tokens_swept_total",
			Help: "Total number of expired refresh tokens deleted",
		},
	)
)

var initOnce sync.Once

// InitMetrics registers every collector with the default registry. Safe to
// call more than once.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
		prometheus.MustRegister(MediatorRequestsTotal)
		prometheus.MustRegister(MediatorRequestDuration)
		prometheus.MustRegister(AuthLoginsTotal)
		prometheus.MustRegister(DomainEventsPublishedTotal)
		prometheus.MustRegister(RefreshTokensSweptTotal)
	})
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}

// ObserveMediatorRequest matches mediator.Observer.
func ObserveMediatorRequest(request, outcome string, elapsed time.Duration) {
	MediatorRequestsTotal.WithLabelValues(request, outcome).Inc()
	MediatorRequestDuration.WithLabelValues(request).Observe(elapsed.Seconds())
}

// RecordLogin counts a login attempt: success, invalid, locked_out or not_allowed.
func RecordLogin(outcome string) {
	AuthLoginsTotal.WithLabelValues(outcome).Inc()
}

// RecordEventPublished counts a publish attempt: ok, error or skipped.
func RecordEventPublished(eventType, outcome string) {
	DomainEventsPublishedTotal.WithLabelValues(eventType, outcome).Inc()
}

// RecordRefreshTokensSwept adds n deleted tokens.
func RecordRefreshTokensSwept(n int64) {
	if n > 0 {
		RefreshTokensSweptTotal.Add(float64(n))
	}
}
