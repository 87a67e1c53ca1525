package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	httpserver "github.com/fairyhunter13/jobtrackr/internal/adapter/httpserver"
	"github.com/fairyhunter13/jobtrackr/internal/adapter/observability"
	"github.com/fairyhunter13/jobtrackr/internal/config"
)

// ParseOrigins splits a comma-separated origin list into a slice, trimming spaces.
// If the input is empty, returns ["*"].
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// BuildRouter constructs the HTTP handler with all middlewares and routes.
// tokens must be non-nil when cfg.AuthRequired is set.
func BuildRouter(cfg config.Config, srv *httpserver.Server, tokens httpserver.TokenParser) http.Handler {
	timeout := cfg.HTTPWriteTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(httpserver.Recoverer())
	r.Use(httpserver.RequestID())
	r.Use(middleware.Timeout(timeout))
	r.Use(httpserver.RouteSpan)
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Location"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	perMin := cfg.RateLimitPerMin
	if perMin <= 0 {
		perMin = 60
	}
	limit := httprate.LimitByIP(perMin, time.Minute)

	r.Route("/api", func(api chi.Router) {
		api.With(limit).Post("/auth/register", srv.Register())
		api.With(limit).Post("/auth/login", srv.Login())

		api.Group(func(res chi.Router) {
			if cfg.AuthRequired {
				res.Use(httpserver.BearerAuth(tokens))
			}
			res.Get("/companies", srv.ListCompanies())
			res.Get("/companies/{id}", srv.GetCompany())
			res.Get("/job-applications", srv.ListJobApplications())
			res.Get("/job-applications/{id}", srv.GetJobApplication())
			res.Get("/job-application-statuses", srv.ListStatuses())

			// Rate limit mutating endpoints
			res.Group(func(wr chi.Router) {
				wr.Use(limit)
				wr.Post("/companies", srv.CreateCompany())
				wr.Put("/companies/{id}", srv.UpdateCompany())
				wr.Delete("/companies/{id}", srv.DeleteCompany())
				wr.Post("/job-applications", srv.CreateJobApplication())
				wr.Put("/job-applications/{id}", srv.UpdateJobApplication())
				wr.Delete("/job-applications/{id}", srv.DeleteJobApplication())
			})
		})
	})

	r.Get("/healthz", srv.HealthzHandler())
	r.Get("/readyz", srv.ReadyzHandler())
	r.Handle("/metrics", promhttp.Handler())

	return otelhttp.NewHandler(httpserver.SecurityHeaders(r), "http.server")
}
