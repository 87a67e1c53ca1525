package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "github.com/fairyhunter13/jobtrackr/internal/adapter/httpserver"
	"github.com/fairyhunter13/jobtrackr/internal/adapter/queue/redpanda"
	"github.com/fairyhunter13/jobtrackr/internal/adapter/repo/memory"
	"github.com/fairyhunter13/jobtrackr/internal/app"
	"github.com/fairyhunter13/jobtrackr/internal/config"
	"github.com/fairyhunter13/jobtrackr/internal/domain"
	"github.com/fairyhunter13/jobtrackr/internal/service/auth"
	"github.com/fairyhunter13/jobtrackr/internal/usecase"
)

const testKey = "0123456789abcdef0123456789abcdef"

func newApp(t *testing.T, cfg config.Config, dbCheck func(context.Context) error) (http.Handler, *auth.JWTIssuer) {
	t.Helper()
	store := memory.NewStore()
	m := app.BuildMediator(app.Stores{
		Companies:       store.Companies(),
		JobApplications: store.JobApplications(),
		Statuses:        store.Statuses(),
	}, redpanda.NoopPublisher{})
	issuer := auth.NewJWTIssuer(testKey, "jobtrackr", "jobtrackr-clients", 15*time.Minute)
	identity := usecase.IdentityService{}
	srv := httpserver.NewServer(m, identity, dbCheck, nil)
	return app.BuildRouter(cfg, srv, issuer), issuer
}

func serve(h http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	return rw
}

func TestParseOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, app.ParseOrigins(""))
	assert.Equal(t, []string{"*"}, app.ParseOrigins(" * "))
	assert.Equal(t, []string{"*"}, app.ParseOrigins(" , "))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, app.ParseOrigins("https://a.example, https://b.example,"))
}

func TestBuildRouter_CompanyLifecycle(t *testing.T) {
	h, _ := newApp(t, config.Config{RateLimitPerMin: 1000}, nil)

	rw := serve(h, http.MethodPost, "/api/companies", `{"name":"Initech","location":"Austin"}`)
	require.Equal(t, http.StatusCreated, rw.Code, rw.Body.String())
	var id uuid.UUID
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &id))
	assert.Equal(t, "/api/companies/"+id.String(), rw.Header().Get("Location"))
	assert.NotEmpty(t, rw.Header().Get("X-Request-Id"))
	assert.Equal(t, "nosniff", rw.Header().Get("X-Content-Type-Options"))

	rw = serve(h, http.MethodGet, "/api/companies/"+id.String(), "")
	require.Equal(t, http.StatusOK, rw.Code)
	var first map[string]any
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &first))
	assert.Nil(t, first["updatedAt"])

	time.Sleep(2 * time.Millisecond)
	rw = serve(h, http.MethodPut, "/api/companies/"+id.String(), `{"id":"`+id.String()+`","name":"Initech","location":"Dallas"}`)
	require.Equal(t, http.StatusNoContent, rw.Code, rw.Body.String())

	rw = serve(h, http.MethodGet, "/api/companies/"+id.String(), "")
	var dto usecase.CompanyDTO
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &dto))
	require.NotNil(t, dto.UpdatedAt)
	assert.True(t, dto.UpdatedAt.After(dto.CreatedAt))
	assert.Equal(t, "Dallas", dto.Location)

	rw = serve(h, http.MethodDelete, "/api/companies/"+id.String(), "")
	require.Equal(t, http.StatusNoContent, rw.Code)

	rw = serve(h, http.MethodGet, "/api/companies/"+id.String(), "")
	require.Equal(t, http.StatusNotFound, rw.Code)
	assert.Equal(t, "application/problem+json", rw.Header().Get("Content-Type"))
}

func TestBuildRouter_URLTable(t *testing.T) {
	h, _ := newApp(t, config.Config{RateLimitPerMin: 1000}, nil)
	missing := uuid.NewString()
	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/api/companies", http.StatusOK},
		{http.MethodGet, "/api/job-applications", http.StatusOK},
		{http.MethodGet, "/api/job-application-statuses", http.StatusOK},
		{http.MethodGet, "/api/companies/" + missing, http.StatusNotFound},
		{http.MethodGet, "/api/job-applications/" + missing, http.StatusNotFound},
		{http.MethodDelete, "/api/job-applications/" + missing, http.StatusNotFound},
		{http.MethodGet, "/api/companies/nope", http.StatusBadRequest},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
		{http.MethodPatch, "/api/companies/" + missing, http.StatusMethodNotAllowed},
	}
	for _, c := range cases {
		t.Run(c.method+" "+c.path, func(t *testing.T) {
			assert.Equal(t, c.want, serve(h, c.method, c.path, "").Code)
		})
	}
}

func TestBuildRouter_BearerGuard(t *testing.T) {
	h, issuer := newApp(t, config.Config{AuthRequired: true, RateLimitPerMin: 1000}, nil)

	rw := serve(h, http.MethodGet, "/api/companies", "")
	require.Equal(t, http.StatusUnauthorized, rw.Code)
	assert.Equal(t, "Bearer", rw.Header().Get("WWW-Authenticate"))

	rw = serve(h, http.MethodGet, "/api/companies", "", "Authorization", "Bearer not-a-jwt")
	require.Equal(t, http.StatusUnauthorized, rw.Code)

	u, err := domain.NewUser("ada@example.com", "ada", "hash", "Ada", "Lovelace")
	require.NoError(t, err)
	tok, err := issuer.AccessToken(u)
	require.NoError(t, err)
	rw = serve(h, http.MethodGet, "/api/companies", "", "Authorization", "Bearer "+tok)
	assert.Equal(t, http.StatusOK, rw.Code)

	// health endpoints stay public
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/healthz", "").Code)
}

func TestBuildRouter_HealthAndMetrics(t *testing.T) {
	h, _ := newApp(t, config.Config{}, func(context.Context) error { return nil })
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/readyz", "").Code)

	rw := serve(h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rw.Code)

	down, _ := newApp(t, config.Config{}, func(context.Context) error { return errors.New("db down") })
	rw = serve(down, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rw.Code)
	assert.Contains(t, rw.Body.String(), "db down")
}

func TestBuildRouter_CORSPreflight(t *testing.T) {
	h, _ := newApp(t, config.Config{CORSAllowOrigins: "https://app.example"}, nil)
	rw := serve(h, http.MethodOptions, "/api/companies", "",
		"Origin", "https://app.example",
		"Access-Control-Request-Method", http.MethodPut,
	)
	assert.Equal(t, "https://app.example", rw.Header().Get("Access-Control-Allow-Origin"))
}
