//go:build integration

// Package integration runs the HTTP API against real Postgres and Redis
// containers.
package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	httpserver "github.com/fairyhunter13/jobtrackr/internal/adapter/httpserver"
	"github.com/fairyhunter13/jobtrackr/internal/adapter/queue/redpanda"
	"github.com/fairyhunter13/jobtrackr/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/jobtrackr/internal/app"
	"github.com/fairyhunter13/jobtrackr/internal/config"
	"github.com/fairyhunter13/jobtrackr/internal/service/auth"
	"github.com/fairyhunter13/jobtrackr/internal/service/lockout"
	"github.com/fairyhunter13/jobtrackr/internal/usecase"
)

const jwtKey = "integration-key-0123456789abcdef0123"

func startPostgres(t *testing.T, ctx context.Context) string {
	t.Helper()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("jobtrackr"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })
	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func startRedis(t *testing.T, ctx context.Context) string {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
	}
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "6379")
	require.NoError(t, err)
	return fmt.Sprintf("%s:%s", host, port.Port())
}

func newStack(t *testing.T) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	t.Cleanup(cancel)

	dsn := startPostgres(t, ctx)
	redisAddr := startRedis(t, ctx)

	pool, err := postgres.NewPool(ctx, dsn, 4)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, app.WaitReady(ctx, "db", pool.Ping, 30*time.Second))
	require.NoError(t, postgres.Migrate(dsn))

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	t.Cleanup(func() { _ = rdb.Close() })

	stores := app.Stores{
		Companies:       postgres.NewCompanyRepo(pool),
		JobApplications: postgres.NewJobApplicationRepo(pool),
		Statuses:        postgres.NewStatusRepo(pool),
	}
	_, err = usecase.NewStatusService(stores.Statuses).Seed(ctx, usecase.DefaultStatuses)
	require.NoError(t, err)

	issuer := auth.NewJWTIssuer(jwtKey, "jobtrackr", "jobtrackr-clients", 15*time.Minute)
	identity := usecase.IdentityService{
		Users:      postgres.NewUserRepo(pool),
		Tokens:     postgres.NewRefreshTokenRepo(pool),
		Attempts:   lockout.NewRedisLuaTracker(rdb, lockout.Policy{MaxFailedAttempts: 3, Duration: time.Minute}),
		Hasher:     auth.NewArgon2Hasher(),
		Issuer:     issuer,
		Events:     redpanda.NoopPublisher{},
		Policy:     usecase.DefaultPasswordPolicy,
		RefreshTTL: 24 * time.Hour,
	}
	dbCheck, redisCheck := app.BuildReadinessChecks(pool, rdb)
	srv := httpserver.NewServer(app.BuildMediator(stores, redpanda.NoopPublisher{}), identity, dbCheck, redisCheck)
	cfg := config.Config{AuthRequired: true, RateLimitPerMin: 1000}

	ts := httptest.NewServer(app.BuildRouter(cfg, srv, issuer))
	t.Cleanup(ts.Close)
	return ts
}

func call(t *testing.T, ts *httptest.Server, method, path, token, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func TestFullStack_RegisterLoginAndTrack(t *testing.T) {
	ts := newStack(t)

	resp, _ := call(t, ts, http.MethodGet, "/readyz", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := call(t, ts, http.MethodPost, "/api/auth/register", "",
		`{"email":"ada@example.com","password":"Secret123!","userName":"ada","firstName":"Ada","lastName":"Lovelace"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = call(t, ts, http.MethodPost, "/api/auth/register", "",
		`{"email":"ADA@example.com","password":"Secret123!","userName":"ada2"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Email already in use."}`, string(body))

	resp, body = call(t, ts, http.MethodPost, "/api/auth/login", "", `{"email":"ada@example.com","password":"Secret123!"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var tokens usecase.TokenPair
	require.NoError(t, json.Unmarshal(body, &tokens))
	require.NotEmpty(t, tokens.AccessToken)

	resp, _ = call(t, ts, http.MethodGet, "/api/companies", "", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = call(t, ts, http.MethodPost, "/api/companies", tokens.AccessToken, `{"name":"Globex","website":"https://globex.example"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var companyID uuid.UUID
	require.NoError(t, json.Unmarshal(body, &companyID))

	resp, body = call(t, ts, http.MethodGet, "/api/job-application-statuses", tokens.AccessToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var statuses []usecase.StatusDTO
	require.NoError(t, json.Unmarshal(body, &statuses))
	require.Len(t, statuses, len(usecase.DefaultStatuses))

	resp, body = call(t, ts, http.MethodPost, "/api/job-applications", tokens.AccessToken,
		`{"position":"Platform Engineer","companyId":"`+companyID.String()+`","jobApplicationStatusId":"`+statuses[1].ID.String()+`"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = call(t, ts, http.MethodDelete, "/api/companies/"+companyID.String(), tokens.AccessToken, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "Company has job applications and cannot be deleted.")

	resp, body = call(t, ts, http.MethodGet, "/api/job-applications", tokens.AccessToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var apps []usecase.JobApplicationDTO
	require.NoError(t, json.Unmarshal(body, &apps))
	require.Len(t, apps, 1)
	assert.Equal(t, "Globex", apps[0].CompanyName)
	assert.Equal(t, "Applied", apps[0].StatusName)
}

func TestFullStack_LockoutAfterRepeatedFailures(t *testing.T) {
	ts := newStack(t)
	resp, body := call(t, ts, http.MethodPost, "/api/auth/register", "",
		`{"email":"bob@example.com","password":"Secret123!","userName":"bob"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	for i := 0; i < 3; i++ {
		resp, _ = call(t, ts, http.MethodPost, "/api/auth/login", "", `{"email":"bob@example.com","password":"wrong"}`)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp, body = call(t, ts, http.MethodPost, "/api/auth/login", "", `{"email":"bob@example.com","password":"Secret123!"}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "locked")
}
