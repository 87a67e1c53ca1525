package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/jobtrackr/internal/domain"
	obsctx "github.com/fairyhunter13/jobtrackr/internal/observability"
)

func Test_writeProblem_Mapping(t *testing.T) {
	id := "5f0c6a52-8f0e-4d43-9f47-1c1f1ad0b8a1"
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantTitle  string
		wantDetail string
	}{
		{"not found", fmt.Errorf("op=company.get: %w", domain.NewNotFoundError(domain.EntityCompany, id)), http.StatusNotFound, "Resource not found", "Company with id " + id + " was not found."},
		{"bare not found", fmt.Errorf("op=x: %w", domain.ErrNotFound), http.StatusNotFound, "Resource not found", ""},
		{"validation", domain.NewValidationError([]domain.FieldError{{Field: "Name", Message: "Name cannot be empty."}}), http.StatusBadRequest, "Validation failed", msgValidation},
		{"domain", fmt.Errorf("op=company.delete: %w", domain.NewDomainError("Company has job applications and cannot be deleted.")), http.StatusBadRequest, "Domain error", "Company has job applications and cannot be deleted."},
		{"bad request", badRequest("The request body is not valid JSON.", errors.New("eof")), http.StatusBadRequest, "Bad request", "The request body is not valid JSON."},
		{"unauthorized", fmt.Errorf("%w: expired", domain.ErrUnauthorized), http.StatusUnauthorized, "Unauthorized", ""},
		{"internal", errors.New("pq: connection reset"), http.StatusInternalServerError, "Internal server error", msgInternal},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/companies", nil)
			r = r.WithContext(obsctx.ContextWithRequestID(r.Context(), "req-1"))
			rw := httptest.NewRecorder()
			writeProblem(rw, r, c.err)

			require.Equal(t, c.wantStatus, rw.Code)
			assert.Equal(t, problemContentType, rw.Header().Get("Content-Type"))
			var p Problem
			require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &p))
			assert.Equal(t, c.wantStatus, p.Status)
			assert.Equal(t, c.wantTitle, p.Title)
			assert.Equal(t, c.wantDetail, p.Detail)
			assert.Equal(t, "/api/companies", p.Instance)
			assert.Equal(t, "req-1", p.TraceID)
			assert.NotEmpty(t, p.Type)
		})
	}
}

func Test_writeProblem_ValidationCarriesFieldMap(t *testing.T) {
	err := domain.NewValidationError([]domain.FieldError{
		{Field: "CompanyId", Message: "Company does not exist."},
		{Field: "JobApplicationStatusId", Message: "Status does not exist."},
	})
	rw := httptest.NewRecorder()
	writeProblem(rw, httptest.NewRequest(http.MethodPost, "/api/job-applications", nil), err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{
		"CompanyId":              []any{"Company does not exist."},
		"JobApplicationStatusId": []any{"Status does not exist."},
	}, body["errors"])
}

func Test_writeProblem_InternalHidesCause(t *testing.T) {
	rw := httptest.NewRecorder()
	writeProblem(rw, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("password=hunter2"))
	assert.NotContains(t, rw.Body.String(), "hunter2")
	assert.NotContains(t, rw.Body.String(), `"errors"`)
}

func Test_bearerToken(t *testing.T) {
	cases := map[string]struct {
		header string
		want   string
		ok     bool
	}{
		"missing":      {"", "", false},
		"basic":        {"Basic abc", "", false},
		"no token":     {"Bearer   ", "", false},
		"bearer":       {"Bearer abc.def", "abc.def", true},
		"lowercase":    {"bearer abc", "abc", true},
		"no separator": {"Bearerabc", "", false},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if c.header != "" {
				r.Header.Set("Authorization", c.header)
			}
			got, ok := bearerToken(r)
			assert.Equal(t, c.ok, ok)
			assert.Equal(t, c.want, got)
		})
	}
}

func Test_loginOutcome(t *testing.T) {
	assert.Equal(t, "success", loginOutcome(true, ""))
	assert.Equal(t, "locked_out", loginOutcome(false, "Account is locked due to multiple failed login attempts. Try again later."))
	assert.Equal(t, "not_allowed", loginOutcome(false, "Email not allowed. Try again later."))
	assert.Equal(t, "invalid", loginOutcome(false, "Invalid email or password."))
}

func Test_newReqID_ConcurrentUnique(t *testing.T) {
	const workers, perWorker = 16, 500
	ids := make(chan string, workers*perWorker)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				ids <- newReqID()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{}, workers*perWorker)
	for id := range ids {
		require.Len(t, id, 26)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, workers*perWorker)
}
