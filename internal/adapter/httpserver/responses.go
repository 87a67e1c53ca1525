package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/fairyhunter13/jobtrackr/internal/domain"
	obsctx "github.com/fairyhunter13/jobtrackr/internal/observability"
)

const problemContentType = "application/problem+json"

const (
	msgValidation = "One or more validation errors have occurred."
	msgInternal   = "An unexpected error occurred. Please try again later."
)

// Problem is an RFC 9457 problem details body.
type Problem struct {
	Type     string              `json:"type"`
	Title    string              `json:"title"`
	Status   int                 `json:"status"`
	Detail   string              `json:"detail,omitempty"`
	Instance string              `json:"instance"`
	TraceID  string              `json:"traceId,omitempty"`
	Errors   map[string][]string `json:"errors,omitempty"`
}

var problemTypes = map[int]string{
	http.StatusBadRequest:          "https://tools.ietf.org/html/rfc9110#section-15.5.1",
	http.StatusUnauthorized:        "https://tools.ietf.org/html/rfc9110#section-15.5.2",
	http.StatusNotFound:            "https://tools.ietf.org/html/rfc9110#section-15.5.5",
	http.StatusInternalServerError: "https://tools.ietf.org/html/rfc9110#section-15.6.1",
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// problemFor maps an error from the domain taxonomy to its HTTP problem.
// Anything outside the taxonomy becomes an opaque 500.
func problemFor(err error) Problem {
	var (
		nf  *domain.NotFoundError
		ve  *domain.ValidationError
		de  *domain.DomainError
		bad *badRequestError
	)
	switch {
	case errors.As(err, &ve):
		return Problem{Status: http.StatusBadRequest, Title: "Validation failed", Detail: msgValidation, Errors: ve.Errors}
	case errors.As(err, &nf):
		return Problem{Status: http.StatusNotFound, Title: "Resource not found", Detail: nf.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return Problem{Status: http.StatusNotFound, Title: "Resource not found"}
	case errors.As(err, &de):
		return Problem{Status: http.StatusBadRequest, Title: "Domain error", Detail: de.Message}
	case errors.As(err, &bad):
		return Problem{Status: http.StatusBadRequest, Title: "Bad request", Detail: bad.detail}
	case errors.Is(err, domain.ErrUnauthorized):
		return Problem{Status: http.StatusUnauthorized, Title: "Unauthorized"}
	default:
		return Problem{Status: http.StatusInternalServerError, Title: "Internal server error", Detail: msgInternal}
	}
}

// writeProblem is the single place errors become HTTP responses. Server
// errors are logged with their full text; the client sees a fixed message.
func writeProblem(w http.ResponseWriter, r *http.Request, err error) {
	p := problemFor(err)
	lg := LoggerFrom(r)
	if p.Status >= http.StatusInternalServerError {
		lg.Error("request failed", "error", err)
	} else {
		lg.Debug("request rejected", "status", p.Status, "error", err)
	}
	p.Type = problemTypes[p.Status]
	p.Instance = r.URL.Path
	p.TraceID = traceID(r)
	w.Header().Set("Content-Type", problemContentType)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// traceID prefers the active span's trace id and falls back to the request id.
func traceID(r *http.Request) string {
	if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return obsctx.RequestIDFromContext(r.Context())
}

// badRequestError marks malformed input that never reached a handler.
type badRequestError struct {
	detail string
	err    error
}

func (e *badRequestError) Error() string {
	if e.err != nil {
		return e.detail + ": " + e.err.Error()
	}
	return e.detail
}

func (e *badRequestError) Unwrap() error { return e.err }

func badRequest(detail string, err error) error { return &badRequestError{detail: detail, err: err} }
