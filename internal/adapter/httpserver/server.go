package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/jobtrackr/internal/domain"
	"github.com/fairyhunter13/jobtrackr/internal/mediator"
	"github.com/fairyhunter13/jobtrackr/internal/usecase"
)

// Identity is the account flow behind /api/auth.
type Identity interface {
	Register(ctx context.Context, req usecase.RegisterRequest) (domain.Result[uuid.UUID], error)
	Login(ctx context.Context, req usecase.LoginRequest) (domain.Result[usecase.TokenPair], error)
}

// Server aggregates handler dependencies.
type Server struct {
	Mediator   *mediator.Mediator
	Identity   Identity
	DBCheck    func(ctx context.Context) error
	RedisCheck func(ctx context.Context) error
}

// NewServer constructs a Server. The readiness checks may be nil when the
// backing store is not configured.
func NewServer(m *mediator.Mediator, identity Identity, dbCheck, redisCheck func(context.Context) error) *Server {
	return &Server{Mediator: m, Identity: identity, DBCheck: dbCheck, RedisCheck: redisCheck}
}

// HealthzHandler reports liveness.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler returns a readiness handler that checks the database and Redis.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		targets := []struct {
			name string
			fn   func(context.Context) error
		}{{"db", s.DBCheck}, {"redis", s.RedisCheck}}
		checks := make([]check, 0, len(targets))
		st := http.StatusOK
		for _, p := range targets {
			if p.fn == nil {
				continue
			}
			if err := p.fn(ctx); err != nil {
				checks = append(checks, check{Name: p.name, Details: err.Error()})
				st = http.StatusServiceUnavailable
				continue
			}
			checks = append(checks, check{Name: p.name, OK: true})
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
