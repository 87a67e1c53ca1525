package httpserver

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/fairyhunter13/jobtrackr/internal/adapter/observability"
	"github.com/fairyhunter13/jobtrackr/internal/usecase"
)

type failureBody struct {
	Error string `json:"error"`
}

// Register handles POST /api/auth/register. Expected failures such as a
// taken email come back as 400 with a flat error message.
func (s *Server) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req usecase.RegisterRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeProblem(w, r, err)
			return
		}
		res, err := s.Identity.Register(r.Context(), req)
		if err != nil {
			writeProblem(w, r, err)
			return
		}
		if !res.IsSuccess {
			writeJSON(w, http.StatusBadRequest, failureBody{Error: res.Error})
			return
		}
		writeJSON(w, http.StatusOK, struct {
			UserID uuid.UUID `json:"userId"`
		}{res.Data})
	}
}

// Login handles POST /api/auth/login.
func (s *Server) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req usecase.LoginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeProblem(w, r, err)
			return
		}
		res, err := s.Identity.Login(r.Context(), req)
		if err != nil {
			writeProblem(w, r, err)
			return
		}
		observability.RecordLogin(loginOutcome(res.IsSuccess, res.Error))
		if !res.IsSuccess {
			writeJSON(w, http.StatusUnauthorized, failureBody{Error: res.Error})
			return
		}
		writeJSON(w, http.StatusOK, res.Data)
	}
}

func loginOutcome(ok bool, msg string) string {
	switch {
	case ok:
		return "success"
	case msg == usecase.MsgLockedOut:
		return "locked_out"
	case msg == usecase.MsgNotAllowed:
		return "not_allowed"
	default:
		return "invalid"
	}
}
