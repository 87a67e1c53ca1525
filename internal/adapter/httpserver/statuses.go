package httpserver

import (
	"net/http"

	"github.com/fairyhunter13/jobtrackr/internal/mediator"
	"github.com/fairyhunter13/jobtrackr/internal/usecase"
)

// ListStatuses handles GET /api/job-application-statuses.
func (s *Server) ListStatuses() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := mediator.Send[[]usecase.StatusDTO](r.Context(), s.Mediator, usecase.GetJobApplicationStatusesQuery{})
		if err != nil {
			writeProblem(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
