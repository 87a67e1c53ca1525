package httpserver

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/fairyhunter13/jobtrackr/internal/mediator"
	"github.com/fairyhunter13/jobtrackr/internal/usecase"
)

// ListJobApplications handles GET /api/job-applications.
func (s *Server) ListJobApplications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := mediator.Send[[]usecase.JobApplicationDTO](r.Context(), s.Mediator, usecase.GetJobApplicationsQuery{})
		if err != nil {
			writeProblem(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GetJobApplication handles GET /api/job-applications/{id}.
func (s *Server) GetJobApplication() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeProblem(w, r, err)
			return
		}
		out, err := mediator.Send[usecase.JobApplicationDTO](r.Context(), s.Mediator, usecase.GetJobApplicationByIDQuery{ID: id})
		if err != nil {
			writeProblem(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// CreateJobApplication handles POST /api/job-applications.
func (s *Server) CreateJobApplication() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cmd usecase.CreateJobApplicationCommand
		if err := decodeJSON(w, r, &cmd); err != nil {
			writeProblem(w, r, err)
			return
		}
		id, err := mediator.Send[uuid.UUID](r.Context(), s.Mediator, cmd)
		if err != nil {
			writeProblem(w, r, err)
			return
		}
		created(w, "/api/job-applications/"+id.String(), id)
	}
}

// UpdateJobApplication handles PUT /api/job-applications/{id}.
func (s *Server) UpdateJobApplication() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeProblem(w, r, err)
			return
		}
		var cmd usecase.UpdateJobApplicationCommand
		if err := decodeJSON(w, r, &cmd); err != nil {
			writeProblem(w, r, err)
			return
		}
		if cmd.ID != id {
			writeProblem(w, r, errRouteBodyMismatch)
			return
		}
		if _, err := mediator.Send[mediator.Unit](r.Context(), s.Mediator, cmd); err != nil {
			writeProblem(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteJobApplication handles DELETE /api/job-applications/{id}.
func (s *Server) DeleteJobApplication() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeProblem(w, r, err)
			return
		}
		if _, err := mediator.Send[mediator.Unit](r.Context(), s.Mediator, usecase.DeleteJobApplicationCommand{ID: id}); err != nil {
			writeProblem(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
