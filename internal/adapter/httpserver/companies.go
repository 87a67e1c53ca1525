package httpserver

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/fairyhunter13/jobtrackr/internal/mediator"
	"github.com/fairyhunter13/jobtrackr/internal/usecase"
)

// ListCompanies handles GET /api/companies.
func (s *Server) ListCompanies() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := mediator.Send[[]usecase.CompanyDTO](r.Context(), s.Mediator, usecase.GetCompaniesQuery{})
		if err != nil {
			writeProblem(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GetCompany handles GET /api/companies/{id}.
func (s *Server) GetCompany() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeProblem(w, r, err)
			return
		}
		out, err := mediator.Send[usecase.CompanyDTO](r.Context(), s.Mediator, usecase.GetCompanyByIDQuery{ID: id})
		if err != nil {
			writeProblem(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// CreateCompany handles POST /api/companies.
func (s *Server) CreateCompany() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cmd usecase.CreateCompanyCommand
		if err := decodeJSON(w, r, &cmd); err != nil {
			writeProblem(w, r, err)
			return
		}
		id, err := mediator.Send[uuid.UUID](r.Context(), s.Mediator, cmd)
		if err != nil {
			writeProblem(w, r, err)
			return
		}
		created(w, "/api/companies/"+id.String(), id)
	}
}

// UpdateCompany handles PUT /api/companies/{id}.
func (s *Server) UpdateCompany() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeProblem(w, r, err)
			return
		}
		var cmd usecase.UpdateCompanyCommand
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

// DeleteCompany handles DELETE /api/companies/{id}.
func (s *Server) DeleteCompany() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeProblem(w, r, err)
			return
		}
		if _, err := mediator.Send[mediator.Unit](r.Context(), s.Mediator, usecase.DeleteCompanyCommand{ID: id}); err != nil {
			writeProblem(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
