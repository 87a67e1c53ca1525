package app

import (
	"github.com/fairyhunter13/jobtrackr/internal/adapter/observability"
	"github.com/fairyhunter13/jobtrackr/internal/domain"
	"github.com/fairyhunter13/jobtrackr/internal/mediator"
	"github.com/fairyhunter13/jobtrackr/internal/usecase"
)

// Stores groups the repositories behind the resource handlers.
type Stores struct {
	Companies       domain.CompanyRepository
	JobApplications domain.JobApplicationRepository
	Statuses        domain.StatusRepository
}

// BuildMediator registers every command and query handler. Requests pass
// instrumentation, then validation, then logging before reaching a handler.
func BuildMediator(st Stores, events domain.EventPublisher) *mediator.Mediator {
	vs := mediator.NewValidators()
	m := mediator.New(
		mediator.InstrumentationBehavior(observability.ObserveMediatorRequest),
		mediator.ValidationBehavior(vs),
		mediator.LoggingBehavior(),
	)
	usecase.NewCompanyService(st.Companies, events).Register(m, vs)
	usecase.NewJobApplicationService(st.JobApplications, st.Companies, st.Statuses, events).Register(m, vs)
	usecase.NewStatusService(st.Statuses).Register(m)
	return m
}
