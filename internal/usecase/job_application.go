package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/jobtrackr/internal/domain"
	"github.com/fairyhunter13/jobtrackr/internal/mediator"
	"github.com/fairyhunter13/jobtrackr/pkg/textx"
)

// CreateJobApplicationCommand creates an application and returns its id.
type CreateJobApplicationCommand struct {
	Position    string     `json:"position" validate:"notblank,max=200"`
	Description string     `json:"description" validate:"max=1000"`
	AppliedDate *time.Time `json:"appliedDate"`
	Location    string     `json:"location" validate:"max=200"`
	JobURL      string     `json:"jobUrl" field:"JobUrl" validate:"max=500,weburl"`
	CoverLetter string     `json:"coverLetter"`
	Notes       string     `json:"notes"`
	CompanyID   uuid.UUID  `json:"companyId" field:"CompanyId" validate:"uuidset"`
	StatusID    uuid.UUID  `json:"jobApplicationStatusId" field:"JobApplicationStatusId" validate:"uuidset"`
}

// UpdateJobApplicationCommand replaces every field of an application.
type UpdateJobApplicationCommand struct {
	ID          uuid.UUID  `json:"id" field:"Id" validate:"uuidset"`
	Position    string     `json:"position" validate:"notblank,max=200"`
	Description string     `json:"description" validate:"max=1000"`
	AppliedDate *time.Time `json:"appliedDate"`
	Location    string     `json:"location" validate:"max=200"`
	JobURL      string     `json:"jobUrl" field:"JobUrl" validate:"max=500,weburl"`
	CoverLetter string     `json:"coverLetter"`
	Notes       string     `json:"notes"`
	CompanyID   uuid.UUID  `json:"companyId" field:"CompanyId" validate:"uuidset"`
	StatusID    uuid.UUID  `json:"jobApplicationStatusId" field:"JobApplicationStatusId" validate:"uuidset"`
}

func (c CreateJobApplicationCommand) fields() domain.JobApplicationFields {
	return domain.JobApplicationFields{
		Position: c.Position, Description: textx.CleanFreeText(c.Description), AppliedDate: c.AppliedDate, Location: c.Location,
		JobURL: c.JobURL, CoverLetter: textx.CleanFreeText(c.CoverLetter), Notes: textx.CleanFreeText(c.Notes),
		CompanyID: c.CompanyID, StatusID: c.StatusID,
	}
}

func (c UpdateJobApplicationCommand) fields() domain.JobApplicationFields {
	return domain.JobApplicationFields{
		Position: c.Position, Description: textx.CleanFreeText(c.Description), AppliedDate: c.AppliedDate, Location: c.Location,
		JobURL: c.JobURL, CoverLetter: textx.CleanFreeText(c.CoverLetter), Notes: textx.CleanFreeText(c.Notes),
		CompanyID: c.CompanyID, StatusID: c.StatusID,
	}
}

// DeleteJobApplicationCommand removes an application.
type DeleteJobApplicationCommand struct{ ID uuid.UUID }

// GetJobApplicationsQuery lists every application.
type GetJobApplicationsQuery struct{}

// GetJobApplicationByIDQuery loads one application.
type GetJobApplicationByIDQuery struct{ ID uuid.UUID }

// JobApplicationDTO is the public shape of an application, including the
// names of its company and status.
type JobApplicationDTO struct {
	ID          uuid.UUID  `json:"id"`
	Position    string     `json:"position"`
	Description string     `json:"description,omitempty"`
	AppliedDate *time.Time `json:"appliedDate,omitempty"`
	Location    string     `json:"location,omitempty"`
	JobURL      string     `json:"jobUrl,omitempty"`
	CoverLetter string     `json:"coverLetter,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CompanyID   uuid.UUID  `json:"companyId"`
	CompanyName string     `json:"companyName,omitempty"`
	StatusID    uuid.UUID  `json:"jobApplicationStatusId"`
	StatusName  string     `json:"statusName,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

func toJobApplicationDTO(d domain.JobApplicationDetails) JobApplicationDTO {
	return JobApplicationDTO{
		ID:          d.ID,
		Position:    d.Position,
		Description: d.Description,
		AppliedDate: d.AppliedDate,
		Location:    d.Location,
		JobURL:      d.JobURL,
		CoverLetter: d.CoverLetter,
		Notes:       d.Notes,
		CompanyID:   d.CompanyID,
		CompanyName: d.CompanyName,
		StatusID:    d.StatusID,
		StatusName:  d.StatusName,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// applicationPayload is the event body for a stored application. Company
// and status names are left to consumers.
func applicationPayload(ja *domain.JobApplication) JobApplicationDTO {
	return toJobApplicationDTO(domain.JobApplicationDetails{JobApplication: *ja})
}

var createJobApplicationMessages = ruleMessages{
	"Position.notblank":              "Position cannot be empty.",
	"Position.max":                   "Position cannot exceed 200 characters.",
	"Description.max":                "Description cannot exceed 1000 characters.",
	"Location.max":                   "Location cannot exceed 200 characters.",
	"JobUrl.max":                     "JobUrl cannot exceed 500 characters.",
	"JobUrl.weburl":                  "Invalid URL",
	"CompanyId.uuidset":              "Company Id cannot be empty.",
	"JobApplicationStatusId.uuidset": "Status Id cannot be empty.",
}

var updateJobApplicationMessages = ruleMessages{
	"Id.uuidset":                     "Id cannot be empty.",
	"Position.notblank":              "Position cannot be empty.",
	"Position.max":                   "Position cannot exceed 200 characters.",
	"Description.max":                "Description cannot exceed 1000 characters.",
	"Location.max":                   "Location cannot exceed 200 characters.",
	"JobUrl.max":                     "Job URL cannot exceed 500 characters.",
	"JobUrl.weburl":                  "Invalid job URL.",
	"CompanyId.uuidset":              "CompanyId cannot be empty.",
	"JobApplicationStatusId.uuidset": "JobApplicationStatusId cannot be empty.",
}

const (
	msgCompanyMissing       = "Company does not exist."
	msgStatusMissing        = "Status does not exist."
	msgApplicationIDInvalid = "Id cannot be empty Guid."
)

// JobApplicationService handles job application commands and queries.
type JobApplicationService struct {
	Applications domain.JobApplicationRepository
	Companies    domain.CompanyRepository
	Statuses     domain.StatusRepository
	Events       domain.EventPublisher
}

// NewJobApplicationService constructs a JobApplicationService.
func NewJobApplicationService(apps domain.JobApplicationRepository, companies domain.CompanyRepository, statuses domain.StatusRepository, events domain.EventPublisher) JobApplicationService {
	return JobApplicationService{Applications: apps, Companies: companies, Statuses: statuses, Events: events}
}

// Register binds the job application handlers and validators.
func (s JobApplicationService) Register(m *mediator.Mediator, vs *mediator.Validators) {
	mediator.Register[CreateJobApplicationCommand, uuid.UUID](m, mediator.HandlerFunc[CreateJobApplicationCommand, uuid.UUID](s.Create))
	mediator.Register[UpdateJobApplicationCommand, mediator.Unit](m, mediator.HandlerFunc[UpdateJobApplicationCommand, mediator.Unit](s.Update))
	mediator.Register[DeleteJobApplicationCommand, mediator.Unit](m, mediator.HandlerFunc[DeleteJobApplicationCommand, mediator.Unit](s.Delete))
	mediator.Register[GetJobApplicationsQuery, []JobApplicationDTO](m, mediator.HandlerFunc[GetJobApplicationsQuery, []JobApplicationDTO](s.List))
	mediator.Register[GetJobApplicationByIDQuery, JobApplicationDTO](m, mediator.HandlerFunc[GetJobApplicationByIDQuery, JobApplicationDTO](s.Get))

	mediator.AddValidator[CreateJobApplicationCommand](vs, mediator.ValidatorFunc[CreateJobApplicationCommand](ValidateCreateJobApplicationRules))
	mediator.AddValidator[CreateJobApplicationCommand](vs, mediator.ValidatorFunc[CreateJobApplicationCommand](func(ctx context.Context, c CreateJobApplicationCommand) ([]domain.FieldError, error) {
		return s.checkReferences(ctx, c.CompanyID, c.StatusID)
	}))
	mediator.AddValidator[UpdateJobApplicationCommand](vs, mediator.ValidatorFunc[UpdateJobApplicationCommand](ValidateUpdateJobApplicationRules))
	mediator.AddValidator[UpdateJobApplicationCommand](vs, mediator.ValidatorFunc[UpdateJobApplicationCommand](func(ctx context.Context, c UpdateJobApplicationCommand) ([]domain.FieldError, error) {
		return s.checkReferences(ctx, c.CompanyID, c.StatusID)
	}))
}

// ValidateCreateJobApplicationRules checks the field rules of a create command.
func ValidateCreateJobApplicationRules(_ context.Context, cmd CreateJobApplicationCommand) ([]domain.FieldError, error) {
	return checkRules(cmd, createJobApplicationMessages)
}

// ValidateUpdateJobApplicationRules checks the field rules of an update command.
func ValidateUpdateJobApplicationRules(_ context.Context, cmd UpdateJobApplicationCommand) ([]domain.FieldError, error) {
	return checkUpdateRules(cmd, cmd.ID, updateJobApplicationMessages, msgApplicationIDInvalid)
}

// checkReferences verifies the company and status exist. Both lookups run
// concurrently and each reports its own field; nil ids are left to the
// field rules.
func (s JobApplicationService) checkReferences(ctx context.Context, companyID, statusID uuid.UUID) ([]domain.FieldError, error) {
	companyFound, statusFound := true, true
	g, gctx := errgroup.WithContext(ctx)
	if companyID != uuid.Nil {
		g.Go(func() error {
			ok, err := s.Companies.Exists(gctx, companyID)
			companyFound = ok
			return err
		})
	}
	if statusID != uuid.Nil {
		g.Go(func() error {
			ok, err := s.Statuses.Exists(gctx, statusID)
			statusFound = ok
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("op=job_application.validate_refs: %w", err)
	}
	var out []domain.FieldError
	if !companyFound {
		out = append(out, domain.FieldError{Field: "CompanyId", Message: msgCompanyMissing})
	}
	if !statusFound {
		out = append(out, domain.FieldError{Field: "JobApplicationStatusId", Message: msgStatusMissing})
	}
	return out, nil
}

// Create stores a new application and returns its id.
func (s JobApplicationService) Create(ctx context.Context, cmd CreateJobApplicationCommand) (uuid.UUID, error) {
	ja, err := domain.NewJobApplication(cmd.fields())
	if err != nil {
		return uuid.Nil, err
	}
	if err := s.Applications.Add(ctx, ja); err != nil {
		return uuid.Nil, fmt.Errorf("op=job_application.create: %w", err)
	}
	publish(ctx, s.Events, domain.EventJobApplicationCreated, ja.ID, applicationPayload(ja))
	return ja.ID, nil
}

// Update replaces all fields of an existing application.
func (s JobApplicationService) Update(ctx context.Context, cmd UpdateJobApplicationCommand) (mediator.Unit, error) {
	ja, err := s.Applications.Get(ctx, cmd.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return mediator.Unit{}, domain.NewNotFoundError(domain.EntityJobApplication, cmd.ID)
	}
	if err != nil {
		return mediator.Unit{}, fmt.Errorf("op=job_application.get: %w", err)
	}
	prevStatus := ja.StatusID
	if err := ja.UpdateDetails(cmd.fields()); err != nil {
		return mediator.Unit{}, err
	}
	if err := s.Applications.Update(ctx, ja); err != nil {
		return mediator.Unit{}, fmt.Errorf("op=job_application.update: %w", err)
	}
	publish(ctx, s.Events, domain.EventJobApplicationUpdated, ja.ID, map[string]any{
		"previousStatusId": prevStatus,
		"application":      applicationPayload(ja),
	})
	return mediator.Unit{}, nil
}

// Delete removes an application.
func (s JobApplicationService) Delete(ctx context.Context, cmd DeleteJobApplicationCommand) (mediator.Unit, error) {
	if _, err := s.Applications.Get(ctx, cmd.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return mediator.Unit{}, domain.NewNotFoundError(domain.EntityJobApplication, cmd.ID)
		}
		return mediator.Unit{}, fmt.Errorf("op=job_application.get: %w", err)
	}
	if err := s.Applications.Delete(ctx, cmd.ID); err != nil {
		return mediator.Unit{}, fmt.Errorf("op=job_application.delete: %w", err)
	}
	publish(ctx, s.Events, domain.EventJobApplicationDeleted, cmd.ID, nil)
	return mediator.Unit{}, nil
}

// List returns every application; never nil.
func (s JobApplicationService) List(ctx context.Context, _ GetJobApplicationsQuery) ([]JobApplicationDTO, error) {
	rows, err := s.Applications.ListDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("op=job_application.list: %w", err)
	}
	out := make([]JobApplicationDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, toJobApplicationDTO(r))
	}
	return out, nil
}

// Get returns one application or a not-found error.
func (s JobApplicationService) Get(ctx context.Context, q GetJobApplicationByIDQuery) (JobApplicationDTO, error) {
	d, err := s.Applications.GetDetails(ctx, q.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return JobApplicationDTO{}, domain.NewNotFoundError(domain.EntityJobApplication, q.ID)
	}
	if err != nil {
		return JobApplicationDTO{}, fmt.Errorf("op=job_application.get: %w", err)
	}
	return toJobApplicationDTO(d), nil
}
