package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/jobtrackr/internal/domain"
	"github.com/fairyhunter13/jobtrackr/internal/mediator"
	"github.com/fairyhunter13/jobtrackr/pkg/textx"
)

// CreateCompanyCommand creates a company and returns its id.
type CreateCompanyCommand struct {
	Name     string `json:"name" validate:"notblank,max=200"`
	Industry string `json:"industry" validate:"max=100"`
	Location string `json:"location" validate:"max=200"`
	Website  string `json:"website" validate:"max=500,weburl"`
	Notes    string `json:"notes"`
}

// UpdateCompanyCommand replaces every field of an existing company.
type UpdateCompanyCommand struct {
	ID       uuid.UUID `json:"id" field:"Id" validate:"uuidset"`
	Name     string    `json:"name" validate:"notblank,max=200"`
	Industry string    `json:"industry" validate:"max=100"`
	Location string    `json:"location" validate:"max=200"`
	Website  string    `json:"website" validate:"max=500,weburl"`
	Notes    string    `json:"notes"`
}

// DeleteCompanyCommand removes a company without job applications.
type DeleteCompanyCommand struct{ ID uuid.UUID }

// GetCompaniesQuery lists every company.
type GetCompaniesQuery struct{}

// GetCompanyByIDQuery loads one company.
type GetCompanyByIDQuery struct{ ID uuid.UUID }

// CompanyDTO is the public shape of a company.
type CompanyDTO struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Industry  string     `json:"industry,omitempty"`
	Location  string     `json:"location,omitempty"`
	Website   string     `json:"website,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

func toCompanyDTO(c domain.Company) CompanyDTO {
	return CompanyDTO{
		ID:        c.ID,
		Name:      c.Name,
		Industry:  c.Industry,
		Location:  c.Location,
		Website:   c.Website,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

var companyMessages = ruleMessages{
	"Id.uuidset":     "Id cannot be empty.",
	"Name.notblank":  "Name cannot be empty.",
	"Name.max":       "Name cannot exceed 200 characters.",
	"Industry.max":   "Industry cannot exceed 100 characters.",
	"Location.max":   "Location cannot exceed 200 characters.",
	"Website.max":    "Website cannot exceed 500 characters.",
	"Website.weburl": "Invalid url.",
}

const (
	msgCompanyNameTaken = "A company with this name already exists."
	msgCompanyIDInvalid = "Id must be valid GUID"
)

// CompanyService handles company commands and queries.
type CompanyService struct {
	Companies domain.CompanyRepository
	Events    domain.EventPublisher
}

// NewCompanyService constructs a CompanyService.
func NewCompanyService(companies domain.CompanyRepository, events domain.EventPublisher) CompanyService {
	return CompanyService{Companies: companies, Events: events}
}

// Register binds the company handlers and validators.
func (s CompanyService) Register(m *mediator.Mediator, vs *mediator.Validators) {
	mediator.Register[CreateCompanyCommand, uuid.UUID](m, mediator.HandlerFunc[CreateCompanyCommand, uuid.UUID](s.Create))
	mediator.Register[UpdateCompanyCommand, mediator.Unit](m, mediator.HandlerFunc[UpdateCompanyCommand, mediator.Unit](s.Update))
	mediator.Register[DeleteCompanyCommand, mediator.Unit](m, mediator.HandlerFunc[DeleteCompanyCommand, mediator.Unit](s.Delete))
	mediator.Register[GetCompaniesQuery, []CompanyDTO](m, mediator.HandlerFunc[GetCompaniesQuery, []CompanyDTO](s.List))
	mediator.Register[GetCompanyByIDQuery, CompanyDTO](m, mediator.HandlerFunc[GetCompanyByIDQuery, CompanyDTO](s.Get))

	mediator.AddValidator[CreateCompanyCommand](vs, mediator.ValidatorFunc[CreateCompanyCommand](ValidateCreateCompanyRules))
	mediator.AddValidator[CreateCompanyCommand](vs, mediator.ValidatorFunc[CreateCompanyCommand](s.ValidateCreateCompanyName))
	mediator.AddValidator[UpdateCompanyCommand](vs, mediator.ValidatorFunc[UpdateCompanyCommand](ValidateUpdateCompanyRules))
	mediator.AddValidator[UpdateCompanyCommand](vs, mediator.ValidatorFunc[UpdateCompanyCommand](s.ValidateUpdateCompanyName))
}

// ValidateCreateCompanyRules checks the field rules of a create command.
func ValidateCreateCompanyRules(_ context.Context, cmd CreateCompanyCommand) ([]domain.FieldError, error) {
	return checkRules(cmd, companyMessages)
}

// ValidateUpdateCompanyRules checks the field rules of an update command.
func ValidateUpdateCompanyRules(_ context.Context, cmd UpdateCompanyCommand) ([]domain.FieldError, error) {
	return checkUpdateRules(cmd, cmd.ID, companyMessages, msgCompanyIDInvalid)
}

// ValidateCreateCompanyName fails when any company already uses the name.
func (s CompanyService) ValidateCreateCompanyName(ctx context.Context, cmd CreateCompanyCommand) ([]domain.FieldError, error) {
	return s.checkNameFree(ctx, cmd.Name, uuid.Nil)
}

// ValidateUpdateCompanyName fails when another company uses the name; the
// company being updated may keep its own name.
func (s CompanyService) ValidateUpdateCompanyName(ctx context.Context, cmd UpdateCompanyCommand) ([]domain.FieldError, error) {
	return s.checkNameFree(ctx, cmd.Name, cmd.ID)
}

func (s CompanyService) checkNameFree(ctx context.Context, name string, exceptID uuid.UUID) ([]domain.FieldError, error) {
	if isBlank(name) {
		return nil, nil
	}
	taken, err := s.Companies.NameTaken(ctx, name, exceptID)
	if err != nil {
		return nil, fmt.Errorf("op=company.validate_name: %w", err)
	}
	if taken {
		return []domain.FieldError{{Field: "Name", Message: msgCompanyNameTaken}}, nil
	}
	return nil, nil
}

// Create stores a new company and returns its id.
func (s CompanyService) Create(ctx context.Context, cmd CreateCompanyCommand) (uuid.UUID, error) {
	c, err := domain.NewCompany(cmd.Name, cmd.Industry, cmd.Location, cmd.Website, textx.CleanFreeText(cmd.Notes))
	if err != nil {
		return uuid.Nil, err
	}
	if err := s.Companies.Add(ctx, c); err != nil {
		return uuid.Nil, fmt.Errorf("op=company.create: %w", err)
	}
	publish(ctx, s.Events, domain.EventCompanyCreated, c.ID, toCompanyDTO(*c))
	return c.ID, nil
}

// Update replaces all fields of an existing company.
func (s CompanyService) Update(ctx context.Context, cmd UpdateCompanyCommand) (mediator.Unit, error) {
	c, err := s.loadCompany(ctx, cmd.ID)
	if err != nil {
		return mediator.Unit{}, err
	}
	if err := c.UpdateDetails(cmd.Name, cmd.Industry, cmd.Location, cmd.Website, textx.CleanFreeText(cmd.Notes)); err != nil {
		return mediator.Unit{}, err
	}
	if err := s.Companies.Update(ctx, c); err != nil {
		return mediator.Unit{}, fmt.Errorf("op=company.update: %w", err)
	}
	publish(ctx, s.Events, domain.EventCompanyUpdated, c.ID, toCompanyDTO(*c))
	return mediator.Unit{}, nil
}

// Delete removes a company. Companies with job applications are kept and
// the call fails with a domain error from the store.
func (s CompanyService) Delete(ctx context.Context, cmd DeleteCompanyCommand) (mediator.Unit, error) {
	if _, err := s.loadCompany(ctx, cmd.ID); err != nil {
		return mediator.Unit{}, err
	}
	if err := s.Companies.Delete(ctx, cmd.ID); err != nil {
		return mediator.Unit{}, fmt.Errorf("op=company.delete: %w", err)
	}
	publish(ctx, s.Events, domain.EventCompanyDeleted, cmd.ID, nil)
	return mediator.Unit{}, nil
}

// List returns every company; never nil.
func (s CompanyService) List(ctx context.Context, _ GetCompaniesQuery) ([]CompanyDTO, error) {
	companies, err := s.Companies.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("op=company.list: %w", err)
	}
	out := make([]CompanyDTO, 0, len(companies))
	for _, c := range companies {
		out = append(out, toCompanyDTO(c))
	}
	return out, nil
}

// Get returns one company or a not-found error.
func (s CompanyService) Get(ctx context.Context, q GetCompanyByIDQuery) (CompanyDTO, error) {
	c, err := s.loadCompany(ctx, q.ID)
	if err != nil {
		return CompanyDTO{}, err
	}
	return toCompanyDTO(*c), nil
}

func (s CompanyService) loadCompany(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	c, err := s.Companies.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewNotFoundError(domain.EntityCompany, id)
	}
	if err != nil {
		return nil, fmt.Errorf("op=company.get: %w", err)
	}
	return c, nil
}
