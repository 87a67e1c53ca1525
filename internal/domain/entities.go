// Package domain holds the job tracking entities, their invariants, the
// error taxonomy, and the ports implemented by storage and messaging adapters.
package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Context is an alias so ports read naturally; it is the std context.
type Context = context.Context

// Field limits shared by entities, validators, and the schema.
const (
	CompanyNameMaxLen     = 200
	CompanyIndustryMaxLen = 100
	CompanyLocationMaxLen = 200
	CompanyWebsiteMaxLen  = 500

	PositionMaxLen    = 200
	DescriptionMaxLen = 1000
	JobLocationMaxLen = 200
	JobURLMaxLen      = 500

	StatusNameMaxLen = 50
)

// Entity names used in not-found errors.
const (
	EntityCompany        = "Company"
	EntityJobApplication = "JobApplication"
	EntityStatus         = "JobApplicationStatus"
	EntityUser           = "User"
)

// Now is the clock used for audit fields.
var Now = func() time.Time { return time.Now().UTC() }

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

// Company is an employer the user applies to.
// Invariants: Name is not blank; UpdatedAt is nil until the first update.
type Company struct {
	ID        uuid.UUID
	Name      string
	Industry  string
	Location  string
	Website   string
	Notes     string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// NewCompany builds a new Company with a fresh id.
func NewCompany(name, industry, location, website, notes string) (*Company, error) {
	if isBlank(name) {
		return nil, NewDomainError("Company name cannot be empty")
	}
	return &Company{
		ID:        uuid.New(),
		Name:      name,
		Industry:  industry,
		Location:  location,
		Website:   website,
		Notes:     notes,
		CreatedAt: Now(),
	}, nil
}

// UpdateDetails replaces every mutable field and stamps UpdatedAt.
func (c *Company) UpdateDetails(name, industry, location, website, notes string) error {
	if isBlank(name) {
		return NewDomainError("Company name cannot be empty")
	}
	c.Name = name
	c.Industry = industry
	c.Location = location
	c.Website = website
	c.Notes = notes
	now := Now()
	c.UpdatedAt = &now
	return nil
}

// RestoreCompany rebuilds a stored Company without re-running invariants.
// Only storage adapters should call it.
func RestoreCompany(id uuid.UUID, name, industry, location, website, notes string, createdAt time.Time, updatedAt *time.Time) *Company {
	return &Company{
		ID:        id,
		Name:      name,
		Industry:  industry,
		Location:  location,
		Website:   website,
		Notes:     notes,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// JobApplicationStatus is a free-form stage label; any application may
// move to any status.
type JobApplicationStatus struct {
	ID           uuid.UUID
	Name         string
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// NewJobApplicationStatus builds a new status with a fresh id.
func NewJobApplicationStatus(name string, displayOrder int) (*JobApplicationStatus, error) {
	if isBlank(name) {
		return nil, NewDomainError("Status name cannot be empty")
	}
	return &JobApplicationStatus{ID: uuid.New(), Name: name, DisplayOrder: displayOrder, CreatedAt: Now()}, nil
}

// UpdateDetails renames or reorders the status.
func (s *JobApplicationStatus) UpdateDetails(name string, displayOrder int) error {
	if isBlank(name) {
		return NewDomainError("Status name cannot be empty")
	}
	s.Name = name
	s.DisplayOrder = displayOrder
	now := Now()
	s.UpdatedAt = &now
	return nil
}

// RestoreJobApplicationStatus rebuilds a stored status.
func RestoreJobApplicationStatus(id uuid.UUID, name string, displayOrder int, createdAt time.Time, updatedAt *time.Time) *JobApplicationStatus {
	return &JobApplicationStatus{ID: id, Name: name, DisplayOrder: displayOrder, CreatedAt: createdAt, UpdatedAt: updatedAt}
}

// JobApplication tracks one application to a company.
// Invariants: Position is not blank; CompanyID and StatusID are set.
type JobApplication struct {
	ID          uuid.UUID
	Position    string
	Description string
	AppliedDate *time.Time
	Location    string
	JobURL      string
	CoverLetter string
	Notes       string
	CompanyID   uuid.UUID
	StatusID    uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// JobApplicationFields is the full mutable field set of a JobApplication.
type JobApplicationFields struct {
	Position    string
	Description string
	AppliedDate *time.Time
	Location    string
	JobURL      string
	CoverLetter string
	Notes       string
	CompanyID   uuid.UUID
	StatusID    uuid.UUID
}

func (f JobApplicationFields) check() error {
	switch {
	case isBlank(f.Position):
		return NewDomainError("Job application position cannot be empty")
	case f.CompanyID == uuid.Nil:
		return NewDomainError("CompanyId cannot be empty")
	case f.StatusID == uuid.Nil:
		return NewDomainError("JobApplicationStatusId cannot be empty")
	}
	return nil
}

// NewJobApplication builds a new application with a fresh id.
func NewJobApplication(f JobApplicationFields) (*JobApplication, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	ja := &JobApplication{ID: uuid.New(), CreatedAt: Now()}
	ja.apply(f)
	return ja, nil
}

// UpdateDetails replaces every mutable field and stamps UpdatedAt.
func (ja *JobApplication) UpdateDetails(f JobApplicationFields) error {
	if err := f.check(); err != nil {
		return err
	}
	ja.apply(f)
	now := Now()
	ja.UpdatedAt = &now
	return nil
}

func (ja *JobApplication) apply(f JobApplicationFields) {
	ja.Position = f.Position
	ja.Description = f.Description
	ja.AppliedDate = f.AppliedDate
	ja.Location = f.Location
	ja.JobURL = f.JobURL
	ja.CoverLetter = f.CoverLetter
	ja.Notes = f.Notes
	ja.CompanyID = f.CompanyID
	ja.StatusID = f.StatusID
}

// RestoreJobApplication rebuilds a stored application.
func RestoreJobApplication(id uuid.UUID, f JobApplicationFields, createdAt time.Time, updatedAt *time.Time) *JobApplication {
	ja := &JobApplication{ID: id, CreatedAt: createdAt, UpdatedAt: updatedAt}
	ja.apply(f)
	return ja
}

// JobApplicationDetails is the read model joining an application with the
// names of its company and status.
type JobApplicationDetails struct {
	JobApplication
	CompanyName string
	StatusName  string
}
