package domain

import (
	"time"

	"github.com/google/uuid"
)

// Repositories (ports)
//
// Get methods return an error wrapping ErrNotFound when the row is absent.
// Each write is atomic for the aggregate it touches.

type CompanyRepository interface {
	Add(ctx Context, c *Company) error
	Update(ctx Context, c *Company) error
	Delete(ctx Context, id uuid.UUID) error
	Get(ctx Context, id uuid.UUID) (*Company, error)
	List(ctx Context) ([]Company, error)
	Exists(ctx Context, id uuid.UUID) (bool, error)
	// NameTaken reports whether a company other than exceptID uses name.
	// Pass uuid.Nil to check against every company.
	NameTaken(ctx Context, name string, exceptID uuid.UUID) (bool, error)
}

type JobApplicationRepository interface {
	Add(ctx Context, ja *JobApplication) error
	Update(ctx Context, ja *JobApplication) error
	Delete(ctx Context, id uuid.UUID) error
	Get(ctx Context, id uuid.UUID) (*JobApplication, error)
	GetDetails(ctx Context, id uuid.UUID) (JobApplicationDetails, error)
	ListDetails(ctx Context) ([]JobApplicationDetails, error)
}

type StatusRepository interface {
	Add(ctx Context, s *JobApplicationStatus) error
	List(ctx Context) ([]JobApplicationStatus, error)
	Exists(ctx Context, id uuid.UUID) (bool, error)
	NameTaken(ctx Context, name string) (bool, error)
}

type UserRepository interface {
	Add(ctx Context, u *User) error
	GetByEmail(ctx Context, email string) (*User, error)
	EmailTaken(ctx Context, email string) (bool, error)
	UserNameTaken(ctx Context, userName string) (bool, error)
}

type RefreshTokenRepository interface {
	Add(ctx Context, t *RefreshToken) error
	// DeleteExpired removes tokens that expired at or before cutoff and returns how many.
	DeleteExpired(ctx Context, cutoff time.Time) (int64, error)
}

// LoginAttemptTracker (port) counts failed sign-ins per account and locks
// the account out once the configured threshold is reached.
type LoginAttemptTracker interface {
	// LockedFor returns the remaining lockout, or zero when not locked.
	LockedFor(ctx Context, key string) (time.Duration, error)
	// RecordFailure counts a failure and reports whether it triggered a lockout.
	RecordFailure(ctx Context, key string) (bool, error)
	Reset(ctx Context, key string) error
}

// Event types
const (
	EventCompanyCreated        = "company.created"
	EventCompanyUpdated        = "company.updated"
	EventCompanyDeleted        = "company.deleted"
	EventJobApplicationCreated = "job_application.created"
	EventJobApplicationUpdated = "job_application.updated"
	EventJobApplicationDeleted = "job_application.deleted"
	EventUserRegistered        = "user.registered"
)

// Event is a committed change announced to other services.
type Event struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	AggregateID string    `json:"aggregate_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Payload     any       `json:"payload,omitempty"`
}

// NewEvent stamps a new event with a fresh id.
func NewEvent(eventType string, aggregateID uuid.UUID, payload any) Event {
	return Event{ID: uuid.NewString(), Type: eventType, AggregateID: aggregateID.String(), OccurredAt: Now(), Payload: payload}
}

// EventPublisher (port)
type EventPublisher interface {
	Publish(ctx Context, e Event) error
}
