package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Roles
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// User is an account able to sign in.
type User struct {
	ID             uuid.UUID
	Email          string
	UserName       string
	PasswordHash   string
	FirstName      string
	LastName       string
	Roles          []string
	EmailConfirmed bool
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// NewUser builds a user from an already hashed password.
func NewUser(email, userName, passwordHash, firstName, lastName string) (*User, error) {
	switch {
	case isBlank(email):
		return nil, NewDomainError("Email cannot be empty")
	case isBlank(userName):
		return nil, NewDomainError("Username cannot be empty")
	case passwordHash == "":
		return nil, NewDomainError("Password hash cannot be empty")
	}
	return &User{
		ID:           uuid.New(),
		Email:        email,
		UserName:     userName,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		CreatedAt:    Now(),
	}, nil
}

// RestoreUser rebuilds a stored user without re-running invariants.
func RestoreUser(id uuid.UUID, email, userName, passwordHash, firstName, lastName string, roles []string, emailConfirmed bool, createdAt time.Time, updatedAt *time.Time) *User {
	return &User{
		ID:             id,
		Email:          email,
		UserName:       userName,
		PasswordHash:   passwordHash,
		FirstName:      firstName,
		LastName:       lastName,
		Roles:          roles,
		EmailConfirmed: emailConfirmed,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}
}

// AddRole grants a role once.
func (u *User) AddRole(role string) {
	if !slices.Contains(u.Roles, role) {
		u.Roles = append(u.Roles, role)
	}
}

// RefreshToken is an opaque long-lived credential owned by one user.
type RefreshToken struct {
	ID        uuid.UUID
	Token     string
	UserID    uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewRefreshToken issues a token record that expires after ttl.
func NewRefreshToken(userID uuid.UUID, token string, ttl time.Duration) (*RefreshToken, error) {
	switch {
	case userID == uuid.Nil:
		return nil, NewDomainError("UserId cannot be empty")
	case token == "":
		return nil, NewDomainError("Token cannot be empty")
	case ttl <= 0:
		return nil, NewDomainError("Token lifetime must be positive")
	}
	now := Now()
	return &RefreshToken{ID: uuid.New(), Token: token, UserID: userID, ExpiresAt: now.Add(ttl), CreatedAt: now}, nil
}

// Expired reports whether the token is past its expiry at t.
func (t RefreshToken) Expired(at time.Time) bool { return !at.Before(t.ExpiresAt) }
