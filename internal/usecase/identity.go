package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/fairyhunter13/jobtrackr/internal/domain"
	obsctx "github.com/fairyhunter13/jobtrackr/internal/observability"
)

// Client-facing identity failure messages.
const (
	MsgEmailInUse         = "Email already in use."
	MsgInvalidCredentials = "Invalid email or password."
	MsgLockedOut          = "Account is locked due to multiple failed login attempts. Try again later."
	MsgNotAllowed         = "Email not allowed. Try again later."
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
}

// TokenIssuer mints access and refresh tokens.
type TokenIssuer interface {
	AccessToken(u *domain.User) (string, error)
	RefreshToken() (string, error)
}

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	UserName  string `json:"userName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// LogValue keeps the password out of logs.
func (r RegisterRequest) LogValue() slog.Value {
	return slog.GroupValue(slog.String("email", r.Email), slog.String("userName", r.UserName))
}

// LoginRequest is the sign-in payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LogValue keeps the password out of logs.
func (r LoginRequest) LogValue() slog.Value {
	return slog.GroupValue(slog.String("email", r.Email))
}

// TokenPair is returned by a successful login.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// PasswordPolicy lists the password requirements.
type PasswordPolicy struct {
	MinLength          int
	RequireDigit       bool
	RequireLowercase   bool
	RequireUppercase   bool
	RequireNonAlphanum bool
}

// DefaultPasswordPolicy requires 8 characters with a digit, a lowercase and
// an uppercase letter, and a symbol.
var DefaultPasswordPolicy = PasswordPolicy{MinLength: 8, RequireDigit: true, RequireLowercase: true, RequireUppercase: true, RequireNonAlphanum: true}

// Check returns one message per unmet requirement.
func (p PasswordPolicy) Check(password string) []string {
	var hasDigit, hasLower, hasUpper, hasOther bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case !unicode.IsLetter(r):
			hasOther = true
		}
	}
	var out []string
	if len([]rune(password)) < p.MinLength {
		out = append(out, fmt.Sprintf("Passwords must be at least %d characters.", p.MinLength))
	}
	if p.RequireNonAlphanum && !hasOther {
		out = append(out, "Passwords must have at least one non alphanumeric character.")
	}
	if p.RequireDigit && !hasDigit {
		out = append(out, "Passwords must have at least one digit ('0'-'9').")
	}
	if p.RequireLowercase && !hasLower {
		out = append(out, "Passwords must have at least one lowercase ('a'-'z').")
	}
	if p.RequireUppercase && !hasUpper {
		out = append(out, "Passwords must have at least one uppercase ('A'-'Z').")
	}
	return out
}

// IdentityService registers users and signs them in. Expected failures are
// reported through domain.Result; errors mean infrastructure failed.
type IdentityService struct {
	Users                 domain.UserRepository
	Tokens                domain.RefreshTokenRepository
	Attempts              domain.LoginAttemptTracker
	Hasher                PasswordHasher
	Issuer                TokenIssuer
	Events                domain.EventPublisher
	Policy                PasswordPolicy
	RefreshTTL            time.Duration
	RequireConfirmedEmail bool
	// DecoyHash is verified against when the email is unknown so both
	// failure paths pay for one hash. Empty skips it.
	DecoyHash string
}

// Register creates a user with the default role and returns its id.
func (s IdentityService) Register(ctx context.Context, req RegisterRequest) (domain.Result[uuid.UUID], error) {
	taken, err := s.Users.EmailTaken(ctx, req.Email)
	if err != nil {
		return domain.Result[uuid.UUID]{}, fmt.Errorf("op=identity.register: %w", err)
	}
	if taken {
		return domain.Failure[uuid.UUID](MsgEmailInUse), nil
	}

	var problems []string
	if err := getValidator().Var(req.Email, "required,email"); err != nil {
		problems = append(problems, fmt.Sprintf("Email '%s' is invalid.", req.Email))
	}
	if isBlank(req.UserName) {
		problems = append(problems, fmt.Sprintf("Username '%s' is invalid, can only contain letters or digits.", req.UserName))
	} else {
		nameTaken, err := s.Users.UserNameTaken(ctx, req.UserName)
		if err != nil {
			return domain.Result[uuid.UUID]{}, fmt.Errorf("op=identity.register: %w", err)
		}
		if nameTaken {
			problems = append(problems, fmt.Sprintf("Username '%s' is already taken.", req.UserName))
		}
	}
	problems = append(problems, s.Policy.Check(req.Password)...)
	if len(problems) > 0 {
		return domain.Failure[uuid.UUID](strings.Join(problems, " ")), nil
	}

	hash, err := s.Hasher.Hash(req.Password)
	if err != nil {
		return domain.Result[uuid.UUID]{}, fmt.Errorf("op=identity.hash: %w", err)
	}
	u, err := domain.NewUser(req.Email, req.UserName, hash, req.FirstName, req.LastName)
	if err != nil {
		return domain.Failure[uuid.UUID](err.Error()), nil
	}
	u.AddRole(domain.RoleUser)
	if err := s.Users.Add(ctx, u); err != nil {
		var de *domain.DomainError
		if errors.As(err, &de) {
			return domain.Failure[uuid.UUID](de.Message), nil
		}
		return domain.Result[uuid.UUID]{}, fmt.Errorf("op=identity.register: %w", err)
	}
	publish(ctx, s.Events, domain.EventUserRegistered, u.ID, map[string]string{"userName": u.UserName})
	return domain.Success(u.ID), nil
}

// Login verifies credentials and issues a token pair. Unknown emails and
// wrong passwords share one message.
func (s IdentityService) Login(ctx context.Context, req LoginRequest) (domain.Result[TokenPair], error) {
	lg := obsctx.LoggerFromContext(ctx)
	u, err := s.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, domain.ErrNotFound) {
		if s.DecoyHash != "" {
			_ = s.Hasher.Verify(req.Password, s.DecoyHash)
		}
		return domain.Failure[TokenPair](MsgInvalidCredentials), nil
	}
	if err != nil {
		return domain.Result[TokenPair]{}, fmt.Errorf("op=identity.login: %w", err)
	}

	if s.RequireConfirmedEmail && !u.EmailConfirmed {
		return domain.Failure[TokenPair](MsgNotAllowed), nil
	}
	key := u.ID.String()
	lockedFor, err := s.Attempts.LockedFor(ctx, key)
	if err != nil {
		return domain.Result[TokenPair]{}, fmt.Errorf("op=identity.lockout: %w", err)
	}
	if lockedFor > 0 {
		return domain.Failure[TokenPair](MsgLockedOut), nil
	}

	if !s.Hasher.Verify(req.Password, u.PasswordHash) {
		locked, err := s.Attempts.RecordFailure(ctx, key)
		if err != nil {
			return domain.Result[TokenPair]{}, fmt.Errorf("op=identity.lockout: %w", err)
		}
		if locked {
			lg.Warn("account locked out", slog.String("user_id", key))
			return domain.Failure[TokenPair](MsgLockedOut), nil
		}
		return domain.Failure[TokenPair](MsgInvalidCredentials), nil
	}
	if err := s.Attempts.Reset(ctx, key); err != nil {
		return domain.Result[TokenPair]{}, fmt.Errorf("op=identity.lockout: %w", err)
	}

	access, err := s.Issuer.AccessToken(u)
	if err != nil {
		return domain.Result[TokenPair]{}, fmt.Errorf("op=identity.access_token: %w", err)
	}
	refresh, err := s.Issuer.RefreshToken()
	if err != nil {
		return domain.Result[TokenPair]{}, fmt.Errorf("op=identity.refresh_token: %w", err)
	}
	rt, err := domain.NewRefreshToken(u.ID, refresh, s.RefreshTTL)
	if err != nil {
		return domain.Result[TokenPair]{}, fmt.Errorf("op=identity.refresh_token: %w", err)
	}
	if err := s.Tokens.Add(ctx, rt); err != nil {
		return domain.Result[TokenPair]{}, fmt.Errorf("op=identity.store_refresh_token: %w", err)
	}
	return domain.Success(TokenPair{AccessToken: access, RefreshToken: refresh}), nil
}
