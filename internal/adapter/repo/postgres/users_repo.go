package postgres

import (
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/jobtrackr/internal/domain"
)

// UserRepo persists accounts. Email and user name lookups ignore case.
type UserRepo struct{ Pool PgxPool }

// NewUserRepo constructs a UserRepo with the given pool.
func NewUserRepo(p PgxPool) *UserRepo { return &UserRepo{Pool: p} }

// Add inserts a new user.
func (r *UserRepo) Add(ctx domain.Context, u *domain.User) error {
	ctx, span := startSpan(ctx, "users", "Add", "INSERT")
	defer span.End()
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	q := `INSERT INTO users (id, email, user_name, password_hash, first_name, last_name, roles, email_confirmed, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err := r.Pool.Exec(ctx, q, u.ID, u.Email, u.UserName, u.PasswordHash, u.FirstName, u.LastName,
		roles, u.EmailConfirmed, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return wrapErr("user.add", err)
	}
	return nil
}

// GetByEmail loads a user by email.
func (r *UserRepo) GetByEmail(ctx domain.Context, email string) (*domain.User, error) {
	ctx, span := startSpan(ctx, "users", "GetByEmail", "SELECT")
	defer span.End()
	q := `SELECT id, email, user_name, password_hash, first_name, last_name, roles, email_confirmed, created_at, updated_at
		FROM users WHERE lower(email)=lower($1)`
	var (
		id                                        uuid.UUID
		mail, userName, hash, firstName, lastName string
		roles                                     []string
		confirmed                                 bool
		createdAt                                 time.Time
		updatedAt                                 *time.Time
	)
	err := r.Pool.QueryRow(ctx, q, email).Scan(&id, &mail, &userName, &hash, &firstName, &lastName,
		&roles, &confirmed, &createdAt, &updatedAt)
	if err != nil {
		return nil, wrapErr("user.get_by_email", err)
	}
	return domain.RestoreUser(id, mail, userName, hash, firstName, lastName, roles, confirmed, createdAt, updatedAt), nil
}

// EmailTaken reports whether any user registered email.
func (r *UserRepo) EmailTaken(ctx domain.Context, email string) (bool, error) {
	ctx, span := startSpan(ctx, "users", "EmailTaken", "SELECT")
	defer span.End()
	return exists(ctx, r.Pool, "user.email_taken", `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email)=lower($1))`, email)
}

// UserNameTaken reports whether any user registered userName.
func (r *UserRepo) UserNameTaken(ctx domain.Context, userName string) (bool, error) {
	ctx, span := startSpan(ctx, "users", "UserNameTaken", "SELECT")
	defer span.End()
	return exists(ctx, r.Pool, "user.user_name_taken", `SELECT EXISTS (SELECT 1 FROM users WHERE lower(user_name)=lower($1))`, userName)
}
