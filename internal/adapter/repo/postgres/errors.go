package postgres

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fairyhunter13/jobtrackr/internal/domain"
)

const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
)

const msgReferenced = "The record is referenced by other records."

// Messages by constraint name, as declared in the migrations.
var uniqueMessages = map[string]string{
	"uq_companies_name":                "A company with this name already exists.",
	"uq_job_application_statuses_name": "Status name already exists.",
	"uq_users_email":                   "Email already in use.",
	"uq_users_user_name":               "Username is already taken.",
	"uq_refresh_tokens_token":          "Refresh token already exists.",
}

// Referenced entity by foreign key name.
var foreignKeyEntities = map[string]string{
	"fk_job_applications_company": domain.EntityCompany,
	"fk_job_applications_status":  domain.EntityStatus,
	"fk_refresh_tokens_user":      domain.EntityUser,
}

// Delete refusals by foreign key name.
var restrictMessages = map[string]string{
	"fk_job_applications_company": "Company has job applications and cannot be deleted.",
	"fk_job_applications_status":  "Status has job applications and cannot be deleted.",
}

// fkDetail matches `Key (company_id)=(<uuid>) is not present in table "companies".`
var fkDetail = regexp.MustCompile(`Key \([^)]*\)=\(([^)]*)\)`)

// wrapErr tags err with op and translates missing rows and constraint
// violations into the domain taxonomy.
func wrapErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("op=%s: %w", op, domain.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if mapped := fromPgError(pgErr); mapped != nil {
			return fmt.Errorf("op=%s: %w", op, mapped)
		}
	}
	return fmt.Errorf("op=%s: %w", op, err)
}

// wrapDeleteErr is wrapErr for deletes. A foreign key violation raised by a
// delete means the row is still referenced, whatever table Postgres names.
func wrapDeleteErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation {
		msg, ok := restrictMessages[pgErr.ConstraintName]
		if !ok {
			msg = msgReferenced
		}
		return fmt.Errorf("op=%s: %w", op, &domain.DomainError{Message: msg, Err: pgErr})
	}
	return wrapErr(op, err)
}

func fromPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case codeUniqueViolation:
		msg, ok := uniqueMessages[pgErr.ConstraintName]
		if !ok {
			msg = "A record with the same key already exists."
		}
		return &domain.DomainError{Message: msg, Err: pgErr}
	case codeForeignKeyViolation:
		if entity, ok := foreignKeyEntities[pgErr.ConstraintName]; ok {
			var key any = "unknown"
			if m := fkDetail.FindStringSubmatch(pgErr.Detail); m != nil {
				key = m[1]
			}
			return domain.NewNotFoundError(entity, key)
		}
		return &domain.DomainError{Message: msgReferenced, Err: pgErr}
	}
	return nil
}
