package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fairyhunter13/jobtrackr/internal/domain"
)

// CompanyRepo persists companies.
type CompanyRepo struct{ Pool PgxPool }

// NewCompanyRepo constructs a CompanyRepo with the given pool.
func NewCompanyRepo(p PgxPool) *CompanyRepo { return &CompanyRepo{Pool: p} }

const companyColumns = `id, name, industry, location, website, notes, created_at, updated_at`

// Add inserts a new company.
func (r *CompanyRepo) Add(ctx domain.Context, c *domain.Company) error {
	ctx, span := startSpan(ctx, "companies", "Add", "INSERT")
	defer span.End()
	q := `INSERT INTO companies (` + companyColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	if _, err := r.Pool.Exec(ctx, q, c.ID, c.Name, c.Industry, c.Location, c.Website, c.Notes, c.CreatedAt, c.UpdatedAt); err != nil {
		return wrapErr("company.add", err)
	}
	return nil
}

// Update overwrites every mutable column of an existing company.
func (r *CompanyRepo) Update(ctx domain.Context, c *domain.Company) error {
	ctx, span := startSpan(ctx, "companies", "Update", "UPDATE")
	defer span.End()
	q := `UPDATE companies SET name=$2, industry=$3, location=$4, website=$5, notes=$6, updated_at=$7 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, c.ID, c.Name, c.Industry, c.Location, c.Website, c.Notes, c.UpdatedAt)
	if err != nil {
		return wrapErr("company.update", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=company.update: %w", domain.ErrNotFound)
	}
	return nil
}

// Delete removes a company. The schema restricts deleting companies that
// still have job applications.
func (r *CompanyRepo) Delete(ctx domain.Context, id uuid.UUID) error {
	ctx, span := startSpan(ctx, "companies", "Delete", "DELETE")
	defer span.End()
	tag, err := r.Pool.Exec(ctx, `DELETE FROM companies WHERE id=$1`, id)
	if err != nil {
		return wrapDeleteErr("company.delete", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=company.delete: %w", domain.ErrNotFound)
	}
	return nil
}

// Get loads a company by id.
func (r *CompanyRepo) Get(ctx domain.Context, id uuid.UUID) (*domain.Company, error) {
	ctx, span := startSpan(ctx, "companies", "Get", "SELECT")
	defer span.End()
	row := r.Pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id=$1`, id)
	c, err := scanCompany(row)
	if err != nil {
		return nil, wrapErr("company.get", err)
	}
	return c, nil
}

// List returns every company ordered by name.
func (r *CompanyRepo) List(ctx domain.Context) ([]domain.Company, error) {
	ctx, span := startSpan(ctx, "companies", "List", "SELECT")
	defer span.End()
	rows, err := r.Pool.Query(ctx, `SELECT `+companyColumns+` FROM companies ORDER BY name, id`)
	if err != nil {
		return nil, wrapErr("company.list", err)
	}
	defer rows.Close()
	out := []domain.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, wrapErr("company.list", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("company.list", err)
	}
	return out, nil
}

// Exists reports whether a company with id is stored.
func (r *CompanyRepo) Exists(ctx domain.Context, id uuid.UUID) (bool, error) {
	ctx, span := startSpan(ctx, "companies", "Exists", "SELECT")
	defer span.End()
	return exists(ctx, r.Pool, "company.exists", `SELECT EXISTS (SELECT 1 FROM companies WHERE id=$1)`, id)
}

// NameTaken reports whether a company other than exceptID uses name.
func (r *CompanyRepo) NameTaken(ctx domain.Context, name string, exceptID uuid.UUID) (bool, error) {
	ctx, span := startSpan(ctx, "companies", "NameTaken", "SELECT")
	defer span.End()
	return exists(ctx, r.Pool, "company.name_taken", `SELECT EXISTS (SELECT 1 FROM companies WHERE name=$1 AND id<>$2)`, name, exceptID)
}

func scanCompany(row pgx.Row) (*domain.Company, error) {
	var (
		id                                       uuid.UUID
		name, industry, location, website, notes string
		createdAt                                time.Time
		updatedAt                                *time.Time
	)
	if err := row.Scan(&id, &name, &industry, &location, &website, &notes, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return domain.RestoreCompany(id, name, industry, location, website, notes, createdAt, updatedAt), nil
}
