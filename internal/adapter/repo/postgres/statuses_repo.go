package postgres

import (
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/jobtrackr/internal/domain"
)

// StatusRepo persists job application statuses.
type StatusRepo struct{ Pool PgxPool }

// NewStatusRepo constructs a StatusRepo with the given pool.
func NewStatusRepo(p PgxPool) *StatusRepo { return &StatusRepo{Pool: p} }

// Add inserts a new status.
func (r *StatusRepo) Add(ctx domain.Context, s *domain.JobApplicationStatus) error {
	ctx, span := startSpan(ctx, "job_application_statuses", "Add", "INSERT")
	defer span.End()
	q := `INSERT INTO job_application_statuses (id, name, display_order, created_at, updated_at) VALUES ($1,$2,$3,$4,$5)`
	if _, err := r.Pool.Exec(ctx, q, s.ID, s.Name, s.DisplayOrder, s.CreatedAt, s.UpdatedAt); err != nil {
		return wrapErr("status.add", err)
	}
	return nil
}

// List returns every status ordered for display.
func (r *StatusRepo) List(ctx domain.Context) ([]domain.JobApplicationStatus, error) {
	ctx, span := startSpan(ctx, "job_application_statuses", "List", "SELECT")
	defer span.End()
	rows, err := r.Pool.Query(ctx, `SELECT id, name, display_order, created_at, updated_at FROM job_application_statuses ORDER BY display_order, name`)
	if err != nil {
		return nil, wrapErr("status.list", err)
	}
	defer rows.Close()
	out := []domain.JobApplicationStatus{}
	for rows.Next() {
		var (
			id           uuid.UUID
			name         string
			displayOrder int
			createdAt    time.Time
			updatedAt    *time.Time
		)
		if err := rows.Scan(&id, &name, &displayOrder, &createdAt, &updatedAt); err != nil {
			return nil, wrapErr("status.list", err)
		}
		out = append(out, *domain.RestoreJobApplicationStatus(id, name, displayOrder, createdAt, updatedAt))
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("status.list", err)
	}
	return out, nil
}

// Exists reports whether a status with id is stored.
func (r *StatusRepo) Exists(ctx domain.Context, id uuid.UUID) (bool, error) {
	ctx, span := startSpan(ctx, "job_application_statuses", "Exists", "SELECT")
	defer span.End()
	return exists(ctx, r.Pool, "status.exists", `SELECT EXISTS (SELECT 1 FROM job_application_statuses WHERE id=$1)`, id)
}

// NameTaken reports whether any status uses name.
func (r *StatusRepo) NameTaken(ctx domain.Context, name string) (bool, error) {
	ctx, span := startSpan(ctx, "job_application_statuses", "NameTaken", "SELECT")
	defer span.End()
	return exists(ctx, r.Pool, "status.name_taken", `SELECT EXISTS (SELECT 1 FROM job_application_statuses WHERE name=$1)`, name)
}
