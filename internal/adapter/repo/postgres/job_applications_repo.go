package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fairyhunter13/jobtrackr/internal/domain"
)

// JobApplicationRepo persists job applications and reads them joined with
// their company and status names.
type JobApplicationRepo struct{ Pool PgxPool }

// NewJobApplicationRepo constructs a JobApplicationRepo with the given pool.
func NewJobApplicationRepo(p PgxPool) *JobApplicationRepo { return &JobApplicationRepo{Pool: p} }

const jobApplicationColumns = `id, position, description, applied_date, location, job_url, cover_letter, notes, company_id, status_id, created_at, updated_at`

const jobApplicationDetailsQuery = `SELECT ja.id, ja.position, ja.description, ja.applied_date, ja.location, ja.job_url,
	ja.cover_letter, ja.notes, ja.company_id, ja.status_id, ja.created_at, ja.updated_at, c.name, s.name
	FROM job_applications ja
	JOIN companies c ON c.id = ja.company_id
	JOIN job_application_statuses s ON s.id = ja.status_id`

// Add inserts a new application.
func (r *JobApplicationRepo) Add(ctx domain.Context, ja *domain.JobApplication) error {
	ctx, span := startSpan(ctx, "job_applications", "Add", "INSERT")
	defer span.End()
	q := `INSERT INTO job_applications (` + jobApplicationColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	_, err := r.Pool.Exec(ctx, q, ja.ID, ja.Position, ja.Description, ja.AppliedDate, ja.Location, ja.JobURL,
		ja.CoverLetter, ja.Notes, ja.CompanyID, ja.StatusID, ja.CreatedAt, ja.UpdatedAt)
	if err != nil {
		return wrapErr("job_application.add", err)
	}
	return nil
}

// Update overwrites every mutable column of an existing application.
func (r *JobApplicationRepo) Update(ctx domain.Context, ja *domain.JobApplication) error {
	ctx, span := startSpan(ctx, "job_applications", "Update", "UPDATE")
	defer span.End()
	q := `UPDATE job_applications SET position=$2, description=$3, applied_date=$4, location=$5, job_url=$6,
		cover_letter=$7, notes=$8, company_id=$9, status_id=$10, updated_at=$11 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, ja.ID, ja.Position, ja.Description, ja.AppliedDate, ja.Location, ja.JobURL,
		ja.CoverLetter, ja.Notes, ja.CompanyID, ja.StatusID, ja.UpdatedAt)
	if err != nil {
		return wrapErr("job_application.update", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=job_application.update: %w", domain.ErrNotFound)
	}
	return nil
}

// Delete removes an application.
func (r *JobApplicationRepo) Delete(ctx domain.Context, id uuid.UUID) error {
	ctx, span := startSpan(ctx, "job_applications", "Delete", "DELETE")
	defer span.End()
	tag, err := r.Pool.Exec(ctx, `DELETE FROM job_applications WHERE id=$1`, id)
	if err != nil {
		return wrapDeleteErr("job_application.delete", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=job_application.delete: %w", domain.ErrNotFound)
	}
	return nil
}

// Get loads an application by id.
func (r *JobApplicationRepo) Get(ctx domain.Context, id uuid.UUID) (*domain.JobApplication, error) {
	ctx, span := startSpan(ctx, "job_applications", "Get", "SELECT")
	defer span.End()
	row := r.Pool.QueryRow(ctx, `SELECT `+jobApplicationColumns+` FROM job_applications WHERE id=$1`, id)
	ja, err := scanJobApplication(row)
	if err != nil {
		return nil, wrapErr("job_application.get", err)
	}
	return ja, nil
}

// GetDetails loads one application with its company and status names.
func (r *JobApplicationRepo) GetDetails(ctx domain.Context, id uuid.UUID) (domain.JobApplicationDetails, error) {
	ctx, span := startSpan(ctx, "job_applications", "GetDetails", "SELECT")
	defer span.End()
	d, err := scanDetails(r.Pool.QueryRow(ctx, jobApplicationDetailsQuery+` WHERE ja.id=$1`, id))
	if err != nil {
		return domain.JobApplicationDetails{}, wrapErr("job_application.get_details", err)
	}
	return d, nil
}

// ListDetails returns every application in creation order.
func (r *JobApplicationRepo) ListDetails(ctx domain.Context) ([]domain.JobApplicationDetails, error) {
	ctx, span := startSpan(ctx, "job_applications", "ListDetails", "SELECT")
	defer span.End()
	rows, err := r.Pool.Query(ctx, jobApplicationDetailsQuery+` ORDER BY ja.created_at, ja.id`)
	if err != nil {
		return nil, wrapErr("job_application.list_details", err)
	}
	defer rows.Close()
	out := []domain.JobApplicationDetails{}
	for rows.Next() {
		d, err := scanDetails(rows)
		if err != nil {
			return nil, wrapErr("job_application.list_details", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("job_application.list_details", err)
	}
	return out, nil
}

// scanJobApplication reads the application columns followed by extra.
func scanJobApplication(row pgx.Row, extra ...any) (*domain.JobApplication, error) {
	var (
		id        uuid.UUID
		f         domain.JobApplicationFields
		createdAt time.Time
		updatedAt *time.Time
	)
	dest := append([]any{
		&id, &f.Position, &f.Description, &f.AppliedDate, &f.Location, &f.JobURL,
		&f.CoverLetter, &f.Notes, &f.CompanyID, &f.StatusID, &createdAt, &updatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return domain.RestoreJobApplication(id, f, createdAt, updatedAt), nil
}

func scanDetails(row pgx.Row) (domain.JobApplicationDetails, error) {
	var d domain.JobApplicationDetails
	ja, err := scanJobApplication(row, &d.CompanyName, &d.StatusName)
	if err != nil {
		return domain.JobApplicationDetails{}, err
	}
	d.JobApplication = *ja
	return d, nil
}
