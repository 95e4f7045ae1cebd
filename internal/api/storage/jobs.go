package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cuongbtq/jobboard/internal/api/domain"
	"github.com/cuongbtq/jobboard/internal/api/model"
	"github.com/lib/pq"
)

type JobFilter struct {
	Search   string
	PageSize int
	Cursor   *JobCursor
}

type JobCursor struct {
	CreatedAt time.Time
	JobID     string
}

const catalogColumns = `
	j.id, j.company_id, j.title, j.description, j.required_skills, j.location,
	j.employment_type, j.salary_range, j.status, j.created_at, j.updated_at,
	c.company_name, c.location AS company_location, c.category AS company_category
`

// ListActiveJobs lists active jobs of approved companies, newest first,
// fetching one row beyond PageSize so callers can tell whether more exist
func (s *Storage) ListActiveJobs(ctx context.Context, filter JobFilter) ([]model.CatalogJob, error) {
	query := `
		SELECT ` + catalogColumns + `
		FROM jobs j
		JOIN companies c ON c.id = j.company_id
		WHERE j.status = 'active' AND c.status = 'approved'
	`
	args := []interface{}{}
	argIdx := 1

	if filter.Search != "" {
		query += fmt.Sprintf(` AND (j.title ILIKE $%[1]d OR c.company_name ILIKE $%[1]d
			OR EXISTS (SELECT 1 FROM unnest(j.required_skills) AS skill WHERE skill ILIKE $%[1]d))`, argIdx)
		args = append(args, likePattern(filter.Search))
		argIdx++
	}

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (j.created_at, j.id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.JobID)
		argIdx += 2
	}

	query += " ORDER BY j.created_at DESC, j.id DESC"

	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filter.PageSize+1)

	var jobs []model.CatalogJob
	if err := s.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}

// GetActiveJob returns an active job of an approved company
func (s *Storage) GetActiveJob(ctx context.Context, jobID string) (*model.CatalogJob, error) {
	query := `
		SELECT ` + catalogColumns + `
		FROM jobs j
		JOIN companies c ON c.id = j.company_id
		WHERE j.id = $1 AND j.status = 'active' AND c.status = 'approved'
	`

	var job model.CatalogJob
	if err := s.db.GetContext(ctx, &job, query, jobID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

func (s *Storage) CreateJob(ctx context.Context, job *model.Job) error {
	query := `
		INSERT INTO jobs (
			id, company_id, title, description, required_skills,
			location, employment_type, salary_range, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		job.ID,
		job.CompanyID,
		job.Title,
		job.Description,
		pq.StringArray(job.RequiredSkills),
		job.Location,
		job.EmploymentType,
		job.SalaryRange,
		job.Status,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

// ListCompanyJobs lists every job of a company with its application count
func (s *Storage) ListCompanyJobs(ctx context.Context, companyID string) ([]model.CompanyJob, error) {
	query := `
		SELECT
			j.id, j.company_id, j.title, j.description, j.required_skills, j.location,
			j.employment_type, j.salary_range, j.status, j.created_at, j.updated_at,
			COUNT(a.id) AS application_count
		FROM jobs j
		LEFT JOIN applications a ON a.job_id = j.id
		WHERE j.company_id = $1
		GROUP BY j.id
		ORDER BY j.created_at DESC, j.id DESC
	`

	var jobs []model.CompanyJob
	if err := s.db.SelectContext(ctx, &jobs, query, companyID); err != nil {
		return nil, fmt.Errorf("failed to list company jobs: %w", err)
	}

	return jobs, nil
}

// GetCompanyJob returns a job only when it belongs to companyID
func (s *Storage) GetCompanyJob(ctx context.Context, companyID, jobID string) (*model.Job, error) {
	query := `
		SELECT
			id, company_id, title, description, required_skills, location,
			employment_type, salary_range, status, created_at, updated_at
		FROM jobs
		WHERE id = $1 AND company_id = $2
	`

	var job model.Job
	if err := s.db.GetContext(ctx, &job, query, jobID, companyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

func (s *Storage) UpdateJobStatus(ctx context.Context, companyID, jobID, status string) error {
	query := `
		UPDATE jobs
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND company_id = $3
	`

	result, err := s.db.ExecContext(ctx, query, status, jobID, companyID)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrJobNotFound
	}

	return nil
}
