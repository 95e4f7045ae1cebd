package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cuongbtq/jobboard/internal/api/domain"
	"github.com/cuongbtq/jobboard/internal/api/model"
	"github.com/cuongbtq/jobboard/shared/postgresql"
	"github.com/jmoiron/sqlx"
)

const applicationColumns = `
	a.id, a.job_id, a.applicant_id, a.cv_url, a.cv_path, a.cover_letter, a.status,
	a.match_score, a.ai_analysis, a.recommended_jobs, a.analysis_error, a.created_at, a.updated_at
`

func (s *Storage) HasApplied(ctx context.Context, jobID, applicantID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM applications WHERE job_id = $1 AND applicant_id = $2)`
	if err := s.db.GetContext(ctx, &exists, query, jobID, applicantID); err != nil {
		return false, fmt.Errorf("failed to check application: %w", err)
	}
	return exists, nil
}

// CreateApplication inserts the application and its first analysis task in
// one transaction
func (s *Storage) CreateApplication(ctx context.Context, app *model.Application, task *model.AnalysisTask) error {
	return s.client.WithTx(ctx, func(tx *sqlx.Tx) error {
		appQuery := `
			INSERT INTO applications (
				id, job_id, applicant_id, cv_url, cv_path, cover_letter, status, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9
			)
		`
		_, err := tx.ExecContext(ctx, appQuery,
			app.ID,
			app.JobID,
			app.ApplicantID,
			app.CVURL,
			app.CVPath,
			app.CoverLetter,
			app.Status,
			app.CreatedAt,
			app.UpdatedAt,
		)
		if err != nil {
			if postgresql.IsUniqueViolation(err) {
				return domain.ErrDuplicateApplication
			}
			return fmt.Errorf("failed to create application: %w", err)
		}

		return insertTask(ctx, tx, task)
	})
}

// CreateAnalysisTask queues a new analysis for an existing application
func (s *Storage) CreateAnalysisTask(ctx context.Context, task *model.AnalysisTask) error {
	return s.client.WithTx(ctx, func(tx *sqlx.Tx) error {
		return insertTask(ctx, tx, task)
	})
}

func insertTask(ctx context.Context, tx *sqlx.Tx, task *model.AnalysisTask) error {
	query := `
		INSERT INTO analysis_tasks (task_id, application_id, status, max_retries, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`
	if _, err := tx.ExecContext(ctx, query, task.TaskID, task.ApplicationID, task.Status, task.MaxRetries, task.CreatedAt); err != nil {
		return fmt.Errorf("failed to create analysis task: %w", err)
	}
	return nil
}

// GetApplicationAccess returns the applicant and the hiring company's owner of an application
func (s *Storage) GetApplicationAccess(ctx context.Context, applicationID string) (*model.ApplicationAccess, error) {
	query := `
		SELECT a.id AS application_id, a.applicant_id, c.user_id AS company_user_id
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		JOIN companies c ON c.id = j.company_id
		WHERE a.id = $1
	`

	var access model.ApplicationAccess
	if err := s.db.GetContext(ctx, &access, query, applicationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return &access, nil
}

// ListApplicantApplications lists an applicant's applications, newest first
func (s *Storage) ListApplicantApplications(ctx context.Context, applicantID string) ([]model.ApplicantApplication, error) {
	query := `
		SELECT ` + applicationColumns + `,
			j.title AS job_title,
			c.company_name
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		JOIN companies c ON c.id = j.company_id
		WHERE a.applicant_id = $1
		ORDER BY a.created_at DESC
	`

	var apps []model.ApplicantApplication
	if err := s.db.SelectContext(ctx, &apps, query, applicantID); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	return apps, nil
}

// ListJobApplicants lists a job's applications, best match first
func (s *Storage) ListJobApplicants(ctx context.Context, jobID string) ([]model.JobApplicant, error) {
	query := `
		SELECT ` + applicationColumns + `,
			COALESCE(p.full_name, '') AS applicant_name,
			COALESCE(p.email, '') AS applicant_email
		FROM applications a
		LEFT JOIN profiles p ON p.user_id = a.applicant_id
		WHERE a.job_id = $1
		ORDER BY a.match_score DESC NULLS LAST, a.created_at ASC
	`

	var apps []model.JobApplicant
	if err := s.db.SelectContext(ctx, &apps, query, jobID); err != nil {
		return nil, fmt.Errorf("failed to list applicants: %w", err)
	}

	return apps, nil
}

// UpdateApplicationStatus records a review decision on an application of companyID's jobs
func (s *Storage) UpdateApplicationStatus(ctx context.Context, companyID, applicationID, status string) error {
	query := `
		UPDATE applications a
		SET status = $1, updated_at = NOW()
		FROM jobs j
		WHERE a.id = $2 AND j.id = a.job_id AND j.company_id = $3
	`

	result, err := s.db.ExecContext(ctx, query, status, applicationID, companyID)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrApplicationNotFound
	}

	return nil
}
