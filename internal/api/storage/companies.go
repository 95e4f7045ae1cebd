package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cuongbtq/jobboard/internal/api/domain"
	"github.com/cuongbtq/jobboard/internal/api/model"
	"github.com/cuongbtq/jobboard/shared/postgresql"
)

const companyColumns = `
	id, user_id, company_name, category, rdb_certificate, location, status, created_at, updated_at
`

// CreateCompany registers a company; a user owns at most one
func (s *Storage) CreateCompany(ctx context.Context, company *model.Company) error {
	query := `
		INSERT INTO companies (
			id, user_id, company_name, category, rdb_certificate,
			location, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9
		)
	`

	_, err := s.db.ExecContext(ctx, query,
		company.ID,
		company.UserID,
		company.CompanyName,
		company.Category,
		company.RDBCertificate,
		company.Location,
		company.Status,
		company.CreatedAt,
		company.UpdatedAt,
	)
	if err != nil {
		if postgresql.IsUniqueViolation(err) {
			return domain.ErrCompanyExists
		}
		return fmt.Errorf("failed to create company: %w", err)
	}

	return nil
}

func (s *Storage) GetCompanyByUser(ctx context.Context, userID string) (*model.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE user_id = $1`

	var company model.Company
	if err := s.db.GetContext(ctx, &company, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	return &company, nil
}

// ListPendingCompanies returns companies awaiting review with their owner, newest first
func (s *Storage) ListPendingCompanies(ctx context.Context) ([]model.PendingCompany, error) {
	query := `
		SELECT
			c.id, c.user_id, c.company_name, c.category, c.rdb_certificate,
			c.location, c.status, c.created_at, c.updated_at,
			COALESCE(p.full_name, '') AS owner_name,
			COALESCE(p.email, '') AS owner_email
		FROM companies c
		LEFT JOIN profiles p ON p.user_id = c.user_id
		WHERE c.status = 'pending'
		ORDER BY c.created_at DESC
	`

	var companies []model.PendingCompany
	if err := s.db.SelectContext(ctx, &companies, query); err != nil {
		return nil, fmt.Errorf("failed to list pending companies: %w", err)
	}

	return companies, nil
}

// ReviewCompany moves a pending company to status. Companies already
// reviewed return ErrInvalidTransition.
func (s *Storage) ReviewCompany(ctx context.Context, companyID, status string) error {
	query := `
		UPDATE companies
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'pending'
	`

	result, err := s.db.ExecContext(ctx, query, status, companyID)
	if err != nil {
		return fmt.Errorf("failed to update company status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM companies WHERE id = $1)`, companyID); err != nil {
		return fmt.Errorf("failed to check company: %w", err)
	}
	if !exists {
		return domain.ErrCompanyNotFound
	}
	return domain.ErrInvalidTransition
}
