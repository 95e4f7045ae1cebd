package storage

import (
	"context"
	"fmt"

	"github.com/cuongbtq/jobboard/internal/api/model"
)

// GetStats counts companies, jobs, applicants and applications
func (s *Storage) GetStats(ctx context.Context) (*model.Stats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM companies) AS total_companies,
			(SELECT COUNT(*) FROM jobs) AS total_jobs,
			(SELECT COUNT(*) FROM user_roles WHERE role = 'applicant') AS total_applicants,
			(SELECT COUNT(*) FROM applications) AS total_applications
	`

	var stats model.Stats
	if err := s.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return &stats, nil
}

// HealthCheck reports whether the database answers
func (s *Storage) HealthCheck(ctx context.Context) error {
	return s.client.HealthCheck(ctx)
}
