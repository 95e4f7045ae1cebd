package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/jobboard/internal/analysis"
	"github.com/cuongbtq/jobboard/internal/scoring"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Storage reads analysis inputs and writes analysis results
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

type targetRow struct {
	ApplicationID  string         `db:"application_id"`
	JobID          string         `db:"job_id"`
	CVPath         string         `db:"cv_path"`
	RequiredSkills pq.StringArray `db:"required_skills"`
}

// GetTarget loads the application's CV location and its job's required skills
func (s *Storage) GetTarget(ctx context.Context, applicationID string) (*analysis.Target, error) {
	query := `
		SELECT a.id AS application_id, a.job_id, a.cv_path, j.required_skills
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		WHERE a.id = $1
	`

	var row targetRow
	if err := s.db.GetContext(ctx, &row, query, applicationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, analysis.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return &analysis.Target{
		ApplicationID:  row.ApplicationID,
		JobID:          row.JobID,
		CVPath:         row.CVPath,
		RequiredSkills: []string(row.RequiredSkills),
	}, nil
}

type catalogRow struct {
	ID             string         `db:"id"`
	Title          string         `db:"title"`
	RequiredSkills pq.StringArray `db:"required_skills"`
}

// ListCatalog returns active jobs of approved companies except excludeJobID
func (s *Storage) ListCatalog(ctx context.Context, excludeJobID string) ([]scoring.CatalogJob, error) {
	query := `
		SELECT j.id, j.title, j.required_skills
		FROM jobs j
		JOIN companies c ON c.id = j.company_id
		WHERE j.status = 'active'
		  AND c.status = 'approved'
		  AND j.id <> $1
		ORDER BY j.created_at DESC, j.id DESC
	`

	var rows []catalogRow
	if err := s.db.SelectContext(ctx, &rows, query, excludeJobID); err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}

	catalog := make([]scoring.CatalogJob, 0, len(rows))
	for _, r := range rows {
		catalog = append(catalog, scoring.CatalogJob{
			JobID:          r.ID,
			Title:          r.Title,
			RequiredSkills: []string(r.RequiredSkills),
		})
	}
	return catalog, nil
}

// SaveResult stores the analysis on the application. A review decision
// already made by the company is left in place.
func (s *Storage) SaveResult(ctx context.Context, applicationID string, result *analysis.Result) error {
	query := `
		UPDATE applications
		SET ai_analysis = $1,
		    match_score = $2,
		    recommended_jobs = $3,
		    analysis_error = NULL,
		    status = CASE
		        WHEN status IN ('pending', 'analysis_failed') THEN 'analyzed'::application_status
		        ELSE status
		    END,
		    updated_at = NOW()
		WHERE id = $4
	`

	analysisJSON, err := json.Marshal(result.Analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	recommendationsJSON, err := json.Marshal(result.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, analysisJSON, result.Analysis.MatchScore, recommendationsJSON, applicationID)
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return analysis.ErrApplicationNotFound
	}

	s.logger.Debug("Analysis stored",
		slog.String("application_id", applicationID),
		slog.Int("match_score", result.Analysis.MatchScore),
	)
	return nil
}
