// Package analysis runs one CV analysis for an application: it reads the CV,
// asks the language model for a structured reading, scores it against the
// job and stores the result with job recommendations.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"

	"github.com/cuongbtq/jobboard/internal/analysis/llm"
	"github.com/cuongbtq/jobboard/internal/cvtext"
	"github.com/cuongbtq/jobboard/internal/scoring"
)

// ErrApplicationNotFound is returned when the application or its job no longer exists
var ErrApplicationNotFound = errors.New("application not found")

// Target is the application being analyzed together with its job's requirements
type Target struct {
	ApplicationID  string
	JobID          string
	CVPath         string
	RequiredSkills []string
}

// Record is the analysis stored on the application
type Record struct {
	Skills          []string `json:"skills"`
	ExperienceYears float64  `json:"experience_years"`
	Education       string   `json:"education"`
	MatchScore      int      `json:"match_score"`
	ModelMatchScore int      `json:"model_match_score"`
}

// Result is what one run produced
type Result struct {
	Analysis        Record                   `json:"analysis"`
	Recommendations []scoring.Recommendation `json:"recommendations"`
}

// Store is the persistence the service needs
type Store interface {
	GetTarget(ctx context.Context, applicationID string) (*Target, error)
	ListCatalog(ctx context.Context, excludeJobID string) ([]scoring.CatalogJob, error)
	SaveResult(ctx context.Context, applicationID string, result *Result) error
}

// DocumentReader fetches stored CV files
type DocumentReader interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// Service orchestrates analysis runs for the worker and the synchronous endpoint
type Service struct {
	store     Store
	documents DocumentReader
	analyzer  llm.Analyzer
	logger    *slog.Logger
}

// NewService creates a new Service instance
func NewService(store Store, documents DocumentReader, analyzer llm.Analyzer, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		documents: documents,
		analyzer:  analyzer,
		logger:    logger,
	}
}

// Analyze runs the full analysis for applicationID and persists the outcome
func (s *Service) Analyze(ctx context.Context, applicationID string) (*Result, error) {
	target, err := s.store.GetTarget(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	cvText := s.readCV(ctx, target)

	modelAnalysis, err := s.analyzer.Analyze(ctx, target.RequiredSkills, cvText)
	if err != nil {
		return nil, err
	}

	record := Record{
		Skills:          modelAnalysis.Skills,
		ExperienceYears: modelAnalysis.ExperienceYears,
		Education:       modelAnalysis.Education,
		MatchScore:      scoring.Match(modelAnalysis.Skills, target.RequiredSkills),
		ModelMatchScore: modelAnalysis.MatchScore,
	}

	catalog, err := s.store.ListCatalog(ctx, target.JobID)
	if err != nil {
		s.logger.Error("Failed to load job catalog, skipping recommendations",
			slog.String("application_id", applicationID),
			slog.Any("error", err),
		)
		catalog = nil
	}

	result := &Result{
		Analysis:        record,
		Recommendations: scoring.Recommend(record.Skills, catalog, target.JobID),
	}

	if err := s.store.SaveResult(ctx, applicationID, result); err != nil {
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}

	s.logger.Info("Application analyzed",
		slog.String("application_id", applicationID),
		slog.Int("match_score", record.MatchScore),
		slog.Int("recommendations", len(result.Recommendations)),
	)

	return result, nil
}

// readCV returns the extracted CV text, or the placeholder when the file
// cannot be fetched or read
func (s *Service) readCV(ctx context.Context, target *Target) string {
	if target.CVPath == "" {
		return cvtext.Placeholder(target.ApplicationID)
	}

	data, err := s.documents.Get(ctx, target.CVPath)
	if err != nil {
		s.logger.Warn("Failed to download CV, using placeholder text",
			slog.String("application_id", target.ApplicationID),
			slog.String("cv_path", target.CVPath),
			slog.Any("error", err),
		)
		return cvtext.Placeholder(target.ApplicationID)
	}

	text, err := cvtext.Extract(path.Base(target.CVPath), data)
	if err != nil || text == "" {
		s.logger.Warn("No text extracted from CV, using placeholder text",
			slog.String("application_id", target.ApplicationID),
			slog.String("cv_path", target.CVPath),
			slog.Any("error", err),
		)
		return cvtext.Placeholder(target.ApplicationID)
	}

	return text
}
