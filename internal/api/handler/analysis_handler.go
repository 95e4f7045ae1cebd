package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cuongbtq/jobboard/internal/analysis"
	"github.com/cuongbtq/jobboard/internal/analysis/llm"
	"github.com/cuongbtq/jobboard/internal/api/domain"
	"github.com/cuongbtq/jobboard/internal/api/dto"
	"github.com/cuongbtq/jobboard/shared/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AnalysisHandler runs CV analysis inside the request
type AnalysisHandler struct {
	logger   *slog.Logger
	store    Store
	analyzer Analyzer
	timeout  time.Duration
}

// NewAnalysisHandler creates a new AnalysisHandler instance
func NewAnalysisHandler(deps *Dependencies) *AnalysisHandler {
	return &AnalysisHandler{
		logger:   deps.Logger,
		store:    deps.Store,
		analyzer: deps.Analyzer,
		timeout:  deps.AnalyzeTimeout,
	}
}

// AnalyzeCV handles POST /api/v1/analyze-cv
func (h *AnalysisHandler) AnalyzeCV(c *gin.Context) {
	var req dto.AnalyzeCVRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ApplicationID) == "" {
		respondError(c, h.logger, apperror.BadRequest("application_id is required"))
		return
	}
	if _, err := uuid.Parse(req.ApplicationID); err != nil {
		respondError(c, h.logger, apperror.BadRequest("application_id must be a valid UUID"))
		return
	}

	access, err := h.store.GetApplicationAccess(c.Request.Context(), req.ApplicationID)
	if err != nil {
		respondError(c, h.logger, analysisError(err))
		return
	}
	if !canAccessApplication(principal(c), access) {
		respondError(c, h.logger, apperror.Forbidden("Not allowed to analyze this application"))
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.analyzer.Analyze(ctx, req.ApplicationID)
	if err != nil {
		respondError(c, h.logger, analysisError(err))
		return
	}

	skills := result.Analysis.Skills
	if skills == nil {
		skills = []string{}
	}

	c.JSON(http.StatusOK, dto.AnalyzeCVResponse{
		Success: true,
		Analysis: dto.AnalysisDTO{
			Skills:          skills,
			ExperienceYears: result.Analysis.ExperienceYears,
			Education:       result.Analysis.Education,
			MatchScore:      result.Analysis.MatchScore,
		},
		RecommendationsCount: len(result.Recommendations),
	})
}

// analysisError maps analysis failures: missing records are server errors,
// model failures are upstream errors
func analysisError(err error) *apperror.AppError {
	switch {
	case errors.Is(err, domain.ErrApplicationNotFound), errors.Is(err, analysis.ErrApplicationNotFound):
		return apperror.New(http.StatusInternalServerError, "Application not found", err)
	case errors.Is(err, llm.ErrModelRequest), errors.Is(err, llm.ErrModelResponse):
		return apperror.BadGateway("AI analysis failed", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperror.New(http.StatusGatewayTimeout, "AI analysis timed out", err)
	default:
		return apperror.Internal(err)
	}
}
