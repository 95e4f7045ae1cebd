package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/cuongbtq/jobboard/internal/analysis"
	"github.com/cuongbtq/jobboard/internal/api/domain"
	"github.com/cuongbtq/jobboard/internal/api/model"
	"github.com/cuongbtq/jobboard/internal/api/storage"
	"github.com/cuongbtq/jobboard/shared/apperror"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Store is the persistence used by the HTTP handlers
type Store interface {
	ListActiveJobs(ctx context.Context, filter storage.JobFilter) ([]model.CatalogJob, error)
	GetActiveJob(ctx context.Context, jobID string) (*model.CatalogJob, error)
	CreateJob(ctx context.Context, job *model.Job) error
	ListCompanyJobs(ctx context.Context, companyID string) ([]model.CompanyJob, error)
	GetCompanyJob(ctx context.Context, companyID, jobID string) (*model.Job, error)
	UpdateJobStatus(ctx context.Context, companyID, jobID, status string) error

	CreateCompany(ctx context.Context, company *model.Company) error
	GetCompanyByUser(ctx context.Context, userID string) (*model.Company, error)
	ListPendingCompanies(ctx context.Context) ([]model.PendingCompany, error)
	ReviewCompany(ctx context.Context, companyID, status string) error

	HasApplied(ctx context.Context, jobID, applicantID string) (bool, error)
	CreateApplication(ctx context.Context, app *model.Application, task *model.AnalysisTask) error
	CreateAnalysisTask(ctx context.Context, task *model.AnalysisTask) error
	GetApplicationAccess(ctx context.Context, applicationID string) (*model.ApplicationAccess, error)
	ListApplicantApplications(ctx context.Context, applicantID string) ([]model.ApplicantApplication, error)
	ListJobApplicants(ctx context.Context, jobID string) ([]model.JobApplicant, error)
	UpdateApplicationStatus(ctx context.Context, companyID, applicationID, status string) error

	SaveProfile(ctx context.Context, profile *model.Profile, role string) error
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	ListRoles(ctx context.Context, userID string) ([]string, error)

	GetStats(ctx context.Context) (*model.Stats, error)
	HealthCheck(ctx context.Context) error
}

// Publisher queues analysis task messages
type Publisher interface {
	PublishJSON(ctx context.Context, v any) error
}

// Uploader stores CV files and returns their URL
type Uploader interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Analyzer runs one analysis synchronously
type Analyzer interface {
	Analyze(ctx context.Context, applicationID string) (*analysis.Result, error)
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger         *slog.Logger
	Store          Store
	Publisher      Publisher
	Uploader       Uploader
	Analyzer       Analyzer
	JWTSecret      string
	MaxUploadBytes int64
	AnalyzeTimeout time.Duration
	TaskMaxRetries int
	AllowedOrigins []string
	// Registry collects HTTP metrics and backs /metrics; nil uses a private one
	Registry *prometheus.Registry
}

// respondError writes {"error": message} with the status carried by err
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	appErr := apperror.From(err)

	attrs := []any{
		slog.Int("status", appErr.Code),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	}
	if appErr.Err != nil {
		attrs = append(attrs, slog.Any("error", appErr.Err))
	}

	if appErr.Code >= http.StatusInternalServerError {
		logger.Error(appErr.Message, attrs...)
	} else {
		logger.Debug(appErr.Message, attrs...)
	}

	c.AbortWithStatusJSON(appErr.Code, gin.H{"error": appErr.Message})
}

// principal returns the authenticated caller set by the auth middleware
func principal(c *gin.Context) *domain.Principal {
	v, ok := c.Get(domain.PrincipalKey)
	if !ok {
		return &domain.Principal{}
	}
	p, ok := v.(*domain.Principal)
	if !ok {
		return &domain.Principal{}
	}
	return p
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
