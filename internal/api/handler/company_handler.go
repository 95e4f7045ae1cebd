package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cuongbtq/jobboard/internal/api/domain"
	"github.com/cuongbtq/jobboard/internal/api/dto"
	"github.com/cuongbtq/jobboard/internal/api/model"
	"github.com/cuongbtq/jobboard/shared/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CompanyHandler serves the company dashboard
type CompanyHandler struct {
	logger *slog.Logger
	store  Store
}

// NewCompanyHandler creates a new CompanyHandler instance
func NewCompanyHandler(deps *Dependencies) *CompanyHandler {
	return &CompanyHandler{
		logger: deps.Logger,
		store:  deps.Store,
	}
}

// Register handles POST /api/v1/companies
func (h *CompanyHandler) Register(c *gin.Context) {
	var req dto.RegisterCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperror.BadRequest("Invalid request body"))
		return
	}

	now := time.Now()
	company := &model.Company{
		ID:             uuid.New().String(),
		UserID:         principal(c).UserID,
		CompanyName:    strings.TrimSpace(req.CompanyName),
		Category:       strings.TrimSpace(req.Category),
		RDBCertificate: strings.TrimSpace(req.RDBCertificate),
		Location:       strings.TrimSpace(req.Location),
		Status:         domain.CompanyStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.store.CreateCompany(c.Request.Context(), company); err != nil {
		if errors.Is(err, domain.ErrCompanyExists) {
			respondError(c, h.logger, apperror.Conflict("Company already registered"))
			return
		}
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Company registered",
		slog.String("company_id", company.ID),
		slog.String("user_id", company.UserID),
	)

	c.JSON(http.StatusCreated, toCompanyDTO(company))
}

// Me handles GET /api/v1/companies/me
func (h *CompanyHandler) Me(c *gin.Context) {
	company, ok := h.ownCompany(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toCompanyDTO(company))
}

// ownCompany loads the caller's company, writing the error response when missing
func (h *CompanyHandler) ownCompany(c *gin.Context) (*model.Company, bool) {
	company, err := h.store.GetCompanyByUser(c.Request.Context(), principal(c).UserID)
	if err != nil {
		if errors.Is(err, domain.ErrCompanyNotFound) {
			respondError(c, h.logger, apperror.NotFound("Company not found"))
			return nil, false
		}
		respondError(c, h.logger, err)
		return nil, false
	}
	return company, true
}

// CreateJob handles POST /api/v1/company/jobs
func (h *CompanyHandler) CreateJob(c *gin.Context) {
	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperror.BadRequest("Invalid request body"))
		return
	}

	company, ok := h.ownCompany(c)
	if !ok {
		return
	}
	if company.Status != domain.CompanyStatusApproved {
		respondError(c, h.logger, apperror.Forbidden("Company is not approved"))
		return
	}

	now := time.Now()
	job := &model.Job{
		ID:             uuid.New().String(),
		CompanyID:      company.ID,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		RequiredSkills: pq.StringArray(dto.NormalizeSkills(req.RequiredSkills)),
		Location:       strings.TrimSpace(req.Location),
		EmploymentType: strings.TrimSpace(req.EmploymentType),
		SalaryRange:    strings.TrimSpace(req.SalaryRange),
		Status:         domain.JobStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.store.CreateJob(c.Request.Context(), job); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Job created",
		slog.String("job_id", job.ID),
		slog.String("company_id", company.ID),
	)

	c.JSON(http.StatusCreated, toJobDTO(job))
}

// ListJobs handles GET /api/v1/company/jobs
func (h *CompanyHandler) ListJobs(c *gin.Context) {
	company, ok := h.ownCompany(c)
	if !ok {
		return
	}

	jobs, err := h.store.ListCompanyJobs(c.Request.Context(), company.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out := make([]dto.CompanyJobDTO, len(jobs))
	for i := range jobs {
		out[i] = dto.CompanyJobDTO{
			JobDTO:           toJobDTO(&jobs[i].Job),
			ApplicationCount: jobs[i].ApplicationCount,
		}
	}

	c.JSON(http.StatusOK, gin.H{"jobs": out})
}

// UpdateJobStatus handles PATCH /api/v1/company/jobs/:job_id/status
func (h *CompanyHandler) UpdateJobStatus(c *gin.Context) {
	jobID := c.Param("job_id")
	if _, err := uuid.Parse(jobID); err != nil {
		respondError(c, h.logger, apperror.BadRequest("job_id must be a valid UUID"))
		return
	}

	var req dto.UpdateJobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperror.BadRequest("status must be active or closed"))
		return
	}

	company, ok := h.ownCompany(c)
	if !ok {
		return
	}

	if err := h.store.UpdateJobStatus(c.Request.Context(), company.ID, jobID, req.Status); err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			respondError(c, h.logger, apperror.NotFound("Job not found"))
			return
		}
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job_id": jobID, "status": req.Status})
}

// ListJobApplicants handles GET /api/v1/company/jobs/:job_id/applications
func (h *CompanyHandler) ListJobApplicants(c *gin.Context) {
	jobID := c.Param("job_id")
	if _, err := uuid.Parse(jobID); err != nil {
		respondError(c, h.logger, apperror.BadRequest("job_id must be a valid UUID"))
		return
	}

	company, ok := h.ownCompany(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.store.GetCompanyJob(ctx, company.ID, jobID); err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			respondError(c, h.logger, apperror.NotFound("Job not found"))
			return
		}
		respondError(c, h.logger, err)
		return
	}

	apps, err := h.store.ListJobApplicants(ctx, jobID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out := make([]dto.JobApplicantDTO, len(apps))
	for i := range apps {
		out[i] = dto.JobApplicantDTO{
			ApplicationDTO: toApplicationDTO(&apps[i].Application),
			ApplicantName:  apps[i].ApplicantName,
			ApplicantEmail: apps[i].ApplicantEmail,
		}
	}

	c.JSON(http.StatusOK, gin.H{"applications": out})
}

// UpdateApplicationStatus handles PATCH /api/v1/company/applications/:application_id/status
func (h *CompanyHandler) UpdateApplicationStatus(c *gin.Context) {
	applicationID := c.Param("application_id")
	if _, err := uuid.Parse(applicationID); err != nil {
		respondError(c, h.logger, apperror.BadRequest("application_id must be a valid UUID"))
		return
	}

	var req dto.UpdateApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperror.BadRequest("status must be reviewed, accepted or rejected"))
		return
	}

	company, ok := h.ownCompany(c)
	if !ok {
		return
	}

	if err := h.store.UpdateApplicationStatus(c.Request.Context(), company.ID, applicationID, req.Status); err != nil {
		if errors.Is(err, domain.ErrApplicationNotFound) {
			respondError(c, h.logger, apperror.NotFound("Application not found"))
			return
		}
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"application_id": applicationID, "status": req.Status})
}
