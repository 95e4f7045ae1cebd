package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cuongbtq/jobboard/internal/api/domain"
	"github.com/cuongbtq/jobboard/internal/api/dto"
	"github.com/cuongbtq/jobboard/internal/api/model"
	workerdomain "github.com/cuongbtq/jobboard/internal/worker/domain"
	"github.com/cuongbtq/jobboard/shared/apperror"
	"github.com/cuongbtq/jobboard/shared/objectstore"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	maxCoverLetterLength = 5000
	duplicateApplication = "You have already applied for this job"
)

// ApplicationHandler handles application intake and analysis requests
type ApplicationHandler struct {
	logger         *slog.Logger
	store          Store
	publisher      Publisher
	uploader       Uploader
	maxUploadBytes int64
	taskMaxRetries int
}

// NewApplicationHandler creates a new ApplicationHandler instance
func NewApplicationHandler(deps *Dependencies) *ApplicationHandler {
	return &ApplicationHandler{
		logger:         deps.Logger,
		store:          deps.Store,
		publisher:      deps.Publisher,
		uploader:       deps.Uploader,
		maxUploadBytes: deps.MaxUploadBytes,
		taskMaxRetries: deps.TaskMaxRetries,
	}
}

// Apply handles POST /api/v1/jobs/:job_id/applications
// Stores the CV, records the application with its analysis task and queues the task
func (h *ApplicationHandler) Apply(c *gin.Context) {
	ctx := c.Request.Context()
	caller := principal(c)

	jobID := c.Param("job_id")
	if _, err := uuid.Parse(jobID); err != nil {
		respondError(c, h.logger, apperror.BadRequest("job_id must be a valid UUID"))
		return
	}

	if _, err := h.store.GetActiveJob(ctx, jobID); err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			respondError(c, h.logger, apperror.NotFound("Job not found"))
			return
		}
		respondError(c, h.logger, err)
		return
	}

	applied, err := h.store.HasApplied(ctx, jobID, caller.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if applied {
		respondError(c, h.logger, apperror.Conflict(duplicateApplication))
		return
	}

	coverLetter := strings.TrimSpace(c.PostForm("cover_letter"))
	if utf8.RuneCountInString(coverLetter) > maxCoverLetterLength {
		respondError(c, h.logger, apperror.BadRequest(fmt.Sprintf("cover_letter must be at most %d characters", maxCoverLetterLength)))
		return
	}

	filename, data, appErr := h.readCV(c)
	if appErr != nil {
		respondError(c, h.logger, appErr)
		return
	}

	file, err := objectstore.ValidateDocument(filename, data, h.maxUploadBytes)
	if err != nil {
		if errors.Is(err, objectstore.ErrFileTooLarge) {
			respondError(c, h.logger, apperror.New(http.StatusRequestEntityTooLarge, err.Error(), nil))
			return
		}
		respondError(c, h.logger, apperror.BadRequest(fmt.Sprintf("%s (allowed: %s)", err.Error(), strings.Join(objectstore.AllowedExtensions(), ", "))))
		return
	}

	now := time.Now()
	key := fmt.Sprintf("%s/%d%s", caller.UserID, now.UnixMilli(), file.Extension)
	cvURL, err := h.uploader.Put(ctx, key, data, file.ContentType)
	if err != nil {
		respondError(c, h.logger, apperror.New(http.StatusInternalServerError, "Failed to upload CV", err))
		return
	}

	app := &model.Application{
		ID:          uuid.New().String(),
		JobID:       jobID,
		ApplicantID: caller.UserID,
		CVURL:       cvURL,
		CVPath:      key,
		CoverLetter: sql.NullString{String: coverLetter, Valid: coverLetter != ""},
		Status:      domain.ApplicationStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	task := h.newTask(app.ID, now)

	if err := h.store.CreateApplication(ctx, app, task); err != nil {
		h.discardCV(ctx, key)
		if errors.Is(err, domain.ErrDuplicateApplication) {
			respondError(c, h.logger, apperror.Conflict(duplicateApplication))
			return
		}
		respondError(c, h.logger, err)
		return
	}

	queued := h.publish(c, task)

	h.logger.Info("Application submitted",
		slog.String("application_id", app.ID),
		slog.String("job_id", jobID),
		slog.String("task_id", task.TaskID),
		slog.Bool("analysis_queued", queued),
	)

	c.JSON(http.StatusCreated, dto.ApplyResponse{
		Application:    toApplicationDTO(app),
		TaskID:         task.TaskID,
		AnalysisQueued: queued,
	})
}

// readCV reads the "cv" form file up to one byte past the upload limit
func (h *ApplicationHandler) readCV(c *gin.Context) (string, []byte, *apperror.AppError) {
	header, err := c.FormFile("cv")
	if err != nil {
		return "", nil, apperror.BadRequest("cv file is required")
	}

	f, err := header.Open()
	if err != nil {
		return "", nil, apperror.New(http.StatusInternalServerError, "Failed to read CV", err)
	}
	defer f.Close()

	var r io.Reader = f
	if h.maxUploadBytes > 0 {
		r = io.LimitReader(f, h.maxUploadBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", nil, apperror.New(http.StatusInternalServerError, "Failed to read CV", err)
	}

	return header.Filename, data, nil
}

// discardCV removes an uploaded CV whose application was not recorded
func (h *ApplicationHandler) discardCV(ctx context.Context, key string) {
	if err := h.uploader.Delete(context.WithoutCancel(ctx), key); err != nil {
		h.logger.Warn("Failed to remove orphaned CV",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}
}

func (h *ApplicationHandler) newTask(applicationID string, now time.Time) *model.AnalysisTask {
	return &model.AnalysisTask{
		TaskID:        uuid.New().String(),
		ApplicationID: applicationID,
		Status:        domain.TaskStatusPending,
		MaxRetries:    h.taskMaxRetries,
		CreatedAt:     now,
	}
}

// publish queues task and reports whether the broker accepted it. A task
// left unpublished stays PENDING and can be triggered again.
func (h *ApplicationHandler) publish(c *gin.Context, task *model.AnalysisTask) bool {
	err := h.publisher.PublishJSON(c.Request.Context(), workerdomain.TaskMessage{TaskID: task.TaskID})
	if err != nil {
		h.logger.Error("Failed to publish analysis task",
			slog.String("task_id", task.TaskID),
			slog.String("application_id", task.ApplicationID),
			slog.Any("error", err),
		)
		return false
	}
	return true
}

// ListMine handles GET /api/v1/me/applications
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	apps, err := h.store.ListApplicantApplications(c.Request.Context(), principal(c).UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out := make([]dto.MyApplicationDTO, len(apps))
	for i := range apps {
		out[i] = dto.MyApplicationDTO{
			ApplicationDTO: toApplicationDTO(&apps[i].Application),
			JobTitle:       apps[i].JobTitle,
			CompanyName:    apps[i].CompanyName,
		}
	}

	c.JSON(http.StatusOK, gin.H{"applications": out})
}

// TriggerAnalysis handles POST /api/v1/applications/:application_id/analysis
// Queues a fresh analysis task for an existing application
func (h *ApplicationHandler) TriggerAnalysis(c *gin.Context) {
	ctx := c.Request.Context()

	applicationID := c.Param("application_id")
	if _, err := uuid.Parse(applicationID); err != nil {
		respondError(c, h.logger, apperror.BadRequest("application_id must be a valid UUID"))
		return
	}

	access, err := h.store.GetApplicationAccess(ctx, applicationID)
	if err != nil {
		if errors.Is(err, domain.ErrApplicationNotFound) {
			respondError(c, h.logger, apperror.NotFound("Application not found"))
			return
		}
		respondError(c, h.logger, err)
		return
	}
	if !canAccessApplication(principal(c), access) {
		respondError(c, h.logger, apperror.Forbidden("Not allowed to analyze this application"))
		return
	}

	task := h.newTask(applicationID, time.Now())
	if err := h.store.CreateAnalysisTask(ctx, task); err != nil {
		respondError(c, h.logger, err)
		return
	}

	if !h.publish(c, task) {
		respondError(c, h.logger, apperror.New(http.StatusServiceUnavailable, "Failed to queue analysis", nil))
		return
	}

	c.JSON(http.StatusAccepted, dto.TriggerAnalysisResponse{
		TaskID:        task.TaskID,
		ApplicationID: applicationID,
		Status:        task.Status,
	})
}

// canAccessApplication allows the applicant, the hiring company's owner and admins
func canAccessApplication(p *domain.Principal, access *model.ApplicationAccess) bool {
	if p.UserID == "" {
		return false
	}
	return p.UserID == access.ApplicantID || p.UserID == access.CompanyUserID || p.HasRole(domain.RoleAdmin)
}
