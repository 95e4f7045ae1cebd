package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cuongbtq/jobboard/internal/analysis"
	"github.com/cuongbtq/jobboard/internal/analysis/llm"
	"github.com/cuongbtq/jobboard/internal/api/domain"
	"github.com/cuongbtq/jobboard/internal/api/dto"
	"github.com/cuongbtq/jobboard/internal/api/model"
	"github.com/cuongbtq/jobboard/internal/api/storage"
	"github.com/cuongbtq/jobboard/internal/scoring"
	workerdomain "github.com/cuongbtq/jobboard/internal/worker/domain"
	"github.com/cuongbtq/jobboard/shared/logger"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	applicantID   = "0f8c2d4e-1111-4c3b-9a61-5d0c6a1b2c3d"
	companyUserID = "7b3e9a10-2222-4d7f-8e21-0a9b8c7d6e5f"
	adminID       = "c1d2e3f4-3333-4a5b-9c8d-7e6f5a4b3c2d"
	jobID         = "5e7b1c2a-4444-4f0e-8d3c-2b1a0f9e8d7c"
	companyID     = "9a8b7c6d-5555-4e4f-8a3b-2c1d0e9f8a7b"
	applicationID = "3c4d5e6f-6666-4a7b-8c9d-0e1f2a3b4c5d"
)

func init() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidators(v); err != nil {
			panic(err)
		}
	}
}

type harness struct {
	store     *mockStore
	publisher *mockPublisher
	uploader  *mockUploader
	analyzer  *mockAnalyzer
	deps      *Dependencies
}

func newHarness() *harness {
	h := &harness{
		store:     &mockStore{},
		publisher: &mockPublisher{},
		uploader:  &mockUploader{},
		analyzer:  &mockAnalyzer{},
	}
	h.deps = &Dependencies{
		Logger:         logger.NewDiscard(),
		Store:          h.store,
		Publisher:      h.publisher,
		Uploader:       h.uploader,
		Analyzer:       h.analyzer,
		MaxUploadBytes: 1024,
		AnalyzeTimeout: 5 * time.Second,
		TaskMaxRetries: 3,
	}
	return h
}

func (h *harness) assertExpectations(t *testing.T) {
	h.store.AssertExpectations(t)
	h.publisher.AssertExpectations(t)
	h.uploader.AssertExpectations(t)
	h.analyzer.AssertExpectations(t)
}

// serve registers fn on route and performs one request as caller
func serve(caller *domain.Principal, method, route, target string, fn gin.HandlerFunc, body io.Reader, contentType string) *httptest.ResponseRecorder {
	r := gin.New()
	r.Handle(method, route, func(c *gin.Context) {
		if caller != nil {
			c.Set(domain.PrincipalKey, caller)
		}
		c.Next()
	}, fn)

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func applicant() *domain.Principal {
	return &domain.Principal{UserID: applicantID, Email: "jane@example.com", Roles: []string{domain.RoleApplicant}}
}

func companyOwner() *domain.Principal {
	return &domain.Principal{UserID: companyUserID, Email: "hr@acme.example", Roles: []string{domain.RoleCompany}}
}

func admin() *domain.Principal {
	return &domain.Principal{UserID: adminID, Roles: []string{domain.RoleAdmin}}
}

func catalogJob(id string, createdAt time.Time) model.CatalogJob {
	return model.CatalogJob{
		Job: model.Job{
			ID:             id,
			CompanyID:      companyID,
			Title:          "Backend Engineer",
			RequiredSkills: []string{"Go", "PostgreSQL"},
			Status:         domain.JobStatusActive,
			CreatedAt:      createdAt,
			UpdatedAt:      createdAt,
		},
		CompanyName: "Acme",
	}
}

func TestJobHandler_ListJobs_Paginates(t *testing.T) {
	h := newHarness()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	jobs := []model.CatalogJob{
		catalogJob("job-3", base.Add(2*time.Hour)),
		catalogJob("job-2", base.Add(time.Hour)),
		catalogJob("job-1", base),
	}

	h.store.On("ListActiveJobs", mock.Anything, mock.MatchedBy(func(f storage.JobFilter) bool {
		return f.Search == "react" && f.PageSize == 2 && f.Cursor == nil
	})).Return(jobs, nil)

	w := serve(nil, http.MethodGet, "/jobs", "/jobs?search=%20react%20&page_size=2", NewJobHandler(h.deps).ListJobs, nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.ListJobsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Jobs, 2)
	assert.Equal(t, "job-3", resp.Jobs[0].JobID)
	assert.Equal(t, "Acme", resp.Jobs[0].CompanyName)
	require.NotEmpty(t, resp.NextCursor)

	cursor, err := DecodeJobCursor(resp.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, "job-2", cursor.JobID)
	assert.True(t, cursor.CreatedAt.Equal(base.Add(time.Hour)))
	h.assertExpectations(t)
}

func TestJobHandler_ListJobs_LastPageHasNoCursor(t *testing.T) {
	h := newHarness()
	h.store.On("ListActiveJobs", mock.Anything, mock.MatchedBy(func(f storage.JobFilter) bool {
		return f.PageSize == defaultPageSize
	})).Return([]model.CatalogJob{catalogJob("job-1", time.Now())}, nil)

	w := serve(nil, http.MethodGet, "/jobs", "/jobs", NewJobHandler(h.deps).ListJobs, nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "next_cursor")
}

func TestJobHandler_ListJobs_BadInput(t *testing.T) {
	h := newHarness()

	w := serve(nil, http.MethodGet, "/jobs", "/jobs?cursor=%25%25%25", NewJobHandler(h.deps).ListJobs, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid cursor", errorMessage(t, w))

	w = serve(nil, http.MethodGet, "/jobs", "/jobs?page_size=500", NewJobHandler(h.deps).ListJobs, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	h.assertExpectations(t)
}

func TestJobHandler_GetJob(t *testing.T) {
	h := newHarness()
	job := catalogJob(jobID, time.Now())
	h.store.On("GetActiveJob", mock.Anything, jobID).Return(&job, nil).Once()

	w := serve(nil, http.MethodGet, "/jobs/:job_id", "/jobs/"+jobID, NewJobHandler(h.deps).GetJob, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"required_skills":["Go","PostgreSQL"]`)

	h.store.On("GetActiveJob", mock.Anything, jobID).Return(nil, domain.ErrJobNotFound).Once()
	w = serve(nil, http.MethodGet, "/jobs/:job_id", "/jobs/"+jobID, NewJobHandler(h.deps).GetJob, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(nil, http.MethodGet, "/jobs/:job_id", "/jobs/not-a-uuid", NewJobHandler(h.deps).GetJob, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	h.assertExpectations(t)
}

// multipartCV builds an application form; an empty filename omits the file
func multipartCV(t *testing.T, filename string, content []byte, coverLetter string) (io.Reader, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	if filename != "" {
		part, err := mw.CreateFormFile("cv", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	if coverLetter != "" {
		require.NoError(t, mw.WriteField("cover_letter", coverLetter))
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

var cvText = []byte("Jane Doe\nSkills: Go, PostgreSQL, Docker\n")

func applyRequest(t *testing.T, h *harness, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartCV(t, filename, content, "I would love to join.")
	return serve(applicant(), http.MethodPost, "/jobs/:job_id/applications", "/jobs/"+jobID+"/applications",
		NewApplicationHandler(h.deps).Apply, body, contentType)
}

func expectApplyPreconditions(h *harness) {
	job := catalogJob(jobID, time.Now())
	h.store.On("GetActiveJob", mock.Anything, jobID).Return(&job, nil)
	h.store.On("HasApplied", mock.Anything, jobID, applicantID).Return(false, nil)
}

func cvKey(key string) bool {
	return strings.HasPrefix(key, applicantID+"/") && strings.HasSuffix(key, ".txt")
}

func TestApplicationHandler_Apply(t *testing.T) {
	h := newHarness()
	expectApplyPreconditions(h)

	var created *model.Application
	var task *model.AnalysisTask
	h.uploader.On("Put", mock.Anything, mock.MatchedBy(cvKey), cvText, "text/plain").
		Return("https://storage.example.com/cvs/"+applicantID+"/1.txt", nil)
	h.store.On("CreateApplication", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*model.Application)
			task = args.Get(2).(*model.AnalysisTask)
		}).Return(nil)
	h.publisher.On("PublishJSON", mock.Anything, mock.AnythingOfType("domain.TaskMessage")).Return(nil)

	w := applyRequest(t, h, "cv.txt", cvText)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp dto.ApplyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.AnalysisQueued)
	assert.Equal(t, domain.ApplicationStatusPending, resp.Application.Status)
	assert.Nil(t, resp.Application.MatchScore)
	require.NotNil(t, resp.Application.CoverLetter)
	assert.Equal(t, "I would love to join.", *resp.Application.CoverLetter)

	require.NotNil(t, created)
	assert.True(t, cvKey(created.CVPath))
	assert.Equal(t, created.ID, task.ApplicationID)
	assert.Equal(t, 3, task.MaxRetries)
	assert.Equal(t, task.TaskID, resp.TaskID)
	h.publisher.AssertCalled(t, "PublishJSON", mock.Anything, workerdomain.TaskMessage{TaskID: task.TaskID})
	h.assertExpectations(t)
}

func TestApplicationHandler_Apply_PublishFailureStillCreated(t *testing.T) {
	h := newHarness()
	expectApplyPreconditions(h)
	h.uploader.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("url", nil)
	h.store.On("CreateApplication", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	h.publisher.On("PublishJSON", mock.Anything, mock.Anything).Return(errors.New("not connected to RabbitMQ"))

	w := applyRequest(t, h, "cv.txt", cvText)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp dto.ApplyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.AnalysisQueued)
	h.assertExpectations(t)
}

func TestApplicationHandler_Apply_Duplicate(t *testing.T) {
	t.Run("already applied", func(t *testing.T) {
		h := newHarness()
		job := catalogJob(jobID, time.Now())
		h.store.On("GetActiveJob", mock.Anything, jobID).Return(&job, nil)
		h.store.On("HasApplied", mock.Anything, jobID, applicantID).Return(true, nil)

		w := applyRequest(t, h, "cv.txt", cvText)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "You have already applied for this job", errorMessage(t, w))
		h.assertExpectations(t)
	})

	t.Run("concurrent insert", func(t *testing.T) {
		h := newHarness()
		expectApplyPreconditions(h)
		h.uploader.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("url", nil)
		h.store.On("CreateApplication", mock.Anything, mock.Anything, mock.Anything).
			Return(domain.ErrDuplicateApplication)
		h.uploader.On("Delete", mock.Anything, mock.MatchedBy(cvKey)).Return(nil)

		w := applyRequest(t, h, "cv.txt", cvText)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "You have already applied for this job", errorMessage(t, w))
		h.publisher.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
		h.uploader.AssertExpectations(t)
	})
}

func TestApplicationHandler_Apply_InsertFailureRemovesCV(t *testing.T) {
	h := newHarness()
	expectApplyPreconditions(h)
	h.uploader.On("Put", mock.Anything, mock.MatchedBy(cvKey), mock.Anything, mock.Anything).Return("url", nil)
	h.store.On("CreateApplication", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("connection reset"))
	h.uploader.On("Delete", mock.Anything, mock.MatchedBy(cvKey)).Return(errors.New("access denied"))

	w := applyRequest(t, h, "cv.txt", cvText)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	h.uploader.AssertExpectations(t)
	h.publisher.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
}

func TestApplicationHandler_Apply_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  []byte
		want     int
	}{
		{name: "missing file", want: http.StatusBadRequest},
		{name: "executable", filename: "cv.exe", content: []byte("MZ\x90\x00"), want: http.StatusBadRequest},
		{name: "spoofed pdf", filename: "cv.pdf", content: []byte("plain words"), want: http.StatusBadRequest},
		{name: "too large", filename: "cv.txt", content: bytes.Repeat([]byte("a"), 2048), want: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			expectApplyPreconditions(h)

			w := applyRequest(t, h, tt.filename, tt.content)

			assert.Equal(t, tt.want, w.Code, w.Body.String())
			h.uploader.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			h.store.AssertNotCalled(t, "CreateApplication", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestApplicationHandler_Apply_JobNotFound(t *testing.T) {
	h := newHarness()
	h.store.On("GetActiveJob", mock.Anything, jobID).Return(nil, domain.ErrJobNotFound)

	w := applyRequest(t, h, "cv.txt", cvText)

	assert.Equal(t, http.StatusNotFound, w.Code)
	h.assertExpectations(t)
}

func TestApplicationHandler_TriggerAnalysis(t *testing.T) {
	access := &model.ApplicationAccess{ApplicationID: applicationID, ApplicantID: applicantID, CompanyUserID: companyUserID}

	tests := []struct {
		name   string
		caller *domain.Principal
		want   int
	}{
		{name: "applicant", caller: applicant(), want: http.StatusAccepted},
		{name: "hiring company", caller: companyOwner(), want: http.StatusAccepted},
		{name: "admin", caller: admin(), want: http.StatusAccepted},
		{name: "other applicant", caller: &domain.Principal{UserID: "someone-else", Roles: []string{domain.RoleApplicant}}, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.store.On("GetApplicationAccess", mock.Anything, applicationID).Return(access, nil)
			if tt.want == http.StatusAccepted {
				h.store.On("CreateAnalysisTask", mock.Anything, mock.MatchedBy(func(task *model.AnalysisTask) bool {
					return task.ApplicationID == applicationID && task.Status == domain.TaskStatusPending
				})).Return(nil)
				h.publisher.On("PublishJSON", mock.Anything, mock.Anything).Return(nil)
			}

			w := serve(tt.caller, http.MethodPost, "/applications/:application_id/analysis",
				"/applications/"+applicationID+"/analysis", NewApplicationHandler(h.deps).TriggerAnalysis, nil, "")

			require.Equal(t, tt.want, w.Code, w.Body.String())
			if tt.want == http.StatusAccepted {
				var resp dto.TriggerAnalysisResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "PENDING", resp.Status)
				assert.NotEmpty(t, resp.TaskID)
			}
			h.assertExpectations(t)
		})
	}
}

func TestApplicationHandler_TriggerAnalysis_NotFound(t *testing.T) {
	h := newHarness()
	h.store.On("GetApplicationAccess", mock.Anything, applicationID).Return(nil, domain.ErrApplicationNotFound)

	w := serve(applicant(), http.MethodPost, "/applications/:application_id/analysis",
		"/applications/"+applicationID+"/analysis", NewApplicationHandler(h.deps).TriggerAnalysis, nil, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApplicationHandler_ListMine_KeepsNullAnalysis(t *testing.T) {
	h := newHarness()
	now := time.Now()
	apps := []model.ApplicantApplication{
		{
			Application: model.Application{ID: "a1", JobID: jobID, ApplicantID: applicantID, Status: "pending", CreatedAt: now, UpdatedAt: now},
			JobTitle:    "Backend Engineer",
			CompanyName: "Acme",
		},
		{
			Application: model.Application{
				ID: "a2", JobID: jobID, ApplicantID: applicantID, Status: "analyzed",
				MatchScore:      sql.NullInt32{Int32: 75, Valid: true},
				AIAnalysis:      types.NullJSONText{JSONText: types.JSONText(`{"skills":["Go"]}`), Valid: true},
				RecommendedJobs: types.NullJSONText{JSONText: types.JSONText(`[]`), Valid: true},
				CreatedAt:       now,
				UpdatedAt:       now,
			},
			JobTitle:    "Platform Engineer",
			CompanyName: "Acme",
		},
	}
	h.store.On("ListApplicantApplications", mock.Anything, applicantID).Return(apps, nil)

	w := serve(applicant(), http.MethodGet, "/me/applications", "/me/applications", NewApplicationHandler(h.deps).ListMine, nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Applications []map[string]any `json:"applications"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Applications, 2)

	assert.Nil(t, resp.Applications[0]["match_score"])
	assert.Nil(t, resp.Applications[0]["ai_analysis"])
	assert.Nil(t, resp.Applications[0]["recommended_jobs"])
	assert.Equal(t, "Backend Engineer", resp.Applications[0]["job_title"])

	assert.Equal(t, float64(75), resp.Applications[1]["match_score"])
	assert.Equal(t, map[string]any{"skills": []any{"Go"}}, resp.Applications[1]["ai_analysis"])
	assert.Equal(t, []any{}, resp.Applications[1]["recommended_jobs"])
}

func analyzeRequest(t *testing.T, h *harness, caller *domain.Principal, body any) *httptest.ResponseRecorder {
	t.Helper()
	return serve(caller, http.MethodPost, "/analyze-cv", "/analyze-cv",
		NewAnalysisHandler(h.deps).AnalyzeCV, jsonBody(t, body), "application/json")
}

func TestAnalysisHandler_AnalyzeCV(t *testing.T) {
	h := newHarness()
	h.store.On("GetApplicationAccess", mock.Anything, applicationID).
		Return(&model.ApplicationAccess{ApplicationID: applicationID, ApplicantID: applicantID, CompanyUserID: companyUserID}, nil)
	h.analyzer.On("Analyze", mock.Anything, applicationID).Return(&analysis.Result{
		Analysis: analysis.Record{
			Skills:          []string{"React", "TypeScript", "SQL"},
			ExperienceYears: 3.5,
			Education:       "BSc Computer Science",
			MatchScore:      75,
			ModelMatchScore: 80,
		},
		Recommendations: []scoring.Recommendation{{JobID: "j2", Title: "Frontend", MatchScore: 100}},
	}, nil)

	w := analyzeRequest(t, h, applicant(), map[string]string{"application_id": applicationID})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.AnalyzeCVResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 75, resp.Analysis.MatchScore)
	assert.Equal(t, 3.5, resp.Analysis.ExperienceYears)
	assert.Equal(t, []string{"React", "TypeScript", "SQL"}, resp.Analysis.Skills)
	assert.Equal(t, 1, resp.RecommendationsCount)
	h.assertExpectations(t)
}

func TestAnalysisHandler_AnalyzeCV_Errors(t *testing.T) {
	access := &model.ApplicationAccess{ApplicationID: applicationID, ApplicantID: applicantID, CompanyUserID: companyUserID}

	tests := []struct {
		name    string
		body    any
		setup   func(h *harness)
		want    int
		message string
	}{
		{name: "empty body", body: map[string]string{}, setup: func(*harness) {}, want: http.StatusBadRequest, message: "application_id is required"},
		{name: "blank id", body: map[string]string{"application_id": "  "}, setup: func(*harness) {}, want: http.StatusBadRequest, message: "application_id is required"},
		{name: "not a uuid", body: map[string]string{"application_id": "abc"}, setup: func(*harness) {}, want: http.StatusBadRequest},
		{
			name: "application missing",
			body: map[string]string{"application_id": applicationID},
			setup: func(h *harness) {
				h.store.On("GetApplicationAccess", mock.Anything, applicationID).Return(nil, domain.ErrApplicationNotFound)
			},
			want:    http.StatusInternalServerError,
			message: "Application not found",
		},
		{
			name: "job removed before analysis",
			body: map[string]string{"application_id": applicationID},
			setup: func(h *harness) {
				h.store.On("GetApplicationAccess", mock.Anything, applicationID).Return(access, nil)
				h.analyzer.On("Analyze", mock.Anything, applicationID).Return(nil, analysis.ErrApplicationNotFound)
			},
			want: http.StatusInternalServerError,
		},
		{
			name: "model rate limited",
			body: map[string]string{"application_id": applicationID},
			setup: func(h *harness) {
				h.store.On("GetApplicationAccess", mock.Anything, applicationID).Return(access, nil)
				h.analyzer.On("Analyze", mock.Anything, applicationID).Return(nil, fmt.Errorf("%w: status 429", llm.ErrModelRequest))
			},
			want:    http.StatusBadGateway,
			message: "AI analysis failed",
		},
		{
			name: "model answered garbage",
			body: map[string]string{"application_id": applicationID},
			setup: func(h *harness) {
				h.store.On("GetApplicationAccess", mock.Anything, applicationID).Return(access, nil)
				h.analyzer.On("Analyze", mock.Anything, applicationID).Return(nil, llm.ErrModelResponse)
			},
			want: http.StatusBadGateway,
		},
		{
			name: "store failure",
			body: map[string]string{"application_id": applicationID},
			setup: func(h *harness) {
				h.store.On("GetApplicationAccess", mock.Anything, applicationID).Return(access, nil)
				h.analyzer.On("Analyze", mock.Anything, applicationID).Return(nil, errors.New("failed to save analysis: conn reset"))
			},
			want:    http.StatusInternalServerError,
			message: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			tt.setup(h)

			w := analyzeRequest(t, h, applicant(), tt.body)

			assert.Equal(t, tt.want, w.Code, w.Body.String())
			if tt.message != "" {
				assert.Equal(t, tt.message, errorMessage(t, w))
			}
			h.assertExpectations(t)
		})
	}
}

func TestAnalysisHandler_AnalyzeCV_Forbidden(t *testing.T) {
	h := newHarness()
	h.store.On("GetApplicationAccess", mock.Anything, applicationID).
		Return(&model.ApplicationAccess{ApplicationID: applicationID, ApplicantID: applicantID, CompanyUserID: companyUserID}, nil)

	stranger := &domain.Principal{UserID: "8d7c6b5a-0000-4000-8000-000000000000", Roles: []string{domain.RoleCompany}}
	w := analyzeRequest(t, h, stranger, map[string]string{"application_id": applicationID})

	assert.Equal(t, http.StatusForbidden, w.Code)
	h.analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

func company(status string) *model.Company {
	return &model.Company{ID: companyID, UserID: companyUserID, CompanyName: "Acme", Status: status}
}

func TestCompanyHandler_CreateJob(t *testing.T) {
	body := map[string]any{
		"title":           "  Backend Engineer ",
		"description":     "Build APIs",
		"required_skills": []string{" Go ", "PostgreSQL", "go"},
		"location":        "Remote",
	}

	t.Run("approved company", func(t *testing.T) {
		h := newHarness()
		h.store.On("GetCompanyByUser", mock.Anything, companyUserID).Return(company(domain.CompanyStatusApproved), nil)
		h.store.On("CreateJob", mock.Anything, mock.MatchedBy(func(j *model.Job) bool {
			return j.CompanyID == companyID && j.Title == "Backend Engineer" && j.Status == domain.JobStatusActive
		})).Return(nil)

		w := serve(companyOwner(), http.MethodPost, "/company/jobs", "/company/jobs",
			NewCompanyHandler(h.deps).CreateJob, jsonBody(t, body), "application/json")

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var resp dto.JobDTO
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"Go", "PostgreSQL"}, resp.RequiredSkills)
		h.assertExpectations(t)
	})

	t.Run("pending company", func(t *testing.T) {
		h := newHarness()
		h.store.On("GetCompanyByUser", mock.Anything, companyUserID).Return(company(domain.CompanyStatusPending), nil)

		w := serve(companyOwner(), http.MethodPost, "/company/jobs", "/company/jobs",
			NewCompanyHandler(h.deps).CreateJob, jsonBody(t, body), "application/json")

		assert.Equal(t, http.StatusForbidden, w.Code)
		h.store.AssertNotCalled(t, "CreateJob", mock.Anything, mock.Anything)
	})

	t.Run("blank skill", func(t *testing.T) {
		h := newHarness()
		bad := map[string]any{"title": "x", "description": "y", "required_skills": []string{"Go", " "}}

		w := serve(companyOwner(), http.MethodPost, "/company/jobs", "/company/jobs",
			NewCompanyHandler(h.deps).CreateJob, jsonBody(t, bad), "application/json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCompanyHandler_Register_Duplicate(t *testing.T) {
	h := newHarness()
	h.store.On("CreateCompany", mock.Anything, mock.MatchedBy(func(c *model.Company) bool {
		return c.UserID == companyUserID && c.Status == domain.CompanyStatusPending
	})).Return(domain.ErrCompanyExists)

	body := map[string]string{"company_name": "Acme", "category": "Tech", "rdb_certificate": "RDB-1", "location": "Kigali"}
	w := serve(companyOwner(), http.MethodPost, "/companies", "/companies",
		NewCompanyHandler(h.deps).Register, jsonBody(t, body), "application/json")

	assert.Equal(t, http.StatusConflict, w.Code)
	h.assertExpectations(t)
}

func TestCompanyHandler_ListJobApplicants_OtherCompanysJob(t *testing.T) {
	h := newHarness()
	h.store.On("GetCompanyByUser", mock.Anything, companyUserID).Return(company(domain.CompanyStatusApproved), nil)
	h.store.On("GetCompanyJob", mock.Anything, companyID, jobID).Return(nil, domain.ErrJobNotFound)

	w := serve(companyOwner(), http.MethodGet, "/company/jobs/:job_id/applications", "/company/jobs/"+jobID+"/applications",
		NewCompanyHandler(h.deps).ListJobApplicants, nil, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	h.store.AssertNotCalled(t, "ListJobApplicants", mock.Anything, mock.Anything)
}

func TestCompanyHandler_UpdateApplicationStatus(t *testing.T) {
	route := "/company/applications/:application_id/status"
	target := "/company/applications/" + applicationID + "/status"

	h := newHarness()
	w := serve(companyOwner(), http.MethodPatch, route, target,
		NewCompanyHandler(h.deps).UpdateApplicationStatus, jsonBody(t, map[string]string{"status": "analyzed"}), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	h = newHarness()
	h.store.On("GetCompanyByUser", mock.Anything, companyUserID).Return(company(domain.CompanyStatusApproved), nil)
	h.store.On("UpdateApplicationStatus", mock.Anything, companyID, applicationID, "accepted").Return(nil)
	w = serve(companyOwner(), http.MethodPatch, route, target,
		NewCompanyHandler(h.deps).UpdateApplicationStatus, jsonBody(t, map[string]string{"status": "accepted"}), "application/json")
	assert.Equal(t, http.StatusOK, w.Code)
	h.assertExpectations(t)
}

func TestAdminHandler_Review(t *testing.T) {
	route := "/admin/companies/:company_id/approve"
	target := "/admin/companies/" + companyID + "/approve"

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "approved", want: http.StatusOK},
		{name: "already reviewed", err: domain.ErrInvalidTransition, want: http.StatusConflict},
		{name: "missing", err: domain.ErrCompanyNotFound, want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.store.On("ReviewCompany", mock.Anything, companyID, domain.CompanyStatusApproved).Return(tt.err)

			w := serve(admin(), http.MethodPost, route, target, NewAdminHandler(h.deps).ApproveCompany, nil, "")

			assert.Equal(t, tt.want, w.Code)
			h.assertExpectations(t)
		})
	}
}

func TestAdminHandler_Stats(t *testing.T) {
	h := newHarness()
	h.store.On("GetStats", mock.Anything).Return(&model.Stats{TotalCompanies: 2, TotalJobs: 5, TotalApplicants: 9, TotalApplications: 14}, nil)

	w := serve(admin(), http.MethodGet, "/admin/stats", "/admin/stats", NewAdminHandler(h.deps).Stats, nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total_companies":2,"total_jobs":5,"total_applicants":9,"total_applications":14}`, w.Body.String())
}

func TestProfileHandler_Create(t *testing.T) {
	h := newHarness()
	h.store.On("SaveProfile", mock.Anything, &model.Profile{UserID: applicantID, FullName: "Jane Doe", Email: "jane@example.com"}, domain.RoleApplicant).Return(nil)
	h.store.On("GetProfile", mock.Anything, applicantID).Return(&model.Profile{
		UserID:   applicantID,
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		Roles:    []string{domain.RoleApplicant},
	}, nil)

	w := serve(applicant(), http.MethodPost, "/profiles", "/profiles", NewProfileHandler(h.deps).Create,
		jsonBody(t, map[string]string{"full_name": " Jane Doe ", "role": "applicant"}), "application/json")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"roles":["applicant"]`)
	h.assertExpectations(t)
}

func TestProfileHandler_Create_RejectsAdminRole(t *testing.T) {
	h := newHarness()

	w := serve(applicant(), http.MethodPost, "/profiles", "/profiles", NewProfileHandler(h.deps).Create,
		jsonBody(t, map[string]string{"full_name": "Jane", "role": "admin"}), "application/json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	h.store.AssertNotCalled(t, "SaveProfile", mock.Anything, mock.Anything, mock.Anything)
}
