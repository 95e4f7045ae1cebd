package handler

import (
	"context"

	"github.com/cuongbtq/jobboard/internal/analysis"
	"github.com/cuongbtq/jobboard/internal/api/model"
	"github.com/cuongbtq/jobboard/internal/api/storage"
	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) ListActiveJobs(ctx context.Context, filter storage.JobFilter) ([]model.CatalogJob, error) {
	args := m.Called(ctx, filter)
	jobs, _ := args.Get(0).([]model.CatalogJob)
	return jobs, args.Error(1)
}

func (m *mockStore) GetActiveJob(ctx context.Context, jobID string) (*model.CatalogJob, error) {
	args := m.Called(ctx, jobID)
	job, _ := args.Get(0).(*model.CatalogJob)
	return job, args.Error(1)
}

func (m *mockStore) CreateJob(ctx context.Context, job *model.Job) error {
	return m.Called(ctx, job).Error(0)
}

func (m *mockStore) ListCompanyJobs(ctx context.Context, companyID string) ([]model.CompanyJob, error) {
	args := m.Called(ctx, companyID)
	jobs, _ := args.Get(0).([]model.CompanyJob)
	return jobs, args.Error(1)
}

func (m *mockStore) GetCompanyJob(ctx context.Context, companyID, jobID string) (*model.Job, error) {
	args := m.Called(ctx, companyID, jobID)
	job, _ := args.Get(0).(*model.Job)
	return job, args.Error(1)
}

func (m *mockStore) UpdateJobStatus(ctx context.Context, companyID, jobID, status string) error {
	return m.Called(ctx, companyID, jobID, status).Error(0)
}

func (m *mockStore) CreateCompany(ctx context.Context, company *model.Company) error {
	return m.Called(ctx, company).Error(0)
}

func (m *mockStore) GetCompanyByUser(ctx context.Context, userID string) (*model.Company, error) {
	args := m.Called(ctx, userID)
	company, _ := args.Get(0).(*model.Company)
	return company, args.Error(1)
}

func (m *mockStore) ListPendingCompanies(ctx context.Context) ([]model.PendingCompany, error) {
	args := m.Called(ctx)
	companies, _ := args.Get(0).([]model.PendingCompany)
	return companies, args.Error(1)
}

func (m *mockStore) ReviewCompany(ctx context.Context, companyID, status string) error {
	return m.Called(ctx, companyID, status).Error(0)
}

func (m *mockStore) HasApplied(ctx context.Context, jobID, applicantID string) (bool, error) {
	args := m.Called(ctx, jobID, applicantID)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) CreateApplication(ctx context.Context, app *model.Application, task *model.AnalysisTask) error {
	return m.Called(ctx, app, task).Error(0)
}

func (m *mockStore) CreateAnalysisTask(ctx context.Context, task *model.AnalysisTask) error {
	return m.Called(ctx, task).Error(0)
}

func (m *mockStore) GetApplicationAccess(ctx context.Context, applicationID string) (*model.ApplicationAccess, error) {
	args := m.Called(ctx, applicationID)
	access, _ := args.Get(0).(*model.ApplicationAccess)
	return access, args.Error(1)
}

func (m *mockStore) ListApplicantApplications(ctx context.Context, applicantID string) ([]model.ApplicantApplication, error) {
	args := m.Called(ctx, applicantID)
	apps, _ := args.Get(0).([]model.ApplicantApplication)
	return apps, args.Error(1)
}

func (m *mockStore) ListJobApplicants(ctx context.Context, jobID string) ([]model.JobApplicant, error) {
	args := m.Called(ctx, jobID)
	apps, _ := args.Get(0).([]model.JobApplicant)
	return apps, args.Error(1)
}

func (m *mockStore) UpdateApplicationStatus(ctx context.Context, companyID, applicationID, status string) error {
	return m.Called(ctx, companyID, applicationID, status).Error(0)
}

func (m *mockStore) SaveProfile(ctx context.Context, profile *model.Profile, role string) error {
	return m.Called(ctx, profile, role).Error(0)
}

func (m *mockStore) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	args := m.Called(ctx, userID)
	profile, _ := args.Get(0).(*model.Profile)
	return profile, args.Error(1)
}

func (m *mockStore) ListRoles(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	roles, _ := args.Get(0).([]string)
	return roles, args.Error(1)
}

func (m *mockStore) GetStats(ctx context.Context) (*model.Stats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*model.Stats)
	return stats, args.Error(1)
}

func (m *mockStore) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(ctx context.Context, v any) error {
	return m.Called(ctx, v).Error(0)
}

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, body, contentType)
	return args.String(0), args.Error(1)
}

func (m *mockUploader) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) Analyze(ctx context.Context, applicationID string) (*analysis.Result, error) {
	args := m.Called(ctx, applicationID)
	result, _ := args.Get(0).(*analysis.Result)
	return result, args.Error(1)
}
