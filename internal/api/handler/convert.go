package handler

import (
	"encoding/json"

	"github.com/cuongbtq/jobboard/internal/api/dto"
	"github.com/cuongbtq/jobboard/internal/api/model"
)

func toJobDTO(job *model.Job) dto.JobDTO {
	skills := []string(job.RequiredSkills)
	if skills == nil {
		skills = []string{}
	}
	return dto.JobDTO{
		JobID:          job.ID,
		CompanyID:      job.CompanyID,
		Title:          job.Title,
		Description:    job.Description,
		RequiredSkills: skills,
		Location:       job.Location,
		EmploymentType: job.EmploymentType,
		SalaryRange:    job.SalaryRange,
		Status:         job.Status,
		CreatedAt:      formatTime(job.CreatedAt),
		UpdatedAt:      formatTime(job.UpdatedAt),
	}
}

func toCatalogJobDTO(job *model.CatalogJob) dto.JobDTO {
	out := toJobDTO(&job.Job)
	out.CompanyName = job.CompanyName
	out.CompanyLocation = job.CompanyLocation
	out.CompanyCategory = job.CompanyCategory
	return out
}

func toCompanyDTO(company *model.Company) dto.CompanyDTO {
	return dto.CompanyDTO{
		CompanyID:      company.ID,
		UserID:         company.UserID,
		CompanyName:    company.CompanyName,
		Category:       company.Category,
		RDBCertificate: company.RDBCertificate,
		Location:       company.Location,
		Status:         company.Status,
		CreatedAt:      formatTime(company.CreatedAt),
		UpdatedAt:      formatTime(company.UpdatedAt),
	}
}

// toApplicationDTO keeps analysis fields null until the worker fills them
func toApplicationDTO(app *model.Application) dto.ApplicationDTO {
	out := dto.ApplicationDTO{
		ApplicationID:   app.ID,
		JobID:           app.JobID,
		ApplicantID:     app.ApplicantID,
		CVURL:           app.CVURL,
		Status:          app.Status,
		AIAnalysis:      json.RawMessage("null"),
		RecommendedJobs: json.RawMessage("null"),
		CreatedAt:       formatTime(app.CreatedAt),
		UpdatedAt:       formatTime(app.UpdatedAt),
	}

	if app.CoverLetter.Valid {
		out.CoverLetter = &app.CoverLetter.String
	}
	if app.MatchScore.Valid {
		score := int(app.MatchScore.Int32)
		out.MatchScore = &score
	}
	if app.AIAnalysis.Valid && len(app.AIAnalysis.JSONText) > 0 {
		out.AIAnalysis = json.RawMessage(app.AIAnalysis.JSONText)
	}
	if app.RecommendedJobs.Valid && len(app.RecommendedJobs.JSONText) > 0 {
		out.RecommendedJobs = json.RawMessage(app.RecommendedJobs.JSONText)
	}
	if app.AnalysisError.Valid {
		out.AnalysisError = &app.AnalysisError.String
	}

	return out
}
