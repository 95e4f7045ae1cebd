package model

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

type Profile struct {
	UserID    string         `db:"user_id"`
	FullName  string         `db:"full_name"`
	Email     string         `db:"email"`
	Roles     pq.StringArray `db:"roles"`
	CreatedAt time.Time      `db:"created_at"`
}

type Company struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	CompanyName    string    `db:"company_name"`
	Category       string    `db:"category"`
	RDBCertificate string    `db:"rdb_certificate"`
	Location       string    `db:"location"`
	Status         string    `db:"status"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// PendingCompany is a company awaiting review with its owner's profile
type PendingCompany struct {
	Company
	OwnerName  string `db:"owner_name"`
	OwnerEmail string `db:"owner_email"`
}

type Job struct {
	ID             string         `db:"id"`
	CompanyID      string         `db:"company_id"`
	Title          string         `db:"title"`
	Description    string         `db:"description"`
	RequiredSkills pq.StringArray `db:"required_skills"`
	Location       string         `db:"location"`
	EmploymentType string         `db:"employment_type"`
	SalaryRange    string         `db:"salary_range"`
	Status         string         `db:"status"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// CatalogJob is a public job listing with its company
type CatalogJob struct {
	Job
	CompanyName     string `db:"company_name"`
	CompanyLocation string `db:"company_location"`
	CompanyCategory string `db:"company_category"`
}

// CompanyJob is a company's own job with its application count
type CompanyJob struct {
	Job
	ApplicationCount int `db:"application_count"`
}

type Application struct {
	ID              string             `db:"id"`
	JobID           string             `db:"job_id"`
	ApplicantID     string             `db:"applicant_id"`
	CVURL           string             `db:"cv_url"`
	CVPath          string             `db:"cv_path"`
	CoverLetter     sql.NullString     `db:"cover_letter"`
	Status          string             `db:"status"`
	MatchScore      sql.NullInt32      `db:"match_score"`
	AIAnalysis      types.NullJSONText `db:"ai_analysis"`
	RecommendedJobs types.NullJSONText `db:"recommended_jobs"`
	AnalysisError   sql.NullString     `db:"analysis_error"`
	CreatedAt       time.Time          `db:"created_at"`
	UpdatedAt       time.Time          `db:"updated_at"`
}

// ApplicantApplication is an application as its applicant sees it
type ApplicantApplication struct {
	Application
	JobTitle    string `db:"job_title"`
	CompanyName string `db:"company_name"`
}

// JobApplicant is an application as the hiring company sees it
type JobApplicant struct {
	Application
	ApplicantName  string `db:"applicant_name"`
	ApplicantEmail string `db:"applicant_email"`
}

// ApplicationAccess names who may act on an application
type ApplicationAccess struct {
	ApplicationID string `db:"application_id"`
	ApplicantID   string `db:"applicant_id"`
	CompanyUserID string `db:"company_user_id"`
}

type AnalysisTask struct {
	TaskID        string    `db:"task_id"`
	ApplicationID string    `db:"application_id"`
	Status        string    `db:"status"`
	MaxRetries    int       `db:"max_retries"`
	CreatedAt     time.Time `db:"created_at"`
}

type Stats struct {
	TotalCompanies    int `db:"total_companies"`
	TotalJobs         int `db:"total_jobs"`
	TotalApplicants   int `db:"total_applicants"`
	TotalApplications int `db:"total_applications"`
}
