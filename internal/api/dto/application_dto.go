package dto

import "encoding/json"

type ApplicationDTO struct {
	ApplicationID   string          `json:"application_id"`
	JobID           string          `json:"job_id"`
	ApplicantID     string          `json:"applicant_id"`
	CVURL           string          `json:"cv_url"`
	CoverLetter     *string         `json:"cover_letter"`
	Status          string          `json:"status"`
	MatchScore      *int            `json:"match_score"`
	AIAnalysis      json.RawMessage `json:"ai_analysis"`
	RecommendedJobs json.RawMessage `json:"recommended_jobs"`
	AnalysisError   *string         `json:"analysis_error,omitempty"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

type ApplyResponse struct {
	Application    ApplicationDTO `json:"application"`
	TaskID         string         `json:"task_id"`
	AnalysisQueued bool           `json:"analysis_queued"`
}

type MyApplicationDTO struct {
	ApplicationDTO
	JobTitle    string `json:"job_title"`
	CompanyName string `json:"company_name"`
}

type JobApplicantDTO struct {
	ApplicationDTO
	ApplicantName  string `json:"applicant_name"`
	ApplicantEmail string `json:"applicant_email"`
}

type UpdateApplicationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=reviewed accepted rejected"`
}

type TriggerAnalysisResponse struct {
	TaskID        string `json:"task_id"`
	ApplicationID string `json:"application_id"`
	Status        string `json:"status"`
}

type AnalyzeCVRequest struct {
	ApplicationID string `json:"application_id"`
}

type AnalyzeCVResponse struct {
	Success              bool        `json:"success"`
	Analysis             AnalysisDTO `json:"analysis"`
	RecommendationsCount int         `json:"recommendations_count"`
}

type AnalysisDTO struct {
	Skills          []string `json:"skills"`
	ExperienceYears float64  `json:"experience_years"`
	Education       string   `json:"education"`
	MatchScore      int      `json:"match_score"`
}
