package dto

type ListJobsRequest struct {
	Search   string `form:"search" binding:"max=100"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Cursor   string `form:"cursor"`
}

type ListJobsResponse struct {
	Jobs       []JobDTO `json:"jobs"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

type JobDTO struct {
	JobID           string   `json:"job_id"`
	CompanyID       string   `json:"company_id"`
	CompanyName     string   `json:"company_name,omitempty"`
	CompanyLocation string   `json:"company_location,omitempty"`
	CompanyCategory string   `json:"company_category,omitempty"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	RequiredSkills  []string `json:"required_skills"`
	Location        string   `json:"location"`
	EmploymentType  string   `json:"employment_type"`
	SalaryRange     string   `json:"salary_range"`
	Status          string   `json:"status"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

type CreateJobRequest struct {
	Title          string   `json:"title" binding:"required,max=200"`
	Description    string   `json:"description" binding:"required,max=10000"`
	RequiredSkills []string `json:"required_skills" binding:"skills"`
	Location       string   `json:"location" binding:"max=200"`
	EmploymentType string   `json:"employment_type" binding:"max=50"`
	SalaryRange    string   `json:"salary_range" binding:"max=100"`
}

type UpdateJobStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active closed"`
}

type CompanyJobDTO struct {
	JobDTO
	ApplicationCount int `json:"application_count"`
}
