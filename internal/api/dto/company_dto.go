package dto

type RegisterCompanyRequest struct {
	CompanyName    string `json:"company_name" binding:"required,max=200"`
	Category       string `json:"category" binding:"required,max=100"`
	RDBCertificate string `json:"rdb_certificate" binding:"required,max=500"`
	Location       string `json:"location" binding:"required,max=200"`
}

type CompanyDTO struct {
	CompanyID      string `json:"company_id"`
	UserID         string `json:"user_id"`
	CompanyName    string `json:"company_name"`
	Category       string `json:"category"`
	RDBCertificate string `json:"rdb_certificate"`
	Location       string `json:"location"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

type PendingCompanyDTO struct {
	CompanyDTO
	OwnerName  string `json:"owner_name"`
	OwnerEmail string `json:"owner_email"`
}

type StatsDTO struct {
	TotalCompanies    int `json:"total_companies"`
	TotalJobs         int `json:"total_jobs"`
	TotalApplicants   int `json:"total_applicants"`
	TotalApplications int `json:"total_applications"`
}
