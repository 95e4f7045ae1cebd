package dto

type CreateProfileRequest struct {
	FullName string `json:"full_name" binding:"required,max=200"`
	Role     string `json:"role" binding:"required,oneof=applicant company"`
}

type ProfileDTO struct {
	UserID    string   `json:"user_id"`
	FullName  string   `json:"full_name"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	CreatedAt string   `json:"created_at"`
}
