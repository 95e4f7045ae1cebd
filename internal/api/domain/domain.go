package domain

import (
	"errors"
	"slices"
)

// Roles stored in user_roles
const (
	RoleApplicant = "applicant"
	RoleCompany   = "company"
	RoleAdmin     = "admin"
)

// Company status values
const (
	CompanyStatusPending  = "pending"
	CompanyStatusApproved = "approved"
	CompanyStatusRejected = "rejected"
)

// Job status values
const (
	JobStatusActive = "active"
	JobStatusClosed = "closed"
)

// Application status values. The first three follow the analysis, the rest
// record the company's review decision.
const (
	ApplicationStatusPending        = "pending"
	ApplicationStatusAnalyzed       = "analyzed"
	ApplicationStatusAnalysisFailed = "analysis_failed"
	ApplicationStatusReviewed       = "reviewed"
	ApplicationStatusAccepted       = "accepted"
	ApplicationStatusRejected       = "rejected"
)

// TaskStatusPending is the status of a freshly queued analysis task
const TaskStatusPending = "PENDING"

var (
	ErrJobNotFound          = errors.New("job not found")
	ErrCompanyNotFound      = errors.New("company not found")
	ErrApplicationNotFound  = errors.New("application not found")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrDuplicateApplication = errors.New("application already exists")
	ErrCompanyExists        = errors.New("company already registered")
	ErrInvalidTransition    = errors.New("status change not allowed")
)

// PrincipalKey is the gin context key holding the authenticated Principal
const PrincipalKey = "principal"

// Principal is the authenticated caller
type Principal struct {
	UserID string
	Email  string
	Roles  []string
}

// HasRole reports whether the caller holds any of roles
func (p *Principal) HasRole(roles ...string) bool {
	for _, r := range roles {
		if slices.Contains(p.Roles, r) {
			return true
		}
	}
	return false
}
