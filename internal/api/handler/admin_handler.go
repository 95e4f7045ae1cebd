package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cuongbtq/jobboard/internal/api/domain"
	"github.com/cuongbtq/jobboard/internal/api/dto"
	"github.com/cuongbtq/jobboard/shared/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler serves company review and platform statistics
type AdminHandler struct {
	logger *slog.Logger
	store  Store
}

// NewAdminHandler creates a new AdminHandler instance
func NewAdminHandler(deps *Dependencies) *AdminHandler {
	return &AdminHandler{
		logger: deps.Logger,
		store:  deps.Store,
	}
}

// ListPendingCompanies handles GET /api/v1/admin/companies/pending
func (h *AdminHandler) ListPendingCompanies(c *gin.Context) {
	companies, err := h.store.ListPendingCompanies(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out := make([]dto.PendingCompanyDTO, len(companies))
	for i := range companies {
		out[i] = dto.PendingCompanyDTO{
			CompanyDTO: toCompanyDTO(&companies[i].Company),
			OwnerName:  companies[i].OwnerName,
			OwnerEmail: companies[i].OwnerEmail,
		}
	}

	c.JSON(http.StatusOK, gin.H{"companies": out})
}

// ApproveCompany handles POST /api/v1/admin/companies/:company_id/approve
func (h *AdminHandler) ApproveCompany(c *gin.Context) {
	h.review(c, domain.CompanyStatusApproved)
}

// RejectCompany handles POST /api/v1/admin/companies/:company_id/reject
func (h *AdminHandler) RejectCompany(c *gin.Context) {
	h.review(c, domain.CompanyStatusRejected)
}

func (h *AdminHandler) review(c *gin.Context, status string) {
	companyID := c.Param("company_id")
	if _, err := uuid.Parse(companyID); err != nil {
		respondError(c, h.logger, apperror.BadRequest("company_id must be a valid UUID"))
		return
	}

	err := h.store.ReviewCompany(c.Request.Context(), companyID, status)
	switch {
	case errors.Is(err, domain.ErrCompanyNotFound):
		respondError(c, h.logger, apperror.NotFound("Company not found"))
		return
	case errors.Is(err, domain.ErrInvalidTransition):
		respondError(c, h.logger, apperror.Conflict("Company has already been reviewed"))
		return
	case err != nil:
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Company reviewed",
		slog.String("company_id", companyID),
		slog.String("status", status),
		slog.String("admin_id", principal(c).UserID),
	)

	c.JSON(http.StatusOK, gin.H{"company_id": companyID, "status": status})
}

// Stats handles GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.store.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.StatsDTO{
		TotalCompanies:    stats.TotalCompanies,
		TotalJobs:         stats.TotalJobs,
		TotalApplicants:   stats.TotalApplicants,
		TotalApplications: stats.TotalApplications,
	})
}
