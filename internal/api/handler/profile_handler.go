package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cuongbtq/jobboard/internal/api/domain"
	"github.com/cuongbtq/jobboard/internal/api/dto"
	"github.com/cuongbtq/jobboard/internal/api/model"
	"github.com/cuongbtq/jobboard/shared/apperror"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	logger *slog.Logger
	store  Store
}

func NewProfileHandler(deps *Dependencies) *ProfileHandler {
	return &ProfileHandler{
		logger: deps.Logger,
		store:  deps.Store,
	}
}

// Create handles POST /api/v1/profiles
// Saves the caller's profile and grants the chosen role
func (h *ProfileHandler) Create(c *gin.Context) {
	var req dto.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperror.BadRequest("full_name and role (applicant or company) are required"))
		return
	}

	caller := principal(c)
	profile := &model.Profile{
		UserID:   caller.UserID,
		FullName: strings.TrimSpace(req.FullName),
		Email:    caller.Email,
	}

	ctx := c.Request.Context()
	if err := h.store.SaveProfile(ctx, profile, req.Role); err != nil {
		respondError(c, h.logger, err)
		return
	}

	saved, err := h.store.GetProfile(ctx, caller.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, toProfileDTO(saved))
}

// Me handles GET /api/v1/profiles/me
func (h *ProfileHandler) Me(c *gin.Context) {
	profile, err := h.store.GetProfile(c.Request.Context(), principal(c).UserID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			respondError(c, h.logger, apperror.NotFound("Profile not found"))
			return
		}
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toProfileDTO(profile))
}

func toProfileDTO(p *model.Profile) dto.ProfileDTO {
	roles := []string(p.Roles)
	if roles == nil {
		roles = []string{}
	}
	return dto.ProfileDTO{
		UserID:    p.UserID,
		FullName:  p.FullName,
		Email:     p.Email,
		Roles:     roles,
		CreatedAt: formatTime(p.CreatedAt),
	}
}
