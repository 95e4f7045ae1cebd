package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/cuongbtq/jobboard/internal/api/domain"
	"github.com/cuongbtq/jobboard/internal/api/dto"
	"github.com/cuongbtq/jobboard/internal/api/handler"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidators(v); err != nil {
			deps.Logger.Error("Failed to register validators", slog.Any("error", err))
		}
	}

	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware(deps.AllowedOrigins))
	r.Use(NewMetricsBuilder(registry).Build())

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := deps.Store.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "jobboard-api-service",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "jobboard-api-service",
		})
	})

	jobHandler := handler.NewJobHandler(deps)
	applicationHandler := handler.NewApplicationHandler(deps)
	analysisHandler := handler.NewAnalysisHandler(deps)
	companyHandler := handler.NewCompanyHandler(deps)
	adminHandler := handler.NewAdminHandler(deps)
	profileHandler := handler.NewProfileHandler(deps)

	v1 := r.Group("/api/v1")
	{
		// public catalog
		v1.GET("/jobs", jobHandler.ListJobs)
		v1.GET("/jobs/:job_id", jobHandler.GetJob)

		authed := v1.Group("")
		authed.Use(AuthMiddleware(deps.JWTSecret, deps.Store, deps.Logger))
		{
			authed.POST("/profiles", profileHandler.Create)
			authed.GET("/profiles/me", profileHandler.Me)

			authed.POST("/jobs/:job_id/applications", RequireRole(domain.RoleApplicant), applicationHandler.Apply)
			authed.GET("/me/applications", RequireRole(domain.RoleApplicant), applicationHandler.ListMine)
			authed.POST("/applications/:application_id/analysis", applicationHandler.TriggerAnalysis)
			authed.POST("/analyze-cv", analysisHandler.AnalyzeCV)

			companies := authed.Group("/companies", RequireRole(domain.RoleCompany))
			{
				companies.POST("", companyHandler.Register)
				companies.GET("/me", companyHandler.Me)
			}

			company := authed.Group("/company", RequireRole(domain.RoleCompany))
			{
				company.POST("/jobs", companyHandler.CreateJob)
				company.GET("/jobs", companyHandler.ListJobs)
				company.PATCH("/jobs/:job_id/status", companyHandler.UpdateJobStatus)
				company.GET("/jobs/:job_id/applications", companyHandler.ListJobApplicants)
				company.PATCH("/applications/:application_id/status", companyHandler.UpdateApplicationStatus)
			}

			admin := authed.Group("/admin", RequireRole(domain.RoleAdmin))
			{
				admin.GET("/companies/pending", adminHandler.ListPendingCompanies)
				admin.POST("/companies/:company_id/approve", adminHandler.ApproveCompany)
				admin.POST("/companies/:company_id/reject", adminHandler.RejectCompany)
				admin.GET("/stats", adminHandler.Stats)
			}
		}
	}

	return r
}
