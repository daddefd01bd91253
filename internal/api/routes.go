package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dealscout/bizfinder-pipeline/internal/auth"
	"github.com/dealscout/bizfinder-pipeline/internal/database"
	"github.com/dealscout/bizfinder-pipeline/internal/logger"
	"github.com/dealscout/bizfinder-pipeline/internal/metrics"
	"github.com/dealscout/bizfinder-pipeline/internal/middleware"
	"github.com/dealscout/bizfinder-pipeline/internal/repository"
	"github.com/dealscout/bizfinder-pipeline/internal/scraper"
	"github.com/dealscout/bizfinder-pipeline/internal/services"
	"github.com/dealscout/bizfinder-pipeline/pkg/config"
)

// Deps carries everything the routes need.
type Deps struct {
	DB       *database.Database
	Repos    *repository.Repositories
	Services *services.Services
	Scraper  *scraper.Service
	Metrics  *metrics.Metrics
	Config   *config.Config
	Log      logger.Logger
}

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, deps Deps) {
	r.Use(middleware.RequestLogging(deps.Log))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(deps.Config))
	r.Use(middleware.InputValidation(deps.Config))
	if deps.Config.EnableRateLimit {
		r.Use(middleware.RateLimit(100))
	}

	authHandler := NewAuthHandler(deps.Services.Auth)
	oppHandler := NewOpportunitiesHandler(deps.Repos)
	pipelineCfg := services.PipelineConfig{
		MaxConcurrent: deps.Config.MaxConcurrent,
		Interval:      deps.Config.PipelineInterval,
	}
	pipelineHandler := NewPipelineHandler(deps.Services.Pipeline, deps.Scraper, pipelineCfg)

	r.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		dbState := "ok"
		if deps.DB != nil {
			if err := deps.DB.HealthCheck(); err != nil {
				status = http.StatusServiceUnavailable
				dbState = err.Error()
			}
		}
		c.JSON(status, gin.H{
			"database":  dbState,
			"timestamp": time.Now(),
		})
	})

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	public := r.Group("/api/v1")
	{
		public.POST("/auth/login", authHandler.Login)
	}

	protected := r.Group("/api/v1")
	protected.Use(auth.JWTMiddleware(deps.Config.JWTSecret))
	{
		protected.GET("/opportunities", oppHandler.GetOpportunities)
		protected.GET("/opportunities/:id", oppHandler.GetOpportunity)
		protected.GET("/opportunities/:id/events", oppHandler.GetOpportunityEvents)
		protected.GET("/events", oppHandler.GetRecentEvents)

		protected.GET("/pipeline/status", pipelineHandler.GetPipelineStatus)
		protected.GET("/health/scraper", pipelineHandler.GetScraperHealth)
	}

	admin := r.Group("/api/v1")
	admin.Use(auth.JWTMiddleware(deps.Config.JWTSecret), auth.RequireAdmin())
	{
		admin.POST("/auth/register", authHandler.Register)
		admin.POST("/pipeline/start", pipelineHandler.StartPipeline)
		admin.POST("/pipeline/stop", pipelineHandler.StopPipeline)
		admin.POST("/pipeline/run-once", pipelineHandler.RunPipelineOnce)
	}
}
