package services

import (
	"github.com/dealscout/bizfinder-pipeline/internal/logger"
	"github.com/dealscout/bizfinder-pipeline/internal/metrics"
	"github.com/dealscout/bizfinder-pipeline/internal/models"
	"github.com/dealscout/bizfinder-pipeline/internal/notify"
	"github.com/dealscout/bizfinder-pipeline/internal/repository"
	"github.com/dealscout/bizfinder-pipeline/internal/scoring"
	"github.com/dealscout/bizfinder-pipeline/pkg/config"
)

// Services contains all application services
type Services struct {
	Pipeline *Pipeline
	Auth     AuthService
}

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Login(email, password string) (*models.LoginResponse, error)
	Register(req *models.CreateUserRequest) (*models.User, error)
	ValidateToken(token string) (*models.User, error)
}

// NewServices creates a new Services instance with all dependencies
func NewServices(repos *repository.Repositories, engine *scoring.Engine, m *metrics.Metrics, log logger.Logger, cfg *config.Config) *Services {
	var sink notify.Notifier
	if cfg.WebhookURL != "" {
		sink = notify.NewWebhookNotifier(cfg.WebhookURL, log)
	} else {
		sink = notify.NewLogNotifier(log)
	}
	notifier := notify.NewRouter(sink, cfg.ScoreThreshold, log)

	pipelineCfg := PipelineConfig{
		MaxConcurrent: cfg.MaxConcurrent,
		Interval:      cfg.PipelineInterval,
	}

	return &Services{
		Pipeline: NewPipeline(repos, engine, notifier, m, log, pipelineCfg),
		Auth:     newAuthService(repos, cfg),
	}
}
