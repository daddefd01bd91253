package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/dealscout/bizfinder-pipeline/internal/api"
	"github.com/dealscout/bizfinder-pipeline/internal/database"
	"github.com/dealscout/bizfinder-pipeline/internal/logger"
	"github.com/dealscout/bizfinder-pipeline/internal/metrics"
	"github.com/dealscout/bizfinder-pipeline/internal/repository"
	"github.com/dealscout/bizfinder-pipeline/internal/scoring"
	"github.com/dealscout/bizfinder-pipeline/internal/scraper"
	"github.com/dealscout/bizfinder-pipeline/internal/services"
	"github.com/dealscout/bizfinder-pipeline/pkg/config"
)

func main() {
	_ = godotenv.Load()

	cfg := config.New()
	log := logger.New(cfg.LogLevel)
	defer log.Sync()

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal("Failed to run migrations", err)
	}

	scoringCfg, err := scoring.LoadConfig(cfg.ScoringConfigPath)
	if err != nil {
		log.Fatal("Failed to load scoring config", err)
	}
	engine := scoring.NewEngine(scoringCfg)

	repos := repository.NewRepositories(db.DB)
	m := metrics.New()

	requestsPerSecond := 1
	if cfg.ScrapeDelay > 0 {
		requestsPerSecond = int(1e9 / cfg.ScrapeDelay.Nanoseconds())
	}
	scraperSvc := scraper.NewService(cfg.GetSources(), scraper.NewClient(requestsPerSecond), m, log)

	svcs := services.NewServices(repos, engine, m, log, cfg)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if err := r.SetTrustedProxies(cfg.GetTrustedProxies()); err != nil {
		log.Fatal("Failed to set trusted proxies", err)
	}

	api.SetupRoutes(r, api.Deps{
		DB:       db,
		Repos:    repos,
		Services: svcs,
		Scraper:  scraperSvc,
		Metrics:  m,
		Config:   cfg,
		Log:      log,
	})

	log.Info("Server starting", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server", err)
	}
}
