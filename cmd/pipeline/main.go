package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dealscout/bizfinder-pipeline/internal/database"
	"github.com/dealscout/bizfinder-pipeline/internal/logger"
	"github.com/dealscout/bizfinder-pipeline/internal/metrics"
	"github.com/dealscout/bizfinder-pipeline/internal/repository"
	"github.com/dealscout/bizfinder-pipeline/internal/scoring"
	"github.com/dealscout/bizfinder-pipeline/internal/scraper"
	"github.com/dealscout/bizfinder-pipeline/internal/services"
	"github.com/dealscout/bizfinder-pipeline/pkg/config"
)

// Runs one scrape-score-resolve batch and exits, or keeps cycling on the
// configured interval with -daemon. With -memory everything stays in
// process, which is handy for trying out scoring config changes without
// a database.
func main() {
	daemon := flag.Bool("daemon", false, "keep running batches on the configured interval")
	memory := flag.Bool("memory", false, "use an in-memory store instead of Postgres")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.New()
	log := logger.New(cfg.LogLevel)
	defer log.Sync()

	var repos *repository.Repositories
	if *memory {
		repos = repository.NewMemoryStore().Repositories()
	} else {
		db, err := database.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to connect to database", err)
		}
		defer db.Close()

		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatal("Failed to run migrations", err)
		}
		repos = repository.NewRepositories(db.DB)
	}

	scoringCfg, err := scoring.LoadConfig(cfg.ScoringConfigPath)
	if err != nil {
		log.Fatal("Failed to load scoring config", err)
	}
	engine := scoring.NewEngine(scoringCfg)

	m := metrics.New()

	requestsPerSecond := 1
	if cfg.ScrapeDelay > 0 {
		requestsPerSecond = int(1e9 / cfg.ScrapeDelay.Nanoseconds())
	}
	source := scraper.NewService(cfg.GetSources(), scraper.NewClient(requestsPerSecond), m, log)

	svcs := services.NewServices(repos, engine, m, log, cfg)

	if *daemon {
		runDaemon(svcs, source, cfg, log)
		return
	}

	listings, err := source.Fetch(context.Background())
	if err != nil {
		log.Fatal("Scrape failed", err)
	}

	result, err := svcs.Pipeline.ProcessBatch(context.Background(), listings)
	if err != nil {
		log.Fatal("Batch failed", err)
	}

	fmt.Println(result.Summary())
	for _, p := range result.Problems {
		fmt.Printf("  rejected %s: %s\n", p.Key, p.Reason)
	}
}

func runDaemon(svcs *services.Services, source *scraper.Service, cfg *config.Config, log logger.Logger) {
	pipelineCfg := services.PipelineConfig{
		MaxConcurrent: cfg.MaxConcurrent,
		Interval:      cfg.PipelineInterval,
	}
	if err := svcs.Pipeline.Start(source, pipelineCfg); err != nil {
		log.Fatal("Failed to start pipeline", err)
	}
	log.Info("Pipeline running", "interval", cfg.PipelineInterval.String(), "sources", cfg.Sources)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	if err := svcs.Pipeline.Stop(); err != nil {
		log.Error("Pipeline stop failed", err)
	}
}
