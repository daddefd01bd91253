package scraper

import (
	"context"

	"github.com/dealscout/bizfinder-pipeline/internal/logger"
	"github.com/dealscout/bizfinder-pipeline/internal/metrics"
	"github.com/dealscout/bizfinder-pipeline/internal/models"
)

// Source is one marketplace the service knows how to scrape.
type Source interface {
	SourceID() string
	FetchListings(ctx context.Context, limit int) ([]models.Listing, error)
}

// Service aggregates all configured sources into one batch for the
// pipeline. It implements the pipeline's ListingSource.
type Service struct {
	sources []Source
	health  *HealthMonitor
	metrics *metrics.Metrics
	log     logger.Logger

	// MaxPerSource caps how deep each source is fetched per cycle.
	MaxPerSource int
}

// NewService creates a scraper service for the given source IDs. Unknown
// IDs are skipped with a warning so one typo does not kill the cycle.
func NewService(sourceIDs []string, client *Client, m *metrics.Metrics, log logger.Logger) *Service {
	s := &Service{
		health:       NewHealthMonitor(),
		metrics:      m,
		log:          log,
		MaxPerSource: 5,
	}

	for _, id := range sourceIDs {
		switch id {
		case micronsSourceID:
			s.sources = append(s.sources, NewMicronsSource(client))
		case acquireSourceID:
			s.sources = append(s.sources, NewAcquireSource(client))
		default:
			log.Warn("unknown source", "source", id)
		}
	}
	return s
}

// Health exposes the per-source monitor for the API
func (s *Service) Health() *HealthMonitor {
	return s.health
}

// Fetch collects listings from every configured source. A failing source
// is recorded and skipped; the batch carries whatever the rest produced.
func (s *Service) Fetch(ctx context.Context) ([]models.Listing, error) {
	var out []models.Listing
	for _, src := range s.sources {
		listings, err := src.FetchListings(ctx, s.MaxPerSource)
		if err != nil {
			s.health.RecordFailure(src.SourceID(), err.Error(), "")
			if s.metrics != nil {
				s.metrics.ScrapeError(src.SourceID())
			}
			s.log.Error("source fetch failed", err, "source", src.SourceID())
			continue
		}
		s.health.RecordSuccess(src.SourceID())
		s.log.Info("source fetched", "source", src.SourceID(), "listings", len(listings))
		out = append(out, listings...)
	}
	return out, nil
}
