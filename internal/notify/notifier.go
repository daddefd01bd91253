// Package notify delivers scored opportunity events to downstream
// consumers. The pipeline hands it at most one event per entity per run.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dealscout/bizfinder-pipeline/internal/logger"
	"github.com/dealscout/bizfinder-pipeline/internal/models"
)

// Notifier receives events the pipeline decided are worth telling
// someone about.
type Notifier interface {
	Notify(ctx context.Context, event *models.ScoredOpportunityEvent) error
}

// LogNotifier writes events to the structured log. It is the default
// sink when no webhook is configured.
type LogNotifier struct {
	log logger.Logger
}

// NewLogNotifier creates a notifier backed by the given logger.
func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify logs the event at info level.
func (n *LogNotifier) Notify(_ context.Context, event *models.ScoredOpportunityEvent) error {
	fields := []interface{}{
		"entity_id", event.EntityID.String(),
		"kind", string(event.Kind),
		"title", event.Snapshot.Title,
		"source", event.Snapshot.SourceID,
	}
	if event.Score != nil && event.Score.Total != nil {
		fields = append(fields, "score", *event.Score.Total)
	}
	n.log.Info("opportunity event", fields...)
	return nil
}

// WebhookNotifier POSTs events as JSON to a configured endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
	log    logger.Logger
}

// NewWebhookNotifier creates a webhook notifier for the given URL.
func NewWebhookNotifier(url string, log logger.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

// Notify delivers one event. Delivery failures are returned, not
// retried; the caller decides whether a missed notification matters.
func (n *WebhookNotifier) Notify(ctx context.Context, event *models.ScoredOpportunityEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Router splits events into an immediate channel and a digest. NEW and
// REAPPEARED events at or above the score threshold go out right away;
// everything else accumulates until Flush.
type Router struct {
	immediate Notifier
	threshold float64
	log       logger.Logger

	mu     sync.Mutex
	digest []*models.ScoredOpportunityEvent
}

// NewRouter creates a router delivering urgent events to the given
// notifier.
func NewRouter(immediate Notifier, threshold float64, log logger.Logger) *Router {
	return &Router{immediate: immediate, threshold: threshold, log: log}
}

// Notify routes one event.
func (r *Router) Notify(ctx context.Context, event *models.ScoredOpportunityEvent) error {
	if r.isUrgent(event) {
		return r.immediate.Notify(ctx, event)
	}

	r.mu.Lock()
	r.digest = append(r.digest, event)
	r.mu.Unlock()
	return nil
}

// Flush delivers the buffered digest through the immediate notifier and
// clears it. The pipeline calls this at the end of every batch so
// non-urgent events still go out and the buffer cannot grow across runs.
func (r *Router) Flush(ctx context.Context) error {
	r.mu.Lock()
	buffered := r.digest
	r.digest = nil
	r.mu.Unlock()

	var firstErr error
	for _, event := range buffered {
		if err := r.immediate.Notify(ctx, event); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			r.log.Warn("digest delivery failed",
				"entity_id", event.EntityID.String(),
				"kind", string(event.Kind),
				"error", err.Error())
		}
	}
	return firstErr
}

func (r *Router) isUrgent(event *models.ScoredOpportunityEvent) bool {
	if event.Kind != models.EventNew && event.Kind != models.EventReappeared {
		return false
	}
	return event.Score != nil && event.Score.Total != nil && *event.Score.Total >= r.threshold
}
