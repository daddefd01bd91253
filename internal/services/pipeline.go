package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dealscout/bizfinder-pipeline/internal/dedup"
	"github.com/dealscout/bizfinder-pipeline/internal/logger"
	"github.com/dealscout/bizfinder-pipeline/internal/metrics"
	"github.com/dealscout/bizfinder-pipeline/internal/models"
	"github.com/dealscout/bizfinder-pipeline/internal/notify"
	"github.com/dealscout/bizfinder-pipeline/internal/repository"
	"github.com/dealscout/bizfinder-pipeline/internal/scoring"
)

// ListingSource produces one batch of normalized listings. The scraper
// service implements it; tests feed batches directly.
type ListingSource interface {
	Fetch(ctx context.Context) ([]models.Listing, error)
}

// Pipeline runs the ingest cycle: validate, gate, score, resolve against
// known entities, classify changes, persist, and notify.
type Pipeline struct {
	repos    *repository.Repositories
	engine   *scoring.Engine
	resolver *dedup.Resolver
	detector *dedup.ChangeDetector
	notifier notify.Notifier
	metrics  *metrics.Metrics
	log      logger.Logger

	maxConcurrent int

	mu        sync.RWMutex
	isRunning bool
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// PipelineConfig contains tuning knobs for the pipeline
type PipelineConfig struct {
	MaxConcurrent int           `json:"max_concurrent"` // concurrent score computations
	Interval      time.Duration `json:"interval"`       // how often Start runs a cycle
}

// DefaultPipelineConfig returns sensible defaults
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		MaxConcurrent: 10,
		Interval:      time.Hour,
	}
}

// NewPipeline wires a pipeline from its collaborators.
func NewPipeline(repos *repository.Repositories, engine *scoring.Engine, notifier notify.Notifier, m *metrics.Metrics, log logger.Logger, cfg PipelineConfig) *Pipeline {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultPipelineConfig().MaxConcurrent
	}
	return &Pipeline{
		repos:         repos,
		engine:        engine,
		resolver:      dedup.NewResolver(engine.Config().Dedup),
		detector:      dedup.NewChangeDetector(engine.Config().Change),
		notifier:      notifier,
		metrics:       m,
		log:           log,
		maxConcurrent: cfg.MaxConcurrent,
		stopChan:      make(chan struct{}),
	}
}

// Problem records one listing rejected during validation.
type Problem struct {
	Key    models.ListingKey `json:"key"`
	Reason string            `json:"reason"`
}

// BatchResult summarizes one pipeline cycle.
type BatchResult struct {
	StartedAt   time.Time                       `json:"started_at"`
	FinishedAt  time.Time                       `json:"finished_at"`
	Received    int                             `json:"received"`
	Rejected    int                             `json:"rejected"`
	Processed   int                             `json:"processed"`
	NewEntities int                             `json:"new_entities"`
	WentStale   int                             `json:"went_stale"`
	Events      []models.ScoredOpportunityEvent `json:"events"`
	Problems    []Problem                       `json:"problems"`
}

// Summary returns a one-line digest for logs.
func (r *BatchResult) Summary() string {
	return fmt.Sprintf("received=%d, rejected=%d, processed=%d, events=%d, new=%d, went_stale=%d, duration=%v",
		r.Received, r.Rejected, r.Processed, len(r.Events), r.NewEntities, r.WentStale,
		r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
}

// Start begins periodic pipeline cycles against the given source
func (p *Pipeline) Start(source ListingSource, cfg PipelineConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isRunning {
		return fmt.Errorf("pipeline is already running")
	}
	p.isRunning = true

	p.wg.Add(1)
	go p.run(source, cfg)

	p.log.Info("pipeline started", "interval", cfg.Interval.String(), "max_concurrent", p.maxConcurrent)
	return nil
}

// Stop gracefully stops the periodic cycles
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isRunning {
		return fmt.Errorf("pipeline is not running")
	}
	close(p.stopChan)
	p.wg.Wait()
	p.isRunning = false

	p.log.Info("pipeline stopped")
	return nil
}

// IsRunning reports whether the periodic loop is active
func (p *Pipeline) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isRunning
}

func (p *Pipeline) run(source ListingSource, cfg PipelineConfig) {
	defer p.wg.Done()

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	ctx := context.Background()
	p.cycle(ctx, source)

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.cycle(ctx, source)
		}
	}
}

func (p *Pipeline) cycle(ctx context.Context, source ListingSource) {
	listings, err := source.Fetch(ctx)
	if err != nil {
		p.log.Error("fetch failed", err)
		return
	}
	result, err := p.ProcessBatch(ctx, listings)
	if err != nil {
		p.log.Error("batch failed", err)
		return
	}
	p.log.Info("batch completed", "summary", result.Summary())
}

// ProcessBatch runs one complete cycle over the given listings. Scoring
// runs concurrently; resolution against the entity index is serialized so
// two listings for the same business cannot race into separate entities.
func (p *Pipeline) ProcessBatch(ctx context.Context, listings []models.Listing) (*BatchResult, error) {
	result := &BatchResult{StartedAt: time.Now(), Received: len(listings)}

	valid := make([]models.Listing, 0, len(listings))
	for i := range listings {
		l := listings[i]
		if err := l.Validate(); err != nil {
			result.Rejected++
			result.Problems = append(result.Problems, Problem{Key: l.Key(), Reason: err.Error()})
			p.log.Warn("listing rejected", "key", l.Key().String(), "reason", err.Error())
			if p.metrics != nil {
				p.metrics.ListingProcessed(l.SourceID, "invalid")
			}
			continue
		}
		valid = append(valid, l)
	}

	assessments := p.scoreAll(valid)

	stored, err := p.repos.Entity.GetResolvable()
	if err != nil {
		return result, fmt.Errorf("failed to load entities: %w", err)
	}
	entities := make([]*models.OpportunityEntity, len(stored))
	prev := make(map[uuid.UUID]dedup.PrevState, len(stored))
	for i := range stored {
		e := stored[i].Clone()
		entities[i] = e
		snapshot := e.Canonical
		prev[e.ID] = dedup.PrevState{Snapshot: &snapshot, Score: e.LastScore, Gates: e.LastGates}
	}
	idx := dedup.NewIndex(entities)

	seen := make(map[uuid.UUID]bool)
	emitted := make(map[uuid.UUID]bool)
	now := time.Now()

	for i := range valid {
		l := valid[i]
		a := assessments[i]

		res := p.resolver.Resolve(idx, &l, now)
		kind := p.detector.Classify(res, prev[res.Entity.ID], &a.score, &a.gates)

		entity := res.Entity
		entity.LastScore = &a.score
		entity.LastGates = &a.gates
		seen[entity.ID] = true
		if res.IsNew {
			result.NewEntities++
		}

		// At most one event per entity per run: when two listings in the
		// same batch resolve to one entity, only the first emits.
		var event *models.ScoredOpportunityEvent
		if kind != models.EventUnchanged && !emitted[entity.ID] {
			event = &models.ScoredOpportunityEvent{
				EntityID:   entity.ID,
				Kind:       kind,
				Snapshot:   entity.Canonical,
				GateResult: &a.gates,
				Score:      &a.score,
				Flags:      res.Flags,
				OccurredAt: now,
			}
		}

		err := p.repos.Tx.WithTransaction(func(repos *repository.Repositories) error {
			if err := repos.Entity.Save(entity); err != nil {
				return err
			}
			if event != nil {
				return repos.Event.Record(event)
			}
			return nil
		})
		if err != nil {
			return result, fmt.Errorf("failed to persist entity %s: %w", entity.ID, err)
		}

		result.Processed++
		if p.metrics != nil {
			p.metrics.ListingProcessed(l.SourceID, outcomeFor(&a.gates))
		}

		if event != nil {
			emitted[entity.ID] = true
			result.Events = append(result.Events, *event)
			if p.metrics != nil {
				p.metrics.EventEmitted(string(kind))
			}
			if p.notifier != nil {
				if nerr := p.notifier.Notify(ctx, event); nerr != nil {
					p.log.Warn("notification failed", "entity_id", entity.ID.String(), "error", nerr.Error())
				}
			}
		}
	}

	if err := p.sweepUnseen(idx, seen, result); err != nil {
		return result, err
	}

	// Non-urgent events accumulate in the router's digest during the batch;
	// deliver them before the batch closes.
	if f, ok := p.notifier.(interface {
		Flush(ctx context.Context) error
	}); ok {
		if err := f.Flush(ctx); err != nil {
			p.log.Warn("digest flush incomplete", "error", err.Error())
		}
	}

	result.FinishedAt = time.Now()
	if p.metrics != nil {
		p.metrics.ObserveBatch(result.FinishedAt.Sub(result.StartedAt).Seconds())
		p.updateEntityGauges()
	}
	return result, nil
}

type assessment struct {
	gates models.GateResult
	score models.ScoreResult
}

// scoreAll computes gates and scores concurrently. Both are pure functions
// of one listing, so this is the only parallel stage.
func (p *Pipeline) scoreAll(listings []models.Listing) []assessment {
	out := make([]assessment, len(listings))
	semaphore := make(chan struct{}, p.maxConcurrent)
	var wg sync.WaitGroup

	for i := range listings {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			gates := p.engine.Gates(&listings[i])
			score := p.engine.Score(&listings[i], &gates)
			out[i] = assessment{gates: gates, score: score}
		}(i)
	}
	wg.Wait()
	return out
}

// sweepUnseen ages every entity no listing touched this run and marks the
// ones past the threshold STALE.
func (p *Pipeline) sweepUnseen(idx *dedup.Index, seen map[uuid.UUID]bool, result *BatchResult) error {
	for _, e := range idx.Entities() {
		if seen[e.ID] {
			continue
		}
		entity := e.Clone()
		entity.RunsUnseen++
		if entity.Status == models.EntityActive && entity.RunsUnseen >= p.detector.StaleAfterRuns() {
			entity.Status = models.EntityStale
			result.WentStale++
			p.log.Info("entity went stale", "entity_id", entity.ID.String(), "runs_unseen", entity.RunsUnseen)
		}
		if err := p.repos.Entity.Save(entity); err != nil {
			return fmt.Errorf("failed to persist stale sweep for %s: %w", entity.ID, err)
		}
	}
	return nil
}

func (p *Pipeline) updateEntityGauges() {
	entities, err := p.repos.Entity.GetResolvable()
	if err != nil {
		return
	}
	counts := map[models.EntityStatus]int{}
	for i := range entities {
		counts[entities[i].Status]++
	}
	for _, status := range []models.EntityStatus{models.EntityActive, models.EntityStale} {
		p.metrics.SetEntityCount(string(status), counts[status])
	}
}

func outcomeFor(gates *models.GateResult) string {
	if len(gates.Failures()) > 0 {
		return "gated_out"
	}
	return "scored"
}
