package scoring

import (
	"github.com/dealscout/bizfinder-pipeline/internal/models"
)

// Engine evaluates gates and computes scores. It is a pure function of a
// single listing's fields plus the loaded configuration; it never consults
// entity history, so two identical listings always score identically.
type Engine struct {
	cfg *EngineConfig
}

// NewEngine creates an engine from validated configuration.
func NewEngine(cfg *EngineConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Config exposes the loaded configuration to collaborators (resolver, change
// detector) that share thresholds with the engine.
func (e *Engine) Config() *EngineConfig {
	return e.cfg
}

// Gates runs the configured gate rules against one listing.
func (e *Engine) Gates(l *models.Listing) models.GateResult {
	return EvaluateGates(l, e.cfg.Gates)
}

// Score computes the weighted dimension score of one listing. Gate
// undetermined outcomes are folded into the result flags so a reviewer sees
// the full disclosure picture in one place.
func (e *Engine) Score(l *models.Listing, gates *models.GateResult) models.ScoreResult {
	breakdown, flags := ScoreDimensions(l, e.cfg.Dimensions)
	if gates != nil {
		for _, g := range gates.Undetermined() {
			flags = append(flags, "gate "+g+" undetermined")
		}
	}
	return Aggregate(breakdown, e.cfg.Dimensions, flags)
}
