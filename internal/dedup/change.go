package dedup

import (
	"github.com/dealscout/bizfinder-pipeline/internal/models"
	"github.com/dealscout/bizfinder-pipeline/internal/scoring"
)

// ChangeDetector classifies what happened to an entity this run, against its
// previous snapshot and score. UNCHANGED entities produce no event at all,
// which is what makes re-scraping idempotent.
type ChangeDetector struct {
	cfg scoring.ChangeConfig
}

// NewChangeDetector creates a detector with the configured epsilon.
func NewChangeDetector(cfg scoring.ChangeConfig) *ChangeDetector {
	return &ChangeDetector{cfg: cfg}
}

// PrevState is the entity state captured before this run touched it.
type PrevState struct {
	Snapshot *models.Listing
	Score    *models.ScoreResult
	Gates    *models.GateResult
}

// Classify decides the event kind for a resolved entity. Precedence: NEW,
// then REAPPEARED, then SCORE_CHANGED (epsilon move or any gate flip), then
// FIELDS_CHANGED on the tracked fields, else UNCHANGED.
func (d *ChangeDetector) Classify(res Resolution, prev PrevState, score *models.ScoreResult, gates *models.GateResult) models.EventKind {
	if res.IsNew {
		return models.EventNew
	}
	if res.WasStale {
		return models.EventReappeared
	}

	if gates != nil && gates.FlippedFrom(prev.Gates) {
		return models.EventScoreChanged
	}
	if d.scoreMoved(prev.Score, score) {
		return models.EventScoreChanged
	}
	if prev.Snapshot != nil && trackedFieldsChanged(prev.Snapshot, &res.Entity.Canonical) {
		return models.EventFieldsChanged
	}
	return models.EventUnchanged
}

// StaleAfterRuns exposes the configured threshold for the pipeline's
// end-of-batch sweep.
func (d *ChangeDetector) StaleAfterRuns() int {
	return d.cfg.StaleAfterRuns
}

func (d *ChangeDetector) scoreMoved(prev, cur *models.ScoreResult) bool {
	prevDefined := prev != nil && prev.Total != nil
	curDefined := cur != nil && cur.Total != nil
	if prevDefined != curDefined {
		// Defined <-> undefined is a material change: the scoring basis
		// itself appeared or vanished.
		return true
	}
	if !prevDefined {
		return false
	}
	diff := *cur.Total - *prev.Total
	if diff < 0 {
		diff = -diff
	}
	return diff > d.cfg.ScoreEpsilon
}

// trackedFieldsChanged compares the fields that matter to a buyer watching a
// listing: price, revenue, and category.
func trackedFieldsChanged(prev, cur *models.Listing) bool {
	if !int64PtrEqual(prev.AskingPrice, cur.AskingPrice) {
		return true
	}
	if !int64PtrEqual(prev.AnnualRevenue, cur.AnnualRevenue) {
		return true
	}
	return NormalizeCategory(prev.Category) != NormalizeCategory(cur.Category)
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
