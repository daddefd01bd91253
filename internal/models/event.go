package models

import (
	"time"

	"github.com/google/uuid"
)

// EventKind classifies what happened to an opportunity entity in a run.
type EventKind string

const (
	EventNew           EventKind = "NEW"
	EventReappeared    EventKind = "REAPPEARED"
	EventScoreChanged  EventKind = "SCORE_CHANGED"
	EventFieldsChanged EventKind = "FIELDS_CHANGED"
	EventUnchanged     EventKind = "UNCHANGED"
)

// ScoredOpportunityEvent is the output contract to the notification
// collaborator: at most one per entity per run, and none at all for
// UNCHANGED entities, so re-scraping an unchanged listing never re-notifies.
type ScoredOpportunityEvent struct {
	EntityID   uuid.UUID    `json:"entity_id"`
	Kind       EventKind    `json:"event_kind"`
	Snapshot   Listing      `json:"listing_snapshot"`
	GateResult *GateResult  `json:"gate_result,omitempty"`
	Score      *ScoreResult `json:"score_result,omitempty"`
	Flags      []string     `json:"flags,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}
