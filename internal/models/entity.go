package models

import (
	"time"

	"github.com/google/uuid"
)

// EntityStatus is the lifecycle state of an opportunity entity.
type EntityStatus string

const (
	EntityActive EntityStatus = "ACTIVE"
	EntityStale  EntityStatus = "STALE"  // unseen for the configured number of runs
	EntityMerged EntityStatus = "MERGED" // absorbed into another entity
	EntityClosed EntityStatus = "CLOSED" // seller removed the listing
)

// OpportunityEntity is the durable, deduplicated notion of one real business
// for sale. The ID is assigned once at first observation and never reused;
// it stays stable no matter which member listing is canonical. A listing key
// belongs to at most one ACTIVE or STALE entity at any time.
type OpportunityEntity struct {
	ID         uuid.UUID    `json:"id"`
	Status     EntityStatus `json:"status"`
	MemberKeys []ListingKey `json:"member_keys"`

	// Canonical is the most information-rich composite of the members,
	// recomputed on every attach.
	Canonical Listing `json:"canonical"`

	LastScore *ScoreResult `json:"last_score,omitempty"`
	LastGates *GateResult  `json:"last_gates,omitempty"`

	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`

	// RunsUnseen counts consecutive batch runs in which no member listing
	// was observed. Drives the ACTIVE -> STALE transition.
	RunsUnseen int `json:"runs_unseen"`

	// MergedInto points at the absorbing entity when Status is MERGED.
	MergedInto *uuid.UUID `json:"merged_into,omitempty"`
}

// HasKey reports whether the given listing key is a member of this entity.
func (e *OpportunityEntity) HasKey(k ListingKey) bool {
	for _, mk := range e.MemberKeys {
		if mk == k {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. The resolver mutates copies and swaps them in
// as whole-entity replacements so readers never observe a half-updated
// entity.
func (e *OpportunityEntity) Clone() *OpportunityEntity {
	cp := *e
	cp.MemberKeys = append([]ListingKey(nil), e.MemberKeys...)
	if e.LastScore != nil {
		sc := *e.LastScore
		sc.Breakdown = make(map[string]DimensionScore, len(e.LastScore.Breakdown))
		for k, v := range e.LastScore.Breakdown {
			sc.Breakdown[k] = v
		}
		sc.MissingDimensions = append([]string(nil), e.LastScore.MissingDimensions...)
		sc.Flags = append([]string(nil), e.LastScore.Flags...)
		cp.LastScore = &sc
	}
	if e.LastGates != nil {
		g := *e.LastGates
		g.Checks = append([]GateCheck(nil), e.LastGates.Checks...)
		cp.LastGates = &g
	}
	if e.MergedInto != nil {
		id := *e.MergedInto
		cp.MergedInto = &id
	}
	return &cp
}
