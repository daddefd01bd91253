package dedup

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dealscout/bizfinder-pipeline/internal/models"
	"github.com/dealscout/bizfinder-pipeline/internal/scoring"
)

// Index is the resolver's working set of entities for one batch. It is not
// safe for concurrent use: resolution is serialized per batch because every
// attach decision depends on the entities created earlier in the same batch.
type Index struct {
	byKey    map[models.ListingKey]uuid.UUID
	entities map[uuid.UUID]*models.OpportunityEntity
}

// NewIndex builds the working set from the stored entities. Member keys of
// MERGED entities are not indexed; their absorbing entity carries the keys.
func NewIndex(entities []*models.OpportunityEntity) *Index {
	idx := &Index{
		byKey:    make(map[models.ListingKey]uuid.UUID),
		entities: make(map[uuid.UUID]*models.OpportunityEntity, len(entities)),
	}
	for _, e := range entities {
		idx.entities[e.ID] = e
		if e.Status == models.EntityMerged {
			continue
		}
		for _, k := range e.MemberKeys {
			idx.byKey[k] = e.ID
		}
	}
	return idx
}

// Get returns the entity with the given id.
func (idx *Index) Get(id uuid.UUID) (*models.OpportunityEntity, bool) {
	e, ok := idx.entities[id]
	return e, ok
}

// Entities returns every entity in the working set, sorted by id for
// deterministic iteration.
func (idx *Index) Entities() []*models.OpportunityEntity {
	out := make([]*models.OpportunityEntity, 0, len(idx.entities))
	for _, e := range idx.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

// put swaps in a whole replacement entity. Readers of the index never see a
// partially mutated entity.
func (idx *Index) put(e *models.OpportunityEntity) {
	idx.entities[e.ID] = e
	if e.Status != models.EntityMerged {
		for _, k := range e.MemberKeys {
			idx.byKey[k] = e.ID
		}
	}
}

// Resolution is the outcome of resolving one listing.
type Resolution struct {
	Entity *models.OpportunityEntity
	IsNew  bool
	// WasStale is true when the listing re-surfaced an entity that had gone
	// stale; change detection turns this into REAPPEARED.
	WasStale bool
	// Flags carries possible_duplicate advisories when an ambiguous fuzzy
	// tie was left unmerged for manual review.
	Flags []string
}

// Resolver clusters listings into opportunity entities: exact key first,
// then coarse fuzzy matching, and never a silent guess on a tie.
type Resolver struct {
	cfg scoring.DedupConfig
}

// NewResolver creates a resolver with the given fuzzy thresholds.
func NewResolver(cfg scoring.DedupConfig) *Resolver {
	return &Resolver{cfg: cfg}
}

// Resolve attaches the listing to an existing entity or creates a new one,
// updating the index in place. now is the batch timestamp.
func (r *Resolver) Resolve(idx *Index, l *models.Listing, now time.Time) Resolution {
	keys := BuildKeys(l, r.cfg)

	// Phase 1: exact key. The same (source_id, external_id) always lands on
	// the same entity, run after run.
	if id, ok := idx.byKey[keys.Exact]; ok {
		entity := idx.entities[id]
		wasStale := entity.Status == models.EntityStale
		updated := r.attach(entity, l, now)
		idx.put(updated)
		return Resolution{Entity: updated, WasStale: wasStale}
	}

	// Phase 2: fuzzy candidates over ACTIVE and STALE canonical snapshots.
	candidates := r.fuzzyCandidates(idx, keys.Fuzzy, l.SourceID)

	switch len(candidates) {
	case 1:
		entity := candidates[0]
		wasStale := entity.Status == models.EntityStale
		updated := r.attach(entity, l, now)
		updated.MemberKeys = appendKeyIfMissing(updated.MemberKeys, keys.Exact)
		idx.put(updated)
		return Resolution{Entity: updated, WasStale: wasStale}

	case 0:
		created := r.newEntity(l, now)
		idx.put(created)
		return Resolution{Entity: created, IsNew: true}

	default:
		// Ambiguous tie: never auto-merge. Create a fresh entity and flag
		// the candidates for a human to resolve.
		created := r.newEntity(l, now)
		idx.put(created)
		ids := make([]string, len(candidates))
		for i, c := range candidates {
			ids[i] = c.ID.String()
		}
		sort.Strings(ids)
		flag := fmt.Sprintf("possible_duplicate of entities [%s]", strings.Join(ids, ", "))
		return Resolution{Entity: created, IsNew: true, Flags: []string{flag}}
	}
}

// fuzzyCandidates returns merge candidates in deterministic order. Fuzzy
// matching is strictly cross-source: an entity that already holds a key from
// the listing's own source is a different listing there, not a duplicate,
// and merging it would hide a real opportunity.
func (r *Resolver) fuzzyCandidates(idx *Index, sig FuzzySignature, sourceID string) []*models.OpportunityEntity {
	var out []*models.OpportunityEntity
	for _, e := range idx.Entities() {
		if e.Status != models.EntityActive && e.Status != models.EntityStale {
			continue
		}
		if hasSourceKey(e, sourceID) {
			continue
		}
		if r.matches(sig, &e.Canonical) {
			out = append(out, e)
		}
	}
	return out
}

func hasSourceKey(e *models.OpportunityEntity, sourceID string) bool {
	for _, k := range e.MemberKeys {
		if k.SourceID == sourceID {
			return true
		}
	}
	return false
}

// matches applies the three-way fuzzy test: title similarity over the
// threshold, equal category, and price within tolerance (or both unknown).
// An unknown category or a price known on only one side is never a match.
func (r *Resolver) matches(sig FuzzySignature, canonical *models.Listing) bool {
	if sig.CategoryNorm == "" || sig.CategoryNorm != NormalizeCategory(canonical.Category) {
		return false
	}
	if TitleSimilarity(sig.TitleNorm, NormalizeTitle(canonical.Title)) < r.cfg.TitleSimilarity {
		return false
	}
	return r.priceWithinTolerance(sig.PriceBucket, canonical.AskingPrice)
}

func (r *Resolver) priceWithinTolerance(bucket *int64, price *int64) bool {
	if bucket == nil && price == nil {
		return true
	}
	if bucket == nil || price == nil {
		return false
	}
	a, b := float64(*bucket), float64(*price)
	max := a
	if b > max {
		max = b
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= max*r.cfg.PriceTolerancePct/100
}

// attach returns a replacement entity with the listing folded in. The input
// entity is not mutated.
func (r *Resolver) attach(entity *models.OpportunityEntity, l *models.Listing, now time.Time) *models.OpportunityEntity {
	updated := entity.Clone()
	updated.Canonical = MergeCanonical(updated.Canonical, *l)
	updated.Status = models.EntityActive
	updated.RunsUnseen = 0
	updated.LastSeenAt = now
	return updated
}

func (r *Resolver) newEntity(l *models.Listing, now time.Time) *models.OpportunityEntity {
	return &models.OpportunityEntity{
		ID:          uuid.New(),
		Status:      models.EntityActive,
		MemberKeys:  []models.ListingKey{l.Key()},
		Canonical:   *l,
		FirstSeenAt: now,
		LastSeenAt:  now,
	}
}

func appendKeyIfMissing(keys []models.ListingKey, k models.ListingKey) []models.ListingKey {
	for _, existing := range keys {
		if existing == k {
			return keys
		}
	}
	return append(keys, k)
}

// MergeCanonical recomputes the canonical snapshot from the previous
// canonical and an incoming listing: per field, the most recently observed
// known value wins, with ties broken toward the listing that discloses more
// fields overall, and a full tie toward the incoming listing so a re-scrape
// at the same timestamp still lands its values. Identity fields follow the
// preferred listing as a whole.
func MergeCanonical(prev, incoming models.Listing) models.Listing {
	newer, older := orderByRecency(prev, incoming)

	out := newer
	if out.Title == "" {
		out.Title = older.Title
	}
	if out.Category == "" {
		out.Category = older.Category
	}
	if out.Description == "" {
		out.Description = older.Description
	}
	if out.AskingPrice == nil {
		out.AskingPrice = older.AskingPrice
	}
	if out.AnnualRevenue == nil {
		out.AnnualRevenue = older.AnnualRevenue
	}
	if out.MRR == nil {
		out.MRR = older.MRR
	}
	if out.AnnualProfit == nil {
		out.AnnualProfit = older.AnnualProfit
	}
	if out.CustomerCount == nil {
		out.CustomerCount = older.CustomerCount
	}
	if out.EmployeeCount == nil {
		out.EmployeeCount = older.EmployeeCount
	}
	if out.SellerReason == nil {
		out.SellerReason = older.SellerReason
	}
	if out.TechStack == nil {
		out.TechStack = older.TechStack
	}
	if out.PostedAt == nil {
		out.PostedAt = older.PostedAt
	}
	if older.ObservedAt.After(out.ObservedAt) {
		out.ObservedAt = older.ObservedAt
	}
	return out
}

func orderByRecency(prev, incoming models.Listing) (newer, older models.Listing) {
	if prev.ObservedAt.After(incoming.ObservedAt) {
		return prev, incoming
	}
	if incoming.ObservedAt.After(prev.ObservedAt) {
		return incoming, prev
	}
	if prev.KnownFieldCount() > incoming.KnownFieldCount() {
		return prev, incoming
	}
	return incoming, prev
}
