package repository

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dealscout/bizfinder-pipeline/internal/models"
)

// MemoryStore is an in-memory implementation of the entity and event
// repositories. It backs single-process pipeline runs and tests; the
// postgres repositories are the durable equivalent.
type MemoryStore struct {
	mu       sync.RWMutex
	entities map[uuid.UUID]*models.OpportunityEntity
	events   []models.ScoredOpportunityEvent
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entities: make(map[uuid.UUID]*models.OpportunityEntity)}
}

// Repositories returns the store wrapped in the shared repository bundle.
// The transaction manager runs the function directly since there is no
// rollback to provide.
func (s *MemoryStore) Repositories() *Repositories {
	repos := &Repositories{
		Entity: s,
		Event:  s,
	}
	repos.Tx = memoryTx{repos: repos}
	return repos
}

// GetByID retrieves an entity by ID
func (s *MemoryStore) GetByID(id uuid.UUID) (*models.OpportunityEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entity, ok := s.entities[id]
	if !ok {
		return nil, fmt.Errorf("entity not found")
	}
	return entity.Clone(), nil
}

// Save stores an entity, replacing any previous version
func (s *MemoryStore) Save(entity *models.OpportunityEntity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entities[entity.ID] = entity.Clone()
	return nil
}

// GetResolvable returns every ACTIVE and STALE entity
func (s *MemoryStore) GetResolvable() ([]models.OpportunityEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.OpportunityEntity
	for _, e := range s.entities {
		if e.Status == models.EntityActive || e.Status == models.EntityStale {
			out = append(out, *e.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FirstSeenAt.Before(out[j].FirstSeenAt) })
	return out, nil
}

// GetAll returns entities matching the filters
func (s *MemoryStore) GetAll(filters EntityFilters) ([]models.OpportunityEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.OpportunityEntity
	for _, e := range s.entities {
		if len(filters.Status) > 0 && !containsStatus(filters.Status, e.Status) {
			continue
		}
		if filters.MinScore != nil {
			if e.LastScore == nil || e.LastScore.Total == nil || *e.LastScore.Total < *filters.MinScore {
				continue
			}
		}
		out = append(out, *e.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastSeenAt.After(out[j].LastSeenAt) })

	if filters.Offset > 0 {
		if filters.Offset >= len(out) {
			return nil, nil
		}
		out = out[filters.Offset:]
	}
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}

// Record appends an event
func (s *MemoryStore) Record(event *models.ScoredOpportunityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, *event)
	return nil
}

// GetByEntity returns the most recent events for one entity
func (s *MemoryStore) GetByEntity(entityID uuid.UUID, limit int) ([]models.ScoredOpportunityEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.ScoredOpportunityEvent
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].EntityID == entityID {
			out = append(out, s.events[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// GetRecent returns events matching the filters, newest first
func (s *MemoryStore) GetRecent(filters EventFilters) ([]models.ScoredOpportunityEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := filters.Limit
	if limit <= 0 {
		limit = 100
	}

	var out []models.ScoredOpportunityEvent
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		ev := s.events[i]
		if len(filters.Kinds) > 0 && !containsKind(filters.Kinds, ev.Kind) {
			continue
		}
		if filters.Since != nil && ev.OccurredAt.Before(*filters.Since) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

type memoryTx struct {
	repos *Repositories
}

func (t memoryTx) WithTransaction(fn func(repos *Repositories) error) error {
	return fn(t.repos)
}

func containsStatus(list []models.EntityStatus, s models.EntityStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsKind(list []models.EventKind, k models.EventKind) bool {
	for _, v := range list {
		if v == k {
			return true
		}
	}
	return false
}
