package repository

import (
	"time"

	"github.com/google/uuid"

	"github.com/dealscout/bizfinder-pipeline/internal/models"
)

// EntityRepository defines the interface for opportunity entity data access
type EntityRepository interface {
	GetByID(id uuid.UUID) (*models.OpportunityEntity, error)
	Save(entity *models.OpportunityEntity) error

	// GetResolvable returns every ACTIVE and STALE entity. The pipeline
	// loads these into an in-memory index before resolving a batch.
	GetResolvable() ([]models.OpportunityEntity, error)
	GetAll(filters EntityFilters) ([]models.OpportunityEntity, error)
}

// EventRepository defines the interface for scored opportunity event access
type EventRepository interface {
	Record(event *models.ScoredOpportunityEvent) error
	GetByEntity(entityID uuid.UUID, limit int) ([]models.ScoredOpportunityEvent, error)
	GetRecent(filters EventFilters) ([]models.ScoredOpportunityEvent, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	Delete(id uuid.UUID) error
}

// TransactionManager defines the interface for database transaction management
type TransactionManager interface {
	WithTransaction(fn func(repos *Repositories) error) error
}

// Repositories groups all repository interfaces
type Repositories struct {
	Entity EntityRepository
	Event  EventRepository
	User   UserRepository
	Tx     TransactionManager
}

// EntityFilters defines filters for querying opportunity entities
type EntityFilters struct {
	Status   []models.EntityStatus
	MinScore *float64
	Limit    int
	Offset   int
}

// EventFilters defines filters for querying events
type EventFilters struct {
	Kinds []models.EventKind
	Since *time.Time
	Limit int
}
