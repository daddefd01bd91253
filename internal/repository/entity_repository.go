package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dealscout/bizfinder-pipeline/internal/models"
)

// entityRepository implements EntityRepository
type entityRepository struct {
	db dbExecutor
}

// NewEntityRepository creates a new entity repository
func NewEntityRepository(db dbExecutor) EntityRepository {
	return &entityRepository{db: db}
}

const entityColumns = `
	id, status, member_keys, canonical, last_score, last_gates,
	first_seen_at, last_seen_at, runs_unseen, merged_into
`

// GetByID retrieves an opportunity entity by ID
func (r *entityRepository) GetByID(id uuid.UUID) (*models.OpportunityEntity, error) {
	query := `SELECT ` + entityColumns + ` FROM opportunity_entities WHERE id = $1`

	entity, err := scanEntity(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("entity not found")
		}
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	return entity, nil
}

// Save upserts an entity as a whole row. The resolver works on cloned
// entities, so the row always reflects one complete resolution.
func (r *entityRepository) Save(entity *models.OpportunityEntity) error {
	memberKeys, err := json.Marshal(entity.MemberKeys)
	if err != nil {
		return fmt.Errorf("failed to marshal member keys: %w", err)
	}
	canonical, err := json.Marshal(entity.Canonical)
	if err != nil {
		return fmt.Errorf("failed to marshal canonical listing: %w", err)
	}
	lastScore, err := marshalNullable(entity.LastScore)
	if err != nil {
		return fmt.Errorf("failed to marshal score: %w", err)
	}
	lastGates, err := marshalNullable(entity.LastGates)
	if err != nil {
		return fmt.Errorf("failed to marshal gates: %w", err)
	}

	query := `
		INSERT INTO opportunity_entities (
			id, status, member_keys, canonical, last_score, last_gates,
			first_seen_at, last_seen_at, runs_unseen, merged_into
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			member_keys = EXCLUDED.member_keys,
			canonical = EXCLUDED.canonical,
			last_score = EXCLUDED.last_score,
			last_gates = EXCLUDED.last_gates,
			last_seen_at = EXCLUDED.last_seen_at,
			runs_unseen = EXCLUDED.runs_unseen,
			merged_into = EXCLUDED.merged_into
	`

	_, err = r.db.Exec(query,
		entity.ID, entity.Status, memberKeys, canonical, lastScore, lastGates,
		entity.FirstSeenAt, entity.LastSeenAt, entity.RunsUnseen, entity.MergedInto,
	)
	if err != nil {
		return fmt.Errorf("failed to save entity: %w", err)
	}
	return nil
}

// GetResolvable retrieves every ACTIVE and STALE entity
func (r *entityRepository) GetResolvable() ([]models.OpportunityEntity, error) {
	query := `
		SELECT ` + entityColumns + `
		FROM opportunity_entities
		WHERE status IN ($1, $2)
		ORDER BY first_seen_at
	`

	rows, err := r.db.Query(query, models.EntityActive, models.EntityStale)
	if err != nil {
		return nil, fmt.Errorf("failed to query resolvable entities: %w", err)
	}
	defer rows.Close()

	return collectEntities(rows)
}

// GetAll retrieves entities matching the given filters
func (r *entityRepository) GetAll(filters EntityFilters) ([]models.OpportunityEntity, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if len(filters.Status) > 0 {
		placeholders := make([]string, len(filters.Status))
		for i, s := range filters.Status {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, s)
			argIndex++
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filters.MinScore != nil {
		conditions = append(conditions, fmt.Sprintf("(last_score->>'total')::float >= $%d", argIndex))
		args = append(args, *filters.MinScore)
		argIndex++
	}

	query := `SELECT ` + entityColumns + ` FROM opportunity_entities`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY last_seen_at DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filters.Limit)
		argIndex++
	}
	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filters.Offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	return collectEntities(rows)
}

// rowScanner abstracts *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntity(row rowScanner) (*models.OpportunityEntity, error) {
	var (
		entity     models.OpportunityEntity
		memberKeys []byte
		canonical  []byte
		lastScore  []byte
		lastGates  []byte
	)

	err := row.Scan(
		&entity.ID, &entity.Status, &memberKeys, &canonical, &lastScore,
		&lastGates, &entity.FirstSeenAt, &entity.LastSeenAt,
		&entity.RunsUnseen, &entity.MergedInto,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(memberKeys, &entity.MemberKeys); err != nil {
		return nil, fmt.Errorf("failed to unmarshal member keys: %w", err)
	}
	if err := json.Unmarshal(canonical, &entity.Canonical); err != nil {
		return nil, fmt.Errorf("failed to unmarshal canonical listing: %w", err)
	}
	if lastScore != nil {
		entity.LastScore = &models.ScoreResult{}
		if err := json.Unmarshal(lastScore, entity.LastScore); err != nil {
			return nil, fmt.Errorf("failed to unmarshal score: %w", err)
		}
	}
	if lastGates != nil {
		entity.LastGates = &models.GateResult{}
		if err := json.Unmarshal(lastGates, entity.LastGates); err != nil {
			return nil, fmt.Errorf("failed to unmarshal gates: %w", err)
		}
	}

	return &entity, nil
}

func collectEntities(rows *sql.Rows) ([]models.OpportunityEntity, error) {
	var entities []models.OpportunityEntity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entities = append(entities, *entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entities: %w", err)
	}
	return entities, nil
}

func marshalNullable(v interface{}) ([]byte, error) {
	switch val := v.(type) {
	case *models.ScoreResult:
		if val == nil {
			return nil, nil
		}
	case *models.GateResult:
		if val == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}
