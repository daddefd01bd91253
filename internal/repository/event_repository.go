package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dealscout/bizfinder-pipeline/internal/models"
)

// eventRepository implements EventRepository
type eventRepository struct {
	db dbExecutor
}

// NewEventRepository creates a new event repository
func NewEventRepository(db dbExecutor) EventRepository {
	return &eventRepository{db: db}
}

// Record appends an event. Events are immutable once written.
func (r *eventRepository) Record(event *models.ScoredOpportunityEvent) error {
	snapshot, err := json.Marshal(event.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	gates, err := marshalNullable(event.GateResult)
	if err != nil {
		return fmt.Errorf("failed to marshal gates: %w", err)
	}
	score, err := marshalNullable(event.Score)
	if err != nil {
		return fmt.Errorf("failed to marshal score: %w", err)
	}
	flags, err := json.Marshal(event.Flags)
	if err != nil {
		return fmt.Errorf("failed to marshal flags: %w", err)
	}

	query := `
		INSERT INTO opportunity_events (
			id, entity_id, kind, snapshot, gate_result, score_result, flags, occurred_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.Exec(query,
		uuid.New(), event.EntityID, event.Kind, snapshot, gates, score,
		flags, event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// GetByEntity retrieves the most recent events for one entity
func (r *eventRepository) GetByEntity(entityID uuid.UUID, limit int) ([]models.ScoredOpportunityEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT entity_id, kind, snapshot, gate_result, score_result, flags, occurred_at
		FROM opportunity_events
		WHERE entity_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(query, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// GetRecent retrieves events matching the given filters
func (r *eventRepository) GetRecent(filters EventFilters) ([]models.ScoredOpportunityEvent, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if len(filters.Kinds) > 0 {
		placeholders := make([]string, len(filters.Kinds))
		for i, k := range filters.Kinds {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, k)
			argIndex++
		}
		conditions = append(conditions, fmt.Sprintf("kind IN (%s)", strings.Join(placeholders, ",")))
	}
	if filters.Since != nil {
		conditions = append(conditions, fmt.Sprintf("occurred_at >= $%d", argIndex))
		args = append(args, *filters.Since)
		argIndex++
	}

	query := `
		SELECT entity_id, kind, snapshot, gate_result, score_result, flags, occurred_at
		FROM opportunity_events
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY occurred_at DESC"

	limit := filters.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(" LIMIT $%d", argIndex)
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

func collectEvents(rows *sql.Rows) ([]models.ScoredOpportunityEvent, error) {
	var events []models.ScoredOpportunityEvent
	for rows.Next() {
		var (
			event    models.ScoredOpportunityEvent
			snapshot []byte
			gates    []byte
			score    []byte
			flags    []byte
		)
		err := rows.Scan(
			&event.EntityID, &event.Kind, &snapshot, &gates, &score,
			&flags, &event.OccurredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		if err := json.Unmarshal(snapshot, &event.Snapshot); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		if gates != nil {
			event.GateResult = &models.GateResult{}
			if err := json.Unmarshal(gates, event.GateResult); err != nil {
				return nil, fmt.Errorf("failed to unmarshal gates: %w", err)
			}
		}
		if score != nil {
			event.Score = &models.ScoreResult{}
			if err := json.Unmarshal(score, event.Score); err != nil {
				return nil, fmt.Errorf("failed to unmarshal score: %w", err)
			}
		}
		if flags != nil {
			if err := json.Unmarshal(flags, &event.Flags); err != nil {
				return nil, fmt.Errorf("failed to unmarshal flags: %w", err)
			}
		}

		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}
