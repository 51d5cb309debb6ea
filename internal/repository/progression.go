package repository

import (
	"context"
	"fmt"

	"dungeon-master/internal/model"
)

// ProgressionRepository handles experience award history.
type ProgressionRepository struct {
	db DBTX
}

// NewProgressionRepository creates a new ProgressionRepository instance.
func NewProgressionRepository(db DBTX) *ProgressionRepository {
	return &ProgressionRepository{db: db}
}

func scanProgressionEvent(row scanner) (*model.ProgressionEvent, error) {
	var e model.ProgressionEvent
	err := row.Scan(
		&e.ID,
		&e.CharacterID,
		&e.ExperienceGained,
		&e.Source,
		&e.Description,
		&e.SessionID,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Append records an experience award.
func (r *ProgressionRepository) Append(ctx context.Context, e *model.ProgressionEvent) (*model.ProgressionEvent, error) {
	const query = `
		INSERT INTO character_progression (character_id, experience_gained, experience_source, description, session_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, character_id, experience_gained, experience_source, description, session_id, created_at
	`

	created, err := scanProgressionEvent(r.db.QueryRow(ctx, query,
		e.CharacterID, e.ExperienceGained, string(e.Source), e.Description, e.SessionID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to append progression event: %w", err)
	}
	return created, nil
}

// ListByCharacter retrieves awards for a character, newest first.
func (r *ProgressionRepository) ListByCharacter(ctx context.Context, characterID string, limit int) ([]*model.ProgressionEvent, error) {
	const query = `
		SELECT id, character_id, experience_gained, experience_source, description, session_id, created_at
		FROM character_progression
		WHERE character_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, characterID, limitOrNull(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list progression events: %w", err)
	}
	defer rows.Close()

	var events []*model.ProgressionEvent
	for rows.Next() {
		e, err := scanProgressionEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progression event: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating progression events: %w", err)
	}

	return events, nil
}

// LevelUpRepository handles level up history.
type LevelUpRepository struct {
	db DBTX
}

// NewLevelUpRepository creates a new LevelUpRepository instance.
func NewLevelUpRepository(db DBTX) *LevelUpRepository {
	return &LevelUpRepository{db: db}
}

func scanLevelUpEvent(row scanner) (*model.LevelUpEvent, error) {
	var e model.LevelUpEvent
	err := row.Scan(
		&e.ID,
		&e.CharacterID,
		&e.PreviousLevel,
		&e.NewLevel,
		&e.HitPointsGained,
		&e.FeaturesGained,
		&e.SessionID,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if e.FeaturesGained == nil {
		e.FeaturesGained = []string{}
	}
	return &e, nil
}

// Append records a level transition.
func (r *LevelUpRepository) Append(ctx context.Context, e *model.LevelUpEvent) (*model.LevelUpEvent, error) {
	const query = `
		INSERT INTO level_ups (character_id, previous_level, new_level, hit_points_gained, features_gained, session_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, character_id, previous_level, new_level, hit_points_gained, features_gained, session_id, created_at
	`

	features := e.FeaturesGained
	if features == nil {
		features = []string{}
	}

	created, err := scanLevelUpEvent(r.db.QueryRow(ctx, query,
		e.CharacterID, e.PreviousLevel, e.NewLevel, e.HitPointsGained, features, e.SessionID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to append level up event: %w", err)
	}
	return created, nil
}

// ListByCharacter retrieves level ups for a character, newest first.
func (r *LevelUpRepository) ListByCharacter(ctx context.Context, characterID string, limit int) ([]*model.LevelUpEvent, error) {
	const query = `
		SELECT id, character_id, previous_level, new_level, hit_points_gained, features_gained, session_id, created_at
		FROM level_ups
		WHERE character_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, characterID, limitOrNull(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list level ups: %w", err)
	}
	defer rows.Close()

	var events []*model.LevelUpEvent
	for rows.Next() {
		e, err := scanLevelUpEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan level up: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating level ups: %w", err)
	}

	return events, nil
}

// limitOrNull maps a non-positive limit to NULL, which LIMIT treats as "no limit".
func limitOrNull(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}
