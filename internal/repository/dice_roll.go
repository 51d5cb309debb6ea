package repository

import (
	"context"
	"fmt"

	"dungeon-master/internal/model"
)

// DiceRollRepository handles dice roll persistence.
type DiceRollRepository struct {
	db DBTX
}

// NewDiceRollRepository creates a new DiceRollRepository instance.
func NewDiceRollRepository(db DBTX) *DiceRollRepository {
	return &DiceRollRepository{db: db}
}

func scanDiceRoll(row scanner) (*model.DiceRoll, error) {
	var d model.DiceRoll
	err := row.Scan(&d.ID, &d.SessionID, &d.CharacterID, &d.DiceType, &d.Result, &d.Modifier, &d.Purpose, &d.Timestamp)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create records a roll.
func (r *DiceRollRepository) Create(ctx context.Context, d *model.DiceRoll) (*model.DiceRoll, error) {
	const query = `
		INSERT INTO dice_rolls (session_id, character_id, dice_type, result, modifier, purpose, "timestamp")
		VALUES ($1, $2, $3, $4, $5, $6, clock_timestamp())
		RETURNING id, session_id, character_id, dice_type, result, modifier, purpose, "timestamp"
	`

	created, err := scanDiceRoll(r.db.QueryRow(ctx, query,
		d.SessionID, d.CharacterID, d.DiceType, d.Result, d.Modifier, d.Purpose,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create dice roll: %w", err)
	}
	return created, nil
}

// ListBySession returns the latest limit rolls of a session, newest first.
func (r *DiceRollRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]*model.DiceRoll, error) {
	const query = `
		SELECT id, session_id, character_id, dice_type, result, modifier, purpose, "timestamp"
		FROM dice_rolls
		WHERE session_id = $1
		ORDER BY "timestamp" DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, sessionID, limitOrNull(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list dice rolls: %w", err)
	}
	defer rows.Close()

	var rolls []*model.DiceRoll
	for rows.Next() {
		d, err := scanDiceRoll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dice roll: %w", err)
		}
		rolls = append(rolls, d)
	}
	return rolls, rows.Err()
}
