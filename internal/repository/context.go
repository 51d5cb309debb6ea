package repository

import (
	"context"
	"fmt"

	"dungeon-master/internal/model"
)

// ContextRepository handles the narrator's per-session memory.
type ContextRepository struct {
	db DBTX
}

// NewContextRepository creates a new ContextRepository instance.
func NewContextRepository(db DBTX) *ContextRepository {
	return &ContextRepository{db: db}
}

func scanSessionContext(row scanner) (*model.SessionContext, error) {
	var c model.SessionContext
	err := row.Scan(
		&c.ID,
		&c.SessionID,
		&c.ContextType,
		&c.ContextKey,
		&c.ContextValue,
		&c.Importance,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Upsert inserts an entry or replaces the one with the same session and key.
func (r *ContextRepository) Upsert(ctx context.Context, c *model.SessionContext) (*model.SessionContext, error) {
	const query = `
		INSERT INTO session_context (session_id, context_type, context_key, context_value, importance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (session_id, context_key)
		DO UPDATE SET context_type = $2, context_value = $4, importance = $5, updated_at = NOW()
		RETURNING id, session_id, context_type, context_key, context_value, importance, created_at, updated_at
	`

	saved, err := scanSessionContext(r.db.QueryRow(ctx, query,
		c.SessionID, string(c.ContextType), c.ContextKey, c.ContextValue, c.Importance,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert session context: %w", err)
	}
	return saved, nil
}

// ListBySession returns the most important entries of a session first.
func (r *ContextRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]*model.SessionContext, error) {
	const query = `
		SELECT id, session_id, context_type, context_key, context_value, importance, created_at, updated_at
		FROM session_context
		WHERE session_id = $1
		ORDER BY importance DESC, updated_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, sessionID, limitOrNull(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list session context: %w", err)
	}
	defer rows.Close()

	var entries []*model.SessionContext
	for rows.Next() {
		c, err := scanSessionContext(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session context: %w", err)
		}
		entries = append(entries, c)
	}
	return entries, rows.Err()
}
