package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"dungeon-master/internal/model"
	"dungeon-master/internal/store"
)

const sessionColumns = `id, character_id, title, description, current_scene, is_active, created_at, updated_at`

// SessionRepository handles game session persistence.
type SessionRepository struct {
	db DBTX
}

// NewSessionRepository creates a new SessionRepository instance.
func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func scanSession(row scanner) (*model.GameSession, error) {
	var s model.GameSession
	err := row.Scan(
		&s.ID,
		&s.CharacterID,
		&s.Title,
		&s.Description,
		&s.CurrentScene,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a session.
func (r *SessionRepository) Create(ctx context.Context, s *model.GameSession) (*model.GameSession, error) {
	query := `
		INSERT INTO game_sessions (character_id, title, description, current_scene, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING ` + sessionColumns

	created, err := scanSession(r.db.QueryRow(ctx, query,
		s.CharacterID, s.Title, s.Description, s.CurrentScene, s.IsActive,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return created, nil
}

// Get retrieves a session by id.
func (r *SessionRepository) Get(ctx context.Context, id string) (*model.GameSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM game_sessions WHERE id = $1`
	return r.one(ctx, query, id)
}

// GetActiveForCharacter returns the most recently touched active session of a character.
func (r *SessionRepository) GetActiveForCharacter(ctx context.Context, characterID string) (*model.GameSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM game_sessions
		WHERE character_id = $1 AND is_active
		ORDER BY updated_at DESC
		LIMIT 1`
	return r.one(ctx, query, characterID)
}

// UpdateScene replaces the current scene description.
func (r *SessionRepository) UpdateScene(ctx context.Context, id string, scene string) (*model.GameSession, error) {
	query := `
		UPDATE game_sessions SET current_scene = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + sessionColumns
	return r.one(ctx, query, id, scene)
}

func (r *SessionRepository) one(ctx context.Context, query string, args ...any) (*model.GameSession, error) {
	s, err := scanSession(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}
