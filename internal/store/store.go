// Package store declares the persistence boundary used by the services.
// The PostgreSQL implementation lives in internal/repository and an in-memory
// one in internal/repository/memory.
package store

import (
	"context"
	"errors"

	"dungeon-master/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// CharacterStore reads and writes characters.
type CharacterStore interface {
	Create(ctx context.Context, c *model.Character) (*model.Character, error)
	Get(ctx context.Context, id string) (*model.Character, error)
	// GetForUpdate reads a character and holds it for the rest of the transaction.
	GetForUpdate(ctx context.Context, id string) (*model.Character, error)
	// Update merges the non-nil fields of upd atomically and returns the result.
	Update(ctx context.Context, id string, upd model.CharacterUpdate) (*model.Character, error)
}

// ProgressionHistory is the append-only log of experience awards.
type ProgressionHistory interface {
	Append(ctx context.Context, e *model.ProgressionEvent) (*model.ProgressionEvent, error)
	// ListByCharacter returns events newest first. limit <= 0 means no limit.
	ListByCharacter(ctx context.Context, characterID string, limit int) ([]*model.ProgressionEvent, error)
}

// LevelUpHistory is the append-only log of level transitions.
type LevelUpHistory interface {
	Append(ctx context.Context, e *model.LevelUpEvent) (*model.LevelUpEvent, error)
	// ListByCharacter returns events newest first. limit <= 0 means no limit.
	ListByCharacter(ctx context.Context, characterID string, limit int) ([]*model.LevelUpEvent, error)
}

// FeatureCatalog is the static class feature reference data.
type FeatureCatalog interface {
	// FeaturesFor returns the features unlocked at exactly level, in catalog order.
	FeaturesFor(ctx context.Context, className string, level int) ([]*model.ClassFeature, error)
	// ListByClass returns every feature of a class ordered by level.
	ListByClass(ctx context.Context, className string) ([]*model.ClassFeature, error)
	// Seed inserts features, skipping ones already present.
	Seed(ctx context.Context, features []*model.ClassFeature) (int, error)
}

// Tx exposes the stores that take part in a progression transaction.
type Tx interface {
	Characters() CharacterStore
	Progression() ProgressionHistory
	LevelUps() LevelUpHistory
}

// Transactor runs fn inside a transaction. If fn returns an error nothing it
// wrote is kept.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// SessionStore persists game sessions.
type SessionStore interface {
	Create(ctx context.Context, s *model.GameSession) (*model.GameSession, error)
	Get(ctx context.Context, id string) (*model.GameSession, error)
	GetActiveForCharacter(ctx context.Context, characterID string) (*model.GameSession, error)
	UpdateScene(ctx context.Context, id string, scene string) (*model.GameSession, error)
}

// MessageStore persists chat messages.
type MessageStore interface {
	Create(ctx context.Context, m *model.Message) (*model.Message, error)
	// ListBySession returns the latest limit messages, oldest first.
	ListBySession(ctx context.Context, sessionID string, limit int) ([]*model.Message, error)
}

// InventoryStore persists inventory items.
type InventoryStore interface {
	Create(ctx context.Context, item *model.InventoryItem) (*model.InventoryItem, error)
	Get(ctx context.Context, id string) (*model.InventoryItem, error)
	ListByCharacter(ctx context.Context, characterID string) ([]*model.InventoryItem, error)
	Update(ctx context.Context, id string, upd model.InventoryUpdate) (*model.InventoryItem, error)
	Delete(ctx context.Context, id string) error
}

// DiceRollStore persists dice rolls.
type DiceRollStore interface {
	Create(ctx context.Context, r *model.DiceRoll) (*model.DiceRoll, error)
	// ListBySession returns the latest limit rolls, newest first.
	ListBySession(ctx context.Context, sessionID string, limit int) ([]*model.DiceRoll, error)
}

// ContextStore persists narrator memory for a session.
type ContextStore interface {
	// Upsert inserts or replaces the entry with the same session and key.
	Upsert(ctx context.Context, c *model.SessionContext) (*model.SessionContext, error)
	// ListBySession returns the most important entries first.
	ListBySession(ctx context.Context, sessionID string, limit int) ([]*model.SessionContext, error)
}
