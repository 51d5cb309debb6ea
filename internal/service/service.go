package service

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"dungeon-master/internal/repository"
	"dungeon-master/internal/repository/memory"
	"dungeon-master/internal/store"
)

// Stores bundles every store the services use.
type Stores struct {
	Tx          store.Transactor
	Characters  store.CharacterStore
	Progression store.ProgressionHistory
	LevelUps    store.LevelUpHistory
	Features    store.FeatureCatalog
	Sessions    store.SessionStore
	Messages    store.MessageStore
	Inventory   store.InventoryStore
	DiceRolls   store.DiceRollStore
	Contexts    store.ContextStore
}

// NewPostgresStores wires the PostgreSQL repositories onto one pool.
func NewPostgresStores(pool *pgxpool.Pool) *Stores {
	return &Stores{
		Tx:          repository.NewTxStore(pool),
		Characters:  repository.NewCharacterRepository(pool),
		Progression: repository.NewProgressionRepository(pool),
		LevelUps:    repository.NewLevelUpRepository(pool),
		Features:    repository.NewClassFeatureRepository(pool),
		Sessions:    repository.NewSessionRepository(pool),
		Messages:    repository.NewMessageRepository(pool),
		Inventory:   repository.NewInventoryRepository(pool),
		DiceRolls:   repository.NewDiceRollRepository(pool),
		Contexts:    repository.NewContextRepository(pool),
	}
}

// NewMemoryStores wires an in-memory store.
func NewMemoryStores(m *memory.Store) *Stores {
	return &Stores{
		Tx:          m,
		Characters:  m.Characters(),
		Progression: m.Progression(),
		LevelUps:    m.LevelUps(),
		Features:    m.Features(),
		Sessions:    m.Sessions(),
		Messages:    m.Messages(),
		Inventory:   m.Inventory(),
		DiceRolls:   m.DiceRolls(),
		Contexts:    m.Contexts(),
	}
}
