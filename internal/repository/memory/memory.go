// Package memory provides in-process implementations of the stores.
// It backs local runs without PostgreSQL and the service and handler tests.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"dungeon-master/internal/model"
	"dungeon-master/internal/store"
)

// Store keeps every record in memory behind a single RWMutex.
// Transactions are serialized by txMu and buffer their writes until commit.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	characters  map[string]*model.Character
	progression []*model.ProgressionEvent
	levelUps    []*model.LevelUpEvent
	features    []*model.ClassFeature
	sessions    map[string]*model.GameSession
	messages    []*model.Message
	inventory   map[string]*model.InventoryItem
	rolls       []*model.DiceRoll
	contexts    []*model.SessionContext

	seq atomic.Int64
	now func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		characters: make(map[string]*model.Character),
		sessions:   make(map[string]*model.GameSession),
		inventory:  make(map[string]*model.InventoryItem),
		now:        time.Now,
	}
}

func (s *Store) nextID() int64 {
	return s.seq.Add(1)
}

// Characters returns the character store.
func (s *Store) Characters() store.CharacterStore { return characterStore{s} }

// Progression returns the experience award history.
func (s *Store) Progression() store.ProgressionHistory { return progressionHistory{s} }

// LevelUps returns the level up history.
func (s *Store) LevelUps() store.LevelUpHistory { return levelUpHistory{s} }

// Features returns the class feature catalog.
func (s *Store) Features() store.FeatureCatalog { return featureCatalog{s} }

// Sessions returns the game session store.
func (s *Store) Sessions() store.SessionStore { return sessionStore{s} }

// Messages returns the chat message store.
func (s *Store) Messages() store.MessageStore { return messageStore{s} }

// Inventory returns the inventory store.
func (s *Store) Inventory() store.InventoryStore { return inventoryStore{s} }

// DiceRolls returns the dice roll store.
func (s *Store) DiceRolls() store.DiceRollStore { return diceRollStore{s} }

// Contexts returns the session context store.
func (s *Store) Contexts() store.ContextStore { return contextStore{s} }

// ========== Characters ==========

type characterStore struct{ s *Store }

func cloneCharacter(c *model.Character) *model.Character {
	cp := *c
	return &cp
}

func (r characterStore) Create(_ context.Context, c *model.Character) (*model.Character, error) {
	created := cloneCharacter(c)
	created.ID = uuid.NewString()
	created.CreatedAt = r.s.now()

	r.s.mu.Lock()
	r.s.characters[created.ID] = created
	r.s.mu.Unlock()

	return cloneCharacter(created), nil
}

func (r characterStore) Get(_ context.Context, id string) (*model.Character, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.characters[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneCharacter(c), nil
}

// GetForUpdate is Get outside a transaction; txMu is what serializes writers.
func (r characterStore) GetForUpdate(ctx context.Context, id string) (*model.Character, error) {
	return r.Get(ctx, id)
}

func (r characterStore) Update(_ context.Context, id string, upd model.CharacterUpdate) (*model.Character, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.characters[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	updated := cloneCharacter(c)
	upd.Apply(updated)
	r.s.characters[id] = updated
	return cloneCharacter(updated), nil
}

// ========== Progression history ==========

type progressionHistory struct{ s *Store }

func (r progressionHistory) Append(_ context.Context, e *model.ProgressionEvent) (*model.ProgressionEvent, error) {
	created := r.s.stampProgression(e)
	r.s.mu.Lock()
	r.s.progression = append(r.s.progression, created)
	r.s.mu.Unlock()
	cp := *created
	return &cp, nil
}

func (r progressionHistory) ListByCharacter(_ context.Context, characterID string, limit int) ([]*model.ProgressionEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return newestFirst(r.s.progression, limit, func(e *model.ProgressionEvent) (*model.ProgressionEvent, bool) {
		if e.CharacterID != characterID {
			return nil, false
		}
		cp := *e
		return &cp, true
	}), nil
}

func (s *Store) stampProgression(e *model.ProgressionEvent) *model.ProgressionEvent {
	created := *e
	created.ID = s.nextID()
	created.CreatedAt = s.now()
	return &created
}

type levelUpHistory struct{ s *Store }

func cloneLevelUp(e *model.LevelUpEvent) *model.LevelUpEvent {
	cp := *e
	cp.FeaturesGained = append([]string{}, e.FeaturesGained...)
	return &cp
}

func (r levelUpHistory) Append(_ context.Context, e *model.LevelUpEvent) (*model.LevelUpEvent, error) {
	created := r.s.stampLevelUp(e)
	r.s.mu.Lock()
	r.s.levelUps = append(r.s.levelUps, created)
	r.s.mu.Unlock()
	return cloneLevelUp(created), nil
}

func (r levelUpHistory) ListByCharacter(_ context.Context, characterID string, limit int) ([]*model.LevelUpEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return newestFirst(r.s.levelUps, limit, func(e *model.LevelUpEvent) (*model.LevelUpEvent, bool) {
		if e.CharacterID != characterID {
			return nil, false
		}
		return cloneLevelUp(e), true
	}), nil
}

func (s *Store) stampLevelUp(e *model.LevelUpEvent) *model.LevelUpEvent {
	created := cloneLevelUp(e)
	created.ID = s.nextID()
	created.CreatedAt = s.now()
	return created
}

// newestFirst walks items from the end, keeping at most limit matches (limit <= 0 keeps all).
func newestFirst[T any](items []T, limit int, match func(T) (T, bool)) []T {
	var out []T
	for i := len(items) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if v, ok := match(items[i]); ok {
			out = append(out, v)
		}
	}
	return out
}

// ========== Class features ==========

type featureCatalog struct{ s *Store }

func (r featureCatalog) FeaturesFor(_ context.Context, className string, level int) ([]*model.ClassFeature, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*model.ClassFeature
	for _, f := range r.s.features {
		if strings.EqualFold(f.ClassName, className) && f.Level == level {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r featureCatalog) ListByClass(_ context.Context, className string) ([]*model.ClassFeature, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*model.ClassFeature
	for _, f := range r.s.features {
		if strings.EqualFold(f.ClassName, className) {
			cp := *f
			out = append(out, &cp)
		}
	}
	slices.SortStableFunc(out, func(a, b *model.ClassFeature) int {
		return a.Level - b.Level
	})
	return out, nil
}

func (r featureCatalog) Seed(_ context.Context, features []*model.ClassFeature) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	inserted := 0
	for _, f := range features {
		exists := slices.ContainsFunc(r.s.features, func(e *model.ClassFeature) bool {
			return e.ClassName == f.ClassName && e.Level == f.Level && e.FeatureName == f.FeatureName
		})
		if exists {
			continue
		}
		cp := *f
		cp.ID = r.s.nextID()
		r.s.features = append(r.s.features, &cp)
		inserted++
	}
	return inserted, nil
}
