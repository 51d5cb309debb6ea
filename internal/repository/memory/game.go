package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"dungeon-master/internal/model"
	"dungeon-master/internal/store"
)

// ========== Sessions ==========

type sessionStore struct{ s *Store }

func cloneSession(gs *model.GameSession) *model.GameSession {
	cp := *gs
	return &cp
}

func (r sessionStore) Create(_ context.Context, gs *model.GameSession) (*model.GameSession, error) {
	created := cloneSession(gs)
	created.ID = uuid.NewString()
	created.CreatedAt = r.s.now()
	created.UpdatedAt = created.CreatedAt

	r.s.mu.Lock()
	r.s.sessions[created.ID] = created
	r.s.mu.Unlock()

	return cloneSession(created), nil
}

func (r sessionStore) Get(_ context.Context, id string) (*model.GameSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	gs, ok := r.s.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneSession(gs), nil
}

func (r sessionStore) GetActiveForCharacter(_ context.Context, characterID string) (*model.GameSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var latest *model.GameSession
	for _, gs := range r.s.sessions {
		if gs.CharacterID != characterID || !gs.IsActive {
			continue
		}
		if latest == nil || gs.UpdatedAt.After(latest.UpdatedAt) {
			latest = gs
		}
	}
	if latest == nil {
		return nil, store.ErrNotFound
	}
	return cloneSession(latest), nil
}

func (r sessionStore) UpdateScene(_ context.Context, id string, scene string) (*model.GameSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	gs, ok := r.s.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	updated := cloneSession(gs)
	updated.CurrentScene = &scene
	updated.UpdatedAt = r.s.now()
	r.s.sessions[id] = updated
	return cloneSession(updated), nil
}

// ========== Messages ==========

type messageStore struct{ s *Store }

func cloneMessage(m *model.Message) *model.Message {
	cp := *m
	if m.Metadata != nil {
		meta := *m.Metadata
		if m.Metadata.DiceRoll != nil {
			roll := *m.Metadata.DiceRoll
			meta.DiceRoll = &roll
		}
		cp.Metadata = &meta
	}
	return &cp
}

func (r messageStore) Create(_ context.Context, m *model.Message) (*model.Message, error) {
	created := cloneMessage(m)
	created.ID = uuid.NewString()
	created.Timestamp = r.s.now()

	r.s.mu.Lock()
	r.s.messages = append(r.s.messages, created)
	r.s.mu.Unlock()

	return cloneMessage(created), nil
}

func (r messageStore) ListBySession(_ context.Context, sessionID string, limit int) ([]*model.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	recent := newestFirst(r.s.messages, limit, func(m *model.Message) (*model.Message, bool) {
		if m.SessionID != sessionID {
			return nil, false
		}
		return cloneMessage(m), true
	})
	slices.Reverse(recent)
	return recent, nil
}

// ========== Inventory ==========

type inventoryStore struct{ s *Store }

func cloneItem(item *model.InventoryItem) *model.InventoryItem {
	cp := *item
	if item.Properties != nil {
		props := *item.Properties
		cp.Properties = &props
	}
	return &cp
}

func (r inventoryStore) Create(_ context.Context, item *model.InventoryItem) (*model.InventoryItem, error) {
	created := cloneItem(item)
	created.ID = uuid.NewString()

	r.s.mu.Lock()
	r.s.inventory[created.ID] = created
	r.s.mu.Unlock()

	return cloneItem(created), nil
}

func (r inventoryStore) Get(_ context.Context, id string) (*model.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.inventory[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneItem(item), nil
}

func (r inventoryStore) ListByCharacter(_ context.Context, characterID string) ([]*model.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var items []*model.InventoryItem
	for _, item := range r.s.inventory {
		if item.CharacterID == characterID {
			items = append(items, cloneItem(item))
		}
	}
	slices.SortFunc(items, func(a, b *model.InventoryItem) int {
		if c := strings.Compare(a.ItemName, b.ItemName); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return items, nil
}

func (r inventoryStore) Update(_ context.Context, id string, upd model.InventoryUpdate) (*model.InventoryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.inventory[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	updated := cloneItem(item)
	upd.Apply(updated)
	r.s.inventory[id] = updated
	return cloneItem(updated), nil
}

func (r inventoryStore) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.inventory[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.inventory, id)
	return nil
}

// ========== Dice rolls ==========

type diceRollStore struct{ s *Store }

func (r diceRollStore) Create(_ context.Context, d *model.DiceRoll) (*model.DiceRoll, error) {
	created := *d
	created.ID = uuid.NewString()
	created.Timestamp = r.s.now()

	r.s.mu.Lock()
	r.s.rolls = append(r.s.rolls, &created)
	r.s.mu.Unlock()

	cp := created
	return &cp, nil
}

func (r diceRollStore) ListBySession(_ context.Context, sessionID string, limit int) ([]*model.DiceRoll, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return newestFirst(r.s.rolls, limit, func(d *model.DiceRoll) (*model.DiceRoll, bool) {
		if d.SessionID != sessionID {
			return nil, false
		}
		cp := *d
		return &cp, true
	}), nil
}

// ========== Session context ==========

type contextStore struct{ s *Store }

func (r contextStore) Upsert(_ context.Context, c *model.SessionContext) (*model.SessionContext, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	for i, existing := range r.s.contexts {
		if existing.SessionID == c.SessionID && existing.ContextKey == c.ContextKey {
			updated := *existing
			updated.ContextType = c.ContextType
			updated.ContextValue = c.ContextValue
			updated.Importance = c.Importance
			updated.UpdatedAt = now
			r.s.contexts[i] = &updated
			cp := updated
			return &cp, nil
		}
	}

	created := *c
	created.ID = uuid.NewString()
	created.CreatedAt = now
	created.UpdatedAt = now
	r.s.contexts = append(r.s.contexts, &created)
	cp := created
	return &cp, nil
}

func (r contextStore) ListBySession(_ context.Context, sessionID string, limit int) ([]*model.SessionContext, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var entries []*model.SessionContext
	for _, c := range r.s.contexts {
		if c.SessionID == sessionID {
			cp := *c
			entries = append(entries, &cp)
		}
	}
	slices.SortStableFunc(entries, func(a, b *model.SessionContext) int {
		if a.Importance != b.Importance {
			return b.Importance - a.Importance
		}
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
