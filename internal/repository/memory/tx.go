package memory

import (
	"context"

	"github.com/google/uuid"

	"dungeon-master/internal/model"
	"dungeon-master/internal/store"
)

// InTx runs fn with stores that buffer their writes. The buffer is applied
// under the write lock only when fn returns nil; otherwise it is dropped.
// Transactions are serialized, which stands in for row locking.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &txScope{
		s:       s,
		created: make(map[string]*model.Character),
		updates: make(map[string][]model.CharacterUpdate),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type txScope struct {
	s *Store

	created     map[string]*model.Character
	updates     map[string][]model.CharacterUpdate
	updateOrder []string
	progression []*model.ProgressionEvent
	levelUps    []*model.LevelUpEvent
}

func (t *txScope) Characters() store.CharacterStore      { return txCharacters{t} }
func (t *txScope) Progression() store.ProgressionHistory { return txProgression{t} }
func (t *txScope) LevelUps() store.LevelUpHistory        { return txLevelUps{t} }

func (t *txScope) commit() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for id, c := range t.created {
		t.s.characters[id] = c
	}
	for _, id := range t.updateOrder {
		c, ok := t.s.characters[id]
		if !ok {
			continue
		}
		updated := cloneCharacter(c)
		for _, upd := range t.updates[id] {
			upd.Apply(updated)
		}
		t.s.characters[id] = updated
	}
	t.s.progression = append(t.s.progression, t.progression...)
	t.s.levelUps = append(t.s.levelUps, t.levelUps...)
}

// view returns the character as this transaction sees it.
func (t *txScope) view(id string) (*model.Character, error) {
	var c *model.Character
	if created, ok := t.created[id]; ok {
		c = cloneCharacter(created)
	} else {
		t.s.mu.RLock()
		stored, ok := t.s.characters[id]
		t.s.mu.RUnlock()
		if !ok {
			return nil, store.ErrNotFound
		}
		c = cloneCharacter(stored)
	}
	for _, upd := range t.updates[id] {
		upd.Apply(c)
	}
	return c, nil
}

type txCharacters struct{ t *txScope }

func (r txCharacters) Create(_ context.Context, c *model.Character) (*model.Character, error) {
	created := cloneCharacter(c)
	created.ID = uuid.NewString()
	created.CreatedAt = r.t.s.now()
	r.t.created[created.ID] = created
	return cloneCharacter(created), nil
}

func (r txCharacters) Get(_ context.Context, id string) (*model.Character, error) {
	return r.t.view(id)
}

func (r txCharacters) GetForUpdate(_ context.Context, id string) (*model.Character, error) {
	return r.t.view(id)
}

func (r txCharacters) Update(_ context.Context, id string, upd model.CharacterUpdate) (*model.Character, error) {
	if _, err := r.t.view(id); err != nil {
		return nil, err
	}
	if created, ok := r.t.created[id]; ok {
		upd.Apply(created)
	} else {
		if _, seen := r.t.updates[id]; !seen {
			r.t.updateOrder = append(r.t.updateOrder, id)
		}
		r.t.updates[id] = append(r.t.updates[id], upd)
	}
	return r.t.view(id)
}

type txProgression struct{ t *txScope }

func (r txProgression) Append(_ context.Context, e *model.ProgressionEvent) (*model.ProgressionEvent, error) {
	created := r.t.s.stampProgression(e)
	r.t.progression = append(r.t.progression, created)
	cp := *created
	return &cp, nil
}

func (r txProgression) ListByCharacter(ctx context.Context, characterID string, limit int) ([]*model.ProgressionEvent, error) {
	pending := newestFirst(r.t.progression, limit, func(e *model.ProgressionEvent) (*model.ProgressionEvent, bool) {
		cp := *e
		return &cp, e.CharacterID == characterID
	})
	if limit > 0 && len(pending) >= limit {
		return pending, nil
	}
	rest, err := progressionHistory{r.t.s}.ListByCharacter(ctx, characterID, remaining(limit, len(pending)))
	if err != nil {
		return nil, err
	}
	return append(pending, rest...), nil
}

type txLevelUps struct{ t *txScope }

func (r txLevelUps) Append(_ context.Context, e *model.LevelUpEvent) (*model.LevelUpEvent, error) {
	created := r.t.s.stampLevelUp(e)
	r.t.levelUps = append(r.t.levelUps, created)
	return cloneLevelUp(created), nil
}

func (r txLevelUps) ListByCharacter(ctx context.Context, characterID string, limit int) ([]*model.LevelUpEvent, error) {
	pending := newestFirst(r.t.levelUps, limit, func(e *model.LevelUpEvent) (*model.LevelUpEvent, bool) {
		return cloneLevelUp(e), e.CharacterID == characterID
	})
	if limit > 0 && len(pending) >= limit {
		return pending, nil
	}
	rest, err := levelUpHistory{r.t.s}.ListByCharacter(ctx, characterID, remaining(limit, len(pending)))
	if err != nil {
		return nil, err
	}
	return append(pending, rest...), nil
}

func remaining(limit, have int) int {
	if limit <= 0 {
		return 0
	}
	return limit - have
}
