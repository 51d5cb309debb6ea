package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"dungeon-master/internal/model"
	"dungeon-master/internal/store"
)

// GameStateService assembles everything a client needs to render a session.
type GameStateService struct {
	characters   store.CharacterStore
	sessions     store.SessionStore
	messages     store.MessageStore
	inventory    store.InventoryStore
	historyLimit int
}

// NewGameStateService creates a new GameStateService instance.
func NewGameStateService(stores *Stores, historyLimit int) *GameStateService {
	return &GameStateService{
		characters:   stores.Characters,
		sessions:     stores.Sessions,
		messages:     stores.Messages,
		inventory:    stores.Inventory,
		historyLimit: historyLimit,
	}
}

// Get loads the session, then its character, messages and the character's inventory.
func (s *GameStateService) Get(ctx context.Context, sessionID string) (*model.GameState, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, storageErr("get session", err)
	}

	state := &model.GameState{Session: session}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		state.Character, err = s.characters.Get(gctx, session.CharacterID)
		return storageErr("get character", err)
	})
	g.Go(func() error {
		var err error
		state.Messages, err = s.messages.ListBySession(gctx, session.ID, s.historyLimit)
		return storageErr("list messages", err)
	})
	g.Go(func() error {
		var err error
		state.Inventory, err = s.inventory.ListByCharacter(gctx, session.CharacterID)
		return storageErr("list inventory", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if state.Messages == nil {
		state.Messages = []*model.Message{}
	}
	if state.Inventory == nil {
		state.Inventory = []*model.InventoryItem{}
	}
	state.IsInCombat = inCombat(state.Messages)
	return state, nil
}

// inCombat reports whether the latest Dungeon Master message started or continued combat.
func inCombat(messages []*model.Message) bool {
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		if m.Sender != model.SenderDM {
			continue
		}
		return m.Metadata != nil && m.Metadata.CombatAction
	}
	return false
}
