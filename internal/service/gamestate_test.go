package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dungeon-master/internal/model"
	"dungeon-master/internal/progression"
)

func TestGameStateService(t *testing.T) {
	env := newTestEnv(t, progression.PolicyPerLevel)
	ctx := context.Background()
	c := env.newCharacter(t, model.ClassPaladin, 12)
	s := startSession(t, env, c, "A burning chapel.")
	svc := NewGameStateService(env.stores, 50)

	state, err := svc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, state.Character.ID)
	assert.Equal(t, s.ID, state.Session.ID)
	assert.NotNil(t, state.Messages)
	assert.Empty(t, state.Messages)
	assert.NotNil(t, state.Inventory)
	assert.False(t, state.IsInCombat)

	_, err = NewInventoryService(env.stores).Add(ctx, c.ID, AddItemRequest{ItemName: "Shield", ItemType: "armor"})
	require.NoError(t, err)

	sessions := NewSessionService(env.stores, 50)
	_, err = sessions.PostMessage(ctx, s.ID, PostMessageRequest{
		Sender: model.SenderDM, Content: "Cultists charge!", MessageType: model.MessageTypeCombat,
		Metadata: &model.MessageMetadata{CombatAction: true},
	})
	require.NoError(t, err)
	_, err = sessions.PostMessage(ctx, s.ID, PostMessageRequest{Sender: model.SenderPlayer, Content: "I raise my shield"})
	require.NoError(t, err)

	state, err = svc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, state.Messages, 2)
	assert.Len(t, state.Inventory, 1)
	assert.True(t, state.IsInCombat)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInCombat(t *testing.T) {
	dm := func(combat bool) *model.Message {
		return &model.Message{Sender: model.SenderDM, Metadata: &model.MessageMetadata{CombatAction: combat}}
	}
	player := &model.Message{Sender: model.SenderPlayer}

	assert.False(t, inCombat(nil))
	assert.True(t, inCombat([]*model.Message{dm(true), player}))
	assert.False(t, inCombat([]*model.Message{dm(true), dm(false)}))
	assert.False(t, inCombat([]*model.Message{{Sender: model.SenderDM}}))
}
