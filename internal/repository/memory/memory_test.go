package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dungeon-master/internal/model"
	"dungeon-master/internal/store"
)

var (
	_ store.Transactor = (*Store)(nil)
	_ store.Tx         = (*txScope)(nil)
)

func newCharacter(t *testing.T, s *Store) *model.Character {
	t.Helper()
	c, err := s.Characters().Create(context.Background(), &model.Character{
		Name: "Brom", Class: model.ClassWizard, Level: 1, Health: 8, MaxHealth: 8,
		Constitution: 10, ProficiencyBonus: 2,
	})
	require.NoError(t, err)
	return c
}

func TestInTx_DiscardsWritesOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := newCharacter(t, s)

	boom := errors.New("boom")
	err := s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		xp := 900
		updated, err := tx.Characters().Update(ctx, c.ID, model.CharacterUpdate{Experience: &xp})
		require.NoError(t, err)
		assert.Equal(t, 900, updated.Experience)

		_, err = tx.Progression().Append(ctx, &model.ProgressionEvent{
			CharacterID: c.ID, ExperienceGained: 900, Source: model.SourcePuzzle,
		})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Characters().Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Experience)

	events, err := s.Progression().ListByCharacter(ctx, c.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestInTx_CommitsAndSeesOwnWrites(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := newCharacter(t, s)

	err := s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		xp := 300
		if _, err := tx.Characters().Update(ctx, c.ID, model.CharacterUpdate{Experience: &xp}); err != nil {
			return err
		}
		seen, err := tx.Characters().GetForUpdate(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, 300, seen.Experience)

		if _, err := tx.LevelUps().Append(ctx, &model.LevelUpEvent{
			CharacterID: c.ID, PreviousLevel: 1, NewLevel: 2, HitPointsGained: 4,
		}); err != nil {
			return err
		}
		pending, err := tx.LevelUps().ListByCharacter(ctx, c.ID, 0)
		require.NoError(t, err)
		assert.Len(t, pending, 1)
		return nil
	})
	require.NoError(t, err)

	got, err := s.Characters().Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 300, got.Experience)

	levelUps, err := s.LevelUps().ListByCharacter(ctx, c.ID, 0)
	require.NoError(t, err)
	require.Len(t, levelUps, 1)
	assert.NotNil(t, levelUps[0].FeaturesGained)
}

func TestInTx_CommitMergesWithConcurrentDirectEdit(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := newCharacter(t, s)

	err := s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		name := "Brom the Wise"
		_, err := s.Characters().Update(ctx, c.ID, model.CharacterUpdate{Name: &name})
		require.NoError(t, err)

		xp := 50
		_, err = tx.Characters().Update(ctx, c.ID, model.CharacterUpdate{Experience: &xp})
		return err
	})
	require.NoError(t, err)

	got, err := s.Characters().Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Brom the Wise", got.Name)
	assert.Equal(t, 50, got.Experience)
}

func TestInTx_SerializesTransactions(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := newCharacter(t, s)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
				cur, err := tx.Characters().GetForUpdate(ctx, c.ID)
				if err != nil {
					return err
				}
				xp := cur.Experience + 10
				_, err = tx.Characters().Update(ctx, c.ID, model.CharacterUpdate{Experience: &xp})
				return err
			})
		}()
	}
	wg.Wait()

	got, err := s.Characters().Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 500, got.Experience)
}

func TestHistory_NewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := newCharacter(t, s)

	for _, amount := range []int{10, 20, 30} {
		_, err := s.Progression().Append(ctx, &model.ProgressionEvent{
			CharacterID: c.ID, ExperienceGained: amount, Source: model.SourceSocial,
		})
		require.NoError(t, err)
	}

	events, err := s.Progression().ListByCharacter(ctx, c.ID, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 30, events[0].ExperienceGained)
	assert.Equal(t, 20, events[1].ExperienceGained)
}

func TestFeatureCatalog_SeedAndLookup(t *testing.T) {
	ctx := context.Background()
	s := New()

	n, err := s.Features().Seed(ctx, model.DefaultClassFeatures())
	require.NoError(t, err)
	assert.Equal(t, len(model.DefaultClassFeatures()), n)

	n, err = s.Features().Seed(ctx, model.DefaultClassFeatures())
	require.NoError(t, err)
	assert.Zero(t, n)

	features, err := s.Features().FeaturesFor(ctx, "ROGUE", 1)
	require.NoError(t, err)
	require.Len(t, features, 3)
	assert.Equal(t, "Expertise", features[0].FeatureName)

	byClass, err := s.Features().ListByClass(ctx, "Cleric")
	require.NoError(t, err)
	require.Len(t, byClass, 4)
	assert.Equal(t, 1, byClass[0].Level)
	assert.Equal(t, 4, byClass[3].Level)

	unknown, err := s.Features().ListByClass(ctx, "Artificer")
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestMessages_LatestOldestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, content := range []string{"a", "b", "c", "d"} {
		_, err := s.Messages().Create(ctx, &model.Message{
			SessionID: "s1", Sender: model.SenderPlayer, Content: content, MessageType: model.MessageTypeText,
		})
		require.NoError(t, err)
	}
	_, err := s.Messages().Create(ctx, &model.Message{SessionID: "s2", Content: "other"})
	require.NoError(t, err)

	msgs, err := s.Messages().ListBySession(ctx, "s1", 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "c", msgs[0].Content)
	assert.Equal(t, "d", msgs[1].Content)
}

func TestContexts_UpsertReplacesByKey(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.Contexts().Upsert(ctx, &model.SessionContext{
		SessionID: "s1", ContextType: model.ContextPlotThreads, ContextKey: "missing-heir", ContextValue: "rumor", Importance: 4,
	})
	require.NoError(t, err)
	_, err = s.Contexts().Upsert(ctx, &model.SessionContext{
		SessionID: "s1", ContextType: model.ContextPlotThreads, ContextKey: "missing-heir", ContextValue: "confirmed", Importance: 9,
	})
	require.NoError(t, err)

	entries, err := s.Contexts().ListBySession(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "confirmed", entries[0].ContextValue)
	assert.Equal(t, 9, entries[0].Importance)
}

func TestInventory_NotFound(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.Inventory().Get(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.Inventory().Delete(ctx, "nope"), store.ErrNotFound)

	qty := 3
	_, err = s.Inventory().Update(ctx, "nope", model.InventoryUpdate{Quantity: &qty})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
