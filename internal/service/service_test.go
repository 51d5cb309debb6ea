package service

import (
	"context"
	"errors"
	"time"

	"github.com/stretchr/testify/require"

	"dungeon-master/internal/model"
	"dungeon-master/internal/pkg/lock"
	"dungeon-master/internal/progression"
	"dungeon-master/internal/repository/memory"
	"dungeon-master/internal/store"
)

const testLockTimeout = 2 * time.Second

var errBoom = errors.New("boom")

// testingT is satisfied by *testing.T and *rapid.T.
type testingT interface {
	require.TestingT
	Helper()
}

type testEnv struct {
	stores      *Stores
	locks       *lock.CharacterLock
	characters  *CharacterService
	progression *ProgressionService
}

func newTestEnv(t testingT, policy progression.LevelUpPolicy) *testEnv {
	t.Helper()

	stores := NewMemoryStores(memory.New())
	_, err := stores.Features.Seed(context.Background(), model.DefaultClassFeatures())
	require.NoError(t, err)

	locks := lock.NewCharacterLock()
	return &testEnv{
		stores:      stores,
		locks:       locks,
		characters:  NewCharacterService(stores, locks, testLockTimeout, 100),
		progression: NewProgressionService(stores, locks, testLockTimeout, policy),
	}
}

func (e *testEnv) newCharacter(t testingT, class string, constitution int) *model.Character {
	t.Helper()
	c, err := e.characters.Create(context.Background(), CreateCharacterRequest{
		Name:         "Aria",
		Class:        class,
		Constitution: constitution,
	})
	require.NoError(t, err)
	return c
}

// failingTransactor hands fn a transaction whose level-up log always fails.
type failingTransactor struct {
	inner store.Transactor
}

func (f failingTransactor) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return f.inner.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return fn(ctx, failingTx{tx})
	})
}

type failingTx struct {
	store.Tx
}

func (t failingTx) LevelUps() store.LevelUpHistory {
	return failingLevelUps{t.Tx.LevelUps()}
}

type failingLevelUps struct {
	store.LevelUpHistory
}

func (failingLevelUps) Append(context.Context, *model.LevelUpEvent) (*model.LevelUpEvent, error) {
	return nil, errBoom
}
