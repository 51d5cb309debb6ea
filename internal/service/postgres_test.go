// Tests use testcontainers-go to spin up a PostgreSQL container.
package service

import (
	"context"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"dungeon-master/internal/model"
	"dungeon-master/internal/pkg/db"
	"dungeon-master/internal/pkg/lock"
	"dungeon-master/internal/progression"
)

// checkDockerAvailable checks if Docker is available and running
func checkDockerAvailable() bool {
	return exec.Command("docker", "info").Run() == nil
}

// setupTestDB creates a PostgreSQL container with the schema applied.
// Skips the test if Docker is not available
func setupTestDB(t *testing.T) *pgxpool.Pool {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool))
	return pool
}

// Each goroutine stands in for a separate server instance with its own
// in-process lock, so only the row lock taken by the transaction keeps the
// awards from overwriting each other.
func TestAwardExperience_PostgresConcurrentInstances(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	stores := NewPostgresStores(pool)

	_, err := stores.Features.Seed(ctx, model.DefaultClassFeatures())
	require.NoError(t, err)

	characters := NewCharacterService(stores, lock.NewCharacterLock(), testLockTimeout, 100)
	c, err := characters.Create(ctx, CreateCharacterRequest{Name: "Aria", Class: model.ClassFighter, Constitution: 14})
	require.NoError(t, err)

	const (
		instances = 8
		amount    = 1000
	)

	var wg sync.WaitGroup
	errs := make(chan error, instances)
	for range instances {
		svc := NewProgressionService(stores, lock.NewCharacterLock(), testLockTimeout, progression.PolicyPerLevel)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AwardExperience(ctx, AwardRequest{
				CharacterID: c.ID, Amount: amount, Source: model.SourceCombat,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	want := instances * amount
	got, err := characters.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got.Experience)
	assert.Equal(t, progression.LevelFromExperience(want), got.Level)
	assert.Equal(t, progression.ProficiencyBonusFromLevel(got.Level), got.ProficiencyBonus)
	assert.Equal(t, got.MaxHealth, got.Health)

	reader := NewProgressionService(stores, lock.NewCharacterLock(), testLockTimeout, progression.PolicyPerLevel)

	events, err := reader.ListProgression(ctx, c.ID, 0)
	require.NoError(t, err)
	assert.Len(t, events, instances)
	for _, e := range events {
		assert.Equal(t, amount, e.ExperienceGained)
	}

	ups, err := reader.ListLevelUps(ctx, c.ID, 0)
	require.NoError(t, err)
	require.Len(t, ups, got.Level-1)

	gained := 0
	reached := make(map[int]bool)
	for _, u := range ups {
		assert.Equal(t, u.PreviousLevel+1, u.NewLevel)
		assert.False(t, reached[u.NewLevel], "level %d recorded twice", u.NewLevel)
		reached[u.NewLevel] = true
		gained += u.HitPointsGained
	}
	assert.Equal(t, got.MaxHealth-100, gained)
}
