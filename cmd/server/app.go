package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"dungeon-master/internal/config"
	"dungeon-master/internal/dice"
	"dungeon-master/internal/narrator"
	"dungeon-master/internal/pkg/db"
	"dungeon-master/internal/pkg/lock"
	"dungeon-master/internal/progression"
	"dungeon-master/internal/repository/memory"
	"dungeon-master/internal/server"
	"dungeon-master/internal/service"
)

// app holds the wired services and the resources to release on exit.
type app struct {
	deps    *server.Dependencies
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// openStores connects the configured storage backend.
func openStores(ctx context.Context, cfg *config.Config) (*service.Stores, func(context.Context) error, func(), error) {
	if cfg.Storage.Backend == config.StorageMemory {
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		return service.NewMemoryStores(memory.New()), nil, func() {}, nil
	}

	pool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return service.NewPostgresStores(pool.Pool), pool.HealthCheck, pool.Close, nil
}

func newLocker(cfg *config.Config) (lock.Locker, func(), error) {
	if cfg.Lock.Backend != config.LockRedis {
		return lock.NewCharacterLock(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	l, err := lock.NewRedisLock(client, cfg.Lock.TTL)
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to create redis lock: %w", err)
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("Using Redis character locks")
	return l, func() { _ = client.Close() }, nil
}

func newNarrator(cfg *config.Config) narrator.Narrator {
	if cfg.UsesOpenAI() {
		log.Info().Str("model", cfg.OpenAI.Model).Msg("Using OpenAI narrator")
		return narrator.NewOpenAINarrator(&cfg.OpenAI)
	}
	log.Warn().Msg("No OpenAI API key configured, using offline narrator")
	return narrator.NewOfflineNarrator()
}

// buildApp wires storage, locks, the narrator and every service.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	policy, err := progression.ParsePolicy(cfg.Progression.LevelUpPolicy)
	if err != nil {
		return nil, err
	}

	a := &app{}

	stores, health, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeStores)

	locker, closeLocker, err := newLocker(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeLocker)

	prog := service.NewProgressionService(stores, locker, cfg.Lock.Timeout, policy)

	// memory storage starts empty, so the catalog is loaded on every start
	if cfg.Storage.Backend == config.StorageMemory {
		if _, err := prog.SeedFeatures(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.deps = &server.Dependencies{
		Config:      cfg,
		Characters:  service.NewCharacterService(stores, locker, cfg.Lock.Timeout, cfg.Game.DefaultMaxHealth),
		Progression: prog,
		Sessions:    service.NewSessionService(stores, cfg.Game.MessageHistoryLimit),
		Inventory:   service.NewInventoryService(stores),
		Dice:        service.NewDiceService(stores, dice.NewRandomRoller(), cfg.Game.DiceRollHistoryLimit),
		Adventures: service.NewAdventureService(stores, newNarrator(cfg), prog, service.NarratorLimits{
			Messages: cfg.Game.NarratorHistoryLimit,
			Context:  cfg.Game.ContextLimit,
		}),
		GameState:   service.NewGameStateService(stores, cfg.Game.MessageHistoryLimit),
		HealthCheck: health,
	}

	log.Info().
		Str("storage", cfg.Storage.Backend).
		Str("lock", cfg.Lock.Backend).
		Str("level_up_policy", string(policy)).
		Msg("Services initialized")

	return a, nil
}
