// Package repository provides the PostgreSQL implementations of the stores.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"dungeon-master/internal/store"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so every repository can
// run standalone or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// TxStore runs progression transactions against PostgreSQL.
type TxStore struct {
	pool *pgxpool.Pool
}

// NewTxStore creates a new TxStore instance.
func NewTxStore(pool *pgxpool.Pool) *TxStore {
	return &TxStore{pool: pool}
}

// InTx begins a read-committed transaction, hands fn repositories bound to it,
// and commits only if fn succeeds.
func (s *TxStore) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, &txScope{
			characters:  NewCharacterRepository(tx),
			progression: NewProgressionRepository(tx),
			levelUps:    NewLevelUpRepository(tx),
		})
	})
	if err != nil {
		return fmt.Errorf("progression transaction: %w", err)
	}
	return nil
}

type txScope struct {
	characters  *CharacterRepository
	progression *ProgressionRepository
	levelUps    *LevelUpRepository
}

func (t *txScope) Characters() store.CharacterStore      { return t.characters }
func (t *txScope) Progression() store.ProgressionHistory { return t.progression }
func (t *txScope) LevelUps() store.LevelUpHistory        { return t.levelUps }
