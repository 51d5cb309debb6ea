package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{"pgcrypto", `CREATE EXTENSION IF NOT EXISTS pgcrypto`},
	{"characters", `
		CREATE TABLE IF NOT EXISTS characters (
			id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
			name VARCHAR(255) NOT NULL,
			class VARCHAR(50) NOT NULL,
			level INTEGER NOT NULL DEFAULT 1 CHECK (level BETWEEN 1 AND 20),
			health INTEGER NOT NULL CHECK (health >= 0),
			max_health INTEGER NOT NULL CHECK (max_health >= 0),
			strength INTEGER NOT NULL DEFAULT 10,
			dexterity INTEGER NOT NULL DEFAULT 10,
			constitution INTEGER NOT NULL DEFAULT 10,
			intelligence INTEGER NOT NULL DEFAULT 10,
			wisdom INTEGER NOT NULL DEFAULT 10,
			charisma INTEGER NOT NULL DEFAULT 10,
			experience INTEGER NOT NULL DEFAULT 0 CHECK (experience >= 0),
			proficiency_bonus INTEGER NOT NULL DEFAULT 2,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (health <= max_health)
		)`},
	{"game_sessions", `
		CREATE TABLE IF NOT EXISTS game_sessions (
			id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
			character_id TEXT NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
			title VARCHAR(255) NOT NULL,
			description TEXT,
			current_scene TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"messages", `
		CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
			session_id TEXT NOT NULL REFERENCES game_sessions(id) ON DELETE CASCADE,
			sender VARCHAR(20) NOT NULL,
			content TEXT NOT NULL,
			message_type VARCHAR(20) NOT NULL DEFAULT 'text',
			metadata JSONB,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"inventory", `
		CREATE TABLE IF NOT EXISTS inventory (
			id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
			character_id TEXT NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
			item_name VARCHAR(255) NOT NULL,
			item_type VARCHAR(50) NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
			description TEXT,
			properties JSONB
		)`},
	{"dice_rolls", `
		CREATE TABLE IF NOT EXISTS dice_rolls (
			id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
			session_id TEXT NOT NULL REFERENCES game_sessions(id) ON DELETE CASCADE,
			character_id TEXT NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
			dice_type VARCHAR(10) NOT NULL,
			result INTEGER NOT NULL,
			modifier INTEGER NOT NULL DEFAULT 0,
			purpose TEXT,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"session_context", `
		CREATE TABLE IF NOT EXISTS session_context (
			id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
			session_id TEXT NOT NULL REFERENCES game_sessions(id) ON DELETE CASCADE,
			context_type VARCHAR(50) NOT NULL,
			context_key VARCHAR(255) NOT NULL,
			context_value TEXT NOT NULL,
			importance INTEGER NOT NULL DEFAULT 5 CHECK (importance BETWEEN 1 AND 10),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (session_id, context_key)
		)`},
	{"character_progression", `
		CREATE TABLE IF NOT EXISTS character_progression (
			id BIGSERIAL PRIMARY KEY,
			character_id TEXT NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
			experience_gained INTEGER NOT NULL CHECK (experience_gained > 0),
			experience_source VARCHAR(50) NOT NULL,
			description TEXT,
			session_id TEXT REFERENCES game_sessions(id) ON DELETE SET NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"level_ups", `
		CREATE TABLE IF NOT EXISTS level_ups (
			id BIGSERIAL PRIMARY KEY,
			character_id TEXT NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
			previous_level INTEGER NOT NULL,
			new_level INTEGER NOT NULL,
			hit_points_gained INTEGER NOT NULL CHECK (hit_points_gained >= 1),
			features_gained TEXT[] NOT NULL DEFAULT '{}',
			session_id TEXT REFERENCES game_sessions(id) ON DELETE SET NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"class_features", `
		CREATE TABLE IF NOT EXISTS class_features (
			id BIGSERIAL PRIMARY KEY,
			class_name VARCHAR(50) NOT NULL,
			level INTEGER NOT NULL,
			feature_name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			feature_type VARCHAR(50) NOT NULL,
			UNIQUE (class_name, level, feature_name)
		)`},
	{"indexes", `
		CREATE INDEX IF NOT EXISTS idx_game_sessions_character ON game_sessions(character_id, is_active);
		CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, timestamp);
		CREATE INDEX IF NOT EXISTS idx_inventory_character ON inventory(character_id);
		CREATE INDEX IF NOT EXISTS idx_dice_rolls_session ON dice_rolls(session_id, timestamp);
		CREATE INDEX IF NOT EXISTS idx_progression_character ON character_progression(character_id, created_at);
		CREATE INDEX IF NOT EXISTS idx_level_ups_character ON level_ups(character_id, created_at)`},
}

// Migrate creates the schema. Every statement is idempotent, so it is safe to run on each start.
func Migrate(ctx context.Context, db Execer) error {
	for _, m := range migrations {
		if _, err := db.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.name, err)
		}
		log.Debug().Str("migration", m.name).Msg("Migration applied")
	}
	log.Info().Int("count", len(migrations)).Msg("Database schema is up to date")
	return nil
}
