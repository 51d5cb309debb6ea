package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, ":3001", cfg.Server.Addr())
	assert.Equal(t, StoragePostgres, cfg.Storage.Backend)
	assert.Equal(t, LockMemory, cfg.Lock.Backend)
	assert.Equal(t, 5*time.Second, cfg.Lock.Timeout)
	assert.Equal(t, "per_level", cfg.Progression.LevelUpPolicy)
	assert.Equal(t, 100, cfg.Game.DefaultMaxHealth)
	assert.Equal(t, 10, cfg.Game.NarratorHistoryLimit)
	assert.False(t, cfg.UsesOpenAI())
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := `
storage:
  backend: memory
lock:
  backend: redis
  timeout: 2s
progression:
  level_up_policy: single
database:
  host: db.internal
  port: 6543
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("DATABASE_HOST", "override.internal")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.Storage.Backend)
	assert.Equal(t, LockRedis, cfg.Lock.Backend)
	assert.Equal(t, 2*time.Second, cfg.Lock.Timeout)
	assert.Equal(t, "single", cfg.Progression.LevelUpPolicy)
	assert.Equal(t, "override.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.True(t, cfg.UsesOpenAI())
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("storage:\n  backend: sqlite\n"), 0o600))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", Name: "n"}
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", d.DSN())
}
