package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dungeon-master/internal/config"
	"dungeon-master/internal/dice"
	"dungeon-master/internal/model"
	"dungeon-master/internal/narrator"
	"dungeon-master/internal/pkg/lock"
	"dungeon-master/internal/progression"
	"dungeon-master/internal/repository/memory"
	"dungeon-master/internal/service"
)

func newTestServer(t *testing.T, health func(context.Context) error) *fiber.App {
	t.Helper()

	cfg := &config.Config{Server: config.ServerConfig{Port: 0}}
	stores := service.NewMemoryStores(memory.New())
	locks := lock.NewCharacterLock()
	prog := service.NewProgressionService(stores, locks, time.Second, progression.PolicyPerLevel)
	_, err := prog.SeedFeatures(context.Background())
	require.NoError(t, err)

	s := New(&Dependencies{
		Config:      cfg,
		Characters:  service.NewCharacterService(stores, locks, time.Second, 100),
		Progression: prog,
		Sessions:    service.NewSessionService(stores, 50),
		Inventory:   service.NewInventoryService(stores),
		Dice:        service.NewDiceService(stores, dice.NewSequenceRoller(18), 10),
		Adventures: service.NewAdventureService(stores, narrator.NewOfflineNarrator(), prog,
			service.NarratorLimits{Messages: 10, Context: 20}),
		GameState:   service.NewGameStateService(stores, 50),
		HealthCheck: health,
	})
	return s.App()
}

func do(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func createCharacter(t *testing.T, app *fiber.App) model.Character {
	t.Helper()
	resp, body := do(t, app, http.MethodPost, "/api/characters", map[string]any{
		"name": "Aria", "class": "Fighter", "constitution": 14,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	return decode[model.Character](t, body)
}

func TestHealthz(t *testing.T) {
	app := newTestServer(t, nil)
	resp, body := do(t, app, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	app = newTestServer(t, func(context.Context) error { return errors.New("db down") })
	resp, _ = do(t, app, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRequestIDIsEchoed(t *testing.T) {
	app := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "req-42", resp.Header.Get(RequestIDHeader))
}

func TestCharacterAndProgressionRoutes(t *testing.T) {
	app := newTestServer(t, nil)
	c := createCharacter(t, app)
	assert.Equal(t, 1, c.Level)

	resp, body := do(t, app, http.MethodGet, "/api/characters/"+c.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, c.ID, decode[model.Character](t, body).ID)

	resp, body = do(t, app, http.MethodPost, "/api/characters/"+c.ID+"/experience", map[string]any{
		"amount": 300, "source": "combat", "description": "Goblin ambush",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	award := decode[service.AwardResult](t, body)
	assert.True(t, award.LeveledUp)
	assert.Equal(t, 2, award.Character.Level)
	assert.Equal(t, 108, award.Character.MaxHealth)

	resp, body = do(t, app, http.MethodGet, "/api/characters/"+c.ID+"/progression?limit=5", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]model.ProgressionEvent](t, body), 1)

	resp, body = do(t, app, http.MethodGet, "/api/characters/"+c.ID+"/level-ups", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ups := decode[[]model.LevelUpEvent](t, body)
	require.Len(t, ups, 1)
	assert.Equal(t, []string{"Action Surge"}, ups[0].FeaturesGained)

	resp, body = do(t, app, http.MethodGet, "/api/characters/"+c.ID+"/progression/summary", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decode[service.ProgressionSummary](t, body)
	assert.Equal(t, 600, summary.ExperienceToNextLevel)

	resp, body = do(t, app, http.MethodGet, "/api/classes/fighter/features", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]model.ClassFeature](t, body), 5)

	resp, _ = do(t, app, http.MethodGet, "/api/classes/necromancer/features", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestErrorMapping(t *testing.T) {
	app := newTestServer(t, nil)
	c := createCharacter(t, app)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"zero amount", http.MethodPost, "/api/characters/" + c.ID + "/experience", map[string]any{"amount": 0, "source": "combat"}, http.StatusBadRequest},
		{"bad source", http.MethodPost, "/api/characters/" + c.ID + "/experience", map[string]any{"amount": 10, "source": "theft"}, http.StatusBadRequest},
		{"amount above cap", http.MethodPost, "/api/characters/" + c.ID + "/experience", map[string]any{"amount": 3000000000, "source": "combat"}, http.StatusBadRequest},
		{"unknown session award", http.MethodPost, "/api/characters/" + c.ID + "/experience", map[string]any{"amount": 10, "source": "combat", "sessionId": "nope"}, http.StatusNotFound},
		{"unknown character award", http.MethodPost, "/api/characters/missing/experience", map[string]any{"amount": 10, "source": "combat"}, http.StatusNotFound},
		{"unknown character", http.MethodGet, "/api/characters/missing", nil, http.StatusNotFound},
		{"edit experience", http.MethodPatch, "/api/characters/" + c.ID, map[string]any{"experience": 5000}, http.StatusBadRequest},
		{"edit max health", http.MethodPatch, "/api/characters/" + c.ID, map[string]any{"maxHealth": 500}, http.StatusBadRequest},
		{"overheal", http.MethodPatch, "/api/characters/" + c.ID, map[string]any{"health": 101}, http.StatusBadRequest},
		{"bad class", http.MethodPost, "/api/characters", map[string]any{"name": "X", "class": "Pirate"}, http.StatusBadRequest},
		{"no active session", http.MethodGet, "/api/characters/" + c.ID + "/active-session", nil, http.StatusNotFound},
		{"unknown session", http.MethodGet, "/api/game-state/missing", nil, http.StatusNotFound},
		{"bad dice", http.MethodPost, "/api/dice/roll", map[string]any{"diceType": "d7", "sessionId": "s", "characterId": c.ID}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := do(t, app, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode, string(body))
			errBody := decode[map[string]any](t, body)
			assert.NotEmpty(t, errBody["message"])
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/characters", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := do(t, app, http.MethodPatch, "/api/characters/"+c.ID, map[string]any{"health": 50, "name": "Aria Prime"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, 50, decode[model.Character](t, body).Health)
}

func TestAdventureFlow(t *testing.T) {
	app := newTestServer(t, nil)
	c := createCharacter(t, app)

	resp, body := do(t, app, http.MethodPost, "/api/dm/start-adventure", map[string]any{"characterId": c.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	start := decode[service.StartAdventureResult](t, body)
	require.NotNil(t, start.Session)
	assert.NotEmpty(t, start.InitialMessage)

	sessionID := start.Session.ID

	resp, body = do(t, app, http.MethodGet, "/api/characters/"+c.ID+"/active-session", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, sessionID, decode[model.GameSession](t, body).ID)

	resp, body = do(t, app, http.MethodPost, "/api/dice/roll", map[string]any{
		"diceType": "d20", "modifier": 2, "sessionId": sessionID, "characterId": c.ID, "purpose": "Attack",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	roll := decode[map[string]any](t, body)
	assert.EqualValues(t, 18, roll["result"])
	assert.EqualValues(t, 20, roll["total"])

	resp, body = do(t, app, http.MethodPost, "/api/dm/respond", map[string]any{
		"sessionId": sessionID, "characterId": c.ID, "playerAction": "I attack the goblin",
		"diceRoll": map[string]any{"type": "d20", "result": 18, "modifier": 2},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	turn := decode[map[string]any](t, body)
	assert.NotEmpty(t, turn["content"])
	assert.EqualValues(t, 50, turn["experienceAwarded"])
	assert.NotNil(t, turn["award"])

	resp, body = do(t, app, http.MethodGet, "/api/sessions/"+sessionID+"/messages", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]model.Message](t, body), 3)

	resp, body = do(t, app, http.MethodGet, "/api/sessions/"+sessionID+"/dice-rolls", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]model.DiceRoll](t, body), 1)

	resp, body = do(t, app, http.MethodGet, "/api/game-state/"+sessionID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[model.GameState](t, body)
	assert.Equal(t, c.ID, state.Character.ID)
	assert.Equal(t, 50, state.Character.Experience)
	assert.Len(t, state.Messages, 3)
	assert.True(t, state.IsInCombat)
}

func TestSessionAndInventoryRoutes(t *testing.T) {
	app := newTestServer(t, nil)
	c := createCharacter(t, app)

	resp, body := do(t, app, http.MethodPost, "/api/sessions", map[string]any{"characterId": c.ID, "title": "Side Quest"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	session := decode[model.GameSession](t, body)

	resp, body = do(t, app, http.MethodPost, "/api/sessions/"+session.ID+"/messages", map[string]any{
		"sender": "player", "content": "Hello?",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, _ = do(t, app, http.MethodGet, "/api/sessions/"+session.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = do(t, app, http.MethodPost, "/api/characters/"+c.ID+"/inventory", map[string]any{
		"itemName": "Potion of Healing", "itemType": "consumable", "quantity": 2,
		"properties": map[string]any{"effect": "heal 2d4+2"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	item := decode[model.InventoryItem](t, body)
	require.NotNil(t, item.Properties)
	assert.Equal(t, "heal 2d4+2", item.Properties.Effect)

	resp, body = do(t, app, http.MethodPatch, "/api/inventory/"+item.ID, map[string]any{"quantity": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, 1, decode[model.InventoryItem](t, body).Quantity)

	resp, body = do(t, app, http.MethodGet, "/api/characters/"+c.ID+"/inventory", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]model.InventoryItem](t, body), 1)

	resp, _ = do(t, app, http.MethodDelete, "/api/inventory/"+item.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, app, http.MethodDelete, "/api/inventory/"+item.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = do(t, app, http.MethodGet, "/api/characters/"+c.ID+"/inventory", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))
}

func TestRecoveryMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(RecoveryMiddleware())
	app.Get("/boom", func(*fiber.Ctx) error { panic("kaboom") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
