package handler

import (
	"github.com/gofiber/fiber/v2"

	"dungeon-master/internal/service"
)

// DMHandler serves the Dungeon Master endpoints.
type DMHandler struct {
	adventures *service.AdventureService
	gameState  *service.GameStateService
}

// NewDMHandler creates a new DMHandler.
func NewDMHandler(adventures *service.AdventureService, gameState *service.GameStateService) *DMHandler {
	return &DMHandler{adventures: adventures, gameState: gameState}
}

// Register mounts the Dungeon Master routes.
func (h *DMHandler) Register(r fiber.Router) {
	r.Post("/dm/start-adventure", h.StartAdventure)
	r.Post("/dm/respond", h.Respond)
	r.Get("/game-state/:sessionId", h.GameState)
}

// StartAdventure handles POST /dm/start-adventure.
func (h *DMHandler) StartAdventure(c *fiber.Ctx) error {
	var req service.StartAdventureRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, err)
	}
	result, err := h.adventures.Start(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

// Respond handles POST /dm/respond.
func (h *DMHandler) Respond(c *fiber.Ctx) error {
	var req service.TurnRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, err)
	}
	result, err := h.adventures.Respond(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

// GameState handles GET /game-state/:sessionId.
func (h *DMHandler) GameState(c *fiber.Ctx) error {
	state, err := h.gameState.Get(c.UserContext(), c.Params("sessionId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(state)
}
