package handler

import (
	"github.com/gofiber/fiber/v2"

	"dungeon-master/internal/service"
)

// SessionHandler serves session, message and dice endpoints.
type SessionHandler struct {
	sessions *service.SessionService
	dice     *service.DiceService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *service.SessionService, dice *service.DiceService) *SessionHandler {
	return &SessionHandler{sessions: sessions, dice: dice}
}

// Register mounts the session routes.
func (h *SessionHandler) Register(r fiber.Router) {
	r.Post("/sessions", h.Create)
	r.Get("/sessions/:id", h.Get)
	r.Get("/sessions/:id/messages", h.Messages)
	r.Post("/sessions/:id/messages", h.PostMessage)
	r.Get("/sessions/:id/dice-rolls", h.DiceRolls)
	r.Post("/dice/roll", h.Roll)
}

// Create handles POST /sessions.
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	var req service.CreateSessionRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, err)
	}
	session, err := h.sessions.Create(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

// Get handles GET /sessions/:id.
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	session, err := h.sessions.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(session)
}

// Messages handles GET /sessions/:id/messages.
func (h *SessionHandler) Messages(c *fiber.Ctx) error {
	messages, err := h.sessions.Messages(c.UserContext(), c.Params("id"), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orEmpty(messages))
}

// PostMessage handles POST /sessions/:id/messages.
func (h *SessionHandler) PostMessage(c *fiber.Ctx) error {
	var req service.PostMessageRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, err)
	}
	message, err := h.sessions.PostMessage(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

// DiceRolls handles GET /sessions/:id/dice-rolls.
func (h *SessionHandler) DiceRolls(c *fiber.Ctx) error {
	rolls, err := h.dice.Recent(c.UserContext(), c.Params("id"), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orEmpty(rolls))
}

// Roll handles POST /dice/roll.
func (h *SessionHandler) Roll(c *fiber.Ctx) error {
	var req service.RollRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, err)
	}
	roll, err := h.dice.Roll(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(roll)
}
