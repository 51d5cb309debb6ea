package handler

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"dungeon-master/internal/service"
)

// engineFields are owned by the progression engine and rejected in direct edits.
var engineFields = []string{"experience", "level", "proficiencyBonus", "maxHealth"}

// CharacterHandler serves character endpoints.
type CharacterHandler struct {
	characters *service.CharacterService
}

// NewCharacterHandler creates a new CharacterHandler.
func NewCharacterHandler(characters *service.CharacterService) *CharacterHandler {
	return &CharacterHandler{characters: characters}
}

// Register mounts the character routes.
func (h *CharacterHandler) Register(r fiber.Router) {
	r.Post("/characters", h.Create)
	r.Get("/characters/:id", h.Get)
	r.Patch("/characters/:id", h.Update)
	r.Get("/characters/:id/active-session", h.ActiveSession)
}

// Create handles POST /characters.
func (h *CharacterHandler) Create(c *fiber.Ctx) error {
	var req service.CreateCharacterRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, err)
	}
	character, err := h.characters.Create(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(character)
}

// Get handles GET /characters/:id.
func (h *CharacterHandler) Get(c *fiber.Ctx) error {
	character, err := h.characters.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(character)
}

// Update handles PATCH /characters/:id.
func (h *CharacterHandler) Update(c *fiber.Ctx) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &fields); err != nil {
		return writeError(c, invalidBody(err))
	}
	for _, f := range engineFields {
		if _, ok := fields[f]; ok {
			return writeError(c, fmt.Errorf("%w: %s is managed by the progression engine", service.ErrInvalidInput, f))
		}
	}

	var edit service.CharacterEdit
	if err := json.Unmarshal(c.Body(), &edit); err != nil {
		return writeError(c, invalidBody(err))
	}
	character, err := h.characters.Update(c.UserContext(), c.Params("id"), edit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(character)
}

// ActiveSession handles GET /characters/:id/active-session.
func (h *CharacterHandler) ActiveSession(c *fiber.Ctx) error {
	session, err := h.characters.ActiveSession(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(session)
}
