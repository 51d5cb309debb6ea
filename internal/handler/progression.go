package handler

import (
	"github.com/gofiber/fiber/v2"

	"dungeon-master/internal/model"
	"dungeon-master/internal/service"
)

type awardBody struct {
	Amount      int                    `json:"amount"`
	Source      model.ExperienceSource `json:"source"`
	Description *string                `json:"description"`
	SessionID   *string                `json:"sessionId"`
}

// ProgressionHandler serves experience, level-up and class feature endpoints.
type ProgressionHandler struct {
	progression *service.ProgressionService
}

// NewProgressionHandler creates a new ProgressionHandler.
func NewProgressionHandler(progression *service.ProgressionService) *ProgressionHandler {
	return &ProgressionHandler{progression: progression}
}

// Register mounts the progression routes.
func (h *ProgressionHandler) Register(r fiber.Router) {
	r.Post("/characters/:id/experience", h.Award)
	r.Get("/characters/:id/progression", h.History)
	r.Get("/characters/:id/progression/summary", h.Summary)
	r.Get("/characters/:id/level-ups", h.LevelUps)
	r.Get("/classes/:class/features", h.ClassFeatures)
}

// Award handles POST /characters/:id/experience.
func (h *ProgressionHandler) Award(c *fiber.Ctx) error {
	var body awardBody
	if err := parseBody(c, &body); err != nil {
		return writeError(c, err)
	}
	result, err := h.progression.AwardExperience(c.UserContext(), service.AwardRequest{
		CharacterID: c.Params("id"),
		Amount:      body.Amount,
		Source:      body.Source,
		Description: body.Description,
		SessionID:   body.SessionID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

// History handles GET /characters/:id/progression.
func (h *ProgressionHandler) History(c *fiber.Ctx) error {
	events, err := h.progression.ListProgression(c.UserContext(), c.Params("id"), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orEmpty(events))
}

// LevelUps handles GET /characters/:id/level-ups.
func (h *ProgressionHandler) LevelUps(c *fiber.Ctx) error {
	events, err := h.progression.ListLevelUps(c.UserContext(), c.Params("id"), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orEmpty(events))
}

// Summary handles GET /characters/:id/progression/summary.
func (h *ProgressionHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.progression.Summary(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}

// ClassFeatures handles GET /classes/:class/features.
func (h *ProgressionHandler) ClassFeatures(c *fiber.Ctx) error {
	features, err := h.progression.ClassFeatures(c.UserContext(), c.Params("class"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(features)
}

// orEmpty keeps empty lists rendering as [] rather than null.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
