package handler

import (
	"github.com/gofiber/fiber/v2"

	"dungeon-master/internal/model"
	"dungeon-master/internal/service"
)

// InventoryHandler serves inventory endpoints.
type InventoryHandler struct {
	inventory *service.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(inventory *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// Register mounts the inventory routes.
func (h *InventoryHandler) Register(r fiber.Router) {
	r.Get("/characters/:id/inventory", h.List)
	r.Post("/characters/:id/inventory", h.Add)
	r.Patch("/inventory/:id", h.Update)
	r.Delete("/inventory/:id", h.Delete)
}

// List handles GET /characters/:id/inventory.
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	items, err := h.inventory.List(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(orEmpty(items))
}

// Add handles POST /characters/:id/inventory.
func (h *InventoryHandler) Add(c *fiber.Ctx) error {
	var req service.AddItemRequest
	if err := parseBody(c, &req); err != nil {
		return writeError(c, err)
	}
	item, err := h.inventory.Add(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// Update handles PATCH /inventory/:id.
func (h *InventoryHandler) Update(c *fiber.Ctx) error {
	var upd model.InventoryUpdate
	if err := parseBody(c, &upd); err != nil {
		return writeError(c, err)
	}
	item, err := h.inventory.Update(c.UserContext(), c.Params("id"), upd)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(item)
}

// Delete handles DELETE /inventory/:id.
func (h *InventoryHandler) Delete(c *fiber.Ctx) error {
	if err := h.inventory.Remove(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
