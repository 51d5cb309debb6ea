package service

import (
	"context"
	"strings"

	"dungeon-master/internal/model"
	"dungeon-master/internal/store"
)

// AddItemRequest puts an item into a character's inventory.
type AddItemRequest struct {
	ItemName    string                `json:"itemName"`
	ItemType    string                `json:"itemType"`
	Quantity    int                   `json:"quantity"`
	Description *string               `json:"description,omitempty"`
	Properties  *model.ItemProperties `json:"properties,omitempty"`
}

// InventoryService manages character inventories.
type InventoryService struct {
	characters store.CharacterStore
	inventory  store.InventoryStore
}

// NewInventoryService creates a new InventoryService instance.
func NewInventoryService(stores *Stores) *InventoryService {
	return &InventoryService{
		characters: stores.Characters,
		inventory:  stores.Inventory,
	}
}

// List returns a character's items.
func (s *InventoryService) List(ctx context.Context, characterID string) ([]*model.InventoryItem, error) {
	if _, err := s.characters.Get(ctx, characterID); err != nil {
		return nil, storageErr("get character", err)
	}
	items, err := s.inventory.ListByCharacter(ctx, characterID)
	if err != nil {
		return nil, storageErr("list inventory", err)
	}
	return items, nil
}

// Add creates an item. A zero quantity means one.
func (s *InventoryService) Add(ctx context.Context, characterID string, req AddItemRequest) (*model.InventoryItem, error) {
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if strings.TrimSpace(req.ItemName) == "" {
		return nil, invalidf("item name is required")
	}
	if strings.TrimSpace(req.ItemType) == "" {
		return nil, invalidf("item type is required")
	}
	if req.Quantity < 1 {
		return nil, invalidf("quantity must be at least 1, got %d", req.Quantity)
	}
	if _, err := s.characters.Get(ctx, characterID); err != nil {
		return nil, storageErr("get character", err)
	}

	item, err := s.inventory.Create(ctx, &model.InventoryItem{
		CharacterID: characterID,
		ItemName:    strings.TrimSpace(req.ItemName),
		ItemType:    strings.TrimSpace(req.ItemType),
		Quantity:    req.Quantity,
		Description: req.Description,
		Properties:  req.Properties,
	})
	if err != nil {
		return nil, storageErr("create item", err)
	}
	return item, nil
}

// Update edits an item.
func (s *InventoryService) Update(ctx context.Context, id string, upd model.InventoryUpdate) (*model.InventoryItem, error) {
	if upd.ItemName != nil && strings.TrimSpace(*upd.ItemName) == "" {
		return nil, invalidf("item name cannot be empty")
	}
	if upd.ItemType != nil && strings.TrimSpace(*upd.ItemType) == "" {
		return nil, invalidf("item type cannot be empty")
	}
	if upd.Quantity != nil && *upd.Quantity < 1 {
		return nil, invalidf("quantity must be at least 1, got %d", *upd.Quantity)
	}

	item, err := s.inventory.Update(ctx, id, upd)
	if err != nil {
		return nil, storageErr("update item", err)
	}
	return item, nil
}

// Remove deletes an item.
func (s *InventoryService) Remove(ctx context.Context, id string) error {
	if err := s.inventory.Delete(ctx, id); err != nil {
		return storageErr("delete item", err)
	}
	return nil
}
