package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"dungeon-master/internal/model"
	"dungeon-master/internal/store"
)

const inventoryColumns = `id, character_id, item_name, item_type, quantity, description, properties`

// InventoryRepository handles inventory item persistence.
// Item properties are stored as JSONB.
type InventoryRepository struct {
	db DBTX
}

// NewInventoryRepository creates a new InventoryRepository instance.
func NewInventoryRepository(db DBTX) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func scanInventoryItem(row scanner) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := row.Scan(
		&item.ID,
		&item.CharacterID,
		&item.ItemName,
		&item.ItemType,
		&item.Quantity,
		&item.Description,
		&item.Properties,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Create adds an item to a character's inventory.
func (r *InventoryRepository) Create(ctx context.Context, item *model.InventoryItem) (*model.InventoryItem, error) {
	query := `
		INSERT INTO inventory (character_id, item_name, item_type, quantity, description, properties)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + inventoryColumns

	created, err := scanInventoryItem(r.db.QueryRow(ctx, query,
		item.CharacterID, item.ItemName, item.ItemType, item.Quantity, item.Description, item.Properties,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory item: %w", err)
	}
	return created, nil
}

// Get retrieves an item by id.
func (r *InventoryRepository) Get(ctx context.Context, id string) (*model.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE id = $1`

	item, err := scanInventoryItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	return item, nil
}

// ListByCharacter returns all items a character carries, sorted by name.
func (r *InventoryRepository) ListByCharacter(ctx context.Context, characterID string) ([]*model.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE character_id = $1 ORDER BY item_name, id`

	rows, err := r.db.Query(ctx, query, characterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer rows.Close()

	var items []*model.InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Update merges the non-nil fields of upd into the stored item.
func (r *InventoryRepository) Update(ctx context.Context, id string, upd model.InventoryUpdate) (*model.InventoryItem, error) {
	query := `
		UPDATE inventory SET
			item_name = COALESCE($2, item_name),
			item_type = COALESCE($3, item_type),
			quantity = COALESCE($4, quantity),
			description = COALESCE($5, description),
			properties = COALESCE($6, properties)
		WHERE id = $1
		RETURNING ` + inventoryColumns

	item, err := scanInventoryItem(r.db.QueryRow(ctx, query, id,
		upd.ItemName, upd.ItemType, upd.Quantity, upd.Description, upd.Properties,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update inventory item: %w", err)
	}
	return item, nil
}

// Delete removes an item.
func (r *InventoryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM inventory WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
