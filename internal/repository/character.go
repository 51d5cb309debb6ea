package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"dungeon-master/internal/model"
	"dungeon-master/internal/store"
)

const characterColumns = `id, name, class, level, health, max_health,
	strength, dexterity, constitution, intelligence, wisdom, charisma,
	experience, proficiency_bonus, created_at`

// CharacterRepository handles character persistence.
type CharacterRepository struct {
	db DBTX
}

// NewCharacterRepository creates a new CharacterRepository instance.
func NewCharacterRepository(db DBTX) *CharacterRepository {
	return &CharacterRepository{db: db}
}

func scanCharacter(row scanner) (*model.Character, error) {
	var c model.Character
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Class,
		&c.Level,
		&c.Health,
		&c.MaxHealth,
		&c.Strength,
		&c.Dexterity,
		&c.Constitution,
		&c.Intelligence,
		&c.Wisdom,
		&c.Charisma,
		&c.Experience,
		&c.ProficiencyBonus,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a character. The database assigns the id and creation time.
func (r *CharacterRepository) Create(ctx context.Context, c *model.Character) (*model.Character, error) {
	query := `
		INSERT INTO characters (name, class, level, health, max_health,
			strength, dexterity, constitution, intelligence, wisdom, charisma,
			experience, proficiency_bonus, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		RETURNING ` + characterColumns

	created, err := scanCharacter(r.db.QueryRow(ctx, query,
		c.Name, c.Class, c.Level, c.Health, c.MaxHealth,
		c.Strength, c.Dexterity, c.Constitution, c.Intelligence, c.Wisdom, c.Charisma,
		c.Experience, c.ProficiencyBonus,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create character: %w", err)
	}
	return created, nil
}

// Get retrieves a character by id.
// Returns store.ErrNotFound if the character does not exist.
func (r *CharacterRepository) Get(ctx context.Context, id string) (*model.Character, error) {
	query := `SELECT ` + characterColumns + ` FROM characters WHERE id = $1`
	return r.get(ctx, query, id)
}

// GetForUpdate retrieves a character and locks its row until the surrounding
// transaction ends. Outside a transaction it behaves like Get.
func (r *CharacterRepository) GetForUpdate(ctx context.Context, id string) (*model.Character, error) {
	query := `SELECT ` + characterColumns + ` FROM characters WHERE id = $1 FOR UPDATE`
	return r.get(ctx, query, id)
}

func (r *CharacterRepository) get(ctx context.Context, query, id string) (*model.Character, error) {
	c, err := scanCharacter(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get character: %w", err)
	}
	return c, nil
}

// Update merges the non-nil fields of upd into the stored character in a single statement.
func (r *CharacterRepository) Update(ctx context.Context, id string, upd model.CharacterUpdate) (*model.Character, error) {
	query := `
		UPDATE characters SET
			name = COALESCE($2, name),
			class = COALESCE($3, class),
			level = COALESCE($4, level),
			health = COALESCE($5, health),
			max_health = COALESCE($6, max_health),
			strength = COALESCE($7, strength),
			dexterity = COALESCE($8, dexterity),
			constitution = COALESCE($9, constitution),
			intelligence = COALESCE($10, intelligence),
			wisdom = COALESCE($11, wisdom),
			charisma = COALESCE($12, charisma),
			experience = COALESCE($13, experience),
			proficiency_bonus = COALESCE($14, proficiency_bonus)
		WHERE id = $1
		RETURNING ` + characterColumns

	c, err := scanCharacter(r.db.QueryRow(ctx, query, id,
		upd.Name, upd.Class, upd.Level, upd.Health, upd.MaxHealth,
		upd.Strength, upd.Dexterity, upd.Constitution, upd.Intelligence, upd.Wisdom, upd.Charisma,
		upd.Experience, upd.ProficiencyBonus,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update character: %w", err)
	}
	return c, nil
}
