package model

import (
	"strconv"
	"strings"
	"time"
)

// InventoryItem is something a character carries.
type InventoryItem struct {
	ID          string          `db:"id" json:"id"`
	CharacterID string          `db:"character_id" json:"characterId"`
	ItemName    string          `db:"item_name" json:"itemName"`
	ItemType    string          `db:"item_type" json:"itemType"`
	Quantity    int             `db:"quantity" json:"quantity"`
	Description *string         `db:"description" json:"description,omitempty"`
	Properties  *ItemProperties `db:"properties" json:"properties,omitempty"`
}

// ItemProperties holds the known stat fields of an item.
type ItemProperties struct {
	Damage     string `json:"damage,omitempty"`
	ArmorClass int    `json:"armorClass,omitempty"`
	Effect     string `json:"effect,omitempty"`
	Value      int    `json:"value,omitempty"`
}

// InventoryUpdate is a partial update of an inventory item.
type InventoryUpdate struct {
	ItemName    *string         `json:"itemName,omitempty"`
	ItemType    *string         `json:"itemType,omitempty"`
	Quantity    *int            `json:"quantity,omitempty"`
	Description *string         `json:"description,omitempty"`
	Properties  *ItemProperties `json:"properties,omitempty"`
}

// Apply merges the non-nil fields of u into item.
func (u InventoryUpdate) Apply(item *InventoryItem) {
	setString(&item.ItemName, u.ItemName)
	setString(&item.ItemType, u.ItemType)
	setInt(&item.Quantity, u.Quantity)
	if u.Description != nil {
		item.Description = u.Description
	}
	if u.Properties != nil {
		item.Properties = u.Properties
	}
}

// DiceRoll is a stored dice roll.
type DiceRoll struct {
	ID          string    `db:"id" json:"id"`
	SessionID   string    `db:"session_id" json:"sessionId"`
	CharacterID string    `db:"character_id" json:"characterId"`
	DiceType    string    `db:"dice_type" json:"diceType"`
	Result      int       `db:"result" json:"result"`
	Modifier    int       `db:"modifier" json:"modifier"`
	Purpose     *string   `db:"purpose" json:"purpose,omitempty"`
	Timestamp   time.Time `db:"timestamp" json:"timestamp"`
}

// Total returns the roll result plus its modifier.
func (r *DiceRoll) Total() int {
	return r.Result + r.Modifier
}

// DiceTypes returns the supported dice.
func DiceTypes() []string {
	return []string{"d4", "d6", "d8", "d10", "d12", "d20"}
}

// DiceSides returns the number of faces for a dice type such as "d20".
func DiceSides(diceType string) (int, bool) {
	for _, t := range DiceTypes() {
		if t == diceType {
			sides, err := strconv.Atoi(strings.TrimPrefix(diceType, "d"))
			return sides, err == nil
		}
	}
	return 0, false
}

// GameState is everything the client needs to render a session.
type GameState struct {
	Character   *Character       `json:"character"`
	Session     *GameSession     `json:"session"`
	Messages    []*Message       `json:"messages"`
	Inventory   []*InventoryItem `json:"inventory"`
	IsInCombat  bool             `json:"isInCombat"`
	CombatRound *int             `json:"combatRound,omitempty"`
}
