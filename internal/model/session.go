package model

import "time"

// GameSession is one adventure run by the Dungeon Master for a character.
type GameSession struct {
	ID           string    `db:"id" json:"id"`
	CharacterID  string    `db:"character_id" json:"characterId"`
	Title        string    `db:"title" json:"title"`
	Description  *string   `db:"description" json:"description,omitempty"`
	CurrentScene *string   `db:"current_scene" json:"currentScene,omitempty"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Message senders.
const (
	SenderPlayer = "player"
	SenderDM     = "dm"
	SenderSystem = "system"
)

// Message types.
const (
	MessageTypeText     = "text"
	MessageTypeDiceRoll = "dice_roll"
	MessageTypeCombat   = "combat"
)

// Message is one chat line in a session.
type Message struct {
	ID          string           `db:"id" json:"id"`
	SessionID   string           `db:"session_id" json:"sessionId"`
	Sender      string           `db:"sender" json:"sender"`
	Content     string           `db:"content" json:"content"`
	MessageType string           `db:"message_type" json:"messageType"`
	Metadata    *MessageMetadata `db:"metadata" json:"metadata,omitempty"`
	Timestamp   time.Time        `db:"timestamp" json:"timestamp"`
}

// MessageMetadata carries the structured extras attached to DM and dice messages.
type MessageMetadata struct {
	RequiresDiceRoll bool            `json:"requiresDiceRoll,omitempty"`
	DiceType         string          `json:"diceType,omitempty"`
	SkillCheck       string          `json:"skillCheck,omitempty"`
	CombatAction     bool            `json:"combatAction,omitempty"`
	DiceRoll         *DiceRollResult `json:"diceRoll,omitempty"`
}

// DiceRollResult is the dice outcome a player attaches to an action.
type DiceRollResult struct {
	Type     string `json:"type"`
	Result   int    `json:"result"`
	Modifier int    `json:"modifier"`
}

// Total returns the roll result plus its modifier.
func (r DiceRollResult) Total() int {
	return r.Result + r.Modifier
}

// IsValidSender reports whether s is a known message sender.
func IsValidSender(s string) bool {
	return s == SenderPlayer || s == SenderDM || s == SenderSystem
}

// IsValidMessageType reports whether t is a known message type.
func IsValidMessageType(t string) bool {
	return t == MessageTypeText || t == MessageTypeDiceRoll || t == MessageTypeCombat
}

// Context types tracked per session for the narrator.
type ContextType string

const (
	ContextCharacterMemory ContextType = "character_memory"
	ContextWorldState      ContextType = "world_state"
	ContextPlotThreads     ContextType = "plot_threads"
	ContextRelationships   ContextType = "relationships"
)

// Valid reports whether t is a known context type.
func (t ContextType) Valid() bool {
	switch t {
	case ContextCharacterMemory, ContextWorldState, ContextPlotThreads, ContextRelationships:
		return true
	}
	return false
}

// SessionContext is a remembered fact the narrator should stay consistent with.
type SessionContext struct {
	ID           string      `db:"id" json:"id"`
	SessionID    string      `db:"session_id" json:"sessionId"`
	ContextType  ContextType `db:"context_type" json:"contextType"`
	ContextKey   string      `db:"context_key" json:"contextKey"`
	ContextValue string      `db:"context_value" json:"contextValue"`
	Importance   int         `db:"importance" json:"importance"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updatedAt"`
}
