// Package narrator is the AI Dungeon Master collaborator: given the state of a
// session and a player action it returns a structured narrative turn.
package narrator

//go:generate mockgen -destination=mock/mock_narrator.go -package=mocknarrator -source=narrator.go

import (
	"context"
	"errors"

	"dungeon-master/internal/model"
)

// ErrUnavailable is returned when the narrator cannot produce a turn.
var ErrUnavailable = errors.New("narrator unavailable")

// Narrator generates adventure openings and Dungeon Master turns.
type Narrator interface {
	InitialScene(ctx context.Context, req SceneRequest) (*Scene, error)
	Respond(ctx context.Context, gc Context, action string, roll *model.DiceRollResult) (*Response, error)
}

// SceneRequest describes the adventure to open.
type SceneRequest struct {
	CharacterName  string
	CharacterClass string
	AdventureType  string
}

// Scene is a freshly generated adventure opening.
type Scene struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Scene       string `json:"scene"`
}

// Context is everything the narrator sees when responding.
type Context struct {
	Character      *model.Character
	SessionTitle   string
	CurrentScene   string
	RecentMessages []*model.Message
	SessionContext []*model.SessionContext
}

// MemoryUpdate is a fact the narrator wants remembered for the session.
type MemoryUpdate struct {
	Type       model.ContextType `json:"type"`
	Key        string            `json:"key"`
	Value      string            `json:"value"`
	Importance int               `json:"importance"`
}

// Response is one Dungeon Master turn.
type Response struct {
	Content           string                 `json:"content"`
	RequiresDiceRoll  bool                   `json:"requiresDiceRoll"`
	DiceType          string                 `json:"diceType,omitempty"`
	SkillCheck        string                 `json:"skillCheck,omitempty"`
	CombatAction      bool                   `json:"combatAction"`
	SceneUpdate       string                 `json:"sceneUpdate,omitempty"`
	MemoryUpdates     []MemoryUpdate         `json:"memoryUpdates"`
	ExperienceAwarded int                    `json:"experienceAwarded"`
	ExperienceReason  string                 `json:"experienceReason,omitempty"`
	ExperienceSource  model.ExperienceSource `json:"experienceSource,omitempty"`
}

// Metadata returns the structured extras stored with the DM message.
func (r *Response) Metadata() *model.MessageMetadata {
	return &model.MessageMetadata{
		RequiresDiceRoll: r.RequiresDiceRoll,
		DiceType:         r.DiceType,
		SkillCheck:       r.SkillCheck,
		CombatAction:     r.CombatAction,
	}
}

// Fallback texts used when the model omits a field.
const (
	defaultContent     = "The dungeon master ponders your action..."
	defaultTitle       = "The Mysterious Adventure"
	defaultDescription = "A new adventure begins..."
	defaultScene       = "You find yourself at the beginning of a grand adventure. What would you like to do?"
)
