package narrator

import (
	"context"
	"fmt"
	"strings"

	"dungeon-master/internal/model"
)

// Offline-turn tuning.
const (
	offlineCheckDC         = 12
	offlineSuccessXP       = 25
	offlineCombatSuccessXP = 50
)

var (
	combatWords = []string{"attack", "strike", "stab", "shoot", "fight", "charge", "slash", "cast"}
	checkWords  = []string{
		"climb", "sneak", "hide", "search", "persuade", "pick", "jump", "listen", "investigate", "convince",
	}
)

// OfflineNarrator is a deterministic rules-only narrator used when no model is configured.
// It asks for a d20 on risky actions and awards a little experience for successful rolls.
type OfflineNarrator struct{}

// NewOfflineNarrator creates a new OfflineNarrator.
func NewOfflineNarrator() *OfflineNarrator {
	return &OfflineNarrator{}
}

// InitialScene implements Narrator.
func (OfflineNarrator) InitialScene(_ context.Context, req SceneRequest) (*Scene, error) {
	adventure := req.AdventureType
	if adventure == "" {
		adventure = "fantasy"
	}
	return &Scene{
		Title:       fmt.Sprintf("The %s's First Road", req.CharacterClass),
		Description: fmt.Sprintf("A %s adventure begins for %s.", adventure, req.CharacterName),
		Scene: fmt.Sprintf(
			"Rain drums on the roof of the Crooked Lantern as %s the %s shakes off the road. "+
				"A hooded stranger slides a sealed letter across the table and leaves without a word. "+
				"The innkeeper pretends not to have seen anything. What do you do?",
			req.CharacterName, req.CharacterClass),
	}, nil
}

// Respond implements Narrator.
func (OfflineNarrator) Respond(_ context.Context, gc Context, action string, roll *model.DiceRollResult) (*Response, error) {
	lower := strings.ToLower(action)
	combat := containsAny(lower, combatWords)

	resp := &Response{
		CombatAction:  combat,
		SceneUpdate:   gc.CurrentScene,
		MemoryUpdates: []MemoryUpdate{},
	}

	switch {
	case roll != nil && roll.Total() >= offlineCheckDC:
		resp.Content = fmt.Sprintf("Your roll of %d carries the moment. You %s, and it works.", roll.Total(), action)
		resp.ExperienceAwarded = offlineSuccessXP
		resp.ExperienceSource = model.SourceDiscovery
		if combat {
			resp.ExperienceAwarded = offlineCombatSuccessXP
			resp.ExperienceSource = model.SourceCombat
		}
		resp.ExperienceReason = fmt.Sprintf("Succeeded: %s", action)
	case roll != nil:
		resp.Content = fmt.Sprintf("A roll of %d falls short. You try to %s, but it doesn't go your way.", roll.Total(), action)
	case combat || containsAny(lower, checkWords):
		resp.Content = fmt.Sprintf("You prepare to %s. Fate hangs on a roll of the die.", action)
		resp.RequiresDiceRoll = true
		resp.DiceType = "d20"
		resp.SkillCheck = skillFor(lower, combat)
	default:
		resp.Content = fmt.Sprintf("You %s. The world waits to see what you do next.", action)
	}

	return resp, nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func skillFor(action string, combat bool) string {
	switch {
	case combat:
		return "Attack"
	case strings.Contains(action, "sneak"), strings.Contains(action, "hide"):
		return "Stealth"
	case strings.Contains(action, "climb"), strings.Contains(action, "jump"):
		return "Athletics"
	case strings.Contains(action, "persuade"), strings.Contains(action, "convince"):
		return "Persuasion"
	case strings.Contains(action, "pick"):
		return "Sleight of Hand"
	case strings.Contains(action, "listen"):
		return "Perception"
	default:
		return "Investigation"
	}
}
