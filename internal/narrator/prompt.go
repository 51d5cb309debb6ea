package narrator

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"dungeon-master/internal/model"
	"dungeon-master/internal/progression"
)

const (
	maxPromptContext  = 15
	defaultImportance = 5
)

func sceneSystemPrompt(req SceneRequest) string {
	return fmt.Sprintf(`You are a creative Dungeon Master creating the opening scene for a new D&D adventure.

Create an engaging opening scenario for a Level 1 %s named %s.

Generate a %s adventure that:
- Has an intriguing hook to draw the player in
- Presents clear initial choices
- Sets up potential for ongoing adventure
- Includes atmospheric details and sensory descriptions

Respond in JSON format with:
- title: Adventure title (3-6 words)
- description: One sentence adventure summary
- scene: 2-3 paragraph opening scene description that ends with asking what the player wants to do`,
		req.CharacterClass, req.CharacterName, req.AdventureType)
}

func sceneUserPrompt(req SceneRequest) string {
	return fmt.Sprintf("Create an opening adventure for %s the %s", req.CharacterName, req.CharacterClass)
}

func respondSystemPrompt(gc Context) string {
	c := gc.Character

	var b strings.Builder
	b.WriteString("You are an expert Dungeon Master running a Dungeons & Dragons adventure. ")
	b.WriteString("You are creative, engaging, and maintain story consistency using persistent memory.\n\n")
	fmt.Fprintf(&b, "Character: %s, Level %d %s\n", c.Name, c.Level, c.Class)
	fmt.Fprintf(&b, "Stats: STR %d, DEX %d, CON %d, INT %d, WIS %d, CHA %d\n\n",
		c.Strength, c.Dexterity, c.Constitution, c.Intelligence, c.Wisdom, c.Charisma)
	fmt.Fprintf(&b, "Current Scene: %s\n", gc.CurrentScene)
	fmt.Fprintf(&b, "Adventure: %s\n", gc.SessionTitle)

	if len(gc.SessionContext) > 0 {
		b.WriteString("\nSession Context (current world state):\n")
		for i, sc := range gc.SessionContext {
			if i == maxPromptContext {
				break
			}
			fmt.Fprintf(&b, "- %s: %s (%s, importance: %d)\n", sc.ContextKey, sc.ContextValue, sc.ContextType, sc.Importance)
		}
	}

	b.WriteString(`
Guidelines:
- Use session context to maintain consistency
- Reference past events and relationships naturally in your responses
- Respond to player actions with vivid, atmospheric descriptions
- Request dice rolls when appropriate for skill checks, attacks, or saves
- Progress the narrative based on player choices and established context
- Keep responses between 1-3 paragraphs
- When something significant happens, note it for future memory
- Award experience points for meaningful player actions and achievements

Experience Guidelines:
- Combat encounters: 50-200 XP based on difficulty and creativity (source: combat)
- Solving puzzles/challenges: 25-100 XP (source: puzzle)
- Good roleplay and character development: 10-50 XP (source: roleplay)
- Discovering important information: 25-75 XP (source: discovery)
- Completing objectives: 100-300 XP (source: quest_completion)
- Social interactions and relationship building: 15-60 XP (source: social)

Respond in JSON format with these fields:
- content: Your narrative response
- requiresDiceRoll: boolean (true if player needs to roll dice)
- diceType: string (d4, d6, d8, d10, d12 or d20 if dice roll required)
- skillCheck: string (what skill/ability is being checked)
- combatAction: boolean (true if this initiates combat)
- sceneUpdate: string (brief description of current scene for context)
- memoryUpdates: array of objects with {type, key, value, importance}; type is one of character_memory, world_state, plot_threads, relationships; importance 1-10
- experienceAwarded: number (XP points earned, 0 if none)
- experienceReason: string (why XP was awarded, if any)
- experienceSource: string (one of combat, roleplay, quest_completion, discovery, puzzle, social)`)

	return b.String()
}

func respondUserPrompt(gc Context, action string, roll *model.DiceRollResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Player Action: %s\n\nRecent conversation:\n", action)
	for _, m := range gc.RecentMessages {
		fmt.Fprintf(&b, "%s: %s\n", m.Sender, m.Content)
	}
	if roll != nil {
		fmt.Fprintf(&b, "\nDice Roll Result: %s", formatRoll(*roll))
	}
	return b.String()
}

// formatRoll renders "d20 rolled 14 + 3 = 17".
func formatRoll(r model.DiceRollResult) string {
	switch {
	case r.Modifier > 0:
		return fmt.Sprintf("%s rolled %d + %d = %d", r.Type, r.Result, r.Modifier, r.Total())
	case r.Modifier < 0:
		return fmt.Sprintf("%s rolled %d - %d = %d", r.Type, r.Result, -r.Modifier, r.Total())
	default:
		return fmt.Sprintf("%s rolled %d = %d", r.Type, r.Result, r.Total())
	}
}

// rawResponse is the model's JSON, which is loosely typed in practice.
type rawResponse struct {
	Content           string      `json:"content"`
	RequiresDiceRoll  bool        `json:"requiresDiceRoll"`
	DiceType          string      `json:"diceType"`
	SkillCheck        string      `json:"skillCheck"`
	CombatAction      bool        `json:"combatAction"`
	SceneUpdate       string      `json:"sceneUpdate"`
	MemoryUpdates     []rawMemory `json:"memoryUpdates"`
	ExperienceAwarded float64     `json:"experienceAwarded"`
	ExperienceReason  string      `json:"experienceReason"`
	ExperienceSource  string      `json:"experienceSource"`
}

type rawMemory struct {
	Type       string          `json:"type"`
	Key        string          `json:"key"`
	Value      json.RawMessage `json:"value"`
	Importance float64         `json:"importance"`
}

// parseResponse decodes a model reply and fills every field the game relies on.
func parseResponse(content string, gc Context) (*Response, error) {
	var raw rawResponse
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode narrator reply: %w", err)
	}

	resp := &Response{
		Content:          strings.TrimSpace(raw.Content),
		RequiresDiceRoll: raw.RequiresDiceRoll,
		DiceType:         raw.DiceType,
		SkillCheck:       raw.SkillCheck,
		CombatAction:     raw.CombatAction,
		SceneUpdate:      strings.TrimSpace(raw.SceneUpdate),
		ExperienceReason: raw.ExperienceReason,
		MemoryUpdates:    []MemoryUpdate{},
	}
	if resp.Content == "" {
		resp.Content = defaultContent
	}
	if resp.SceneUpdate == "" {
		resp.SceneUpdate = gc.CurrentScene
	}
	if resp.RequiresDiceRoll {
		if _, ok := model.DiceSides(resp.DiceType); !ok {
			resp.DiceType = "d20"
		}
	} else {
		resp.DiceType = ""
	}

	for _, m := range raw.MemoryUpdates {
		ct := model.ContextType(m.Type)
		if !ct.Valid() || strings.TrimSpace(m.Key) == "" {
			continue
		}
		resp.MemoryUpdates = append(resp.MemoryUpdates, MemoryUpdate{
			Type:       ct,
			Key:        strings.TrimSpace(m.Key),
			Value:      memoryValue(m.Value),
			Importance: clampImportance(m.Importance),
		})
	}

	if xp := math.Round(min(raw.ExperienceAwarded, progression.MaxExperience)); xp > 0 {
		resp.ExperienceAwarded = int(xp)
		resp.ExperienceSource = experienceSource(raw.ExperienceSource, raw.CombatAction)
	}

	return resp, nil
}

func parseScene(content string) (*Scene, error) {
	var s Scene
	if err := json.Unmarshal([]byte(content), &s); err != nil {
		return nil, fmt.Errorf("failed to decode scene: %w", err)
	}
	if strings.TrimSpace(s.Title) == "" {
		s.Title = defaultTitle
	}
	if strings.TrimSpace(s.Description) == "" {
		s.Description = defaultDescription
	}
	if strings.TrimSpace(s.Scene) == "" {
		s.Scene = defaultScene
	}
	return &s, nil
}

// memoryValue flattens a JSON value to text. Strings are unquoted; anything else keeps its JSON form.
func memoryValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func clampImportance(v float64) int {
	i := int(math.Round(v))
	if i == 0 {
		return defaultImportance
	}
	return min(max(i, 1), 10)
}

func experienceSource(s string, combat bool) model.ExperienceSource {
	if src := model.ExperienceSource(strings.ToLower(strings.TrimSpace(s))); src.Valid() {
		return src
	}
	if combat {
		return model.SourceCombat
	}
	return model.SourceRoleplay
}
