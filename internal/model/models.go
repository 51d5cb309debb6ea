// Package model defines the data models for the AI Dungeon Master service.
package model

import (
	"strings"
	"time"
)

// Character represents a player's persona.
// Experience only ever grows; level, proficiency bonus and the health pair are
// maintained by the progression engine.
type Character struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Class            string    `db:"class" json:"class"`
	Level            int       `db:"level" json:"level"`
	Health           int       `db:"health" json:"health"`
	MaxHealth        int       `db:"max_health" json:"maxHealth"`
	Strength         int       `db:"strength" json:"strength"`
	Dexterity        int       `db:"dexterity" json:"dexterity"`
	Constitution     int       `db:"constitution" json:"constitution"`
	Intelligence     int       `db:"intelligence" json:"intelligence"`
	Wisdom           int       `db:"wisdom" json:"wisdom"`
	Charisma         int       `db:"charisma" json:"charisma"`
	Experience       int       `db:"experience" json:"experience"`
	ProficiencyBonus int       `db:"proficiency_bonus" json:"proficiencyBonus"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
}

// CharacterUpdate is a partial update of a character. Nil fields are left untouched.
type CharacterUpdate struct {
	Name             *string `json:"name,omitempty"`
	Class            *string `json:"class,omitempty"`
	Level            *int    `json:"level,omitempty"`
	Health           *int    `json:"health,omitempty"`
	MaxHealth        *int    `json:"maxHealth,omitempty"`
	Strength         *int    `json:"strength,omitempty"`
	Dexterity        *int    `json:"dexterity,omitempty"`
	Constitution     *int    `json:"constitution,omitempty"`
	Intelligence     *int    `json:"intelligence,omitempty"`
	Wisdom           *int    `json:"wisdom,omitempty"`
	Charisma         *int    `json:"charisma,omitempty"`
	Experience       *int    `json:"experience,omitempty"`
	ProficiencyBonus *int    `json:"proficiencyBonus,omitempty"`
}

// Apply merges the non-nil fields of u into c.
func (u CharacterUpdate) Apply(c *Character) {
	setString(&c.Name, u.Name)
	setString(&c.Class, u.Class)
	setInt(&c.Level, u.Level)
	setInt(&c.Health, u.Health)
	setInt(&c.MaxHealth, u.MaxHealth)
	setInt(&c.Strength, u.Strength)
	setInt(&c.Dexterity, u.Dexterity)
	setInt(&c.Constitution, u.Constitution)
	setInt(&c.Intelligence, u.Intelligence)
	setInt(&c.Wisdom, u.Wisdom)
	setInt(&c.Charisma, u.Charisma)
	setInt(&c.Experience, u.Experience)
	setInt(&c.ProficiencyBonus, u.ProficiencyBonus)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// Character classes.
const (
	ClassBarbarian = "Barbarian"
	ClassBard      = "Bard"
	ClassCleric    = "Cleric"
	ClassDruid     = "Druid"
	ClassFighter   = "Fighter"
	ClassMonk      = "Monk"
	ClassPaladin   = "Paladin"
	ClassRanger    = "Ranger"
	ClassRogue     = "Rogue"
	ClassSorcerer  = "Sorcerer"
	ClassWarlock   = "Warlock"
	ClassWizard    = "Wizard"
)

// Classes returns every playable class name.
func Classes() []string {
	return []string{
		ClassBarbarian, ClassBard, ClassCleric, ClassDruid, ClassFighter, ClassMonk,
		ClassPaladin, ClassRanger, ClassRogue, ClassSorcerer, ClassWarlock, ClassWizard,
	}
}

// CanonicalClass returns the canonical spelling of a class name and whether it is playable.
func CanonicalClass(name string) (string, bool) {
	for _, c := range Classes() {
		if strings.EqualFold(c, strings.TrimSpace(name)) {
			return c, true
		}
	}
	return "", false
}

// ExperienceSource categorizes an experience award.
type ExperienceSource string

// Experience sources.
const (
	SourceCombat          ExperienceSource = "combat"
	SourceRoleplay        ExperienceSource = "roleplay"
	SourceQuestCompletion ExperienceSource = "quest_completion"
	SourceDiscovery       ExperienceSource = "discovery"
	SourcePuzzle          ExperienceSource = "puzzle"
	SourceSocial          ExperienceSource = "social"
)

// ExperienceSources returns all accepted experience sources.
func ExperienceSources() []ExperienceSource {
	return []ExperienceSource{
		SourceCombat, SourceRoleplay, SourceQuestCompletion,
		SourceDiscovery, SourcePuzzle, SourceSocial,
	}
}

// Valid reports whether s is one of the known experience sources.
func (s ExperienceSource) Valid() bool {
	for _, known := range ExperienceSources() {
		if s == known {
			return true
		}
	}
	return false
}

// ProgressionEvent records a single experience award.
type ProgressionEvent struct {
	ID               int64            `db:"id" json:"id"`
	CharacterID      string           `db:"character_id" json:"characterId"`
	ExperienceGained int              `db:"experience_gained" json:"experienceGained"`
	Source           ExperienceSource `db:"experience_source" json:"experienceSource"`
	Description      *string          `db:"description" json:"description,omitempty"`
	SessionID        *string          `db:"session_id" json:"sessionId,omitempty"`
	CreatedAt        time.Time        `db:"created_at" json:"createdAt"`
}

// LevelUpEvent records a level transition and what it granted.
type LevelUpEvent struct {
	ID              int64     `db:"id" json:"id"`
	CharacterID     string    `db:"character_id" json:"characterId"`
	PreviousLevel   int       `db:"previous_level" json:"previousLevel"`
	NewLevel        int       `db:"new_level" json:"newLevel"`
	HitPointsGained int       `db:"hit_points_gained" json:"hitPointsGained"`
	FeaturesGained  []string  `db:"features_gained" json:"featuresGained"`
	SessionID       *string   `db:"session_id" json:"sessionId,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

// ClassFeature is a named ability unlocked at a class level.
type ClassFeature struct {
	ID          int64  `db:"id" json:"id"`
	ClassName   string `db:"class_name" json:"className"`
	Level       int    `db:"level" json:"level"`
	FeatureName string `db:"feature_name" json:"featureName"`
	Description string `db:"description" json:"description"`
	FeatureType string `db:"feature_type" json:"featureType"`
}

// Feature types.
const (
	FeatureTypeAbility     = "ability"
	FeatureTypeSpell       = "spell"
	FeatureTypeProficiency = "proficiency"
	FeatureTypeImprovement = "improvement"
)
