// Package progression implements the experience and level rules for characters.
// Everything here is pure: no I/O, no clocks, no randomness.
package progression

import (
	"math"
	"strings"
)

const (
	// MinLevel is the level every character starts at.
	MinLevel = 1
	// MaxLevel is the experience cap level.
	MaxLevel = 20
	// MaxExperience is the largest experience total a character can hold.
	// It matches the INTEGER experience column.
	MaxExperience = math.MaxInt32
)

// thresholds[i] is the minimum cumulative experience for level i+1.
var thresholds = [MaxLevel]int{
	0, 300, 900, 2700, 6500, 14000, 23000, 34000, 48000, 64000,
	85000, 100000, 120000, 140000, 165000, 195000, 225000, 265000, 305000, 355000,
}

// ExperienceThresholds returns a copy of the level threshold table.
func ExperienceThresholds() []int {
	out := make([]int, len(thresholds))
	copy(out, thresholds[:])
	return out
}

// CanAward reports whether amount can be added to experience without passing
// MaxExperience.
func CanAward(experience, amount int) bool {
	return amount > 0 && amount <= MaxExperience && experience <= MaxExperience-amount
}

// ThresholdForLevel returns the experience needed to reach level.
// Levels outside 1..20 are clamped.
func ThresholdForLevel(level int) int {
	return thresholds[clampLevel(level)-1]
}

// LevelFromExperience returns the highest level whose threshold experience reaches.
// Negative input is treated as zero experience.
func LevelFromExperience(experience int) int {
	level := MinLevel
	for i := MaxLevel - 1; i >= 0; i-- {
		if experience >= thresholds[i] {
			level = i + 1
			break
		}
	}
	return level
}

// ProficiencyBonusFromLevel returns the proficiency bonus for a level:
// +2 at 1-4, +3 at 5-8, +4 at 9-12, +5 at 13-16, +6 at 17-20.
func ProficiencyBonusFromLevel(level int) int {
	return 2 + (clampLevel(level)-1)/4
}

// ExperienceToNextLevel returns how much experience is missing for the next level,
// or 0 once the character sits at the cap.
func ExperienceToNextLevel(experience int) int {
	level := LevelFromExperience(experience)
	if level >= MaxLevel {
		return 0
	}
	return thresholds[level] - experience
}

// LevelProgressPercent returns how far experience has progressed through the
// current level, from 0 to 100. At the cap it is always 100.
func LevelProgressPercent(experience int) float64 {
	level := LevelFromExperience(experience)
	if level >= MaxLevel {
		return 100
	}
	floor := thresholds[level-1]
	span := thresholds[level] - floor
	return float64(experience-floor) / float64(span) * 100
}

func clampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// DefaultHitDie is used for classes missing from the hit die table.
const DefaultHitDie = 8

var hitDice = map[string]int{
	"barbarian": 12,
	"fighter":   10,
	"paladin":   10,
	"ranger":    10,
	"bard":      8,
	"cleric":    8,
	"druid":     8,
	"monk":      8,
	"rogue":     8,
	"warlock":   8,
	"sorcerer":  6,
	"wizard":    6,
}

// HitDie returns the hit die size for a class name (case-insensitive).
func HitDie(class string) int {
	if die, ok := hitDice[strings.ToLower(strings.TrimSpace(class))]; ok {
		return die
	}
	return DefaultHitDie
}

// AbilityModifier returns floor((score-10)/2).
func AbilityModifier(score int) int {
	delta := score - 10
	if delta < 0 {
		return (delta - 1) / 2
	}
	return delta / 2
}

// HitPointGain returns the hit points gained per level:
// floor(hitDie/2) + 1 + constitution modifier, never less than 1.
func HitPointGain(class string, constitution int) int {
	gain := HitDie(class)/2 + 1 + AbilityModifier(constitution)
	if gain < 1 {
		return 1
	}
	return gain
}
