package progression

import (
	"fmt"
	"strings"
)

// LevelUpPolicy decides how an award that crosses several thresholds is recorded.
type LevelUpPolicy string

const (
	// PolicyPerLevel records one step per crossed threshold. Hit points
	// compound and every intermediate level's features are granted.
	PolicyPerLevel LevelUpPolicy = "per_level"
	// PolicySingle records one step from the old level straight to the new one,
	// with a single hit point gain and only the final level's features.
	PolicySingle LevelUpPolicy = "single"
)

// ParsePolicy parses a configured policy name. Empty means PolicyPerLevel.
func ParsePolicy(s string) (LevelUpPolicy, error) {
	switch LevelUpPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyPerLevel:
		return PolicyPerLevel, nil
	case PolicySingle:
		return PolicySingle, nil
	default:
		return "", fmt.Errorf("unknown level up policy %q", s)
	}
}

// State is the slice of a character the rules need.
type State struct {
	Class        string
	Constitution int
	Experience   int
	Health       int
	MaxHealth    int
}

// Step is one recorded level transition.
type Step struct {
	PreviousLevel int
	NewLevel      int
	HitPoints     int
}

// Advancement is the outcome of applying an experience award to a State.
type Advancement struct {
	PreviousExperience int
	NewExperience      int
	PreviousLevel      int
	NewLevel           int
	ProficiencyBonus   int
	HitPointsGained    int
	Health             int
	MaxHealth          int
	Steps              []Step
}

// LeveledUp reports whether the award crossed at least one threshold.
func (a Advancement) LeveledUp() bool {
	return a.NewLevel > a.PreviousLevel
}

// Advance applies amount experience to s. The current level is derived from the
// stored experience, not trusted from the caller.
func Advance(s State, amount int, policy LevelUpPolicy) Advancement {
	newExperience := s.Experience + amount
	current := LevelFromExperience(s.Experience)
	next := LevelFromExperience(newExperience)

	adv := Advancement{
		PreviousExperience: s.Experience,
		NewExperience:      newExperience,
		PreviousLevel:      current,
		NewLevel:           next,
		ProficiencyBonus:   ProficiencyBonusFromLevel(next),
		Health:             s.Health,
		MaxHealth:          s.MaxHealth,
	}
	if next <= current {
		return adv
	}

	perLevel := HitPointGain(s.Class, s.Constitution)
	if policy == PolicySingle {
		adv.Steps = []Step{{PreviousLevel: current, NewLevel: next, HitPoints: perLevel}}
	} else {
		adv.Steps = make([]Step, 0, next-current)
		for lvl := current + 1; lvl <= next; lvl++ {
			adv.Steps = append(adv.Steps, Step{PreviousLevel: lvl - 1, NewLevel: lvl, HitPoints: perLevel})
		}
	}

	for _, step := range adv.Steps {
		adv.HitPointsGained += step.HitPoints
	}
	adv.MaxHealth += adv.HitPointsGained
	adv.Health += adv.HitPointsGained
	if adv.Health > adv.MaxHealth {
		adv.Health = adv.MaxHealth
	}
	return adv
}
