package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestExperienceThresholds(t *testing.T) {
	table := ExperienceThresholds()
	require.Len(t, table, MaxLevel)
	assert.Equal(t, 0, table[0])
	for i := 1; i < len(table); i++ {
		assert.Greater(t, table[i], table[i-1], "thresholds must be strictly increasing at index %d", i)
	}

	// Mutating the copy must not leak into the rules.
	table[1] = 1
	assert.Equal(t, 300, ThresholdForLevel(2))
}

func TestLevelFromExperience(t *testing.T) {
	tests := []struct {
		name       string
		experience int
		expected   int
	}{
		{"zero", 0, 1},
		{"negative treated as zero", -50, 1},
		{"just below level 2", 299, 1},
		{"exactly level 2", 300, 2},
		{"level 3", 900, 3},
		{"mid level 4", 3000, 4},
		{"level 5", 6500, 5},
		{"level 11", 85000, 11},
		{"just below cap", 354999, 19},
		{"cap", 355000, 20},
		{"beyond cap", 10000000, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LevelFromExperience(tt.experience))
		})
	}
}

func TestProficiencyBonusFromLevel(t *testing.T) {
	expected := map[int]int{
		1: 2, 4: 2, 5: 3, 8: 3, 9: 4, 12: 4, 13: 5, 16: 5, 17: 6, 20: 6,
		0: 2, 25: 6,
	}
	for level, bonus := range expected {
		assert.Equal(t, bonus, ProficiencyBonusFromLevel(level), "level %d", level)
	}
}

func TestExperienceToNextLevel(t *testing.T) {
	assert.Equal(t, 300, ExperienceToNextLevel(0))
	assert.Equal(t, 1, ExperienceToNextLevel(299))
	assert.Equal(t, 600, ExperienceToNextLevel(300))
	assert.Equal(t, 5000, ExperienceToNextLevel(350000))
	assert.Equal(t, 0, ExperienceToNextLevel(355000))
	assert.Equal(t, 0, ExperienceToNextLevel(999999))
}

func TestCanAward(t *testing.T) {
	assert.True(t, CanAward(0, 300))
	assert.True(t, CanAward(0, MaxExperience))
	assert.True(t, CanAward(MaxExperience-1, 1))
	assert.False(t, CanAward(0, 0))
	assert.False(t, CanAward(0, -5))
	assert.False(t, CanAward(0, MaxExperience+1))
	assert.False(t, CanAward(MaxExperience, 1))
	assert.False(t, CanAward(300, MaxExperience))
}

func TestLevelProgressPercent(t *testing.T) {
	assert.InDelta(t, 0, LevelProgressPercent(0), 0.001)
	assert.InDelta(t, 50, LevelProgressPercent(150), 0.001)
	assert.InDelta(t, 50, LevelProgressPercent(600), 0.001)
	assert.InDelta(t, 100, LevelProgressPercent(400000), 0.001)
}

func TestHitDie(t *testing.T) {
	tests := []struct {
		class    string
		expected int
	}{
		{"Barbarian", 12},
		{"Fighter", 10},
		{"fighter", 10},
		{"Paladin", 10},
		{"Ranger", 10},
		{"Cleric", 8},
		{"Rogue", 8},
		{"Wizard", 6},
		{"Sorcerer", 6},
		{"Artificer", DefaultHitDie},
		{"", DefaultHitDie},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			assert.Equal(t, tt.expected, HitDie(tt.class))
		})
	}
}

func TestAbilityModifier(t *testing.T) {
	expected := map[int]int{
		1: -5, 3: -4, 7: -2, 8: -1, 9: -1, 10: 0, 11: 0, 12: 1, 14: 2, 15: 2, 20: 5, 30: 10,
	}
	for score, mod := range expected {
		assert.Equal(t, mod, AbilityModifier(score), "score %d", score)
	}
}

func TestHitPointGain(t *testing.T) {
	tests := []struct {
		name         string
		class        string
		constitution int
		expected     int
	}{
		{"fighter con 14", "Fighter", 14, 8},
		{"fighter con 10", "Fighter", 10, 6},
		{"barbarian con 16", "Barbarian", 16, 10},
		{"wizard con 10", "Wizard", 10, 4},
		{"wizard con 3 floored at one", "Wizard", 3, 1},
		{"wizard con 1 floored at one", "Wizard", 1, 1},
		{"unknown class con 12", "Artificer", 12, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HitPointGain(tt.class, tt.constitution))
		})
	}
}

func TestLevelMonotonicProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.IntRange(0, 500000).Draw(t, "a")
		b := rapid.IntRange(0, 500000).Draw(t, "b")
		if a > b {
			a, b = b, a
		}

		la, lb := LevelFromExperience(a), LevelFromExperience(b)
		if la > lb {
			t.Fatalf("level not monotonic: level(%d)=%d > level(%d)=%d", a, la, b, lb)
		}
		if la < MinLevel || lb > MaxLevel {
			t.Fatalf("level out of range: %d, %d", la, lb)
		}
		if a < ThresholdForLevel(la) {
			t.Fatalf("experience %d below threshold of its level %d", a, la)
		}
		if la < MaxLevel && a >= ThresholdForLevel(la+1) {
			t.Fatalf("experience %d reaches level %d but was assigned %d", a, la+1, la)
		}
	})
}

func TestProficiencyNonDecreasingProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		l := rapid.IntRange(MinLevel, MaxLevel-1).Draw(t, "level")
		if ProficiencyBonusFromLevel(l) > ProficiencyBonusFromLevel(l+1) {
			t.Fatalf("proficiency decreases between level %d and %d", l, l+1)
		}
	})
}

func TestHitPointGainAtLeastOneProperty(t *testing.T) {
	classes := []string{"Barbarian", "Fighter", "Wizard", "Rogue", "Unknown"}
	rapid.Check(t, func(t *rapid.T) {
		class := rapid.SampledFrom(classes).Draw(t, "class")
		con := rapid.IntRange(1, 30).Draw(t, "constitution")
		if gain := HitPointGain(class, con); gain < 1 {
			t.Fatalf("hit point gain %d < 1 for %s con %d", gain, class, con)
		}
	})
}
