package model

// DefaultClassFeatures is the built-in feature catalog loaded by the seed-features command.
// Order within a class and level is the order features are granted.
func DefaultClassFeatures() []*ClassFeature {
	return []*ClassFeature{
		{ClassName: ClassFighter, Level: 1, FeatureName: "Fighting Style", Description: "Choose a specialized combat technique", FeatureType: FeatureTypeAbility},
		{ClassName: ClassFighter, Level: 1, FeatureName: "Second Wind", Description: "Regain hit points as a bonus action", FeatureType: FeatureTypeAbility},
		{ClassName: ClassFighter, Level: 2, FeatureName: "Action Surge", Description: "Take an additional action on your turn", FeatureType: FeatureTypeAbility},
		{ClassName: ClassFighter, Level: 3, FeatureName: "Martial Archetype", Description: "Choose your fighter specialization", FeatureType: FeatureTypeAbility},
		{ClassName: ClassFighter, Level: 4, FeatureName: "Ability Score Improvement", Description: "Increase ability scores or take a feat", FeatureType: FeatureTypeImprovement},

		{ClassName: ClassWizard, Level: 1, FeatureName: "Spellcasting", Description: "Cast wizard spells using spell slots", FeatureType: FeatureTypeSpell},
		{ClassName: ClassWizard, Level: 1, FeatureName: "Arcane Recovery", Description: "Recover expended spell slots during a short rest", FeatureType: FeatureTypeAbility},
		{ClassName: ClassWizard, Level: 2, FeatureName: "Arcane Tradition", Description: "Choose your magical specialization", FeatureType: FeatureTypeAbility},
		{ClassName: ClassWizard, Level: 4, FeatureName: "Ability Score Improvement", Description: "Increase ability scores or take a feat", FeatureType: FeatureTypeImprovement},

		{ClassName: ClassRogue, Level: 1, FeatureName: "Expertise", Description: "Double proficiency bonus for chosen skills", FeatureType: FeatureTypeProficiency},
		{ClassName: ClassRogue, Level: 1, FeatureName: "Sneak Attack", Description: "Deal extra damage when conditions are met", FeatureType: FeatureTypeAbility},
		{ClassName: ClassRogue, Level: 1, FeatureName: "Thieves' Cant", Description: "Secret language known by rogues", FeatureType: FeatureTypeProficiency},
		{ClassName: ClassRogue, Level: 2, FeatureName: "Cunning Action", Description: "Dash, Disengage, or Hide as bonus action", FeatureType: FeatureTypeAbility},
		{ClassName: ClassRogue, Level: 3, FeatureName: "Roguish Archetype", Description: "Choose your rogue specialization", FeatureType: FeatureTypeAbility},

		{ClassName: ClassCleric, Level: 1, FeatureName: "Spellcasting", Description: "Cast cleric spells using spell slots", FeatureType: FeatureTypeSpell},
		{ClassName: ClassCleric, Level: 1, FeatureName: "Divine Domain", Description: "Choose your divine specialization", FeatureType: FeatureTypeAbility},
		{ClassName: ClassCleric, Level: 2, FeatureName: "Channel Divinity", Description: "Harness divine energy for special effects", FeatureType: FeatureTypeAbility},
		{ClassName: ClassCleric, Level: 4, FeatureName: "Ability Score Improvement", Description: "Increase ability scores or take a feat", FeatureType: FeatureTypeImprovement},
	}
}
