package theme

// DefaultThemeName is the built-in theme. It is always registered.
const DefaultThemeName = "haunted"

// Builtin returns a fresh copy of the built-in haunted theme.
func Builtin() Config {
	return Config{
		Name: DefaultThemeName,
		Vocabulary: &Vocabulary{
			Verbs:      []string{"summoned", "conjured", "exorcised", "awakened", "banished", "cursed", "entombed"},
			Adjectives: []string{"spectral", "eldritch", "haunted", "cursed", "ghastly", "shadowy", "forsaken"},
			Nouns:      []string{"specter", "phantom", "wraith", "poltergeist", "ghoul", "banshee"},
		},
		Patterns: []Pattern{
			{Type: PatternAddition, Templates: []string{
				"Summoned {feature} from the depths",
				"A new spirit now haunts the halls: {feature}",
				"Conjured {component} beneath a blood moon",
			}},
			{Type: PatternRemoval, Templates: []string{
				"Exorcised {feature} from the crypt",
				"Laid {component} to rest for good",
			}},
			{Type: PatternModification, Templates: []string{
				"Transmuted {component} with dark alchemy",
				"Whispered new incantations into {feature}",
			}},
			{Type: PatternFix, Templates: []string{
				"Banished the {bug} haunting {component}",
				"Exorcised a restless {bug} from {feature}",
			}},
			{Type: PatternBreaking, Templates: []string{
				"The ancient seal on {feature} has been broken",
				"{feature} has been cursed beyond recognition",
			}},
		},
	}
}
