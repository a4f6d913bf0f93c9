package theme

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/patchlore/pkg/core"
)

func seeded() core.Rand {
	return rand.New(rand.NewPCG(11, 13))
}

func TestEngine_EmptyTemplatesIsIdentity(t *testing.T) {
	cfg := Config{
		Name:       "blank",
		Vocabulary: &Vocabulary{Verbs: []string{"zapped"}, Adjectives: []string{}, Nouns: []string{}},
		Patterns:   []Pattern{{Type: PatternAddition, Templates: []string{}}},
	}
	e := NewEngine(cfg, seeded(), nil)

	assert.Equal(t, "Add X", e.Apply("Add X", core.ChangeFeature))
	assert.Equal(t, "Fixed the thing", e.Apply("Fixed the thing", core.ChangeFix), "no pattern at all is identity too")
}

func TestEngine_PicksOneOfTheTemplates(t *testing.T) {
	cfg := Config{
		Name:       "pick",
		Vocabulary: &Vocabulary{Verbs: []string{}, Adjectives: []string{}, Nouns: []string{}},
		Patterns: []Pattern{{Type: PatternAddition, Templates: []string{
			"one {feature}", "two {feature}", "three {feature}",
		}}},
	}
	e := NewEngine(cfg, seeded(), nil)

	want := []string{"one login page", "two login page", "three login page"}
	for range 50 {
		got := e.Apply("feat: login page", core.ChangeFeature)
		assert.True(t, slices.Contains(want, got), "unexpected %q", got)
	}
}

func TestEngine_SeededOutputIsReproducible(t *testing.T) {
	a := NewEngine(Builtin(), rand.New(rand.NewPCG(1, 2)), nil)
	b := NewEngine(Builtin(), rand.New(rand.NewPCG(1, 2)), nil)

	for _, msg := range []string{"Add login", "Fix crash in parser", "Breaking: drop v1", "docs: tidy"} {
		t.Run(msg, func(t *testing.T) {
			ct := core.Classify(msg)
			assert.Equal(t, a.Apply(msg, ct), b.Apply(msg, ct))
		})
	}
	assert.Equal(t, a.Adjective(), b.Adjective())
	assert.Equal(t, a.Noun(), b.Noun())
}

func TestEngine_Placeholders(t *testing.T) {
	cfg := Config{
		Name:       "ph",
		Vocabulary: &Vocabulary{Verbs: []string{}, Adjectives: []string{}, Nouns: []string{}},
		Patterns:   []Pattern{{Type: PatternFix, Templates: []string{"squashed the {bug} in {component}"}}},
	}
	e := NewEngine(cfg, seeded(), nil)

	assert.Equal(t, "squashed the crash in parser crash", e.Apply("fix(core): parser crash. Details follow", core.ChangeFix))
}

func TestEngine_GenericVerbsReplaced(t *testing.T) {
	cfg := Config{
		Name:       "verbs",
		Vocabulary: &Vocabulary{Verbs: []string{"hexed"}, Adjectives: []string{}, Nouns: []string{}},
		Patterns:   []Pattern{{Type: PatternModification, Templates: []string{"Updated {feature} and Removed cruft"}}},
	}
	e := NewEngine(cfg, seeded(), nil)

	assert.Equal(t, "hexed readme and hexed cruft", e.Apply("readme", core.ChangeOther))
}

func TestEngine_RemovalPattern(t *testing.T) {
	e := NewEngine(Builtin(), seeded(), nil)
	got := e.ApplyPattern("remove: legacy importer", PatternRemoval)
	assert.Contains(t, got, "legacy importer")
}

func TestEngine_FallbackWords(t *testing.T) {
	e := NewEngine(Config{Name: "bare"}, seeded(), nil)
	assert.Equal(t, core.DefaultAdjective, e.Adjective())
	assert.Equal(t, core.DefaultNoun, e.Noun())
	assert.Equal(t, "Add X", e.Apply("Add X", core.ChangeFeature))
}

func TestEngine_IsSnapshot(t *testing.T) {
	cfg := Config{
		Name:       "snap",
		Vocabulary: &Vocabulary{Verbs: []string{}, Adjectives: []string{"before"}, Nouns: []string{}},
		Patterns:   []Pattern{},
	}
	e := NewEngine(cfg, seeded(), nil)
	cfg.Vocabulary.Adjectives[0] = "after"

	assert.Equal(t, "before", e.Adjective())
}

func TestFeatureName(t *testing.T) {
	tests := map[string]string{
		"feat: add login page":          "add login page",
		"fix(api)!: broken pagination":  "broken pagination",
		"Implemented caching, finally":  "Implemented caching",
		"Update docs. More words":       "Update docs",
		"feat:":                         "feat:",
		"first line\nsecond line":       "first line",
		"BREAKING: drop legacy; sorry!": "drop legacy",
	}
	for in, want := range tests {
		t.Run(strings.ReplaceAll(in, "\n", `\n`), func(t *testing.T) {
			assert.Equal(t, want, FeatureName(in))
		})
	}
}

func TestBugName(t *testing.T) {
	assert.Equal(t, "crash", BugName("Fix CRASH on save"))
	assert.Equal(t, "issue", BugName("resolve issue #4"))
	assert.Equal(t, "bug", BugName("tidy up"))
}
