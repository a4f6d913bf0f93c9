package theme

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/patchlore/pkg/core"
)

func validVocabulary() *Vocabulary {
	return &Vocabulary{Verbs: []string{}, Adjectives: []string{}, Nouns: []string{}}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"empty name", Config{Name: "", Vocabulary: validVocabulary(), Patterns: []Pattern{}}, "name"},
		{"blank name", Config{Name: "   "}, "name"},
		{"name checked before vocabulary", Config{Name: ""}, "name"},
		{"missing vocabulary", Config{Name: "x", Patterns: []Pattern{}}, "vocabulary"},
		{"missing verbs", Config{Name: "x", Vocabulary: &Vocabulary{Adjectives: []string{}, Nouns: []string{}}, Patterns: []Pattern{}}, "vocabulary"},
		{"vocabulary checked before patterns", Config{Name: "x"}, "vocabulary"},
		{"missing patterns", Config{Name: "x", Vocabulary: validVocabulary()}, "patterns"},
		{"bad pattern type", Config{Name: "x", Vocabulary: validVocabulary(), Patterns: []Pattern{{Type: "rename", Templates: []string{}}}}, "patterns[0].Type"},
		{"missing templates", Config{Name: "x", Vocabulary: validVocabulary(), Patterns: []Pattern{{Type: PatternFix}}}, "patterns[0].Templates"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cfg)
			require.Error(t, err)

			var ve *core.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "theme", ve.Subject)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestValidate_Accepts(t *testing.T) {
	assert.NoError(t, Validate(Builtin()))
	assert.NoError(t, Validate(Config{Name: "minimal", Vocabulary: validVocabulary(), Patterns: []Pattern{}}))
	assert.NoError(t, Validate(Config{Name: "empty-templates", Vocabulary: validVocabulary(), Patterns: []Pattern{{Type: PatternAddition, Templates: []string{}}}}))
}

func TestValidate_Messages(t *testing.T) {
	err := Validate(Config{Name: "x", Vocabulary: validVocabulary(), Patterns: []Pattern{{Type: "rename", Templates: []string{}}}})
	assert.ErrorContains(t, err, `invalid pattern type "rename"`)

	err = Validate(Config{Name: "x", Vocabulary: validVocabulary()})
	assert.EqualError(t, err, "theme validation failed: theme must have a patterns array")
}

func TestPatternFor(t *testing.T) {
	assert.Equal(t, PatternAddition, PatternFor(core.ChangeFeature))
	assert.Equal(t, PatternFix, PatternFor(core.ChangeFix))
	assert.Equal(t, PatternBreaking, PatternFor(core.ChangeBreaking))
	assert.Equal(t, PatternModification, PatternFor(core.ChangeOther))
}

func TestConfig_CloneIsDeep(t *testing.T) {
	orig := Builtin()
	clone := orig.Clone()

	clone.Vocabulary.Verbs[0] = "mutated"
	clone.Patterns[0].Templates[0] = "mutated"

	assert.NotEqual(t, "mutated", orig.Vocabulary.Verbs[0])
	assert.NotEqual(t, "mutated", orig.Patterns[0].Templates[0])
}
