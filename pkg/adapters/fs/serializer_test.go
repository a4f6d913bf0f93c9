package fs

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/patchlore/pkg/theme"
)

func TestSerializers(t *testing.T) {
	cfg := theme.Builtin()

	for ext, s := range DefaultSerializers(true) {
		t.Run(ext, func(t *testing.T) {
			data, err := s.Serialize(cfg)
			require.NoError(t, err)

			parsed, err := s.Parse(bytes.NewReader(data))
			require.NoError(t, err)

			if diff := cmp.Diff(cfg, parsed); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSerializerStrictness(t *testing.T) {
	const jsonTheme = `{"name":"x","vocabulary":{"verbs":[],"adjectives":[],"nouns":[]},"patterns":[],"colour":"red"}`
	const yamlTheme = "name: x\nvocabulary:\n  verbs: []\n  adjectives: []\n  nouns: []\npatterns: []\ncolour: red\n"

	t.Run("JSON lenient ignores unknown fields", func(t *testing.T) {
		cfg, err := NewJSONSerializer(false).Parse(strings.NewReader(jsonTheme))
		require.NoError(t, err)
		assert.Equal(t, "x", cfg.Name)
	})

	t.Run("JSON strict rejects unknown fields", func(t *testing.T) {
		_, err := NewJSONSerializer(true).Parse(strings.NewReader(jsonTheme))
		assert.ErrorContains(t, err, "invalid json")
	})

	t.Run("YAML lenient ignores unknown fields", func(t *testing.T) {
		cfg, err := NewYAMLSerializer(false).Parse(strings.NewReader(yamlTheme))
		require.NoError(t, err)
		assert.Equal(t, "x", cfg.Name)
	})

	t.Run("YAML strict rejects unknown fields", func(t *testing.T) {
		_, err := NewYAMLSerializer(true).Parse(strings.NewReader(yamlTheme))
		assert.ErrorContains(t, err, "invalid yaml")
	})

	t.Run("YAML empty document", func(t *testing.T) {
		_, err := NewYAMLSerializer(false).Parse(strings.NewReader(""))
		assert.ErrorContains(t, err, "empty document")
	})
}
