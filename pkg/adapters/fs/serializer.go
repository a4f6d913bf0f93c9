// Package fs loads theme configurations from disk, watches them for changes
// and writes exported patch notes atomically.
package fs

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/patchlore/pkg/theme"
)

// Serializer defines how to read and write a theme file format.
type Serializer interface {
	// Parse reads a theme configuration from r.
	Parse(r io.Reader) (theme.Config, error)
	// Serialize converts a theme configuration to bytes.
	Serialize(cfg theme.Config) ([]byte, error)
}

// DefaultSerializers returns the standard set of serializers keyed by extension.
func DefaultSerializers(strict bool) map[string]Serializer {
	return map[string]Serializer{
		".json": NewJSONSerializer(strict),
		".yaml": NewYAMLSerializer(strict),
		".yml":  NewYAMLSerializer(strict),
	}
}

// --- JSON Serializer ---

// JSONSerializer handles reading and writing JSON theme files.
type JSONSerializer struct {
	// Strict rejects unknown fields.
	Strict bool
}

// NewJSONSerializer creates a new JSON serializer.
func NewJSONSerializer(strict bool) *JSONSerializer {
	return &JSONSerializer{Strict: strict}
}

func (s *JSONSerializer) Parse(r io.Reader) (theme.Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return theme.Config{}, err
	}

	var cfg theme.Config
	decoder := json.NewDecoder(bytes.NewReader(data))
	if s.Strict {
		decoder.DisallowUnknownFields()
	}
	if err := decoder.Decode(&cfg); err != nil {
		return theme.Config{}, errors.Wrap(err, "invalid json")
	}
	return cfg, nil
}

func (s *JSONSerializer) Serialize(cfg theme.Config) ([]byte, error) {
	return json.MarshalIndent(cfg, "", "  ")
}

// --- YAML Serializer ---

// YAMLSerializer handles reading and writing YAML theme files.
type YAMLSerializer struct {
	// Strict rejects unknown fields.
	Strict bool
}

// NewYAMLSerializer creates a new YAML serializer.
func NewYAMLSerializer(strict bool) *YAMLSerializer {
	return &YAMLSerializer{Strict: strict}
}

func (s *YAMLSerializer) Parse(r io.Reader) (theme.Config, error) {
	var cfg theme.Config
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(s.Strict)
	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return theme.Config{}, errors.New("invalid yaml: empty document")
		}
		return theme.Config{}, errors.Wrap(err, "invalid yaml")
	}
	return cfg, nil
}

func (s *YAMLSerializer) Serialize(cfg theme.Config) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
