// Package theme validates, stores and applies named vocabulary and template
// sets that turn commit messages into narrative text.
package theme

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/aretw0/patchlore/pkg/core"
)

// PatternType names the kind of change a template set describes.
type PatternType string

const (
	PatternAddition     PatternType = "addition"
	PatternRemoval      PatternType = "removal"
	PatternModification PatternType = "modification"
	PatternFix          PatternType = "fix"
	PatternBreaking     PatternType = "breaking"
)

// PatternFor maps a change type to the pattern used to theme it.
// Removal is never produced here; it is only reachable through ApplyPattern.
func PatternFor(t core.ChangeType) PatternType {
	switch t {
	case core.ChangeFeature:
		return PatternAddition
	case core.ChangeFix:
		return PatternFix
	case core.ChangeBreaking:
		return PatternBreaking
	default:
		return PatternModification
	}
}

// Config is a named vocabulary plus template set.
type Config struct {
	Name       string      `json:"name" yaml:"name" validate:"required"`
	Vocabulary *Vocabulary `json:"vocabulary" yaml:"vocabulary" validate:"required"`
	Patterns   []Pattern   `json:"patterns" yaml:"patterns" validate:"required,dive"`
}

// Vocabulary lists may be empty but must be present.
type Vocabulary struct {
	Verbs      []string `json:"verbs" yaml:"verbs" validate:"required"`
	Adjectives []string `json:"adjectives" yaml:"adjectives" validate:"required"`
	Nouns      []string `json:"nouns" yaml:"nouns" validate:"required"`
}

// Pattern holds the templates for one pattern type. Templates may contain
// the {feature}, {component} and {bug} placeholders.
type Pattern struct {
	Type      PatternType `json:"type" yaml:"type" validate:"oneof=addition removal modification fix breaking"`
	Templates []string    `json:"templates" yaml:"templates" validate:"required"`
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	out := Config{Name: c.Name}
	if c.Vocabulary != nil {
		out.Vocabulary = &Vocabulary{
			Verbs:      slices.Clone(c.Vocabulary.Verbs),
			Adjectives: slices.Clone(c.Vocabulary.Adjectives),
			Nouns:      slices.Clone(c.Vocabulary.Nouns),
		}
	}
	if c.Patterns != nil {
		out.Patterns = make([]Pattern, len(c.Patterns))
		for i, p := range c.Patterns {
			out.Patterns[i] = Pattern{Type: p.Type, Templates: slices.Clone(p.Templates)}
		}
	}
	return out
}

// Templates returns the templates of the first pattern of type pt.
func (c Config) Templates(pt PatternType) []string {
	for _, p := range c.Patterns {
		if p.Type == pt {
			return p.Templates
		}
	}
	return nil
}

var validate = validator.New()

// Validate checks cfg in order: name, vocabulary, patterns.
// The first violation found determines the returned *core.ValidationError.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return invalid("name", "theme must have a non-empty name")
	}

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return invalid("", err.Error())
	}
	return translate(fieldErrs[0])
}

func translate(fe validator.FieldError) error {
	ns := fe.StructNamespace()
	switch {
	case fe.Field() == "Name":
		return invalid("name", "theme must have a non-empty name")
	case strings.Contains(ns, "Vocabulary"):
		return invalid("vocabulary", "theme must have vocabulary with verbs, adjectives and nouns arrays")
	case fe.Field() == "Patterns":
		return invalid("patterns", "theme must have a patterns array")
	case fe.Field() == "Type":
		return invalid(trimRoot(ns), fmt.Sprintf("invalid pattern type %q, expected one of addition, removal, modification, fix, breaking", fe.Value()))
	case fe.Field() == "Templates":
		return invalid(trimRoot(ns), "every pattern must have a templates array")
	default:
		return invalid(trimRoot(ns), fmt.Sprintf("field %s failed %q", fe.Field(), fe.Tag()))
	}
}

func trimRoot(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return strings.ToLower(rest[:1]) + rest[1:]
	}
	return ns
}

func invalid(field, reason string) error {
	return errors.WithStack(&core.ValidationError{Subject: "theme", Field: field, Reason: reason})
}
