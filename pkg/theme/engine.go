package theme

import (
	"math/rand/v2"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/aretw0/patchlore/pkg/core"
)

var (
	verbPrefixRe = regexp.MustCompile(`(?i)^\s*(feat|feature|add|added|implement|implemented|fix|fixed|bug|bugfix|update|updated|modify|modified|change|changed|remove|removed|delete|deleted|break|breaking)(\([^)]*\))?!?\s*:\s*`)
	bugWordRe    = regexp.MustCompile(`(?i)bug|issue|error|problem|crash|fail`)
	genericVerb  = regexp.MustCompile(`(?i)\b(added|removed|changed|fixed|updated|created|deleted)\b`)
)

// Engine applies one theme. It is a snapshot: later registry changes do not
// affect it. An Engine is not safe for concurrent use because it owns its
// random source; build one per generation call.
type Engine struct {
	cfg    Config
	rng    core.Rand
	logger *zap.Logger
}

// NewEngine snapshots cfg. A nil rng gets a randomly seeded source.
func NewEngine(cfg Config, rng core.Rand, logger *zap.Logger) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg.Clone(), rng: rng, logger: logger}
}

// Name returns the theme name.
func (e *Engine) Name() string {
	return e.cfg.Name
}

// Apply themes text using the pattern mapped from t.
func (e *Engine) Apply(text string, t core.ChangeType) string {
	return e.ApplyPattern(text, PatternFor(t))
}

// ApplyPattern themes text with the templates of pattern pt.
// Without templates, or on any failure, text is returned unchanged.
func (e *Engine) ApplyPattern(text string, pt PatternType) (out string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Debug("theming failed, keeping original text",
				zap.String("theme", e.cfg.Name),
				zap.Any("panic", r),
			)
			out = text
		}
	}()

	templates := e.cfg.Templates(pt)
	if len(templates) == 0 {
		return text
	}

	tpl := templates[e.rng.IntN(len(templates))]
	feature := FeatureName(text)
	out = strings.NewReplacer(
		"{feature}", feature,
		"{component}", feature,
		"{bug}", BugName(text),
	).Replace(tpl)

	if e.cfg.Vocabulary == nil {
		return out
	}
	if verbs := e.cfg.Vocabulary.Verbs; len(verbs) > 0 {
		out = genericVerb.ReplaceAllStringFunc(out, func(string) string {
			return verbs[e.rng.IntN(len(verbs))]
		})
	}
	return out
}

// Adjective draws a random adjective, or core.DefaultAdjective if there are none.
func (e *Engine) Adjective() string {
	if e.cfg.Vocabulary == nil {
		return core.DefaultAdjective
	}
	return e.pick(e.cfg.Vocabulary.Adjectives, core.DefaultAdjective)
}

// Noun draws a random noun, or core.DefaultNoun if there are none.
func (e *Engine) Noun() string {
	if e.cfg.Vocabulary == nil {
		return core.DefaultNoun
	}
	return e.pick(e.cfg.Vocabulary.Nouns, core.DefaultNoun)
}

func (e *Engine) pick(words []string, fallback string) string {
	if len(words) == 0 {
		return fallback
	}
	return words[e.rng.IntN(len(words))]
}

// FeatureName strips a leading change verb prefix ("feat:", "fix(api):", ...)
// and keeps the text up to the first ',', ';', '.' or newline.
func FeatureName(text string) string {
	s := verbPrefixRe.ReplaceAllString(text, "")
	if i := strings.IndexAny(s, ",;.\n"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return strings.TrimSpace(text)
	}
	return s
}

// BugName returns the first bug-like word in text, lowercased, or "bug".
func BugName(text string) string {
	if m := bugWordRe.FindString(text); m != "" {
		return strings.ToLower(m)
	}
	return "bug"
}

var _ core.Themer = (*Engine)(nil)
