package core

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// BreakingTitle is the fixed title of the breaking-changes section.
const BreakingTitle = "Breaking Changes"

// Fallback words used when a theme has an empty vocabulary list.
const (
	DefaultAdjective = "Assorted"
	DefaultNoun      = "Bug"
)

// GenerateOptions tunes a single generation call.
type GenerateOptions struct {
	// Version labels the document. Empty means v{year}.{month}.{day} of today.
	Version string
	// Theme selects a registered theme by name. Empty keeps the active theme.
	Theme string
}

// Config wires the Service collaborators.
type Config struct {
	Themes   ThemeResolver
	Exporter Exporter
	Source   CommitSource
	Reporter *Reporter
	Logger   *zap.Logger
	// Now is the clock used for document dates and default versions.
	Now func() time.Time
	// NewRand returns a fresh random source for each generation call.
	NewRand func() Rand
}

// Service is the narrative generator: it classifies, themes and groups
// commits into a Document, and hands documents to the exporter.
type Service struct {
	themes    ThemeResolver
	exporter  Exporter
	source    CommitSource
	reporter  *Reporter
	logger    *zap.Logger
	now       func() time.Time
	newRand   func() Rand
	generated atomic.Int64
}

// NewService creates a new Service.
func NewService(cfg Config) *Service {
	s := &Service{
		themes:   cfg.Themes,
		exporter: cfg.Exporter,
		source:   cfg.Source,
		reporter: cfg.Reporter,
		logger:   cfg.Logger,
		now:      cfg.Now,
		newRand:  cfg.NewRand,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.reporter == nil {
		s.reporter = NewReporter(s.logger, s.now)
	}
	if s.newRand == nil {
		s.newRand = func() Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}
	return s
}

// Reporter returns the reporter used to normalize failures.
func (s *Service) Reporter() *Reporter {
	return s.reporter
}

// Generate builds a Document from commits.
// Every commit yields exactly one entry, in exactly one section.
func (s *Service) Generate(ctx context.Context, commits []CommitRecord, opts GenerateOptions) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, s.reporter.Report(errors.Wrap(err, "generation cancelled"), ComponentGenerator, nil)
	}

	themer := s.resolve(opts.Theme)

	buckets := make(map[ChangeType][]NarrativeEntry, 4)
	for _, c := range commits {
		t := Classify(c.Message)
		buckets[t] = append(buckets[t], NarrativeEntry{
			ThemedText:   applySafe(themer, c.Message, t),
			OriginalText: c.Message,
			CommitHash:   c.Hash,
		})
	}

	var sections []Section
	for _, t := range ChangeTypes() {
		entries := buckets[t]
		if len(entries) == 0 {
			continue
		}
		sections = append(sections, Section{
			Title:   sectionTitle(themer, t),
			Type:    t,
			Entries: entries,
		})
	}

	now := s.now()
	version := opts.Version
	if version == "" {
		version = DefaultVersion(now)
	}

	s.generated.Add(1)
	s.logger.Debug("generated patch notes",
		zap.String("version", version),
		zap.Int("commits", len(commits)),
		zap.Int("sections", len(sections)),
	)

	return &Document{
		Version:         version,
		Date:            now,
		Sections:        sections,
		OriginalCommits: slices.Clone(commits),
	}, nil
}

// GenerateFromSource reads commits from the configured CommitSource and generates a Document.
// Records failing validation are skipped so one bad record cannot sink the batch.
func (s *Service) GenerateFromSource(ctx context.Context, q CommitQuery, opts GenerateOptions) (*Document, error) {
	if s.source == nil {
		return nil, s.reporter.Report(WithCode(ErrNoCommitSource, CodeMissingParameter), ComponentSource, nil)
	}

	commits, err := s.source.Commits(ctx, q)
	if err != nil {
		return nil, s.reporter.Report(err, ComponentSource, map[string]any{"range": q.Range})
	}

	valid := commits[:0:0]
	for _, c := range commits {
		if err := c.Validate(); err != nil {
			s.logger.Warn("skipping commit", zap.String("hash", c.Hash), zap.Error(err))
			continue
		}
		valid = append(valid, c)
	}
	return s.Generate(ctx, valid, opts)
}

// Export serializes doc with the configured exporter.
func (s *Service) Export(doc *Document, opts ExportOptions) (ExportResult, error) {
	if s.exporter == nil {
		err := WithCode(errors.New("no exporter configured"), CodeExportFailed)
		return ExportResult{}, s.reporter.Report(err, ComponentExporter, nil)
	}
	res, err := s.exporter.Export(doc, opts)
	if err != nil {
		return ExportResult{}, s.reporter.Report(err, ComponentExporter, map[string]any{"format": string(opts.Format)})
	}
	return res, nil
}

func (s *Service) resolve(name string) Themer {
	if s.themes == nil {
		return identityThemer{}
	}
	if th := s.themes.Resolve(name, s.newRand()); th != nil {
		return th
	}
	return identityThemer{}
}

// DefaultVersion formats t as v{year}.{month}.{day} without zero padding.
func DefaultVersion(t time.Time) string {
	return fmt.Sprintf("v%d.%d.%d", t.Year(), int(t.Month()), t.Day())
}

// applySafe keeps a misbehaving Themer from aborting generation.
func applySafe(th Themer, text string, t ChangeType) (out string) {
	defer func() {
		if recover() != nil {
			out = text
		}
	}()
	return th.Apply(text, t)
}

func sectionTitle(th Themer, t ChangeType) string {
	switch t {
	case ChangeFeature:
		return titleWord(drawSafe(th.Adjective), DefaultAdjective) + " Summonings"
	case ChangeFix:
		return "Banished " + titleWord(drawSafe(th.Noun), DefaultNoun) + "s"
	case ChangeBreaking:
		return BreakingTitle
	default:
		return titleWord(drawSafe(th.Adjective), DefaultAdjective) + " Transformations"
	}
}

// drawSafe returns "" when a vocabulary draw panics, so the fallback word is used.
func drawSafe(draw func() string) (word string) {
	defer func() {
		if recover() != nil {
			word = ""
		}
	}()
	return draw()
}

// titleWord title-cases word without lowering the rest of it.
// A Caser is stateful, so each call builds its own.
func titleWord(word, fallback string) string {
	word = strings.TrimSpace(word)
	if word == "" {
		word = fallback
	}
	return cases.Title(language.Und, cases.NoLower).String(word)
}

type identityThemer struct{}

func (identityThemer) Apply(text string, _ ChangeType) string { return text }
func (identityThemer) Adjective() string                      { return DefaultAdjective }
func (identityThemer) Noun() string                           { return DefaultNoun }
