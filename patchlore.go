package patchlore

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/aretw0/patchlore/internal/platform"
	"github.com/aretw0/patchlore/pkg/core"
	"github.com/aretw0/patchlore/pkg/theme"
)

// --- Types ---

// Platform is the wired pipeline returned by New.
type Platform = platform.Platform

// Request describes one end-to-end run.
type Request = platform.Request

// Result is the outcome of a run.
type Result = platform.Result

// --- Configuration ---

// Option defines a functional option for configuring the pipeline.
type Option = platform.Option

// WithLogger sets the logger shared by every component.
func WithLogger(logger *zap.Logger) Option {
	return platform.WithLogger(logger)
}

// WithThemesDir loads every theme file found below dir.
func WithThemesDir(dir string) Option {
	return platform.WithThemesDir(dir)
}

// WithThemePattern overrides the glob used to discover theme files.
func WithThemePattern(pattern string) Option {
	return platform.WithThemePattern(pattern)
}

// WithStrict rejects unknown fields in theme files.
func WithStrict(strict bool) Option {
	return platform.WithStrict(strict)
}

// WithTheme registers an in-memory theme.
func WithTheme(cfg theme.Config) Option {
	return platform.WithTheme(cfg)
}

// WithActiveTheme activates a registered theme.
func WithActiveTheme(name string) Option {
	return platform.WithActiveTheme(name)
}

// WithSeed makes theme selection deterministic.
func WithSeed(seed1, seed2 uint64) Option {
	return platform.WithSeed(seed1, seed2)
}

// WithClock sets the clock used for dates and default versions.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithWatch hot-reloads the themes directory.
func WithWatch(enabled bool) Option {
	return platform.WithWatch(enabled)
}

// WithWatcherErrorHandler receives theme reload failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// WithRepoPath reads commits from the git repository at path.
func WithRepoPath(path string) Option {
	return platform.WithRepoPath(path)
}

// WithCommitSource injects a custom commit source.
func WithCommitSource(src core.CommitSource) Option {
	return platform.WithCommitSource(src)
}

// WithEventBuffer sets the size of the theme event buffer.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// --- Factory ---

// New wires the classifier, theme registry, generator and exporter.
func New(opts ...Option) (*Platform, error) {
	return platform.New(opts...)
}

// --- Operations ---

// Generate is a one-shot helper: it builds a platform from opts and turns
// commits into a Document.
func Generate(ctx context.Context, commits []core.CommitRecord, gen core.GenerateOptions, opts ...Option) (*core.Document, error) {
	p, err := New(opts...)
	if err != nil {
		return nil, err
	}
	defer p.Close()
	return p.Service.Generate(ctx, commits, gen)
}

// FindRoot looks upwards for a git repository or a .patchlore.yaml file.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
