package platform

import (
	"time"

	"go.uber.org/zap"

	"github.com/aretw0/patchlore/pkg/core"
	"github.com/aretw0/patchlore/pkg/export"
	"github.com/aretw0/patchlore/pkg/theme"
)

// options holds the internal configuration for the patch-notes pipeline.
type options struct {
	logger        *zap.Logger
	themesDir     string
	pattern       string
	strict        bool
	themes        []theme.Config
	activeTheme   string
	seed          *[2]uint64
	now           func() time.Time
	watch         bool
	watchDebounce time.Duration
	watchErrors   func(error)
	repoPath      string
	source        core.CommitSource
	encoders      map[core.Format]export.Encoder
	eventBuffer   int
}

// Option defines a functional option for configuring the pipeline.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		encoders: make(map[core.Format]export.Encoder),
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithThemesDir loads every theme file found below dir at startup.
func WithThemesDir(dir string) Option {
	return func(o *options) {
		o.themesDir = dir
	}
}

// WithThemePattern overrides the glob used to discover theme files.
func WithThemePattern(pattern string) Option {
	return func(o *options) {
		o.pattern = pattern
	}
}

// WithStrict rejects unknown fields in theme files.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithTheme registers an in-memory theme. Invalid themes fail New.
func WithTheme(cfg theme.Config) Option {
	return func(o *options) {
		o.themes = append(o.themes, cfg)
	}
}

// WithActiveTheme activates a registered theme once all themes are loaded.
// Unknown names fall back to the built-in theme.
func WithActiveTheme(name string) Option {
	return func(o *options) {
		o.activeTheme = name
	}
}

// WithSeed makes theme selection deterministic. Every generation call
// starts from the same seed.
func WithSeed(seed1, seed2 uint64) Option {
	return func(o *options) {
		o.seed = &[2]uint64{seed1, seed2}
	}
}

// WithClock sets the clock used for document dates, default versions and
// error timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithWatch hot-reloads the themes directory while the platform runs.
// It has no effect without WithThemesDir.
func WithWatch(enabled bool) Option {
	return func(o *options) {
		o.watch = enabled
	}
}

// WithWatchDebounce sets the quiet period before theme changes are applied.
func WithWatchDebounce(d time.Duration) Option {
	return func(o *options) {
		o.watchDebounce = d
	}
}

// WithWatcherErrorHandler receives theme reload failures, which are
// otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.watchErrors = fn
	}
}

// WithRepoPath reads commits from the git repository at path.
func WithRepoPath(path string) Option {
	return func(o *options) {
		o.repoPath = path
	}
}

// WithCommitSource injects a custom commit source (e.g. a fixture in tests).
// It takes precedence over WithRepoPath.
func WithCommitSource(src core.CommitSource) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithEncoder registers or replaces the encoder for a format.
func WithEncoder(format core.Format, enc export.Encoder) Option {
	return func(o *options) {
		o.encoders[format] = enc
	}
}

// WithEventBuffer sets the size of the theme event buffer.
// Zero means default (16).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}
