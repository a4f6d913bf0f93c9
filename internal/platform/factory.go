package platform

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/aretw0/lifecycle"
	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/aretw0/patchlore/pkg/adapters/fs"
	lcadapter "github.com/aretw0/patchlore/pkg/adapters/lifecycle"
	"github.com/aretw0/patchlore/pkg/core"
	"github.com/aretw0/patchlore/pkg/export"
	"github.com/aretw0/patchlore/pkg/git"
	"github.com/aretw0/patchlore/pkg/theme"
)

// Platform bundles the wired components of the pipeline.
type Platform struct {
	Service  *core.Service
	Themes   *theme.Registry
	Exporter *export.Exporter
	Reporter *core.Reporter
	Logger   *zap.Logger

	// Loader and Watcher are nil without a themes directory.
	Loader  *fs.Loader
	Watcher *fs.Watcher

	closeOnce sync.Once
}

// New wires a Platform.
//
//	p, err := platform.New(platform.WithThemesDir("./themes"), platform.WithRepoPath("."))
//
// Theme files that fail to load are logged and skipped; New only fails when
// the themes directory itself is unusable or an in-memory theme is invalid.
func New(opts ...Option) (*Platform, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	reporter := core.NewReporter(o.logger, o.now)
	registry := theme.NewRegistry(
		theme.WithLogger(o.logger),
		theme.WithReporter(reporter),
		theme.WithEventBuffer(o.eventBuffer),
	)

	for _, cfg := range o.themes {
		if err := registry.Register(cfg); err != nil {
			return nil, err
		}
	}

	p := &Platform{
		Themes:   registry,
		Reporter: reporter,
		Logger:   o.logger,
	}

	if o.themesDir != "" {
		p.Loader = fs.NewLoader(o.themesDir,
			fs.WithLoaderLogger(o.logger),
			fs.WithStrict(o.strict),
		)
		if o.pattern != "" {
			p.Loader.Pattern = o.pattern
		}

		if _, err := p.Loader.LoadInto(context.Background(), registry); err != nil {
			var merr *multierror.Error
			if !errors.As(err, &merr) {
				return nil, reporter.Report(err, core.ComponentTheme, map[string]any{"dir": o.themesDir})
			}
			o.logger.Warn("some themes failed to load", zap.Int("failures", len(merr.Errors)), zap.Error(err))
		}

		if o.watch {
			p.Watcher = fs.NewWatcher(p.Loader, registry,
				fs.WithWatcherLogger(o.logger),
				fs.WithDebounce(o.watchDebounce),
				fs.WithErrorHandler(o.watchErrors),
			)
		}
	}

	if o.activeTheme != "" {
		registry.LoadThemeByName(o.activeTheme)
	}

	exporterOpts := []export.Option{export.WithLogger(o.logger)}
	for format, enc := range o.encoders {
		exporterOpts = append(exporterOpts, export.WithEncoder(format, enc))
	}
	p.Exporter = export.New(exporterOpts...)

	source := o.source
	if source == nil && o.repoPath != "" {
		source = git.NewClient(o.repoPath, o.logger)
	}

	var newRand func() core.Rand
	if o.seed != nil {
		seed := *o.seed
		newRand = func() core.Rand {
			return rand.New(rand.NewPCG(seed[0], seed[1]))
		}
	}

	p.Service = core.NewService(core.Config{
		Themes:   registry,
		Exporter: p.Exporter,
		Source:   source,
		Reporter: reporter,
		Logger:   o.logger,
		Now:      o.now,
		NewRand:  newRand,
	})

	return p, nil
}

// Start begins watching the themes directory when watching is enabled.
func (p *Platform) Start(ctx context.Context) error {
	if p.Watcher == nil {
		return nil
	}
	if err := p.Watcher.Start(ctx); err != nil {
		return p.Reporter.Report(errors.Wrap(err, "failed to watch themes"), core.ComponentTheme, nil)
	}
	return nil
}

// ThemeEvents exposes theme registry changes as a lifecycle.Source.
// The registry has a single event stream, so only one source should be started.
func (p *Platform) ThemeEvents() lifecycle.Source {
	return lcadapter.NewSource(p.Themes.Events())
}

// Close stops background work. It is safe to call more than once.
func (p *Platform) Close() {
	p.closeOnce.Do(func() {
		if p.Watcher != nil {
			p.Watcher.Stop()
		}
	})
}
