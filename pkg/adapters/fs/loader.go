package fs

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/aretw0/patchlore/pkg/core"
	"github.com/aretw0/patchlore/pkg/theme"
)

// DefaultPattern matches every theme file below the themes directory.
const DefaultPattern = "**/*.{json,yaml,yml}"

// Registrar receives themes discovered on disk.
type Registrar interface {
	Register(cfg theme.Config) error
	Remove(name string) error
}

// Loader discovers theme files under Dir and parses them.
type Loader struct {
	Dir     string
	Pattern string

	logger      *zap.Logger
	serializers map[string]Serializer
	strict      bool

	mu       sync.Mutex
	files    map[string]string // path -> theme name
	lastLoad *time.Time
	failures int
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLoaderLogger sets the loader logger.
func WithLoaderLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithPattern overrides DefaultPattern.
func WithPattern(pattern string) LoaderOption {
	return func(l *Loader) {
		l.Pattern = pattern
	}
}

// WithStrict rejects unknown fields in theme files.
func WithStrict(strict bool) LoaderOption {
	return func(l *Loader) {
		l.strict = strict
	}
}

// WithSerializer registers a serializer for a file extension (e.g. ".toml").
func WithSerializer(ext string, s Serializer) LoaderOption {
	return func(l *Loader) {
		if l.serializers == nil {
			l.serializers = map[string]Serializer{}
		}
		l.serializers[strings.ToLower(ext)] = s
	}
}

// NewLoader creates a loader for dir.
func NewLoader(dir string, opts ...LoaderOption) *Loader {
	l := &Loader{
		Dir:     dir,
		Pattern: DefaultPattern,
		files:   map[string]string{},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	defaults := DefaultSerializers(l.strict)
	for ext, s := range l.serializers {
		defaults[ext] = s
	}
	l.serializers = defaults
	return l
}

// Discover returns the theme files matching Pattern, sorted.
func (l *Loader) Discover() ([]string, error) {
	info, err := os.Stat(l.Dir)
	if err != nil || !info.IsDir() {
		return nil, core.WithCode(errors.Newf("themes directory not found: %s", l.Dir), core.CodeThemeLoadFailed)
	}

	matches, err := doublestar.Glob(os.DirFS(l.Dir), l.Pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, core.WithCode(errors.Wrapf(err, "invalid theme pattern %q", l.Pattern), core.CodeThemeLoadFailed)
	}

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		paths = append(paths, filepath.Join(l.Dir, filepath.FromSlash(m)))
	}
	slices.Sort(paths)
	return paths, nil
}

// Supports reports whether path has a known theme extension.
func (l *Loader) Supports(path string) bool {
	_, ok := l.serializers[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Matches reports whether path lies under Dir and matches Pattern.
func (l *Loader) Matches(path string) bool {
	rel, err := filepath.Rel(l.Dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	ok, err := doublestar.Match(l.Pattern, filepath.ToSlash(rel))
	return err == nil && ok && l.Supports(path)
}

// LoadFile parses one theme file. It does not validate the result.
func (l *Loader) LoadFile(path string) (theme.Config, error) {
	ext := strings.ToLower(filepath.Ext(path))
	s, ok := l.serializers[ext]
	if !ok {
		return theme.Config{}, core.WithCode(errors.Newf("no serializer for %q", ext), core.CodeThemeLoadFailed)
	}

	f, err := os.Open(path)
	if err != nil {
		return theme.Config{}, core.WithCode(errors.Wrapf(err, "failed to open theme %s", path), core.CodeThemeLoadFailed)
	}
	defer f.Close()

	cfg, err := s.Parse(f)
	if err != nil {
		return theme.Config{}, core.WithCode(errors.Wrapf(err, "failed to parse theme %s", path), core.CodeThemeLoadFailed)
	}
	return cfg, nil
}

// LoadInto registers every discovered theme with reg.
// A bad file does not stop the others; all failures are returned together.
func (l *Loader) LoadInto(ctx context.Context, reg Registrar) ([]string, error) {
	paths, err := l.Discover()
	if err != nil {
		return nil, err
	}

	var (
		loaded []string
		result *multierror.Error
	)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return loaded, err
		}

		name, err := l.loadOne(path, reg)
		if err != nil {
			l.logger.Warn("skipping theme file", zap.String("path", path), zap.Error(err))
			result = multierror.Append(result, err)
			continue
		}
		loaded = append(loaded, name)
	}

	now := time.Now()
	l.mu.Lock()
	l.lastLoad = &now
	l.failures = 0
	if result != nil {
		l.failures = len(result.Errors)
	}
	l.mu.Unlock()

	l.logger.Info("themes loaded", zap.String("dir", l.Dir), zap.Int("count", len(loaded)))
	return loaded, result.ErrorOrNil()
}

// Reload re-reads a single file and registers it.
func (l *Loader) Reload(path string, reg Registrar) (string, error) {
	return l.loadOne(path, reg)
}

// Forget unregisters the theme previously loaded from path.
// Unknown paths are ignored.
func (l *Loader) Forget(path string, reg Registrar) error {
	l.mu.Lock()
	name, ok := l.files[path]
	delete(l.files, path)
	l.mu.Unlock()

	if !ok {
		return nil
	}
	return reg.Remove(name)
}

func (l *Loader) loadOne(path string, reg Registrar) (string, error) {
	cfg, err := l.LoadFile(path)
	if err != nil {
		return "", err
	}
	if err := reg.Register(cfg); err != nil {
		return "", errors.Wrapf(err, "theme file %s", path)
	}

	l.mu.Lock()
	previous, renamed := l.files[path]
	l.files[path] = cfg.Name
	l.mu.Unlock()

	if renamed && previous != cfg.Name {
		if err := reg.Remove(previous); err != nil {
			l.logger.Debug("stale theme not removed", zap.String("theme", previous), zap.Error(err))
		}
	}
	return cfg.Name, nil
}
