package theme

import (
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/aretw0/patchlore/pkg/core"
)

// EventType describes a registry change.
type EventType string

const (
	EventLoaded    EventType = "LOADED"
	EventActivated EventType = "ACTIVATED"
	EventFallback  EventType = "FALLBACK"
	EventRemoved   EventType = "REMOVED"
)

// Event is emitted on every registry change.
type Event struct {
	Type      EventType
	Theme     string
	Timestamp time.Time
}

func (e Event) String() string {
	return string(e.Type) + " " + e.Theme
}

// Registry holds loaded themes and the active one.
// All methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	themes   map[string]Config
	active   string
	loads    int
	logger   *zap.Logger
	reporter *core.Reporter
	events   chan Event
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithReporter sets the reporter used to normalize failures.
func WithReporter(rep *core.Reporter) Option {
	return func(r *Registry) {
		r.reporter = rep
	}
}

// WithEventBuffer sets the size of the event channel. Zero means default (16).
func WithEventBuffer(size int) Option {
	return func(r *Registry) {
		if size > 0 {
			r.events = make(chan Event, size)
		}
	}
}

// NewRegistry creates a registry holding only the built-in theme, which is active.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		themes: map[string]Config{DefaultThemeName: Builtin()},
		active: DefaultThemeName,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.reporter == nil {
		r.reporter = core.NewReporter(r.logger, nil)
	}
	if r.events == nil {
		r.events = make(chan Event, 16)
	}
	return r
}

// LoadTheme validates cfg, stores it and makes it active.
// On failure the registry and the active theme are left untouched.
func (r *Registry) LoadTheme(cfg Config) error {
	if err := r.admit(cfg); err != nil {
		return err
	}

	r.mu.Lock()
	r.themes[cfg.Name] = cfg.Clone()
	r.active = cfg.Name
	r.loads++
	r.mu.Unlock()

	r.logger.Info("theme loaded", zap.String("theme", cfg.Name))
	r.emit(EventLoaded, cfg.Name)
	r.emit(EventActivated, cfg.Name)
	return nil
}

// Register validates and stores cfg without changing the active theme.
func (r *Registry) Register(cfg Config) error {
	if err := r.admit(cfg); err != nil {
		return err
	}

	r.mu.Lock()
	r.themes[cfg.Name] = cfg.Clone()
	r.loads++
	r.mu.Unlock()

	r.logger.Debug("theme registered", zap.String("theme", cfg.Name))
	r.emit(EventLoaded, cfg.Name)
	return nil
}

// admit validates cfg and keeps the built-in name reserved, so the fallback
// theme can never be replaced.
func (r *Registry) admit(cfg Config) error {
	err := Validate(cfg)
	if err == nil && cfg.Name == DefaultThemeName {
		err = errors.WithHint(
			errors.WithStack(&core.ValidationError{
				Subject: "theme",
				Field:   "name",
				Reason:  "theme name " + DefaultThemeName + " is reserved for the built-in theme",
			}),
			"rename the theme")
	}
	if err != nil {
		return r.reporter.Report(err, core.ComponentTheme, map[string]any{"theme": cfg.Name})
	}
	return nil
}

// LoadThemeByName activates a registered theme and returns a copy of it.
// An unknown name is not an error: the built-in theme is activated instead,
// THEME_NOT_FOUND is reported, and ok is false.
func (r *Registry) LoadThemeByName(name string) (cfg Config, ok bool) {
	r.mu.Lock()
	found, ok := r.themes[name]
	if ok {
		r.active = name
		cfg = found.Clone()
	} else {
		r.active = DefaultThemeName
		cfg = r.themes[DefaultThemeName].Clone()
	}
	r.mu.Unlock()

	if !ok {
		err := core.WithCode(errors.Newf("theme %q not found", name), core.CodeThemeNotFound)
		r.reporter.Handle(err, core.ComponentTheme, map[string]any{"theme": name, "fallback": DefaultThemeName})
		r.emit(EventFallback, DefaultThemeName)
		return cfg, false
	}
	r.emit(EventActivated, name)
	return cfg, true
}

// Remove deletes a theme. The built-in theme cannot be removed.
// Removing the active theme re-activates the built-in one.
func (r *Registry) Remove(name string) error {
	if name == DefaultThemeName {
		return r.reporter.Report(
			core.WithCode(errors.Newf("theme %q is built in and cannot be removed", name), core.CodeValidationError),
			core.ComponentTheme, nil)
	}

	r.mu.Lock()
	_, ok := r.themes[name]
	if ok {
		delete(r.themes, name)
		if r.active == name {
			r.active = DefaultThemeName
		}
	}
	r.mu.Unlock()

	if !ok {
		return r.reporter.Report(
			core.WithCode(errors.Newf("theme %q not found", name), core.CodeThemeNotFound),
			core.ComponentTheme, nil)
	}
	r.emit(EventRemoved, name)
	return nil
}

// ActiveTheme returns a copy of the active theme.
func (r *Registry) ActiveTheme() Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.themes[r.active].Clone()
}

// Get returns a copy of a registered theme.
func (r *Registry) Get(name string) (Config, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.themes[name]
	if !ok {
		return Config{}, false
	}
	return cfg.Clone(), true
}

// ListAvailableThemes returns the registered theme names, sorted.
func (r *Registry) ListAvailableThemes() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.themes))
	for name := range r.themes {
		names = append(names, name)
	}
	r.mu.RUnlock()
	slices.Sort(names)
	return names
}

// Resolve implements core.ThemeResolver. Activation and snapshot happen
// under one lock, so the returned Engine cannot observe another caller's theme.
func (r *Registry) Resolve(name string, rng core.Rand) core.Themer {
	var cfg Config
	if name != "" {
		cfg, _ = r.LoadThemeByName(name)
	} else {
		cfg = r.ActiveTheme()
	}
	return NewEngine(cfg, rng, r.logger)
}

// Events returns registry change notifications. Events are dropped when the
// buffer is full.
func (r *Registry) Events() <-chan Event {
	return r.events
}

func (r *Registry) emit(t EventType, name string) {
	select {
	case r.events <- Event{Type: t, Theme: name, Timestamp: time.Now()}:
	default:
	}
}

var _ core.ThemeResolver = (*Registry)(nil)
