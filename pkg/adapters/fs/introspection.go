package fs

import (
	"slices"
	"time"

	"github.com/aretw0/introspection"
)

// LoaderState exposes internal state for observability.
type LoaderState struct {
	Dir         string     `json:"dir"`
	Pattern     string     `json:"pattern"`
	Strict      bool       `json:"strict"`
	Serializers []string   `json:"serializers"`
	Files       int        `json:"files"`
	Failures    int        `json:"failures"`
	LastLoad    *time.Time `json:"last_load,omitempty"`
}

// State implements introspection.Introspectable.
func (l *Loader) State() any {
	l.mu.Lock()
	defer l.mu.Unlock()

	serializers := make([]string, 0, len(l.serializers))
	for ext := range l.serializers {
		serializers = append(serializers, ext)
	}
	slices.Sort(serializers)

	return LoaderState{
		Dir:         l.Dir,
		Pattern:     l.Pattern,
		Strict:      l.strict,
		Serializers: serializers,
		Files:       len(l.files),
		Failures:    l.failures,
		LastLoad:    l.lastLoad,
	}
}

// ComponentType implements introspection.Component.
func (l *Loader) ComponentType() string {
	return "theme-loader"
}

// WatcherState exposes internal state for observability.
type WatcherState struct {
	Dir       string        `json:"dir"`
	Active    bool          `json:"active"`
	Debounce  time.Duration `json:"debounce"`
	Reloads   int           `json:"reloads"`
	LastEvent *time.Time    `json:"last_event,omitempty"`
}

// State implements introspection.Introspectable.
func (w *Watcher) State() any {
	w.mu.Lock()
	defer w.mu.Unlock()

	return WatcherState{
		Dir:       w.loader.Dir,
		Active:    w.active,
		Debounce:  w.debounce,
		Reloads:   w.reloads,
		LastEvent: w.lastEvent,
	}
}

// ComponentType implements introspection.Component.
func (w *Watcher) ComponentType() string {
	return "theme-watcher"
}

var (
	_ introspection.Introspectable = (*Loader)(nil)
	_ introspection.Component      = (*Loader)(nil)
	_ introspection.Introspectable = (*Watcher)(nil)
	_ introspection.Component      = (*Watcher)(nil)
)
