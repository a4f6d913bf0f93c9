package fs

import (
	"context"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce groups bursts of editor writes into one reload.
const DefaultDebounce = 50 * time.Millisecond

// Watcher keeps a registry in sync with the theme files of a Loader.
// Created or written files are registered, removed or renamed files are
// unregistered.
type Watcher struct {
	loader   *Loader
	reg      Registrar
	logger   *zap.Logger
	debounce time.Duration
	onError  func(error)

	mu        sync.Mutex
	active    bool
	reloads   int
	lastEvent *time.Time
	cancel    context.CancelFunc
	done      chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the watcher logger.
func WithWatcherLogger(logger *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithDebounce sets the quiet period before pending changes are applied.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithErrorHandler receives reload failures. They are logged regardless.
func WithErrorHandler(fn func(error)) WatcherOption {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// NewWatcher creates a watcher. Call Start to begin watching.
func NewWatcher(loader *Loader, reg Registrar, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		loader:   loader,
		reg:      reg,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	return w
}

// Start registers the directory tree with fsnotify and runs the event loop
// in the background until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	// Claim the watcher before setup so concurrent Starts cannot both run.
	w.mu.Lock()
	if w.active {
		w.mu.Unlock()
		return errors.New("watcher already started")
	}
	w.active = true
	w.mu.Unlock()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.setActive(false)
		return errors.Wrap(err, "failed to create watcher")
	}
	if err := addTree(fsw, w.loader.Dir); err != nil {
		_ = fsw.Close()
		w.setActive(false)
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	w.mu.Lock()
	w.cancel = cancel
	w.done = done
	w.mu.Unlock()

	lifecycle.Go(runCtx, func(ctx context.Context) error {
		defer close(done)
		defer w.setActive(false)
		defer fsw.Close()
		return w.run(ctx, fsw)
	}, lifecycle.WithErrorHandler(func(err error) {
		w.report(errors.Wrap(err, "theme watcher stopped"))
	}))

	w.logger.Info("watching themes", zap.String("dir", w.loader.Dir))
	return nil
}

// Stop cancels the event loop and waits for it to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Done is closed once the event loop has exited.
func (w *Watcher) Done() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) error {
	pending := map[string]fsnotify.Op{}
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher events channel closed")
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(fsw, event.Name); err != nil {
						w.report(err)
					}
					continue
				}
			}
			if !w.loader.Matches(event.Name) {
				continue
			}

			w.logger.Debug("theme file event", zap.String("path", event.Name), zap.Stringer("op", event.Op))
			pending[event.Name] |= event.Op
			timer.Reset(w.debounce)

		case <-timer.C:
			w.flush(pending)
			clear(pending)

		case err, ok := <-fsw.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher errors channel closed")
			}
			w.report(errors.Wrap(err, "fsnotify"))
		}
	}
}

func (w *Watcher) flush(pending map[string]fsnotify.Op) {
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	for _, path := range paths {
		// The final state on disk decides, not the last op seen.
		if _, err := os.Stat(path); err != nil {
			if err := w.loader.Forget(path, w.reg); err != nil {
				w.report(err)
			}
			continue
		}

		name, err := w.loader.Reload(path, w.reg)
		if err != nil {
			w.report(err)
			continue
		}
		w.logger.Info("theme reloaded", zap.String("theme", name), zap.String("path", path))
	}

	now := time.Now()
	w.mu.Lock()
	w.reloads += len(paths)
	w.lastEvent = &now
	w.mu.Unlock()
}

func (w *Watcher) report(err error) {
	w.logger.Error("theme watcher", zap.Error(err))
	if w.onError != nil {
		w.onError(err)
	}
}

func (w *Watcher) setActive(active bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = active
}

func addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := fsw.Add(path); err != nil {
			return errors.Wrapf(err, "failed to watch %s", path)
		}
		return nil
	})
}
