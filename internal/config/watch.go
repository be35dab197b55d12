package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 250 * time.Millisecond

// #region reload
// Reload carries a freshly parsed trigger table.
type Reload struct {
	Profile  Profile
	Triggers map[string][]string
}

// #endregion reload

// #region watcher
// Watcher watches a profile file and delivers its trigger tables after each
// settled change. Reloads that change the axis list are rejected.
type Watcher struct {
	mu       sync.Mutex
	path     string
	current  Profile
	fsw      *fsnotify.Watcher
	debounce time.Duration
	logger   *zap.Logger
	updates  chan Reload
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	stopped  bool
}

// WatchOption customises a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets how long the file must stay quiet before it is reloaded.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger sets the watcher logger.
func WithWatchLogger(logger *zap.Logger) WatchOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher prepares a watcher for path. current is the profile in use; its
// axes are the ones every reload must keep.
func NewWatcher(path string, current Profile, opts ...WatchOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("resolve profile path: %w", err)
	}
	w := &Watcher{
		path:     abs,
		current:  current,
		fsw:      fsw,
		debounce: defaultDebounce,
		logger:   zap.NewNop(),
		updates:  make(chan Reload, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Updates delivers reloads. It is closed when the watcher stops.
func (w *Watcher) Updates() <-chan Reload { return w.updates }

// Start begins watching the profile's directory. Editors that replace the file
// by rename are handled because the directory, not the file, is watched.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running || w.stopped {
		return nil
	}
	if err := w.fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.running = true
	go w.run(ctx)
	w.logger.Info("watching profile", zap.String("path", w.path))
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit. Safe to call
// more than once and without Start.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	if wasRunning {
		<-w.doneCh
	} else {
		close(w.updates)
	}
	if err := w.fsw.Close(); err != nil {
		w.logger.Warn("close fs watcher", zap.Error(err))
	}
}

// #endregion watcher

// #region run
func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer close(w.updates)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(w.debounce)
			pending = true

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("profile watcher error", zap.Error(err))

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			if reload, ok := w.reload(); ok {
				select {
				case w.updates <- reload:
				case <-w.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// reload parses the file and checks it against the running axes.
func (w *Watcher) reload() (Reload, bool) {
	p, err := Load(w.path)
	if err != nil {
		w.logger.Warn("profile reload failed", zap.String("path", w.path), zap.Error(err))
		return Reload{}, false
	}
	if !p.SameAxes(w.current) {
		w.logger.Warn("profile reload rejected",
			zap.String("path", w.path),
			zap.Strings("axes", p.Axes),
			zap.Error(ErrAxesChanged))
		return Reload{}, false
	}
	w.current = p
	w.logger.Info("profile reloaded", zap.String("path", w.path))
	return Reload{Profile: p, Triggers: p.TriggerTable()}, true
}

// #endregion run
