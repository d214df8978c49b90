// Package watch reruns a callback when a single file settles after a change.
package watch

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long a file must be quiet before the callback runs.
const DefaultDebounce = 300 * time.Millisecond

// ChangeFunc is called with the new file contents after each settled change.
type ChangeFunc func(ctx context.Context, content []byte) error

// Watcher watches one file through its parent directory, so editors that
// replace the file by rename are still seen.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *zap.Logger

	last [sha256.Size]byte
	// seeded is false until the first hash is taken.
	seeded bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New returns a watcher for path.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	w := &Watcher{path: abs, debounce: DefaultDebounce, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Run blocks until ctx is cancelled. Content identical to the previous
// version is ignored; the version on disk when Run starts counts as seen.
// Callback errors are logged and watching continues.
func (w *Watcher) Run(ctx context.Context, onChange ChangeFunc) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}
	if content, err := os.ReadFile(w.path); err == nil {
		w.changed(content)
	}
	w.logger.Info("watching for changes", zap.String("path", w.path), zap.Duration("debounce", w.debounce))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch stopped", zap.String("path", w.path))
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return errors.New("watch event channel closed")
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("file event", zap.String("op", event.Op.String()))
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return errors.New("watch error channel closed")
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-timer.C:
			content, err := os.ReadFile(w.path)
			if err != nil {
				w.logger.Warn("changed file unreadable", zap.String("path", w.path), zap.Error(err))
				continue
			}
			if !w.changed(content) {
				w.logger.Debug("content unchanged, skipping", zap.String("path", w.path))
				continue
			}
			if err := onChange(ctx, content); err != nil {
				w.logger.Warn("change handler failed", zap.String("path", w.path), zap.Error(err))
			}
		}
	}
}

// changed records the content hash and reports whether it differs from the last one.
func (w *Watcher) changed(content []byte) bool {
	sum := sha256.Sum256(content)
	if w.seeded && sum == w.last {
		return false
	}
	w.last = sum
	w.seeded = true
	return true
}
