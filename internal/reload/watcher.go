// Package reload detects edits to the token file while the bot runs.
package reload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher tracks the modification time of one file. Filesystem events only
// wake the consumer early; Changed is the authoritative check.
type Watcher struct {
	path    string
	notify  chan struct{}
	logger  *zap.Logger
	mu      sync.Mutex
	lastMod time.Time
}

// NewWatcher records the current modification time of path.
func NewWatcher(path string, logger *zap.Logger) (*Watcher, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return &Watcher{
		path:    filepath.Clean(path),
		notify:  make(chan struct{}, 1),
		logger:  logger.Named("watcher"),
		lastMod: info.ModTime(),
	}, nil
}

// Changed reports whether the file's modification time moved since the last
// call that returned true.
func (w *Watcher) Changed() (bool, error) {
	info, err := os.Stat(w.path)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", w.path, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if info.ModTime().Equal(w.lastMod) {
		return false, nil
	}
	w.logger.Debug("File modified",
		zap.String("path", w.path),
		zap.Time("mtime", info.ModTime()))
	w.lastMod = info.ModTime()
	return true, nil
}

// Notify is signalled when the file may have changed.
func (w *Watcher) Notify() <-chan struct{} { return w.notify }

func (w *Watcher) signal() {
	select {
	case w.notify <- struct{}{}:
	default:
	}
}

// Run watches the file's directory until ctx is cancelled. Editors often
// replace files by rename, so the directory is watched rather than the file.
// When no watch can be set up, Run logs why and waits for ctx; callers keep
// detecting edits through Changed.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return w.pollOnly(ctx, err)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return w.pollOnly(ctx, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.signal()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) pollOnly(ctx context.Context, err error) error {
	w.logger.Warn("File events unavailable, relying on polling",
		zap.String("path", w.path),
		zap.Error(err))
	<-ctx.Done()
	return nil
}
