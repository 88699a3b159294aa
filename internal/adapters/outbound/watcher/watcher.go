// Package watcher reports debounced batches of file changes beneath a
// validation target.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is the quiet period after the last event before a batch
// is delivered.
const DefaultDebounce = 300 * time.Millisecond

var skipDirs = []string{".git", ".dataval", "node_modules"}

// Batch is the set of files changed or removed during one quiet period.
// Both lists are sorted.
type Batch struct {
	Changed []string
	Removed []string
}

// Empty reports whether the batch carries no paths.
func (b Batch) Empty() bool { return len(b.Changed) == 0 && len(b.Removed) == 0 }

// Watcher follows a file or a directory tree.
type Watcher struct {
	root     string
	isFile   bool
	debounce time.Duration
	excludes []string
	accept   func(path string) bool
	log      *logrus.Logger
	ready    chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithExcludes skips directories with these names.
func WithExcludes(names ...string) Option {
	return func(w *Watcher) { w.excludes = names }
}

// WithFilter limits reported files to those accept returns true for.
func WithFilter(accept func(path string) bool) Option {
	return func(w *Watcher) { w.accept = accept }
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Logger) Option {
	return func(w *Watcher) { w.log = log }
}

// New returns a watcher for root, which must exist.
func New(root string, opts ...Option) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("target %s: %w", root, err)
	}
	w := &Watcher{
		root:     filepath.Clean(root),
		isFile:   !info.IsDir(),
		debounce: DefaultDebounce,
		accept:   func(string) bool { return true },
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = logrus.New()
		w.log.SetOutput(io.Discard)
	}
	return w, nil
}

// Ready is closed once the initial watches are in place.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Run delivers batches to onBatch until ctx is done. onBatch runs on the
// watching goroutine; events arriving meanwhile are queued by fsnotify.
func (w *Watcher) Run(ctx context.Context, onBatch func(Batch)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if w.isFile {
		err = fw.Add(filepath.Dir(w.root))
	} else {
		err = w.addTree(fw, w.root, nil)
	}
	if err != nil {
		return fmt.Errorf("watching %s: %w", w.root, err)
	}
	close(w.ready)
	w.log.WithField("path", w.root).Debug("watching")

	pending := make(map[string]bool)
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(fw, ev, pending)
			if len(pending) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("watcher error")
		case <-fire:
			fire = nil
			batch := flush(pending)
			if !batch.Empty() {
				onBatch(batch)
			}
		}
	}
}

func (w *Watcher) handle(fw *fsnotify.Watcher, ev fsnotify.Event, pending map[string]bool) {
	name := filepath.Clean(ev.Name)
	if w.isFile && name != w.root {
		return
	}
	if w.skipped(name) {
		return
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(name); err == nil && info.IsDir() {
			// Files written before the watch was added would be missed.
			if err := w.addTree(fw, name, pending); err != nil {
				w.log.WithError(err).WithField("path", name).Warn("cannot watch new directory")
			}
			return
		}
	}
	if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		if w.accept(name) {
			pending[name] = true
		}
	}
}

// addTree watches dir and its subdirectories. When pending is non-nil the
// files already present are queued as changed.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string, pending map[string]bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if path != dir && w.skipped(path) {
				return filepath.SkipDir
			}
			return fw.Add(path)
		}
		if pending != nil && d.Type().IsRegular() && w.accept(path) {
			pending[path] = true
		}
		return nil
	})
}

func (w *Watcher) skipped(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if slices.Contains(skipDirs, part) || slices.Contains(w.excludes, part) {
			return true
		}
	}
	return false
}

// flush resolves each pending path against the filesystem and empties pending.
func flush(pending map[string]bool) Batch {
	var b Batch
	for p := range pending {
		delete(pending, p)
		info, err := os.Stat(p)
		switch {
		case err == nil && info.Mode().IsRegular():
			b.Changed = append(b.Changed, p)
		case err != nil:
			b.Removed = append(b.Removed, p)
		}
	}
	sort.Strings(b.Changed)
	sort.Strings(b.Removed)
	return b
}
