// Package watcher provides debounced filesystem watching for the dev
// server's live reload.
//
// Rapid successions of writes (editors, asset pipelines) are grouped into a
// single batch per debounce window, deduplicated by path.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kattalitextile/sitekit/internal/logging"
)

// AssetWatcher watches site content for changes with debouncing.
type AssetWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	filters   []Filter
	handlers  []Handler
	logger    logging.Logger
	mutex     sync.RWMutex
}

// Change represents one file change.
type Change struct {
	Op   string
	Path string
}

// Filter decides whether a path is interesting.
type Filter func(path string) bool

// Handler consumes a debounced batch of changes.
type Handler func(changes []Change)

type debouncer struct {
	delay   time.Duration
	events  chan Change
	output  chan []Change
	timer   *time.Timer
	pending []Change
	mutex   sync.Mutex
}

// New creates an asset watcher with the given debounce window.
func New(debounce time.Duration, logger logging.Logger) (*AssetWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &AssetWatcher{
		watcher: fsw,
		debouncer: &debouncer{
			delay:  debounce,
			events: make(chan Change, 100),
			output: make(chan []Change, 10),
		},
		logger: logger.WithComponent("watcher"),
	}, nil
}

// AddFilter adds a path filter. All filters must accept a path for it to be
// reported.
func (w *AssetWatcher) AddFilter(filter Filter) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.filters = append(w.filters, filter)
}

// AddHandler adds a batch handler.
func (w *AssetWatcher) AddHandler(handler Handler) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.handlers = append(w.handlers, handler)
}

// AddRecursive watches a directory tree.
func (w *AssetWatcher) AddRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

// Start launches the watch loops. They stop when the context is cancelled.
func (w *AssetWatcher) Start(ctx context.Context) {
	go w.debouncer.run(ctx)
	go w.dispatch(ctx)
	go w.watch(ctx)
}

// Stop closes the underlying watcher.
func (w *AssetWatcher) Stop() error {
	w.debouncer.mutex.Lock()
	if w.debouncer.timer != nil {
		w.debouncer.timer.Stop()
	}
	w.debouncer.mutex.Unlock()

	return w.watcher.Close()
}

func (w *AssetWatcher) watch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, err, "watch error")
		}
	}
}

func (w *AssetWatcher) handleEvent(event fsnotify.Event) {
	w.mutex.RLock()
	filters := w.filters
	w.mutex.RUnlock()

	for _, filter := range filters {
		if !filter(event.Name) {
			return
		}
	}

	change := Change{Op: event.Op.String(), Path: event.Name}

	select {
	case w.debouncer.events <- change:
	default:
		// Channel full, skip this event
	}
}

func (w *AssetWatcher) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case changes := <-w.debouncer.output:
			w.mutex.RLock()
			handlers := w.handlers
			w.mutex.RUnlock()

			for _, handler := range handlers {
				handler(changes)
			}
		}
	}
}

func (d *debouncer) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case change := <-d.events:
			d.add(change)
		}
	}
}

func (d *debouncer) add(change Change) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.pending = append(d.pending, change)

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

func (d *debouncer) flush() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if len(d.pending) == 0 {
		return
	}

	// Deduplicate by path, keeping the last op seen
	byPath := make(map[string]Change, len(d.pending))
	order := make([]string, 0, len(d.pending))
	for _, c := range d.pending {
		if _, seen := byPath[c.Path]; !seen {
			order = append(order, c.Path)
		}
		byPath[c.Path] = c
	}

	changes := make([]Change, 0, len(order))
	for _, path := range order {
		changes = append(changes, byPath[path])
	}

	select {
	case d.output <- changes:
	default:
		// Channel full, skip
	}

	d.pending = d.pending[:0]
}

// SiteAssetFilter accepts the file types the shell serves.
func SiteAssetFilter(path string) bool {
	switch filepath.Ext(path) {
	case ".html", ".css", ".js", ".svg", ".json":
		return true
	default:
		return false
	}
}

// NoHiddenFilter rejects dotfiles and dot-directories.
func NoHiddenFilter(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return false
		}
	}
	return true
}
