package orchestrate

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mu-graph/mu/scan"
	"github.com/mu-graph/mu/store"
)

// ChangeEvent reports the outcome of reprocessing one changed file, emitted
// on Watcher.Events() for subscribers (e.g. a running `mu watch` CLI
// session or an editor integration) to react to.
type ChangeEvent struct {
	FilePath  string
	ChangeSet store.ChangeSet
	Err       error
}

// Watcher debounces raw fsnotify events into a settled set of changed
// files, then asks a Pipeline to reprocess each one and broadcasts the
// result, per spec §4.11's incremental-update pipeline.
type Watcher struct {
	pipeline *Pipeline
	fsw      *fsnotify.Watcher
	debounce time.Duration

	mu          sync.Mutex
	pending     map[string]time.Time
	running     bool
	stopCh      chan struct{}
	doneCh      chan struct{}
	events      chan ChangeEvent
}

// NewWatcher creates a Watcher over pipeline's project root with the given
// debounce window (defaults to 300ms if zero).
func NewWatcher(pipeline *Pipeline, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &Watcher{
		pipeline: pipeline,
		fsw:      fsw,
		debounce: debounce,
		pending:  map[string]time.Time{},
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		events:   make(chan ChangeEvent, 64),
	}, nil
}

// Events returns the channel ChangeEvents are published on. Callers should
// drain it continuously; Watcher does not block waiting for a reader to
// consume a full channel (an event is dropped rather than stalling the
// watch loop).
func (w *Watcher) Events() <-chan ChangeEvent {
	return w.events
}

// Start recursively registers every directory under root with fsnotify and
// begins the debounced event loop in a background goroutine.
func (w *Watcher) Start(ctx context.Context, root string) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := addDirsRecursive(w.fsw, root); err != nil {
		return err
	}

	go w.run(ctx)
	return nil
}

func addDirsRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if name == ".git" || name == "node_modules" || name == ".mu" {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

// Stop halts the watch loop and waits for it to finish.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	return w.fsw.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounce / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		case <-ticker.C:
			w.flushSettled(ctx)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if scan.LanguageFor(ev.Name) == scan.LangUnknown {
		return
	}
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.mu.Lock()
	w.pending[ev.Name] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flushSettled(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			settled = append(settled, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range settled {
		changes, err := w.pipeline.ReprocessFile(ctx, path)
		event := ChangeEvent{FilePath: path, ChangeSet: changes, Err: err}
		select {
		case w.events <- event:
		default:
		}
	}
}
