// Package watch re-formats JSON files as they change on disk.
package watch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	jerrors "jsonator/internal/errors"
	"jsonator/internal/logging"
	"jsonator/internal/processor"
	"jsonator/internal/report"
)

const DefaultDebounce = 300 * time.Millisecond

type Options struct {
	Recursive bool
	// Debounce is the quiet period after the last event for a path before
	// it is processed.
	Debounce time.Duration
}

// Watcher runs every changed .json file through a Processor. Each file gets a
// fresh Report; a write made by the watcher itself comes back as an event and
// resolves to unchanged.
type Watcher struct {
	proc    *processor.Processor
	mode    processor.Mode
	opts    Options
	log     logging.Logger
	diffOut io.Writer

	// mu serializes processing so diffs and messages never interleave.
	mu sync.Mutex

	timersMu sync.Mutex
	timers   map[string]*time.Timer
	pending  sync.WaitGroup

	ready chan struct{}
}

func New(proc *processor.Processor, mode processor.Mode, opts Options, log logging.Logger, diffOut io.Writer) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Watcher{
		proc:    proc,
		mode:    mode,
		opts:    opts,
		log:     log,
		diffOut: diffOut,
		timers:  make(map[string]*time.Timer),
		ready:   make(chan struct{}),
	}
}

// Ready is closed once the initial watches are registered.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run blocks until ctx is done. root may be a directory or a single file.
func (w *Watcher) Run(ctx context.Context, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return jerrors.ErrNotFound(root)
		}
		return jerrors.ErrIO("stat", root, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	match := processor.IsJSONFile
	if !info.IsDir() {
		file := filepath.Clean(root)
		match = func(path string) bool { return filepath.Clean(path) == file }
		if err := fw.Add(filepath.Dir(file)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", root, err)
		}
	} else if err := w.addTree(fw, root); err != nil {
		return err
	}

	w.log.Info("watching " + root)
	close(w.ready)

	for {
		select {
		case <-ctx.Done():
			w.stop()
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				w.stop()
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if event.Has(fsnotify.Create) && w.opts.Recursive && info.IsDir() {
				if st, err := os.Stat(event.Name); err == nil && st.IsDir() {
					if err := w.addTree(fw, event.Name); err != nil {
						w.log.Warn("watch error", "error", err)
					}
					continue
				}
			}

			if match(event.Name) {
				w.schedule(event.Name)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				w.stop()
				return nil
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	if !w.opts.Recursive {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		return nil
	}

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			return nil
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// schedule (re)starts the debounce timer for path.
func (w *Watcher) schedule(path string) {
	w.timersMu.Lock()
	defer w.timersMu.Unlock()

	if t, ok := w.timers[path]; ok && t.Stop() {
		w.pending.Done()
	}

	w.pending.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(w.opts.Debounce, func() {
		defer w.pending.Done()

		w.timersMu.Lock()
		if w.timers[path] == timer {
			delete(w.timers, path)
		}
		w.timersMu.Unlock()

		w.handle(path)
	})
	w.timers[path] = timer
}

func (w *Watcher) handle(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	rep := report.New(w.mode.CheckOnly, w.mode.ShowDiff, w.log)
	res := w.proc.Process(path)
	processor.Record(rep, res)

	if res.Diff != "" && w.diffOut != nil {
		_, _ = io.WriteString(w.diffOut, res.Diff)
	}
	w.log.Info(rep.Summary(), "path", path)
}

// stop cancels timers that have not fired and waits for running ones.
func (w *Watcher) stop() {
	w.timersMu.Lock()
	for path, t := range w.timers {
		if t.Stop() {
			w.pending.Done()
		}
		delete(w.timers, path)
	}
	w.timersMu.Unlock()

	w.pending.Wait()
}
