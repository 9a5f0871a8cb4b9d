package runner

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/displayname/internal/debug"
	"github.com/standardbeagle/displayname/pkg/pathutil"
)

// Watcher re-runs the runner on files that change below the watched paths
type Watcher struct {
	runner    *Runner
	watcher   *fsnotify.Watcher
	debouncer *eventDebouncer
	onReport  func(*Report, error)

	// explicitly named files are watched through their directory
	files map[string]bool
	roots []string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher that hands every batch's report to onReport
func NewWatcher(r *Runner, onReport func(*Report, error)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		runner:   r,
		watcher:  watcher,
		onReport: onReport,
		files:    make(map[string]bool),
		ctx:      ctx,
		cancel:   cancel,
	}
	debounce := time.Duration(r.cfg.Performance.WatchDebounceMs) * time.Millisecond
	w.debouncer = newEventDebouncer(debounce, w.runBatch)
	return w, nil
}

// Start adds watches for paths and begins processing events
func (w *Watcher) Start(paths []string) error {
	for _, p := range paths {
		abs := pathutil.ToAbsolute(p, w.runner.root)
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", abs, err)
		}
		if !info.IsDir() {
			w.files[abs] = true
			if err := w.watcher.Add(filepath.Dir(abs)); err != nil {
				return fmt.Errorf("failed to watch %s: %w", abs, err)
			}
			continue
		}
		if err := w.addWatches(abs); err != nil {
			return fmt.Errorf("failed to add watches starting from %s: %w", abs, err)
		}
		w.roots = append(w.roots, abs)
	}

	w.wg.Add(1)
	go w.processEvents()

	debug.LogWatch("watching %d path(s)\n", len(paths))
	return nil
}

// Stop stops watching and waits for a running batch to finish
func (w *Watcher) Stop() error {
	w.cancel()
	w.debouncer.stop()

	if err := w.watcher.Close(); err != nil {
		log.Printf("Error closing fsnotify watcher: %v", err)
	}
	w.wg.Wait()
	w.debouncer.wait()
	return nil
}

// addWatches watches root and every directory below it that is not excluded
func (w *Watcher) addWatches(root string) error {
	// symlinked directories can form cycles
	visitedDirs := make(map[string]bool)

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}

		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if visitedDirs[realPath] {
			return filepath.SkipDir
		}
		visitedDirs[realPath] = true

		if path != root && w.runner.excludedDir(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to add watch for %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
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
			log.Printf("File watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	debug.LogWatch("event %v for %s\n", event.Op, path)

	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		w.runner.cache.Forget(path)
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.IsDir() {
		if event.Op&fsnotify.Create != 0 && !w.runner.excludedDir(path) {
			if err := w.addWatches(path); err != nil {
				log.Printf("Warning: failed to add watch for new directory %s: %v", path, err)
			}
		}
		return
	}

	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if !w.files[path] && !w.underRoot(path) {
		return
	}
	w.debouncer.addEvent(path)
}

// underRoot reports supported files below a watched directory
func (w *Watcher) underRoot(path string) bool {
	if !w.runner.wanted(path) {
		return false
	}
	for _, root := range w.roots {
		if strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) runBatch(paths []string) {
	if w.ctx.Err() != nil {
		return
	}
	start := time.Now()
	report, err := w.runner.Run(w.ctx, paths)
	debug.LogWatch("processed %d file(s) in %v\n", len(paths), time.Since(start))
	if w.onReport != nil {
		w.onReport(report, err)
	}
}

// eventDebouncer collects changed paths until no event arrived for the
// debounce period, then hands them over as one batch
type eventDebouncer struct {
	paths    map[string]bool
	mutex    sync.Mutex
	debounce time.Duration
	timer    *time.Timer
	stopped  bool
	flushFn  func([]string)
	running  sync.WaitGroup
}

func newEventDebouncer(debounce time.Duration, flush func([]string)) *eventDebouncer {
	return &eventDebouncer{
		paths:    make(map[string]bool),
		debounce: debounce,
		flushFn:  flush,
	}
}

func (d *eventDebouncer) addEvent(path string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.stopped {
		return
	}

	d.paths[path] = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.debounce, d.flush)
}

func (d *eventDebouncer) flush() {
	d.mutex.Lock()
	if d.stopped || len(d.paths) == 0 {
		d.mutex.Unlock()
		return
	}
	batch := make([]string, 0, len(d.paths))
	for p := range d.paths {
		batch = append(batch, p)
	}
	d.paths = make(map[string]bool)
	d.running.Add(1)
	d.mutex.Unlock()

	defer d.running.Done()
	sort.Strings(batch)
	d.flushFn(batch)
}

// stop drops pending events; a batch already running is not interrupted
func (d *eventDebouncer) stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.paths = make(map[string]bool)
}

func (d *eventDebouncer) wait() {
	d.running.Wait()
}
