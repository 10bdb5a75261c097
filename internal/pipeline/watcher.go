package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// Watcher watches a source tree and invokes a callback with the batch of
// changed files after a quiet period, so a burst of editor saves triggers
// one rebuild.
type Watcher struct {
	watcher  *fsnotify.Watcher
	root     string
	include  []glob.Glob
	exclude  []glob.Glob
	debounce time.Duration
	callback func(rels []string)

	ctx    context.Context
	cancel context.CancelFunc

	accumulated   map[string]bool
	accumulatedMu sync.Mutex
	timer         *time.Timer
	timerMu       sync.Mutex

	stopOnce sync.Once
	doneCh   chan struct{}
}

// NewWatcher creates a watcher over root. include/exclude use the same
// slash-separated glob patterns as Discover.
func NewWatcher(root string, include, exclude []string) (*Watcher, error) {
	inc, err := compilePatterns(include)
	if err != nil {
		return nil, err
	}
	exc, err := compilePatterns(exclude)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:     fsw,
		root:        root,
		include:     inc,
		exclude:     exc,
		debounce:    500 * time.Millisecond,
		accumulated: make(map[string]bool),
		doneCh:      make(chan struct{}),
	}

	if err := w.addDirectoriesRecursively(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// SetDebounce overrides the quiet period (useful for tests).
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Start begins watching. The callback receives sorted relative paths.
func (w *Watcher) Start(ctx context.Context, callback func(rels []string)) error {
	if callback == nil {
		return nil
	}
	w.callback = callback
	w.ctx, w.cancel = context.WithCancel(ctx)

	go w.watch()
	return nil
}

// Stop stops the watcher. Idempotent.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.doneCh
		} else {
			close(w.doneCh)
		}
		err = w.watcher.Close()
	})
	return err
}

// addDirectoriesRecursively registers dir and every non-hidden
// subdirectory with fsnotify.
func (w *Watcher) addDirectoriesRecursively(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) watch() {
	defer close(w.doneCh)

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are transient; keep going.
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// New directories must be registered before anything inside them
	// changes.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addDirectoriesRecursively(event.Name)
			return
		}
	}

	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	if len(w.include) > 0 && !matchAny(w.include, rel) {
		return
	}
	if matchAny(w.exclude, rel) {
		return
	}

	w.accumulatedMu.Lock()
	w.accumulated[rel] = true
	w.accumulatedMu.Unlock()

	w.resetTimer()
}

// resetTimer (re)arms the debounce timer; the callback fires once the
// events go quiet.
func (w *Watcher) resetTimer() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.accumulatedMu.Lock()
	rels := make([]string, 0, len(w.accumulated))
	for rel := range w.accumulated {
		rels = append(rels, rel)
	}
	w.accumulated = make(map[string]bool)
	w.accumulatedMu.Unlock()

	if len(rels) == 0 {
		return
	}
	sort.Strings(rels)

	select {
	case <-w.ctx.Done():
	default:
		w.callback(rels)
	}
}
