// Package watch maps filesystem changes under a root directory to actions.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/adnsv/sitepipe/model"
	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is how long a rule waits for a burst of events to settle.
const DefaultDelay = 200 * time.Millisecond

// Action receives the changed files, slash separated and relative to the root.
type Action func(ctx context.Context, files []string) error

type Rule struct {
	Name     string
	Patterns []string // relative to the root, "!" excludes
	Action   Action
}

type Watcher struct {
	root  string
	log   *slog.Logger
	delay time.Duration
	rules []*rule
	ready chan struct{}
}

type Option func(*Watcher)

func WithDelay(d time.Duration) Option {
	return func(w *Watcher) { w.delay = d }
}

type rule struct {
	Rule
	mu      sync.Mutex
	pending map[string]struct{}
	kick    chan struct{}
}

func New(root string, log *slog.Logger, opts ...Option) *Watcher {
	w := &Watcher{
		root:  root,
		log:   log,
		delay: DefaultDelay,
		ready: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Watcher) Add(r Rule) {
	w.rules = append(w.rules, &rule{
		Rule:    r,
		pending: map[string]struct{}{},
		kick:    make(chan struct{}, 1),
	})
}

// Ready is closed once the initial directories are being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is cancelled. A rule never runs concurrently with
// itself; changes that arrive while it runs queue a single rerun. Action
// errors are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	for _, r := range w.rules {
		for _, b := range model.Bases(r.Patterns) {
			if err := w.addTree(fsw, w.existingDir(filepath.Join(w.root, filepath.FromSlash(b))), nil); err != nil {
				return err
			}
		}
	}
	close(w.ready)
	w.log.Info("watching", "root", w.root, "rules", len(w.rules), "dirs", len(fsw.WatchList()))

	var wg sync.WaitGroup
	for _, r := range w.rules {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop(ctx, r)
		}()
	}
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "err", err)
		}
	}
}

func (w *Watcher) handle(fsw *fsnotify.Watcher, ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod {
		return
	}
	if ev.Has(fsnotify.Create) {
		if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
			// files may land in a new directory before it is watched
			if err := w.addTree(fsw, ev.Name, func(fn string) { w.dispatch(fn, fsnotify.Create) }); err != nil {
				w.log.Warn("watch error", "dir", ev.Name, "err", err)
			}
			return
		}
	}
	w.dispatch(ev.Name, ev.Op)
}

func (w *Watcher) dispatch(fn string, op fsnotify.Op) {
	rel, err := filepath.Rel(w.root, fn)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	for _, r := range w.rules {
		if model.Match(r.Patterns, rel) {
			w.log.Debug("changed", "file", rel, "op", op.String(), "rule", r.Name)
			r.trigger(rel)
		}
	}
}

func (w *Watcher) loop(ctx context.Context, r *rule) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.kick:
		}

		timer := time.NewTimer(w.delay)
	settle:
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-r.kick:
				timer.Reset(w.delay)
			case <-timer.C:
				break settle
			}
		}

		files := r.drain()
		if err := r.Action(ctx, files); err != nil && !errors.Is(err, context.Canceled) {
			w.log.Error("watch action failed", "rule", r.Name, "err", err)
		}
	}
}

func (r *rule) trigger(file string) {
	r.mu.Lock()
	r.pending[file] = struct{}{}
	r.mu.Unlock()
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

func (r *rule) drain() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	files := make([]string, 0, len(r.pending))
	for f := range r.pending {
		files = append(files, f)
	}
	clear(r.pending)
	sort.Strings(files)
	return files
}

// existingDir returns dir or its closest existing ancestor.
func (w *Watcher) existingDir(dir string) string {
	for {
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string, onFile func(string)) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			if onFile != nil {
				onFile(p)
			}
			return nil
		}
		if name := d.Name(); p != dir && (name == "node_modules" || name == ".git") {
			return filepath.SkipDir
		}
		return fsw.Add(p)
	})
}
