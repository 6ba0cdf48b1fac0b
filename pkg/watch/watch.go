// Package watch re-runs a callback whenever a catalogue tree changes.
//
// The watcher subscribes to every directory under the root (fsnotify is not
// recursive) and picks up directories created later, such as a new product
// or its versions/ folder. Bursts of events are collapsed: the callback runs
// once the tree has been quiet for the debounce interval. Callbacks never
// overlap.
package watch

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period before the callback runs. Zero runs it on
	// the next loop iteration after an event.
	Debounce time.Duration

	// Ignore reports paths whose events should not trigger the callback.
	Ignore func(path string) bool

	// Abort reports callback errors that should stop Run. Other errors are
	// logged and watching continues.
	Abort func(err error) bool

	Logger *log.Logger
}

// Watcher watches one catalogue tree.
type Watcher struct {
	root string
	opts Options
	fsw  *fsnotify.Watcher
}

// New creates a watcher for root and subscribes to every directory below it.
func New(root string, opts Options) (*Watcher, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{root: root, opts: opts, fsw: fsw}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close releases the underlying OS watches.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run blocks until ctx is cancelled, calling onChange after each settled
// burst of changes. Errors from onChange are logged and do not stop the
// loop, so a half-edited tree can be fixed while watching, unless
// Options.Abort reports them; Run then returns that error.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.ignored(ev.Name) {
				continue
			}
			w.opts.Logger.Debug("change", "path", ev.Name, "op", ev.Op)
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						w.opts.Logger.Warn("watch new directory", "path", ev.Name, "err", err)
					}
				}
			}
			pending = time.After(w.opts.Debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.opts.Logger.Warn("watch error", "err", err)

		case <-pending:
			pending = nil
			if err := onChange(ctx); err != nil {
				if w.opts.Abort != nil && w.opts.Abort(err) {
					return err
				}
				w.opts.Logger.Error("rebuild failed", "err", err)
			}
		}
	}
}

func (w *Watcher) ignored(path string) bool {
	return w.opts.Ignore != nil && w.opts.Ignore(path)
}

// addTree subscribes to dir and every directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.fsw.Add(path)
	})
}
