package content

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/anima-content/engine/core"
)

// Watcher reports content files changing under a root directory. Changes are
// delivered as asset names (relative, '/' separated, without extension) on
// Changes; nothing is reloaded from the watcher goroutine.
type Watcher struct {
	root    string
	watcher *fsnotify.Watcher

	changes chan string
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// NewWatcher starts watching root and every directory below it.
func NewWatcher(root string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create file watcher")
	}
	w := &Watcher{
		root:    filepath.Clean(root),
		watcher: fsw,
		changes: make(chan string, 64),
		errors:  make(chan error, 1),
		done:    make(chan struct{}),
	}
	if err := w.watchRecursive(w.root); err != nil {
		fsw.Close()
		return nil, err
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Changes delivers the names of changed assets. A full buffer drops
// duplicates rather than blocking the watcher.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

func (w *Watcher) Errors() <-chan error {
	return w.errors
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
		close(w.changes)
		close(w.errors)
	})
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(e)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			core.LogError("content watcher: %v", err)
			select {
			case w.errors <- err:
			default:
			}
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(e fsnotify.Event) {
	if e.Op&fsnotify.Create != 0 {
		if fi, err := os.Stat(e.Name); err == nil && fi.IsDir() {
			if err := w.watchRecursive(e.Name); err != nil {
				core.LogWarn("watch %s: %v", e.Name, err)
			}
			return
		}
	}
	if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	name, ok := AssetName(w.root, e.Name)
	if !ok {
		return
	}
	select {
	case w.changes <- name:
	case <-w.done:
	default:
		core.LogDebug("content watcher buffer full, dropping %s", name)
	}
}

func (w *Watcher) watchRecursive(dir string) error {
	return filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(p)
		}
		return nil
	})
}

// AssetName converts a file path under root into the asset name it serves:
// "Content/fonts/arial.xnb" under "Content" is "fonts/arial".
func AssetName(root, file string) (string, bool) {
	rel, err := filepath.Rel(root, file)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, filepath.Ext(rel)), true
}
