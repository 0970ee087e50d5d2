package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a definition file when it changes on disk. The parent
// directory is watched rather than the file itself, since editors typically
// replace files instead of writing them in place.
type Watcher struct {
	path    string
	loader  *Loader
	onLoad  func(*Definition, error)
	watcher *fsnotify.Watcher

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewWatcher starts watching the definition file at path. On every change
// the file is re-parsed and onLoad is invoked with the result; parse and
// validation failures are delivered as the error argument so a running
// engine can keep its last good definition.
func NewWatcher(path string, loader *Loader, onLoad func(*Definition, error)) (*Watcher, error) {
	if loader == nil {
		loader = NewLoader()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	if err := fw.Add(filepath.Dir(absPath)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}

	w := &Watcher{
		path:    absPath,
		loader:  loader,
		onLoad:  onLoad,
		watcher: fw,
		done:    make(chan struct{}),
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

// Path returns the watched file path.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops watching and waits for the event loop to exit.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.matches(event) {
				continue
			}
			def, err := w.loader.LoadFile(w.path)
			w.onLoad(def, err)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.onLoad(nil, fmt.Errorf("watch error: %w", err))
		}
	}
}

// matches reports whether the event concerns the watched file and changes
// its content.
func (w *Watcher) matches(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Rename)
}
