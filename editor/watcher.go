package editor

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watcher reports external writes to an open note so the buffer can
// be reloaded. The note's directory is watched rather than the file
// itself; editors that write via rename would otherwise detach the
// watch on every save.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	logger  *log.Logger
	done    chan struct{}
}

// NewWatcher starts watching the note at path. onChange is invoked
// from the watch goroutine for every external write or create of the
// file.
func NewWatcher(path string, onChange func(), logger *log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = log.Default()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve note path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch note directory: %w", err)
	}

	w := &Watcher{
		watcher: fsw,
		path:    abs,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go w.loop(onChange)

	logger.Debug("watching note", "path", abs)
	return w, nil
}

func (w *Watcher) loop(onChange func()) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debug("note changed on disk", "event", event.Op)
			onChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Debug("watch error", "err", err)
		case <-w.done:
			return
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
