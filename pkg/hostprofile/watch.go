package hostprofile

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchFile watches path (the on-disk blob backing this Store, typically
// "<dir>/itmux.hosts.blob") for out-of-process writes — e.g. a user
// hand-editing the file directly — and calls reload whenever it settles
// after a burst of changes. The watch is placed on path's directory and
// filtered to events for path, so a write that replaces the file by rename
// is seen as a Create. It returns a stop function; calling it closes the
// watcher and its goroutine.
//
// Errors from the underlying watcher are logged and otherwise ignored: a
// watch failure should never be fatal to the rest of the program, the same
// posture this module takes everywhere else for "absorb and continue"
// conditions.
func WatchFile(path string, reload func()) (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		const debounceDelay = 150 * time.Millisecond
		var timer *time.Timer
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounceDelay, reload)
			case werr, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("hostprofile: watch error", "path", path, "error", werr)
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		_ = w.Close()
	}, nil
}
