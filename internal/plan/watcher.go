package plan

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher provides a fast-path notification when the plan file changes,
// backing the supervisor's per-tick HasChanges check with an event rather
// than a stat syscall. It degrades silently: external writers on some
// filesystems don't emit inotify-friendly write-then-rename events, so the
// supervisor always falls back to Store.HasChanges regardless of whether
// the watch is healthy.
type Watcher struct {
	watcher *fsnotify.Watcher
	Changed chan struct{}
}

// NewWatcher watches dir (the .cctakt directory) for changes. If the
// underlying fsnotify watcher can't be created, it returns a Watcher whose
// Changed channel is never written to — callers should keep polling
// Store.HasChanges either way.
func NewWatcher(dir string) *Watcher {
	w := &Watcher{Changed: make(chan struct{}, 1)}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return w
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return w
	}
	w.watcher = fw

	go w.pump()
	return w
}

func (w *Watcher) pump() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name == "" {
				continue
			}
			select {
			case w.Changed <- struct{}{}:
			default:
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops the underlying watch, if any was established.
func (w *Watcher) Close() {
	if w.watcher != nil {
		w.watcher.Close()
	}
}

// Poll drains a pending change notification without blocking, debounced
// by a short settle delay so a writer's write-then-rename doesn't produce
// a storm of wakeups.
func (w *Watcher) Poll(settle time.Duration) bool {
	select {
	case <-w.Changed:
		time.Sleep(settle)
		for {
			select {
			case <-w.Changed:
				continue
			default:
				return true
			}
		}
	default:
		return false
	}
}
