package scenario

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FileWatcher polls file modification times and triggers a callback on change.
// Files that appear after the first scan count as changed.
type FileWatcher struct {
	Paths     []string
	Interval  time.Duration
	onChange  func(string) // called with path that changed
	log       zerolog.Logger
	stopCh    chan struct{}
	stopOnce  sync.Once
	lastMTime map[string]time.Time
}

// NewFileWatcher creates a watcher for given paths and interval.
func NewFileWatcher(paths []string, interval time.Duration, onChange func(string)) *FileWatcher {
	return &FileWatcher{
		Paths:     paths,
		Interval:  interval,
		onChange:  onChange,
		log:       zerolog.Nop(),
		stopCh:    make(chan struct{}),
		lastMTime: make(map[string]time.Time),
	}
}

// WithLogger sets the logger used to report detected changes.
func (w *FileWatcher) WithLogger(l zerolog.Logger) *FileWatcher {
	w.log = l
	return w
}

// Start primes the mtime cache, then polls in a goroutine.
func (w *FileWatcher) Start() {
	w.scanAll(true)
	ticker := time.NewTicker(w.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.scanAll(false)
			case <-w.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the watcher. Safe to call more than once.
func (w *FileWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// scanAll checks mtimes and invokes onChange for files that changed since last scan.
func (w *FileWatcher) scanAll(prime bool) {
	for _, p := range w.Paths {
		fi, err := os.Stat(p)
		if err != nil {
			// missing files are optional layers; keep going
			continue
		}
		mt := fi.ModTime()
		last, ok := w.lastMTime[p]
		w.lastMTime[p] = mt
		if prime || (ok && !mt.After(last)) {
			continue
		}
		w.log.Debug().Str("path", p).Time("mtime", mt).Msg("config changed")
		if w.onChange != nil {
			w.onChange(p)
		}
	}
}

// Watch polls every layer file of (name, task) and invalidates the loader
// cache before calling onChange. The caller must Stop the returned watcher.
func (l *Loader) Watch(name, task string, interval time.Duration, log zerolog.Logger, onChange func(string)) *FileWatcher {
	w := NewFileWatcher(l.paths.Files(name, task), interval, func(p string) {
		l.Invalidate()
		if onChange != nil {
			onChange(p)
		}
	}).WithLogger(log)
	w.Start()
	return w
}
