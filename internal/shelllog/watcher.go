package shelllog

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher follows a shell log and emits records appended after it started
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	offset    int64 // read offset for incremental parsing
	mu        sync.Mutex
	logger    *zap.Logger

	Events chan Record
	Errors chan error
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher for the log at path. Records already in the
// log are not reported. The log does not need to exist yet.
func NewWatcher(path string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	path = filepath.Clean(path)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory so we see the log being created or replaced
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsw,
		path:      path,
		logger:    logger,
		Events:    make(chan Record, 100),
		Errors:    make(chan error, 10),
		done:      make(chan struct{}),
	}
	if info, err := os.Stat(path); err == nil {
		w.offset = info.Size()
	}
	return w, nil
}

// Path returns the watched log path.
func (w *Watcher) Path() string {
	return w.path
}

// Start begins watching for appended records
func (w *Watcher) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.watchLoop()
	}()
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.fsWatcher.Close()
	w.wg.Wait()
	return err
}

// watchLoop handles fsnotify events
func (w *Watcher) watchLoop() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		}
	}
}

// handleFSEvent processes a filesystem event
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.mu.Lock()
		w.offset = 0
		w.mu.Unlock()

	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		w.readNew()
	}
}

// readNew parses records appended since the last read
func (w *Watcher) readNew() {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Truncated or rotated in place: start over
	if info, err := os.Stat(w.path); err == nil && info.Size() < w.offset {
		w.offset = 0
	}

	records, newOffset, err := ReadFrom(w.path, w.offset)
	w.offset = newOffset
	if err != nil {
		w.sendError(err)
		return
	}

	for _, rec := range records {
		w.logger.Debug("shell log record",
			zap.String("command", rec.Command),
			zap.Int("exit_code", rec.ExitCode))
		select {
		case w.Events <- rec:
		default:
			w.logger.Warn("shell log event dropped", zap.String("command", rec.Command))
		}
	}
}

func (w *Watcher) sendError(err error) {
	select {
	case w.Errors <- err:
	default:
		// Error channel full, drop
	}
}
