package plan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"digital.vasic.pavlov/pkg/logging"
)

// DefaultDebounce is how long a Watcher waits for edits to
// settle before firing.
const DefaultDebounce = 300 * time.Millisecond

// Watcher fires a callback whenever a watched plan or values
// file changes. Directories are watched for plan files; single
// files are watched through their parent directory so editors
// that replace files on save are still seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	dirs     map[string]bool
	files    map[string]bool
	debounce time.Duration
	logger   logging.Logger
}

// NewWatcher creates a Watcher over paths, which may mix plan
// directories, plan files and a values file.
func NewWatcher(
	paths []string,
	debounce time.Duration,
	logger logging.Logger,
) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logging.NullLogger{}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fw,
		dirs:     make(map[string]bool),
		files:    make(map[string]bool),
		debounce: debounce,
		logger:   logger,
	}

	for _, p := range paths {
		if err := w.add(p); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	dir := abs
	if info.IsDir() {
		w.dirs[abs] = true
	} else {
		w.files[abs] = true
		dir = filepath.Dir(abs)
	}

	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return nil
}

// Relevant reports whether a change to name should fire the
// callback.
func (w *Watcher) Relevant(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	if w.files[abs] {
		return true
	}
	return w.dirs[filepath.Dir(abs)] && IsPlanFile(abs)
}

// Run blocks, calling onChange once per settled burst of
// relevant events, until ctx is done. The watcher is closed on
// return.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context)) error {
	defer func() { _ = w.watcher.Close() }()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod || !w.Relevant(event.Name) {
				continue
			}
			w.logger.Debug("watched file changed",
				logging.StringField("path", event.Name),
				logging.StringField("op", event.Op.String()))
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", logging.ErrorField(err))

		case <-timer.C:
			onChange(ctx)
		}
	}
}
