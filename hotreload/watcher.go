package hotreload

import (
	"errors"
	"io/fs"
	"os"
	"time"
)

// Watcher reports when a unit image on disk changes. It is polled from the
// engine loop rather than running its own goroutine.
type Watcher struct {
	path    string
	modTime time.Time
	size    int64
	seen    bool
}

// NewWatcher watches path. The first Changed call after the file exists
// reports true so the initial load goes through the same path as reloads.
func NewWatcher(path string) *Watcher {
	return &Watcher{path: path}
}

// Path returns the watched path.
func (w *Watcher) Path() string {
	return w.path
}

// Changed reports whether the file's modification time or size differs from
// the last observation. A missing file is not a change; build tools often
// delete the image before writing the new one.
func (w *Watcher) Changed() (bool, error) {
	info, err := os.Stat(w.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if w.seen && info.ModTime().Equal(w.modTime) && info.Size() == w.size {
		return false, nil
	}
	w.seen = true
	w.modTime = info.ModTime()
	w.size = info.Size()
	return true, nil
}
