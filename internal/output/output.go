// Package output writes results to their final destination. File writes are
// write-ahead: content goes to a uniquely-named temp file next to the
// destination and is renamed into place only on commit, under a lock on the
// destination, so a failed or cancelled run never leaves a partial file at
// the final path.
package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// FileWriter stages output for one destination. Write as much as needed,
// then Commit to publish or Discard to drop everything. Discard after a
// successful Commit is a no-op, which makes it safe to defer.
type FileWriter struct {
	dest string
	tmp  *os.File
	lock *flock.Flock
	done bool
}

// NewFileWriter locks dest and opens the temp file beside it.
func NewFileWriter(dest string) (*FileWriter, error) {
	abs, err := filepath.Abs(dest)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve output path: %w", err)
	}

	lock := flock.New(abs + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire write lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("could not acquire write lock on %s", abs)
	}

	tmpPath := filepath.Join(filepath.Dir(abs), fmt.Sprintf("%s.%s.tmp", filepath.Base(abs), uuid.NewString()))
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		releaseLock(lock)
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	return &FileWriter{dest: abs, tmp: tmp, lock: lock}, nil
}

func (w *FileWriter) Write(p []byte) (int, error) {
	return w.tmp.Write(p)
}

// Commit flushes the temp file and renames it onto the destination.
func (w *FileWriter) Commit() error {
	if w.done {
		return nil
	}
	w.done = true
	defer releaseLock(w.lock)

	tmpPath := w.tmp.Name()
	if err := w.tmp.Sync(); err != nil {
		w.tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush temp file: %w", err)
	}
	if err := w.tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, w.dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Discard drops the staged content and releases the destination.
func (w *FileWriter) Discard() {
	if w.done {
		return
	}
	w.done = true
	tmpPath := w.tmp.Name()
	w.tmp.Close()
	os.Remove(tmpPath)
	releaseLock(w.lock)
}

func releaseLock(lock *flock.Flock) {
	lock.Unlock()
	os.Remove(lock.Path())
}

// WriteFile atomically replaces dest with data.
func WriteFile(dest string, data []byte) error {
	w, err := NewFileWriter(dest)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Discard()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	return w.Commit()
}
