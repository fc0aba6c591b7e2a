package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"
)

// LocalStore writes uploads under a directory as <unix-millis>-<name>.
type LocalStore struct {
	dir string
	now func() time.Time
}

// NewLocalStore stores files under dir, creating it on first save.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir, now: time.Now}
}

// Save writes r to disk and returns the slash-separated relative path.
// A partially written file is removed on failure.
func (s *LocalStore) Save(_ context.Context, _ int, filename string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), baseName(filename))
	full := filepath.Join(s.dir, name)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	return path.Join(filepath.ToSlash(s.dir), name), nil
}
