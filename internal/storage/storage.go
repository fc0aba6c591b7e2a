// Package storage persists uploaded resumes and hands back the reference
// that is stored on the profile.
package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"
)

// FileStore saves one named upload and returns a stable path or key for it.
type FileStore interface {
	Save(ctx context.Context, userID int, filename string, r io.Reader) (string, error)
}

// baseName strips any client-supplied directories and characters that do
// not belong in a file name or object key.
func baseName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == '/', r == ':', r == '*', r == '?', r == '"', r == '<', r == '>', r == '|':
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "upload"
	}
	return name
}
