package scancache

import (
	"fmt"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/pwa/internal/core/domain"
	"go.trai.ch/zerr"
)

// ProjectKey derives the cache key of a project from its path.
// The path is made absolute, cleaned and, when it exists, resolved through symlinks,
// so every spelling of the same directory maps to the same key.
func ProjectKey(path string) (string, error) {
	normalized, err := NormalizePath(path)
	if err != nil {
		return "", err
	}
	return keyFor(normalized), nil
}

// NormalizePath returns the absolute, cleaned, symlink-resolved form of path.
func NormalizePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrFailedToGetRoot.Error()), "path", path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return filepath.Clean(abs), nil
}

func keyFor(normalized string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(normalized))
}
