package fs

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/pwa/internal/core/domain"
	"go.trai.ch/pwa/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes XXHash digests of file content and of file listings.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{walker: NewWalker()}
}

// ComputeFileHash computes the XXHash of a file's content, hex encoded.
func (h *Hasher) ComputeFileHash(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

// ComputeListingHash computes the XXHash of the sorted relative paths below root matching pattern.
// domain.TreeListing walks the whole tree the way Scanner does.
func (h *Hasher) ComputeListingHash(root, pattern string, exclude []string) (string, error) {
	var files []string
	if pattern == domain.TreeListing {
		for file := range h.walker.WalkFiles(root, nil) {
			files = append(files, file)
		}
	} else {
		matches, err := filepath.Glob(filepath.Join(root, filepath.FromSlash(pattern)))
		if err != nil {
			return "", zerr.With(zerr.Wrap(err, "failed to glob path"), "pattern", pattern)
		}
		files = matches
	}

	listing := make([]string, 0, len(files))
	for _, file := range files {
		rel, err := filepath.Rel(root, file)
		if err != nil {
			return "", zerr.With(zerr.Wrap(err, "failed to resolve relative path"), "path", file)
		}
		rel = filepath.ToSlash(rel)
		if !excluded(rel, exclude) {
			listing = append(listing, rel)
		}
	}
	slices.Sort(listing)

	hasher := xxhash.New()
	for _, rel := range listing {
		_, _ = hasher.WriteString(rel)
		_, _ = hasher.WriteString("\n")
	}
	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

// excluded reports whether rel is one of exclude, or an atomic write of one still in flight.
func excluded(rel string, exclude []string) bool {
	dir, base := path.Split(rel)
	for _, ex := range exclude {
		if rel == ex {
			return true
		}
		exDir, exBase := path.Split(ex)
		if dir == exDir && strings.HasPrefix(base, "."+exBase+".tmp-") {
			return true
		}
	}
	return false
}
