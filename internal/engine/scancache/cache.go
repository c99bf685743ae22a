// Package scancache persists project scan results and decides when they are stale.
//
// The store is a plain value owned by the caller: load it once, pass it through
// IsValid/Get/Update/Prune/Remove, and save it once. Nothing here keeps process-wide state.
package scancache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.trai.ch/pwa/internal/core/domain"
	"go.trai.ch/pwa/internal/core/ports"
)

const (
	// missingDigest is recorded for a watched path that did not exist when the entry was stored.
	missingDigest = ""
	// unreadableDigest is recorded for a watched path that could not be hashed. It never validates.
	unreadableDigest = "!unreadable"
)

// ValidateOptions tunes IsValid.
type ValidateOptions struct {
	// Force makes every entry stale.
	Force bool
}

// WatchList names the files an entry depends on.
type WatchList struct {
	// Root is the directory relative paths resolve against.
	Root string
	// Paths are relative to Root, or absolute.
	Paths []string
	// Listings are globs relative to Root, or domain.TreeListing, whose match set is digested.
	Listings []string
	// Exclude lists Root-relative paths left out of every listing.
	Exclude []string
}

// EntryInfo summarizes one stored entry.
type EntryInfo struct {
	Key          string
	ProjectPath  string
	CapturedAt   time.Time
	WatchedFiles int
	Expired      bool
}

// Cache computes and checks watched-file digests for scan cache entries.
type Cache struct {
	hasher ports.Hasher
	now    func() time.Time
	ttl    time.Duration
}

// New creates a Cache that digests files with hasher.
func New(hasher ports.Hasher) *Cache {
	return &Cache{
		hasher: hasher,
		now:    time.Now,
		ttl:    domain.DefaultCacheTTL,
	}
}

// WithClock returns a copy of c reading time from now. Used by tests.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	out := *c
	out.now = now
	return &out
}

// WithTTL returns a copy of c giving entries stored by Update the lifetime ttl. Zero disables expiry.
func (c *Cache) WithTTL(ttl time.Duration) *Cache {
	out := *c
	out.ttl = ttl
	return &out
}

// IsValid reports whether the entry for key can be used without rescanning.
// It is false when the store is nil, opts.Force is set, the entry is missing or expired,
// or any watched file changed, vanished, or appeared since the entry was stored.
// Listing keys also fail it when a file matching the listing was added or removed.
func (c *Cache) IsValid(key string, store *domain.ScanCacheStore, opts ValidateOptions) bool {
	if store == nil || opts.Force {
		return false
	}
	entry, ok := store.Entries[key]
	if !ok {
		return false
	}
	if entry.Expired(c.now()) {
		return false
	}

	for rel, want := range entry.WatchedFileDigests {
		if want == unreadableDigest {
			return false
		}
		if c.digest(entry.ProjectPath, rel, entry.ListingExcludes) != want {
			return false
		}
	}
	return true
}

// Update stores result under key with fresh digests of every watched path and returns the new store.
// The input store is not modified; unrelated entries are carried over unchanged.
func (c *Cache) Update(
	key string,
	result json.RawMessage,
	store *domain.ScanCacheStore,
	watch WatchList,
) *domain.ScanCacheStore {
	out := store.Clone()

	root := watch.Root
	if normalized, err := NormalizePath(root); err == nil {
		root = normalized
	}

	var exclude []string
	if len(watch.Listings) > 0 {
		exclude = make([]string, 0, len(watch.Exclude))
		for _, p := range watch.Exclude {
			exclude = append(exclude, relativize(root, p))
		}
		sort.Strings(exclude)
	}

	digests := make(map[string]string, len(watch.Paths)+len(watch.Listings))
	for _, p := range watch.Paths {
		rel := relativize(root, p)
		digests[rel] = c.digest(root, rel, nil)
	}
	for _, pattern := range watch.Listings {
		rel := domain.ListingPrefix + pattern
		digests[rel] = c.digest(root, rel, exclude)
	}

	out.Entries[key] = domain.CacheEntry{
		ProjectPath:        root,
		Result:             append(json.RawMessage(nil), result...),
		CapturedAt:         c.now().UTC(),
		WatchedFileDigests: digests,
		ListingExcludes:    exclude,
		TTLSeconds:         int64(c.ttl / time.Second),
	}
	return out
}

// Prune drops entries captured more than maxAge ago. It returns nil when no entries remain.
// With a zero maxAge only entries captured at the current instant survive.
func (c *Cache) Prune(store *domain.ScanCacheStore, maxAge time.Duration) *domain.ScanCacheStore {
	if store == nil {
		return nil
	}
	out := store.Clone()
	now := c.now()
	for key, entry := range out.Entries {
		if now.Sub(entry.CapturedAt) > maxAge {
			delete(out.Entries, key)
		}
	}
	if len(out.Entries) == 0 {
		return nil
	}
	return out
}

// Entries lists the store's entries ordered by project path.
func (c *Cache) Entries(store *domain.ScanCacheStore) []EntryInfo {
	if store == nil {
		return nil
	}
	now := c.now()
	infos := make([]EntryInfo, 0, len(store.Entries))
	for key, entry := range store.Entries {
		infos = append(infos, EntryInfo{
			Key:          key,
			ProjectPath:  entry.ProjectPath,
			CapturedAt:   entry.CapturedAt,
			WatchedFiles: len(entry.WatchedFileDigests),
			Expired:      entry.Expired(now),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].ProjectPath != infos[j].ProjectPath {
			return infos[i].ProjectPath < infos[j].ProjectPath
		}
		return infos[i].Key < infos[j].Key
	})
	return infos
}

// digest hashes root/rel, mapping a missing file and an unreadable file to their markers.
// A listing key hashes the set of matching files instead.
func (c *Cache) digest(root, rel string, exclude []string) string {
	if pattern, ok := strings.CutPrefix(rel, domain.ListingPrefix); ok {
		sum, err := c.hasher.ComputeListingHash(root, pattern, exclude)
		if err != nil {
			return unreadableDigest
		}
		return sum
	}

	path := rel
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, filepath.FromSlash(rel))
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return missingDigest
		}
		return unreadableDigest
	}
	if info.IsDir() {
		return unreadableDigest
	}

	sum, err := c.hasher.ComputeFileHash(path)
	if err != nil {
		return unreadableDigest
	}
	return sum
}

// relativize turns p into a slash-separated path relative to root when p lies inside root.
func relativize(root, p string) string {
	if !filepath.IsAbs(p) {
		return filepath.ToSlash(filepath.Clean(p))
	}
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Clean(p)
	}
	return filepath.ToSlash(rel)
}
