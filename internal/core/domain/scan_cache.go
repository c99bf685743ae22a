package domain

import (
	"encoding/json"
	"time"
)

// CacheSchemaVersion is the version of the scan cache document this build reads and writes.
// Documents carrying any other version are treated as if no cache existed.
const CacheSchemaVersion = 1

// DefaultCacheTTL is the lifetime given to a scan cache entry when the caller does not pick one.
const DefaultCacheTTL = 24 * time.Hour

// ScanCacheStore is the persisted scan cache document.
type ScanCacheStore struct {
	SchemaVersion int                   `json:"schema_version"`
	Entries       map[string]CacheEntry `json:"entries"`
}

// NewScanCacheStore returns an empty store at the current schema version.
func NewScanCacheStore() *ScanCacheStore {
	return &ScanCacheStore{
		SchemaVersion: CacheSchemaVersion,
		Entries:       make(map[string]CacheEntry),
	}
}

// Clone returns a copy of the store that shares no maps with the receiver.
// Entry payloads are immutable once stored, so they are shared.
func (s *ScanCacheStore) Clone() *ScanCacheStore {
	out := NewScanCacheStore()
	if s == nil {
		return out
	}
	for k, e := range s.Entries {
		digests := make(map[string]string, len(e.WatchedFileDigests))
		for p, d := range e.WatchedFileDigests {
			digests[p] = d
		}
		e.WatchedFileDigests = digests
		e.ListingExcludes = append([]string(nil), e.ListingExcludes...)
		out.Entries[k] = e
	}
	return out
}

// CacheEntry is one project's cached scan result and the digests that gate its validity.
type CacheEntry struct {
	// ProjectPath is the normalized absolute project path the key was derived from.
	ProjectPath string `json:"project_path"`
	// Result is the opaque scan payload.
	Result json.RawMessage `json:"result"`
	// CapturedAt is when the scan result was stored.
	CapturedAt time.Time `json:"captured_at"`
	// WatchedFileDigests maps project-relative paths to content digests.
	// It must cover every input whose content can change Result.
	// Keys starting with ListingPrefix digest which files exist instead of what one file holds.
	WatchedFileDigests map[string]string `json:"watched_file_digests"`
	// ListingExcludes are project-relative paths left out of every listing digest.
	ListingExcludes []string `json:"listing_excludes,omitempty"`
	// TTLSeconds is the entry lifetime. Zero disables expiry.
	TTLSeconds int64 `json:"ttl_seconds,omitzero"`
}

// Expired reports whether the entry outlived its TTL at the given instant.
func (e CacheEntry) Expired(now time.Time) bool {
	if e.TTLSeconds <= 0 {
		return false
	}
	return now.Sub(e.CapturedAt) > time.Duration(e.TTLSeconds)*time.Second
}

// ListingPrefix marks a watched key whose digest covers the set of files matching a pattern.
// The rest of the key is a glob relative to the project root, or TreeListing.
const ListingPrefix = "listing:"

// TreeListing names every file a scan walks below the project root.
const TreeListing = "**"

// ScanReport is what a project scanner hands back: the payload to cache and the files it depends on.
type ScanReport struct {
	Result    json.RawMessage
	WatchList []string
	// Listings are patterns whose match set, not content, can change Result.
	Listings []string
}
