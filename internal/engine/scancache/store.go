package scancache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"go.trai.ch/pwa/internal/core/domain"
	"go.trai.ch/pwa/internal/engine/atomicfile"
	"go.trai.ch/zerr"
)

// Load reads the cache document at path.
// It returns nil, never an error, when the file is missing, unreadable, corrupt,
// or written by another schema version: all of those are a cold cache.
func Load(path string) *domain.ScanCacheStore {
	//nolint:gosec // Path is chosen by the caller
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return nil
	}

	var store domain.ScanCacheStore
	if err := json.Unmarshal(data, &store); err != nil {
		return nil
	}
	if store.SchemaVersion != domain.CacheSchemaVersion {
		return nil
	}
	if store.Entries == nil {
		store.Entries = make(map[string]domain.CacheEntry)
	}
	return &store
}

// Save overwrites the cache document at path with store.
// The document is replaced by rename, so concurrent readers see either the old or the new one.
// A nil store removes the document.
func Save(store *domain.ScanCacheStore, path string) error {
	if store == nil {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", path)
		}
		return nil
	}

	doc := *store
	doc.SchemaVersion = domain.CacheSchemaVersion
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheEncodeFailed.Error())
	}

	if err := atomicfile.WriteFile(path, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", path)
	}
	return nil
}

// Get returns the cached payload for key. It does not judge freshness; call IsValid first.
func Get(key string, store *domain.ScanCacheStore) (json.RawMessage, bool) {
	if store == nil {
		return nil, false
	}
	entry, ok := store.Entries[key]
	if !ok {
		return nil, false
	}
	return entry.Result, true
}

// Remove drops the entry for key. It returns nil when no entries remain.
func Remove(key string, store *domain.ScanCacheStore) *domain.ScanCacheStore {
	if store == nil {
		return nil
	}
	out := store.Clone()
	delete(out.Entries, key)
	if len(out.Entries) == 0 {
		return nil
	}
	return out
}
