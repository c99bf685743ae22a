package scancache_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pwa/internal/core/domain"
	"go.trai.ch/pwa/internal/engine/scancache"
)

func TestLoad_FailsSoft(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content *string
	}{
		{name: "missing file", content: nil},
		{name: "empty file", content: ptr("")},
		{name: "corrupt json", content: ptr("{ not json")},
		{name: "wrong schema version", content: ptr(`{"schema_version": 99, "entries": {}}`)},
		{name: "missing schema version", content: ptr(`{"entries": {}}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), domain.CacheFileName)
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0o600))
			}
			assert.Nil(t, scancache.Load(path))
		})
	}

	t.Run("directory instead of file", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, scancache.Load(t.TempDir()))
	})
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	store := f.update(nil, "package.json", "missing.lock")
	path := filepath.Join(t.TempDir(), "nested", domain.CacheFileName)

	require.NoError(t, scancache.Save(store, path))
	loaded := scancache.Load(path)
	require.NotNil(t, loaded)

	require.Len(t, loaded.Entries, 1)
	want := store.Entries[f.key]
	got := loaded.Entries[f.key]
	assert.Equal(t, domain.CacheSchemaVersion, loaded.SchemaVersion)
	assert.Equal(t, want.ProjectPath, got.ProjectPath)
	assert.Equal(t, want.WatchedFileDigests, got.WatchedFileDigests)
	assert.Equal(t, want.TTLSeconds, got.TTLSeconds)
	assert.True(t, want.CapturedAt.Equal(got.CapturedAt))
	assert.JSONEq(t, string(want.Result), string(got.Result))

	assert.True(t, f.cache.IsValid(f.key, loaded, scancache.ValidateOptions{}))
}

func TestSave_NilRemovesDocument(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), domain.CacheFileName)
	require.NoError(t, scancache.Save(domain.NewScanCacheStore(), path))
	require.FileExists(t, path)

	require.NoError(t, scancache.Save(nil, path))
	assert.NoFileExists(t, path)

	require.NoError(t, scancache.Save(nil, path))
}

func TestSave_EmptyResultStaysValidJSON(t *testing.T) {
	t.Parallel()

	store := domain.NewScanCacheStore()
	store.Entries["k"] = domain.CacheEntry{Result: json.RawMessage(`[]`)}
	path := filepath.Join(t.TempDir(), domain.CacheFileName)

	require.NoError(t, scancache.Save(store, path))

	//nolint:gosec // Test path
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func ptr(s string) *string { return &s }
