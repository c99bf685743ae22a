package scancache_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pwa/internal/adapters/fs"
	"go.trai.ch/pwa/internal/core/domain"
	"go.trai.ch/pwa/internal/engine/scancache"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

type fixture struct {
	root  string
	key   string
	cache *scancache.Cache
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"name":"app"}`)
	writeFile(t, root, "src/index.js", "console.log(1)")

	key, err := scancache.ProjectKey(root)
	require.NoError(t, err)

	f := &fixture{root: root, key: key, now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	f.cache = scancache.New(fs.NewHasher()).WithClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) update(store *domain.ScanCacheStore, paths ...string) *domain.ScanCacheStore {
	return f.cache.Update(f.key, json.RawMessage(`{"framework":"static"}`), store, scancache.WatchList{
		Root:  f.root,
		Paths: paths,
	})
}

func (f *fixture) updateWatch(store *domain.ScanCacheStore, watch scancache.WatchList) *domain.ScanCacheStore {
	watch.Root = f.root
	return f.cache.Update(f.key, json.RawMessage(`{"framework":"static"}`), store, watch)
}

func TestProjectKey(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o750))

	a, err := scancache.ProjectKey(root)
	require.NoError(t, err)
	b, err := scancache.ProjectKey(filepath.Join(root, "sub", ".."))
	require.NoError(t, err)
	c, err := scancache.ProjectKey(filepath.Join(root, "sub"))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)
}

func TestIsValid(t *testing.T) {
	t.Parallel()

	t.Run("fresh entry is valid", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		store := f.update(nil, "package.json")
		assert.True(t, f.cache.IsValid(f.key, store, scancache.ValidateOptions{}))
	})

	t.Run("unwatched change keeps entry valid", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		store := f.update(nil, "package.json")

		writeFile(t, f.root, "src/index.js", "console.log(2)")

		assert.True(t, f.cache.IsValid(f.key, store, scancache.ValidateOptions{}))
	})

	t.Run("watched change invalidates", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		store := f.update(nil, "package.json")

		writeFile(t, f.root, "package.json", `{"name":"app","version":"2"}`)

		assert.False(t, f.cache.IsValid(f.key, store, scancache.ValidateOptions{}))
	})

	t.Run("vanished watched file invalidates", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		store := f.update(nil, "package.json")

		require.NoError(t, os.Remove(filepath.Join(f.root, "package.json")))

		assert.False(t, f.cache.IsValid(f.key, store, scancache.ValidateOptions{}))
	})

	t.Run("watched file that appears invalidates", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		store := f.update(nil, "package.json", "composer.json")
		require.True(t, f.cache.IsValid(f.key, store, scancache.ValidateOptions{}))

		writeFile(t, f.root, "composer.json", "{}")

		assert.False(t, f.cache.IsValid(f.key, store, scancache.ValidateOptions{}))
	})

	t.Run("force invalidates", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		store := f.update(nil, "package.json")
		assert.False(t, f.cache.IsValid(f.key, store, scancache.ValidateOptions{Force: true}))
	})

	t.Run("nil store and unknown key", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		store := f.update(nil, "package.json")
		assert.False(t, f.cache.IsValid(f.key, nil, scancache.ValidateOptions{}))
		assert.False(t, f.cache.IsValid("0000000000000000", store, scancache.ValidateOptions{}))
	})

	t.Run("expired entry is stale", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.cache = f.cache.WithTTL(time.Hour)
		store := f.update(nil, "package.json")

		f.now = f.now.Add(2 * time.Hour)

		assert.False(t, f.cache.IsValid(f.key, store, scancache.ValidateOptions{}))
	})

	t.Run("absolute watch paths inside root are stored relative", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		store := f.update(nil, filepath.Join(f.root, "package.json"))

		entry := store.Entries[f.key]
		assert.Contains(t, entry.WatchedFileDigests, "package.json")
		assert.True(t, f.cache.IsValid(f.key, store, scancache.ValidateOptions{}))
	})
}

func TestIsValid_Listings(t *testing.T) {
	t.Parallel()

	tree := scancache.WatchList{
		Paths:    []string{"package.json"},
		Listings: []string{domain.TreeListing},
		Exclude:  []string{"public/sw.js", ".pwa-cache.json"},
	}

	t.Run("adding a file invalidates the tree listing", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		writeFile(t, f.root, "public/a.png", "a")
		store := f.updateWatch(nil, tree)
		require.True(t, f.cache.IsValid(f.key, store, scancache.ValidateOptions{}))

		writeFile(t, f.root, "public/b.png", "b")

		assert.False(t, f.cache.IsValid(f.key, store, scancache.ValidateOptions{}))
	})

	t.Run("removing a file invalidates the tree listing", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		writeFile(t, f.root, "public/a.png", "a")
		store := f.updateWatch(nil, tree)

		require.NoError(t, os.Remove(filepath.Join(f.root, "public", "a.png")))

		assert.False(t, f.cache.IsValid(f.key, store, scancache.ValidateOptions{}))
	})

	t.Run("content edits leave the listing alone", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		store := f.updateWatch(nil, tree)

		writeFile(t, f.root, "src/index.js", "console.log(2)")

		assert.True(t, f.cache.IsValid(f.key, store, scancache.ValidateOptions{}))
	})

	t.Run("excluded paths and their temp files are ignored", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		store := f.updateWatch(nil, tree)

		writeFile(t, f.root, "public/sw.js", "self")
		writeFile(t, f.root, ".pwa-cache.json", "{}")
		writeFile(t, f.root, "public/.sw.js.tmp-123", "self")

		assert.True(t, f.cache.IsValid(f.key, store, scancache.ValidateOptions{}))
		assert.Equal(t, []string{".pwa-cache.json", "public/sw.js"}, store.Entries[f.key].ListingExcludes)
	})

	t.Run("a file newly matching a glob invalidates", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		store := f.updateWatch(nil, scancache.WatchList{Listings: []string{"templates/*.html"}})
		require.True(t, f.cache.IsValid(f.key, store, scancache.ValidateOptions{}))

		writeFile(t, f.root, "templates/notes.txt", "x")
		require.True(t, f.cache.IsValid(f.key, store, scancache.ValidateOptions{}))

		writeFile(t, f.root, "templates/index.html", "<html>")
		assert.False(t, f.cache.IsValid(f.key, store, scancache.ValidateOptions{}))
	})

	t.Run("a broken glob never validates", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		store := f.updateWatch(nil, scancache.WatchList{Listings: []string{"templates/[a"}})

		assert.False(t, f.cache.IsValid(f.key, store, scancache.ValidateOptions{}))
	})
}

func TestWithTTL_ReturnsCopy(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	short := f.cache.WithTTL(time.Minute)

	store := f.update(nil, "package.json")
	assert.Equal(t, int64(domain.DefaultCacheTTL/time.Second), store.Entries[f.key].TTLSeconds)

	store = short.Update(f.key, json.RawMessage(`{}`), store, scancache.WatchList{Root: f.root})
	assert.Equal(t, int64(60), store.Entries[f.key].TTLSeconds)
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	t.Run("rescan replaces the entry instead of duplicating it", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		store := f.update(nil, "package.json")

		writeFile(t, f.root, "package.json", `{"name":"renamed"}`)
		require.False(t, f.cache.IsValid(f.key, store, scancache.ValidateOptions{}))

		store = f.update(store, "package.json")

		assert.Len(t, store.Entries, 1)
		assert.True(t, f.cache.IsValid(f.key, store, scancache.ValidateOptions{}))
	})

	t.Run("unrelated entries are untouched and input is not mutated", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		other := domain.CacheEntry{
			ProjectPath:        "/elsewhere",
			Result:             json.RawMessage(`{}`),
			CapturedAt:         f.now,
			WatchedFileDigests: map[string]string{"go.mod": "abc"},
		}
		input := domain.NewScanCacheStore()
		input.Entries["other"] = other

		out := f.update(input, "package.json")

		assert.Len(t, input.Entries, 1)
		assert.Len(t, out.Entries, 2)
		assert.Equal(t, other, out.Entries["other"])
	})

	t.Run("get returns the stored payload", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		store := f.update(nil, "package.json")

		got, ok := scancache.Get(f.key, store)
		require.True(t, ok)
		assert.JSONEq(t, `{"framework":"static"}`, string(got))

		_, ok = scancache.Get("missing", store)
		assert.False(t, ok)
		_, ok = scancache.Get(f.key, nil)
		assert.False(t, ok)
	})
}

func TestPruneAndRemove(t *testing.T) {
	t.Parallel()

	t.Run("prune drops old entries", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		store := domain.NewScanCacheStore()
		store.Entries["old"] = domain.CacheEntry{CapturedAt: f.now.Add(-48 * time.Hour)}
		store.Entries["new"] = domain.CacheEntry{CapturedAt: f.now.Add(-time.Hour)}

		out := f.cache.Prune(store, 24*time.Hour)

		require.NotNil(t, out)
		assert.Len(t, out.Entries, 1)
		assert.Contains(t, out.Entries, "new")
		for _, e := range out.Entries {
			assert.LessOrEqual(t, f.now.Sub(e.CapturedAt), 24*time.Hour)
		}
	})

	t.Run("prune returns nil when nothing remains", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		store := domain.NewScanCacheStore()
		store.Entries["old"] = domain.CacheEntry{CapturedAt: f.now.Add(-48 * time.Hour)}

		assert.Nil(t, f.cache.Prune(store, time.Hour))
		assert.Nil(t, f.cache.Prune(nil, time.Hour))
	})

	t.Run("zero max age keeps nothing older than now", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		store := domain.NewScanCacheStore()
		store.Entries["old"] = domain.CacheEntry{CapturedAt: f.now.Add(-time.Second)}
		store.Entries["now"] = domain.CacheEntry{CapturedAt: f.now}

		out := f.cache.Prune(store, 0)

		require.NotNil(t, out)
		assert.Len(t, out.Entries, 1)
		assert.Contains(t, out.Entries, "now")
	})

	t.Run("remove follows the same emptiness rule", func(t *testing.T) {
		t.Parallel()
		store := domain.NewScanCacheStore()
		store.Entries["a"] = domain.CacheEntry{}
		store.Entries["b"] = domain.CacheEntry{}

		out := scancache.Remove("a", store)
		require.NotNil(t, out)
		assert.Len(t, out.Entries, 1)

		assert.Nil(t, scancache.Remove("b", out))
		assert.Nil(t, scancache.Remove("b", nil))
	})
}

func TestEntries(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	store := domain.NewScanCacheStore()
	store.Entries["k2"] = domain.CacheEntry{ProjectPath: "/b", CapturedAt: f.now, TTLSeconds: 60}
	store.Entries["k1"] = domain.CacheEntry{
		ProjectPath:        "/a",
		CapturedAt:         f.now.Add(-time.Hour),
		TTLSeconds:         60,
		WatchedFileDigests: map[string]string{"x": "y"},
	}

	infos := f.cache.Entries(store)

	require.Len(t, infos, 2)
	assert.Equal(t, "/a", infos[0].ProjectPath)
	assert.True(t, infos[0].Expired)
	assert.Equal(t, 1, infos[0].WatchedFiles)
	assert.Equal(t, "/b", infos[1].ProjectPath)
	assert.False(t, infos[1].Expired)
}
