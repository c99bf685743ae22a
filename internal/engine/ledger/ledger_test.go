package ledger_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pwa/internal/core/domain"
	"go.trai.ch/pwa/internal/engine/ledger"
	"golang.org/x/sync/errgroup"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestBegin(t *testing.T) {
	t.Parallel()

	t.Run("missing root", func(t *testing.T) {
		t.Parallel()
		_, err := ledger.Begin(filepath.Join(t.TempDir(), "missing"), "")
		require.ErrorIs(t, err, domain.ErrProjectRootNotDir)
	})

	t.Run("output dir outside root", func(t *testing.T) {
		t.Parallel()
		_, err := ledger.Begin(t.TempDir(), "../public")
		require.ErrorIs(t, err, domain.ErrPathOutsideRoot)
	})

	t.Run("pending", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		l, err := ledger.Begin(root, "public/")
		require.NoError(t, err)
		assert.Equal(t, "public", l.OutputDir())
		assert.Equal(t, ledger.Pending, l.State().State)
		assert.True(t, filepath.IsAbs(l.Root()))
	})
}

func TestRollback_RestoresBackedUpFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "public/manifest.json", `{"name":"before"}`)

	l, err := ledger.Begin(root, "public")
	require.NoError(t, err)

	require.NoError(t, l.BackupFile("public/manifest.json"))
	writeFile(t, root, "public/manifest.json", `{"name":"after"}`)

	report := l.Rollback()
	require.True(t, report.Complete())
	require.NoError(t, report.Err())
	assert.Equal(t, []string{"public/manifest.json"}, report.Restored)
	assert.False(t, report.RemovedOutputDir)
	assert.Equal(t, `{"name":"before"}`, readFile(t, root, "public/manifest.json"))
	assert.Equal(t, ledger.RolledBack, l.State().State)
}

func TestRollback_RemovesCreatedFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	l, err := ledger.Begin(root, "public")
	require.NoError(t, err)

	require.NoError(t, l.BackupFile("public/sw.js"))
	writeFile(t, root, "public/sw.js", "self.addEventListener('fetch', () => {})")
	require.NoError(t, l.TrackCreatedFile("public/sw.js"))

	report := l.Rollback()
	require.True(t, report.Complete())
	assert.Equal(t, []string{"public/sw.js"}, report.Removed)
	assert.True(t, report.RemovedOutputDir)
	assert.NoFileExists(t, filepath.Join(root, "public", "sw.js"))
	assert.NoDirExists(t, filepath.Join(root, "public"))
}

func TestRollback_IgnoresVanishedCreatedFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	l, err := ledger.Begin(root, "")
	require.NoError(t, err)
	require.NoError(t, l.TrackCreatedFile("never-written.js"))

	report := l.Rollback()
	assert.True(t, report.Complete())
	assert.Empty(t, report.Removed)
}

func TestBackupFile_Idempotent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "index.html", "v1")

	l, err := ledger.Begin(root, "")
	require.NoError(t, err)

	require.NoError(t, l.BackupFile("index.html"))
	writeFile(t, root, "index.html", "v2")
	require.NoError(t, l.BackupFile("./index.html"))

	assert.Equal(t, []string{"index.html"}, l.State().BackedUp)

	l.Rollback()
	assert.Equal(t, "v1", readFile(t, root, "index.html"))
}

func TestBackupFile_Rejections(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "assets"), 0o750))

	l, err := ledger.Begin(root, "")
	require.NoError(t, err)

	require.ErrorIs(t, l.BackupFile("../outside.txt"), domain.ErrPathOutsideRoot)
	require.ErrorIs(t, l.BackupFile("."), domain.ErrPathOutsideRoot)
	require.ErrorIs(t, l.BackupFile(filepath.Join(filepath.Dir(root), "sibling")), domain.ErrPathOutsideRoot)
	require.ErrorIs(t, l.TrackCreatedFile("../x"), domain.ErrPathOutsideRoot)

	err = l.BackupFile("assets")
	require.ErrorIs(t, err, domain.ErrBackupFailed)
}

func TestBackupFile_AbsolutePathInsideRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "a.txt", "a")

	l, err := ledger.Begin(root, "")
	require.NoError(t, err)
	require.NoError(t, l.BackupFile(filepath.Join(l.Root(), "a.txt")))
	assert.Equal(t, []string{"a.txt"}, l.State().BackedUp)
}

func TestTrackCreatedFile_NeverForBackedUpPath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "manifest.json", "{}")

	l, err := ledger.Begin(root, "")
	require.NoError(t, err)

	require.NoError(t, l.BackupFile("manifest.json"))
	require.NoError(t, l.TrackCreatedFile("manifest.json"))

	snap := l.State()
	assert.True(t, snap.HasBackup("manifest.json"))
	assert.False(t, snap.HasCreated("manifest.json"))
}

func TestBackupFile_AfterTrackIsNoop(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	l, err := ledger.Begin(root, "")
	require.NoError(t, err)

	writeFile(t, root, "sw.js", "new")
	require.NoError(t, l.TrackCreatedFile("sw.js"))
	require.NoError(t, l.BackupFile("sw.js"))

	snap := l.State()
	assert.Empty(t, snap.BackedUp)
	assert.Equal(t, []string{"sw.js"}, snap.Created)
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "public/manifest.json", "old manifest")

	l, err := ledger.Begin(root, "public")
	require.NoError(t, err)

	require.NoError(t, l.WriteFile("public/manifest.json", []byte("new manifest"), 0o644))
	require.NoError(t, l.WriteFile("public/sw.js", []byte("new sw"), 0o644))
	require.NoError(t, l.WriteFile("public/sw.js", []byte("newer sw"), 0o644))

	snap := l.State()
	assert.Equal(t, []string{"public/manifest.json"}, snap.BackedUp)
	assert.Equal(t, []string{"public/sw.js"}, snap.Created)
	assert.Equal(t, "newer sw", readFile(t, root, "public/sw.js"))

	report := l.Rollback()
	require.True(t, report.Complete())
	assert.Equal(t, "old manifest", readFile(t, root, "public/manifest.json"))
	assert.NoFileExists(t, filepath.Join(root, "public", "sw.js"))
}

func TestWriteFile_RestoresMode(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "run.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh"), 0o700)) //nolint:gosec // Test file permissions

	l, err := ledger.Begin(root, "")
	require.NoError(t, err)
	require.NoError(t, l.WriteFile("run.sh", []byte("echo"), 0o600))
	l.Rollback()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestCommit(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "manifest.json", "old")

	l, err := ledger.Begin(root, "")
	require.NoError(t, err)
	require.NoError(t, l.WriteFile("manifest.json", []byte("new"), 0o644))
	require.NoError(t, l.WriteFile("sw.js", []byte("sw"), 0o644))

	require.NoError(t, l.Commit())
	require.NoError(t, l.Commit(), "commit is idempotent")

	assert.Equal(t, "new", readFile(t, root, "manifest.json"))
	assert.Equal(t, "sw", readFile(t, root, "sw.js"))

	report := l.Rollback()
	assert.Empty(t, report.Restored)
	assert.Empty(t, report.Removed)
	assert.Equal(t, ledger.Committed, l.State().State)
	assert.Equal(t, "new", readFile(t, root, "manifest.json"))

	require.ErrorIs(t, l.BackupFile("manifest.json"), domain.ErrLedgerClosed)
	require.ErrorIs(t, l.TrackCreatedFile("other.js"), domain.ErrLedgerClosed)
}

func TestRollback_Terminal(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	l, err := ledger.Begin(root, "")
	require.NoError(t, err)
	require.NoError(t, l.WriteFile("sw.js", []byte("sw"), 0o644))

	first := l.Rollback()
	assert.Equal(t, []string{"sw.js"}, first.Removed)

	writeFile(t, root, "sw.js", "written after rollback")
	second := l.Rollback()
	assert.Empty(t, second.Removed)
	assert.Equal(t, "written after rollback", readFile(t, root, "sw.js"))

	require.ErrorIs(t, l.Commit(), domain.ErrLedgerClosed)
}

func TestRollback_CollectsFailures(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "manifest.json", "old manifest")
	writeFile(t, root, "index.html", "old index")

	l, err := ledger.Begin(root, "")
	require.NoError(t, err)
	require.NoError(t, l.BackupFile("manifest.json"))
	require.NoError(t, l.BackupFile("index.html"))
	require.NoError(t, l.TrackCreatedFile("sw.js"))
	require.NoError(t, l.TrackCreatedFile("offline.html"))

	// A non-empty directory where a file is expected defeats both restore and remove.
	require.NoError(t, os.Remove(filepath.Join(root, "manifest.json")))
	writeFile(t, root, "manifest.json/blocker", "x")
	writeFile(t, root, "sw.js/blocker", "x")
	writeFile(t, root, "index.html", "new index")
	writeFile(t, root, "offline.html", "new offline")

	report := l.Rollback()
	require.False(t, report.Complete())
	require.Len(t, report.Failures, 2)
	assert.Equal(t, ledger.OpRestore, report.Failures[0].Op)
	assert.Equal(t, "manifest.json", report.Failures[0].Path)
	assert.Equal(t, ledger.OpRemove, report.Failures[1].Op)
	assert.Equal(t, "sw.js", report.Failures[1].Path)

	assert.Equal(t, []string{"index.html"}, report.Restored)
	assert.Equal(t, []string{"offline.html"}, report.Removed)
	assert.Equal(t, "old index", readFile(t, root, "index.html"))
	assert.NoFileExists(t, filepath.Join(root, "offline.html"))

	err = report.Err()
	require.ErrorIs(t, err, domain.ErrRollbackIncomplete)
	assert.Contains(t, err.Error(), "restore manifest.json")
	assert.Contains(t, err.Error(), "remove sw.js")
}

func TestRollback_KeepsNonEmptyOutputDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	l, err := ledger.Begin(root, "public")
	require.NoError(t, err)
	require.NoError(t, l.WriteFile("public/sw.js", []byte("sw"), 0o644))
	writeFile(t, root, "public/user.txt", "someone else's file")

	report := l.Rollback()
	assert.True(t, report.Complete())
	assert.False(t, report.RemovedOutputDir)
	assert.FileExists(t, filepath.Join(root, "public", "user.txt"))
}

func TestRollback_RemovesNestedOutputDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	l, err := ledger.Begin(root, "dist/pwa")
	require.NoError(t, err)
	require.NoError(t, l.WriteFile("dist/pwa/sw.js", []byte("sw"), 0o644))

	report := l.Rollback()
	require.True(t, report.Complete())
	assert.Equal(t, []string{"dist/pwa", "dist"}, report.RemovedDirs)
	assert.True(t, report.RemovedOutputDir)
	assert.NoDirExists(t, filepath.Join(root, "dist"))
}

func TestRollback_RemovesDirsCreatedByWrites(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "public/index.html", "keep")

	l, err := ledger.Begin(root, "public")
	require.NoError(t, err)
	require.NoError(t, l.WriteFile("public/icons/large/icon.png", []byte("png"), 0o644))

	report := l.Rollback()
	require.True(t, report.Complete())
	assert.Equal(t, []string{"public/icons/large", "public/icons"}, report.RemovedDirs)
	assert.False(t, report.RemovedOutputDir)
	assert.NoDirExists(t, filepath.Join(root, "public", "icons"))
	assert.FileExists(t, filepath.Join(root, "public", "index.html"))
}

func TestCommit_KeepsCreatedDirs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	l, err := ledger.Begin(root, "dist/pwa")
	require.NoError(t, err)
	require.NoError(t, l.WriteFile("dist/pwa/sw.js", []byte("sw"), 0o644))
	require.NoError(t, l.Commit())

	assert.Empty(t, l.Rollback().RemovedDirs)
	assert.FileExists(t, filepath.Join(root, "dist", "pwa", "sw.js"))
}

func TestConcurrentBackupAndWrite(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "shared.json", "original")
	for i := range 20 {
		writeFile(t, root, fmt.Sprintf("public/existing-%d.js", i), fmt.Sprintf("existing %d", i))
	}

	l, err := ledger.Begin(root, "public")
	require.NoError(t, err)

	g := new(errgroup.Group)
	g.SetLimit(8)
	for i := range 40 {
		g.Go(func() error {
			if err := l.BackupFile("shared.json"); err != nil {
				return err
			}
			if i < 20 {
				return l.WriteFile(fmt.Sprintf("public/existing-%d.js", i), []byte("rewritten"), 0o644)
			}
			return l.WriteFile(fmt.Sprintf("public/new-%d.js", i), []byte("created"), 0o644)
		})
	}
	require.NoError(t, g.Wait())

	snap := l.State()
	assert.Len(t, snap.BackedUp, 21)
	assert.Len(t, snap.Created, 20)
	for _, p := range snap.Created {
		assert.False(t, snap.HasBackup(p), "path %s is both backed up and created", p)
	}

	writeFile(t, root, "shared.json", "modified")

	report := l.Rollback()
	require.True(t, report.Complete())
	assert.Equal(t, "original", readFile(t, root, "shared.json"))
	for i := range 20 {
		assert.Equal(t, fmt.Sprintf("existing %d", i), readFile(t, root, fmt.Sprintf("public/existing-%d.js", i)))
	}
	for i := 20; i < 40; i++ {
		assert.NoFileExists(t, filepath.Join(root, "public", fmt.Sprintf("new-%d.js", i)))
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pending", ledger.Pending.String())
	assert.Equal(t, "committed", ledger.Committed.String())
	assert.Equal(t, "rolled back", ledger.RolledBack.String())
}
